package shelving

// Optimize returns the value-maximizing subset of items holding at most
// maxSize items whose weight does not exceed capacity.
//
// The search walks the items in order, exploring the include branch before
// the exclude branch, and replaces the incumbent only on a strictly greater
// value. Among equal-value optima the first one found is kept. An empty pool,
// or a pool where nothing fits, yields a zero value and no items.
func Optimize(items []Item, capacity float64, maxSize int) Selection {
	selection, _, _ := optimize(items, capacity, maxSize, nil, nil)
	return selection
}

// subsetSearch is the mutable state shared by one include/exclude recursion.
type subsetSearch struct {
	items    []Item
	capacity float64
	maxSize  int
	guard    *searchGuard
	trace    *traceRecorder

	current []int

	bestValue  float64
	bestWeight float64
	best       []int
}

// optimize runs the search and also returns the chosen positions in items.
func optimize(items []Item, capacity float64, maxSize int, guard *searchGuard, trace *traceRecorder) (Selection, []int, error) {
	s := &subsetSearch{
		items:    items,
		capacity: capacity,
		maxSize:  maxSize,
		guard:    guard,
		trace:    trace,
		current:  make([]int, 0, max(maxSize, 0)),
	}
	if err := s.visit(0, 0, 0); err != nil {
		return Selection{}, nil, err
	}

	chosen := make([]Item, len(s.best))
	for i, idx := range s.best {
		chosen[i] = items[idx]
	}
	return Selection{
		Value:  s.bestValue,
		Weight: s.bestWeight,
		Items:  chosen,
	}, s.best, nil
}

func (s *subsetSearch) visit(index int, weight, value float64) error {
	if err := s.guard.tick(); err != nil {
		return err
	}
	s.trace.record(index, weight, value, s.current, s.items)

	if index == len(s.items) {
		if value > s.bestValue {
			s.bestValue = value
			s.bestWeight = weight
			s.best = append(s.best[:0], s.current...)
		}
		return nil
	}

	item := s.items[index]
	if weight+item.Weight <= s.capacity && len(s.current) < s.maxSize {
		s.current = append(s.current, index)
		err := s.visit(index+1, weight+item.Weight, value+item.Value)
		s.current = s.current[:len(s.current)-1]
		if err != nil {
			return err
		}
	}

	return s.visit(index+1, weight, value)
}
