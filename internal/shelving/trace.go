package shelving

// traceRecorder keeps the first limit visited states of a search.
type traceRecorder struct {
	limit     int
	steps     []TraceStep
	truncated bool
}

func newTraceRecorder(limit int) *traceRecorder {
	return &traceRecorder{limit: limit}
}

func (r *traceRecorder) record(index int, weight, value float64, current []int, items []Item) {
	if r == nil {
		return
	}
	if len(r.steps) >= r.limit {
		r.truncated = true
		return
	}
	titles := make([]string, len(current))
	for i, idx := range current {
		titles[i] = items[idx].Title
	}
	r.steps = append(r.steps, TraceStep{
		Index:     index,
		Weight:    weight,
		Value:     value,
		Selection: titles,
	})
}
