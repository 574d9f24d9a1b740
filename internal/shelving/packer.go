package shelving

// PackShelves allocates items to shelves one at a time. Each shelf receives
// the exact best subset (see Optimize) of the items not yet placed, and the
// allocation stops as soon as the pool is empty or nothing else fits.
//
// The allocation is greedy per shelf, not a global optimum across shelves.
// Items heavier than capacity on their own are never placed and are not
// reported; use a Planner when the leftovers are needed.
func PackShelves(items []Item, capacity float64, maxPerShelf int) []ShelfAssignment {
	plan, _ := packShelves(items, capacity, maxPerShelf, nil)
	return plan.Shelves
}

func packShelves(items []Item, capacity float64, maxPerShelf int, guard *searchGuard) (ShelfPlan, error) {
	shelves := []ShelfAssignment{}
	assigned := make([]bool, len(items))

	limit := shelfUpperBound(len(items), maxPerShelf)
	for shelf := 1; shelf <= limit; shelf++ {
		pool, positions := availablePool(items, assigned)
		if len(pool) == 0 {
			break
		}

		selection, picked, err := optimize(pool, capacity, maxPerShelf, guard, nil)
		if err != nil {
			return ShelfPlan{}, err
		}
		if len(picked) == 0 {
			break
		}

		for _, p := range picked {
			assigned[positions[p]] = true
		}
		shelves = append(shelves, newShelfAssignment(shelf, selection.Items))
	}

	unassigned := []Item{}
	for i, item := range items {
		if !assigned[i] {
			unassigned = append(unassigned, item)
		}
	}

	return ShelfPlan{Shelves: shelves, Unassigned: unassigned}, nil
}

// shelfUpperBound over-estimates the shelves needed: floor(n/maxPerShelf)+1.
func shelfUpperBound(total, maxPerShelf int) int {
	if maxPerShelf <= 0 {
		return 0
	}
	return total/maxPerShelf + 1
}

// availablePool returns the unassigned items and their positions in items.
func availablePool(items []Item, assigned []bool) ([]Item, []int) {
	pool := make([]Item, 0, len(items))
	positions := make([]int, 0, len(items))
	for i, item := range items {
		if assigned[i] {
			continue
		}
		pool = append(pool, item)
		positions = append(positions, i)
	}
	return pool, positions
}

func newShelfAssignment(shelf int, items []Item) ShelfAssignment {
	assignment := ShelfAssignment{Shelf: shelf, Items: items}
	for _, item := range items {
		assignment.TotalWeight += item.Weight
		assignment.TotalValue += item.Value
	}
	return assignment
}
