package shelving

import "context"

// Item is a catalog entry considered by the shelf algorithms. Only the
// identifier, title, weight and value are read.
type Item struct {
	ID     string
	Title  string
	Weight float64
	Value  float64
}

// DangerousGroup is a four-item combination whose combined weight exceeds
// the capacity. Groups may share items.
type DangerousGroup struct {
	Items       []Item
	TotalWeight float64
}

// DangerReport is the outcome of a danger scan. Examined counts every
// four-item combination visited, C(n,4) for a completed scan.
type DangerReport struct {
	Groups   []DangerousGroup
	Examined int
}

// Selection is the best single-shelf subset found by the optimizer.
// Items are copies and stay valid after the pool changes.
type Selection struct {
	Value  float64
	Weight float64
	Items  []Item
}

// ShelfAssignment describes one allocated shelf. Shelf numbers are 1-based
// and follow allocation order.
type ShelfAssignment struct {
	Shelf       int
	Items       []Item
	TotalWeight float64
	TotalValue  float64
}

// ShelfPlan is the result of a multi-shelf allocation. Unassigned lists the
// items no shelf received, in input order.
type ShelfPlan struct {
	Shelves    []ShelfAssignment
	Unassigned []Item
}

// TraceStep is one visited state of the single-shelf search.
type TraceStep struct {
	Index     int
	Weight    float64
	Value     float64
	Selection []string
}

// Planner runs the shelf algorithms under a context and a search budget.
type Planner interface {
	Capacity() float64
	MaxPerShelf() int
	DangerousGroups(ctx context.Context, items []Item) (DangerReport, error)
	BestShelf(ctx context.Context, items []Item, withTrace bool) (Selection, []TraceStep, error)
	Shelves(ctx context.Context, items []Item) (ShelfPlan, error)
}

// Observer receives one notification per finished search.
type Observer interface {
	ObserveSearch(operation, outcome string, seconds float64, nodes int64)
}
