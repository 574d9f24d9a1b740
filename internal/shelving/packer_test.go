package shelving

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackShelvesAllocatesGreedily(t *testing.T) {
	t.Parallel()

	items := []Item{
		item("A", 3, 10),
		item("B", 3, 10),
		item("C", 3, 10),
		item("D", 1, 1),
		item("E", 5, 2),
	}

	shelves := PackShelves(items, 8, 4)

	require.Len(t, shelves, 2)

	assert.Equal(t, 1, shelves[0].Shelf)
	assert.Equal(t, []string{"A", "B", "D"}, ids(shelves[0].Items))
	assert.InDelta(t, 7.0, shelves[0].TotalWeight, 1e-9)
	assert.InDelta(t, 21.0, shelves[0].TotalValue, 1e-9)

	assert.Equal(t, 2, shelves[1].Shelf)
	assert.Equal(t, []string{"C", "E"}, ids(shelves[1].Items))
	assert.InDelta(t, 8.0, shelves[1].TotalWeight, 1e-9)
	assert.InDelta(t, 12.0, shelves[1].TotalValue, 1e-9)
}

func TestPackShelvesNeverAssignsTwice(t *testing.T) {
	t.Parallel()

	items := sampleCatalog(14)
	shelves := PackShelves(items, DefaultCapacity, DefaultMaxPerShelf)

	seen := map[string]int{}
	for i, shelf := range shelves {
		assert.Equal(t, i+1, shelf.Shelf)
		assert.LessOrEqual(t, len(shelf.Items), DefaultMaxPerShelf)
		assert.LessOrEqual(t, shelf.TotalWeight, DefaultCapacity)
		for _, it := range shelf.Items {
			prev, dup := seen[it.ID]
			require.False(t, dup, "item %s on shelves %d and %d", it.ID, prev, shelf.Shelf)
			seen[it.ID] = shelf.Shelf
		}
	}
	assert.LessOrEqual(t, len(shelves), shelfUpperBound(len(items), DefaultMaxPerShelf))
}

func TestPackShelvesStopsOnOversizedItems(t *testing.T) {
	t.Parallel()

	items := []Item{item("A", 9, 100), item("B", 2, 1), item("C", 20, 50)}

	plan, err := packShelves(items, 8, 4, nil)
	require.NoError(t, err)

	require.Len(t, plan.Shelves, 1)
	assert.Equal(t, []string{"B"}, ids(plan.Shelves[0].Items))
	assert.Equal(t, []string{"A", "C"}, ids(plan.Unassigned))
	assert.Len(t, PackShelves(items, 8, 4), 1)
}

func TestPackShelvesOnlyOversizedItems(t *testing.T) {
	t.Parallel()

	items := []Item{item("A", 9, 100), item("B", 10, 1)}

	assert.Empty(t, PackShelves(items, 8, 4))
}

func TestPackShelvesEmptyInput(t *testing.T) {
	t.Parallel()

	shelves := PackShelves(nil, 8, 4)
	assert.NotNil(t, shelves)
	assert.Empty(t, shelves)
}

func TestPackShelvesIsRepeatable(t *testing.T) {
	t.Parallel()

	items := sampleCatalog(12)
	snapshot := append([]Item(nil), items...)

	first := PackShelves(items, DefaultCapacity, DefaultMaxPerShelf)
	second := PackShelves(items, DefaultCapacity, DefaultMaxPerShelf)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, items, "input must not be modified")
}

func TestPackShelvesRespectsUpperBound(t *testing.T) {
	t.Parallel()

	// Eight light items with maxPerShelf 1 would need eight shelves, the bound stops at 8/1+1 = 9.
	items := make([]Item, 8)
	for i := range items {
		items[i] = item(string(rune('A'+i)), 1, float64(i+1))
	}

	shelves := PackShelves(items, 8, 1)
	require.Len(t, shelves, 8)
	assert.Equal(t, "H", shelves[0].Items[0].ID, "highest value first")
}

func TestShelfUpperBound(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, shelfUpperBound(0, 4))
	assert.Equal(t, 2, shelfUpperBound(4, 4))
	assert.Equal(t, 3, shelfUpperBound(9, 4))
	assert.Equal(t, 0, shelfUpperBound(9, 0))
}

func BenchmarkPackShelves(b *testing.B) {
	items := sampleCatalog(24)
	for i := 0; i < b.N; i++ {
		_ = PackShelves(items, DefaultCapacity, DefaultMaxPerShelf)
	}
}
