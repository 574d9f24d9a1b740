package shelving

import "fmt"

func item(id string, weight, value float64) Item {
	return Item{ID: id, Title: "Title " + id, Weight: weight, Value: value}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// combinations returns C(n,k).
func combinations(n, k int) int {
	if k < 0 || n < k {
		return 0
	}
	result := 1
	for i := 1; i <= k; i++ {
		result = result * (n - k + i) / i
	}
	return result
}

// bestByEnumeration checks every subset through its bitmask.
func bestByEnumeration(items []Item, capacity float64, maxSize int) float64 {
	best := 0.0
	for mask := 0; mask < 1<<len(items); mask++ {
		var weight, value float64
		size := 0
		for i := range items {
			if mask&(1<<i) == 0 {
				continue
			}
			size++
			weight += items[i].Weight
			value += items[i].Value
		}
		if size <= maxSize && weight <= capacity && value > best {
			best = value
		}
	}
	return best
}

// sampleCatalog builds a deterministic catalog with varied weights and values.
func sampleCatalog(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			ID:     fmt.Sprintf("isbn-%02d", i),
			Title:  fmt.Sprintf("Book %02d", i),
			Weight: float64((i*7)%5) + 0.5*float64(i%3) + 0.5,
			Value:  float64((i*13)%11 + 1),
		}
	}
	return items
}
