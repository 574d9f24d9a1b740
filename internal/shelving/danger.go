package shelving

// GroupSize is the number of items in every combination checked by the danger scan.
const GroupSize = 4

// FindDangerousGroups returns every four-item combination whose summed weight
// is strictly greater than capacity. Combinations are produced in
// lexicographic index order. Fewer than four items yield an empty result.
//
// The scan visits C(n,4) combinations, so its cost grows with n^4.
func FindDangerousGroups(items []Item, capacity float64) []DangerousGroup {
	groups, _, _ := findDangerousGroups(items, capacity, nil)
	return groups
}

func findDangerousGroups(items []Item, capacity float64, guard *searchGuard) ([]DangerousGroup, int, error) {
	groups := []DangerousGroup{}
	examined := 0
	n := len(items)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				for l := k + 1; l < n; l++ {
					if err := guard.tick(); err != nil {
						return nil, examined, err
					}
					examined++

					total := items[i].Weight + items[j].Weight + items[k].Weight + items[l].Weight
					if total > capacity {
						groups = append(groups, DangerousGroup{
							Items:       []Item{items[i], items[j], items[k], items[l]},
							TotalWeight: total,
						})
					}
				}
			}
		}
	}

	return groups, examined, nil
}
