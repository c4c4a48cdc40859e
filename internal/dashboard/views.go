package dashboard

import (
	"sort"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
)

// CategoryTotal is the summed quantity of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Quantity float64 `json:"quantity"`
}

// CategoryTotals sums quantity per category in first-appearance order. When
// only is non-empty, items in other categories are skipped.
func CategoryTotals(items []item.Item, only []string) []CategoryTotal {
	var allowed map[string]struct{}
	if len(only) > 0 {
		allowed = make(map[string]struct{}, len(only))
		for _, c := range only {
			allowed[c] = struct{}{}
		}
	}

	index := make(map[string]int)
	totals := []CategoryTotal{}
	for _, it := range items {
		if allowed != nil {
			if _, ok := allowed[it.Category]; !ok {
				continue
			}
		}
		idx, ok := index[it.Category]
		if !ok {
			idx = len(totals)
			index[it.Category] = idx
			totals = append(totals, CategoryTotal{Category: it.Category})
		}
		totals[idx].Quantity += it.Quantity
	}
	return totals
}

// Categories returns the sorted distinct categories of items.
func Categories(items []item.Item) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range items {
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	sort.Strings(out)
	return out
}
