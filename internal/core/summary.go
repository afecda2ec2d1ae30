package core

import "sort"

// CategoryTotal is the total spend in one category for one user.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    Money  `json:"total"`
}

// SummarizeByCategory aggregates expenses into per-category totals,
// sorted by category name. Categories with no expenses are absent.
//
// This is the reference semantics for the SQL aggregation in storage:
// both must produce identical results over the same set of expenses.
func SummarizeByCategory(expenses []Expense) []CategoryTotal {
	totals := make(map[string]Money)
	for _, e := range expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}

	summary := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		summary = append(summary, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(summary, func(i, j int) bool {
		return summary[i].Category < summary[j].Category
	})
	return summary
}
