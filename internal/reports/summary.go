// Package reports derives analytics from a user's transaction list:
// per-category sums, per-month net balance, and overall totals. Nothing
// here is persisted; summaries are recomputed from the rows on demand.
package reports

import (
	"math"
	"sort"

	"budget/internal/core"
)

// Uncategorized labels the bucket for rows whose category join is missing.
const Uncategorized = "Uncategorized"

type CategoryTotal struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

type Summary struct {
	TotalIncome       float64         `json:"totalIncome"`
	TotalExpense      float64         `json:"totalExpense"`
	Balance           float64         `json:"balance"`
	IncomeByCategory  []CategoryTotal `json:"incomeByCategory"`
	ExpenseByCategory []CategoryTotal `json:"expenseByCategory"`
	BalanceByMonth    []MonthTotal    `json:"balanceByMonth"`
}

// BuildSummary groups the fetched list in memory. Expense amounts are
// folded by absolute value and income by raw amount, so rows seeded with
// pre-signed amounts aggregate the same as boundary-validated ones.
// Months are keyed YYYY-MM and returned in ascending order; category
// buckets are returned largest first.
func BuildSummary(txs []core.Transaction) Summary {
	incomeByCat := make(map[string]float64)
	expenseByCat := make(map[string]float64)
	byMonth := make(map[string]float64)

	var s Summary
	for _, tx := range txs {
		name := Uncategorized
		if tx.Category != nil && tx.Category.Name != "" {
			name = tx.Category.Name
		}
		month := tx.CreatedAt.Format("2006-01")

		switch tx.Type {
		case core.Income:
			amt := tx.Amount
			s.TotalIncome += amt
			incomeByCat[name] += amt
			byMonth[month] += amt
		case core.Expense:
			amt := math.Abs(tx.Amount)
			s.TotalExpense += amt
			expenseByCat[name] += amt
			byMonth[month] -= amt
		}
	}
	s.Balance = s.TotalIncome - s.TotalExpense

	s.IncomeByCategory = sortedCategoryTotals(incomeByCat)
	s.ExpenseByCategory = sortedCategoryTotals(expenseByCat)

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	s.BalanceByMonth = make([]MonthTotal, 0, len(months))
	for _, m := range months {
		s.BalanceByMonth = append(s.BalanceByMonth, MonthTotal{Month: m, Total: byMonth[m]})
	}

	return s
}

func sortedCategoryTotals(totals map[string]float64) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, CategoryTotal{Name: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}
