package reports

import (
	"bytes"
	"testing"
	"time"

	"budget/internal/core"
)

func tx(title string, amount float64, typ core.TransactionType, cat string, created time.Time) core.Transaction {
	t := core.Transaction{Title: title, Amount: amount, Type: typ, CreatedAt: created}
	if cat != "" {
		t.Category = &core.Category{Name: cat}
	}
	return t
}

func TestBuildSummary(t *testing.T) {
	jan := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 3, 9, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		tx("Salary", 2500, core.Income, "Work", jan),
		tx("Groceries", 50, core.Expense, "Food", jan),
		tx("Restaurant", 30, core.Expense, "Food", feb),
		tx("Seeded expense", -20, core.Expense, "Food", feb), // pre-signed row
		tx("Gift", 100, core.Income, "", feb),                // no category join
	}

	s := BuildSummary(txs)

	if s.TotalIncome != 2600 {
		t.Errorf("TotalIncome = %v, want 2600", s.TotalIncome)
	}
	if s.TotalExpense != 100 {
		t.Errorf("TotalExpense = %v, want 100", s.TotalExpense)
	}
	if s.Balance != 2500 {
		t.Errorf("Balance = %v, want 2500", s.Balance)
	}

	if len(s.ExpenseByCategory) != 1 || s.ExpenseByCategory[0].Name != "Food" || s.ExpenseByCategory[0].Total != 100 {
		t.Errorf("ExpenseByCategory = %+v", s.ExpenseByCategory)
	}

	// Income buckets largest first, with the uncategorized fallback.
	if len(s.IncomeByCategory) != 2 {
		t.Fatalf("IncomeByCategory = %+v", s.IncomeByCategory)
	}
	if s.IncomeByCategory[0].Name != "Work" || s.IncomeByCategory[1].Name != Uncategorized {
		t.Errorf("income bucket order = %+v", s.IncomeByCategory)
	}

	// Months ascending: jan net 2450, feb net 100 - 50 = 50.
	if len(s.BalanceByMonth) != 2 {
		t.Fatalf("BalanceByMonth = %+v", s.BalanceByMonth)
	}
	if s.BalanceByMonth[0].Month != "2025-01" || s.BalanceByMonth[0].Total != 2450 {
		t.Errorf("january = %+v", s.BalanceByMonth[0])
	}
	if s.BalanceByMonth[1].Month != "2025-02" || s.BalanceByMonth[1].Total != 50 {
		t.Errorf("february = %+v", s.BalanceByMonth[1])
	}
}

func TestBuildSummaryEmpty(t *testing.T) {
	s := BuildSummary(nil)
	if s.TotalIncome != 0 || s.TotalExpense != 0 || s.Balance != 0 {
		t.Errorf("empty summary totals = %+v", s)
	}
	if len(s.IncomeByCategory) != 0 || len(s.ExpenseByCategory) != 0 || len(s.BalanceByMonth) != 0 {
		t.Errorf("empty summary buckets = %+v", s)
	}
}

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestExpenseChartPNG(t *testing.T) {
	now := time.Now()
	s := BuildSummary([]core.Transaction{
		tx("Groceries", 50, core.Expense, "Food", now),
		tx("Bus", 2.5, core.Expense, "Transport", now),
	})

	png, err := ExpenseChartPNG(s)
	if err != nil {
		t.Fatalf("ExpenseChartPNG: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Errorf("output does not look like a PNG (first bytes %v)", png[:min(len(png), 4)])
	}
}

func TestExpenseChartPNGNoData(t *testing.T) {
	png, err := ExpenseChartPNG(Summary{})
	if err != nil {
		t.Fatalf("ExpenseChartPNG(empty): %v", err)
	}
	if png != nil {
		t.Errorf("expected nil chart for empty summary, got %d bytes", len(png))
	}
}
