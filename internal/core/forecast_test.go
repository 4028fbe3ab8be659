package core

import (
	"math"
	"testing"
	"time"
)

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func tx(total float64, d time.Time, et ExpenseType, recurring bool) Transaction {
	return Transaction{
		UserID:      1,
		Total:       total,
		Date:        d,
		Payee:       "test",
		ExpenseType: et,
		IsRecurring: recurring,
	}
}

func TestSummarizeByExpenseType(t *testing.T) {
	txs := []Transaction{
		tx(1200, date(2024, 1, 1), ExpenseFixed, true),
		tx(100, date(2024, 1, 5), ExpenseFixed, false),
		tx(250, date(2024, 1, 10), ExpenseVariable, false),
		tx(-50, date(2024, 1, 12), ExpenseVariable, false), // refund subtracts
		tx(75, date(2024, 1, 20), ExpenseUntagged, false),
	}

	got := SummarizeByExpenseType(txs)
	if !floatEq(got.Fixed, 1300) {
		t.Errorf("Fixed = %v, want 1300", got.Fixed)
	}
	if !floatEq(got.Variable, 200) {
		t.Errorf("Variable = %v, want 200", got.Variable)
	}
	if !floatEq(got.Untagged, 75) {
		t.Errorf("Untagged = %v, want 75", got.Untagged)
	}
	if !floatEq(got.Total, 1575) {
		t.Errorf("Total = %v, want 1575", got.Total)
	}
}

func TestForecastExpenses(t *testing.T) {
	t.Run("empty history yields zero periods", func(t *testing.T) {
		got := ForecastExpenses(nil, date(2024, 5, 15), 3)
		if len(got) != 3 {
			t.Fatalf("forecast has %d periods, want 3", len(got))
		}
		wantMonths := []string{"2024-05", "2024-06", "2024-07"}
		for i, f := range got {
			if f.Month != wantMonths[i] {
				t.Errorf("period[%d].Month = %q, want %q", i, f.Month, wantMonths[i])
			}
			if f.Fixed != 0 || f.Variable != 0 || f.Total != 0 {
				t.Errorf("period[%d] = %+v, want all zeros", i, f)
			}
		}
	})

	t.Run("flat monthly average", func(t *testing.T) {
		txs := []Transaction{
			tx(1000, date(2024, 1, 1), ExpenseFixed, true),
			tx(300, date(2024, 1, 2), ExpenseFixed, true),
			tx(500, date(2024, 1, 3), ExpenseFixed, false), // non-recurring fixed: excluded
			tx(200, date(2024, 1, 10), ExpenseVariable, false),
			tx(55, date(2024, 1, 15), ExpenseVariable, false),
			tx(200, date(2024, 2, 10), ExpenseVariable, false),
		}

		got := ForecastExpenses(txs, date(2024, 3, 1), 3)
		if len(got) != 3 {
			t.Fatalf("forecast has %d periods, want 3", len(got))
		}
		for i, f := range got {
			if !floatEq(f.Fixed, 1300) {
				t.Errorf("period[%d].Fixed = %v, want 1300", i, f.Fixed)
			}
			if !floatEq(f.Variable, 227.5) {
				t.Errorf("period[%d].Variable = %v, want 227.5", i, f.Variable)
			}
			if !floatEq(f.Total, 1527.5) {
				t.Errorf("period[%d].Total = %v, want 1527.5", i, f.Total)
			}
		}
	})

	t.Run("december wraps into january", func(t *testing.T) {
		got := ForecastExpenses(nil, date(2024, 11, 30), 4)
		wantMonths := []string{"2024-11", "2024-12", "2025-01", "2025-02"}
		for i, f := range got {
			if f.Month != wantMonths[i] {
				t.Errorf("period[%d].Month = %q, want %q", i, f.Month, wantMonths[i])
			}
		}
	})

	t.Run("variable with no transactions is zero not an error", func(t *testing.T) {
		txs := []Transaction{tx(100, date(2024, 1, 1), ExpenseFixed, true)}
		got := ForecastExpenses(txs, date(2024, 2, 1), 1)
		if !floatEq(got[0].Variable, 0) {
			t.Errorf("Variable = %v, want 0", got[0].Variable)
		}
	})
}

func TestComputeExpenseTypeStats(t *testing.T) {
	t.Run("percentages", func(t *testing.T) {
		txs := []Transaction{
			tx(600, date(2024, 1, 1), ExpenseFixed, true),
			tx(300, date(2024, 1, 2), ExpenseVariable, false),
			tx(100, date(2024, 1, 3), ExpenseUntagged, false),
		}
		got := ComputeExpenseTypeStats(txs)
		if !floatEq(got.FixedPercentage, 60) {
			t.Errorf("FixedPercentage = %v, want 60", got.FixedPercentage)
		}
		if !floatEq(got.VariablePercentage, 30) {
			t.Errorf("VariablePercentage = %v, want 30", got.VariablePercentage)
		}
		if !floatEq(got.TotalExpenses, 1000) {
			t.Errorf("TotalExpenses = %v, want 1000", got.TotalExpenses)
		}
		if got.FixedCount != 1 || got.VariableCount != 1 {
			t.Errorf("counts = %d/%d, want 1/1", got.FixedCount, got.VariableCount)
		}
	})

	t.Run("zero total yields zero percentages", func(t *testing.T) {
		got := ComputeExpenseTypeStats(nil)
		if got.FixedPercentage != 0 || got.VariablePercentage != 0 {
			t.Errorf("percentages = %v/%v, want 0/0", got.FixedPercentage, got.VariablePercentage)
		}
	})

	t.Run("rounding to two decimals", func(t *testing.T) {
		txs := []Transaction{
			tx(1, date(2024, 1, 1), ExpenseFixed, false),
			tx(2, date(2024, 1, 2), ExpenseVariable, false),
		}
		got := ComputeExpenseTypeStats(txs)
		if !floatEq(got.FixedPercentage, 33.33) {
			t.Errorf("FixedPercentage = %v, want 33.33", got.FixedPercentage)
		}
		if !floatEq(got.VariablePercentage, 66.67) {
			t.Errorf("VariablePercentage = %v, want 66.67", got.VariablePercentage)
		}
	})
}

func TestSpendingByCategory(t *testing.T) {
	mk := func(cat int64, total float64, d time.Time) Transaction {
		tr := tx(total, d, ExpenseVariable, false)
		tr.CategoryID = cat
		return tr
	}
	txs := []Transaction{
		mk(1, 100, date(2024, 3, 5)),
		mk(1, -20, date(2024, 3, 10)), // refund nets against the category
		mk(2, 50, date(2024, 3, 15)),
		mk(2, 75, date(2024, 4, 1)), // exactly on end, excluded
	}

	got := SpendingByCategory(txs, date(2024, 3, 1), date(2024, 4, 1))
	if !floatEq(got[1], 80) {
		t.Errorf("category 1 = %v, want 80", got[1])
	}
	if !floatEq(got[2], 50) {
		t.Errorf("category 2 = %v, want 50", got[2])
	}

	// Start day is included, end day is not.
	edge := SpendingByCategory(txs, date(2024, 3, 5), date(2024, 3, 10))
	if !floatEq(edge[1], 100) {
		t.Errorf("half-open window category 1 = %v, want 100", edge[1])
	}
}
