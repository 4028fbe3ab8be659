package core

import (
	"fmt"
	"math"
	"time"
)

// ExpenseTypeSummary partitions algebraic transaction totals by tag.
// Negative amounts (refunds, credits) subtract.
type ExpenseTypeSummary struct {
	Fixed    float64
	Variable float64
	Untagged float64
	Total    float64
}

// SummarizeByExpenseType sums transaction totals per expense tag.
func SummarizeByExpenseType(txs []Transaction) ExpenseTypeSummary {
	var s ExpenseTypeSummary
	for _, t := range txs {
		switch t.ExpenseType {
		case ExpenseFixed:
			s.Fixed += t.Total
		case ExpenseVariable:
			s.Variable += t.Total
		default:
			s.Untagged += t.Total
		}
	}
	s.Total = s.Fixed + s.Variable + s.Untagged
	return s
}

// MonthForecast projects fixed and variable spending for one future month.
type MonthForecast struct {
	Month    string  `json:"month"` // YYYY-MM
	Fixed    float64 `json:"fixed"`
	Variable float64 `json:"variable"`
	Total    float64 `json:"total"`
}

// ForecastExpenses projects spending for months consecutive periods
// starting at the reference month.
//
// The fixed component is the sum of fixed-tagged transactions that are
// also flagged recurring; a fixed tag alone contributes nothing. The
// variable component is the total of variable-tagged amounts averaged
// over the distinct calendar months they span, zero when there are none.
// The model is a flat monthly average, so every period carries the same
// figures.
func ForecastExpenses(txs []Transaction, reference time.Time, months int) []MonthForecast {
	var fixed float64
	for _, t := range txs {
		if t.ExpenseType == ExpenseFixed && t.IsRecurring {
			fixed += t.Total
		}
	}

	monthTotals := make(map[string]float64)
	for _, t := range txs {
		if t.ExpenseType == ExpenseVariable {
			monthTotals[monthKey(t.Date)] += t.Total
		}
	}
	var variable float64
	if len(monthTotals) > 0 {
		var sum float64
		for _, v := range monthTotals {
			sum += v
		}
		variable = sum / float64(len(monthTotals))
	}

	forecast := make([]MonthForecast, 0, months)
	year, month := reference.Year(), int(reference.Month())
	for i := 0; i < months; i++ {
		forecast = append(forecast, MonthForecast{
			Month:    fmt.Sprintf("%04d-%02d", year, month),
			Fixed:    fixed,
			Variable: variable,
			Total:    fixed + variable,
		})
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return forecast
}

// ExpenseTypeStats summarizes the fixed/variable split of a user's
// transaction history for the expense report view.
type ExpenseTypeStats struct {
	FixedAmount        float64 `json:"fixed_amount"`
	VariableAmount     float64 `json:"variable_amount"`
	FixedPercentage    float64 `json:"fixed_percentage"`
	VariablePercentage float64 `json:"variable_percentage"`
	TotalExpenses      float64 `json:"total_expenses"`
	FixedCount         int     `json:"fixed_count"`
	VariableCount      int     `json:"variable_count"`
}

// ComputeExpenseTypeStats derives split percentages from the summary.
// Both percentages are zero, not NaN, when there are no expenses.
func ComputeExpenseTypeStats(txs []Transaction) ExpenseTypeStats {
	summary := SummarizeByExpenseType(txs)

	var fixedPct, variablePct float64
	if summary.Total > 0 {
		fixedPct = summary.Fixed / summary.Total * 100
		variablePct = summary.Variable / summary.Total * 100
	}

	stats := ExpenseTypeStats{
		FixedAmount:        summary.Fixed,
		VariableAmount:     summary.Variable,
		FixedPercentage:    round2(fixedPct),
		VariablePercentage: round2(variablePct),
		TotalExpenses:      summary.Total,
	}
	for _, t := range txs {
		switch t.ExpenseType {
		case ExpenseFixed:
			stats.FixedCount++
		case ExpenseVariable:
			stats.VariableCount++
		}
	}
	return stats
}

// SpendingByCategory sums transaction totals per category over the
// half-open range [start, end), matching the month windows budget
// comparisons are built from.
func SpendingByCategory(txs []Transaction, start, end time.Time) map[int64]float64 {
	spending := make(map[int64]float64)
	for _, t := range txs {
		if t.Date.Before(start) || !t.Date.Before(end) {
			continue
		}
		spending[t.CategoryID] += t.Total
	}
	return spending
}

func monthKey(d time.Time) string {
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
}

// round2 rounds half away from zero to two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
