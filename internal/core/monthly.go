package core

// MonthlyEquivalent converts an income amount to a rough per-month
// figure for dashboard aggregation: weekly incomes count four times,
// bi-weekly twice, annual one twelfth. Daily, one-time, and custom
// incomes pass through unchanged. This is a deliberately coarse
// approximation, not calendar-accurate averaging, and downstream views
// expect exactly these figures.
func MonthlyEquivalent(amount float64, rule RecurrenceRule) float64 {
	switch rule {
	case RuleWeekly:
		return amount * 4
	case RuleBiWeekly:
		return amount * 2
	case RuleMonthly:
		return amount
	case RuleAnnual:
		return amount / 12
	default:
		return amount
	}
}

// TotalMonthlyIncome sums the monthly equivalents of the supplied
// incomes. Frequencies that fail to parse pass through unconverted,
// the same way unconvertible rules do.
func TotalMonthlyIncome(incomes []Income) float64 {
	var total float64
	for _, in := range incomes {
		rule, err := ParseRecurrenceRule(in.Frequency)
		if err != nil {
			total += in.Amount
			continue
		}
		total += MonthlyEquivalent(in.Amount, rule)
	}
	return total
}
