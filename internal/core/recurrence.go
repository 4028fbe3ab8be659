package core

import (
	"fmt"
	"strings"
	"time"
)

// RecurrenceRule is the closed set of supported payment patterns. User
// input arrives as free-form spellings ("bi-weekly", "2 weeks", ...) and
// is normalized through ParseRecurrenceRule before any scheduling logic
// branches on it.
type RecurrenceRule int

const (
	RuleDaily RecurrenceRule = iota
	RuleWeekly
	RuleBiWeekly
	RuleMonthly
	RuleAnnual
	RuleOneTime
	RuleCustom
)

// String returns the canonical spelling for the rule.
func (r RecurrenceRule) String() string {
	switch r {
	case RuleDaily:
		return "daily"
	case RuleWeekly:
		return "weekly"
	case RuleBiWeekly:
		return "bi-weekly"
	case RuleMonthly:
		return "monthly"
	case RuleAnnual:
		return "annual"
	case RuleOneTime:
		return "one-time"
	case RuleCustom:
		return "custom"
	default:
		return fmt.Sprintf("recurrence(%d)", int(r))
	}
}

// ParseRecurrenceRule maps every accepted spelling onto the rule set.
// Matching happens on the lowercased, trimmed input; anything else is
// ErrUnknownRecurrence.
func ParseRecurrenceRule(s string) (RecurrenceRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return RuleDaily, nil
	case "weekly", "1 week":
		return RuleWeekly, nil
	case "bi-weekly", "biweekly", "2 weeks":
		return RuleBiWeekly, nil
	case "monthly", "1 month":
		return RuleMonthly, nil
	case "annual", "yearly":
		return RuleAnnual, nil
	case "one-time", "one time":
		return RuleOneTime, nil
	case "custom":
		return RuleCustom, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRecurrence, s)
	}
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addCalendarMonths returns d's day-of-month n calendar months later,
// clamping to the last valid day of each target month independently
// (Jan 31 -> Feb 28/29, but two months out is Mar 31, not Mar 28).
func addCalendarMonths(d time.Time, n int) time.Time {
	year, month, day := d.Date()
	m := int(month) - 1 + n
	year += m / 12
	month = time.Month(m%12 + 1)
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, d.Location())
}

// addCalendarYears returns the same calendar date n years later. A
// Feb 29 anchor clamps to Feb 28 in non-leap years only.
func addCalendarYears(d time.Time, n int) time.Time {
	year, month, day := d.Date()
	year += n
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, d.Location())
}

// AddCalendarMonth returns the same day-of-month one calendar month
// later, clamping to the last valid day when the target month is shorter
// (Jan 31 -> Feb 28/29). December rolls into January of the next year.
func AddCalendarMonth(d time.Time) time.Time {
	return addCalendarMonths(d, 1)
}

// AddCalendarYear returns the same calendar date one year later. A
// Feb 29 anchor clamps to Feb 28 in non-leap years.
func AddCalendarYear(d time.Time) time.Time {
	return addCalendarYears(d, 1)
}
