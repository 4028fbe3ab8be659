package core

import (
	"log/slog"
	"time"
)

// occurrence returns the nth payment date after the anchor. Monthly and
// annual rules re-derive from the anchor's day-of-month each time, so a
// clamped short month does not drag later dates off the anchor's day:
// an anchor of Jan 31 yields Feb 29, Mar 31, Apr 30, never Mar 29.
// One-time rules have no occurrences; callers handle them before
// getting here.
func (r RecurrenceRule) occurrence(anchor time.Time, customDays, n int) time.Time {
	switch r {
	case RuleDaily:
		return anchor.AddDate(0, 0, n)
	case RuleWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case RuleBiWeekly:
		return anchor.AddDate(0, 0, 14*n)
	case RuleMonthly:
		return addCalendarMonths(anchor, n)
	case RuleAnnual:
		return addCalendarYears(anchor, n)
	case RuleCustom:
		return anchor.AddDate(0, 0, customDays*n)
	default:
		return anchor
	}
}

// paydaySeq returns the first count payment dates strictly after
// reference, all counted as whole intervals from the anchor.
func (in *Income) paydaySeq(reference time.Time, count int) ([]time.Time, error) {
	if !in.Active {
		return nil, ErrInactiveIncome
	}
	rule, err := ParseRecurrenceRule(in.Frequency)
	if err != nil {
		return nil, err
	}
	if rule == RuleOneTime {
		return nil, nil
	}
	if rule == RuleCustom && in.CustomDays <= 0 {
		return nil, ErrCustomIntervalRequired
	}

	anchor := reference
	if in.LastPaid != nil {
		anchor = *in.LastPaid
	} else {
		slog.Warn("income has no recorded paid date, using reference as anchor",
			"income_id", in.ID, "frequency", in.Frequency)
	}

	// Catch up from anchors far in the past: the first element is always
	// the first occurrence strictly after the reference point.
	n := 1
	next := rule.occurrence(anchor, in.CustomDays, n)
	for !next.After(reference) {
		n++
		next = rule.occurrence(anchor, in.CustomDays, n)
	}

	seq := make([]time.Time, 0, count)
	for len(seq) < count {
		seq = append(seq, next)
		n++
		next = rule.occurrence(anchor, in.CustomDays, n)
	}
	return seq, nil
}

// NextPayday computes the first payment date strictly after reference.
//
// The anchor is the last paid date; when none is recorded the reference
// date substitutes and the result is advisory. A zero time with a nil
// error means the income never recurs (one-time rules). Inactive incomes
// fail with ErrInactiveIncome; unrecognized frequencies and custom rules
// without a positive interval fail with configuration errors.
func (in *Income) NextPayday(reference time.Time) (time.Time, error) {
	seq, err := in.paydaySeq(reference, 1)
	if err != nil {
		return time.Time{}, err
	}
	if len(seq) == 0 {
		return time.Time{}, nil
	}
	return seq[0], nil
}

// UpcomingPaydays returns the next count payment dates after reference.
// Every element is derived from the anchor, not stepped from the
// previous result. Inactive incomes and one-time rules yield an empty
// slice.
func (in *Income) UpcomingPaydays(reference time.Time, count int) ([]time.Time, error) {
	if !in.Active || count <= 0 {
		return nil, nil
	}
	return in.paydaySeq(reference, count)
}

// ShouldPayToday reports whether NextPayday(today) lands on today's
// calendar date. Scheduling errors are reported as false, never
// propagated. NextPayday is strictly after its reference, so callers
// that need same-day dueness (the payday processor) re-anchor to the
// previous day; see DueToday.
func (in *Income) ShouldPayToday(today time.Time) bool {
	next, err := in.NextPayday(today)
	if err != nil || next.IsZero() {
		return false
	}
	return sameDay(next, today)
}

// DueToday reports whether a payment falls due on the given day by
// re-anchoring the reference to the previous day. Configuration
// failures (unknown frequency, custom rule without an interval,
// inactive income) come back as the error so the payday processor can
// log the misconfigured income instead of silently skipping it.
func (in *Income) DueToday(today time.Time) (bool, error) {
	next, err := in.NextPayday(today.AddDate(0, 0, -1))
	if err != nil {
		return false, err
	}
	if next.IsZero() {
		return false, nil
	}
	return sameDay(next, today), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
