package core

import (
	"errors"
	"time"
)

// ExpenseType classifies a transaction for forecasting. The zero value
// means the transaction has not been tagged.
type ExpenseType string

const (
	ExpenseUntagged ExpenseType = ""
	ExpenseFixed    ExpenseType = "fixed"
	ExpenseVariable ExpenseType = "variable"
)

type (
	// Income is a recurring (or one-time) income source for a user.
	// Frequency holds the raw user spelling; scheduling code normalizes
	// it through ParseRecurrenceRule before branching.
	Income struct {
		ID         int64
		UserID     int64
		Name       string
		Amount     float64
		Frequency  string
		LastPaid   *time.Time // nil if no payment has been recorded yet
		Active     bool
		CustomDays int // interval in days, meaningful only for custom frequency
		CreatedAt  time.Time
	}

	// Transaction is a single signed ledger entry. Total may be negative
	// (refunds and credits) and is always summed algebraically.
	Transaction struct {
		ID            int64
		UserID        int64
		Total         float64
		Date          time.Time
		Payee         string
		CategoryID    int64
		Notes         string
		IsRecurring   bool
		RecurDate     *time.Time
		ExpenseType   ExpenseType
		TaxRelated    bool
		TravelRelated bool
	}

	// User owns every other record. Password handling lives outside the
	// core; PasswordHash is carried as an opaque string.
	User struct {
		ID           int64
		Email        string
		FirstName    string
		LastName     string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Notification is a message queued for a user, created by the payday
	// processor or by budget alerts and delivered by the notify worker.
	Notification struct {
		ID          int64
		UserID      int64
		Kind        string
		Title       string
		Message     string
		Read        bool
		DeliveredAt *time.Time
		CreatedAt   time.Time
	}
)

const (
	NotificationPayday      = "payday"
	NotificationBudgetAlert = "budget_alert"
	NotificationTest        = "test"
)

var (
	// ErrInactiveIncome is returned when a recurrence computation is
	// requested for a deactivated income. Distinct from rule problems so
	// callers can tell "reactivate first" from "fix the rule".
	ErrInactiveIncome = errors.New("income is inactive")

	// ErrUnknownRecurrence is returned for a frequency spelling that does
	// not normalize to any supported recurrence rule.
	ErrUnknownRecurrence = errors.New("unknown recurrence rule")

	// ErrCustomIntervalRequired is returned when a custom-frequency income
	// has no positive interval-day count.
	ErrCustomIntervalRequired = errors.New("custom recurrence requires a positive interval in days")
)

// Validate reports basic record-level problems before a transaction
// reaches storage. Negative totals are allowed.
func (t Transaction) Validate() error {
	if t.UserID == 0 {
		return errors.New("transaction requires an owning user")
	}
	if t.Date.IsZero() {
		return errors.New("transaction date cannot be zero")
	}
	if t.Payee == "" {
		return errors.New("transaction payee cannot be empty")
	}
	switch t.ExpenseType {
	case ExpenseUntagged, ExpenseFixed, ExpenseVariable:
	default:
		return errors.New("invalid expense type")
	}
	return nil
}

// Validate checks an income record before it reaches storage.
func (in Income) Validate() error {
	if in.UserID == 0 {
		return errors.New("income requires an owning user")
	}
	if in.Name == "" {
		return errors.New("income name cannot be empty")
	}
	rule, err := ParseRecurrenceRule(in.Frequency)
	if err != nil {
		return err
	}
	if rule == RuleCustom && in.CustomDays <= 0 {
		return ErrCustomIntervalRequired
	}
	return nil
}
