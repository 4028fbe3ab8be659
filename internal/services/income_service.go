package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
)

// ErrNotOwner is returned when a record exists but belongs to a
// different user. Handlers map it to 403 instead of 404 so ownership
// failures stay distinguishable in logs.
var ErrNotOwner = errors.New("record does not belong to user")

// ErrValidation wraps domain validation failures so handlers can map
// them to 422 without listing every core sentinel.
var ErrValidation = errors.New("validation failed")

// IncomeRepository is the storage surface the income service needs.
type IncomeRepository interface {
	CreateIncome(ctx context.Context, in *core.Income) error
	GetIncome(ctx context.Context, id int64) (*core.Income, error)
	ListIncomes(ctx context.Context, userID int64) ([]core.Income, error)
	UpdateIncome(ctx context.Context, in *core.Income) error
	SetIncomeActive(ctx context.Context, id int64, active bool) error
	DeleteIncome(ctx context.Context, id int64) error
}

// BudgetApplier folds a new income source into the owner's budget for
// the month it lands in.
type BudgetApplier interface {
	ApplyIncomeToMonth(ctx context.Context, userID int64, month string, amount float64) error
}

// IncomeService owns income sources: CRUD, payday projection, and the
// monthly-equivalent rollup that feeds budget income.
type IncomeService struct {
	repo    IncomeRepository
	budgets BudgetApplier
}

// NewIncomeService builds the service. budgets may be nil, in which
// case new incomes are not folded into existing budgets.
func NewIncomeService(repo IncomeRepository, budgets BudgetApplier) *IncomeService {
	return &IncomeService{repo: repo, budgets: budgets}
}

func (s *IncomeService) Create(ctx context.Context, in *core.Income) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	in.Active = true
	if err := s.repo.CreateIncome(ctx, in); err != nil {
		return fmt.Errorf("create income: %w", err)
	}
	s.applyToCurrentBudget(ctx, in)
	return nil
}

// applyToCurrentBudget adds the income's monthly equivalent to the
// current month's budget. The income is already persisted, so a
// failure here is logged and swallowed.
func (s *IncomeService) applyToCurrentBudget(ctx context.Context, in *core.Income) {
	if s.budgets == nil {
		return
	}
	rule, err := core.ParseRecurrenceRule(in.Frequency)
	if err != nil {
		return
	}
	month := time.Now().UTC().Format("2006-01")
	monthly := core.MonthlyEquivalent(in.Amount, rule)
	if err := s.budgets.ApplyIncomeToMonth(ctx, in.UserID, month, monthly); err != nil {
		slog.WarnContext(ctx, "Failed to apply income to current budget",
			"income_id", in.ID,
			"user_id", in.UserID,
			"error", err)
	}
}

func (s *IncomeService) Get(ctx context.Context, userID, id int64) (*core.Income, error) {
	in, err := s.repo.GetIncome(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.UserID != userID {
		return nil, ErrNotOwner
	}
	return in, nil
}

func (s *IncomeService) List(ctx context.Context, userID int64) ([]core.Income, error) {
	return s.repo.ListIncomes(ctx, userID)
}

// IncomeUpdate carries a partial income edit; nil fields keep their
// prior value.
type IncomeUpdate struct {
	Name       *string
	Amount     *float64
	Frequency  *string
	CustomDays *int
	LastPaid   *time.Time
}

func (s *IncomeService) Update(ctx context.Context, userID, id int64, upd IncomeUpdate) (*core.Income, error) {
	in, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		in.Name = *upd.Name
	}
	if upd.Amount != nil {
		in.Amount = *upd.Amount
	}
	if upd.Frequency != nil {
		in.Frequency = *upd.Frequency
	}
	if upd.CustomDays != nil {
		in.CustomDays = *upd.CustomDays
	}
	if upd.LastPaid != nil {
		in.LastPaid = upd.LastPaid
	}

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.repo.UpdateIncome(ctx, in); err != nil {
		return nil, fmt.Errorf("update income: %w", err)
	}

	slog.InfoContext(ctx, "Income updated",
		"id", in.ID,
		"user_id", in.UserID,
		"frequency", in.Frequency)
	return in, nil
}

// Deactivate stops future payday processing for the income without
// deleting its history.
func (s *IncomeService) Deactivate(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.SetIncomeActive(ctx, id, false)
}

func (s *IncomeService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteIncome(ctx, id)
}

// NextPayday projects the first payday strictly after the reference
// date.
func (s *IncomeService) NextPayday(ctx context.Context, userID, id int64, reference time.Time) (time.Time, error) {
	in, err := s.Get(ctx, userID, id)
	if err != nil {
		return time.Time{}, err
	}
	return in.NextPayday(reference)
}

// UpcomingPaydays projects the next count paydays after the reference
// date.
func (s *IncomeService) UpcomingPaydays(ctx context.Context, userID, id int64, reference time.Time, count int) ([]time.Time, error) {
	in, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return in.UpcomingPaydays(reference, count)
}

// TotalMonthly sums the monthly equivalents of all the user's incomes,
// active and inactive alike, matching the dashboard rollup.
func (s *IncomeService) TotalMonthly(ctx context.Context, userID int64) (float64, error) {
	incomes, err := s.repo.ListIncomes(ctx, userID)
	if err != nil {
		return 0, err
	}
	return core.TotalMonthlyIncome(incomes), nil
}
