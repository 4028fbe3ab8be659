package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/storage"
)

// ErrInvalidBudget wraps the human-readable reason a budget failed
// validation.
var ErrInvalidBudget = errors.New("invalid budget")

// BudgetRepository is the storage surface the budget service needs.
type BudgetRepository interface {
	CreateBudget(ctx context.Context, b *core.Budget) error
	GetBudget(ctx context.Context, id int64) (*core.Budget, error)
	GetBudgetByMonth(ctx context.Context, userID int64, month string) (*core.Budget, error)
	ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
	UpdateBudget(ctx context.Context, b *core.Budget) error
	DeleteBudget(ctx context.Context, id int64) error
}

// SpendingSource supplies actual per-category spending for comparison
// reports. The budget allocator never walks raw transactions itself.
type SpendingSource interface {
	SpendingByCategory(ctx context.Context, userID int64, start, end time.Time) (map[int64]float64, error)
}

// BudgetService owns budget lifecycle and the planned-versus-actual
// reports built on top of it.
type BudgetService struct {
	repo     BudgetRepository
	spending SpendingSource
}

func NewBudgetService(repo BudgetRepository, spending SpendingSource) *BudgetService {
	return &BudgetService{repo: repo, spending: spending}
}

func (s *BudgetService) Create(ctx context.Context, b *core.Budget) error {
	if _, _, err := MonthRange(b.Month); err != nil {
		return fmt.Errorf("%w: month must be YYYY-MM", ErrInvalidBudget)
	}
	b.RecalculateTotal()
	if ok, reason := b.Validate(); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidBudget, reason)
	}
	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

// CreateFromTemplate instantiates a built-in template as a new budget
// for the user, sizing percentage categories against the given income.
func (s *BudgetService) CreateFromTemplate(ctx context.Context, userID, templateID int64, month string, income float64) (*core.Budget, error) {
	tpl := core.TemplateByID(templateID)
	if tpl == nil {
		return nil, fmt.Errorf("budget template %d: %w", templateID, ErrTemplateNotFound)
	}

	b := tpl.CloneForUser(userID, month, income)
	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("create budget from template: %w", err)
	}

	slog.InfoContext(ctx, "Budget created from template",
		"budget_id", b.ID,
		"user_id", userID,
		"template", tpl.Name,
		"month", month)
	return b, nil
}

// ErrTemplateNotFound is returned for an unknown template ID.
var ErrTemplateNotFound = errors.New("budget template not found")

func (s *BudgetService) Get(ctx context.Context, userID, id int64) (*core.Budget, error) {
	b, err := s.repo.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrNotOwner
	}
	return b, nil
}

func (s *BudgetService) List(ctx context.Context, userID int64) ([]core.Budget, error) {
	return s.repo.ListBudgets(ctx, userID)
}

// ApplyIncomeToMonth folds an extra monthly amount into the user's
// budget for the given month, resizing percentage categories against
// the new income. A month with no budget is a no-op.
func (s *BudgetService) ApplyIncomeToMonth(ctx context.Context, userID int64, month string, amount float64) error {
	b, err := s.repo.GetBudgetByMonth(ctx, userID, month)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("budget for %s: %w", month, err)
	}
	b.SetIncome(b.Income + amount)
	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return fmt.Errorf("apply income to budget: %w", err)
	}
	return nil
}

// BudgetUpdate carries a partial budget header edit; nil fields keep
// their prior value.
type BudgetUpdate struct {
	Name   *string
	Month  *string
	Income *float64
}

// Update applies header-level edits. An income change re-derives every
// percentage-sized category through SetIncome.
func (s *BudgetService) Update(ctx context.Context, userID, id int64, upd BudgetUpdate) (*core.Budget, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		b.Name = *upd.Name
	}
	if upd.Month != nil {
		if _, _, err := MonthRange(*upd.Month); err != nil {
			return nil, fmt.Errorf("%w: month must be YYYY-MM", ErrInvalidBudget)
		}
		b.Month = *upd.Month
	}
	if upd.Income != nil {
		b.SetIncome(*upd.Income)
	}

	if ok, reason := b.Validate(); !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBudget, reason)
	}
	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return b, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteBudget(ctx, id)
}

// SetIncome updates the budget income and re-derives every
// percentage-sized category.
func (s *BudgetService) SetIncome(ctx context.Context, userID, id int64, income float64) (*core.Budget, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	b.SetIncome(income)
	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("set budget income: %w", err)
	}
	return b, nil
}

func (s *BudgetService) AddCategory(ctx context.Context, userID, budgetID int64, c *core.Category) (*core.Budget, error) {
	b, err := s.Get(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}
	if c.PlannedPercent != nil {
		c.SetPlannedPercentage(*c.PlannedPercent, b.Income)
	}
	b.AddCategory(c)
	if ok, reason := b.Validate(); !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBudget, reason)
	}
	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("add budget category: %w", err)
	}
	return b, nil
}

func (s *BudgetService) EditCategory(ctx context.Context, userID, budgetID, categoryID int64, upd core.CategoryUpdate) (*core.Budget, error) {
	b, err := s.Get(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}
	if !b.EditCategory(categoryID, upd) {
		return nil, fmt.Errorf("budget category %d: %w", categoryID, ErrCategoryNotFound)
	}
	if ok, reason := b.Validate(); !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBudget, reason)
	}
	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("edit budget category: %w", err)
	}
	return b, nil
}

// ErrCategoryNotFound is returned when a category ID is absent from the
// budget.
var ErrCategoryNotFound = errors.New("budget category not found")

func (s *BudgetService) DeleteCategory(ctx context.Context, userID, budgetID, categoryID int64) (*core.Budget, error) {
	b, err := s.Get(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}
	if !b.DeleteCategory(categoryID) {
		return nil, fmt.Errorf("budget category %d: %w", categoryID, ErrCategoryNotFound)
	}
	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("delete budget category: %w", err)
	}
	return b, nil
}

// Compare builds the planned-versus-actual report for the budget's
// month.
func (s *BudgetService) Compare(ctx context.Context, userID, id int64) (core.BudgetComparison, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return core.BudgetComparison{}, err
	}

	spending, err := s.monthSpending(ctx, userID, b.Month)
	if err != nil {
		return core.BudgetComparison{}, err
	}
	return b.Compare(spending), nil
}

// Health condenses the comparison into an overall status.
func (s *BudgetService) Health(ctx context.Context, userID, id int64) (core.HealthSummary, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return core.HealthSummary{}, err
	}

	spending, err := s.monthSpending(ctx, userID, b.Month)
	if err != nil {
		return core.HealthSummary{}, err
	}
	return b.Health(spending), nil
}

func (s *BudgetService) monthSpending(ctx context.Context, userID int64, month string) (map[int64]float64, error) {
	start, end, err := MonthRange(month)
	if err != nil {
		return nil, err
	}
	spending, err := s.spending.SpendingByCategory(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("month spending: %w", err)
	}
	return spending, nil
}

// MonthRange converts a YYYY-MM month label to the half-open UTC range
// [first of month, first of next month).
func MonthRange(month string) (start, end time.Time, err error) {
	start, err = time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse month %q: %w", month, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}
