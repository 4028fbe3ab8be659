package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
)

// TransactionRepository is the storage surface the transaction service
// needs.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, t *core.Transaction) error
	GetTransaction(ctx context.Context, id int64) (*core.Transaction, error)
	ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t *core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
}

// TransactionService owns the ledger: CRUD plus the forecasting and
// expense-type views derived from it.
type TransactionService struct {
	repo TransactionRepository
}

func NewTransactionService(repo TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

func (s *TransactionService) Create(ctx context.Context, t *core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (*core.Transaction, error) {
	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrNotOwner
	}
	return t, nil
}

// List returns the user's transactions in [from, to). A zero `to`
// means no upper bound.
func (s *TransactionService) List(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID, from, to)
}

// TransactionUpdate carries a partial transaction edit; nil fields
// keep their prior value.
type TransactionUpdate struct {
	Total         *float64
	Date          *time.Time
	Payee         *string
	CategoryID    *int64
	Notes         *string
	IsRecurring   *bool
	RecurDate     *time.Time
	ExpenseType   *string
	TaxRelated    *bool
	TravelRelated *bool
}

func (s *TransactionService) Update(ctx context.Context, userID, id int64, upd TransactionUpdate) (*core.Transaction, error) {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if upd.Total != nil {
		t.Total = *upd.Total
	}
	if upd.Date != nil {
		t.Date = *upd.Date
	}
	if upd.Payee != nil {
		t.Payee = *upd.Payee
	}
	if upd.CategoryID != nil {
		t.CategoryID = *upd.CategoryID
	}
	if upd.Notes != nil {
		t.Notes = *upd.Notes
	}
	if upd.IsRecurring != nil {
		t.IsRecurring = *upd.IsRecurring
	}
	if upd.RecurDate != nil {
		t.RecurDate = upd.RecurDate
	}
	if upd.ExpenseType != nil {
		t.ExpenseType = core.ExpenseType(*upd.ExpenseType)
	}
	if upd.TaxRelated != nil {
		t.TaxRelated = *upd.TaxRelated
	}
	if upd.TravelRelated != nil {
		t.TravelRelated = *upd.TravelRelated
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.repo.UpdateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteTransaction(ctx, id)
}

// Forecast projects monthly expenses over the given horizon from the
// user's full transaction history.
func (s *TransactionService) Forecast(ctx context.Context, userID int64, reference time.Time, months int) ([]core.MonthForecast, error) {
	txs, err := s.repo.ListTransactions(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	return core.ForecastExpenses(txs, reference, months), nil
}

// ExpenseTypeStats breaks the user's history down by expense type.
func (s *TransactionService) ExpenseTypeStats(ctx context.Context, userID int64) (core.ExpenseTypeStats, error) {
	txs, err := s.repo.ListTransactions(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return core.ExpenseTypeStats{}, err
	}
	return core.ComputeExpenseTypeStats(txs), nil
}

// SpendingByCategory nets the user's spending per category over
// [start, end).
func (s *TransactionService) SpendingByCategory(ctx context.Context, userID int64, start, end time.Time) (map[int64]float64, error) {
	txs, err := s.repo.ListTransactions(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return core.SpendingByCategory(txs, start, end), nil
}
