package services

import (
	"context"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/amqp"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/storage"
)

type fakeIncomeRepo struct {
	incomes map[int64]*core.Income
	nextID  int64
}

func newFakeIncomeRepo() *fakeIncomeRepo {
	return &fakeIncomeRepo{incomes: make(map[int64]*core.Income)}
}

func (r *fakeIncomeRepo) CreateIncome(_ context.Context, in *core.Income) error {
	r.nextID++
	in.ID = r.nextID
	cp := *in
	r.incomes[in.ID] = &cp
	return nil
}

func (r *fakeIncomeRepo) GetIncome(_ context.Context, id int64) (*core.Income, error) {
	in, ok := r.incomes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *in
	return &cp, nil
}

func (r *fakeIncomeRepo) ListIncomes(_ context.Context, userID int64) ([]core.Income, error) {
	var out []core.Income
	for id := int64(1); id <= r.nextID; id++ {
		if in, ok := r.incomes[id]; ok && in.UserID == userID {
			out = append(out, *in)
		}
	}
	return out, nil
}

func (r *fakeIncomeRepo) ListActiveIncomes(_ context.Context) ([]core.Income, error) {
	var out []core.Income
	for id := int64(1); id <= r.nextID; id++ {
		if in, ok := r.incomes[id]; ok && in.Active {
			out = append(out, *in)
		}
	}
	return out, nil
}

func (r *fakeIncomeRepo) UpdateIncome(_ context.Context, in *core.Income) error {
	if _, ok := r.incomes[in.ID]; !ok {
		return storage.ErrNotFound
	}
	cp := *in
	r.incomes[in.ID] = &cp
	return nil
}

func (r *fakeIncomeRepo) SetIncomeActive(_ context.Context, id int64, active bool) error {
	in, ok := r.incomes[id]
	if !ok {
		return storage.ErrNotFound
	}
	in.Active = active
	return nil
}

func (r *fakeIncomeRepo) SetIncomeLastPaid(_ context.Context, id int64, paid time.Time) error {
	in, ok := r.incomes[id]
	if !ok {
		return storage.ErrNotFound
	}
	in.LastPaid = &paid
	return nil
}

func (r *fakeIncomeRepo) DeleteIncome(_ context.Context, id int64) error {
	if _, ok := r.incomes[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.incomes, id)
	return nil
}

type fakeTransactionRepo struct {
	txs    map[int64]*core.Transaction
	nextID int64
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{txs: make(map[int64]*core.Transaction)}
}

func (r *fakeTransactionRepo) CreateTransaction(_ context.Context, t *core.Transaction) error {
	r.nextID++
	t.ID = r.nextID
	cp := *t
	r.txs[t.ID] = &cp
	return nil
}

func (r *fakeTransactionRepo) GetTransaction(_ context.Context, id int64) (*core.Transaction, error) {
	t, ok := r.txs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTransactionRepo) ListTransactions(_ context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	var out []core.Transaction
	for id := int64(1); id <= r.nextID; id++ {
		t, ok := r.txs[id]
		if !ok || t.UserID != userID {
			continue
		}
		if t.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !t.Date.Before(to) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTransactionRepo) UpdateTransaction(_ context.Context, t *core.Transaction) error {
	if _, ok := r.txs[t.ID]; !ok {
		return storage.ErrNotFound
	}
	cp := *t
	r.txs[t.ID] = &cp
	return nil
}

func (r *fakeTransactionRepo) DeleteTransaction(_ context.Context, id int64) error {
	if _, ok := r.txs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.txs, id)
	return nil
}

type fakeBudgetRepo struct {
	budgets map[int64]*core.Budget
	nextID  int64
}

func newFakeBudgetRepo() *fakeBudgetRepo {
	return &fakeBudgetRepo{budgets: make(map[int64]*core.Budget)}
}

func copyBudget(b *core.Budget) *core.Budget {
	cp := *b
	cp.Categories = nil
	for _, c := range b.Categories {
		cc := *c
		cp.Categories = append(cp.Categories, &cc)
	}
	return &cp
}

func (r *fakeBudgetRepo) CreateBudget(_ context.Context, b *core.Budget) error {
	r.nextID++
	b.ID = r.nextID
	for i, c := range b.Categories {
		if c.ID == 0 {
			c.ID = int64(i + 1)
		}
	}
	r.budgets[b.ID] = copyBudget(b)
	return nil
}

func (r *fakeBudgetRepo) GetBudget(_ context.Context, id int64) (*core.Budget, error) {
	b, ok := r.budgets[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyBudget(b), nil
}

func (r *fakeBudgetRepo) GetBudgetByMonth(_ context.Context, userID int64, month string) (*core.Budget, error) {
	for id := r.nextID; id >= 1; id-- {
		if b, ok := r.budgets[id]; ok && b.UserID == userID && b.Month == month {
			return copyBudget(b), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *fakeBudgetRepo) ListBudgets(_ context.Context, userID int64) ([]core.Budget, error) {
	var out []core.Budget
	for id := int64(1); id <= r.nextID; id++ {
		if b, ok := r.budgets[id]; ok && b.UserID == userID {
			out = append(out, *copyBudget(b))
		}
	}
	return out, nil
}

func (r *fakeBudgetRepo) UpdateBudget(_ context.Context, b *core.Budget) error {
	if _, ok := r.budgets[b.ID]; !ok {
		return storage.ErrNotFound
	}
	next := int64(0)
	for _, c := range b.Categories {
		if c.ID > next {
			next = c.ID
		}
	}
	for _, c := range b.Categories {
		if c.ID == 0 {
			next++
			c.ID = next
		}
	}
	r.budgets[b.ID] = copyBudget(b)
	return nil
}

func (r *fakeBudgetRepo) DeleteBudget(_ context.Context, id int64) error {
	if _, ok := r.budgets[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.budgets, id)
	return nil
}

type fakeNotificationRepo struct {
	notifications []*core.Notification
	nextID        int64
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *core.Notification) error {
	r.nextID++
	n.ID = r.nextID
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r *fakeNotificationRepo) ListNotifications(_ context.Context, userID int64, unreadOnly bool) ([]core.Notification, error) {
	var out []core.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkNotificationRead(_ context.Context, userID, id int64) error {
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return storage.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllNotificationsRead(_ context.Context, userID int64) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

type fakePublisher struct {
	published []*amqp.NotificationMessage
	err       error
}

func (p *fakePublisher) PublishNotification(_ context.Context, msg *amqp.NotificationMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

type fakeSpending struct {
	spending map[int64]float64
}

func (s *fakeSpending) SpendingByCategory(_ context.Context, _ int64, _, _ time.Time) (map[int64]float64, error) {
	return s.spending, nil
}
