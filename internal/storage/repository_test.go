package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testUser(t *testing.T, repo *SQLiteRepository) *core.User {
	t.Helper()
	u := &core.User{Email: "test@example.com", FirstName: "Test", LastName: "User"}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	return u
}

func TestIncomeRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := testUser(t, repo)

	paid := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := &core.Income{
		UserID:    u.ID,
		Name:      "Salary",
		Amount:    2000,
		Frequency: "bi-weekly",
		LastPaid:  &paid,
		Active:    true,
	}
	if err := repo.CreateIncome(ctx, in); err != nil {
		t.Fatalf("CreateIncome() error: %v", err)
	}
	if in.ID == 0 {
		t.Fatal("CreateIncome() did not assign an ID")
	}

	got, err := repo.GetIncome(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetIncome() error: %v", err)
	}
	if got.Name != "Salary" || got.Frequency != "bi-weekly" || !got.Active {
		t.Errorf("GetIncome() = %+v", got)
	}
	if got.LastPaid == nil || !got.LastPaid.Equal(paid) {
		t.Errorf("LastPaid = %v, want %v", got.LastPaid, paid)
	}

	next := paid.AddDate(0, 0, 14)
	if err := repo.SetIncomeLastPaid(ctx, in.ID, next); err != nil {
		t.Fatalf("SetIncomeLastPaid() error: %v", err)
	}
	got, err = repo.GetIncome(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetIncome() after advance error: %v", err)
	}
	if got.LastPaid == nil || !got.LastPaid.Equal(next) {
		t.Errorf("LastPaid after advance = %v, want %v", got.LastPaid, next)
	}

	if err := repo.SetIncomeActive(ctx, in.ID, false); err != nil {
		t.Fatalf("SetIncomeActive() error: %v", err)
	}
	active, err := repo.ListActiveIncomes(ctx)
	if err != nil {
		t.Fatalf("ListActiveIncomes() error: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ListActiveIncomes() = %d incomes, want 0", len(active))
	}
}

func TestIncomeNotFound(t *testing.T) {
	repo := testRepo(t)
	if _, err := repo.GetIncome(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetIncome(42) error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteIncome(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteIncome(42) error = %v, want ErrNotFound", err)
	}
}

func TestTransactionRangeQuery(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := testUser(t, repo)

	dates := []time.Time{
		time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		tx := &core.Transaction{
			UserID:      u.ID,
			Total:       float64(100 * (i + 1)),
			Date:        d,
			Payee:       "store",
			CategoryID:  1,
			ExpenseType: core.ExpenseVariable,
		}
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction() error: %v", err)
		}
	}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	got, err := repo.ListTransactions(ctx, u.ID, from, to)
	if err != nil {
		t.Fatalf("ListTransactions() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListTransactions() = %d rows, want 2 (March only)", len(got))
	}
	if got[0].Total != 200 || got[1].Total != 300 {
		t.Errorf("ListTransactions() totals = %v, %v", got[0].Total, got[1].Total)
	}
}

func TestBudgetRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := testUser(t, repo)

	b := &core.Budget{UserID: u.ID, Name: "March", Month: "2024-03", Income: 3000}
	pctCat := &core.Category{Name: "Savings"}
	pctCat.SetPlannedPercentage(20, b.Income)
	b.AddCategory(pctCat)
	b.AddCategory(&core.Category{Name: "Rent", PlannedAmount: 1200})

	if err := repo.CreateBudget(ctx, b); err != nil {
		t.Fatalf("CreateBudget() error: %v", err)
	}

	got, err := repo.GetBudget(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBudget() error: %v", err)
	}
	if len(got.Categories) != 2 {
		t.Fatalf("GetBudget() categories = %d, want 2", len(got.Categories))
	}
	if got.TotalPlanned != 1800 {
		t.Errorf("TotalPlanned = %v, want 1800", got.TotalPlanned)
	}
	if !got.Categories[0].SizedByPercentage() {
		t.Error("percentage sizing lost on round trip")
	}
	if got.Categories[1].SizedByPercentage() {
		t.Error("amount-sized category gained a percentage on round trip")
	}

	got.SetIncome(4000)
	if err := repo.UpdateBudget(ctx, got); err != nil {
		t.Fatalf("UpdateBudget() error: %v", err)
	}
	again, err := repo.GetBudgetByMonth(ctx, u.ID, "2024-03")
	if err != nil {
		t.Fatalf("GetBudgetByMonth() error: %v", err)
	}
	if again.Categories[0].PlannedAmount != 800 {
		t.Errorf("percentage category after income change = %v, want 800", again.Categories[0].PlannedAmount)
	}
}

func TestNotificationUnreadFilter(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := testUser(t, repo)

	for i := 0; i < 3; i++ {
		n := &core.Notification{UserID: u.ID, Kind: core.NotificationPayday, Title: "Payday", Message: "Salary arrived"}
		if err := repo.CreateNotification(ctx, n); err != nil {
			t.Fatalf("CreateNotification() error: %v", err)
		}
		if i == 0 {
			if err := repo.MarkNotificationRead(ctx, u.ID, n.ID); err != nil {
				t.Fatalf("MarkNotificationRead() error: %v", err)
			}
		}
	}

	unread, err := repo.ListNotifications(ctx, u.ID, true)
	if err != nil {
		t.Fatalf("ListNotifications(unread) error: %v", err)
	}
	if len(unread) != 2 {
		t.Errorf("unread = %d, want 2", len(unread))
	}

	if err := repo.MarkAllNotificationsRead(ctx, u.ID); err != nil {
		t.Fatalf("MarkAllNotificationsRead() error: %v", err)
	}
	unread, err = repo.ListNotifications(ctx, u.ID, true)
	if err != nil {
		t.Fatalf("ListNotifications() after mark all error: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("unread after mark all = %d, want 0", len(unread))
	}
}

func TestNotificationDelivery(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	u := testUser(t, repo)

	n := &core.Notification{UserID: u.ID, Kind: core.NotificationPayday, Title: "Payday", Message: "Salary arrived"}
	if err := repo.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification() error: %v", err)
	}

	got, err := repo.GetNotification(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetNotification() error: %v", err)
	}
	if got.DeliveredAt != nil {
		t.Errorf("DeliveredAt = %v before delivery, want nil", got.DeliveredAt)
	}

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := repo.MarkNotificationDelivered(ctx, n.ID, at); err != nil {
		t.Fatalf("MarkNotificationDelivered() error: %v", err)
	}

	got, err = repo.GetNotification(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetNotification() after delivery error: %v", err)
	}
	if got.DeliveredAt == nil || !got.DeliveredAt.Equal(at) {
		t.Errorf("DeliveredAt = %v, want %v", got.DeliveredAt, at)
	}

	if err := repo.MarkNotificationDelivered(ctx, 999, at); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkNotificationDelivered(999) error = %v, want ErrNotFound", err)
	}
}
