package services

import (
	"context"
	"testing"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProcessDuePaydays(t *testing.T) {
	ctx := context.Background()

	setup := func() (*fakeIncomeRepo, *fakeNotificationRepo, *fakePublisher, *PaydayProcessor) {
		incomes := newFakeIncomeRepo()
		notifs := &fakeNotificationRepo{}
		pub := &fakePublisher{}
		proc := NewPaydayProcessor(incomes, NewNotificationService(notifs, pub))
		return incomes, notifs, pub, proc
	}

	t.Run("due income is paid and notified", func(t *testing.T) {
		incomes, notifs, pub, proc := setup()
		paid := day(2024, 1, 1)
		incomes.CreateIncome(ctx, &core.Income{
			UserID: 1, Name: "Salary", Amount: 2000,
			Frequency: "bi-weekly", LastPaid: &paid, Active: true,
		})

		n, err := proc.ProcessDuePaydays(ctx, day(2024, 1, 15))
		if err != nil {
			t.Fatalf("ProcessDuePaydays() error: %v", err)
		}
		if n != 1 {
			t.Fatalf("processed = %d, want 1", n)
		}

		got, _ := incomes.GetIncome(ctx, 1)
		if got.LastPaid == nil || !got.LastPaid.Equal(day(2024, 1, 15)) {
			t.Errorf("anchor = %v, want 2024-01-15", got.LastPaid)
		}

		if len(notifs.notifications) != 1 {
			t.Fatalf("notifications = %d, want 1", len(notifs.notifications))
		}
		if notifs.notifications[0].Kind != core.NotificationPayday {
			t.Errorf("kind = %q, want payday", notifs.notifications[0].Kind)
		}
		if len(pub.published) != 1 {
			t.Fatalf("published = %d, want 1", len(pub.published))
		}
		if pub.published[0].UserID != 1 {
			t.Errorf("published user = %d, want 1", pub.published[0].UserID)
		}
	})

	t.Run("not due is untouched", func(t *testing.T) {
		incomes, notifs, _, proc := setup()
		paid := day(2024, 1, 1)
		incomes.CreateIncome(ctx, &core.Income{
			UserID: 1, Name: "Salary", Amount: 2000,
			Frequency: "bi-weekly", LastPaid: &paid, Active: true,
		})

		n, err := proc.ProcessDuePaydays(ctx, day(2024, 1, 10))
		if err != nil {
			t.Fatalf("ProcessDuePaydays() error: %v", err)
		}
		if n != 0 {
			t.Errorf("processed = %d, want 0", n)
		}
		got, _ := incomes.GetIncome(ctx, 1)
		if !got.LastPaid.Equal(paid) {
			t.Errorf("anchor moved to %v", got.LastPaid)
		}
		if len(notifs.notifications) != 0 {
			t.Errorf("notifications = %d, want 0", len(notifs.notifications))
		}
	})

	t.Run("second sweep same day is idempotent", func(t *testing.T) {
		incomes, notifs, _, proc := setup()
		paid := day(2024, 1, 1)
		incomes.CreateIncome(ctx, &core.Income{
			UserID: 1, Name: "Salary", Amount: 2000,
			Frequency: "weekly", LastPaid: &paid, Active: true,
		})

		today := day(2024, 1, 8)
		if n, _ := proc.ProcessDuePaydays(ctx, today); n != 1 {
			t.Fatalf("first sweep processed %d, want 1", n)
		}
		if n, _ := proc.ProcessDuePaydays(ctx, today); n != 0 {
			t.Errorf("second sweep processed %d, want 0", n)
		}
		if len(notifs.notifications) != 1 {
			t.Errorf("notifications = %d, want 1", len(notifs.notifications))
		}
	})

	t.Run("bad record does not stop the sweep", func(t *testing.T) {
		incomes, _, _, proc := setup()
		paid := day(2024, 1, 1)
		// custom frequency without interval fails dueness
		incomes.CreateIncome(ctx, &core.Income{
			UserID: 1, Name: "Broken", Amount: 100,
			Frequency: "custom", LastPaid: &paid, Active: true,
		})
		incomes.CreateIncome(ctx, &core.Income{
			UserID: 2, Name: "Salary", Amount: 2000,
			Frequency: "weekly", LastPaid: &paid, Active: true,
		})

		n, err := proc.ProcessDuePaydays(ctx, day(2024, 1, 8))
		if err != nil {
			t.Fatalf("ProcessDuePaydays() error: %v", err)
		}
		if n != 1 {
			t.Errorf("processed = %d, want 1 (healthy income only)", n)
		}
	})

	t.Run("inactive income is skipped", func(t *testing.T) {
		incomes, _, _, proc := setup()
		paid := day(2024, 1, 1)
		incomes.CreateIncome(ctx, &core.Income{
			UserID: 1, Name: "Old job", Amount: 2000,
			Frequency: "weekly", LastPaid: &paid, Active: false,
		})

		n, err := proc.ProcessDuePaydays(ctx, day(2024, 1, 8))
		if err != nil {
			t.Fatalf("ProcessDuePaydays() error: %v", err)
		}
		if n != 0 {
			t.Errorf("processed = %d, want 0", n)
		}
	})

	t.Run("publish failure does not lose the payday", func(t *testing.T) {
		incomes, notifs, pub, proc := setup()
		pub.err = context.DeadlineExceeded
		paid := day(2024, 1, 1)
		incomes.CreateIncome(ctx, &core.Income{
			UserID: 1, Name: "Salary", Amount: 2000,
			Frequency: "weekly", LastPaid: &paid, Active: true,
		})

		n, err := proc.ProcessDuePaydays(ctx, day(2024, 1, 8))
		if err != nil {
			t.Fatalf("ProcessDuePaydays() error: %v", err)
		}
		if n != 1 {
			t.Errorf("processed = %d, want 1", n)
		}
		if len(notifs.notifications) != 1 {
			t.Errorf("notification row should exist despite publish failure")
		}
	})
}
