package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
)

// PaydayIncomeStore is the income surface the payday processor sweeps.
type PaydayIncomeStore interface {
	ListActiveIncomes(ctx context.Context) ([]core.Income, error)
	SetIncomeLastPaid(ctx context.Context, id int64, paid time.Time) error
}

// PaydayProcessor sweeps active incomes once per interval, records
// paydays that fall due, and queues a notification for each.
type PaydayProcessor struct {
	incomes       PaydayIncomeStore
	notifications *NotificationService
}

func NewPaydayProcessor(incomes PaydayIncomeStore, notifications *NotificationService) *PaydayProcessor {
	return &PaydayProcessor{
		incomes:       incomes,
		notifications: notifications,
	}
}

// ProcessDuePaydays applies every payday due on the given day. Each
// income is handled independently: a failure on one income is logged
// and the sweep continues, so a single bad record cannot starve the
// rest. Returns the number of paydays applied.
func (p *PaydayProcessor) ProcessDuePaydays(ctx context.Context, today time.Time) (int, error) {
	if p.incomes == nil || p.notifications == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	incomes, err := p.incomes.ListActiveIncomes(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active incomes: %w", err)
	}

	slog.InfoContext(ctx, "Processing paydays",
		"total_active", len(incomes),
		"processing_date", today.Format("2006-01-02"))

	processed := 0
	for i := range incomes {
		in := &incomes[i]

		due, err := in.DueToday(today)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check payday dueness",
				"income_id", in.ID,
				"user_id", in.UserID,
				"frequency", in.Frequency,
				"error", err)
			continue
		}
		if !due {
			continue
		}

		// Advance the anchor first so a crashed run never double-pays.
		if err := p.incomes.SetIncomeLastPaid(ctx, in.ID, today); err != nil {
			slog.ErrorContext(ctx, "Failed to advance payday anchor",
				"income_id", in.ID,
				"error", err)
			continue
		}

		n := &core.Notification{
			UserID:  in.UserID,
			Kind:    core.NotificationPayday,
			Title:   "Payday",
			Message: fmt.Sprintf("%s: $%.2f arrived today.", in.Name, in.Amount),
		}
		if err := p.notifications.Create(ctx, n); err != nil {
			slog.ErrorContext(ctx, "Failed to create payday notification",
				"income_id", in.ID,
				"user_id", in.UserID,
				"error", err)
			// Anchor already advanced; the payday itself stands.
		}

		processed++
		slog.InfoContext(ctx, "Payday processed",
			"income_id", in.ID,
			"user_id", in.UserID,
			"name", in.Name,
			"amount", in.Amount,
			"payday", today.Format("2006-01-02"))
	}

	slog.InfoContext(ctx, "Payday processing complete",
		"processed", processed,
		"total_checked", len(incomes))

	return processed, nil
}

// Run sweeps on the given interval until the context is cancelled. The
// first sweep happens immediately.
func (p *PaydayProcessor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.ProcessDuePaydays(ctx, time.Now().UTC()); err != nil {
			slog.ErrorContext(ctx, "Payday sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
