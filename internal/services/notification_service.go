package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/amqp"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
)

// NotificationRepository is the storage surface the notification
// service needs.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *core.Notification) error
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]core.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) error
}

// NotificationPublisher pushes a queued-notification message to the
// broker for out-of-process delivery.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// NotificationService persists notifications and publishes a delivery
// message per row. The database row is the source of truth; the queue
// message only carries identifiers.
type NotificationService struct {
	repo      NotificationRepository
	publisher NotificationPublisher
}

func NewNotificationService(repo NotificationRepository, publisher NotificationPublisher) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher}
}

// Create stores the notification and publishes it for delivery. The
// store is authoritative: a publish failure is logged but does not fail
// the call, since the notification is still visible in the API.
func (s *NotificationService) Create(ctx context.Context, n *core.Notification) error {
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "Notification publisher not available, skipping delivery message",
			"notification_id", n.ID)
		return nil
	}

	msg := amqp.NewNotificationMessage(n.ID, n.UserID, n.Kind)
	if err := s.publisher.PublishNotification(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish notification message",
			"notification_id", n.ID,
			"user_id", n.UserID,
			"error", err)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID int64, unreadOnly bool) ([]core.Notification, error) {
	return s.repo.ListNotifications(ctx, userID, unreadOnly)
}

// MarkRead marks a single notification as read. The update is scoped
// to the owning user, so a foreign id reports ErrNotFound.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkNotificationRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}
