package amqp

import (
	"encoding/json"
	"time"
)

// NotificationMessage is the lightweight payload published when a
// notification row is created. It carries only identifiers; the notify
// worker fetches the full notification from the database, so a stale
// message can never deliver stale content.
type NotificationMessage struct {
	NotificationID int64     `json:"notification_id"`
	UserID         int64     `json:"user_id"`
	Kind           string    `json:"kind"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewNotificationMessage(notificationID, userID int64, kind string) *NotificationMessage {
	return &NotificationMessage{
		NotificationID: notificationID,
		UserID:         userID,
		Kind:           kind,
		Timestamp:      time.Now(),
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
