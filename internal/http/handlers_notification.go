package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
)

type notificationResponse struct {
	ID          int64   `json:"notificationID"`
	Kind        string  `json:"kind"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
	Read        bool    `json:"read"`
	DeliveredAt *string `json:"deliveredAt,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func toNotificationResponse(n *core.Notification) notificationResponse {
	resp := notificationResponse{
		ID:        n.ID,
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
	if n.DeliveredAt != nil {
		delivered := n.DeliveredAt.UTC().Format(time.RFC3339)
		resp.DeliveredAt = &delivered
	}
	return resp
}

// handleListNotifications lists the user's notifications, newest
// first. Pass unread=true to filter out read rows.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	unreadOnly := strings.EqualFold(r.URL.Query().Get("unread"), "true")
	notifs, err := s.svcs.Notifications.List(r.Context(), userID, unreadOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]notificationResponse, 0, len(notifs))
	for i := range notifs {
		out = append(out, toNotificationResponse(&notifs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.svcs.Notifications.MarkRead(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	if err := s.svcs.Notifications.MarkAllRead(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
