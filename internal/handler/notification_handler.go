package handler

import (
	"io"
	"net/http"
	"time"

	"taskflow/internal/auth"
	"taskflow/internal/model"
	"taskflow/internal/repository"
	"taskflow/internal/service"
	"taskflow/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notifications repository.NotificationRepositoryInterface
	hub           *stream.Hub
	notifier      *service.Notifier
	jwtSecret     string
}

func NewNotificationHandler(
	notifications repository.NotificationRepositoryInterface,
	hub *stream.Hub,
	notifier *service.Notifier,
	jwtSecret string,
) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		hub:           hub,
		notifier:      notifier,
		jwtSecret:     jwtSecret,
	}
}

type NotificationResponse struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	EntityType string  `json:"entity_type,omitempty"`
	EntityID   *string `json:"entity_id,omitempty"`
	IsRead     bool    `json:"is_read"`
	CreatedAt  string  `json:"created_at"`
}

func notificationResponse(n *model.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:         n.ID.String(),
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		EntityType: n.EntityType,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
	}
	if n.EntityID != nil {
		id := n.EntityID.String()
		resp.EntityID = &id
	}
	return resp
}

// List godoc
// @Summary  List the caller's notifications, newest first
// @Tags     Notifications
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} NotificationResponse
// @Router   /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	notifications, err := h.notifications.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	response := make([]NotificationResponse, len(notifications))
	for i := range notifications {
		response[i] = notificationResponse(&notifications[i])
	}
	c.JSON(http.StatusOK, response)
}

// UnreadCount godoc
// @Summary  Get the caller's unread notification count
// @Tags     Notifications
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} map[string]int64
// @Router   /notifications/unread/count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.notifications.CountUnread(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unreadCount": count})
}

// MarkRead godoc
// @Summary  Mark one notification as read
// @Tags     Notifications
// @Security BearerAuth
// @Param    id path string true "Notification ID"
// @Success  200
// @Router   /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID format"})
		return
	}

	notification, err := h.notifications.GetByID(c.Request.Context(), notificationID)
	if err != nil {
		if err == repository.ErrNotificationNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notification"})
		}
		return
	}
	if notification.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Notification belongs to another user"})
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), notificationID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification read"})
		return
	}

	h.notifier.PushUnreadCount(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead godoc
// @Summary  Mark all of the caller's notifications as read
// @Tags     Notifications
// @Security BearerAuth
// @Success  200
// @Router   /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}

	h.notifier.PushUnreadCount(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// Stream godoc
// @Summary  Open a server-sent events stream of notification pushes
// @Description Authenticates via a token query parameter because
// @Description EventSource clients cannot set an Authorization header.
// @Tags     Notifications
// @Produce  text/event-stream
// @Param    token query string true "Bearer token"
// @Success  200
// @Router   /notifications/stream [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	userIDStr, err := auth.ParseToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
		return
	}

	sub := h.hub.Subscribe(userID)
	defer h.hub.Unsubscribe(sub)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	// Seed the connection with the current unread count so a client does
	// not have to wait for the next mutation to sync its badge.
	h.notifier.PushUnreadCount(c.Request.Context(), userID)

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(event.Name, event.Data)
			return true
		}
	})
}
