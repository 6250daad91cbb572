package service

import (
	"context"

	"taskflow/internal/metrics"
	"taskflow/internal/model"
	"taskflow/internal/repository"
	"taskflow/internal/stream"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier fans activity out to affected users: one persisted notification
// per recipient, plus a push of the fresh unread count over every open
// delivery channel. Like the activity recorder it is best-effort and runs
// only after the triggering mutation has committed.
type Notifier struct {
	repo repository.NotificationRepositoryInterface
	hub  *stream.Hub
	log  *zap.Logger
}

func NewNotifier(repo repository.NotificationRepositoryInterface, hub *stream.Hub, log *zap.Logger) *Notifier {
	return &Notifier{repo: repo, hub: hub, log: log}
}

// Notify persists a notification for every recipient and pushes each one's
// unread count. Recipients are processed in order, so a single recipient
// sees pushes in the order their notifications were recorded.
func (n *Notifier) Notify(
	ctx context.Context,
	recipients []uuid.UUID,
	notifType, title, message, entityType string,
	entityID *uuid.UUID,
) {
	for _, userID := range recipients {
		notification := &model.Notification{
			UserID:     userID,
			Type:       notifType,
			Title:      title,
			Message:    message,
			EntityType: entityType,
			EntityID:   entityID,
		}

		if err := n.repo.Create(ctx, notification); err != nil {
			n.log.Error("failed to persist notification",
				zap.String("user_id", userID.String()),
				zap.String("type", notifType),
				zap.Error(err))
			continue
		}
		metrics.NotificationsCreated.WithLabelValues(notifType).Inc()

		n.PushUnreadCount(ctx, userID)
	}
}

// PushUnreadCount sends the user's current unread count over their open
// delivery channels, if any. Persisted state is authoritative; a failed
// or dropped push is picked up on the next poll.
func (n *Notifier) PushUnreadCount(ctx context.Context, userID uuid.UUID) {
	count, err := n.repo.CountUnread(ctx, userID)
	if err != nil {
		n.log.Error("failed to count unread notifications",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return
	}

	n.hub.Publish(userID, stream.Event{
		Name: "notification",
		Data: map[string]interface{}{"unreadCount": count},
	})
}
