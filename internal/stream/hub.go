// Package stream owns the long-lived notification delivery channels: a
// registry of per-user subscribers, each backed by a buffered channel.
// Publishing never blocks; a subscriber that cannot keep up loses pushes,
// not persisted notifications.
package stream

import (
	"sync"

	"taskflow/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// subscriberBuffer bounds how many undelivered pushes a single connection
// may hold before further pushes are dropped for it.
const subscriberBuffer = 16

// Event is one push message for a connected client.
type Event struct {
	Name string
	Data interface{}
}

// Subscriber is one open delivery channel belonging to one user. A user
// may hold several (multiple tabs or devices).
type Subscriber struct {
	UserID uuid.UUID
	events chan Event
}

// Events exposes the subscriber's receive side.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[*Subscriber]struct{}
	log         *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[*Subscriber]struct{}),
		log:         log,
	}
}

// Subscribe registers a new delivery channel for the user.
func (h *Hub) Subscribe(userID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		UserID: userID,
		events: make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	set, ok := h.subscribers[userID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subscribers[userID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	metrics.StreamSubscribers.Inc()
	return sub
}

// Unsubscribe removes the channel and releases its resources. Safe to call
// for an already-removed subscriber.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	set, ok := h.subscribers[sub.UserID]
	if ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			close(sub.events)
			metrics.StreamSubscribers.Dec()
		}
		if len(set) == 0 {
			delete(h.subscribers, sub.UserID)
		}
	}
	h.mu.Unlock()
}

// Publish enqueues the event on every open channel of the user without
// blocking. Events for one recipient keep their publish order per channel;
// a full buffer drops the event for that channel only.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[userID] {
		select {
		case sub.events <- event:
		default:
			metrics.NotificationsDropped.Inc()
			h.log.Warn("dropping notification push for slow subscriber",
				zap.String("user_id", userID.String()))
		}
	}
}

// Connections reports how many channels the user currently holds.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
