package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Notifications persisted, by type.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notification events persisted",
		},
		[]string{"type"},
	)

	// Push events that could not be enqueued because a subscriber buffer was full.
	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Notification push events dropped due to slow subscribers",
		},
	)

	// Open delivery channels.
	StreamSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_stream_subscribers",
			Help: "Currently connected notification stream subscribers",
		},
	)

	// Activity entries appended, by action kind.
	ActivityRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_entries_total",
			Help: "Total number of activity log entries recorded",
		},
		[]string{"action"},
	)
)
