package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications persisted",
		},
		[]string{"type"},
	)

	EmailDeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_email_failures_total",
			Help: "Total number of failed email delivery attempts",
		},
	)

	AnnouncementFanoutSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "announcement_fanout_recipients",
			Help:    "Number of recipients per announcement fan-out",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)
