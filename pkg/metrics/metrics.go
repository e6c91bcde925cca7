package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Check-in lifecycle metrics
	CheckinsCreated    *prometheus.CounterVec
	CheckinsAttended   prometheus.Counter
	WaitingTimeMinutes prometheus.Histogram
	QueueLength        prometheus.Gauge

	// Reporting metrics
	ReportRequests *prometheus.CounterVec

	// Outbox metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
}

// New creates and registers all application metrics on the default
// registerer.
func New(namespace string) *Metrics {
	return NewWith(prometheus.DefaultRegisterer, namespace)
}

// NewWith registers metrics on an explicit registerer. Tests pass a
// fresh registry to avoid duplicate registration panics.
func NewWith(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CheckinsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkins_created_total",
			Help:      "Total number of check-ins created",
		}, []string{"payment_method"}),
		CheckinsAttended: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkins_attended_total",
			Help:      "Total number of check-ins transitioned to attended",
		}),
		WaitingTimeMinutes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "waiting_time_minutes",
			Help:      "Finalized waiting time of attended check-ins in minutes",
			Buckets:   []float64{1, 5, 10, 15, 30, 45, 60, 90, 120, 180},
		}),
		QueueLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "Number of patients currently waiting",
		}),
		ReportRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_requests_total",
			Help:      "Total number of reporting requests",
		}, []string{"granularity"}),
		OutboxEventsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxProcessingLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}
