// Package metrics registers the Prometheus instruments shared by the
// pipeline services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline-level Prometheus metrics. Instruments are
// labeled by topic so one registry serves all four services.
type Metrics struct {
	EventsPublished     *prometheus.CounterVec
	PublishFailures     *prometheus.CounterVec
	EventsConsumed      *prometheus.CounterVec
	HandlerFailures     *prometheus.CounterVec
	HandlerRetries      *prometheus.CounterVec
	DeadLettersProduced prometheus.Counter
	AuditDuplicates     prometheus.Counter
	HandleDuration      *prometheus.HistogramVec
}

// New creates and registers all pipeline metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grcflow_events_published_total",
			Help: "Events successfully published to the bus",
		}, []string{"topic"}),
		PublishFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grcflow_publish_failures_total",
			Help: "Publish attempts that failed after retries",
		}, []string{"topic"}),
		EventsConsumed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grcflow_events_consumed_total",
			Help: "Events handled to completion and committed",
		}, []string{"topic", "group"}),
		HandlerFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grcflow_handler_failures_total",
			Help: "Handler invocations that returned an error",
		}, []string{"topic", "group"}),
		HandlerRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grcflow_handler_retries_total",
			Help: "In-place redeliveries of a record to a failing handler",
		}, []string{"topic", "group"}),
		DeadLettersProduced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grcflow_dead_letters_produced_total",
			Help: "Records routed to the dead-letter topic",
		}),
		AuditDuplicates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grcflow_audit_duplicates_suppressed_total",
			Help: "Redelivered events the auditor recognized and skipped",
		}),
		HandleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grcflow_handle_duration_seconds",
			Help:    "Latency of a single handler invocation",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic", "group"}),
	}
}
