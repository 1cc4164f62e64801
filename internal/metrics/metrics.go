package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates the service metrics and serves them on /metrics.
type Collector struct {
	registry          *prometheus.Registry
	movementsRecorded *prometheus.CounterVec
	movementsRejected *prometheus.CounterVec
	recorderDuration  prometheus.Histogram
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		movementsRecorded: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "account_movements_recorded_total",
			Help: "Total number of persisted account movements",
		}, []string{"type"}),
		movementsRejected: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "account_movements_rejected_total",
			Help: "Total number of refused movement attempts",
		}, []string{"kind"}),
		recorderDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "movement_recording_duration_seconds",
			Help:    "Time taken to validate and persist a movement",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (c *Collector) RecordMovement(movementType string, duration time.Duration) {
	c.movementsRecorded.WithLabelValues(movementType).Inc()
	c.recorderDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordRejection(kind string, duration time.Duration) {
	c.movementsRejected.WithLabelValues(kind).Inc()
	c.recorderDuration.Observe(duration.Seconds())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
