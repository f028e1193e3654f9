package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// Deliveries counts webhook delivery outcomes by provider, event type and outcome.
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook delivery attempts by provider, event type and outcome."},
		[]string{"provider", "event", "outcome"},
	)
	// DeliveryDuration records per-attempt delivery durations in seconds.
	DeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "webhook_delivery_duration_seconds", Help: "Webhook delivery attempt duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"provider", "outcome"},
	)
	// SweepRuns counts retry sweep invocations.
	SweepRuns = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "webhook_retry_sweeps_total", Help: "Retry sweep invocations."},
	)
	// SweepProcessed counts delivery logs advanced by the retry sweep, by result.
	SweepProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_retry_sweep_processed_total", Help: "Delivery logs processed by the retry sweep, by result."},
		[]string{"result"},
	)
	// LogsPruned counts delivery logs removed by retention housekeeping.
	LogsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "webhook_delivery_logs_pruned_total", Help: "Delivery logs removed by retention housekeeping."},
	)
)

var regOnce sync.Once

// Register registers all collectors on the dedicated registry.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(Deliveries)
		Registry.MustRegister(DeliveryDuration)
		Registry.MustRegister(SweepRuns)
		Registry.MustRegister(SweepProcessed)
		Registry.MustRegister(LogsPruned)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
