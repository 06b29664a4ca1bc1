// Package obs carries the scan subsystem's observability ambient stack:
// Prometheus metrics for scan activity and an OpenTelemetry tracer
// provider setup. Neither exerts any control over
// scanning; both are purely descriptive.
package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ScansTriggered counts TRIGGER_SCAN commands issued, by device and
	// scan kind (passive/active/periodic).
	ScansTriggered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scand",
			Name:      "scans_triggered_total",
			Help:      "Total number of TRIGGER_SCAN commands issued",
		},
		[]string{"device", "kind"},
	)

	// ScansCompleted counts finished scan requests, by result.
	ScansCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scand",
			Name:      "scans_completed_total",
			Help:      "Total number of scan requests that reached a terminal state",
		},
		[]string{"device", "result"},
	)

	// BSSesDiscovered counts parsed BSS entries returned from scan dumps.
	BSSesDiscovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scand",
			Name:      "bsses_discovered_total",
			Help:      "Total number of BSS entries successfully parsed from scan dumps",
		},
		[]string{"device"},
	)

	// ParseFailures counts BSS entries the parser rejected.
	ParseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scand",
			Name:      "bss_parse_failures_total",
			Help:      "Total number of BSS entries dropped for failing to parse",
		},
		[]string{"device", "reason"},
	)

	// PeriodicInterval reports each device's current periodic scan
	// backoff interval, in seconds.
	PeriodicInterval = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "scand",
			Name:      "periodic_interval_seconds",
			Help:      "Current periodic scan backoff interval",
		},
		[]string{"device"},
	)

	once sync.Once
)

// InitMetrics registers every metric with the default Prometheus
// registry. Idempotent: safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.MustRegister(
			ScansTriggered,
			ScansCompleted,
			BSSesDiscovered,
			ParseFailures,
			PeriodicInterval,
		)
	})
}
