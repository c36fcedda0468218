// Package metrics exposes Prometheus counters and gauges for the name
// server and storage server daemons, and the /metrics HTTP endpoint that
// serves them.
//
// Mirrors the enable/registry split the teacher's own pkg/metrics reaches
// for (IsEnabled/GetRegistry gating every recorder so instrumented code
// pays zero overhead when metrics are off): InitRegistry must be called
// once at startup before any Record*/Observe* call, and every metric
// constructor checks IsEnabled so callers never need their own nil check.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates a fresh Prometheus registry and marks metrics as
// enabled. Call once during daemon startup, before constructing any
// recorder.
func InitRegistry() *prometheus.Registry {
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the active registry, or nil if metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// Reset clears registry state; used by tests that need isolated metrics
// between cases.
func Reset() {
	registry = nil
	enabled = false
}
