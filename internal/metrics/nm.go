package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NMMetrics records name-server request, storage-server fleet, and user
// session activity. All methods are safe to call with a nil receiver so
// instrumented call sites never need an IsEnabled check of their own.
type NMMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	activeServers    prometheus.Gauge
	registeredUsers  prometheus.Gauge
	pendingRequests  prometheus.Gauge
	redirectsIssued  *prometheus.CounterVec
}

// NewNMMetrics returns nil if metrics are disabled (InitRegistry not
// called), mirroring the teacher's cacheMetrics constructor contract.
func NewNMMetrics() *NMMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &NMMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsplusplus_nm_requests_total",
				Help: "Total number of name server requests by message type and status",
			},
			[]string{"message_type", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "docsplusplus_nm_request_duration_milliseconds",
				Help: "Duration of name server request handling in milliseconds",
				Buckets: []float64{
					0.5,  // 500us - in-memory index lookups
					1,    // 1ms
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms
					100,  // 100ms
					500,  // 500ms - worst case under lock contention
				},
			},
			[]string{"message_type"},
		),
		activeServers: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "docsplusplus_nm_active_storage_servers",
				Help: "Number of storage servers currently considered active",
			},
		),
		registeredUsers: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "docsplusplus_nm_registered_users",
				Help: "Number of user sessions ever seen by the name server",
			},
		),
		pendingRequests: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "docsplusplus_nm_pending_access_requests",
				Help: "Number of access requests awaiting owner approval",
			},
		),
		redirectsIssued: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsplusplus_nm_redirects_total",
				Help: "Total number of client redirects issued by outcome",
			},
			[]string{"outcome"}, // "ok", "denied", "unavailable"
		),
	}
}

// RecordRequest records one handled request of messageType, its resulting
// status, and how long handling took.
func (m *NMMetrics) RecordRequest(messageType, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(messageType, status).Inc()
	m.requestDuration.WithLabelValues(messageType).Observe(float64(duration.Milliseconds()))
}

// SetActiveServers reports the current count of active storage servers.
func (m *NMMetrics) SetActiveServers(n int) {
	if m == nil {
		return
	}
	m.activeServers.Set(float64(n))
}

// SetRegisteredUsers reports the current count of known user sessions.
func (m *NMMetrics) SetRegisteredUsers(n int) {
	if m == nil {
		return
	}
	m.registeredUsers.Set(float64(n))
}

// SetPendingAccessRequests reports the current backlog of unapproved
// access requests.
func (m *NMMetrics) SetPendingAccessRequests(n int) {
	if m == nil {
		return
	}
	m.pendingRequests.Set(float64(n))
}

// RecordRedirect records one client redirect by its outcome.
func (m *NMMetrics) RecordRedirect(outcome string) {
	if m == nil {
		return
	}
	m.redirectsIssued.WithLabelValues(outcome).Inc()
}
