package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestNewNMMetricsReturnsNilWhenDisabled(t *testing.T) {
	Reset()
	assert.Nil(t, NewNMMetrics())
}

func TestNewNMMetricsRecordersAreNilSafe(t *testing.T) {
	Reset()
	var m *NMMetrics
	assert.NotPanics(t, func() {
		m.RecordRequest("create", "success", time.Millisecond)
		m.SetActiveServers(3)
		m.SetRegisteredUsers(5)
		m.SetPendingAccessRequests(1)
		m.RecordRedirect("ok")
	})
}

func TestNMMetricsRecordRequestIncrementsCounter(t *testing.T) {
	Reset()
	InitRegistry()
	m := NewNMMetrics()
	require.NotNil(t, m)

	m.RecordRequest("create", "success", 2*time.Millisecond)

	families, err := GetRegistry().Gather()
	require.NoError(t, err)
	assert.True(t, hasCounterValue(families, "docsplusplus_nm_requests_total", 1))
}

func TestNMMetricsSetActiveServers(t *testing.T) {
	Reset()
	InitRegistry()
	m := NewNMMetrics()
	require.NotNil(t, m)

	m.SetActiveServers(4)

	families, err := GetRegistry().Gather()
	require.NoError(t, err)
	assert.True(t, hasGaugeValue(families, "docsplusplus_nm_active_storage_servers", 4))
}

func hasCounterValue(families []*dto.MetricFamily, name string, want float64) bool {
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if metric.GetCounter().GetValue() == want {
				return true
			}
		}
	}
	return false
}

func hasGaugeValue(families []*dto.MetricFamily, name string, want float64) bool {
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if metric.GetGauge().GetValue() == want {
				return true
			}
		}
	}
	return false
}
