package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SSMetrics records storage-server commit queue, lock table, and streaming
// activity. All methods are safe to call with a nil receiver.
type SSMetrics struct {
	queueDepth     *prometheus.GaugeVec
	lockTableSize  prometheus.Gauge
	streamTokens   *prometheus.CounterVec
	commitsTotal   *prometheus.CounterVec
	checkpoints    prometheus.Counter
	undos          prometheus.Counter
	archiveUploads *prometheus.CounterVec
}

// NewSSMetrics returns nil if metrics are disabled (InitRegistry not
// called).
func NewSSMetrics() *SSMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &SSMetrics{
		queueDepth: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "docsplusplus_ss_commit_queue_depth",
				Help: "Number of staged writes waiting in a file's FIFO commit queue",
			},
			[]string{"file"},
		),
		lockTableSize: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "docsplusplus_ss_lock_table_size",
				Help: "Number of sentence/word locks currently held across all files",
			},
		),
		streamTokens: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsplusplus_ss_stream_tokens_total",
				Help: "Total number of streamed data tokens emitted by outcome",
			},
			[]string{"outcome"}, // "data", "stop"
		),
		commitsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsplusplus_ss_commits_total",
				Help: "Total number of queued writes committed, by rebase outcome",
			},
			[]string{"outcome"}, // "applied", "rebased", "rejected"
		),
		checkpoints: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "docsplusplus_ss_checkpoints_total",
				Help: "Total number of checkpoint operations recorded",
			},
		),
		undos: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "docsplusplus_ss_undos_total",
				Help: "Total number of undo operations applied",
			},
		),
		archiveUploads: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsplusplus_ss_checkpoint_archive_uploads_total",
				Help: "Total number of S3 checkpoint archive upload attempts, by outcome",
			},
			[]string{"outcome"}, // "success", "failure"
		),
	}
}

// SetQueueDepth reports the current commit queue depth for file.
func (m *SSMetrics) SetQueueDepth(file string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(file).Set(float64(depth))
}

// SetLockTableSize reports the current number of held locks.
func (m *SSMetrics) SetLockTableSize(n int) {
	if m == nil {
		return
	}
	m.lockTableSize.Set(float64(n))
}

// RecordStreamToken records one emitted stream token by outcome.
func (m *SSMetrics) RecordStreamToken(outcome string) {
	if m == nil {
		return
	}
	m.streamTokens.WithLabelValues(outcome).Inc()
}

// RecordCommit records one commit-queue drain outcome.
func (m *SSMetrics) RecordCommit(outcome string) {
	if m == nil {
		return
	}
	m.commitsTotal.WithLabelValues(outcome).Inc()
}

// RecordCheckpoint records one checkpoint operation.
func (m *SSMetrics) RecordCheckpoint() {
	if m == nil {
		return
	}
	m.checkpoints.Inc()
}

// RecordUndo records one undo operation.
func (m *SSMetrics) RecordUndo() {
	if m == nil {
		return
	}
	m.undos.Inc()
}

// RecordArchiveUpload records one checkpoint archive upload attempt.
func (m *SSMetrics) RecordArchiveUpload(outcome string) {
	if m == nil {
		return
	}
	m.archiveUploads.WithLabelValues(outcome).Inc()
}
