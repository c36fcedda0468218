package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSSMetricsReturnsNilWhenDisabled(t *testing.T) {
	Reset()
	assert.Nil(t, NewSSMetrics())
}

func TestNewSSMetricsRecordersAreNilSafe(t *testing.T) {
	Reset()
	var m *SSMetrics
	assert.NotPanics(t, func() {
		m.SetQueueDepth("doc.txt", 2)
		m.SetLockTableSize(1)
		m.RecordStreamToken("data")
		m.RecordCommit("applied")
		m.RecordCheckpoint()
		m.RecordUndo()
		m.RecordArchiveUpload("success")
	})
}

func TestSSMetricsSetQueueDepth(t *testing.T) {
	Reset()
	InitRegistry()
	m := NewSSMetrics()
	require.NotNil(t, m)

	m.SetQueueDepth("doc.txt", 3)

	families, err := GetRegistry().Gather()
	require.NoError(t, err)
	assert.True(t, hasGaugeValue(families, "docsplusplus_ss_commit_queue_depth", 3))
}

func TestSSMetricsRecordCommitIncrementsByOutcome(t *testing.T) {
	Reset()
	InitRegistry()
	m := NewSSMetrics()
	require.NotNil(t, m)

	m.RecordCommit("applied")
	m.RecordCommit("applied")
	m.RecordCommit("rebased")

	families, err := GetRegistry().Gather()
	require.NoError(t, err)
	assert.True(t, hasCounterValue(families, "docsplusplus_ss_commits_total", 2))
	assert.True(t, hasCounterValue(families, "docsplusplus_ss_commits_total", 1))
}

func TestSSMetricsRecordArchiveUploadIncrementsByOutcome(t *testing.T) {
	Reset()
	InitRegistry()
	m := NewSSMetrics()
	require.NotNil(t, m)

	m.RecordArchiveUpload("success")
	m.RecordArchiveUpload("failure")
	m.RecordArchiveUpload("failure")

	families, err := GetRegistry().Gather()
	require.NoError(t, err)
	assert.True(t, hasCounterValue(families, "docsplusplus_ss_checkpoint_archive_uploads_total", 1))
	assert.True(t, hasCounterValue(families, "docsplusplus_ss_checkpoint_archive_uploads_total", 2))
}
