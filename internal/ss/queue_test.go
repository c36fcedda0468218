package ss

import (
	"testing"
	"time"

	"github.com/shraw06/docsplusplus/internal/fileparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainEmptyQueueIsNoop(t *testing.T) {
	q := NewCommitQueue()
	base := fileparser.Tokenize("A. B.")
	result, err := q.Drain("f1", base)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, "A. B.", fileparser.Serialize(result.FinalContent))
}

func TestDrainAppliesSingleEntry(t *testing.T) {
	q := NewCommitQueue()
	base := fileparser.Tokenize("A. B.")
	q.Enqueue(CommitEntry{
		File: "f1", User: "alice", SentenceIdx: 0,
		Writes:   []SentenceWrite{{WordIdx: 2, Text: " X"}},
		LockTime: time.Unix(100, 0), OriginalCount: 2,
	})

	result, err := q.Drain("f1", base)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, "A X. B.", fileparser.Serialize(result.FinalContent))
}

// TestDrainAppliesWritesAtEachCallsOwnWordIndex covers a session that issues
// more than one write(): the second write's word_idx must splice against
// the sentence as the first write left it, not the stale lock-time content.
func TestDrainAppliesWritesAtEachCallsOwnWordIndex(t *testing.T) {
	q := NewCommitQueue()
	base := fileparser.Tokenize("A B.")
	q.Enqueue(CommitEntry{
		File: "f1", User: "alice", SentenceIdx: 0,
		Writes: []SentenceWrite{
			{WordIdx: 3, Text: "D"}, // "A B D."
			{WordIdx: 2, Text: "C"}, // "A C B D."
		},
		LockTime: time.Unix(100, 0), OriginalCount: 1,
	})

	result, err := q.Drain("f1", base)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, "A C B D.", fileparser.Serialize(result.FinalContent))
}

// TestDrainRebasesLaterWritersSentenceIndex mirrors the scenario where two
// writers lock different sentences of the same two-sentence file; alice's
// commit (on sentence 0) expands the file to three sentences before bob's
// commit (originally targeting sentence 1) is merged. Bob's index must be
// shifted forward by the expansion alice introduced.
func TestDrainRebasesLaterWritersSentenceIndex(t *testing.T) {
	q := NewCommitQueue()
	base := fileparser.Tokenize("A. B.")

	// alice locked sentence 0 first and inserts a sentence-splitting edit.
	q.Enqueue(CommitEntry{
		File: "f1", User: "alice", SentenceIdx: 0,
		Writes:   []SentenceWrite{{WordIdx: 2, Text: " one. two"}},
		LockTime: time.Unix(100, 0), OriginalCount: 2,
	})
	// bob locked sentence 1 (originally "B.") slightly later, at the same
	// original file size.
	q.Enqueue(CommitEntry{
		File: "f1", User: "bob", SentenceIdx: 1,
		Writes:   []SentenceWrite{{WordIdx: 2, Text: " Z"}},
		LockTime: time.Unix(200, 0), OriginalCount: 2,
	})

	result, err := q.Drain("f1", base)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	// alice: "A. B." -> "A one. two. B." (expansion=1, count 2->3)
	// bob's adjusted index = 1 + (3-2) = 2, landing back on "B."
	assert.Equal(t, "A one. two. B Z.", fileparser.Serialize(result.FinalContent))
}

func TestDrainPreservesFIFOOrderByLockTimeNotEnqueueOrder(t *testing.T) {
	q := NewCommitQueue()
	base := fileparser.Tokenize("A. B.")

	// Enqueued out of lock-time order; Drain must still process by LockTime.
	q.Enqueue(CommitEntry{
		File: "f1", User: "bob", SentenceIdx: 1,
		Writes:   []SentenceWrite{{WordIdx: 2, Text: " Z"}},
		LockTime: time.Unix(200, 0), OriginalCount: 2,
	})
	q.Enqueue(CommitEntry{
		File: "f1", User: "alice", SentenceIdx: 0,
		Writes:   []SentenceWrite{{WordIdx: 2, Text: " one. two"}},
		LockTime: time.Unix(100, 0), OriginalCount: 2,
	})

	result, err := q.Drain("f1", base)
	require.NoError(t, err)
	assert.Equal(t, "A one. two. B Z.", fileparser.Serialize(result.FinalContent))
}

func TestDepthReflectsPendingEntries(t *testing.T) {
	q := NewCommitQueue()
	assert.Equal(t, 0, q.Depth("f1"))
	q.Enqueue(CommitEntry{File: "f1", LockTime: time.Unix(1, 0)})
	q.Enqueue(CommitEntry{File: "f1", LockTime: time.Unix(2, 0)})
	assert.Equal(t, 2, q.Depth("f1"))
}
