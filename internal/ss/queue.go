package ss

import (
	"sort"
	"sync"
	"time"

	"github.com/shraw06/docsplusplus/internal/fileparser"
	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/logger"
)

// CommitEntry is one writer's finished contribution, queued for merge into
// the file's canonical content. Entries for the same file are drained in
// LockTime order (FIFO), oldest lock first, regardless of commit order.
type CommitEntry struct {
	File          string
	User          string
	SentenceIdx   int // sentence index at lock time, pre-rebase
	Writes        []SentenceWrite
	LockTime      time.Time
	OriginalCount int // file's sentence count when this writer locked
}

// MergeResult reports what a drain pass did, for logging and the undo backup.
type MergeResult struct {
	File          string
	Applied       int
	FinalContent  fileparser.Content
	BeforeContent fileparser.Content
}

// CommitQueue batches concurrent writers' contributions per file and
// rebase-merges them in lock order once a caller asks to drain.
type CommitQueue struct {
	mu      sync.Mutex
	pending map[string][]CommitEntry
}

// NewCommitQueue returns an empty CommitQueue.
func NewCommitQueue() *CommitQueue {
	return &CommitQueue{pending: make(map[string][]CommitEntry)}
}

// Enqueue adds a finished writer contribution to its file's pending list.
func (q *CommitQueue) Enqueue(entry CommitEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[entry.File] = append(q.pending[entry.File], entry)
}

// Depth returns the number of entries pending for file.
func (q *CommitQueue) Depth(file string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[file])
}

// Drain removes every pending entry for file and rebase-merges them, in
// ascending LockTime order, into base. Each entry's sentence index is
// shifted by how much the file has grown since that writer's lock was
// taken, so a writer who locked sentence 3 before an earlier writer
// inserted two new sentences ahead of it lands on sentence 5, not 3.
//
// adjusted_index = entry.SentenceIdx + (current_count - entry.OriginalCount)
func (q *CommitQueue) Drain(file string, base fileparser.Content) (MergeResult, error) {
	q.mu.Lock()
	entries := q.pending[file]
	delete(q.pending, file)
	q.mu.Unlock()

	result := MergeResult{File: file, BeforeContent: base, FinalContent: base}
	if len(entries) == 0 {
		return result, nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LockTime.Before(entries[j].LockTime)
	})

	content := base
	for _, entry := range entries {
		currentCount := content.SentenceCount()
		shift := currentCount - entry.OriginalCount
		adjustedIdx := entry.SentenceIdx + shift

		// Replay this writer's write() calls in the order they were staged,
		// each at its own word_idx. adjustedIdx stays fixed across the
		// replay: every write targets the same (rebased) sentence slot, and
		// once the first write expands that slot into more than one
		// sentence, InsertTokens's non-appending branch keeps landing on
		// the first sentence of that group, exactly where later writes in
		// this session belong.
		expansion := 0
		for _, write := range entry.Writes {
			merged, exp, err := fileparser.InsertTokens(content, adjustedIdx, write.WordIdx, write.Text)
			if err != nil {
				logger.Error("rebase merge entry failed",
					logger.Filename(entry.File),
					logger.Username(entry.User),
					logger.SentenceIndex(entry.SentenceIdx),
					logger.AdjustedIndex(adjustedIdx),
					logger.Shift(shift),
					logger.Err(err),
				)
				return result, fserrors.Wrap(fserrors.CodeInternal, "rebase merge failed", err)
			}
			content = merged
			expansion += exp
		}

		result.Applied++

		logger.Debug("rebase merge entry applied",
			logger.Filename(entry.File),
			logger.Username(entry.User),
			logger.SentenceIndex(entry.SentenceIdx),
			logger.AdjustedIndex(adjustedIdx),
			logger.Shift(shift),
			logger.Expansion(expansion),
			logger.OriginalCount(entry.OriginalCount),
		)
	}

	result.FinalContent = content
	return result, nil
}
