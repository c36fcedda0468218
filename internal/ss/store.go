package ss

import (
	"context"

	"github.com/shraw06/docsplusplus/internal/fileparser"
	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/logger"
)

// Store ties together the on-disk file layout, sentence lock table, staged
// write sessions, and per-file commit queue into the operations a storage
// server exposes to clients and to the name server.
type Store struct {
	ID    int
	files *FileStore
	locks *LockTable
	sess  *SessionStore
	queue *CommitQueue
}

// NewStore returns a Store rooted at base for storage server id, staging
// writer temp files under tempDir.
func NewStore(id int, base, tempDir string) (*Store, error) {
	fs, err := NewFileStore(base, id)
	if err != nil {
		return nil, err
	}
	return &Store{
		ID:    id,
		files: fs,
		locks: NewLockTable(),
		sess:  NewSessionStore(tempDir),
		queue: NewCommitQueue(),
	}, nil
}

func (s *Store) content(name string) (fileparser.Content, error) {
	text, err := s.files.Read(name)
	if err != nil {
		return fileparser.Content{}, err
	}
	return fileparser.Tokenize(text), nil
}

// Create makes a new empty file.
func (s *Store) Create(name string) error { return s.files.Create(name) }

// Delete removes a file, refusing while any of its sentences are locked.
func (s *Store) Delete(name string) error {
	if s.locks.CheckLocks(name) {
		return fserrors.New(fserrors.CodeConflict, "file has active locks")
	}
	s.locks.Reset(name)
	return s.files.Delete(name)
}

// Read returns the file's full current text.
func (s *Store) Read(name string) (string, error) {
	return s.files.Read(name)
}

// Lock acquires the lock on (file, sentenceIdx) for user and opens a write
// session to stage that writer's edit. It returns only an error; the
// sentence's real word count at lock time is not reported to the caller.
func (s *Store) Lock(name string, sentenceIdx, wordIdx int, user string) error {
	content, err := s.content(name)
	if err != nil {
		return err
	}
	if err := s.locks.Lock(name, sentenceIdx, user, content); err != nil {
		return err
	}

	lockTime, _ := s.locks.LockTimeOf(name, sentenceIdx)
	_, err = s.sess.Open(name, user, sentenceIdx, wordIdx, content.SentenceCount(), lockTime)
	if err != nil {
		s.locks.Unlock(name, sentenceIdx, user)
		return err
	}
	return nil
}

// WriteSentence records one write(word_idx, text) call against the caller's
// already-open write session, preserving wordIdx for Commit to splice at
// instead of the session's stale lock-time word index.
func (s *Store) WriteSentence(name, user string, sentenceIdx, wordIdx int, text string) error {
	return s.sess.Append(name, user, sentenceIdx, wordIdx, text)
}

// Cancel discards a write session without queuing its contribution and
// releases the underlying lock.
func (s *Store) Cancel(name, user string, sentenceIdx int) error {
	if err := s.sess.Close(name, user, sentenceIdx); err != nil {
		return err
	}
	return s.locks.Unlock(name, sentenceIdx, user)
}

// Commit ends the caller's write session: it hands the staged text to the
// file's commit queue, releases the sentence lock, and queues the entry for
// the next drain. Drain itself is triggered separately (e.g. by
// DrainAndApply), matching the FIFO, lock-time-ordered merge described for
// the commit queue.
func (s *Store) Commit(name, user string, sentenceIdx int) error {
	ws, ok := s.sess.Get(name, user, sentenceIdx)
	if !ok {
		return fserrors.New(fserrors.CodeInvalidArgument, "no active write session")
	}

	writes, err := s.sess.StagedWrites(name, user, sentenceIdx)
	if err != nil {
		return err
	}

	s.queue.Enqueue(CommitEntry{
		File:          name,
		User:          user,
		SentenceIdx:   sentenceIdx,
		Writes:        writes,
		LockTime:      ws.LockTime,
		OriginalCount: ws.OriginalCount,
	})

	if err := s.sess.Close(name, user, sentenceIdx); err != nil {
		return err
	}
	return s.locks.Unlock(name, sentenceIdx, user)
}

// DrainAndApply rebase-merges every pending commit-queue entry for name into
// the file's current content and writes the result back, taking an undo
// backup first if the queue was non-empty.
func (s *Store) DrainAndApply(name string) (MergeResult, error) {
	if s.queue.Depth(name) == 0 {
		content, err := s.content(name)
		return MergeResult{File: name, FinalContent: content, BeforeContent: content}, err
	}

	if err := s.files.BackupForMerge(name); err != nil {
		return MergeResult{}, err
	}

	base, err := s.content(name)
	if err != nil {
		return MergeResult{}, err
	}

	result, err := s.queue.Drain(name, base)
	if err != nil {
		return result, err
	}

	if err := s.files.Write(name, fileparser.Serialize(result.FinalContent)); err != nil {
		return result, err
	}

	logger.Info("commit queue drained",
		logger.Filename(name),
		logger.ProcessedCommits(result.Applied),
	)
	return result, nil
}

// Undo restores name from its one-deep undo backup.
func (s *Store) Undo(name string) error { return s.files.Undo(name) }

// Checkpoint, ViewCheckpoint, ListCheckpoints, Revert delegate straight to
// the file store; SS-level state (locks, sessions, queue) is untouched by
// the checkpoint family.
func (s *Store) Checkpoint(name, tag string) error            { return s.files.Checkpoint(name, tag) }
func (s *Store) ViewCheckpoint(name, tag string) (string, error) { return s.files.ViewCheckpoint(name, tag) }
func (s *Store) ListCheckpoints(name string) ([]string, error) { return s.files.ListCheckpoints(name) }
func (s *Store) Revert(name, tag string) error                { return s.files.Revert(name, tag) }

// Stream walks name's current content and emits StreamTokens paced 100ms
// apart, matching the wire-level stream(file) operation.
func (s *Store) Stream(ctx context.Context, name string, emit func(StreamToken) error) error {
	content, err := s.content(name)
	if err != nil {
		return err
	}
	return Stream(ctx, content, emit)
}

// CheckLocks reports whether any sentence of name is currently locked.
func (s *Store) CheckLocks(name string) bool { return s.locks.CheckLocks(name) }

// ListFiles enumerates the real (non-shadow) files this SS holds.
func (s *Store) ListFiles() ([]string, error) { return s.files.List() }

// QueueDepth reports how many commits are pending for name.
func (s *Store) QueueDepth(name string) int { return s.queue.Depth(name) }

// LockTableSize reports the total number of sentence/word locks currently
// held across every file this SS owns.
func (s *Store) LockTableSize() int { return s.locks.Size() }
