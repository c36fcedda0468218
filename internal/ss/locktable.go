// Package ss implements the storage server's write pipeline: per-file
// sentence locks, per-writer staged temp files, and the FIFO commit queue
// that rebase-merges concurrent writers' contributions into the main file.
package ss

import (
	"sync"
	"time"

	"github.com/shraw06/docsplusplus/internal/fileparser"
	"github.com/shraw06/docsplusplus/internal/fserrors"
)

// SentenceLock is one slot in a file's lock vector.
type SentenceLock struct {
	Locked   bool
	LockedBy string
	LockTime time.Time
}

// LockTable holds a per-file, grown-on-demand vector of sentence locks. The
// vector grows to at least idx+1 on first access to that index; slots are
// created lazily the first time any sentence of the file is touched.
type LockTable struct {
	mu    sync.Mutex
	files map[string][]*SentenceLock
}

// NewLockTable returns an empty LockTable.
func NewLockTable() *LockTable {
	return &LockTable{files: make(map[string][]*SentenceLock)}
}

func (t *LockTable) ensure(file string, idx int) []*SentenceLock {
	locks := t.files[file]
	for len(locks) <= idx {
		locks = append(locks, &SentenceLock{})
	}
	t.files[file] = locks
	return locks
}

// Lock acquires the lock on file's sentence idx for user. It validates idx
// against content before creating a new slot implicitly. Succeeds if the
// target lock is unowned or already owned by user.
func (t *LockTable) Lock(file string, idx int, user string, content fileparser.Content) error {
	if err := fileparser.ValidateSentenceIndex(content, idx); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	locks := t.ensure(file, idx)
	lock := locks[idx]

	if lock.Locked && lock.LockedBy != user {
		return fserrors.ErrSentenceLocked
	}

	lock.Locked = true
	lock.LockedBy = user
	lock.LockTime = time.Now()
	return nil
}

// Unlock releases file's sentence idx; it succeeds only if held by user.
func (t *LockTable) Unlock(file string, idx int, user string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	locks := t.files[file]
	if idx < 0 || idx >= len(locks) {
		return fserrors.ErrInvalidSentenceIdx
	}
	lock := locks[idx]
	if !lock.Locked || lock.LockedBy != user {
		return fserrors.New(fserrors.CodePermission, "sentence not locked by caller")
	}

	lock.Locked = false
	lock.LockedBy = ""
	lock.LockTime = time.Time{}
	return nil
}

// LockTimeOf returns the LockTime recorded when the lock on file's sentence
// idx was acquired by its current holder, used to seed a write session /
// commit entry.
func (t *LockTable) LockTimeOf(file string, idx int) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	locks := t.files[file]
	if idx < 0 || idx >= len(locks) || !locks[idx].Locked {
		return time.Time{}, false
	}
	return locks[idx].LockTime, true
}

// CheckLocks reports whether any lock in file is currently held, for the
// NM-initiated check_locks(file) query that gates deletion.
func (t *LockTable) CheckLocks(file string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, lock := range t.files[file] {
		if lock.Locked {
			return true
		}
	}
	return false
}

// Size reports the total number of currently-held locks across every file.
func (t *LockTable) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, locks := range t.files {
		for _, lock := range locks {
			if lock.Locked {
				n++
			}
		}
	}
	return n
}

// Reset discards all locks for file. Used when a file is deleted, and after
// an SS restart when the lock table is recreated empty.
func (t *LockTable) Reset(file string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.files, file)
}
