package ss

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shraw06/docsplusplus/internal/fserrors"
)

// SentenceWrite is one write(file, sentence, word_index, text) call staged
// against an open WriteSession, in the order the caller issued it.
type SentenceWrite struct {
	WordIdx int
	Text    string
}

// WriteSession is a writer's staged edit to one sentence of one file. Staged
// content lives in a temp file on disk so the SS can survive a crash between
// write_sentence and commit without holding everything in memory.
type WriteSession struct {
	File           string
	User           string
	SentenceIdx    int
	WordIdx        int
	TempPath       string
	LockTime       time.Time
	OriginalCount  int // sentence count of the file when the lock was taken
	Active         bool
}

func (w *WriteSession) key() string {
	return fmt.Sprintf("%s\x00%s\x00%d", w.File, w.User, w.SentenceIdx)
}

// SessionStore holds the active WriteSessions, keyed by (file, user, sentence).
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*WriteSession
	tempDir  string
}

// NewSessionStore returns a SessionStore that stages temp files under tempDir.
func NewSessionStore(tempDir string) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*WriteSession),
		tempDir:  tempDir,
	}
}

// Open begins a write session for (file, user, sentenceIdx), creating the
// backing temp file. originalCount is the file's sentence count at lock
// time, used later by the commit queue to compute the rebase shift.
func (s *SessionStore) Open(file, user string, sentenceIdx, wordIdx, originalCount int, lockTime time.Time) (*WriteSession, error) {
	ws := &WriteSession{
		File:          file,
		User:          user,
		SentenceIdx:   sentenceIdx,
		WordIdx:       wordIdx,
		LockTime:      lockTime,
		OriginalCount: originalCount,
		Active:        true,
	}

	f, err := os.CreateTemp(s.tempDir, "write-*.tmp")
	if err != nil {
		return nil, fserrors.Wrap(fserrors.CodeInternal, "create temp write file", err)
	}
	ws.TempPath = f.Name()
	f.Close()

	s.mu.Lock()
	s.sessions[ws.key()] = ws
	s.mu.Unlock()

	return ws, nil
}

// Append records one write(word_idx, text) call against the session's
// staged temp file, preserving call order so Commit can replay each write at
// its own word_idx instead of the sentence's stale lock-time position.
// Records are length-prefixed (word_idx, text length, text bytes), the same
// framing internal/wire uses for messages, so a crash mid-session leaves a
// truncated-but-parseable tail rather than corrupt data.
func (s *SessionStore) Append(file, user string, sentenceIdx, wordIdx int, text string) error {
	s.mu.Lock()
	ws, ok := s.sessions[(&WriteSession{File: file, User: user, SentenceIdx: sentenceIdx}).key()]
	s.mu.Unlock()
	if !ok || !ws.Active {
		return fserrors.New(fserrors.CodeInvalidArgument, "no active write session")
	}

	f, err := os.OpenFile(ws.TempPath, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fserrors.Wrap(fserrors.CodeInternal, "open staged write file", err)
	}
	defer f.Close()

	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(wordIdx))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(text)))
	if _, err := f.Write(header[:]); err != nil {
		return fserrors.Wrap(fserrors.CodeInternal, "append staged write", err)
	}
	if _, err := f.WriteString(text); err != nil {
		return fserrors.Wrap(fserrors.CodeInternal, "append staged write", err)
	}
	return nil
}

// StagedWrites reads back every write(word_idx, text) call recorded for the
// session so far, in call order.
func (s *SessionStore) StagedWrites(file, user string, sentenceIdx int) ([]SentenceWrite, error) {
	s.mu.Lock()
	ws, ok := s.sessions[(&WriteSession{File: file, User: user, SentenceIdx: sentenceIdx}).key()]
	s.mu.Unlock()
	if !ok {
		return nil, fserrors.New(fserrors.CodeInvalidArgument, "no write session")
	}

	data, err := os.ReadFile(ws.TempPath)
	if err != nil {
		return nil, fserrors.Wrap(fserrors.CodeInternal, "read staged write file", err)
	}

	var writes []SentenceWrite
	for len(data) >= 8 {
		wordIdx := int(binary.LittleEndian.Uint32(data[0:4]))
		textLen := int(binary.LittleEndian.Uint32(data[4:8]))
		data = data[8:]
		if textLen > len(data) {
			break
		}
		writes = append(writes, SentenceWrite{WordIdx: wordIdx, Text: string(data[:textLen])})
		data = data[textLen:]
	}
	return writes, nil
}

// Close marks the session inactive and removes its temp file. Called once
// the session's content has been handed to the commit queue, or on abort.
func (s *SessionStore) Close(file, user string, sentenceIdx int) error {
	key := (&WriteSession{File: file, User: user, SentenceIdx: sentenceIdx}).key()

	s.mu.Lock()
	ws, ok := s.sessions[key]
	if ok {
		delete(s.sessions, key)
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	os.Remove(ws.TempPath)
	return nil
}

// Get returns the session for (file, user, sentenceIdx), if any.
func (s *SessionStore) Get(file, user string, sentenceIdx int) (*WriteSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.sessions[(&WriteSession{File: file, User: user, SentenceIdx: sentenceIdx}).key()]
	return ws, ok
}
