package ss

import (
	"testing"

	"github.com/shraw06/docsplusplus/internal/fileparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockThenUnlock(t *testing.T) {
	lt := NewLockTable()
	content := fileparser.Tokenize("A. B.")

	require.NoError(t, lt.Lock("f1", 0, "alice", content))
	assert.True(t, lt.CheckLocks("f1"))

	require.NoError(t, lt.Unlock("f1", 0, "alice"))
	assert.False(t, lt.CheckLocks("f1"))
}

func TestLockRejectsConflictingOwner(t *testing.T) {
	lt := NewLockTable()
	content := fileparser.Tokenize("A. B.")

	require.NoError(t, lt.Lock("f1", 0, "alice", content))
	err := lt.Lock("f1", 0, "bob", content)
	assert.Error(t, err)
}

func TestLockIsReentrantForSameOwner(t *testing.T) {
	lt := NewLockTable()
	content := fileparser.Tokenize("A. B.")

	require.NoError(t, lt.Lock("f1", 0, "alice", content))
	assert.NoError(t, lt.Lock("f1", 0, "alice", content))
}

func TestLockRejectsInvalidSentenceIndex(t *testing.T) {
	lt := NewLockTable()
	content := fileparser.Tokenize("A. B.")
	err := lt.Lock("f1", 5, "alice", content)
	assert.Error(t, err)
}

func TestUnlockRejectsNonOwner(t *testing.T) {
	lt := NewLockTable()
	content := fileparser.Tokenize("A. B.")
	require.NoError(t, lt.Lock("f1", 0, "alice", content))
	err := lt.Unlock("f1", 0, "bob")
	assert.Error(t, err)
}

func TestCheckLocksFalseWhenNoneHeld(t *testing.T) {
	lt := NewLockTable()
	assert.False(t, lt.CheckLocks("f1"))
}

func TestResetClearsAllLocksForFile(t *testing.T) {
	lt := NewLockTable()
	content := fileparser.Tokenize("A. B.")
	require.NoError(t, lt.Lock("f1", 0, "alice", content))
	lt.Reset("f1")
	assert.False(t, lt.CheckLocks("f1"))
}
