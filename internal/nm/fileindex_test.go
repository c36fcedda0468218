package nm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThenGet(t *testing.T) {
	idx := NewFileIndex(8)
	require.NoError(t, idx.Create("doc.txt", "alice", 1))

	meta, err := idx.Get("doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "alice", meta.Owner)
	assert.Equal(t, 1, meta.SSID)
}

func TestCreateRejectsDuplicate(t *testing.T) {
	idx := NewFileIndex(8)
	require.NoError(t, idx.Create("doc.txt", "alice", 1))
	err := idx.Create("doc.txt", "bob", 2)
	assert.Error(t, err)
}

func TestEnsureSeenInsertsUnknownFileAsSystemOwned(t *testing.T) {
	idx := NewFileIndex(8)
	idx.EnsureSeen("new.txt", 3)

	meta, err := idx.Get("new.txt")
	require.NoError(t, err)
	assert.Equal(t, "system", meta.Owner)
	assert.Equal(t, 3, meta.SSID)
}

func TestEnsureSeenRefreshesSSIDButKeepsOwnerAndACL(t *testing.T) {
	idx := NewFileIndex(8)
	require.NoError(t, idx.Create("doc.txt", "alice", 1))
	require.NoError(t, idx.SetACL("doc.txt", "bob", AccessRead))

	idx.EnsureSeen("doc.txt", 2)

	meta, err := idx.Get("doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "alice", meta.Owner)
	assert.Equal(t, 2, meta.SSID)
	assert.Equal(t, AccessRead, meta.ACL["bob"])
}

func TestDeleteRemovesFromIndexAndCache(t *testing.T) {
	idx := NewFileIndex(8)
	require.NoError(t, idx.Create("doc.txt", "alice", 1))
	require.NoError(t, idx.Delete("doc.txt"))

	_, err := idx.Get("doc.txt")
	assert.Error(t, err)
}

func TestHasAccessOwnerAlwaysTrue(t *testing.T) {
	idx := NewFileIndex(8)
	require.NoError(t, idx.Create("doc.txt", "alice", 1))
	assert.True(t, idx.HasAccess("doc.txt", "alice", AccessReadWrite))
}

func TestHasAccessRespectsACLLevel(t *testing.T) {
	idx := NewFileIndex(8)
	require.NoError(t, idx.Create("doc.txt", "alice", 1))
	require.NoError(t, idx.SetACL("doc.txt", "bob", AccessRead))

	assert.True(t, idx.HasAccess("doc.txt", "bob", AccessRead))
	assert.False(t, idx.HasAccess("doc.txt", "bob", AccessWrite))
}

func TestSetACLUpgradesNotDowngrades(t *testing.T) {
	idx := NewFileIndex(8)
	require.NoError(t, idx.Create("doc.txt", "alice", 1))
	require.NoError(t, idx.SetACL("doc.txt", "bob", AccessReadWrite))
	require.NoError(t, idx.SetACL("doc.txt", "bob", AccessRead))

	meta, err := idx.Get("doc.txt")
	require.NoError(t, err)
	assert.Equal(t, AccessReadWrite, meta.ACL["bob"])
}

func TestRemoveACLRevokesAccessEntirely(t *testing.T) {
	idx := NewFileIndex(8)
	require.NoError(t, idx.Create("doc.txt", "alice", 1))
	require.NoError(t, idx.SetACL("doc.txt", "bob", AccessReadWrite))
	require.True(t, idx.HasAccess("doc.txt", "bob", AccessRead))

	require.NoError(t, idx.RemoveACL("doc.txt", "bob"))

	assert.False(t, idx.HasAccess("doc.txt", "bob", AccessRead))
}

func TestRemoveACLUnknownFileErrors(t *testing.T) {
	idx := NewFileIndex(8)
	err := idx.RemoveACL("missing.txt", "bob")
	assert.Error(t, err)
}

func TestListByPrefix(t *testing.T) {
	idx := NewFileIndex(8)
	require.NoError(t, idx.Create("report1.txt", "alice", 1))
	require.NoError(t, idx.Create("report2.txt", "alice", 1))
	require.NoError(t, idx.Create("notes.txt", "alice", 1))

	metas, err := idx.List("report")
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}
