package ss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWriteReadRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 1)
	require.NoError(t, err)

	require.NoError(t, fs.Create("doc.txt"))
	require.NoError(t, fs.Write("doc.txt", "A. B."))

	got, err := fs.Read("doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "A. B.", got)
}

func TestCreateRejectsDuplicate(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 1)
	require.NoError(t, err)

	require.NoError(t, fs.Create("doc.txt"))
	err = fs.Create("doc.txt")
	assert.Error(t, err)
}

func TestListExcludesShadowFiles(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 1)
	require.NoError(t, err)

	require.NoError(t, fs.Create("doc.txt"))
	require.NoError(t, fs.Write("doc.txt", "A."))
	require.NoError(t, fs.BackupForMerge("doc.txt"))
	require.NoError(t, fs.Checkpoint("doc.txt", "v1"))

	names, err := fs.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"doc.txt"}, names)
}

func TestUndoRestoresPreMergeState(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 1)
	require.NoError(t, err)

	require.NoError(t, fs.Create("doc.txt"))
	require.NoError(t, fs.Write("doc.txt", "A."))
	require.NoError(t, fs.BackupForMerge("doc.txt"))
	require.NoError(t, fs.Write("doc.txt", "A. B."))

	require.NoError(t, fs.Undo("doc.txt"))

	got, err := fs.Read("doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "A.", got)
}

func TestUndoFailsWithoutBackup(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 1)
	require.NoError(t, err)
	require.NoError(t, fs.Create("doc.txt"))

	err = fs.Undo("doc.txt")
	assert.Error(t, err)
}

func TestCheckpointRejectsDuplicateTag(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 1)
	require.NoError(t, err)
	require.NoError(t, fs.Create("doc.txt"))
	require.NoError(t, fs.Checkpoint("doc.txt", "v1"))

	err = fs.Checkpoint("doc.txt", "v1")
	assert.Error(t, err)
}

func TestRevertTakesUndoBackupAndOverwritesMain(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 1)
	require.NoError(t, err)
	require.NoError(t, fs.Create("doc.txt"))
	require.NoError(t, fs.Write("doc.txt", "A."))
	require.NoError(t, fs.Checkpoint("doc.txt", "v1"))
	require.NoError(t, fs.Write("doc.txt", "A. B."))

	require.NoError(t, fs.Revert("doc.txt", "v1"))

	got, err := fs.Read("doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "A.", got)

	require.NoError(t, fs.Undo("doc.txt"))
	got, err = fs.Read("doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "A. B.", got)
}

func TestListCheckpointsEnumeratesByPrefix(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 1)
	require.NoError(t, err)
	require.NoError(t, fs.Create("doc.txt"))
	require.NoError(t, fs.Checkpoint("doc.txt", "v1"))
	require.NoError(t, fs.Checkpoint("doc.txt", "v2"))

	tags, err := fs.ListCheckpoints("doc.txt")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "v2"}, tags)
}
