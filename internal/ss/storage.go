package ss

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shraw06/docsplusplus/internal/fserrors"
)

// FileStore manages the on-disk layout for one storage server: the root
// directory holds one byte-identical file per filename, a per-file undo
// backup "<name>.undo", and per-file "<name>.checkpoint_<tag>" snapshots.
// List never reports undo or checkpoint files, nor any name containing
// ".temp_". Write-session staging files are not kept here: SessionStore
// creates them under its own temp directory.
type FileStore struct {
	root string
}

// NewFileStore returns a FileStore rooted at "ss_storage_<id>" under base.
func NewFileStore(base string, id int) (*FileStore, error) {
	root := filepath.Join(base, "ss_storage_"+itoa(id))
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fserrors.Wrap(fserrors.CodeInternal, "create storage root", err)
	}
	return &FileStore{root: root}, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (s *FileStore) path(name string) string { return filepath.Join(s.root, name) }

func (s *FileStore) undoPath(name string) string { return s.path(name) + ".undo" }

func (s *FileStore) checkpointPath(name, tag string) string {
	return s.path(name) + ".checkpoint_" + tag
}

// Read returns the current contents of the named file.
func (s *FileStore) Read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return "", fserrors.ErrFileNotFound
	}
	if err != nil {
		return "", fserrors.Wrap(fserrors.CodeInternal, "read file", err)
	}
	return string(data), nil
}

// Write overwrites the named file's contents.
func (s *FileStore) Write(name, content string) error {
	if err := os.WriteFile(s.path(name), []byte(content), 0o644); err != nil {
		return fserrors.Wrap(fserrors.CodeInternal, "write file", err)
	}
	return nil
}

// Create makes an empty new file, failing if it already exists.
func (s *FileStore) Create(name string) error {
	f, err := os.OpenFile(s.path(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fserrors.New(fserrors.CodeConflict, "file already exists")
		}
		return fserrors.Wrap(fserrors.CodeInternal, "create file", err)
	}
	return f.Close()
}

// Delete removes the named file and any undo backup.
func (s *FileStore) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fserrors.Wrap(fserrors.CodeInternal, "delete file", err)
	}
	os.Remove(s.undoPath(name))
	return nil
}

// List enumerates the real files in the store root, excluding undo,
// checkpoint, and temp shadow files.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fserrors.Wrap(fserrors.CodeInternal, "list storage root", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.Contains(n, ".undo") || strings.Contains(n, ".checkpoint_") || strings.Contains(n, ".temp_") {
			continue
		}
		names = append(names, n)
	}
	return names, nil
}

// BackupForMerge writes <name>.undo from the current file contents, once per
// commit-queue draining pass, before any entries in the pass are applied.
func (s *FileStore) BackupForMerge(name string) error {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		data = nil
	} else if err != nil {
		return fserrors.Wrap(fserrors.CodeInternal, "read file for undo backup", err)
	}
	if err := os.WriteFile(s.undoPath(name), data, 0o644); err != nil {
		return fserrors.Wrap(fserrors.CodeInternal, "write undo backup", err)
	}
	return nil
}

// Undo restores the named file from its undo backup, removing the backup.
// Fails with not-found if no backup exists.
func (s *FileStore) Undo(name string) error {
	data, err := os.ReadFile(s.undoPath(name))
	if os.IsNotExist(err) {
		return fserrors.New(fserrors.CodeNotFound, "no undo backup available")
	}
	if err != nil {
		return fserrors.Wrap(fserrors.CodeInternal, "read undo backup", err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fserrors.Wrap(fserrors.CodeInternal, "restore from undo backup", err)
	}
	return os.Remove(s.undoPath(name))
}

// Checkpoint copies the main file to <name>.checkpoint_<tag>, failing if
// that path already exists.
func (s *FileStore) Checkpoint(name, tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}
	dst := s.checkpointPath(name, tag)
	if _, err := os.Stat(dst); err == nil {
		return fserrors.New(fserrors.CodeConflict, "checkpoint tag already exists")
	}

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return fserrors.ErrFileNotFound
	}
	if err != nil {
		return fserrors.Wrap(fserrors.CodeInternal, "read file for checkpoint", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fserrors.Wrap(fserrors.CodeInternal, "write checkpoint", err)
	}
	return nil
}

// ViewCheckpoint returns the contents of a previously taken checkpoint.
func (s *FileStore) ViewCheckpoint(name, tag string) (string, error) {
	data, err := os.ReadFile(s.checkpointPath(name, tag))
	if os.IsNotExist(err) {
		return "", fserrors.New(fserrors.CodeNotFound, "checkpoint not found")
	}
	if err != nil {
		return "", fserrors.Wrap(fserrors.CodeInternal, "read checkpoint", err)
	}
	return string(data), nil
}

// ListCheckpoints enumerates the checkpoint tags recorded for name.
func (s *FileStore) ListCheckpoints(name string) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fserrors.Wrap(fserrors.CodeInternal, "list storage root", err)
	}

	prefix := name + ".checkpoint_"
	var tags []string
	for _, e := range entries {
		if n := e.Name(); strings.HasPrefix(n, prefix) {
			tags = append(tags, strings.TrimPrefix(n, prefix))
		}
	}
	return tags, nil
}

// Revert takes an undo backup of the current main file, then overwrites main
// from the given checkpoint tag.
func (s *FileStore) Revert(name, tag string) error {
	if err := s.BackupForMerge(name); err != nil {
		return err
	}
	data, err := os.ReadFile(s.checkpointPath(name, tag))
	if os.IsNotExist(err) {
		return fserrors.New(fserrors.CodeNotFound, "checkpoint not found")
	}
	if err != nil {
		return fserrors.Wrap(fserrors.CodeInternal, "read checkpoint for revert", err)
	}
	return os.WriteFile(s.path(name), data, 0o644)
}

func validateTag(tag string) error {
	if tag == "" || strings.ContainsAny(tag, "/\\") {
		return fserrors.New(fserrors.CodeInvalidArgument, "invalid checkpoint tag")
	}
	return nil
}
