package nm

import (
	"sync"

	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/trie"
)

// FolderMeta is the name server's metadata about one folder grouping.
type FolderMeta struct {
	Name  string
	Owner string
	Files []string
}

// FolderIndex is a prefix trie of folders, guarded independently of the
// file index per the shared-resource policy.
type FolderIndex struct {
	mu    sync.RWMutex
	names *trie.Trie
}

// NewFolderIndex returns an empty FolderIndex.
func NewFolderIndex() *FolderIndex {
	return &FolderIndex{names: trie.New()}
}

// Create registers a new folder.
func (f *FolderIndex) Create(name, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.names.Search(name); ok {
		return fserrors.New(fserrors.CodeConflict, "folder already exists")
	}
	return f.names.Insert(name, &FolderMeta{Name: name, Owner: owner})
}

// Restore installs meta directly, overwriting any existing entry with the
// same name. Used to replay a snapshot at startup.
func (f *FolderIndex) Restore(meta *FolderMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.names.Insert(meta.Name, meta)
}

// AddFile records that file belongs to folder.
func (f *FolderIndex) AddFile(folder, file string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.names.Search(folder)
	if !ok {
		return fserrors.New(fserrors.CodeNotFound, "folder not found")
	}
	meta := v.(*FolderMeta)
	meta.Files = append(meta.Files, file)
	return nil
}

// View returns a copy of folder's metadata.
func (f *FolderIndex) View(folder string) (*FolderMeta, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.names.Search(folder)
	if !ok {
		return nil, fserrors.New(fserrors.CodeNotFound, "folder not found")
	}
	meta := *v.(*FolderMeta)
	meta.Files = append([]string{}, v.(*FolderMeta).Files...)
	return &meta, nil
}

// List enumerates folders under prefix.
func (f *FolderIndex) List(prefix string) ([]*FolderMeta, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	values, err := f.names.Enumerate(prefix, 0)
	if err != nil {
		return nil, err
	}
	out := make([]*FolderMeta, 0, len(values))
	for _, v := range values {
		out = append(out, v.(*FolderMeta))
	}
	return out, nil
}
