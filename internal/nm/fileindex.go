package nm

import (
	"sync"
	"time"

	"github.com/shraw06/docsplusplus/internal/cache"
	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/trie"
)

// AccessType mirrors the wire AccessType enum for ACL entries.
type AccessType int

const (
	AccessNone AccessType = iota
	AccessRead
	AccessWrite
	AccessReadWrite
)

// String renders a's access level as its lowercase wire name, used by the
// audit log and admin API views.
func (a AccessType) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "read-write"
	default:
		return "none"
	}
}

// FileMeta is everything the name server tracks about one file, independent
// of its actual byte content (which lives on the owning storage server).
type FileMeta struct {
	Name           string
	Owner          string
	SSID           int
	ACL            map[string]AccessType
	Created        time.Time
	Accessed       time.Time
	LastAccessedBy string
}

func (m *FileMeta) clone() *FileMeta {
	c := *m
	c.ACL = make(map[string]AccessType, len(m.ACL))
	for k, v := range m.ACL {
		c.ACL[k] = v
	}
	return &c
}

// FileIndex is the name server's file metadata store: a prefix trie for
// name lookup/enumeration plus an LRU front cache, kept consistent on every
// mutation (the index, not the cache, is the source of truth).
type FileIndex struct {
	mu    sync.RWMutex
	names *trie.Trie
	cache *cache.LRU
}

// NewFileIndex returns an empty FileIndex with an LRU front cache of the
// given capacity.
func NewFileIndex(cacheCapacity int) *FileIndex {
	return &FileIndex{
		names: trie.New(),
		cache: cache.New(cacheCapacity),
	}
}

// Create registers a brand-new file owned by owner on the given SS.
func (idx *FileIndex) Create(name, owner string, ssID int) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.names.Search(name); ok {
		return fserrors.New(fserrors.CodeConflict, "file already exists")
	}

	meta := &FileMeta{
		Name:    name,
		Owner:   owner,
		SSID:    ssID,
		ACL:     make(map[string]AccessType),
		Created: time.Now(),
	}
	if err := idx.names.Insert(name, meta); err != nil {
		return err
	}
	idx.cache.Put(name, meta.clone())
	return nil
}

// Restore installs meta directly, overwriting any existing entry with the
// same name. Used to replay a snapshot at startup, before the name server
// begins serving requests.
func (idx *FileIndex) Restore(meta *FileMeta) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.names.Insert(meta.Name, meta); err != nil {
		return err
	}
	idx.cache.Put(meta.Name, meta.clone())
	return nil
}

// EnsureSeen is called from SS (re)registration: it merges an SS-reported
// file into the index. Existing entries keep their owner and ACL but have
// their SSID refreshed; unknown files are inserted with owner "system" and
// an empty ACL.
func (idx *FileIndex) EnsureSeen(name string, ssID int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if v, ok := idx.names.Search(name); ok {
		meta := v.(*FileMeta)
		meta.SSID = ssID
		idx.cache.Put(name, meta.clone())
		return
	}

	meta := &FileMeta{
		Name:  name,
		Owner: "system",
		SSID:  ssID,
		ACL:   make(map[string]AccessType),
	}
	idx.names.Insert(name, meta)
	idx.cache.Put(name, meta.clone())
}

// Get returns a copy of the metadata for name, consulting the LRU cache
// first and falling back to (then refilling from) the trie on a miss.
func (idx *FileIndex) Get(name string) (*FileMeta, error) {
	idx.mu.RLock()
	if v, ok := idx.cache.Get(name); ok {
		idx.mu.RUnlock()
		return v.(*FileMeta).clone(), nil
	}
	idx.mu.RUnlock()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	v, ok := idx.names.Search(name)
	if !ok {
		return nil, fserrors.ErrFileNotFound
	}
	meta := v.(*FileMeta)
	idx.cache.Put(name, meta)
	return meta.clone(), nil
}

// Delete removes name from both the trie and the cache.
func (idx *FileIndex) Delete(name string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.names.Delete(name); err != nil {
		return fserrors.ErrFileNotFound
	}
	idx.cache.Remove(name)
	return nil
}

// List enumerates every file whose name has the given prefix ("" for all).
func (idx *FileIndex) List(prefix string) ([]*FileMeta, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	values, err := idx.names.Enumerate(prefix, 0)
	if err != nil {
		return nil, err
	}
	metas := make([]*FileMeta, 0, len(values))
	for _, v := range values {
		metas = append(metas, v.(*FileMeta).clone())
	}
	return metas, nil
}

// TouchAccess updates the accessed timestamp and last-accessed-by user,
// called by the routing layer whenever a data op is forwarded to an SS.
func (idx *FileIndex) TouchAccess(name, user string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	v, ok := idx.names.Search(name)
	if !ok {
		return fserrors.ErrFileNotFound
	}
	meta := v.(*FileMeta)
	meta.Accessed = time.Now()
	meta.LastAccessedBy = user
	idx.cache.Put(name, meta)
	return nil
}

// SetACL installs (or upgrades) access for user on name, used by
// approve_request.
func (idx *FileIndex) SetACL(name, user string, access AccessType) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	v, ok := idx.names.Search(name)
	if !ok {
		return fserrors.ErrFileNotFound
	}
	meta := v.(*FileMeta)
	if cur, has := meta.ACL[user]; !has || access > cur {
		meta.ACL[user] = access
	}
	idx.cache.Put(name, meta)
	return nil
}

// RemoveACL revokes user's access to name entirely, used by rem_access.
func (idx *FileIndex) RemoveACL(name, user string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	v, ok := idx.names.Search(name)
	if !ok {
		return fserrors.ErrFileNotFound
	}
	meta := v.(*FileMeta)
	delete(meta.ACL, user)
	idx.cache.Put(name, meta)
	return nil
}

// HasAccess reports whether user may perform the given access kind on name:
// owners always may; otherwise the ACL must grant at least that level.
func (idx *FileIndex) HasAccess(name, user string, want AccessType) bool {
	meta, err := idx.Get(name)
	if err != nil {
		return false
	}
	if meta.Owner == user {
		return true
	}
	have := meta.ACL[user]
	if want == AccessReadWrite {
		return have == AccessReadWrite
	}
	return have == want || have == AccessReadWrite
}
