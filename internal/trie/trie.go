// Package trie implements a prefix trie keyed by the byte sequence of a
// filename or folder path. It backs the name server's file and folder
// indices.
//
// A terminal node stores the value passed to Insert or Update as is; Search
// and Enumerate return that same value, so a pointer value is shared with
// the caller. All operations take a shared-exclusive guard:
// Search/Enumerate/Len take a read lock, everything else takes a write lock.
package trie

import (
	"sync"

	"github.com/shraw06/docsplusplus/internal/fserrors"
)

type node struct {
	children [128]*node
	terminal bool
	value    any
}

// Trie is a concurrency-safe prefix trie. The zero value is not usable; use
// New.
type Trie struct {
	mu   sync.RWMutex
	root *node
	size int
}

// New returns an empty Trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

func validateKey(key string) error {
	for i := 0; i < len(key); i++ {
		if key[i] >= 128 {
			return fserrors.New(fserrors.CodeInvalidArgument, "key contains non-ASCII byte")
		}
	}
	return nil
}

// Insert creates or replaces the terminal value at key.
func (t *Trie) Insert(key string, value any) error {
	if err := validateKey(key); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.root
	for i := 0; i < len(key); i++ {
		c := key[i]
		if n.children[c] == nil {
			n.children[c] = &node{}
		}
		n = n.children[c]
	}
	if !n.terminal {
		t.size++
	}
	n.terminal = true
	n.value = value
	return nil
}

// Search returns the terminal value stored at key.
func (t *Trie) Search(key string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := t.walk(key)
	if n == nil || !n.terminal {
		return nil, false
	}
	return n.value, true
}

// Update replaces the terminal value at key in place; it fails if key is
// not already present.
func (t *Trie) Update(key string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.walk(key)
	if n == nil || !n.terminal {
		return fserrors.ErrFileNotFound
	}
	n.value = value
	return nil
}

// Delete unmarks the terminal at key and prunes now-empty branches back
// toward the root.
func (t *Trie) Delete(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.walk(key)
	if n == nil || !n.terminal {
		return fserrors.ErrFileNotFound
	}
	n.terminal = false
	n.value = nil
	t.size--

	t.prune(key)
	return nil
}

// prune removes empty, non-terminal nodes along the path to key.
func (t *Trie) prune(key string) {
	path := make([]*node, len(key)+1)
	path[0] = t.root
	n := t.root
	for i := 0; i < len(key); i++ {
		n = n.children[key[i]]
		path[i+1] = n
	}

	for i := len(key); i > 0; i-- {
		leaf := path[i]
		if leaf.terminal || !isEmpty(leaf) {
			return
		}
		parent := path[i-1]
		parent.children[key[i-1]] = nil
	}
}

func isEmpty(n *node) bool {
	for _, c := range n.children {
		if c != nil {
			return false
		}
	}
	return true
}

func (t *Trie) walk(key string) *node {
	n := t.root
	for i := 0; i < len(key); i++ {
		c := key[i]
		if int(c) >= len(n.children) || n.children[c] == nil {
			return nil
		}
		n = n.children[c]
	}
	return n
}

// Enumerate collects up to max terminal values whose key starts with
// prefix. A max of 0 means unlimited.
func (t *Trie) Enumerate(prefix string, max int) ([]any, error) {
	if err := validateKey(prefix); err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	start := t.walk(prefix)
	if start == nil {
		return nil, nil
	}

	var out []any
	collect(start, &out, max)
	return out, nil
}

func collect(n *node, out *[]any, max int) {
	if max > 0 && len(*out) >= max {
		return
	}
	if n.terminal {
		*out = append(*out, n.value)
	}
	for _, c := range n.children {
		if c == nil {
			continue
		}
		if max > 0 && len(*out) >= max {
			return
		}
		collect(c, out, max)
	}
}

// Len returns the number of terminal entries currently stored.
func (t *Trie) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}
