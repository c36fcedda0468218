// Package snapshot persists a periodic copy of the name server's in-memory
// state (registered users, and the file and folder tries) to a BadgerDB
// database on disk, so a restarted name server can pre-warm itself instead
// of starting empty. Users, files and folders are each written in their own
// transaction, so one save is not atomic across the three sets.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/shraw06/docsplusplus/internal/bytesize"
	"github.com/shraw06/docsplusplus/internal/nm"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// Data Type   Prefix    Key Format              Value Type
// =========================================================================
// User        "user:"   user:<username>         nm.UserSession (JSON)
// File        "file:"   file:<name>             nm.FileMeta (JSON)
// Folder      "folder:" folder:<name>           nm.FolderMeta (JSON)

const (
	prefixUser   = "user:"
	prefixFile   = "file:"
	prefixFolder = "folder:"
)

func keyUser(username string) []byte { return []byte(prefixUser + username) }
func keyFile(name string) []byte     { return []byte(prefixFile + name) }
func keyFolder(name string) []byte   { return []byte(prefixFolder + name) }

// Store is a BadgerDB-backed snapshot database. The zero value is not
// usable; use Open.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a snapshot database rooted at path.
// maxSize is advisory: it is not enforced by BadgerDB directly, but callers
// can compare it against Size to decide whether to warn or compact.
func Open(path string, maxSize bytesize.ByteSize) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Size reports the current on-disk footprint (LSM tree plus value log) in
// bytes.
func (s *Store) Size() uint64 {
	lsm, vlog := s.db.Size()
	return uint64(lsm + vlog)
}

// deletePrefix removes every key under prefix within txn, following the
// collect-then-delete pattern BadgerDB requires when deleting while
// iterating.
func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, append([]byte{}, it.Item().Key()...))
	}
	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// SaveUsers replaces the stored user-session set with sessions.
func (s *Store) SaveUsers(sessions []*nm.UserSession) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, []byte(prefixUser)); err != nil {
			return err
		}
		for _, u := range sessions {
			data, err := json.Marshal(u)
			if err != nil {
				return fmt.Errorf("encode user session %q: %w", u.Username, err)
			}
			if err := txn.Set(keyUser(u.Username), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadUsers returns every user session currently stored.
func (s *Store) LoadUsers() ([]*nm.UserSession, error) {
	var out []*nm.UserSession
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixUser)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var u nm.UserSession
				if err := json.Unmarshal(val, &u); err != nil {
					return fmt.Errorf("decode user session: %w", err)
				}
				out = append(out, &u)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

// SaveFiles replaces the stored file set with files.
func (s *Store) SaveFiles(files []*nm.FileMeta) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, []byte(prefixFile)); err != nil {
			return err
		}
		for _, f := range files {
			data, err := json.Marshal(f)
			if err != nil {
				return fmt.Errorf("encode file %q: %w", f.Name, err)
			}
			if err := txn.Set(keyFile(f.Name), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadFiles returns every file currently stored.
func (s *Store) LoadFiles() ([]*nm.FileMeta, error) {
	var out []*nm.FileMeta
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixFile)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var f nm.FileMeta
				if err := json.Unmarshal(val, &f); err != nil {
					return fmt.Errorf("decode file: %w", err)
				}
				out = append(out, &f)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

// SaveFolders replaces the stored folder set with folders.
func (s *Store) SaveFolders(folders []*nm.FolderMeta) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, []byte(prefixFolder)); err != nil {
			return err
		}
		for _, f := range folders {
			data, err := json.Marshal(f)
			if err != nil {
				return fmt.Errorf("encode folder %q: %w", f.Name, err)
			}
			if err := txn.Set(keyFolder(f.Name), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadFolders returns every folder currently stored.
func (s *Store) LoadFolders() ([]*nm.FolderMeta, error) {
	var out []*nm.FolderMeta
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixFolder)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var f nm.FolderMeta
				if err := json.Unmarshal(val, &f); err != nil {
					return fmt.Errorf("decode folder: %w", err)
				}
				out = append(out, &f)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}
