package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/shraw06/docsplusplus/internal/logger"
	"github.com/shraw06/docsplusplus/internal/nm"
)

// Snapshotter periodically copies a name server's in-memory state into a
// Store, and can replay a Store's contents back into a fresh server at
// startup.
type Snapshotter struct {
	store  *Store
	server *nm.Server
}

// NewSnapshotter returns a Snapshotter writing server's state to store.
func NewSnapshotter(store *Store, server *nm.Server) *Snapshotter {
	return &Snapshotter{store: store, server: server}
}

// Save writes the current contents of every registered user, file, and
// folder to the store, replacing whatever was there before.
func (sn *Snapshotter) Save() error {
	if err := sn.store.SaveUsers(sn.server.Users.All()); err != nil {
		return fmt.Errorf("snapshot users: %w", err)
	}

	files, err := sn.server.Files.List("")
	if err != nil {
		return fmt.Errorf("list files for snapshot: %w", err)
	}
	if err := sn.store.SaveFiles(files); err != nil {
		return fmt.Errorf("snapshot files: %w", err)
	}

	folders, err := sn.server.Folders.List("")
	if err != nil {
		return fmt.Errorf("list folders for snapshot: %w", err)
	}
	if err := sn.store.SaveFolders(folders); err != nil {
		return fmt.Errorf("snapshot folders: %w", err)
	}

	return nil
}

// Load replays the store's contents into server. It is meant to run once,
// before the name server starts accepting connections: every restored user
// session is installed inactive, since no client from a previous process
// can still be connected.
func (sn *Snapshotter) Load() error {
	users, err := sn.store.LoadUsers()
	if err != nil {
		return fmt.Errorf("load users from snapshot: %w", err)
	}
	for _, u := range users {
		sn.server.Users.Restore(u)
	}

	files, err := sn.store.LoadFiles()
	if err != nil {
		return fmt.Errorf("load files from snapshot: %w", err)
	}
	for _, f := range files {
		if err := sn.server.Files.Restore(f); err != nil {
			return fmt.Errorf("restore file %q: %w", f.Name, err)
		}
	}

	folders, err := sn.store.LoadFolders()
	if err != nil {
		return fmt.Errorf("load folders from snapshot: %w", err)
	}
	for _, f := range folders {
		if err := sn.server.Folders.Restore(f); err != nil {
			return fmt.Errorf("restore folder %q: %w", f.Name, err)
		}
	}

	logger.Info("snapshot loaded", "users", len(users), "files", len(files), "folders", len(folders))
	return nil
}

// Run takes a snapshot every interval until ctx is cancelled, logging (but
// not failing on) a snapshot error so a transient failure doesn't bring
// down the name server.
func (sn *Snapshotter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sn.Save(); err != nil {
				logger.Error("periodic snapshot failed", "error", err)
				continue
			}
			logger.Debug("periodic snapshot complete", "size_bytes", sn.store.Size())
		}
	}
}
