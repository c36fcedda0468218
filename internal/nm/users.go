package nm

import (
	"sync"

	"github.com/shraw06/docsplusplus/internal/fserrors"
)

// UserSession is a registered client's active connection state.
type UserSession struct {
	Username string
	ClientIP string
	Active   bool
}

// UserRegistry enforces at-most-one active session per username.
type UserRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*UserSession
}

// NewUserRegistry returns an empty UserRegistry.
func NewUserRegistry() *UserRegistry {
	return &UserRegistry{sessions: make(map[string]*UserSession)}
}

// Register begins a session for username, failing if one is already active.
func (r *UserRegistry) Register(username, clientIP string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[username]; ok && s.Active {
		return fserrors.ErrUserAlreadyActive
	}
	r.sessions[username] = &UserSession{Username: username, ClientIP: clientIP, Active: true}
	return nil
}

// Restore installs a session loaded from a snapshot. It is always installed
// inactive: a snapshot reflects a past process's connections, none of which
// survive the restart.
func (r *UserRegistry) Restore(s *UserSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess := *s
	sess.Active = false
	r.sessions[sess.Username] = &sess
}

// Deregister ends username's active session.
func (r *UserRegistry) Deregister(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[username]
	if !ok || !s.Active {
		return fserrors.ErrUserNotFound
	}
	s.Active = false
	return nil
}

// Get returns username's session, if any.
func (r *UserRegistry) Get(username string) (*UserSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[username]
	return s, ok
}

// All returns every session the registry has ever seen, active or not, for
// admin/inventory views.
func (r *UserRegistry) All() []*UserSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*UserSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// IsActive reports whether username currently has an active session.
func (r *UserRegistry) IsActive(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[username]
	return ok && s.Active
}
