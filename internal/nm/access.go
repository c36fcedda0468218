package nm

import (
	"sync"

	"github.com/shraw06/docsplusplus/internal/fserrors"
)

// AccessRequest is a pending request_access(file, access_kind) entry.
type AccessRequest struct {
	ID       int
	File     string
	User     string
	Access   AccessType
	Satisfied bool
}

// AccessRequestQueue tracks pending access requests, guarded by its own lock
// per the shared-resource policy.
type AccessRequestQueue struct {
	mu      sync.Mutex
	nextID  int
	pending map[int]*AccessRequest
}

// NewAccessRequestQueue returns an empty AccessRequestQueue.
func NewAccessRequestQueue() *AccessRequestQueue {
	return &AccessRequestQueue{pending: make(map[int]*AccessRequest)}
}

// Request creates a pending entry for (file, access_kind) unless the user
// already holds that access (per the provided check) or an identical
// request is already pending, in which case it reports satisfied/duplicate
// without creating a new entry.
func (q *AccessRequestQueue) Request(file, user string, access AccessType, alreadyHas bool) (*AccessRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if alreadyHas {
		return &AccessRequest{File: file, User: user, Access: access, Satisfied: true}, nil
	}

	for _, r := range q.pending {
		if r.File == file && r.User == user && r.Access == access {
			return nil, fserrors.New(fserrors.CodeConflict, "duplicate access request")
		}
	}

	q.nextID++
	req := &AccessRequest{ID: q.nextID, File: file, User: user, Access: access}
	q.pending[req.ID] = req
	return req, nil
}

// ForOwner returns every pending request against a file owned by owner,
// using the provided isOwner predicate (file -> bool) to filter.
func (q *AccessRequestQueue) ForOwner(isOwner func(file string) bool) []*AccessRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []*AccessRequest
	for _, r := range q.pending {
		if isOwner(r.File) {
			out = append(out, r)
		}
	}
	return out
}

// Len reports the total number of pending requests, regardless of owner.
func (q *AccessRequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Peek returns request id without removing it, so the caller can verify
// ownership before committing to Remove.
func (q *AccessRequestQueue) Peek(id int) (*AccessRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	r, ok := q.pending[id]
	if !ok {
		return nil, fserrors.New(fserrors.CodeNotFound, "access request not found")
	}
	return r, nil
}

// Remove discards request id, used once the caller has verified ownership
// and (for approve) already applied the ACL change.
func (q *AccessRequestQueue) Remove(id int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.pending[id]; !ok {
		return fserrors.New(fserrors.CodeNotFound, "access request not found")
	}
	delete(q.pending, id)
	return nil
}
