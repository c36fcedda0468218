package nm

import (
	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/wire"
)

// dataOps are the message types routed straight to the owning SS's
// ip:client_port rather than handled locally by the name server.
var dataOps = map[wire.Type]bool{
	wire.MsgRead:   true,
	wire.MsgWrite:  true,
	wire.MsgStream: true,
	wire.MsgUndo:   true,
}

// accessForOp maps a data-op message type to the ACL level it requires.
func accessForOp(t wire.Type) AccessType {
	if t == wire.MsgRead || t == wire.MsgStream {
		return AccessRead
	}
	return AccessWrite
}

// Server composes the name server's subsystems into the request-handling
// surface client and SS connections call into.
type Server struct {
	SS       *SSRegistry
	Files    *FileIndex
	Folders  *FolderIndex
	Users    *UserRegistry
	Requests *AccessRequestQueue
}

// NewServer wires a fresh Server with the given file-index LRU capacity.
func NewServer(cacheCapacity int) *Server {
	return &Server{
		SS:       NewSSRegistry(),
		Files:    NewFileIndex(cacheCapacity),
		Folders:  NewFolderIndex(),
		Users:    NewUserRegistry(),
		Requests: NewAccessRequestQueue(),
	}
}

// RouteResult tells the connection handler what to do with a client request.
type RouteResult struct {
	// Forward is set for a metadata op: the message to forward to the
	// owning SS's command channel, and the SS record to forward it on.
	Forward *wire.Message
	SS      *SSRecord

	// Redirect is set for a data op: the client should open a second TCP
	// connection to this "ip:client_port".
	Redirect string
}

// Route decides, for an incoming client Message, whether it is a metadata
// op (forward to owning SS on the command channel) or a data op (ACL-check
// then hand back the owning SS's client-facing endpoint).
func (s *Server) Route(msg *wire.Message) (*RouteResult, error) {
	meta, err := s.Files.Get(msg.Filename)
	if err != nil {
		return nil, err
	}

	ss, ok := s.SS.Get(meta.SSID)
	if !ok || !ss.Active {
		return nil, fserrors.New(fserrors.CodeUnavailable, "owning storage server unavailable")
	}

	if dataOps[msg.Type] {
		want := accessForOp(msg.Type)
		if !s.Files.HasAccess(msg.Filename, msg.Sender, want) {
			return nil, fserrors.New(fserrors.CodePermission, "access denied")
		}
		if err := s.Files.TouchAccess(msg.Filename, msg.Sender); err != nil {
			return nil, err
		}
		return &RouteResult{Redirect: ss.Endpoint()}, nil
	}

	return &RouteResult{Forward: msg, SS: ss}, nil
}

// Delete enforces ownership and the owning SS's check_locks gate before
// removing a file from the index; the caller is responsible for having
// already asked the SS and getting a "not locked" answer, passed as
// notLocked.
func (s *Server) Delete(filename, requester string, notLocked bool) error {
	meta, err := s.Files.Get(filename)
	if err != nil {
		return err
	}
	if meta.Owner != requester {
		return fserrors.New(fserrors.CodePermission, "not owner")
	}
	if !notLocked {
		return fserrors.New(fserrors.CodeConflict, "file locked")
	}
	return s.Files.Delete(filename)
}

// RequestAccess implements request_access(file, access_kind) for requester.
func (s *Server) RequestAccess(filename, requester string, access AccessType) (*AccessRequest, error) {
	already := s.Files.HasAccess(filename, requester, access)
	return s.Requests.Request(filename, requester, access, already)
}

// ViewRequests returns pending requests against files owner owns.
func (s *Server) ViewRequests(owner string) []*AccessRequest {
	return s.Requests.ForOwner(func(file string) bool {
		meta, err := s.Files.Get(file)
		return err == nil && meta.Owner == owner
	})
}

// ApproveRequest verifies ownership, upgrades the ACL, and removes the
// pending request.
func (s *Server) ApproveRequest(id int, approver string) error {
	req, err := s.Requests.Peek(id)
	if err != nil {
		return err
	}
	meta, err := s.Files.Get(req.File)
	if err != nil {
		return err
	}
	if meta.Owner != approver {
		return fserrors.New(fserrors.CodePermission, "not owner")
	}
	if err := s.Files.SetACL(req.File, req.User, req.Access); err != nil {
		return err
	}
	return s.Requests.Remove(id)
}

// DenyRequest verifies ownership and removes the pending request.
func (s *Server) DenyRequest(id int, approver string) error {
	req, err := s.Requests.Peek(id)
	if err != nil {
		return err
	}
	meta, err := s.Files.Get(req.File)
	if err != nil {
		return err
	}
	if meta.Owner != approver {
		return fserrors.New(fserrors.CodePermission, "not owner")
	}
	return s.Requests.Remove(id)
}
