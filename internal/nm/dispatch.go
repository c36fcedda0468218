package nm

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/shraw06/docsplusplus/internal/audit"
	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/logger"
	"github.com/shraw06/docsplusplus/internal/metrics"
	"github.com/shraw06/docsplusplus/internal/wire"
)

// Dispatcher decodes client-port messages and either answers them directly
// from NM state or forwards them to the owning storage server's command
// channel, serialized through the SS record's lock so one reply is never
// handed to the wrong caller.
type Dispatcher struct {
	server   *Server
	metrics  *metrics.NMMetrics
	auditLog *audit.Logger
}

// NewDispatcher returns a Dispatcher backed by server.
func NewDispatcher(server *Server) *Dispatcher {
	return &Dispatcher{server: server, metrics: metrics.NewNMMetrics()}
}

// SetAuditLog attaches the audit writer used for ACL and access-request
// decisions. A nil argument (the default) disables audit logging; safe to
// call at most once, before the dispatcher starts serving connections.
func (d *Dispatcher) SetAuditLog(l *audit.Logger) {
	d.auditLog = l
}

// ServeClient reads requests off conn until it closes or a framing error
// occurs, replying to each in turn. It is the per-connection goroutine body
// for the name server's client port.
func (d *Dispatcher) ServeClient(conn net.Conn) {
	defer conn.Close()
	clientIP := conn.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(clientIP); err == nil {
		clientIP = host
	}

	for {
		msg, err := wire.Recv(conn)
		if err != nil {
			return
		}
		reply := d.handle(msg, clientIP)
		if err := wire.Send(conn, reply); err != nil {
			return
		}
	}
}

func (d *Dispatcher) handle(msg *wire.Message, clientIP string) *wire.Message {
	start := time.Now()
	reply := wire.NewMessage()
	reply.Type = msg.Type
	reply.Sender = msg.Sender
	reply.Filename = msg.Filename

	var err error
	switch msg.Type {
	case wire.MsgRegClient:
		err = d.handleRegClient(msg, clientIP)
	case wire.MsgCreate:
		err = d.handleCreate(msg)
	case wire.MsgDelete:
		err = d.handleDelete(msg)
	case wire.MsgInfo:
		err = d.handleInfo(msg, reply)
	case wire.MsgView:
		err = d.handleView(msg, reply)
	case wire.MsgListUsers:
		err = d.handleListUsers(reply)
	case wire.MsgAddAccess:
		err = d.handleSetAccess(msg, true)
	case wire.MsgRemAccess:
		err = d.handleSetAccess(msg, false)
	case wire.MsgRequestAccess:
		err = d.handleRequestAccess(msg, reply)
	case wire.MsgViewRequests:
		err = d.handleViewRequests(msg, reply)
	case wire.MsgApproveRequest:
		err = d.handleResolveRequest(msg, true)
	case wire.MsgDenyRequest:
		err = d.handleResolveRequest(msg, false)
	case wire.MsgCreateFolder:
		err = d.handleCreateFolder(msg)
	case wire.MsgViewFolder:
		err = d.handleViewFolder(msg, reply)
	case wire.MsgMove:
		err = d.handleMove(msg)
	case wire.MsgSSInfo:
		err = d.handleSSInfo(reply)
	case wire.MsgRead, wire.MsgWrite, wire.MsgStream, wire.MsgUndo:
		err = d.handleRedirect(msg, reply)
	case wire.MsgLockSentence, wire.MsgUnlockSentence,
		wire.MsgCheckLocks, wire.MsgCheckpoint, wire.MsgViewCheckpoint,
		wire.MsgListCheckpoints, wire.MsgRevert, wire.MsgCancelWrite,
		wire.MsgCommitWrite:
		err = d.handleForward(msg, reply)
	case wire.MsgStop:
		// Plain acknowledgment; a client sends this to end a session
		// cleanly without deregistering.
	case wire.MsgExec:
		err = fserrors.ErrInvalidOperation
	default:
		err = fserrors.New(fserrors.CodeProtocol, "unrecognized message type "+msg.Type.String())
	}

	reply.Status = wire.StatusFromError(err)
	d.metrics.RecordRequest(msg.Type.String(), reply.Status.String(), time.Since(start))
	if msg.Type == wire.MsgRead || msg.Type == wire.MsgWrite || msg.Type == wire.MsgStream || msg.Type == wire.MsgUndo {
		d.metrics.RecordRedirect(redirectOutcome(reply.Status))
	}
	return reply
}

// redirectOutcome buckets a redirect's resulting status into a low
// cardinality outcome label for RecordRedirect.
func redirectOutcome(status wire.Status) string {
	switch status {
	case wire.StatusSuccess:
		return "ok"
	case wire.StatusErrAccessDenied:
		return "denied"
	case wire.StatusErrSSUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}

func (d *Dispatcher) handleRegClient(msg *wire.Message, clientIP string) error {
	var err error
	if msg.Access == wire.AccessNone {
		err = d.server.Users.Deregister(msg.Sender)
	} else {
		err = d.server.Users.Register(msg.Sender, clientIP)
	}
	d.metrics.SetRegisteredUsers(len(d.server.Users.All()))
	return err
}

// handleCreate picks a storage server to own the new file, tells it to
// create the backing file, then records the file in the index only once
// the SS has confirmed.
func (d *Dispatcher) handleCreate(msg *wire.Message) error {
	ss, ok := d.server.SS.PickForCreate()
	if !ok {
		return fserrors.New(fserrors.CodeUnavailable, "no storage server available")
	}

	forward := wire.NewMessage()
	forward.Type = wire.MsgCreate
	forward.Sender = msg.Sender
	forward.Filename = msg.Filename
	if _, err := forwardToSS(ss, forward); err != nil {
		return err
	}

	if err := d.server.Files.Create(msg.Filename, msg.Sender, ss.ID); err != nil {
		return err
	}
	d.server.SS.AddFile(ss.ID, msg.Filename)
	return nil
}

func (d *Dispatcher) handleDelete(msg *wire.Message) error {
	meta, err := d.server.Files.Get(msg.Filename)
	if err != nil {
		return err
	}
	ss, ok := d.server.SS.Get(meta.SSID)
	if !ok || !ss.Active {
		return fserrors.New(fserrors.CodeUnavailable, "owning storage server unavailable")
	}

	checkMsg := wire.NewMessage()
	checkMsg.Type = wire.MsgCheckLocks
	checkMsg.Filename = msg.Filename
	checkReply, err := forwardToSS(ss, checkMsg)
	if err != nil {
		return err
	}
	notLocked := checkReply.Status == wire.StatusSuccess

	if err := d.server.Delete(msg.Filename, msg.Sender, notLocked); err != nil {
		return err
	}

	delMsg := wire.NewMessage()
	delMsg.Type = wire.MsgDelete
	delMsg.Filename = msg.Filename
	_, err = forwardToSS(ss, delMsg)
	return err
}

func (d *Dispatcher) handleInfo(msg *wire.Message, reply *wire.Message) error {
	meta, err := d.server.Files.Get(msg.Filename)
	if err != nil {
		return err
	}
	reply.TargetUser = meta.Owner
	reply.SSID = meta.SSID
	reply.Data = meta.Created.Format(timeLayout) + "|" + meta.LastAccessedBy
	return nil
}

func (d *Dispatcher) handleView(msg *wire.Message, reply *wire.Message) error {
	metas, err := d.server.Files.List(msg.Filename)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(metas))
	for _, m := range metas {
		names = append(names, m.Name)
	}
	reply.Data = strings.Join(names, ",")
	return nil
}

func (d *Dispatcher) handleListUsers(reply *wire.Message) error {
	sessions := d.server.Users.All()
	names := make([]string, 0, len(sessions))
	for _, s := range sessions {
		names = append(names, s.Username)
	}
	reply.Data = strings.Join(names, ",")
	return nil
}

func (d *Dispatcher) handleSetAccess(msg *wire.Message, grant bool) error {
	meta, err := d.server.Files.Get(msg.Filename)
	if err != nil {
		return err
	}
	if meta.Owner != msg.Sender {
		return fserrors.New(fserrors.CodePermission, "not owner")
	}

	access := AccessType(msg.Access)
	action, outcome := audit.ActionRevoke, "revoked"
	if grant {
		action, outcome = audit.ActionGrant, "granted"
		err = d.server.Files.SetACL(msg.Filename, msg.TargetUser, access)
	} else {
		err = d.server.Files.RemoveACL(msg.Filename, msg.TargetUser)
	}
	if err != nil {
		return err
	}

	d.auditLog.Log(audit.NewRecord(msg.Sender, action, msg.Filename, msg.TargetUser, access.String(), outcome))
	return nil
}

func (d *Dispatcher) handleRequestAccess(msg *wire.Message, reply *wire.Message) error {
	req, err := d.server.RequestAccess(msg.Filename, msg.Sender, AccessType(msg.Access))
	if err != nil {
		return err
	}
	reply.SentenceIndex = req.ID
	if req.Satisfied {
		reply.Data = "satisfied"
	}
	d.metrics.SetPendingAccessRequests(d.server.Requests.Len())
	return nil
}

func (d *Dispatcher) handleViewRequests(msg *wire.Message, reply *wire.Message) error {
	owned := d.server.ViewRequests(msg.Sender)
	parts := make([]string, 0, len(owned))
	for _, r := range owned {
		parts = append(parts, strconv.Itoa(r.ID)+":"+r.File+":"+r.User)
	}
	reply.Data = strings.Join(parts, ",")
	return nil
}

// handleResolveRequest approves or denies a pending access request. The
// request id rides on SentenceIndex: neither message type has a use for
// that field, and the wire format has no spare column for it.
func (d *Dispatcher) handleResolveRequest(msg *wire.Message, approve bool) error {
	req, peekErr := d.server.Requests.Peek(msg.SentenceIndex)

	var err error
	action, outcome := audit.ActionDeny, "denied"
	if approve {
		action, outcome = audit.ActionApprove, "approved"
		err = d.server.ApproveRequest(msg.SentenceIndex, msg.Sender)
	} else {
		err = d.server.DenyRequest(msg.SentenceIndex, msg.Sender)
	}
	d.metrics.SetPendingAccessRequests(d.server.Requests.Len())
	if err != nil {
		return err
	}

	if peekErr == nil {
		d.auditLog.Log(audit.NewRecord(msg.Sender, action, req.File, req.User, req.Access.String(), outcome))
	}
	return nil
}

func (d *Dispatcher) handleCreateFolder(msg *wire.Message) error {
	return d.server.Folders.Create(msg.Foldername, msg.Sender)
}

func (d *Dispatcher) handleViewFolder(msg *wire.Message, reply *wire.Message) error {
	meta, err := d.server.Folders.View(msg.Foldername)
	if err != nil {
		return err
	}
	reply.TargetUser = meta.Owner
	reply.Data = strings.Join(meta.Files, ",")
	return nil
}

// handleMove adds an existing file to a folder. Ownership of the file
// (not the folder) gates the operation, matching the ACL model used
// everywhere else: a folder is a grouping, not a protection boundary.
func (d *Dispatcher) handleMove(msg *wire.Message) error {
	meta, err := d.server.Files.Get(msg.Filename)
	if err != nil {
		return err
	}
	if meta.Owner != msg.Sender {
		return fserrors.New(fserrors.CodePermission, "not owner")
	}
	return d.server.Folders.AddFile(msg.Foldername, msg.Filename)
}

func (d *Dispatcher) handleSSInfo(reply *wire.Message) error {
	active := d.server.SS.Active()
	parts := make([]string, 0, len(active))
	for _, ss := range active {
		parts = append(parts, strconv.Itoa(ss.ID)+":"+ss.Endpoint())
	}
	reply.Data = strings.Join(parts, ",")
	d.metrics.SetActiveServers(len(active))
	return nil
}

// handleRedirect answers a data op with the owning SS's client-facing
// endpoint, packed into TargetPath, so the client can open a second
// connection straight to it.
func (d *Dispatcher) handleRedirect(msg *wire.Message, reply *wire.Message) error {
	result, err := d.server.Route(msg)
	if err != nil {
		return err
	}
	reply.TargetPath = result.Redirect
	return nil
}

// handleForward proxies a metadata op that must run against the owning
// SS's actual file state (locks, checkpoints, staged-write commit/cancel)
// over its command channel, copying the SS's reply status back verbatim.
func (d *Dispatcher) handleForward(msg *wire.Message, reply *wire.Message) error {
	meta, err := d.server.Files.Get(msg.Filename)
	if err != nil {
		return err
	}
	ss, ok := d.server.SS.Get(meta.SSID)
	if !ok || !ss.Active {
		return fserrors.New(fserrors.CodeUnavailable, "owning storage server unavailable")
	}

	ssReply, err := forwardToSS(ss, msg)
	if err != nil {
		return err
	}
	reply.Data = ssReply.Data
	reply.TargetPath = ssReply.TargetPath
	if ssReply.Status != wire.StatusSuccess {
		return fserrors.New(fserrors.CodeConflict, ssReply.Status.String())
	}
	return nil
}

// forwardToSS sends msg on ss's command channel and waits for the reply,
// holding ss's lock for the round trip so concurrent forwards to the same
// SS never cross wires.
func forwardToSS(ss *SSRecord, msg *wire.Message) (*wire.Message, error) {
	ss.Lock()
	defer ss.Unlock()

	conn := ss.commandConn
	if conn == nil {
		return nil, fserrors.New(fserrors.CodeUnavailable, "storage server command channel not connected")
	}
	if err := wire.Send(conn, msg); err != nil {
		return nil, fserrors.Wrap(fserrors.CodeTransport, "forward to storage server", err)
	}
	reply, err := wire.Recv(conn)
	if err != nil {
		return nil, fserrors.Wrap(fserrors.CodeTransport, "receive storage server reply", err)
	}
	return reply, nil
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

// ServeSSRegistration accepts one registration on the name server's SS
// port: the SS sends its id/endpoint/known-files, the name server replies
// and keeps the connection open as the command channel for forwarded
// metadata ops.
func (d *Dispatcher) ServeSSRegistration(conn net.Conn) {
	msg, err := wire.Recv(conn)
	if err != nil {
		conn.Close()
		return
	}
	if msg.Type != wire.MsgRegSS {
		logger.Warn("expected REG_SS on ss port", "got", msg.Type.String())
		conn.Close()
		return
	}

	files := strings.Split(msg.Data, ",")
	if len(files) == 1 && files[0] == "" {
		files = nil
	}
	rec := d.server.SS.Register(msg.SSID, msg.Sender, msg.NMPort, msg.ClientPort, files, d.server.Files.EnsureSeen)
	d.server.SS.BindConns(rec.ID, conn, nil)
	d.metrics.SetActiveServers(len(d.server.SS.Active()))

	reply := wire.NewMessage()
	reply.Type = wire.MsgRegSS
	reply.Status = wire.StatusSuccess
	reply.SSID = rec.ID
	if err := wire.Send(conn, reply); err != nil {
		return
	}

	logger.Info("storage server registered", logger.SSID(int32(rec.ID)), logger.ClientIP(rec.IP))

	// conn now serves as rec's command channel: every subsequent read/write
	// against it happens inside forwardToSS, serialized by rec's lock, not
	// in a dedicated loop here.
}

// ServeHeartbeat accepts one heartbeat connection and records a liveness
// ping for every HEARTBEAT-shaped message it receives until the socket
// closes.
func (d *Dispatcher) ServeHeartbeat(conn net.Conn) {
	defer conn.Close()
	bound := false
	for {
		msg, err := wire.Recv(conn)
		if err != nil {
			return
		}
		if !bound {
			d.server.SS.BindHeartbeatConn(msg.SSID, conn)
			bound = true
		}
		if err := d.server.SS.Heartbeat(msg.SSID); err != nil {
			logger.Warn("heartbeat from unknown storage server", logger.SSID(int32(msg.SSID)))
		}
	}
}
