package ss

import (
	"context"
	"net"
	"strings"

	"github.com/shraw06/docsplusplus/internal/archive"
	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/logger"
	"github.com/shraw06/docsplusplus/internal/metrics"
	"github.com/shraw06/docsplusplus/internal/wire"
)

// Dispatcher decodes messages arriving on a storage server's two sockets:
// the command channel the name server forwards metadata ops over, and the
// client port clients dial directly for data ops (read, write, stream,
// undo), per the routing split internal/nm.Server.Route makes.
type Dispatcher struct {
	store    *Store
	metrics  *metrics.SSMetrics
	archiver *archive.Archiver
}

// NewDispatcher returns a Dispatcher backed by store.
func NewDispatcher(store *Store) *Dispatcher {
	return &Dispatcher{store: store, metrics: metrics.NewSSMetrics()}
}

// SetArchiver attaches the S3 checkpoint archiver. A nil argument (the
// default) disables archive uploads; safe to call at most once, before the
// dispatcher starts serving connections.
func (d *Dispatcher) SetArchiver(a *archive.Archiver) {
	d.archiver = a
}

// ServeCommand reads forwarded metadata ops off the name server's command
// connection until it breaks, replying to each in turn. This is the same
// TCP connection the storage server used to register; the name server
// holds it open and multiplexes every client's metadata request for files
// this SS owns through it, one at a time.
func (d *Dispatcher) ServeCommand(conn net.Conn) {
	defer conn.Close()
	for {
		msg, err := wire.Recv(conn)
		if err != nil {
			return
		}
		reply := d.handleCommand(msg)
		if err := wire.Send(conn, reply); err != nil {
			return
		}
	}
}

func (d *Dispatcher) handleCommand(msg *wire.Message) *wire.Message {
	reply := wire.NewMessage()
	reply.Type = msg.Type
	reply.Filename = msg.Filename

	var err error
	switch msg.Type {
	case wire.MsgCreate:
		err = d.store.Create(msg.Filename)
	case wire.MsgDelete:
		err = d.store.Delete(msg.Filename)
	case wire.MsgCheckLocks:
		if d.store.CheckLocks(msg.Filename) {
			err = fserrors.New(fserrors.CodeConflict, "file has active locks")
		}
	case wire.MsgLockSentence:
		err = d.store.Lock(msg.Filename, msg.SentenceIndex, msg.WordIndex, msg.Sender)
		d.metrics.SetLockTableSize(d.store.LockTableSize())
	case wire.MsgUnlockSentence, wire.MsgCancelWrite:
		err = d.store.Cancel(msg.Filename, msg.Sender, msg.SentenceIndex)
		d.metrics.SetLockTableSize(d.store.LockTableSize())
	case wire.MsgCommitWrite:
		err = d.handleCommitWrite(msg)
	case wire.MsgCheckpoint:
		err = d.store.Checkpoint(msg.Filename, msg.CheckpointTag)
		if err == nil {
			d.metrics.RecordCheckpoint()
			d.archiveCheckpoint(msg.Filename, msg.CheckpointTag)
		}
	case wire.MsgViewCheckpoint:
		reply.Data, err = d.store.ViewCheckpoint(msg.Filename, msg.CheckpointTag)
	case wire.MsgListCheckpoints:
		var tags []string
		tags, err = d.store.ListCheckpoints(msg.Filename)
		if err == nil {
			reply.Data = strings.Join(tags, ",")
		}
	case wire.MsgRevert:
		err = d.store.Revert(msg.Filename, msg.CheckpointTag)
	default:
		err = fserrors.New(fserrors.CodeProtocol, "unexpected command-channel message type "+msg.Type.String())
	}

	reply.Status = wire.StatusFromError(err)
	return reply
}

// archiveCheckpoint uploads the just-taken checkpoint to S3 in the
// background: a slow or unreachable archive endpoint never delays the
// CHECKPOINT reply that already succeeded locally.
func (d *Dispatcher) archiveCheckpoint(file, tag string) {
	if d.archiver == nil {
		return
	}
	data, err := d.store.files.ViewCheckpoint(file, tag)
	if err != nil {
		logger.Warn("checkpoint archive read failed", "file", file, "tag", tag, "error", err)
		return
	}
	go func() {
		key := archive.Key(d.store.ID, file, tag)
		if err := d.archiver.Upload(context.Background(), key, []byte(data)); err != nil {
			d.metrics.RecordArchiveUpload("failure")
			logger.Warn("checkpoint archive upload failed", "key", key, "error", err)
			return
		}
		d.metrics.RecordArchiveUpload("success")
	}()
}

// handleCommitWrite ends the caller's write session and immediately drains
// the file's commit queue, so a reply never claims success before the
// rebase-merge has actually landed on disk.
func (d *Dispatcher) handleCommitWrite(msg *wire.Message) error {
	if err := d.store.Commit(msg.Filename, msg.Sender, msg.SentenceIndex); err != nil {
		d.metrics.RecordCommit("rejected")
		return err
	}
	d.metrics.SetQueueDepth(msg.Filename, d.store.QueueDepth(msg.Filename))
	result, err := d.store.DrainAndApply(msg.Filename)
	if err != nil {
		d.metrics.RecordCommit("rejected")
		return err
	}
	if result.Applied > 1 {
		d.metrics.RecordCommit("rebased")
	} else {
		d.metrics.RecordCommit("applied")
	}
	d.metrics.SetQueueDepth(msg.Filename, d.store.QueueDepth(msg.Filename))
	return nil
}

// ServeClient reads data ops (lock, write, commit, cancel, read, stream,
// undo) off a direct client connection to this SS's client port until it
// breaks. A writer's lock -> write -> commit/cancel sequence stays on this
// one connection rather than round-tripping through the name server.
func (d *Dispatcher) ServeClient(conn net.Conn) {
	defer conn.Close()
	for {
		msg, err := wire.Recv(conn)
		if err != nil {
			return
		}
		if msg.Type == wire.MsgStream {
			d.handleStream(conn, msg)
			continue
		}
		reply := d.handleClientOp(msg)
		if err := wire.Send(conn, reply); err != nil {
			return
		}
	}
}

// handleClientOp answers the message types a client sends over its direct
// connection to this SS's client port: read/write/undo, and the whole
// lock -> write -> commit/cancel sequence a write() call drives over that
// same connection (see internal/client.Client.Write). Metadata ops the name
// server forwards instead go through handleCommand.
func (d *Dispatcher) handleClientOp(msg *wire.Message) *wire.Message {
	reply := wire.NewMessage()
	reply.Type = msg.Type
	reply.Filename = msg.Filename

	var err error
	switch msg.Type {
	case wire.MsgRead:
		reply.Data, err = d.store.Read(msg.Filename)
	case wire.MsgLockSentence:
		err = d.store.Lock(msg.Filename, msg.SentenceIndex, msg.WordIndex, msg.Sender)
		d.metrics.SetLockTableSize(d.store.LockTableSize())
	case wire.MsgWrite:
		err = d.store.WriteSentence(msg.Filename, msg.Sender, msg.SentenceIndex, msg.WordIndex, msg.Data)
	case wire.MsgUnlockSentence, wire.MsgCancelWrite:
		err = d.store.Cancel(msg.Filename, msg.Sender, msg.SentenceIndex)
		d.metrics.SetLockTableSize(d.store.LockTableSize())
	case wire.MsgCommitWrite:
		err = d.handleCommitWrite(msg)
	case wire.MsgUndo:
		err = d.store.Undo(msg.Filename)
		if err == nil {
			d.metrics.RecordUndo()
		}
	default:
		err = fserrors.New(fserrors.CodeProtocol, "unexpected client-port message type "+msg.Type.String())
	}

	reply.Status = wire.StatusFromError(err)
	return reply
}

// handleStream emits content as a paced sequence of DATA frames followed
// by a terminating STOP frame, per the stream(file) wire contract.
func (d *Dispatcher) handleStream(conn net.Conn, msg *wire.Message) {
	err := d.store.Stream(context.Background(), msg.Filename, func(tok StreamToken) error {
		frame := wire.NewMessage()
		frame.Type = wire.MsgData
		frame.Filename = msg.Filename
		frame.Data = tok.Text
		if tok.NeedsTrailingSpace {
			frame.Status = wire.StreamTrailingSpace
		} else {
			frame.Status = wire.StreamNoTrailingSpace
		}
		d.metrics.RecordStreamToken("data")
		return wire.Send(conn, frame)
	})

	final := wire.NewMessage()
	final.Type = wire.MsgStop
	final.Filename = msg.Filename
	final.Status = wire.StatusFromError(err)
	d.metrics.RecordStreamToken("stop")
	wire.Send(conn, final)
}
