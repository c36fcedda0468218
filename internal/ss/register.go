package ss

import (
	"net"
	"strings"
	"time"

	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/logger"
	"github.com/shraw06/docsplusplus/internal/wire"
)

// Register dials the name server's SS port, announces this storage
// server's id, endpoints, and already-known files, and returns the
// resulting connection. The name server keeps this same connection open
// afterward as the command channel it forwards metadata ops over, so the
// caller must hand it to Dispatcher.ServeCommand rather than closing it.
func Register(nmAddr string, id int, ip string, nmPort, clientPort int, store *Store, dialTimeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", nmAddr, dialTimeout)
	if err != nil {
		return nil, fserrors.Wrap(fserrors.CodeTransport, "dial name server ss port", err)
	}

	files, err := store.ListFiles()
	if err != nil {
		conn.Close()
		return nil, err
	}

	msg := wire.NewMessage()
	msg.Type = wire.MsgRegSS
	msg.Sender = ip
	msg.SSID = id
	msg.NMPort = nmPort
	msg.ClientPort = clientPort
	msg.Data = strings.Join(files, ",")

	if err := wire.Send(conn, msg); err != nil {
		conn.Close()
		return nil, fserrors.Wrap(fserrors.CodeTransport, "send registration", err)
	}
	reply, err := wire.Recv(conn)
	if err != nil {
		conn.Close()
		return nil, fserrors.Wrap(fserrors.CodeTransport, "recv registration reply", err)
	}
	if reply.Status != wire.StatusSuccess {
		conn.Close()
		return nil, fserrors.New(fserrors.CodeConflict, "registration rejected: "+reply.Status.String())
	}

	logger.Info("registered with name server", logger.SSID(int32(id)))
	return conn, nil
}

// RunHeartbeat dials the name server's heartbeat port once and sends a
// heartbeat message every interval until stop closes or the connection
// breaks, at which point it returns so the caller can decide whether to
// reconnect.
func RunHeartbeat(nmAddr string, id int, interval time.Duration, stop <-chan struct{}) error {
	conn, err := net.Dial("tcp", nmAddr)
	if err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "dial name server heartbeat port", err)
	}
	defer conn.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return nil
		case <-ticker.C:
			// MsgAck carries no payload semantics of its own; reused here as
			// a bare keepalive ping since the wire protocol has no dedicated
			// heartbeat message type.
			msg := wire.NewMessage()
			msg.SSID = id
			if err := wire.Send(conn, msg); err != nil {
				return fserrors.Wrap(fserrors.CodeTransport, "send heartbeat", err)
			}
		}
	}
}
