// Package client implements the client side of the write protocol: asking
// the name server which storage server owns a file, connecting to that
// storage server to stage a sentence edit, and the bounded reconnect/retry
// loop that recovers from a broken write connection.
package client

import (
	"net"
	"time"

	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/wire"
)

// maxWriteAttempts bounds the reconnect/retry loop a broken write
// connection triggers: re-resolve the owning SS via NM, reconnect,
// re-acquire the sentence lock, and retry.
const maxWriteAttempts = 5

// Config describes how to reach the name server and identify this client.
type Config struct {
	NMAddr   string
	Username string
	DialTimeout time.Duration
}

// Client holds the persistent connection to the name server plus whatever
// storage-server connection the current operation needs.
type Client struct {
	cfg    Config
	nmConn net.Conn
}

// Dial connects to the name server's client port and registers username.
func Dial(cfg Config) (*Client, error) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}

	conn, err := net.DialTimeout("tcp", cfg.NMAddr, cfg.DialTimeout)
	if err != nil {
		return nil, fserrors.Wrap(fserrors.CodeTransport, "dial name server", err)
	}

	c := &Client{cfg: cfg, nmConn: conn}
	if err := c.register(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) register() error {
	msg := wire.NewMessage()
	msg.Type = wire.MsgRegClient
	msg.Sender = c.cfg.Username
	// Any Access other than AccessNone registers; AccessNone deregisters (see Close).
	msg.Access = wire.AccessRead

	if err := wire.Send(c.nmConn, msg); err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "send register", err)
	}
	reply, err := wire.Recv(c.nmConn)
	if err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "recv register reply", err)
	}
	if reply.Status != wire.StatusSuccess {
		return fserrors.New(fserrors.CodeConflict, "register rejected: "+reply.Status.String())
	}
	return nil
}

// Close deregisters and closes the name server connection.
func (c *Client) Close() error {
	msg := wire.NewMessage()
	msg.Type = wire.MsgRegClient
	msg.Sender = c.cfg.Username
	msg.Access = wire.AccessNone
	wire.Send(c.nmConn, msg)
	return c.nmConn.Close()
}

// resolveSS asks the name server which storage server owns filename and
// where to reach it for data operations, via the standard metadata-routing
// path (the NM replies SUCCESS with the endpoint packed into TargetPath).
func (c *Client) resolveSS(opType wire.Type, filename string) (string, error) {
	msg := wire.NewMessage()
	msg.Type = opType
	msg.Sender = c.cfg.Username
	msg.Filename = filename

	if err := wire.Send(c.nmConn, msg); err != nil {
		return "", fserrors.Wrap(fserrors.CodeTransport, "send resolve request", err)
	}
	reply, err := wire.Recv(c.nmConn)
	if err != nil {
		return "", fserrors.Wrap(fserrors.CodeTransport, "recv resolve reply", err)
	}
	if reply.Status != wire.StatusSuccess {
		return "", fserrors.New(fserrors.CodeUnavailable, "resolve failed: "+reply.Status.String())
	}
	return reply.TargetPath, nil
}
