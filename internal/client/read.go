package client

import (
	"net"

	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/wire"
)

// Read resolves the owning storage server for filename and returns its full
// current text.
func (c *Client) Read(filename string) (string, error) {
	endpoint, err := c.resolveSS(wire.MsgRead, filename)
	if err != nil {
		return "", err
	}

	conn, err := net.DialTimeout("tcp", endpoint, c.cfg.DialTimeout)
	if err != nil {
		return "", fserrors.Wrap(fserrors.CodeTransport, "dial storage server", err)
	}
	defer conn.Close()

	msg := wire.NewMessage()
	msg.Type = wire.MsgRead
	msg.Sender = c.cfg.Username
	msg.Filename = filename

	if err := wire.Send(conn, msg); err != nil {
		return "", fserrors.Wrap(fserrors.CodeTransport, "send read request", err)
	}
	reply, err := wire.Recv(conn)
	if err != nil {
		return "", fserrors.Wrap(fserrors.CodeTransport, "recv read reply", err)
	}
	if reply.Status != wire.StatusSuccess {
		return "", fserrors.New(fserrors.CodeInternal, "read rejected: "+reply.Status.String())
	}
	return reply.Data, nil
}

// Stream resolves the owning storage server and drains its paced token
// stream, calling onToken once per DATA frame until STOP.
func (c *Client) Stream(filename string, onToken func(text string, needsTrailingSpace bool) error) error {
	endpoint, err := c.resolveSS(wire.MsgStream, filename)
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", endpoint, c.cfg.DialTimeout)
	if err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "dial storage server", err)
	}
	defer conn.Close()

	msg := wire.NewMessage()
	msg.Type = wire.MsgStream
	msg.Sender = c.cfg.Username
	msg.Filename = filename
	if err := wire.Send(conn, msg); err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "send stream request", err)
	}

	for {
		frame, err := wire.Recv(conn)
		if err != nil {
			return fserrors.Wrap(fserrors.CodeTransport, "recv stream frame", err)
		}
		if frame.Type == wire.MsgStop {
			return nil
		}
		needsSpace := frame.Status == wire.StreamTrailingSpace
		if err := onToken(frame.Data, needsSpace); err != nil {
			return err
		}
	}
}
