package client

import (
	"net"
	"strings"
	"time"

	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/logger"
	"github.com/shraw06/docsplusplus/internal/wire"
)

// WriteSession is one client's in-progress sentence edit against a storage
// server, reconnectable up to maxWriteAttempts times on transport failure.
type WriteSession struct {
	client      *Client
	filename    string
	sentenceIdx int
	wordIdx     int
	ssConn      net.Conn
}

// Write stages and commits text at (sentenceIdx, wordIdx) in filename. On a
// transport failure mid-session it re-resolves the owning SS via the name
// server, reconnects, re-acquires the sentence lock, and retries the whole
// sequence, up to maxWriteAttempts times.
func (c *Client) Write(filename string, sentenceIdx, wordIdx int, text string) error {
	var lastErr error

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		err := c.writeOnce(filename, sentenceIdx, wordIdx, text)
		if err == nil {
			return nil
		}
		if fserrors.CodeOf(err) != fserrors.CodeTransport {
			return err
		}

		lastErr = err
		logger.Warn("write attempt failed, retrying",
			logger.Filename(filename),
			logger.Attempt(attempt),
			logger.MaxRetries(maxWriteAttempts),
			logger.Err(err),
		)
		time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
	}

	return fserrors.Wrap(fserrors.CodeTransport, "write failed after max retries", lastErr)
}

// writeOnce performs one full attempt: resolve, dial, lock, stage, commit.
func (c *Client) writeOnce(filename string, sentenceIdx, wordIdx int, text string) error {
	endpoint, err := c.resolveSS(wire.MsgWrite, filename)
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", endpoint, c.cfg.DialTimeout)
	if err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "dial storage server", err)
	}
	defer conn.Close()

	if err := c.lockSentence(conn, filename, sentenceIdx, wordIdx); err != nil {
		return err
	}

	if err := c.stageText(conn, filename, sentenceIdx, wordIdx, text); err != nil {
		c.cancelWrite(conn, filename, sentenceIdx)
		return err
	}

	return c.commitWrite(conn, filename, sentenceIdx)
}

func (c *Client) lockSentence(conn net.Conn, filename string, sentenceIdx, wordIdx int) error {
	msg := wire.NewMessage()
	msg.Type = wire.MsgLockSentence
	msg.Sender = c.cfg.Username
	msg.Filename = filename
	msg.SentenceIndex = sentenceIdx
	msg.WordIndex = wordIdx

	if err := wire.Send(conn, msg); err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "send lock request", err)
	}
	reply, err := wire.Recv(conn)
	if err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "recv lock reply", err)
	}
	if reply.Status != wire.StatusSuccess {
		return fserrors.New(fserrors.CodeConflict, "lock rejected: "+reply.Status.String())
	}
	return nil
}

func (c *Client) stageText(conn net.Conn, filename string, sentenceIdx, wordIdx int, text string) error {
	msg := wire.NewMessage()
	msg.Type = wire.MsgWrite
	msg.Sender = c.cfg.Username
	msg.Filename = filename
	msg.SentenceIndex = sentenceIdx
	msg.WordIndex = wordIdx
	msg.Data = decodeEscapes(text)

	if err := wire.Send(conn, msg); err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "send staged write", err)
	}
	reply, err := wire.Recv(conn)
	if err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "recv staged write reply", err)
	}
	if reply.Status != wire.StatusSuccess {
		return fserrors.New(fserrors.CodeInternal, "staged write rejected: "+reply.Status.String())
	}
	return nil
}

func (c *Client) commitWrite(conn net.Conn, filename string, sentenceIdx int) error {
	msg := wire.NewMessage()
	msg.Type = wire.MsgCommitWrite
	msg.Sender = c.cfg.Username
	msg.Filename = filename
	msg.SentenceIndex = sentenceIdx

	if err := wire.Send(conn, msg); err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "send commit", err)
	}
	reply, err := wire.Recv(conn)
	if err != nil {
		return fserrors.Wrap(fserrors.CodeTransport, "recv commit reply", err)
	}
	if reply.Status != wire.StatusSuccess {
		return fserrors.New(fserrors.CodeInternal, "commit rejected: "+reply.Status.String())
	}
	return nil
}

// decodeEscapes converts the backslash escapes a user can type at the write
// prompt into their byte meanings before the content is staged: \n \t \r \\
// \' \" \0. An unknown \x is reduced to just x, dropping the backslash
// rather than rejecting the write.
func decodeEscapes(text string) string {
	if !strings.ContainsRune(text, '\\') {
		return text
	}

	buf := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' || i == len(text)-1 {
			buf = append(buf, c)
			continue
		}

		switch text[i+1] {
		case 'n':
			buf = append(buf, '\n')
		case 't':
			buf = append(buf, '\t')
		case 'r':
			buf = append(buf, '\r')
		case '\\':
			buf = append(buf, '\\')
		case '\'':
			buf = append(buf, '\'')
		case '"':
			buf = append(buf, '"')
		case '0':
			buf = append(buf, 0)
		default:
			buf = append(buf, text[i+1])
		}
		i++
	}
	return string(buf)
}

// cancelWrite is a best-effort cleanup; its result is intentionally ignored
// by callers already propagating a prior error.
func (c *Client) cancelWrite(conn net.Conn, filename string, sentenceIdx int) {
	msg := wire.NewMessage()
	msg.Type = wire.MsgCancelWrite
	msg.Sender = c.cfg.Username
	msg.Filename = filename
	msg.SentenceIndex = sentenceIdx
	wire.Send(conn, msg)
	wire.Recv(conn)
}
