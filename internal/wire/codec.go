package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"unsafe"
)

// MaxFrameLen bounds the length a peer may claim for an incoming frame
// (mirrors the reference implementation's MAX_BUFFER * 2 sanity check).
const MaxFrameLen = MaxData * 2

// nativeOrder is the host's byte order. The wire length prefix is written
// and read in this order rather than network byte order: both peers in this
// system are assumed to run on the same architecture family, matching the
// reference implementation's raw `send`/`recv` of a C `int` with no
// htonl/ntohl conversion.
var nativeOrder = func() binary.ByteOrder {
	var x uint16 = 1
	if *(*byte)(unsafe.Pointer(&x)) == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}()

// Send writes m to conn as a 4-byte host-endian length prefix followed by
// its pipe-delimited serialization.
func Send(conn net.Conn, m *Message) error {
	payload := []byte(Serialize(m))

	var lenBuf [4]byte
	nativeOrder.PutUint32(lenBuf[:], uint32(len(payload)))

	if _, err := conn.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// Recv reads one length-prefixed frame from conn and deserializes it.
func Recv(conn net.Conn) (*Message, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("read length prefix: %w", err)
	}

	n := nativeOrder.Uint32(lenBuf[:])
	if n == 0 || n > MaxFrameLen {
		return nil, fmt.Errorf("invalid frame length %d", n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	return Deserialize(string(payload)), nil
}
