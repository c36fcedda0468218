package wire

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	t.Run("PreservesAllFields", func(t *testing.T) {
		m := &Message{
			Type:          MsgWrite,
			Status:        StatusSuccess,
			Sender:        "alice",
			Filename:      "report.txt",
			Foldername:    "docs",
			TargetPath:    "docs/archive",
			SentenceIndex: 3,
			WordIndex:     -1,
			SSID:          2,
			ClientPort:    5001,
			NMPort:        8080,
			Access:        AccessReadWrite,
			TargetUser:    "bob",
			CheckpointTag: "v1",
			Data:          "hello world. second sentence!",
		}

		wire := Serialize(m)
		got := Deserialize(wire)

		assert.Equal(t, m, got)
	})

	t.Run("DataFieldMayContainPipes", func(t *testing.T) {
		m := NewMessage()
		m.Type = MsgData
		m.Data = "a|b|c|d"

		got := Deserialize(Serialize(m))
		assert.Equal(t, "a|b|c|d", got.Data)
	})

	t.Run("EmptyFieldsKeepDefaults", func(t *testing.T) {
		m := NewMessage()
		m.Type = MsgWrite
		m.Sender = ""
		m.SentenceIndex = -1

		got := Deserialize(Serialize(m))
		assert.Equal(t, MsgWrite, got.Type)
		assert.Equal(t, "", got.Sender)
		assert.Equal(t, -1, got.SentenceIndex)
	})

	t.Run("ShortRecordKeepsTrailingDefaults", func(t *testing.T) {
		raw := "16|200|alice"
		got := Deserialize(raw)
		assert.Equal(t, MsgAck, got.Type)
		assert.Equal(t, "alice", got.Sender)
		assert.Equal(t, -1, got.SSID)
	})
}

func TestNewMessageDefaults(t *testing.T) {
	m := NewMessage()
	assert.Equal(t, StatusSuccess, m.Status)
	assert.Equal(t, MsgAck, m.Type)
	assert.Equal(t, -1, m.SentenceIndex)
	assert.Equal(t, -1, m.WordIndex)
	assert.Equal(t, -1, m.SSID)
	assert.Equal(t, AccessNone, m.Access)
}

func TestTruncatesOversizedFields(t *testing.T) {
	long := make([]byte, MaxUsername+50)
	for i := range long {
		long[i] = 'x'
	}
	m := NewMessage()
	m.Sender = string(long)

	got := Deserialize(Serialize(m))
	assert.Len(t, got.Sender, MaxUsername)
}

func TestSendRecvOverLoopback(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sent := &Message{
		Type:          MsgLockSentence,
		Status:        StatusSuccess,
		Sender:        "alice",
		Filename:      "report.txt",
		SentenceIndex: 2,
		WordIndex:     -1,
		SSID:          1,
	}

	done := make(chan error, 1)
	go func() {
		done <- Send(client, sent)
	}()

	got, err := Recv(server)
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.Equal(t, sent.Type, got.Type)
	assert.Equal(t, sent.Sender, got.Sender)
	assert.Equal(t, sent.Filename, got.Filename)
	assert.Equal(t, sent.SentenceIndex, got.SentenceIndex)
}

func TestRecvRejectsOversizedFrame(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		var lenBuf [4]byte
		nativeOrder.PutUint32(lenBuf[:], MaxFrameLen+1)
		_, _ = client.Write(lenBuf[:])
	}()

	_, err := Recv(server)
	require.Error(t, err)
}
