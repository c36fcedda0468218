// Package wire implements the length-prefixed, pipe-delimited protocol
// spoken between clients, the name server, and storage servers.
//
// Every message is a fixed 15-field record serialized in a fixed order with
// '|' as the field separator; the data field is always last so that it may
// itself contain '|' bytes without corrupting the earlier fields. Each
// message on the socket is preceded by a 4-byte host-endian length prefix
// (not network byte order — both peers in this system run on the same
// architecture family, and the original implementation this protocol is
// modeled on never called htonl/ntohl).
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Field length limits, mirrored from the reference implementation's
// MAX_FILENAME/MAX_USERNAME/MAX_PATH/MAX_BUFFER constants. They bound how
// much of an oversized field is kept, not how much may be sent.
const (
	MaxFilename = 256
	MaxUsername = 64
	MaxPath     = 512
	MaxData     = 8192
)

// Type is the wire message type.
type Type int

const (
	MsgRegSS Type = iota
	MsgRegClient
	MsgCreate
	MsgRead
	MsgWrite
	MsgDelete
	MsgInfo
	MsgView
	MsgListUsers
	MsgAddAccess
	MsgRemAccess
	MsgStream
	MsgExec // accepted on the wire for compatibility; always rejected, see fserrors.ErrInvalidOperation
	MsgUndo
	MsgLockSentence
	MsgUnlockSentence
	MsgAck
	MsgNack
	MsgData
	MsgError
	MsgStop
	MsgCheckLocks
	MsgCreateFolder
	MsgMove
	MsgViewFolder
	MsgCheckpoint
	MsgViewCheckpoint
	MsgRevert
	MsgListCheckpoints
	MsgRequestAccess
	MsgViewRequests
	MsgApproveRequest
	MsgDenyRequest
	MsgSSInfo
	MsgCancelWrite
	MsgCommitWrite
)

var typeNames = map[Type]string{
	MsgRegSS: "REG_SS", MsgRegClient: "REG_CLIENT", MsgCreate: "CREATE",
	MsgRead: "READ", MsgWrite: "WRITE", MsgDelete: "DELETE", MsgInfo: "INFO",
	MsgView: "VIEW", MsgListUsers: "LIST", MsgAddAccess: "ADDACCESS",
	MsgRemAccess: "REMACCESS", MsgStream: "STREAM", MsgExec: "EXEC",
	MsgUndo: "UNDO", MsgLockSentence: "LOCK_SENTENCE", MsgUnlockSentence: "UNLOCK_SENTENCE",
	MsgAck: "ACK", MsgNack: "NACK", MsgData: "DATA", MsgError: "ERROR",
	MsgStop: "STOP", MsgCheckLocks: "CHECK_LOCKS", MsgCreateFolder: "CREATEFOLDER",
	MsgMove: "MOVE", MsgViewFolder: "VIEWFOLDER", MsgCheckpoint: "CHECKPOINT",
	MsgViewCheckpoint: "VIEWCHECKPOINT", MsgRevert: "REVERT",
	MsgListCheckpoints: "LISTCHECKPOINTS", MsgRequestAccess: "REQUESTACCESS",
	MsgViewRequests: "VIEWREQUESTS", MsgApproveRequest: "APPROVEREQUEST",
	MsgDenyRequest: "DENYREQUEST", MsgSSInfo: "SS_INFO",
	MsgCancelWrite: "CANCEL_WRITE", MsgCommitWrite: "COMMIT_WRITE",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// Status is a reply status code.
type Status int

const (
	StatusSuccess             Status = 200
	StatusErrFileNotFound     Status = 404
	StatusErrAccessDenied     Status = 403
	StatusErrSentenceLocked   Status = 423
	StatusErrInvalidIndex     Status = 400
	StatusErrFileExists       Status = 409
	StatusErrSSUnavailable    Status = 503
	StatusErrInvalidOperation Status = 405
	StatusErrServerError      Status = 500
	StatusErrNotOwner         Status = 401
	StatusErrUserNotFound     Status = 406
	StatusErrFileLocked       Status = 424

	// StreamTrailingSpace/StreamNoTrailingSpace repurpose the status field
	// on DATA frames from Stream (see internal/ss.Stream): it is not one of
	// the reply-status codes above but a 1/0 needs_trailing_space flag.
	StreamNoTrailingSpace Status = 0
	StreamTrailingSpace   Status = 1
)

var statusNames = map[Status]string{
	StatusSuccess: "SUCCESS", StatusErrFileNotFound: "ERR_FILE_NOT_FOUND",
	StatusErrAccessDenied: "ERR_ACCESS_DENIED", StatusErrSentenceLocked: "ERR_SENTENCE_LOCKED",
	StatusErrInvalidIndex: "ERR_INVALID_INDEX", StatusErrFileExists: "ERR_FILE_EXISTS",
	StatusErrSSUnavailable: "ERR_SS_UNAVAILABLE", StatusErrInvalidOperation: "ERR_INVALID_OPERATION",
	StatusErrServerError: "ERR_SERVER_ERROR", StatusErrNotOwner: "ERR_NOT_OWNER",
	StatusErrUserNotFound: "ERR_USER_NOT_FOUND", StatusErrFileLocked: "ERR_FILE_LOCKED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS(%d)", int(s))
}

// AccessType is a grant level on a file or folder.
type AccessType int

const (
	AccessNone AccessType = iota
	AccessRead
	AccessWrite
	AccessReadWrite
)

// Message is the wire record. Field order here is the field order on the
// wire; it must not change without changing both Serialize and Deserialize.
type Message struct {
	Type          Type
	Status        Status
	Sender        string
	Filename      string
	Foldername    string
	TargetPath    string
	SentenceIndex int
	WordIndex     int
	SSID          int
	ClientPort    int
	NMPort        int
	Access        AccessType
	TargetUser    string
	CheckpointTag string
	Data          string // always last: may itself contain '|'
}

// NewMessage returns a Message with the same defaults the reference
// implementation's init_message applies: status success, type ack, and -1
// sentinels for fields that have no meaning until set.
func NewMessage() *Message {
	return &Message{
		Status:        StatusSuccess,
		Type:          MsgAck,
		SentenceIndex: -1,
		WordIndex:     -1,
		SSID:          -1,
		Access:        AccessNone,
	}
}

const fieldCount = 15

// Serialize renders m as the pipe-delimited wire form.
func Serialize(m *Message) string {
	fields := make([]string, fieldCount)
	fields[0] = strconv.Itoa(int(m.Type))
	fields[1] = strconv.Itoa(int(m.Status))
	fields[2] = truncate(m.Sender, MaxUsername)
	fields[3] = truncate(m.Filename, MaxFilename)
	fields[4] = truncate(m.Foldername, MaxFilename)
	fields[5] = truncate(m.TargetPath, MaxFilename)
	fields[6] = strconv.Itoa(m.SentenceIndex)
	fields[7] = strconv.Itoa(m.WordIndex)
	fields[8] = strconv.Itoa(m.SSID)
	fields[9] = strconv.Itoa(m.ClientPort)
	fields[10] = strconv.Itoa(m.NMPort)
	fields[11] = strconv.Itoa(int(m.Access))
	fields[12] = truncate(m.TargetUser, MaxUsername)
	fields[13] = truncate(m.CheckpointTag, MaxUsername)
	fields[14] = m.Data // last field: untruncated, may contain '|'
	return strings.Join(fields, "|")
}

// Deserialize parses the wire form produced by Serialize. Fields that are
// malformed or missing are left at NewMessage's defaults, matching the
// reference implementation's tolerance of short/empty records.
func Deserialize(buf string) *Message {
	m := NewMessage()

	field := 0
	rest := buf
	for field < fieldCount {
		var token string
		if field == fieldCount-1 {
			token = rest
			rest = ""
		} else {
			idx := strings.IndexByte(rest, '|')
			if idx < 0 {
				token = rest
				rest = ""
			} else {
				token = rest[:idx]
				rest = rest[idx+1:]
			}
		}

		if token != "" {
			applyField(m, field, token)
		}

		field++
		if rest == "" && field < fieldCount {
			// Ran out of separators before filling every field; remaining
			// fields keep NewMessage's defaults.
			break
		}
	}

	return m
}

func applyField(m *Message, field int, token string) {
	switch field {
	case 0:
		if n, err := strconv.Atoi(token); err == nil {
			m.Type = Type(n)
		}
	case 1:
		if n, err := strconv.Atoi(token); err == nil {
			m.Status = Status(n)
		}
	case 2:
		m.Sender = truncate(token, MaxUsername)
	case 3:
		m.Filename = truncate(token, MaxFilename)
	case 4:
		m.Foldername = truncate(token, MaxFilename)
	case 5:
		m.TargetPath = truncate(token, MaxFilename)
	case 6:
		if n, err := strconv.Atoi(token); err == nil {
			m.SentenceIndex = n
		}
	case 7:
		if n, err := strconv.Atoi(token); err == nil {
			m.WordIndex = n
		}
	case 8:
		if n, err := strconv.Atoi(token); err == nil {
			m.SSID = n
		}
	case 9:
		if n, err := strconv.Atoi(token); err == nil {
			m.ClientPort = n
		}
	case 10:
		if n, err := strconv.Atoi(token); err == nil {
			m.NMPort = n
		}
	case 11:
		if n, err := strconv.Atoi(token); err == nil {
			m.Access = AccessType(n)
		}
	case 12:
		m.TargetUser = truncate(token, MaxUsername)
	case 13:
		m.CheckpointTag = truncate(token, MaxUsername)
	case 14:
		m.Data = truncate(token, MaxData)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
