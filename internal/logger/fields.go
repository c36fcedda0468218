package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across NM, SS, and client.
// Use these keys consistently so log aggregation/querying can filter on them
// regardless of which component emitted the line.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Wire protocol
	// ========================================================================
	KeyProcedure = "procedure"  // Message type name: WRITE, LOCK_SENTENCE, CHECKPOINT, ...
	KeyStatus    = "status"     // Reply status code
	KeyStatusMsg = "status_msg" // Human-readable status description

	// ========================================================================
	// File / sentence addressing
	// ========================================================================
	KeyFilename      = "filename"
	KeyFoldername    = "foldername"
	KeyTargetPath    = "target_path"
	KeySentenceIndex = "sentence_index"
	KeyWordIndex     = "word_index"
	KeySentenceCount = "sentence_count"
	KeyCheckpointTag = "checkpoint_tag"

	// ========================================================================
	// Actors
	// ========================================================================
	KeyUsername   = "username"
	KeyTargetUser = "target_user"
	KeyClientIP   = "client_ip"
	KeyClientPort = "client_port"
	KeySSID       = "ss_id"
	KeyNMPort     = "nm_port"

	// ========================================================================
	// Write pipeline
	// ========================================================================
	KeyLockTime        = "lock_time"
	KeyOriginalCount   = "original_sentence_count"
	KeyAdjustedIndex   = "adjusted_index"
	KeyShift           = "shift"
	KeyExpansion       = "expansion"
	KeyQueueDepth      = "queue_depth"
	KeyTempPath        = "temp_path"
	KeyProcessedCommit = "processed_commits"

	// ========================================================================
	// Cache / index
	// ========================================================================
	KeyCacheHit      = "cache_hit"
	KeyCacheSize     = "cache_size"
	KeyCacheCapacity = "cache_capacity"
	KeyEvicted       = "evicted"

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeyAttempt    = "attempt"
	KeyMaxRetries = "max_retries"
)

// ============================================================================
// Field constructors for type safety
// These functions provide type-safe construction of slog.Attr values.
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Procedure returns a slog.Attr for the wire message type name.
func Procedure(name string) slog.Attr {
	return slog.String(KeyProcedure, name)
}

// Status returns a slog.Attr for a reply status code.
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// StatusMsg returns a slog.Attr for a human-readable status message.
func StatusMsg(msg string) slog.Attr {
	return slog.String(KeyStatusMsg, msg)
}

// Filename returns a slog.Attr for the file a request targets.
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// Foldername returns a slog.Attr for the folder a request targets.
func Foldername(name string) slog.Attr {
	return slog.String(KeyFoldername, name)
}

// TargetPath returns a slog.Attr for a rename/move destination path.
func TargetPath(p string) slog.Attr {
	return slog.String(KeyTargetPath, p)
}

// SentenceIndex returns a slog.Attr for a zero-based sentence position.
func SentenceIndex(idx int) slog.Attr {
	return slog.Int(KeySentenceIndex, idx)
}

// WordIndex returns a slog.Attr for a 1-based word position within a sentence.
func WordIndex(idx int) slog.Attr {
	return slog.Int(KeyWordIndex, idx)
}

// SentenceCount returns a slog.Attr for a sentence count.
func SentenceCount(n int) slog.Attr {
	return slog.Int(KeySentenceCount, n)
}

// CheckpointTag returns a slog.Attr for a named checkpoint.
func CheckpointTag(tag string) slog.Attr {
	return slog.String(KeyCheckpointTag, tag)
}

// Username returns a slog.Attr for a registered username.
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// TargetUser returns a slog.Attr for the user an access request concerns.
func TargetUser(name string) slog.Attr {
	return slog.String(KeyTargetUser, name)
}

// ClientIP returns a slog.Attr for a client IP address.
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// ClientPort returns a slog.Attr for a client source port.
func ClientPort(port int) slog.Attr {
	return slog.Int(KeyClientPort, port)
}

// SSID returns a slog.Attr for the storage server a request is bound for.
func SSID(id int32) slog.Attr {
	return slog.Int(KeySSID, int(id))
}

// NMPort returns a slog.Attr for a name server port.
func NMPort(port int) slog.Attr {
	return slog.Int(KeyNMPort, port)
}

// LockTime returns a slog.Attr for the instant a sentence lock was acquired.
func LockTime(unixNano int64) slog.Attr {
	return slog.Int64(KeyLockTime, unixNano)
}

// OriginalCount returns a slog.Attr for the sentence count a write session staged against.
func OriginalCount(n int) slog.Attr {
	return slog.Int(KeyOriginalCount, n)
}

// AdjustedIndex returns a slog.Attr for a rebase-adjusted sentence index.
func AdjustedIndex(idx int) slog.Attr {
	return slog.Int(KeyAdjustedIndex, idx)
}

// Shift returns a slog.Attr for the rebase shift applied to a queued commit.
func Shift(n int) slog.Attr {
	return slog.Int(KeyShift, n)
}

// Expansion returns a slog.Attr for the net sentence-count growth a commit introduces.
func Expansion(n int) slog.Attr {
	return slog.Int(KeyExpansion, n)
}

// QueueDepth returns a slog.Attr for the number of pending commits for a file.
func QueueDepth(n int) slog.Attr {
	return slog.Int(KeyQueueDepth, n)
}

// TempPath returns a slog.Attr for a staged write-session temp file path.
func TempPath(p string) slog.Attr {
	return slog.String(KeyTempPath, p)
}

// ProcessedCommits returns a slog.Attr for the number of commits applied in one pass.
func ProcessedCommits(n int) slog.Attr {
	return slog.Int(KeyProcessedCommit, n)
}

// CacheHit returns a slog.Attr for a cache hit indicator.
func CacheHit(hit bool) slog.Attr {
	return slog.Bool(KeyCacheHit, hit)
}

// CacheSize returns a slog.Attr for the current cache size.
func CacheSize(n int) slog.Attr {
	return slog.Int(KeyCacheSize, n)
}

// CacheCapacity returns a slog.Attr for the maximum cache capacity.
func CacheCapacity(n int) slog.Attr {
	return slog.Int(KeyCacheCapacity, n)
}

// Evicted returns a slog.Attr for the number of entries evicted.
func Evicted(n int) slog.Attr {
	return slog.Int(KeyEvicted, n)
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error, or a zero Attr for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Attempt returns a slog.Attr for a retry attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for the maximum retry attempts allowed.
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}
