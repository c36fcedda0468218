package wire

import "github.com/shraw06/docsplusplus/internal/fserrors"

// StatusFromError maps an fserrors.Code to the reply Status a handler should
// set on an outgoing Message, mirroring the Code -> HTTP translation the
// admin API uses on its side of the process.
func StatusFromError(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	switch fserrors.CodeOf(err) {
	case fserrors.CodeNotFound:
		return StatusErrFileNotFound
	case fserrors.CodePermission:
		return StatusErrAccessDenied
	case fserrors.CodeConflict:
		return StatusErrFileExists
	case fserrors.CodeInvalidArgument:
		return StatusErrInvalidIndex
	case fserrors.CodeUnavailable:
		return StatusErrSSUnavailable
	case fserrors.CodeProtocol:
		return StatusErrInvalidOperation
	default:
		return StatusErrServerError
	}
}
