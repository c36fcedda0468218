package adminapi

import (
	"net/http"

	"github.com/shraw06/docsplusplus/internal/fserrors"
)

// mapFSError maps an fserrors.Code to an HTTP status and message; it is the
// HTTP counterpart of wire.StatusFromError's Code -> wire Status mapping.
func mapFSError(err error) (int, string) {
	switch fserrors.CodeOf(err) {
	case fserrors.CodeNotFound:
		return http.StatusNotFound, err.Error()
	case fserrors.CodeConflict:
		return http.StatusConflict, err.Error()
	case fserrors.CodePermission:
		return http.StatusForbidden, err.Error()
	case fserrors.CodeInvalidArgument:
		return http.StatusBadRequest, err.Error()
	case fserrors.CodeUnavailable:
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
