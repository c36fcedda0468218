package adminapi

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the standard envelope for every admin API reply.
type Response struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// WriteJSON writes data as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"status":"error","error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// WriteJSONOK writes data wrapped in a "ok" status Response.
func WriteJSONOK(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, Response{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Response{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     msg,
	})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, msg string) { writeError(w, http.StatusBadRequest, msg) }

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, msg string) { writeError(w, http.StatusUnauthorized, msg) }

// Forbidden writes a 403 response.
func Forbidden(w http.ResponseWriter, msg string) { writeError(w, http.StatusForbidden, msg) }

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, msg string) { writeError(w, http.StatusNotFound, msg) }

// Conflict writes a 409 response.
func Conflict(w http.ResponseWriter, msg string) { writeError(w, http.StatusConflict, msg) }

// InternalServerError writes a 500 response.
func InternalServerError(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusInternalServerError, msg)
}

// WriteFSError translates an fserrors.Code-carrying error into the matching
// HTTP status and writes it, falling back to 500 for anything unrecognized.
func WriteFSError(w http.ResponseWriter, err error) {
	status, msg := mapFSError(err)
	writeError(w, status, msg)
}
