package adminapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shraw06/docsplusplus/internal/nm"
)

// RequestsHandler exposes read-only views of pending access requests. It
// never approves or denies a request — that decision stays exclusive to the
// NM/client wire protocol's approve_request/deny_request messages.
type RequestsHandler struct {
	queue *nm.AccessRequestQueue
}

// NewRequestsHandler returns a RequestsHandler backed by queue.
func NewRequestsHandler(queue *nm.AccessRequestQueue) *RequestsHandler {
	return &RequestsHandler{queue: queue}
}

// requestView matches pkg/apiclient.AccessRequest field for field.
type requestView struct {
	ID        int    `json:"id"`
	File      string `json:"file"`
	User      string `json:"user"`
	Access    string `json:"access"`
	Satisfied bool   `json:"satisfied"`
}

func newRequestView(req *nm.AccessRequest) requestView {
	return requestView{
		ID:        req.ID,
		File:      req.File,
		User:      req.User,
		Access:    accessTypeString(req.Access),
		Satisfied: req.Satisfied,
	}
}

// List returns every pending access request, regardless of file owner.
//
// This intentionally bypasses the owner-scoped ForOwner filter the NM's
// wire handler uses for approve_request listings: the admin API shows the
// whole queue, not one user's slice of it.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	reqs := h.queue.ForOwner(func(string) bool { return true })
	views := make([]requestView, 0, len(reqs))
	for _, req := range reqs {
		views = append(views, newRequestView(req))
	}
	WriteJSONOK(w, views)
}

// Get returns a single pending access request by id.
func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		BadRequest(w, "invalid access request id")
		return
	}

	req, err := h.queue.Peek(id)
	if err != nil {
		WriteFSError(w, err)
		return
	}
	WriteJSONOK(w, newRequestView(req))
}
