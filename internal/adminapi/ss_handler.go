package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/nm"
)

// SSHandler exposes read-only views of the storage server registry.
type SSHandler struct {
	registry *nm.SSRegistry
}

// NewSSHandler returns an SSHandler backed by registry.
func NewSSHandler(registry *nm.SSRegistry) *SSHandler {
	return &SSHandler{registry: registry}
}

// ssView is the JSON shape for one storage server, matching
// pkg/apiclient.StorageServer field for field.
type ssView struct {
	ID            int    `json:"id"`
	IP            string `json:"ip"`
	NMPort        int    `json:"nm_port"`
	ClientPort    int    `json:"client_port"`
	FileCount     int    `json:"file_count"`
	Active        bool   `json:"active"`
	LastHeartbeat string `json:"last_heartbeat"`
	RegisteredAt  string `json:"registered_at"`
}

func newSSView(rec *nm.SSRecord) ssView {
	return ssView{
		ID:            rec.ID,
		IP:            rec.IP,
		NMPort:        rec.NMPort,
		ClientPort:    rec.ClientPort,
		FileCount:     len(rec.Files),
		Active:        rec.Active,
		LastHeartbeat: rec.LastHeartbeat.Format(time.RFC3339),
		RegisteredAt:  rec.RegisteredAt.Format(time.RFC3339),
	}
}

// List returns every registered storage server, active or not.
func (h *SSHandler) List(w http.ResponseWriter, r *http.Request) {
	recs := h.registry.All()
	views := make([]ssView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, newSSView(rec))
	}
	WriteJSONOK(w, views)
}

// Get returns a single storage server by id.
func (h *SSHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		BadRequest(w, "invalid storage server id")
		return
	}

	rec, ok := h.registry.Get(id)
	if !ok {
		WriteFSError(w, fserrors.New(fserrors.CodeNotFound, "storage server not found"))
		return
	}
	WriteJSONOK(w, newSSView(rec))
}
