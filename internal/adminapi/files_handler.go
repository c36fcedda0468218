package adminapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shraw06/docsplusplus/internal/nm"
)

// FilesHandler exposes read-only views of the file metadata index.
type FilesHandler struct {
	index *nm.FileIndex
}

// NewFilesHandler returns a FilesHandler backed by index.
func NewFilesHandler(index *nm.FileIndex) *FilesHandler {
	return &FilesHandler{index: index}
}

// fileView matches pkg/apiclient.File field for field, with the ACL grant
// levels pre-rendered to strings.
type fileView struct {
	Name           string            `json:"name"`
	Owner          string            `json:"owner"`
	StorageServer  int               `json:"storage_server_id"`
	ACL            map[string]string `json:"acl"`
	Created        string            `json:"created"`
	Accessed       string            `json:"accessed"`
	LastAccessedBy string            `json:"last_accessed_by"`
}

func newFileView(m *nm.FileMeta) fileView {
	acl := make(map[string]string, len(m.ACL))
	for user, access := range m.ACL {
		acl[user] = accessTypeString(access)
	}
	return fileView{
		Name:           m.Name,
		Owner:          m.Owner,
		StorageServer:  m.SSID,
		ACL:            acl,
		Created:        m.Created.Format(time.RFC3339),
		Accessed:       m.Accessed.Format(time.RFC3339),
		LastAccessedBy: m.LastAccessedBy,
	}
}

// List returns every file whose name has the "prefix" query parameter as a
// prefix (or every file, if absent).
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	metas, err := h.index.List(prefix)
	if err != nil {
		WriteFSError(w, err)
		return
	}
	views := make([]fileView, 0, len(metas))
	for _, m := range metas {
		views = append(views, newFileView(m))
	}
	WriteJSONOK(w, views)
}

// Get returns a single file's metadata by name.
func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	meta, err := h.index.Get(name)
	if err != nil {
		WriteFSError(w, err)
		return
	}
	WriteJSONOK(w, newFileView(meta))
}
