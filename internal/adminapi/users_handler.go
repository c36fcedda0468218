package adminapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/nm"
)

// UsersHandler exposes read-only views of registered client sessions.
type UsersHandler struct {
	registry *nm.UserRegistry
}

// NewUsersHandler returns a UsersHandler backed by registry.
func NewUsersHandler(registry *nm.UserRegistry) *UsersHandler {
	return &UsersHandler{registry: registry}
}

// userView matches pkg/apiclient.User field for field.
type userView struct {
	Username string `json:"username"`
	ClientIP string `json:"client_ip"`
	Active   bool   `json:"active"`
}

func newUserView(s *nm.UserSession) userView {
	return userView{Username: s.Username, ClientIP: s.ClientIP, Active: s.Active}
}

// List returns every session the registry has ever seen, active or not.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions := h.registry.All()
	views := make([]userView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, newUserView(s))
	}
	WriteJSONOK(w, views)
}

// Get returns a single user's session by username.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	s, ok := h.registry.Get(username)
	if !ok {
		WriteFSError(w, fserrors.New(fserrors.CodeNotFound, "user not registered"))
		return
	}
	WriteJSONOK(w, newUserView(s))
}
