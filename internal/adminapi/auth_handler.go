package adminapi

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/shraw06/docsplusplus/pkg/config"
)

// AuthHandler authenticates the single configured admin account and issues
// JWT token pairs for it. There is no user store: the credential lives in
// config.AdminConfig.
type AuthHandler struct {
	admin      config.AdminConfig
	jwtService *JWTService
}

// NewAuthHandler returns an AuthHandler for the given admin credential and
// JWT service.
func NewAuthHandler(admin config.AdminConfig, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{admin: admin, jwtService: jwtService}
}

// LoginRequest is the POST /api/v1/auth/login body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the POST /api/v1/auth/refresh body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login validates credentials against the configured admin account and
// returns a fresh access/refresh token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Username == "" || req.Username != h.admin.Username {
		Unauthorized(w, "invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.admin.PasswordHash), []byte(req.Password)); err != nil {
		Unauthorized(w, "invalid username or password")
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(h.admin.Username)
	if err != nil {
		InternalServerError(w, "failed to issue token")
		return
	}
	WriteJSON(w, http.StatusOK, pair)
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		Unauthorized(w, "invalid or expired refresh token")
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(claims.Username)
	if err != nil {
		InternalServerError(w, "failed to issue token")
		return
	}
	WriteJSON(w, http.StatusOK, pair)
}

// Logout is a no-op: admin tokens are stateless JWTs with no server-side
// session to invalidate. dctl drops its stored token locally.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	WriteJSONOK(w, nil)
}

// Me returns the identity carried by the caller's access token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "missing claims")
		return
	}
	WriteJSONOK(w, map[string]string{"username": claims.Username})
}
