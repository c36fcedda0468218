package adminapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shraw06/docsplusplus/internal/logger"
	"github.com/shraw06/docsplusplus/internal/nm"
	"github.com/shraw06/docsplusplus/pkg/config"
)

// NewRouter builds the chi router for the admin API: authentication plus
// read-only views of everything the name server tracks. No route here can
// reach a LOCK_SENTENCE, WRITE, COMMIT_WRITE, approve_request, or any other
// state-mutating wire operation.
func NewRouter(nmServer *nm.Server, admin config.AdminConfig, jwtService *JWTService) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSONOK(w, map[string]string{"status": "healthy"})
	})

	authHandler := NewAuthHandler(admin, jwtService)
	ssHandler := NewSSHandler(nmServer.SS)
	usersHandler := NewUsersHandler(nmServer.Users)
	filesHandler := NewFilesHandler(nmServer.Files)
	requestsHandler := NewRequestsHandler(nmServer.Requests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(jwtService))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(jwtService))

			r.Route("/storage-servers", func(r chi.Router) {
				r.Get("/", ssHandler.List)
				r.Get("/{id}", ssHandler.Get)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", usersHandler.List)
				r.Get("/{username}", usersHandler.Get)
			})

			r.Route("/files", func(r chi.Router) {
				r.Get("/", filesHandler.List)
				r.Get("/*", filesHandler.Get)
			})

			r.Route("/access-requests", func(r chi.Router) {
				r.Get("/", requestsHandler.List)
				r.Get("/{id}", requestsHandler.Get)
			})
		})
	})

	return r
}

// requestLogger logs each request through the shared structured logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("admin api request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}
