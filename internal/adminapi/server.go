package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shraw06/docsplusplus/internal/logger"
	"github.com/shraw06/docsplusplus/internal/nm"
	"github.com/shraw06/docsplusplus/pkg/config"
)

// Server is the admin API's HTTP listener, bound to its own port separate
// from the NM's three wire-protocol ports.
type Server struct {
	server       *http.Server
	jwtService   *JWTService
	config       config.AdminConfig
	shutdownOnce sync.Once
}

// NewServer creates a new admin API server in a stopped state. Call Start
// to begin serving requests.
func NewServer(cfg config.AdminConfig, nmServer *nm.Server) (*Server, error) {
	jwtConfig := JWTConfig{
		Secret: cfg.JWTSecret,
		Issuer: "docsplusplus-admin",
	}
	jwtService, err := NewJWTService(jwtConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin JWT service: %w", err)
	}

	router := NewRouter(nmServer, cfg, jwtService)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		server:     httpServer,
		jwtService: jwtService,
		config:     cfg,
	}, nil
}

// Start listens on the configured admin port and blocks until ctx is
// cancelled, at which point it initiates graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("admin API server listening", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("admin API server shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("admin API server failed: %w", err)
	}
}

// Stop gracefully shuts down the server. Safe to call multiple times and
// concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("admin API server shutdown error: %w", err)
			logger.Error("admin API server shutdown error", "error", err)
		} else {
			logger.Info("admin API server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}
