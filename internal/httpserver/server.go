// Package httpserver owns the HTTP listener lifecycle.
package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/topbestgames/platform/internal/config"
	"github.com/topbestgames/platform/pkg/logger"
)

// Server wraps http.Server with configured timeouts and logged lifecycle.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

// New builds a server around handler using the listener configuration.
func New(cfg config.ServerConfig, log *logger.Logger, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout(),
			WriteTimeout: cfg.WriteTimeout(),
		},
		log: log,
	}
}

// Start serves until Shutdown is called. A normal shutdown returns nil.
func (s *Server) Start() error {
	s.log.WithField("addr", s.srv.Addr).Info("http server listening")
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.srv.Shutdown(ctx)
}
