package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cover/m2sync/pkg/logger"
)

const readHeaderTimeout = 10 * time.Second

// Server runs the HTTP ingress.
type Server struct {
	srv    *http.Server
	logger logger.Logger
}

func New(port string, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: log,
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Infof(context.Background(), "[Server] listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infof(ctx, "[Server] shutting down")
	return s.srv.Shutdown(ctx)
}
