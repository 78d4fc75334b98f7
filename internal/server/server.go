package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/duncan19760605/GenAI-Kid/internal/config"
)

type Server struct {
	cfg     config.Config
	handler http.Handler
	drain   func()
	logger  *slog.Logger
}

// New wraps handler in a graceful HTTP server. drain runs first on
// shutdown; it exists because live voice connections are hijacked from the
// HTTP server and Shutdown alone would never close them. It may be nil.
func New(cfg config.Config, handler http.Handler, drain func(), logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		drain:   drain,
		logger:  logger,
	}
}

// Run serves until ctx is canceled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    net.JoinHostPort("", s.cfg.HTTPPort),
		Handler: s.handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if s.drain != nil {
			s.drain()
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("graceful shutdown failed", slog.Any("error", err))
		}
	}()

	s.logger.Info("server listening", slog.String("port", s.cfg.HTTPPort))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
