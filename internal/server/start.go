package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// StartRealtime launches the bridge loop and the presence fan-out. It is
// separate from Start so tests can run the realtime core against an
// httptest server.
func (s *Server) StartRealtime(ctx context.Context) error {
	go s.bridge.Run(ctx)
	return s.bridge.SubscribePresence(ctx, s.bus)
}

// Start runs the bridge, the presence fan-out and the HTTP server, then
// blocks until an interrupt or terminate signal triggers a graceful shutdown.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.StartRealtime(ctx); err != nil {
		slog.Error("Failed to start realtime core", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := s.E.Start(s.Cfg.Addr); err != nil && err != http.ErrServerClosed {
			s.E.Logger.Fatalf("shutting down the server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := s.bus.Close(); err != nil {
		slog.Error("Failed to close message bus", "error", err)
	}
	s.DB.Close(shutdownCtx)
	if err := s.E.Shutdown(shutdownCtx); err != nil {
		s.E.Logger.Fatal(err)
	}
}
