// memoryboxd serves the MemoryBox sync engine over HTTP: profile, family
// tree, memories, journal, journey progress, and time capsule endpoints
// backed by the remote store with a local cache for offline fallback.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"memorybox-backend/internal/config"
	"memorybox-backend/internal/di"
)

// newServer builds the HTTP server around the engine's router. The write
// timeout tracks the per-request budget with headroom left for the
// timeout middleware to write its answer.
func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func main() {
	container, err := di.NewContainer()
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	srv := newServer(container.Config, container.Router)

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", container.Config.ServerAddress),
			zap.String("environment", container.Config.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}
	if err := container.Shutdown(); err != nil {
		container.Logger.Error("Engine shutdown error", zap.Error(err))
	}

	log.Println("Server stopped")
}
