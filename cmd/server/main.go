package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/jerry/internal/api"
	"github.com/dgallion1/jerry/internal/config"
	"github.com/dgallion1/jerry/internal/pathstore"
	"github.com/dgallion1/jerry/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	var ps *pathstore.Client
	if cfg.PathstoreEnabled() {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
	} else {
		log.Info("pathstore not configured, highlight persistence disabled")
	}

	// Initialize document sessions.
	store := session.NewStore(cfg.DocumentTTL, cfg.MaxDocuments)
	go cleanupLoop(ctx, store, cfg.DocumentTTL/4, log)

	// Initialize HTTP server.
	srv := api.NewServer(store, ps, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if ps != nil {
			ps.Close()
		}
	}()

	log.Info("starting jerry", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// cleanupLoop evicts idle documents until ctx is done.
func cleanupLoop(ctx context.Context, store *session.Store, every time.Duration, log *slog.Logger) {
	if every < time.Second {
		every = time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Cleanup(); n > 0 {
				log.Info("evicted idle documents", "count", n)
			}
		}
	}
}
