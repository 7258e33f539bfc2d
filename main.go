package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielhkuo/quickly-tally/cliparse"
	"github.com/danielhkuo/quickly-tally/events"
	"github.com/danielhkuo/quickly-tally/hub"
	"github.com/danielhkuo/quickly-tally/middleware"
	"github.com/danielhkuo/quickly-tally/router"
	"github.com/danielhkuo/quickly-tally/status"
	"github.com/danielhkuo/quickly-tally/tally"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Logs go to stdout
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, nil)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, publisher, err := setup(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "store", cfg.StoreType, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	defer publisher.Close()

	// Live update hub
	updates := hub.New()
	go updates.Run(ctx)

	// Create router
	mux := router.NewRouter(router.Deps{
		Store:     store,
		Picker:    status.NewPicker(cfg.LegendRate, nil),
		Publisher: publisher,
		Hub:       updates,
	})

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    cfg.Addr(),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		defer close(drained)

		// Wait for Ctrl-C signal
		<-ctrlc
		slog.Info("Shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
		cancel()
	}()

	// Start server
	slog.Info("Listening", "addr", cfg.Addr())
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		publisher.Close()
		store.Close()
		os.Exit(1)
	}

	// In-flight votes finish before the store closes
	<-drained
	slog.Info("Server closed")
}

// setup opens the tally store and the vote event publisher. On error nothing
// is left open.
func setup(ctx context.Context, cfg cliparse.Config) (tally.Store, events.Publisher, error) {
	store, err := tally.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("store setup failed: %w", err)
	}
	slog.Info("Tally store ready", "store", cfg.StoreType)

	// Vote events are optional
	if cfg.AMQPURL == "" {
		return store, events.NopPublisher{}, nil
	}
	publisher, err := events.Connect(ctx, cfg.AMQPURL, cfg.AMQPQueue)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("vote events setup failed: %w", err)
	}
	return store, publisher, nil
}
