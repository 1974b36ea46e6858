package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mindwell/backend/internal/app"
	"mindwell/backend/internal/config"
	"mindwell/backend/internal/event"
	"mindwell/backend/internal/logger"
)

func main() {
	// Structured logs with correlation IDs propagated from request context.
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()

	// The concrete producer is only assigned when events are enabled so the
	// emitter sees a true nil interface otherwise.
	var producer event.Publisher
	if deps.NSQProducer != nil {
		producer = deps.NSQProducer
		defer deps.NSQProducer.Stop()
	}

	a, err := app.New(cfg, deps.DB, deps.Backend, producer)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	a.InitializeKnowledgeBase(ctx)

	if err := a.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
