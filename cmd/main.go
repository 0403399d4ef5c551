package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dappstate/internal/configuration"
	"dappstate/internal/logging"
	"dappstate/internal/poll"
)

func main() {
	configDir := flag.String("config-dir", configuration.DefaultDir, "directory holding application.yml")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	cfg, err := configuration.Load(*configDir)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return
	}

	logging.Init(cfg.Application.LogLevel)
	slog.Info("Starting dappstate...")

	var fetcher poll.Fetcher
	if cfg.Poll.Source != "" {
		fetcher = &fileFetcher{path: cfg.Poll.Source}
	}

	svcs, err := NewServices(cfg, fetcher)
	if err != nil {
		slog.Error("Failed to build services", "error", err)
		return
	}

	svcs.Metrics.Start()
	if svcs.Poller != nil {
		svcs.Poller.Start(ctx)
	}

	slog.Info("dappstate ready",
		"records", svcs.Records.Len(),
		"journal", cfg.Journal.Dir,
		"metrics", cfg.Metrics.Address,
	)
	<-ctx.Done()

	slog.Info("Shutting down...")
	if svcs.Poller != nil {
		svcs.Poller.Stop()
	}
	svcs.Queue.Close()
	svcs.Metrics.Stop()
	if svcs.Journal != nil {
		if err := svcs.Journal.Close(); err != nil {
			slog.Error("journal close error", "error", err)
		}
	}
}
