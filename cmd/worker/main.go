// The worker binary runs the background recovery loops over the shared
// transaction store: the retry sweep and the stuck-transaction cleanup.
// Request-time processing is embedded by the API service, which shares this
// wiring through the initializer.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	log "github.com/charmbracelet/log"

	"github.com/obiora/bankcore/infra/initializer"
	"github.com/obiora/bankcore/pkg/config"
	"github.com/obiora/bankcore/pkg/sweeper"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger

	sw := sweeper.New(deps.Repo, deps.Ledger, deps.EventBus, sweeper.Config{
		RetryInterval:    cfg.Sweeper.RetryInterval,
		StuckInterval:    cfg.Sweeper.StuckInterval,
		StuckAfter:       cfg.Sweeper.StuckAfter,
		RetriesPerSecond: cfg.Sweeper.RetriesPerSecond,
		BatchSize:        cfg.Sweeper.BatchSize,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting recovery worker", "env", cfg.Env)
	sw.Start(ctx)

	logger.Info("shutdown complete")
	return nil
}
