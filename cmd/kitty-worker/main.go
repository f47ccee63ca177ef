package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"kitty/internal/backend"
	"kitty/internal/cache"
	"kitty/internal/cli"
	"kitty/internal/config"
	"kitty/internal/core"
	"kitty/internal/log"
	"kitty/internal/services"
	"kitty/internal/worker"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting kitty-worker")

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// The worker exists to consume ledger events.
	bcfg.RequireEvents = true

	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), bcfg)
	if err != nil {
		return err
	}

	exporter, err := backend.CreateExporter(context.Background(), cfg)
	if err != nil {
		res.Cleanup()
		return err
	}
	if exporter == nil {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	reportCache := cache.NewLRUCache[core.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(cfg.ReportCacheTTL)

	reports := services.NewReportService(res.Store,
		services.WithLowBalanceRatio(cfg.LowBalanceRatio),
		services.WithCache(reportCache))
	w := worker.NewReportWorker(reports, exporter, cfg.CheckInterval)

	parent, stop := context.WithCancel(context.Background())
	defer stop()

	ctx, done := cli.GracefulShutdown(parent, logger, 30*time.Second, func(ctx context.Context) {
		logger.Info("Shutting down worker...")
		if err := w.Stop(ctx); err != nil {
			logger.Warn("Report worker did not stop cleanly", "error", err)
		}
		cacheManager.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Cleanup failed", "error", err)
		}
	})

	if err := w.Start(ctx); err != nil {
		stop()
		cli.WaitForShutdown(ctx, done)
		return err
	}

	consumeErr := make(chan error, 1)
	go func() {
		err := res.Events.ConsumeLedgerChanged(ctx, w.HandleLedgerChanged)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			consumeErr <- err
		}
		stop()
	}()

	cli.WaitForShutdown(ctx, done)
	select {
	case err := <-consumeErr:
		return err
	default:
		return nil
	}
}
