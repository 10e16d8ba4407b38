package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"heresthething/backend/internal/config"
	"heresthething/backend/internal/db"
	"heresthething/backend/internal/integrations"
	"heresthething/backend/internal/logging"
	"heresthething/backend/internal/notion"
	"heresthething/backend/internal/repository"
	syncsvc "heresthething/backend/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("log error: %v", err)
	}
	defer func() {
		_ = cleanup()
	}()
	logger = logger.With("service", "worker")
	slog.SetDefault(logger)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required for the sync worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db error", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	repo := repository.New(pool)

	notionClient := notion.NewClient(notion.Config{
		APIKey:     cfg.Notion.APIKey,
		DatabaseID: cfg.Notion.DatabaseID,
	}, nil, logger)
	if !notionClient.Configured() {
		logger.Error("NOTION_API_KEY and NOTION_DATABASE_ID are required for the sync worker")
		os.Exit(1)
	}

	var uploader syncsvc.ImageUploader
	if cfg.R2.Bucket != "" {
		r2Client, err := integrations.NewR2(cfg.R2)
		if err != nil {
			logger.Error("r2 error", "error", err)
			os.Exit(1)
		}
		uploader = r2Client
	} else {
		logger.Warn("object storage not configured, image uploads disabled")
	}

	syncService := syncsvc.New(notionClient, repo, uploader, filepath.Join(cfg.DataRoot, "img"), logger)

	logger.Info("worker_started", "interval", cfg.SyncInterval.String())
	runOnce(ctx, syncService, logger)

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown", "service", "worker")
			return
		case <-ticker.C:
			runOnce(ctx, syncService, logger)
		}
	}
}

func runOnce(ctx context.Context, syncService *syncsvc.Service, logger *slog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	result, err := syncService.Run(runCtx, syncsvc.Options{})
	if err != nil {
		logger.Error("sync_run_failed", "error", err)
		return
	}
	logger.Info("sync_run_done", "processed", result.Processed, "failed", result.Failed, "uploaded", result.Uploaded)
}
