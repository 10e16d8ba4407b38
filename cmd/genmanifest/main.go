package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"heresthething/backend/internal/config"
	"heresthething/backend/internal/integrations"
	"heresthething/backend/internal/logging"
	"heresthething/backend/internal/models"
	"heresthething/backend/internal/textutil"
)

// genmanifest rebuilds the local card manifest from the images on disk, so
// the API can serve cards even when the remote manifest and the content
// database are both unreachable. When object storage is configured the
// manifest is also pushed there, refreshing the remote tier.
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
	logger = logger.With("service", "genmanifest")
	slog.SetDefault(logger)

	imagesDir := filepath.Join(cfg.DataRoot, "img")
	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		logger.Error("read images dir", "dir", imagesDir, "error", err)
		os.Exit(1)
	}

	var cards []models.AdviceCard
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".png") {
			continue
		}
		slug := strings.TrimSuffix(name, filepath.Ext(name))
		if slug == "" {
			continue
		}
		cards = append(cards, models.AdviceCard{
			ID:       slug,
			Slug:     slug,
			Title:    textutil.FormatDisplayTitle("", slug),
			ImageURL: "/img/" + name,
		})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Slug < cards[j].Slug })

	out, err := json.MarshalIndent(cards, "", "\t")
	if err != nil {
		logger.Error("marshal manifest", "error", err)
		os.Exit(1)
	}
	out = append(out, '\n')

	dataDir := filepath.Join(cfg.DataRoot, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logger.Error("create data dir", "error", err)
		os.Exit(1)
	}
	target := filepath.Join(dataDir, "local-cards.json")
	if err := os.WriteFile(target, out, 0o644); err != nil {
		logger.Error("write manifest", "path", target, "error", err)
		os.Exit(1)
	}
	logger.Info("manifest_written", "path", target, "cards", len(cards))

	if cfg.R2.Bucket == "" {
		return
	}
	r2Client, err := integrations.NewR2(cfg.R2)
	if err != nil {
		logger.Error("r2 error", "error", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	publicURL, err := r2Client.UploadManifest(ctx, cards)
	if err != nil {
		logger.Error("upload manifest", "error", err)
		os.Exit(1)
	}
	logger.Info("manifest_uploaded", "url", publicURL)
}
