package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"heresthething/backend/internal/models"
)

// NotionLister is the content-database listing the sync runs from.
type NotionLister interface {
	Configured() bool
	ListEntries(ctx context.Context) ([]models.NotionEntry, error)
}

// Store persists synced advice items.
type Store interface {
	UpsertAdviceItem(ctx context.Context, item models.AdviceItem) (models.AdviceItem, error)
	ListActiveAdviceItems(ctx context.Context) ([]models.AdviceItem, error)
	SetAdviceItemActive(ctx context.Context, notionID string, active bool) error
}

// ImageUploader pushes local card images to object storage.
type ImageUploader interface {
	UploadImage(ctx context.Context, slug string, body io.Reader, size int64) (string, error)
}

// Options bound one sync run.
type Options struct {
	DryRun bool
	Limit  int
}

// Result summarizes one sync run.
type Result struct {
	Processed   int  `json:"processed"`
	Failed      int  `json:"failed"`
	Uploaded    int  `json:"uploaded"`
	Deactivated int  `json:"deactivated"`
	DryRun      bool `json:"dryRun,omitempty"`
}

// Service copies the content-database listing into the relational store,
// opportunistically uploading locally present card images to object storage.
type Service struct {
	notion    NotionLister
	store     Store
	uploader  ImageUploader
	imagesDir string
	logger    *slog.Logger
}

// New creates service. The uploader may be nil when object storage is not
// configured; image uploads are then skipped.
func New(notionClient NotionLister, store Store, uploader ImageUploader, imagesDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		notion:    notionClient,
		store:     store,
		uploader:  uploader,
		imagesDir: imagesDir,
		logger:    logger,
	}
}

// Run performs one full sync pass. Per-item failures are logged and counted,
// never fatal; only a failed listing or a missing store aborts the run.
func (s *Service) Run(ctx context.Context, opts Options) (Result, error) {
	var result Result
	result.DryRun = opts.DryRun

	if s.notion == nil || !s.notion.Configured() {
		return result, fmt.Errorf("notion is not configured")
	}
	if s.store == nil && !opts.DryRun {
		return result, fmt.Errorf("store is not configured")
	}

	entries, err := s.notion.ListEntries(ctx)
	if err != nil {
		return result, fmt.Errorf("list notion entries: %w", err)
	}
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	s.logger.Info("sync_listing_fetched", "entries", len(entries), "dry_run", opts.DryRun)

	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		seen[entry.ID] = struct{}{}

		title := entry.Title
		if title == "" {
			title = "Untitled"
		}
		item := models.AdviceItem{
			NotionID: entry.ID,
			Title:    title,
			Slug:     entry.Slug,
			ImageURL: "/img/" + entry.Slug + ".png",
		}

		if opts.DryRun {
			result.Processed++
			continue
		}

		if url, ok := s.uploadLocalImage(ctx, entry.Slug); ok {
			item.OptimizedImageURL = url
			result.Uploaded++
		}

		if _, err := s.store.UpsertAdviceItem(ctx, item); err != nil {
			s.logger.Error("sync_item_failed", "slug", entry.Slug, "error", err)
			result.Failed++
			continue
		}
		result.Processed++
	}

	// Rows whose page left the content database go inactive. Skipped on a
	// limited run: a truncated listing says nothing about the missing rows.
	if !opts.DryRun && opts.Limit == 0 {
		result.Deactivated = s.deactivateMissing(ctx, seen)
	}

	s.logger.Info("sync_completed", "processed", result.Processed, "failed", result.Failed, "uploaded", result.Uploaded, "deactivated", result.Deactivated)
	return result, nil
}

func (s *Service) deactivateMissing(ctx context.Context, seen map[string]struct{}) int {
	existing, err := s.store.ListActiveAdviceItems(ctx)
	if err != nil {
		s.logger.Warn("sync_list_existing_failed", "error", err)
		return 0
	}
	deactivated := 0
	for _, item := range existing {
		if _, ok := seen[item.NotionID]; ok {
			continue
		}
		if err := s.store.SetAdviceItemActive(ctx, item.NotionID, false); err != nil {
			s.logger.Warn("sync_deactivate_failed", "slug", item.Slug, "error", err)
			continue
		}
		deactivated++
	}
	return deactivated
}

// uploadLocalImage pushes the local image for slug when both the uploader and
// the file exist. Upload failures are logged and skipped: the relational row
// still lands with its fallback image path.
func (s *Service) uploadLocalImage(ctx context.Context, slug string) (string, bool) {
	if s.uploader == nil || s.imagesDir == "" {
		return "", false
	}
	imagePath := filepath.Join(s.imagesDir, slug+".png")
	file, err := os.Open(imagePath)
	if err != nil {
		return "", false
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", false
	}
	url, err := s.uploader.UploadImage(ctx, slug, file, info.Size())
	if err != nil {
		s.logger.Warn("sync_image_upload_failed", "slug", slug, "error", err)
		return "", false
	}
	return url, true
}
