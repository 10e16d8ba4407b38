package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"heresthething/backend/internal/cards"
	"heresthething/backend/internal/config"
	"heresthething/backend/internal/notion"
	"heresthething/backend/internal/rate"
	"heresthething/backend/internal/repository"
	syncsvc "heresthething/backend/internal/sync"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// cacheControl matches the edge caching policy of the public site.
const cacheControl = "public, s-maxage=300, stale-while-revalidate=600"

type Handler struct {
	cards       *cards.Service
	repo        *repository.Repository
	notion      *notion.Client
	sync        *syncsvc.Service
	cfg         *config.Config
	logger      *slog.Logger
	validator   *validator.Validate
	syncLimiter *rate.WindowLimiter
}

// New assembles the handler. repo and sync may be nil when the database or
// the content database are not configured; the affected routes degrade.
func New(cardService *cards.Service, repo *repository.Repository, notionClient *notion.Client, syncService *syncsvc.Service, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cards:       cardService,
		repo:        repo,
		notion:      notionClient,
		sync:        syncService,
		cfg:         cfg,
		logger:      logger,
		validator:   validator.New(),
		syncLimiter: rate.NewWindowLimiter(3, 5*time.Minute),
	}
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

func (h *Handler) loggerForRequest(r *http.Request) *slog.Logger {
	logger := h.logger
	if logger == nil {
		return slog.Default()
	}
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	return logger
}
