package handlers

import (
	"errors"
	"net/http"
	"strings"

	"heresthething/backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

// AdviceItems serves the relational listing in card shape, preferring the
// optimized storage copy of each image.
func (h *Handler) AdviceItems(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "database is not configured")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	items, err := h.repo.ListActiveAdviceItems(ctx)
	if err != nil {
		logger.Error("action", "action", "advice_items", "status", "db_error", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch advice data")
		return
	}

	out := make([]models.AdviceCard, 0, len(items))
	for _, item := range items {
		out = append(out, adviceItemToCard(item))
	}
	writeJSON(w, http.StatusOK, out)
}

// AdviceItemBySlug serves one relational row in card shape.
func (h *Handler) AdviceItemBySlug(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "database is not configured")
		return
	}
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	item, err := h.repo.GetAdviceItemBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "advice item not found")
			return
		}
		logger.Error("action", "action", "advice_item_by_slug", "status", "db_error", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch advice data")
		return
	}
	writeJSON(w, http.StatusOK, adviceItemToCard(item))
}

// AdviceStats serves total/active/inactive row counts.
func (h *Handler) AdviceStats(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "database is not configured")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	stats, err := h.repo.AdviceStats(ctx)
	if err != nil {
		logger.Error("action", "action", "advice_stats", "status", "db_error", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// adviceItemToCard handles advice item to card.
func adviceItemToCard(item models.AdviceItem) models.AdviceCard {
	imageURL := item.OptimizedImageURL
	if imageURL == "" {
		imageURL = item.ImageURL
	}
	if imageURL == "" {
		imageURL = "/img/" + item.Slug + ".png"
	}
	return models.AdviceCard{
		ID:       item.ID,
		Slug:     item.Slug,
		Title:    item.Title,
		ImageURL: imageURL,
	}
}
