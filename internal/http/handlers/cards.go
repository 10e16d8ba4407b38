package handlers

import (
	"net/http"
	"strings"

	"heresthething/backend/internal/models"

	"github.com/go-chi/chi/v5"
)

// Cards serves the full resolved card list.
func (h *Handler) Cards(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	cardList, err := h.cards.GetCards(r.Context())
	if err != nil {
		logger.Error("action", "action", "cards_list", "status", "resolve_error", "error", err)
		w.Header().Set("Cache-Control", cacheControl)
		writeError(w, http.StatusInternalServerError, "Failed to load cards")
		return
	}
	if cardList == nil {
		cardList = []models.AdviceCard{}
	}

	w.Header().Set("Cache-Control", cacheControl)
	writeJSON(w, http.StatusOK, cardList)
}

// CardBySlug serves one card by its slug.
func (h *Handler) CardBySlug(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}

	card, err := h.cards.GetCardBySlug(r.Context(), slug)
	if err != nil {
		logger.Error("action", "action", "card_by_slug", "status", "resolve_error", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load cards")
		return
	}
	if card == nil {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}

	w.Header().Set("Cache-Control", cacheControl)
	writeJSON(w, http.StatusOK, card)
}
