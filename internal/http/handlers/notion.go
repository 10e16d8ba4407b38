package handlers

import (
	"net/http"

	"heresthething/backend/internal/models"
)

// NotionListing serves the raw content-database listing of {id,title,slug}.
// A later page failing mid-pagination degrades to the pages fetched so far.
func (h *Handler) NotionListing(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	if h.notion == nil || !h.notion.Configured() {
		writeError(w, http.StatusInternalServerError, "Notion Database ID is missing")
		return
	}

	entries, err := h.notion.ListEntriesBestEffort(r.Context())
	if err != nil {
		logger.Error("action", "action", "notion_listing", "status", "fetch_error", "error", err)
		w.Header().Set("Cache-Control", cacheControl)
		writeError(w, http.StatusInternalServerError, "Failed to fetch Notion data")
		return
	}

	out := make([]models.NotionEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Title == "" {
			entry.Title = "Untitled"
		}
		out = append(out, entry)
	}

	w.Header().Set("Cache-Control", cacheControl)
	writeJSON(w, http.StatusOK, out)
}
