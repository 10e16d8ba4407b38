package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	syncsvc "heresthething/backend/internal/sync"
)

type triggerSyncRequest struct {
	DryRun bool `json:"dryRun"`
	Limit  int  `json:"limit" validate:"gte=0,lte=1000"`
}

// TriggerSync runs one content-database sync pass on demand. Guarded by the
// shared sync key and a window limiter so a misbehaving caller cannot hammer
// the content database.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	if h.cfg.SyncAPIKey == "" {
		writeError(w, http.StatusInternalServerError, "Sync API key not configured")
		return
	}
	provided := r.Header.Get("X-Sync-Key")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.cfg.SyncAPIKey)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid sync key")
		return
	}
	if h.sync == nil {
		writeError(w, http.StatusServiceUnavailable, "sync is not configured")
		return
	}
	if !h.syncLimiter.Allow("sync") {
		writeError(w, http.StatusTooManyRequests, "sync already triggered recently")
		return
	}

	var req triggerSyncRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.sync.Run(r.Context(), syncsvc.Options{DryRun: req.DryRun, Limit: req.Limit})
	if err != nil {
		logger.Error("action", "action", "sync_trigger", "status", "sync_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	logger.Info("action", "action", "sync_trigger", "status", "ok", "processed", result.Processed, "failed", result.Failed)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

// SyncStatus reports that the sync endpoint is wired.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Sync endpoint ready. Use POST to trigger sync.",
		"status":  "healthy",
	})
}
