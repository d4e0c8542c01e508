// Package api provides HTTP API handlers for the handlight status server.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/rghosal/handlight/internal/config"
	"github.com/rghosal/handlight/internal/store"
)

// SettingsHandler handles HTTP requests for persisted pipeline settings.
// Values written here are layered over the config file on the next startup;
// they do not retune a running session.
type SettingsHandler struct {
	store *store.Store
	log   *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler over the given store.
func NewSettingsHandler(s *store.Store, log *zap.Logger) *SettingsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsHandler{store: s, log: log}
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/settings and returns every persisted override.
func (h *SettingsHandler) list(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings().All()
	if err != nil {
		h.log.Error("failed to list settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// update handles PUT /api/settings. The body is a flat map of setting keys
// to string values; each entry is validated against the defaults before
// anything is persisted, so a bad batch changes nothing.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var overrides map[string]string
	if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Dry-run the candidate settings over what is already persisted to
	// reject malformed values and threshold-order violations.
	existing, err := h.store.Settings().All()
	if err != nil {
		h.log.Error("failed to list settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	trial := config.Default()
	if err := config.ApplyOverrides(&trial, existing); err != nil {
		h.log.Warn("persisted settings no longer valid", zap.Error(err))
		trial = config.Default()
	}
	if err := config.ApplyOverrides(&trial, overrides); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for key, value := range overrides {
		if err := h.store.Settings().Set(key, value); err != nil {
			h.log.Error("failed to persist setting",
				zap.String("key", key), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to persist settings")
			return
		}
	}

	h.log.Info("settings updated", zap.Int("count", len(overrides)))

	settings, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
