// Package server provides the HTTP status server for the handlight pipeline.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rghosal/handlight/internal/app"
	"github.com/rghosal/handlight/internal/server/api"
	"github.com/rghosal/handlight/internal/store"
)

// Config holds the server configuration.
type Config struct {
	Session *app.Session
	Store   *store.Store
	Logger  *zap.Logger
}

// Server exposes the pipeline's state over HTTP: health, settings, an MJPEG
// preview of the normalized frames, and a WebSocket feed of gesture events.
type Server struct {
	config Config
	log    *zap.Logger
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		config: config,
		log:    log,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Store, s.log))
	}

	if s.config.Session != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.HandleFunc("/api/tracking", s.handleTracking)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Session))

		events := NewEventsHandler(s.log)
		s.config.Session.OnEvent(events.Publish)
		s.mux.Handle("/api/events", events)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	writeJSON(w, http.StatusOK, response)
}

// handleStatus handles GET requests to /api/status with the current session
// snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Session.Snapshot())
}

type trackingRequest struct {
	Enabled bool `json:"enabled"`
}

// handleTracking handles PUT requests to /api/tracking, toggling gesture
// tracking for the session. Disabling resets the gesture state.
func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req trackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.config.Session.SetTrackingEnabled(req.Enabled)
	s.log.Info("tracking toggled", zap.Bool("enabled", req.Enabled))

	writeJSON(w, http.StatusOK, s.config.Session.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}
