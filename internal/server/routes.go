package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/b0ase/ckwidget/internal/address"
	"github.com/b0ase/ckwidget/internal/settings"
)

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handleSaveSettings)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.daemon.Gatherer(), promhttp.HandlerOpts{}))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":    "ok",
		"uptime_ms": s.daemon.Uptime().Milliseconds(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	tile, ok := s.daemon.Tile()
	if !ok {
		writeError(w, 503, "no refresh has completed yet")
		return
	}
	writeJSON(w, map[string]interface{}{
		"tile":   tile,
		"daemon": s.daemon.Status(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	tile, err := s.daemon.Refresh(r.Context())
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, tile)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cur, err := s.daemon.Settings(r.Context())
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, cur)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.Settings
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, 400, "invalid JSON body")
		return
	}
	if err := s.daemon.SaveSettings(r.Context(), req); err != nil {
		if isValidation(err) {
			writeError(w, 400, err.Error())
			return
		}
		writeError(w, 500, err.Error())
		return
	}
	saved, err := s.daemon.Settings(r.Context())
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, saved)
}

func isValidation(err error) bool {
	for _, target := range []error{
		settings.ErrAddressRequired,
		settings.ErrInvalidColor,
		address.ErrEmpty,
		address.ErrMalformed,
		address.ErrChecksum,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
