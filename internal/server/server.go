// Package server exposes the HTTP surface of the settlement service: the
// weekly job trigger, health probes, and the Prometheus scrape endpoint.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/groupgainz/backend/internal/auth"
	"github.com/groupgainz/backend/internal/metrics"
	"github.com/groupgainz/backend/internal/settlement"
	"github.com/groupgainz/backend/internal/storage"
)

// Server routes HTTP requests to the settlement job and probes.
type Server struct {
	store  storage.Store
	job    *settlement.Job
	tokens *auth.TokenManager
}

// New creates a Server. A nil tokens manager disables trigger authentication
// (local development only).
func New(store storage.Store, job *settlement.Job, tokens *auth.TokenManager) *Server {
	return &Server{store: store, job: job, tokens: tokens}
}

// Handler returns the fully wrapped HTTP handler: logging and CORS outside,
// Prometheus instrumentation inside.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/weekly", s.requireServiceToken(s.handleWeeklyJob))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	mux.Handle("/metrics", metrics.Handler())

	return loggingMiddleware(corsMiddleware(metrics.Instrument(mux)))
}

// handleWeeklyJob runs one settlement for the current week. Any method
// reaches here (scheduler triggers vary); OPTIONS is already answered by the
// CORS middleware. The response is always the full run report: HTTP 200 even
// for a partially failed run (success=false), HTTP 500 only when the run
// aborted before processing anything.
func (s *Server) handleWeeklyJob(w http.ResponseWriter, r *http.Request) {
	report, err := s.job.Run(r.Context(), time.Now())

	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, report)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		slog.Warn("readiness probe failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database unreachable"})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// requireServiceToken guards the trigger with a Bearer service token.
func (s *Server) requireServiceToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.tokens == nil {
			next(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": auth.ErrMissingToken.Error()})
			return
		}
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": auth.ErrInvalidToken.Error()})
			return
		}

		claims, err := s.tokens.Verify(parts[1])
		if err != nil {
			slog.Warn("service token rejected", "error", err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		slog.Debug("service token accepted", "subject", claims.Subject)
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
