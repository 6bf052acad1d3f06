package api

import (
	"net/http"

	"github.com/vytor/wordflash/internal/logger"
)

// handleHealth is the liveness check; it answers as long as the process runs.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady is the readiness check. It fails with 503 while the database
// does not answer.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.Health != nil {
		if err := s.Health.CheckHealth(r.Context()); err != nil {
			logger.FromContext(r.Context()).Warn("readiness check failed - database: %v", err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
