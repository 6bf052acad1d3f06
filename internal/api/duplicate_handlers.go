package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/services"
)

func (s *Server) handleFindDuplicates(w http.ResponseWriter, r *http.Request) {
	report, err := s.DuplicateService.Find(r.Context(), r.URL.Query().Get("preset"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleCardDuplicates(w http.ResponseWriter, r *http.Request) {
	matches, err := s.DuplicateService.FindForCard(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("preset"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, matches)
}

func (s *Server) handleCheckDuplicates(w http.ResponseWriter, r *http.Request) {
	var in services.CardInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	matches, err := s.DuplicateService.Check(r.Context(), in, r.URL.Query().Get("preset"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, matches)
}

func (s *Server) handleEnqueueScan(w http.ResponseWriter, r *http.Request) {
	if err := s.DuplicateService.EnqueueScan(r.Context(), r.URL.Query().Get("preset")); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleLastScan(w http.ResponseWriter, r *http.Request) {
	report, ok := s.DuplicateService.LastReport()
	if !ok {
		handleError(w, r, errors.NewNotFoundError("duplicate report", "latest"))
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
