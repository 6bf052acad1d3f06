package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/services"
)

type answerRequest struct {
	Correct *bool `json:"correct"`
}

type inputRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req services.StartSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
	}

	view, err := s.PracticeService.Start(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, r)(s.PracticeService.Get(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, r)(s.PracticeService.End(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	correct, ok := decodeAnswer(w, r)
	if !ok {
		return
	}
	s.respondSession(w, r)(s.PracticeService.CheckAnswer(r.Context(), chi.URLParam(r, "id"), correct))
}

func (s *Server) handleOverrideAnswer(w http.ResponseWriter, r *http.Request) {
	correct, ok := decodeAnswer(w, r)
	if !ok {
		return
	}
	s.respondSession(w, r)(s.PracticeService.OverrideAnswer(r.Context(), chi.URLParam(r, "id"), correct))
}

func (s *Server) handleConfirmAnswer(w http.ResponseWriter, r *http.Request) {
	correct, ok := decodeAnswer(w, r)
	if !ok {
		return
	}
	s.respondSession(w, r)(s.PracticeService.Confirm(r.Context(), chi.URLParam(r, "id"), correct))
}

func (s *Server) handleSetUserInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	s.respondSession(w, r)(s.PracticeService.SetUserInput(r.Context(), chi.URLParam(r, "id"), req.Text))
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, r)(s.PracticeService.Skip(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, r)(s.PracticeService.Restart(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleRemoveSessionCard(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, r)(s.PracticeService.RemoveCard(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "cardID")))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	since, err := queryTime(r, "since")
	if err != nil {
		handleError(w, r, err)
		return
	}

	records, err := s.PracticeService.History(r.Context(), models.SessionFilter{Since: since, Limit: limit})
	if err != nil {
		handleError(w, r, err)
		return
	}
	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{SessionRecord: rec, Accuracy: rec.Accuracy()})
	}
	writeJSON(w, r, http.StatusOK, entries)
}

type historyEntry struct {
	models.SessionRecord
	Accuracy float64 `json:"accuracy"`
}

// respondSession renders a session view, or the error when there is one.
func (s *Server) respondSession(w http.ResponseWriter, r *http.Request) func(services.SessionView, error) {
	return func(view services.SessionView, err error) {
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, view)
	}
}

func decodeAnswer(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return false, false
	}
	if req.Correct == nil {
		handleError(w, r, errors.NewValidationError("correct", "required field"))
		return false, false
	}
	return *req.Correct, true
}
