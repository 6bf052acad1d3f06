package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", s.handleListCards)
			r.Post("/", s.handleCreateCard)
			r.Post("/import", s.handleImportCards)
			r.Post("/check-duplicates", s.handleCheckDuplicates)
			r.Get("/{id}", s.handleGetCard)
			r.Put("/{id}", s.handleUpdateCard)
			r.Delete("/{id}", s.handleDeleteCard)
			r.Get("/{id}/duplicates", s.handleCardDuplicates)
		})

		r.Get("/duplicates", s.handleFindDuplicates)
		r.Post("/duplicates/scan", s.handleEnqueueScan)
		r.Get("/duplicates/scan", s.handleLastScan)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleEndSession)
			r.Post("/{id}/check", s.handleCheckAnswer)
			r.Post("/{id}/override", s.handleOverrideAnswer)
			r.Put("/{id}/input", s.handleSetUserInput)
			r.Post("/{id}/confirm", s.handleConfirmAnswer)
			r.Post("/{id}/skip", s.handleSkip)
			r.Post("/{id}/restart", s.handleRestart)
			r.Delete("/{id}/cards/{cardID}", s.handleRemoveSessionCard)
		})

		r.Get("/history", s.handleHistory)
	})
	return r
}
