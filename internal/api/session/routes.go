package session

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetSession)
		r.Delete("/{id}", h.DeleteSession)
		r.Post("/{id}/question", h.NextQuestion)
		r.Post("/{id}/answers", h.SubmitAnswer)
		r.Post("/{id}/back", h.GoBack)
		r.Post("/{id}/report", h.GenerateReport)
		r.Get("/{id}/transcript", h.Transcript)
		r.Post("/{id}/reset", h.ResetSession)
		r.Post("/{id}/follow-up", h.StartFollowUpSession)
	})
}
