package api

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the owner-scoped API under r.
func RegisterRoutes(r chi.Router, cards *CardHandler, sessions *SessionHandler) {
	r.Route("/api/owners/{ownerID}", func(r chi.Router) {
		r.Post("/start", cards.Onboard)
		r.Get("/stats", cards.GetStats)
		r.Post("/cards", cards.AddWord)
		r.Patch("/cards/{cardID}", cards.SetLearned)

		r.Route("/session", func(r chi.Router) {
			r.Post("/", sessions.Start)
			r.Get("/", sessions.Current)
			r.Delete("/", sessions.Cancel)
			r.Post("/reveal", sessions.Reveal)
			r.Post("/advance", sessions.Advance)
			r.Post("/answer", sessions.SubmitAnswer)
		})
	})
}
