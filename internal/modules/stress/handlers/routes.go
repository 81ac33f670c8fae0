package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers all stress testing routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stress", func(r chi.Router) {
		r.Post("/run", h.HandleRun)
		r.Post("/sensitivities", h.HandleSensitivities)
		r.Get("/tables", h.HandleTables)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.HandleListRuns)
			r.Get("/{id}", h.HandleGetRun)
		})
	})
}
