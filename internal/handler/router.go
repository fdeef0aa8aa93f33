package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the stub API router.
func NewRouter(h *EventHandler, logger *slog.Logger, now func() time.Time) http.Handler {
	if now == nil {
		now = time.Now
	}
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(logger))          // structured access log
	r.Use(CORS)                    // permissive CORS for local development

	// Health
	r.Get("/health", HealthCheck)

	// API routes
	r.Group(func(r chi.Router) {
		r.Use(Authenticate(now))

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.Post("/", h.CreateEvent)
			r.Put("/{id}", h.UpdateEvent)
			r.Delete("/{id}", h.DeleteEvent)
			r.Get("/{id}/registrations", h.ListRegistrations)
		})
		r.Post("/register", h.Register)
		r.Get("/registrations/me", h.MyRegistrations)
		r.Post("/tickets/validate", h.ValidateTicket)
	})

	return r
}
