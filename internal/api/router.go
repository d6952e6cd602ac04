package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/daybook/internal/eventstore"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /stream inside the auth group.
func NewRouter(store *eventstore.Store, settings Settings, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store, settings)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Calendar views.
	r.Get("/month", h.Month)
	r.Get("/month/hit", h.MonthHit)
	r.Get("/labels", h.Labels)

	// Events CRUD.
	r.Get("/events", h.ListEvents)
	r.Post("/events", h.CreateEvent)
	r.Get("/events/{id}", h.GetEvent)
	r.Put("/events/{id}", h.UpdateEvent)
	r.Delete("/events/{id}", h.DeleteEvent)
	r.Get("/reminders", h.Reminders)

	// iCalendar.
	r.Get("/calendar.ics", h.ExportICS)
	r.Post("/import", h.ImportICS)

	if sseHandler != nil {
		r.Get("/stream", sseHandler.ServeHTTP)
	}

	return r
}
