package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/daybook/internal/eventstore"
	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/icalx"
	"github.com/starford/daybook/internal/models"
	"github.com/starford/daybook/internal/view"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	store    *eventstore.Store
	settings Settings
}

// NewHandler creates a new Handler.
func NewHandler(store *eventstore.Store, settings Settings) *Handler {
	if settings.Layout.Width <= 0 {
		settings.Layout = view.CanvasLayout
	}
	settings.Locale = settings.Locale.Or()
	return &Handler{store: store, settings: settings}
}

// displayedMonth reads year and month query parameters, defaulting to now.
func displayedMonth(r *http.Request, now time.Time) (int, time.Month, error) {
	q := r.URL.Query()
	year, month := now.Year(), now.Month()
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 9999 {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = n
	}
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
		month = time.Month(n)
	}
	return year, month, nil
}

func (h *Handler) parseDay(v string) (time.Time, error) {
	return time.ParseInLocation(models.DateLayout, v, h.store.Location())
}

func (h *Handler) state(year int, month time.Month) view.State {
	return view.State{Year: year, Month: month, Location: h.store.Location()}
}

// Month handles GET /api/month.
//
//	@Summary		Month grid with events and reminders
//	@Tags			calendar
//	@Produce		json
//	@Param			year		query		int		false	"Year (default current)"
//	@Param			month		query		int		false	"Month 1-12 (default current)"
//	@Param			selected	query		string	false	"Selected day YYYY-MM-DD"
//	@Success		200			{object}	view.MonthView
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/month [get]
func (h *Handler) Month(w http.ResponseWriter, r *http.Request) {
	now := h.store.Now()
	year, month, err := displayedMonth(r, now)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	s := h.state(year, month)
	if v := r.URL.Query().Get("selected"); v != "" {
		day, err := h.parseDay(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid selected date"))
			return
		}
		s = view.Reduce(s, view.SelectDay{Date: day})
	}
	writeJSON(w, http.StatusOK, view.BuildMonth(s, h.store, now, h.settings.Locale))
}

// MonthHit handles GET /api/month/hit.
//
//	@Summary		Resolve a canvas pointer position to a grid cell
//	@Tags			calendar
//	@Produce		json
//	@Param			year	query		int		false	"Year"
//	@Param			month	query		int		false	"Month 1-12"
//	@Param			x		query		number	true	"Pointer x in canvas pixels"
//	@Param			y		query		number	true	"Pointer y in canvas pixels"
//	@Success		200		{object}	HitResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/month/hit [get]
func (h *Handler) MonthHit(w http.ResponseWriter, r *http.Request) {
	year, month, err := displayedMonth(r, h.store.Now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameters 'x' and 'y' must be numbers"))
		return
	}
	idx, ok := h.settings.Layout.CellAt(x, y)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("outside grid"))
		return
	}
	s := view.Reduce(h.state(year, month), view.Click{X: x, Y: y, Layout: h.settings.Layout})
	writeJSON(w, http.StatusOK, HitResponse{Index: idx, Date: s.Selected.Format(models.DateLayout)})
}

// Labels handles GET /api/labels.
//
//	@Summary		Display labels for the configured locale
//	@Tags			calendar
//	@Produce		json
//	@Success		200	{object}	LabelsResponse
//	@Security		BearerAuth
//	@Router			/labels [get]
func (h *Handler) Labels(w http.ResponseWriter, _ *http.Request) {
	l := h.settings.Locale
	cats := make([]CategoryLabel, 0, len(models.Categories))
	for _, c := range models.Categories {
		cats = append(cats, CategoryLabel{Value: c, Label: c.Label(l), Color: c.Color()})
	}
	writeJSON(w, http.StatusOK, LabelsResponse{
		Locale:     l,
		Weekdays:   grid.Weekdays(l),
		Months:     grid.MonthNames(l),
		Categories: cats,
	})
}

// ListEvents handles GET /api/events.
//
//	@Summary		List events, optionally on one day
//	@Tags			events
//	@Produce		json
//	@Param			date	query		string	false	"Day YYYY-MM-DD"
//	@Success		200		{object}	EventListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	var events []models.Event
	if v := r.URL.Query().Get("date"); v != "" {
		day, err := h.parseDay(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid date"))
			return
		}
		events = h.store.EventsOnDay(day)
	} else {
		events = h.store.List(r.Context())
	}
	writeJSON(w, http.StatusOK, EventListResponse{Events: events, Total: len(events)})
}

// GetEvent handles GET /api/events/{id}.
//
//	@Summary		Get a single event
//	@Tags			events
//	@Produce		json
//	@Param			id	path		string	true	"Event id"
//	@Success		200	{object}	models.Event
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get event", err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (models.EventInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return models.EventInput{}, false
	}
	in, err := req.input(h.store.Location())
	if err != nil {
		writeError(w, "decode event", err)
		return models.EventInput{}, false
	}
	return in, true
}

// CreateEvent handles POST /api/events.
//
//	@Summary		Create an event
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EventRequest	true	"Event to create"
//	@Success		201		{object}	models.Event
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	ev, err := h.store.Create(r.Context(), in)
	if err != nil {
		writeError(w, "create event", err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// UpdateEvent handles PUT /api/events/{id}.
//
//	@Summary		Replace an event in place
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Event id"
//	@Param			body	body		EventRequest	true	"New values; an empty date keeps the stored day"
//	@Success		200		{object}	models.Event
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	ev, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, "update event", err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// DeleteEvent handles DELETE /api/events/{id}. Unknown ids succeed.
//
//	@Summary		Delete an event
//	@Tags			events
//	@Param			id	path	string	true	"Event id"
//	@Success		204	"Event deleted"
//	@Security		BearerAuth
//	@Router			/events/{id} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.store.Delete(r.Context(), id) {
		slog.Debug("delete of unknown event", slog.String("id", id))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reminders handles GET /api/reminders.
//
//	@Summary		Upcoming reminders
//	@Tags			events
//	@Produce		json
//	@Success		200	{object}	RemindersResponse
//	@Security		BearerAuth
//	@Router			/reminders [get]
func (h *Handler) Reminders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RemindersResponse{Reminders: h.store.UpcomingReminders(h.store.Now())})
}

// ExportICS handles GET /api/calendar.ics.
//
//	@Summary		Export all events as iCalendar
//	@Tags			ics
//	@Produce		text/calendar
//	@Success		200
//	@Security		BearerAuth
//	@Router			/calendar.ics [get]
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := icalx.Encode(&buf, h.store.List(r.Context()), h.store.Now()); err != nil {
		writeError(w, "export ics", err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="daybook.ics"`)
	_, _ = w.Write(buf.Bytes())
}

// ImportICS handles POST /api/import.
//
//	@Summary		Import events from an iCalendar body
//	@Tags			ics
//	@Accept			text/calendar
//	@Produce		json
//	@Success		200	{object}	ImportResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) ImportICS(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	inputs, skipped, err := icalx.Decode(r.Body, h.store.Location())
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("invalid calendar"))
		return
	}
	created, rejected := h.store.Import(r.Context(), inputs)
	slog.Info("ics imported", slog.Int("imported", len(created)), slog.Int("skipped", skipped+rejected))
	writeJSON(w, http.StatusOK, ImportResponse{Imported: len(created), Skipped: skipped + rejected})
}
