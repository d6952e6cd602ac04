// Package eventstore owns the in-memory list of calendar events and the
// views derived from it.
package eventstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/daybook/internal/apperr"
	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/models"
)

// MaxUpcomingReminders caps UpcomingReminders.
const MaxUpcomingReminders = 5

// Change kinds passed to the OnChange callback.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// ChangeFunc is called after a mutation has been applied.
type ChangeFunc func(kind string, ev models.Event)

// Option configures a Store.
type Option func(*Store)

// WithNow overrides the clock used for defaults.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides event id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLocation sets the zone event days are anchored in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithOnChange registers a mutation callback.
func WithOnChange(fn ChangeFunc) Option {
	return func(s *Store) { s.onChange = fn }
}

// Store is an insertion-ordered event collection keyed by id.
//
// Every operation holds the lock for its whole duration, so concurrent
// callers observe a sequence of complete transitions.
type Store struct {
	mu     sync.RWMutex
	events []models.Event

	now      func() time.Time
	newID    func() string
	loc      *time.Location
	onChange ChangeFunc
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: newEventID,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newEventID returns a UUIDv7: a millisecond timestamp followed by random bits.
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Location returns the zone event days are anchored in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Now returns the store's current instant in its location.
func (s *Store) Now() time.Time {
	return s.now().In(s.loc)
}

// Create validates in and appends a new event.
func (s *Store) Create(_ context.Context, in models.EventInput) (models.Event, error) {
	in = Normalize(in)
	if err := Validate(in, true); err != nil {
		return models.Event{}, err
	}

	s.mu.Lock()
	ev := s.build(s.newID(), in)
	s.events = append(s.events, ev)
	s.mu.Unlock()

	s.notify(KindCreated, ev)
	return ev, nil
}

// Update validates in and replaces the event with the given id in place.
// A zero in.Date keeps the stored day.
func (s *Store) Update(_ context.Context, id string, in models.EventInput) (models.Event, error) {
	in = Normalize(in)
	if err := Validate(in, false); err != nil {
		return models.Event{}, err
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Event{}, apperr.ErrNotFound
	}
	if in.Date.IsZero() {
		in.Date = s.events[i].Date
	}
	ev := s.build(id, in)
	s.events[i] = ev
	s.mu.Unlock()

	s.notify(KindUpdated, ev)
	return ev, nil
}

// Delete removes the event with the given id. Unknown ids are a no-op; the
// result reports whether anything was removed.
func (s *Store) Delete(_ context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	ev := s.events[i]
	s.events = slices.Delete(s.events, i, i+1)
	s.mu.Unlock()

	s.notify(KindDeleted, ev)
	return true
}

// Get returns the event with the given id.
func (s *Store) Get(_ context.Context, id string) (models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Event{}, apperr.ErrNotFound
	}
	return s.events[i], nil
}

// List returns every event in insertion order.
func (s *Store) List(_ context.Context) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// EventsOnDay returns the events on date's calendar day in insertion order.
func (s *Store) EventsOnDay(date time.Time) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Event{}
	for _, ev := range s.events {
		if grid.IsSameDay(ev.Date, date) {
			out = append(out, ev)
		}
	}
	return out
}

// UpcomingReminders returns up to MaxUpcomingReminders reminder events
// starting strictly after now, soonest first.
func (s *Store) UpcomingReminders(now time.Time) []models.Event {
	out := s.reminders(func(at time.Time) bool { return at.After(now) })
	if len(out) > MaxUpcomingReminders {
		out = out[:MaxUpcomingReminders]
	}
	return out
}

// DueReminders returns reminder events starting in (from, to], soonest first.
func (s *Store) DueReminders(from, to time.Time) []models.Event {
	return s.reminders(func(at time.Time) bool {
		return at.After(from) && !at.After(to)
	})
}

func (s *Store) reminders(keep func(time.Time) bool) []models.Event {
	s.mu.RLock()
	out := []models.Event{}
	for _, ev := range s.events {
		if ev.IsReminder && keep(ev.StartsAt()) {
			out = append(out, ev)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.Event) int {
		return a.StartsAt().Compare(b.StartsAt())
	})
	return out
}

// Import creates every valid input and returns the created events together
// with the number of rejected inputs.
func (s *Store) Import(ctx context.Context, inputs []models.EventInput) ([]models.Event, int) {
	created := make([]models.Event, 0, len(inputs))
	rejected := 0
	for _, in := range inputs {
		ev, err := s.Create(ctx, in)
		if err != nil {
			rejected++
			continue
		}
		created = append(created, ev)
	}
	return created, rejected
}

func (s *Store) build(id string, in models.EventInput) models.Event {
	y, m, d := in.Date.Date()
	return models.Event{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Date:        time.Date(y, m, d, 0, 0, 0, 0, s.loc),
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Category:    in.Category,
		Color:       in.Category.Color(),
		IsReminder:  in.IsReminder,
	}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.events, func(ev models.Event) bool { return ev.ID == id })
}

func (s *Store) notify(kind string, ev models.Event) {
	if s.onChange != nil {
		s.onChange(kind, ev)
	}
}
