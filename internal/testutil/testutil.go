// Package testutil provides deterministic clocks, ids and stores for tests.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/starford/daybook/internal/eventstore"
	"github.com/starford/daybook/internal/models"
)

// ReferenceTime is the instant shared by tests that do not care about "now":
// Monday 19 October 2026, 08:30 UTC.
func ReferenceTime() time.Time {
	return time.Date(2026, time.October, 19, 8, 30, 0, 0, time.UTC)
}

// Clock is a controllable time source.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock set to start, or ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the tracked instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// IDs yields "prefix-1", "prefix-2", ...
type IDs struct {
	mu      sync.Mutex
	prefix  string
	counter int
}

// NewIDs returns a generator for prefix ("ev" when empty).
func NewIDs(prefix string) *IDs {
	if prefix == "" {
		prefix = "ev"
	}
	return &IDs{prefix: prefix}
}

// Next returns the next id.
func (g *IDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// Store returns an empty UTC store driven by clock with sequential ids.
func Store(t *testing.T, clock *Clock, opts ...eventstore.Option) *eventstore.Store {
	t.Helper()
	if clock == nil {
		clock = NewClock(time.Time{})
	}
	base := []eventstore.Option{
		eventstore.WithNow(clock.Now),
		eventstore.WithIDFunc(NewIDs("ev").Next),
		eventstore.WithLocation(time.UTC),
	}
	return eventstore.New(append(base, opts...)...)
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Input returns a valid form payload on date.
func Input(title string, date time.Time, start, end string) models.EventInput {
	return models.EventInput{
		Title:     title,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Category:  models.CategoryWork,
	}
}

// Reminder returns a valid reminder payload on date.
func Reminder(title string, date time.Time, start string) models.EventInput {
	in := Input(title, date, start, "23:59")
	in.Category = models.CategoryReminder
	in.IsReminder = true
	return in
}

// MustCreate creates in on s or fails the test.
func MustCreate(t *testing.T, s *eventstore.Store, in models.EventInput) models.Event {
	t.Helper()
	ev, err := s.Create(t.Context(), in)
	if err != nil {
		t.Fatalf("create %q: %v", in.Title, err)
	}
	return ev
}
