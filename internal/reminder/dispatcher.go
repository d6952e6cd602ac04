// Package reminder publishes reminder events when their start time arrives.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/starford/daybook/internal/models"
	"github.com/starford/daybook/internal/sse"
)

// DefaultSchedule checks for due reminders every minute.
const DefaultSchedule = "* * * * *"

// Source yields reminders whose start lies in (from, to].
type Source interface {
	DueReminders(from, to time.Time) []models.Event
}

// Publisher receives one reminder.due event per fired reminder.
type Publisher interface {
	Publish(event sse.Event)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSchedule sets the cron spec ticks run on.
func WithSchedule(spec string) Option {
	return func(d *Dispatcher) { d.spec = spec }
}

// WithLead fires reminders this long before they start.
func WithLead(lead time.Duration) Option {
	return func(d *Dispatcher) { d.lead = lead }
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithLocation sets the zone the schedule is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// Dispatcher polls the store on a cron schedule and publishes each due
// reminder once.
type Dispatcher struct {
	src     Source
	publish Publisher
	spec    string
	lead    time.Duration
	now     func() time.Time
	loc     *time.Location
	logger  *slog.Logger

	mu    sync.Mutex
	last  time.Time
	fired map[string]time.Time
}

// New creates a dispatcher. Reminders starting before the first tick's
// window are never fired.
func New(src Source, pub Publisher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		src:     src,
		publish: pub,
		spec:    DefaultSchedule,
		now:     time.Now,
		loc:     time.Local,
		logger:  slog.Default(),
		fired:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.last = d.now().Add(d.lead)
	return d
}

// ValidateSchedule reports whether spec is a standard five-field cron spec.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("reminder: schedule %q: %w", spec, err)
	}
	return nil
}

// Start runs ticks on the schedule until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(d.loc))
	if _, err := c.AddFunc(d.spec, func() { d.Tick() }); err != nil {
		return fmt.Errorf("reminder: add schedule %q: %w", d.spec, err)
	}
	c.Start()
	d.logger.Info("reminder dispatcher started",
		slog.String("schedule", d.spec), slog.Duration("lead", d.lead))

	<-ctx.Done()
	<-c.Stop().Done()
	d.logger.Info("reminder dispatcher stopped")
	return nil
}

// Tick publishes reminders that became due since the previous tick and
// returns how many were published.
func (d *Dispatcher) Tick() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	to := d.now().Add(d.lead)
	if !to.After(d.last) {
		return 0
	}
	due := d.src.DueReminders(d.last, to)
	d.last = to

	n := 0
	for _, ev := range due {
		at := ev.StartsAt()
		if prev, ok := d.fired[ev.ID]; ok && prev.Equal(at) {
			continue
		}
		d.fired[ev.ID] = at
		d.publish.Publish(sse.Event{Type: sse.TypeReminderDue, Data: ev})
		d.logger.Info("reminder due",
			slog.String("id", ev.ID), slog.String("title", ev.Title), slog.Time("at", at))
		n++
	}
	return n
}

// Forget drops the fired record for id. Call it when the event changes so
// a rescheduled reminder can fire again.
func (d *Dispatcher) Forget(id string) {
	d.mu.Lock()
	delete(d.fired, id)
	d.mu.Unlock()
}
