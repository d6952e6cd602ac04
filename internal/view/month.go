package view

import (
	"time"

	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/models"
)

// EventSource is the read side of the event store.
type EventSource interface {
	EventsOnDay(date time.Time) []models.Event
	UpcomingReminders(now time.Time) []models.Event
}

// Cell is one day of the rendered month.
type Cell struct {
	Date           string      `json:"date"`
	Day            int         `json:"day"`
	IsCurrentMonth bool        `json:"isCurrentMonth"`
	IsToday        bool        `json:"isToday"`
	IsSelected     bool        `json:"isSelected"`
	IsHovered      bool        `json:"isHovered"`
	Events         []CellEvent `json:"events"`
	More           int         `json:"more"`
	MoreLabel      string      `json:"moreLabel,omitempty"`
}

// MonthView is everything a renderer needs for one frame.
type MonthView struct {
	Year        int            `json:"year"`
	Month       int            `json:"month"`
	Title       string         `json:"title"`
	Weekdays    []string       `json:"weekdays"`
	Cells       []Cell         `json:"cells"`
	Selected    string         `json:"selected,omitempty"`
	SelectedDay string         `json:"selectedTitle,omitempty"`
	DayEvents   []models.Event `json:"dayEvents"`
	Reminders   []models.Event `json:"reminders"`
	Modal       Modal          `json:"modal"`
}

// BuildMonth derives the month view from the UI state and the store.
func BuildMonth(s State, src EventSource, now time.Time, locale grid.Locale) MonthView {
	now = now.In(s.loc())
	days := s.Days(now)

	v := MonthView{
		Year:      s.Year,
		Month:     int(s.Month),
		Title:     grid.MonthTitle(locale, s.Year, s.Month),
		Weekdays:  grid.Weekdays(locale),
		Cells:     make([]Cell, len(days)),
		DayEvents: []models.Event{},
		Reminders: src.UpcomingReminders(now),
		Modal:     s.Modal,
	}
	for i, d := range days {
		shown, more := CellEvents(src.EventsOnDay(d.Date))
		v.Cells[i] = Cell{
			Date:           d.Date.Format(models.DateLayout),
			Day:            d.Date.Day(),
			IsCurrentMonth: d.IsCurrentMonth,
			IsToday:        d.IsToday,
			IsSelected:     s.HasSelection() && grid.IsSameDay(d.Date, s.Selected),
			IsHovered:      !s.Hovered.IsZero() && grid.IsSameDay(d.Date, s.Hovered),
			Events:         shown,
			More:           more,
			MoreLabel:      MoreLabel(more),
		}
	}
	if s.HasSelection() {
		v.Selected = s.Selected.Format(models.DateLayout)
		v.SelectedDay = grid.DayTitle(locale, s.Selected)
		v.DayEvents = src.EventsOnDay(s.Selected)
	}
	return v
}
