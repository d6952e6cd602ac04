// Package models defines the domain types for daybook.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/daybook/internal/grid"
)

// DateLayout is the wire format of calendar days.
const DateLayout = "2006-01-02"

// Category classifies an event and determines its color.
type Category string

// Event categories.
const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryReminder Category = "reminder"
	CategoryHoliday  Category = "holiday"
)

// Categories lists every category in form order.
var Categories = []Category{CategoryPersonal, CategoryWork, CategoryReminder, CategoryHoliday}

var categoryColors = map[Category]string{
	CategoryWork:     "#3b82f6", // blue
	CategoryPersonal: "#10b981", // green
	CategoryReminder: "#8b5cf6", // purple
	CategoryHoliday:  "#f59e0b", // amber
}

var categoryLabels = map[grid.Locale]map[Category]string{
	grid.LocaleZH: {
		CategoryWork:     "工作",
		CategoryPersonal: "个人",
		CategoryReminder: "提醒",
		CategoryHoliday:  "节日",
	},
	grid.LocaleEN: {
		CategoryWork:     "Work",
		CategoryPersonal: "Personal",
		CategoryReminder: "Reminder",
		CategoryHoliday:  "Holiday",
	},
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

// Color returns the display color for c, or "" for unknown categories.
func (c Category) Color() string {
	return categoryColors[c]
}

// Label returns the localized category name.
func (c Category) Label(l grid.Locale) string {
	return categoryLabels[l.Or()][c]
}

// Event is a timed calendar entry owned by the event store.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"-"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Category    Category  `json:"category"`
	Color       string    `json:"color"`
	IsReminder  bool      `json:"isReminder"`
}

// StartsAt combines the event's day with its start time.
func (e Event) StartsAt() time.Time {
	c, err := grid.ParseClock(e.StartTime)
	if err != nil {
		return grid.StartOfDay(e.Date)
	}
	return c.On(e.Date)
}

// EndsAt combines the event's day with its end time.
func (e Event) EndsAt() time.Time {
	c, err := grid.ParseClock(e.EndTime)
	if err != nil {
		return grid.StartOfDay(e.Date)
	}
	return c.On(e.Date)
}

type eventJSON struct {
	eventAlias
	Date string `json:"date"`
}

type eventAlias Event

// MarshalJSON encodes Date as YYYY-MM-DD.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{eventAlias: eventAlias(e), Date: e.Date.Format(DateLayout)})
}

// UnmarshalJSON decodes Date from YYYY-MM-DD in the local time zone.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Event(raw.eventAlias)
	if raw.Date != "" {
		d, err := time.ParseInLocation(DateLayout, raw.Date, time.Local)
		if err != nil {
			return fmt.Errorf("models: date: %w", err)
		}
		e.Date = d
	}
	return nil
}

// EventInput is the form payload consumed by create and update.
type EventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Category    Category  `json:"category"`
	IsReminder  bool      `json:"isReminder"`
}

// DefaultInput returns the values a fresh form starts with.
func DefaultInput(date time.Time) EventInput {
	return EventInput{
		Date:      date,
		StartTime: "09:00",
		EndTime:   "10:00",
		Category:  CategoryPersonal,
	}
}

// InputFrom returns a form payload pre-filled from e.
func InputFrom(e Event) EventInput {
	return EventInput{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Category:    e.Category,
		IsReminder:  e.IsReminder,
	}
}
