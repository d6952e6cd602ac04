package api

import (
	"strings"
	"time"

	"github.com/starford/daybook/internal/apperr"
	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/models"
	"github.com/starford/daybook/internal/view"
)

// Settings are the calendar presentation options the API renders with.
type Settings struct {
	Locale grid.Locale
	Layout view.Layout
}

// EventRequest is the request body for creating or updating an event.
type EventRequest struct {
	Title       string          `json:"title" example:"Team sync" validate:"required"`
	Description string          `json:"description" example:"Weekly planning"`
	Date        string          `json:"date" example:"2026-10-20"`
	StartTime   string          `json:"startTime" example:"09:00" validate:"required"`
	EndTime     string          `json:"endTime" example:"10:00" validate:"required"`
	Category    models.Category `json:"category" example:"work"`
	IsReminder  bool            `json:"isReminder"`
}

// input converts the request into a store payload with the day anchored in
// loc. An empty date stays zero.
func (r EventRequest) input(loc *time.Location) (models.EventInput, error) {
	in := models.EventInput{
		Title:       r.Title,
		Description: r.Description,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Category:    r.Category,
		IsReminder:  r.IsReminder,
	}
	if d := strings.TrimSpace(r.Date); d != "" {
		t, err := time.ParseInLocation(models.DateLayout, d, loc)
		if err != nil {
			verr := &apperr.ValidationError{}
			verr.Add("date", "invalid date")
			return in, verr
		}
		in.Date = t
	}
	return in, nil
}

// EventListResponse wraps event listings.
type EventListResponse struct {
	Events []models.Event `json:"events" validate:"required"`
	Total  int            `json:"total" example:"3" validate:"required"`
}

// RemindersResponse wraps the upcoming reminders.
type RemindersResponse struct {
	Reminders []models.Event `json:"reminders" validate:"required"`
}

// HitResponse is the cell under a pointer position.
type HitResponse struct {
	Index int    `json:"index" example:"22"`
	Date  string `json:"date" example:"2026-10-20"`
}

// CategoryLabel describes one category for pickers and legends.
type CategoryLabel struct {
	Value models.Category `json:"value" example:"work"`
	Label string          `json:"label" example:"Work"`
	Color string          `json:"color" example:"#3b82f6"`
}

// LabelsResponse holds the display strings for the configured locale.
type LabelsResponse struct {
	Locale     grid.Locale     `json:"locale" example:"en"`
	Weekdays   []string        `json:"weekdays"`
	Months     []string        `json:"months"`
	Categories []CategoryLabel `json:"categories"`
}

// ImportResponse reports the outcome of an ICS import.
type ImportResponse struct {
	Imported int `json:"imported" example:"12"`
	Skipped  int `json:"skipped" example:"1"`
}
