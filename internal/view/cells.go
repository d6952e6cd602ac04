package view

import (
	"fmt"

	"github.com/starford/daybook/internal/models"
)

const (
	// MaxCellEvents is the number of events drawn inside a day cell.
	MaxCellEvents = 3
	// MaxTitleRunes is the title length drawn before truncation.
	MaxTitleRunes = 10
)

// CellEvent is one event as drawn inside a day cell.
type CellEvent struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Color      string `json:"color"`
	IsReminder bool   `json:"isReminder"`
}

// TruncateTitle shortens titles longer than MaxTitleRunes to that many runes
// followed by "...".
func TruncateTitle(s string) string {
	r := []rune(s)
	if len(r) <= MaxTitleRunes {
		return s
	}
	return string(r[:MaxTitleRunes]) + "..."
}

// MoreLabel returns the overflow label for n hidden events.
func MoreLabel(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", n)
}

// CellEvents returns the events drawn in a cell and the number collapsed
// into the overflow label.
func CellEvents(events []models.Event) ([]CellEvent, int) {
	shown := min(len(events), MaxCellEvents)
	out := make([]CellEvent, shown)
	for i := range shown {
		ev := events[i]
		out[i] = CellEvent{
			ID:         ev.ID,
			Label:      TruncateTitle(ev.Title),
			Color:      ev.Color,
			IsReminder: ev.IsReminder,
		}
	}
	return out, len(events) - shown
}
