// Package grid computes the fixed six-week month layout and the day/time
// helpers shared by the event store and every presentation surface.
package grid

import "time"

const (
	// DaysPerWeek is the number of columns in the grid.
	DaysPerWeek = 7
	// Weeks is the number of rows in the grid.
	Weeks = 6
	// Cells is the constant grid size.
	Cells = DaysPerWeek * Weeks
)

// Day is one cell of the month grid.
type Day struct {
	Date           time.Time `json:"date"`
	IsCurrentMonth bool      `json:"isCurrentMonth"`
	IsToday        bool      `json:"isToday"`
}

// MonthGrid returns the 42 days shown for year/month, starting on the Monday
// on or before the first of the month. Dates are midnights in now's location.
// Month values outside 1..12 roll over the same way time.Date does.
func MonthGrid(year int, month time.Month, now time.Time) [Cells]Day {
	loc := now.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	target := first.Month()
	lead := (int(first.Weekday()) + 6) % DaysPerWeek
	anchor := first.AddDate(0, 0, -lead)

	var days [Cells]Day
	for i := range days {
		d := anchor.AddDate(0, 0, i)
		days[i] = Day{
			Date:           d,
			IsCurrentMonth: d.Month() == target,
			IsToday:        IsSameDay(d, now),
		}
	}
	return days
}

// IsSameDay reports whether a and b fall on the same calendar day.
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
