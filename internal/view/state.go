package view

import (
	"time"

	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/models"
)

// State is everything the calendar UI remembers between user actions.
// A zero Selected or Hovered means nothing is selected or hovered.
type State struct {
	Year     int            `json:"year"`
	Month    time.Month     `json:"month"`
	Selected time.Time      `json:"selected"`
	Hovered  time.Time      `json:"hovered"`
	Modal    Modal          `json:"modal"`
	Location *time.Location `json:"-"`
}

// Modal is the event form dialog. An empty EditingID means a new event.
type Modal struct {
	Open      bool   `json:"open"`
	EditingID string `json:"editingId,omitempty"`
}

// NewState displays now's month with nothing selected.
func NewState(now time.Time) State {
	return State{Year: now.Year(), Month: now.Month(), Location: now.Location()}
}

// HasSelection reports whether a day is selected.
func (s State) HasSelection() bool {
	return !s.Selected.IsZero()
}

// Days returns the grid for the displayed month.
func (s State) Days(now time.Time) [grid.Cells]grid.Day {
	return grid.MonthGrid(s.Year, s.Month, now.In(s.loc()))
}

func (s State) loc() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

func (s State) day(index int) time.Time {
	anchor := time.Date(s.Year, s.Month, 1, 0, 0, 0, 0, s.loc())
	return grid.MonthGrid(s.Year, s.Month, anchor)[index].Date
}

// Action is a single user interaction.
type Action interface {
	action()
}

// SelectDay selects a calendar day.
type SelectDay struct{ Date time.Time }

// NavigateMonth moves the displayed month by Delta months.
type NavigateMonth struct{ Delta int }

// MoveSelection moves the selected day by Days, following it across months.
type MoveSelection struct{ Days int }

// GoToday displays Now's month and selects Now's day.
type GoToday struct{ Now time.Time }

// Hover marks a day as under the pointer.
type Hover struct{ Date time.Time }

// ClearHover forgets the hovered day.
type ClearHover struct{}

// Click is a pointer press at X,Y on a surface described by Layout.
type Click struct {
	X, Y   float64
	Layout Layout
}

// Move is a pointer motion at X,Y on a surface described by Layout.
type Move struct {
	X, Y   float64
	Layout Layout
}

// OpenCreate opens the form for a new event, selecting Now's day when
// nothing is selected.
type OpenCreate struct{ Now time.Time }

// OpenEdit opens the form for an existing event and selects its day.
type OpenEdit struct{ Event models.Event }

// CloseModal closes the form.
type CloseModal struct{}

func (SelectDay) action()     {}
func (NavigateMonth) action() {}
func (MoveSelection) action() {}
func (GoToday) action()       {}
func (Hover) action()         {}
func (ClearHover) action()    {}
func (Click) action()         {}
func (Move) action()          {}
func (OpenCreate) action()    {}
func (OpenEdit) action()      {}
func (CloseModal) action()    {}

// Reduce returns the state that follows s after a.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SelectDay:
		s.Selected = grid.StartOfDay(a.Date.In(s.loc()))
	case NavigateMonth:
		first := time.Date(s.Year, s.Month+time.Month(a.Delta), 1, 0, 0, 0, 0, s.loc())
		s.Year, s.Month = first.Year(), first.Month()
	case MoveSelection:
		from := s.Selected
		if from.IsZero() {
			from = time.Date(s.Year, s.Month, 1, 0, 0, 0, 0, s.loc())
		}
		s.Selected = from.AddDate(0, 0, a.Days)
		s.Year, s.Month = s.Selected.Year(), s.Selected.Month()
	case GoToday:
		now := a.Now.In(s.loc())
		s.Year, s.Month = now.Year(), now.Month()
		s.Selected = grid.StartOfDay(now)
	case Hover:
		s.Hovered = grid.StartOfDay(a.Date.In(s.loc()))
	case ClearHover:
		s.Hovered = time.Time{}
	case Click:
		if i, ok := a.Layout.CellAt(a.X, a.Y); ok {
			s.Selected = s.day(i)
		}
	case Move:
		if i, ok := a.Layout.CellAt(a.X, a.Y); ok {
			s.Hovered = s.day(i)
		} else {
			s.Hovered = time.Time{}
		}
	case OpenCreate:
		if s.Selected.IsZero() {
			s.Selected = grid.StartOfDay(a.Now.In(s.loc()))
		}
		s.Modal = Modal{Open: true}
	case OpenEdit:
		s.Selected = grid.StartOfDay(a.Event.Date.In(s.loc()))
		s.Modal = Modal{Open: true, EditingID: a.Event.ID}
	case CloseModal:
		s.Modal = Modal{}
	}
	return s
}
