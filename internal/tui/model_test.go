package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/daybook/internal/eventstore"
	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/testutil"
)

func newTestModel(t *testing.T) (*Model, *eventstore.Store) {
	t.Helper()
	store := testutil.Store(t, testutil.NewClock(time.Time{}))
	return New(store, grid.LocaleEN), store
}

func keys(m *Model, names ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, name := range names {
		var msg tea.KeyMsg
		switch name {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestLayoutMatchesGrid(t *testing.T) {
	m, _ := newTestModel(t)
	v := RenderGrid(m.viewModel(), DefaultStyles())
	lines := strings.Split(v, "\n")
	if len(lines) != int(Layout.Height) {
		t.Fatalf("grid has %d lines, layout expects %v", len(lines), Layout.Height)
	}
	if Layout.CellWidth() != cellCols || Layout.CellHeight() != cellRows {
		t.Errorf("cell = %vx%v", Layout.CellWidth(), Layout.CellHeight())
	}
}

func TestKeyboardNavigation(t *testing.T) {
	m, _ := newTestModel(t)
	if want := testutil.Day(2026, time.October, 19); !m.State().Selected.Equal(want) {
		t.Fatalf("initial selection = %v", m.State().Selected)
	}

	keys(m, "right")
	if want := testutil.Day(2026, time.October, 20); !m.State().Selected.Equal(want) {
		t.Errorf("right = %v", m.State().Selected)
	}
	keys(m, "down", "down")
	if want := testutil.Day(2026, time.November, 3); !m.State().Selected.Equal(want) {
		t.Errorf("down twice = %v", m.State().Selected)
	}
	if m.State().Month != time.November {
		t.Errorf("month should follow selection, got %v", m.State().Month)
	}

	keys(m, "]")
	if m.State().Month != time.December {
		t.Errorf("next month = %v", m.State().Month)
	}
	keys(m, "t")
	if m.State().Month != time.October || m.State().Selected.Day() != 19 {
		t.Errorf("today = %v %v", m.State().Month, m.State().Selected)
	}

	cmd := keys(m, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestMouse(t *testing.T) {
	m, _ := newTestModel(t)

	// Cell 22 is Tuesday 20 October: row 3, column 1.
	m.Update(tea.MouseMsg{X: cellCols + 1, Y: headerRows + 3*cellRows + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if want := testutil.Day(2026, time.October, 20); !m.State().Selected.Equal(want) {
		t.Errorf("click selected %v", m.State().Selected)
	}

	m.Update(tea.MouseMsg{X: 1, Y: headerRows, Action: tea.MouseActionMotion})
	if want := testutil.Day(2026, time.September, 28); !m.State().Hovered.Equal(want) {
		t.Errorf("hovered %v", m.State().Hovered)
	}
	m.Update(tea.MouseMsg{X: 1, Y: 0, Action: tea.MouseActionMotion})
	if !m.State().Hovered.IsZero() {
		t.Error("hover over the title should clear")
	}

	m.Update(tea.MouseMsg{X: 1, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if want := testutil.Day(2026, time.October, 20); !m.State().Selected.Equal(want) {
		t.Error("click on the title changed the selection")
	}
}

func TestCreateEvent(t *testing.T) {
	m, store := newTestModel(t)

	keys(m, "a")
	if m.form == nil || !m.State().Modal.Open {
		t.Fatal("form not opened")
	}
	keys(m, "Standup", "enter")
	if m.form != nil {
		t.Fatalf("form still open: %v", m.form.errs)
	}
	evs := store.EventsOnDay(testutil.Day(2026, time.October, 19))
	if len(evs) != 1 || evs[0].Title != "Standup" || evs[0].StartTime != "09:00" {
		t.Fatalf("events = %+v", evs)
	}
	if m.State().Modal.Open {
		t.Error("modal state still open")
	}
	if !strings.Contains(m.View(), "Standup") {
		t.Error("view does not show the new event")
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	m, store := newTestModel(t)

	keys(m, "a", "enter")
	if m.form == nil {
		t.Fatal("invalid form was accepted")
	}
	if m.form.errs["title"] != eventstore.MsgTitleRequired {
		t.Errorf("errors = %v", m.form.errs)
	}

	m.form.inputs[fieldTitle].SetValue("Standup")
	m.form.inputs[fieldDate].SetValue("2026-13-45")
	keys(m, "enter")
	if m.form == nil || m.form.errs["date"] != "invalid date" {
		t.Fatalf("bad date accepted")
	}

	m.form.inputs[fieldDate].SetValue("2026-10-21")
	m.form.inputs[fieldEnd].SetValue("08:00")
	keys(m, "enter")
	if m.form == nil || m.form.errs["endTime"] != eventstore.MsgEndBeforeStart {
		t.Fatalf("errors = %v", m.form.errs)
	}
	if !strings.Contains(m.View(), eventstore.MsgEndBeforeStart) {
		t.Error("error not rendered")
	}

	keys(m, "esc")
	if m.form != nil || m.State().Modal.Open || store.Len() != 0 {
		t.Error("esc should discard the form")
	}
}

func TestReminderToggle(t *testing.T) {
	m, store := newTestModel(t)

	keys(m, "a", "Call")
	for range fieldReminder {
		keys(m, "tab")
	}
	keys(m, " ", "enter")
	evs := store.UpcomingReminders(testutil.ReferenceTime())
	if len(evs) != 1 || evs[0].Title != "Call" {
		t.Fatalf("reminders = %+v", evs)
	}
}

func TestEditAndDelete(t *testing.T) {
	m, store := newTestModel(t)
	day := testutil.Day(2026, time.October, 19)
	ev := testutil.MustCreate(t, store, testutil.Input("Review", day, "14:00", "15:00"))

	keys(m, "e")
	if m.form == nil || m.form.editingID != ev.ID || m.State().Modal.EditingID != ev.ID {
		t.Fatal("edit form not opened")
	}
	if got := m.form.inputs[fieldTitle].Value(); got != "Review" {
		t.Errorf("prefilled title = %q", got)
	}
	m.form.inputs[fieldTitle].SetValue("Design review")
	keys(m, "enter")
	got, err := store.Get(t.Context(), ev.ID)
	if err != nil || got.Title != "Design review" || got.StartTime != "14:00" {
		t.Fatalf("updated = %+v, %v", got, err)
	}

	keys(m, "d")
	if store.Len() != 0 {
		t.Error("event not deleted")
	}
	if !strings.Contains(m.View(), "Deleted: Design review") {
		t.Error("delete message missing")
	}

	keys(m, "e", "d")
	if m.form != nil {
		t.Error("edit on an empty day opened a form")
	}
}
