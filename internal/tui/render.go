package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/models"
	"github.com/starford/daybook/internal/view"
)

// Terminal grid geometry, in character cells.
const (
	cellCols   = 15
	cellRows   = 2 + view.MaxCellEvents // day number, events, "+N more"
	headerRows = 2                      // title, weekday labels
	panelCols  = 38
)

// Layout maps terminal coordinates onto the month grid drawn by Render.
var Layout = view.Layout{
	Width:        grid.DaysPerWeek * cellCols,
	Height:       headerRows + grid.Weeks*cellRows,
	HeaderHeight: headerRows,
}

type panelStrings struct {
	events, noEvents, reminders, noReminders, selectDay string
}

var panelText = map[grid.Locale]panelStrings{
	grid.LocaleZH: {"当日活动", "没有活动", "即将到来的提醒", "没有提醒", "选择一天查看活动"},
	grid.LocaleEN: {"Events", "No events", "Upcoming reminders", "No reminders", "Select a day to see its events"},
}

// Render draws the month grid with the day panel beside it. The grid starts
// at the top-left corner so Layout can hit-test terminal mouse positions.
func Render(v view.MonthView, st Styles, locale grid.Locale) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, RenderGrid(v, st), " ", renderPanel(v, st, locale))
}

// RenderGrid draws the title, weekday labels and the 6x7 cells.
func RenderGrid(v view.MonthView, st Styles) string {
	width := int(Layout.Width)
	lines := []string{
		st.Title.Width(width).Align(lipgloss.Center).Render(v.Title),
	}

	labels := make([]string, len(v.Weekdays))
	for i, w := range v.Weekdays {
		labels[i] = st.Weekday.Width(cellCols).Render(w)
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labels...))

	for week := range grid.Weeks {
		row := make([]string, grid.DaysPerWeek)
		for d := range grid.DaysPerWeek {
			row[d] = renderCell(v.Cells[week*grid.DaysPerWeek+d], st)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderCell(c view.Cell, st Styles) string {
	clip := lipgloss.NewStyle().MaxWidth(cellCols - 1)

	num := fmt.Sprintf("%2d", c.Day)
	switch {
	case c.IsToday:
		num = st.Today.Render(num + " •")
	case !c.IsCurrentMonth:
		num = st.Outside.Render(num)
	}
	lines := []string{num}
	for _, ev := range c.Events {
		mark := "▪"
		if ev.IsReminder {
			mark = "●"
		}
		lines = append(lines, clip.Render(category(ev.Color).Render(mark+" "+ev.Label)))
	}
	if c.MoreLabel != "" {
		lines = append(lines, st.More.Render(c.MoreLabel))
	}

	box := st.Day
	switch {
	case c.IsSelected:
		box = st.Selected
	case c.IsHovered:
		box = st.Hovered
	}
	return box.Width(cellCols).Height(cellRows).MaxHeight(cellRows).Render(strings.Join(lines, "\n"))
}

func renderPanel(v view.MonthView, st Styles, locale grid.Locale) string {
	txt := panelText[locale.Or()]
	var b strings.Builder

	if v.Selected == "" {
		b.WriteString(st.Muted.Render(txt.selectDay))
	} else {
		b.WriteString(st.Heading.Render(v.SelectedDay))
		b.WriteString("\n")
		b.WriteString(st.Muted.Render(txt.events))
		if len(v.DayEvents) == 0 {
			b.WriteString("\n" + st.Muted.Render(txt.noEvents))
		}
		for _, ev := range v.DayEvents {
			b.WriteString("\n" + eventLine(ev, locale))
		}
	}

	b.WriteString("\n\n" + st.Heading.Render(txt.reminders))
	if len(v.Reminders) == 0 {
		b.WriteString("\n" + st.Muted.Render(txt.noReminders))
	}
	for _, ev := range v.Reminders {
		b.WriteString(fmt.Sprintf("\n%s %s", ev.Date.Format(models.DateLayout), eventLine(ev, locale)))
	}
	return st.Panel.Width(panelCols).Render(b.String())
}

func eventLine(ev models.Event, locale grid.Locale) string {
	tag := category(ev.Color).Render("[" + ev.Category.Label(locale) + "]")
	return fmt.Sprintf("%s-%s %s %s", ev.StartTime, ev.EndTime, ev.Title, tag)
}
