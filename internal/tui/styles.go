package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds every lipgloss style the calendar is drawn with.
type Styles struct {
	Title    lipgloss.Style
	Weekday  lipgloss.Style
	Day      lipgloss.Style
	Outside  lipgloss.Style
	Today    lipgloss.Style
	Selected lipgloss.Style
	Hovered  lipgloss.Style
	More     lipgloss.Style
	Panel    lipgloss.Style
	Heading  lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Message  lipgloss.Style
	Focused  lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true),
		Weekday: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Bold(true),
		Day: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Outside: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		Today: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("24")),
		Hovered: lipgloss.NewStyle().
			Background(lipgloss.Color("236")),
		More: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true),
		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1),
		Heading: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		Focused: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")),
	}
}

// category paints text in an event's category color.
func category(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
