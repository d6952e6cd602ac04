// Package tui is the terminal calendar: a bubbletea program drawing the
// month grid, the selected day's events and the upcoming reminders.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/daybook/internal/eventstore"
	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/models"
	"github.com/starford/daybook/internal/view"
)

// refreshEvery redraws the screen so "today" and the reminder list follow
// the clock and changes made by other surfaces.
const refreshEvery = 30 * time.Second

type tickMsg time.Time

var helpText = map[grid.Locale]string{
	grid.LocaleZH: "←→↑↓ 选择  [ ] 切换月份  t 今天  a 新建  e 编辑  d 删除  q 退出",
	grid.LocaleEN: "←→↑↓ select  [ ] month  t today  a add  e edit  d delete  q quit",
}

var formHelp = map[grid.Locale]string{
	grid.LocaleZH: "tab 下一项  空格 切换提醒  enter 保存  esc 取消",
	grid.LocaleEN: "tab next  space toggle reminder  enter save  esc cancel",
}

var formTitles = map[grid.Locale][2]string{
	grid.LocaleZH: {"新建活动", "编辑活动"},
	grid.LocaleEN: {"New event", "Edit event"},
}

// Model is the bubbletea model of the terminal calendar.
type Model struct {
	store   *eventstore.Store
	state   view.State
	locale  grid.Locale
	styles  Styles
	form    *form
	message string
	width   int
	height  int
}

// New returns a model showing today's month with today selected.
func New(store *eventstore.Store, locale grid.Locale) *Model {
	now := store.Now()
	return &Model{
		store:  store,
		state:  view.Reduce(view.NewState(now), view.GoToday{Now: now}),
		locale: locale.Or(),
		styles: DefaultStyles(),
	}
}

// Run starts the program on the alternate screen with mouse tracking and
// blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

// State returns the current UI state.
func (m *Model) State() view.State {
	return m.state
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	case tea.KeyMsg:
		if m.form != nil {
			return m.handleFormKey(msg)
		}
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m *Model) dispatch(a view.Action) {
	m.state = view.Reduce(m.state, a)
}

func (m *Model) handleMouse(msg tea.MouseMsg) *Model {
	if m.form != nil {
		return m
	}
	x, y := float64(msg.X), float64(msg.Y)
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dispatch(view.Click{X: x, Y: y, Layout: Layout})
	case msg.Action == tea.MouseActionMotion:
		m.dispatch(view.Move{X: x, Y: y, Layout: Layout})
	}
	return m
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.dispatch(view.MoveSelection{Days: -1})
	case "right", "l":
		m.dispatch(view.MoveSelection{Days: 1})
	case "up", "k":
		m.dispatch(view.MoveSelection{Days: -grid.DaysPerWeek})
	case "down", "j":
		m.dispatch(view.MoveSelection{Days: grid.DaysPerWeek})
	case "[", "pgup":
		m.dispatch(view.NavigateMonth{Delta: -1})
	case "]", "pgdown":
		m.dispatch(view.NavigateMonth{Delta: 1})
	case "t":
		m.dispatch(view.GoToday{Now: m.store.Now()})
	case "a", "n":
		m.dispatch(view.OpenCreate{Now: m.store.Now()})
		m.form = newForm(models.DefaultInput(m.state.Selected), "", m.store.Location())
	case "e", "enter":
		if ev, ok := m.firstOfDay(); ok {
			m.dispatch(view.OpenEdit{Event: ev})
			m.form = newForm(models.InputFrom(ev), ev.ID, m.store.Location())
		}
	case "d", "delete":
		if ev, ok := m.firstOfDay(); ok {
			m.store.Delete(context.Background(), ev.ID)
			m.message = fmt.Sprintf("%s: %s", deletedText[m.locale], ev.Title)
		}
	}
	return m, nil
}

var deletedText = map[grid.Locale]string{
	grid.LocaleZH: "已删除",
	grid.LocaleEN: "Deleted",
}

var savedText = map[grid.Locale]string{
	grid.LocaleZH: "已保存",
	grid.LocaleEN: "Saved",
}

func (m *Model) firstOfDay() (models.Event, bool) {
	if !m.state.HasSelection() {
		return models.Event{}, false
	}
	evs := m.store.EventsOnDay(m.state.Selected)
	if len(evs) == 0 {
		return models.Event{}, false
	}
	return evs[0], true
}

func (m *Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.closeForm()
		return m, nil
	}
	submit, cmd := m.form.update(msg)
	if !submit {
		return m, cmd
	}

	in, err := m.form.input()
	if err == nil {
		var ev models.Event
		ctx := context.Background()
		if m.form.editingID == "" {
			ev, err = m.store.Create(ctx, in)
		} else {
			ev, err = m.store.Update(ctx, m.form.editingID, in)
		}
		if err == nil {
			m.closeForm()
			m.dispatch(view.SelectDay{Date: ev.Date})
			m.message = fmt.Sprintf("%s: %s", savedText[m.locale], ev.Title)
			return m, nil
		}
	}
	if !m.form.fail(err) {
		m.message = err.Error()
	}
	return m, nil
}

func (m *Model) closeForm() {
	m.form = nil
	m.dispatch(view.CloseModal{})
}

func (m *Model) viewModel() view.MonthView {
	return view.BuildMonth(m.state, m.store, m.store.Now(), m.locale)
}

// View implements tea.Model.
func (m *Model) View() string {
	v := m.viewModel()

	var body string
	if m.form != nil {
		title := formTitles[m.locale][0]
		if m.form.editingID != "" {
			title = formTitles[m.locale][1]
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			RenderGrid(v, m.styles), " ", m.form.view(m.styles, m.locale, title))
		return lipgloss.JoinVertical(lipgloss.Left, body, m.styles.Help.Render(formHelp[m.locale]))
	}

	body = Render(v, m.styles, m.locale)
	footer := m.styles.Help.Render(helpText[m.locale])
	if m.message != "" {
		footer = lipgloss.JoinVertical(lipgloss.Left, m.styles.Message.Render(m.message), footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}
