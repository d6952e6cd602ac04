package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/daybook/internal/apperr"
	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/models"
)

// Form fields in tab order. fieldReminder is a checkbox, the rest are text.
const (
	fieldTitle = iota
	fieldDate
	fieldStart
	fieldEnd
	fieldCategory
	fieldDescription
	fieldReminder
	fieldCount
)

// errKeys maps form fields to the keys validation errors are reported under.
var errKeys = [fieldCount]string{
	fieldTitle:       "title",
	fieldDate:        "date",
	fieldStart:       "startTime",
	fieldEnd:         "endTime",
	fieldCategory:    "category",
	fieldDescription: "description",
	fieldReminder:    "isReminder",
}

type formLabels [fieldCount]string

var labels = map[grid.Locale]formLabels{
	grid.LocaleZH: {"标题", "日期", "开始", "结束", "类别", "描述", "提醒"},
	grid.LocaleEN: {"Title", "Date", "Start", "End", "Category", "Description", "Reminder"},
}

// form edits one event. Submit returns the payload or per-field errors.
type form struct {
	editingID string
	inputs    [fieldReminder]textinput.Model
	reminder  bool
	focus     int
	errs      map[string]string
	loc       *time.Location
}

func newForm(in models.EventInput, editingID string, loc *time.Location) *form {
	f := &form{editingID: editingID, loc: loc}
	values := [fieldReminder]string{
		fieldTitle:       in.Title,
		fieldStart:       in.StartTime,
		fieldEnd:         in.EndTime,
		fieldCategory:    string(in.Category),
		fieldDescription: in.Description,
	}
	if !in.Date.IsZero() {
		values[fieldDate] = in.Date.Format(models.DateLayout)
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		ti.Width = 30
		ti.SetValue(values[i])
		f.inputs[i] = ti
	}
	f.inputs[fieldDate].Placeholder = models.DateLayout
	f.inputs[fieldStart].Placeholder = "09:00"
	f.inputs[fieldEnd].Placeholder = "10:00"
	f.inputs[fieldCategory].Placeholder = "personal|work|reminder|holiday"
	f.reminder = in.IsReminder
	f.setFocus(fieldTitle)
	return f
}

func (f *form) setFocus(i int) {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

// update handles navigation and typing. It reports true when the user asked
// to submit.
func (f *form) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return false, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return false, nil
	case "enter":
		return true, nil
	case " ", "x":
		if f.focus == fieldReminder {
			f.reminder = !f.reminder
			return false, nil
		}
	}
	if f.focus == fieldReminder {
		return false, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return false, cmd
}

// input parses the text fields. An unparsable date is reported as a
// validation error so it renders next to the field.
func (f *form) input() (models.EventInput, error) {
	in := models.EventInput{
		Title:       f.inputs[fieldTitle].Value(),
		StartTime:   strings.TrimSpace(f.inputs[fieldStart].Value()),
		EndTime:     strings.TrimSpace(f.inputs[fieldEnd].Value()),
		Category:    models.Category(strings.ToLower(strings.TrimSpace(f.inputs[fieldCategory].Value()))),
		Description: f.inputs[fieldDescription].Value(),
		IsReminder:  f.reminder,
	}
	if raw := strings.TrimSpace(f.inputs[fieldDate].Value()); raw != "" {
		d, err := time.ParseInLocation(models.DateLayout, raw, f.loc)
		if err != nil {
			ve := &apperr.ValidationError{}
			ve.Add("date", "invalid date")
			return in, ve
		}
		in.Date = d
	}
	return in, nil
}

// fail records field errors from err. It reports false when err carries none.
func (f *form) fail(err error) bool {
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || !ve.HasErrors() {
		return false
	}
	f.errs = ve.Fields
	return true
}

func (f *form) view(st Styles, locale grid.Locale, heading string) string {
	names := labels[locale.Or()]
	var b strings.Builder
	b.WriteString(st.Heading.Render(heading))
	b.WriteString("\n\n")
	for i := range fieldCount {
		label := names[i]
		if i == f.focus {
			label = st.Focused.Render("› " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(label + "\n    ")
		if i == fieldReminder {
			box := "[ ]"
			if f.reminder {
				box = "[x]"
			}
			b.WriteString(box)
		} else {
			b.WriteString(f.inputs[i].View())
		}
		b.WriteString("\n")
		if msg := f.errs[errKeys[i]]; msg != "" {
			b.WriteString("    " + st.Error.Render(msg) + "\n")
		}
	}
	return st.Panel.Render(b.String())
}
