package icalx

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/models"
)

// AllDayEnd is the end time given to all-day and multi-day events.
const AllDayEnd = "23:59"

var errNoStart = errors.New("missing DTSTART")

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

// Decode parses an iCalendar document into event inputs whose days and
// wall clocks are expressed in loc. VEVENTs that cannot be converted are
// counted in skipped.
func Decode(r io.Reader, loc *time.Location) (inputs []models.EventInput, skipped int, err error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, 0, fmt.Errorf("icalx: parse: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	for _, ve := range cal.Events() {
		in, err := toInput(ve, loc)
		if err != nil {
			skipped++
			continue
		}
		inputs = append(inputs, in)
	}
	return inputs, skipped, nil
}

func toInput(ve *ical.VEvent, loc *time.Location) (models.EventInput, error) {
	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil || startProp.Value == "" {
		return models.EventInput{}, errNoStart
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return models.EventInput{}, fmt.Errorf("DTSTART: %w", err)
	}

	in := models.EventInput{
		Title:       propText(ve, ical.ComponentPropertySummary),
		Description: propText(ve, ical.ComponentPropertyDescription),
		IsReminder:  hasAlarm(ve),
	}

	allDay := isDateValue(startProp)
	if allDay {
		// DATE values carry no zone; keep the written day.
		y, m, d := start.Date()
		in.Date = time.Date(y, m, d, 0, 0, 0, 0, loc)
		in.StartTime, in.EndTime = "00:00", AllDayEnd
	} else {
		start = start.In(loc)
		in.Date = grid.StartOfDay(start)
		in.StartTime = start.Format("15:04")
		in.EndTime = endClock(ve, start, loc)
	}
	in.Category = category(ve, allDay)
	return in, nil
}

// endClock is the wall clock of DTEND, or AllDayEnd when the event has no
// usable end or runs past its start day.
func endClock(ve *ical.VEvent, start time.Time, loc *time.Location) string {
	end, err := ve.GetEndAt()
	if err != nil || end.IsZero() {
		return AllDayEnd
	}
	end = end.In(loc)
	if !grid.IsSameDay(start, end) {
		return AllDayEnd
	}
	return end.Format("15:04")
}

func category(ve *ical.VEvent, allDay bool) models.Category {
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, v := range strings.Split(p.Value, ",") {
			c := models.Category(strings.ToLower(strings.TrimSpace(textUnescaper.Replace(v))))
			if c.Valid() {
				return c
			}
		}
	}
	if allDay {
		return models.CategoryHoliday
	}
	return models.CategoryPersonal
}

func hasAlarm(ve *ical.VEvent) bool {
	for _, c := range ve.Components {
		if _, ok := c.(*ical.VAlarm); ok {
			return true
		}
	}
	return false
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func propText(ve *ical.VEvent, name ical.ComponentProperty) string {
	p := ve.GetProperty(name)
	if p == nil {
		return ""
	}
	return strings.TrimSpace(textUnescaper.Replace(p.Value))
}
