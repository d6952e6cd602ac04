// Package icalx converts between calendar events and iCalendar (RFC 5545)
// documents.
package icalx

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/starford/daybook/internal/models"
)

// ProductID is written as the PRODID of exported calendars.
const ProductID = "-//daybook//Calendar//EN"

// Calendar builds a VCALENDAR holding one VEVENT per event. now is used as
// DTSTAMP.
func Calendar(events []models.Event, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	stamp := now.UTC()
	for _, ev := range events {
		cal.Children = append(cal.Children, vevent(ev, stamp))
	}
	return cal
}

func vevent(ev models.Event, stamp time.Time) *ical.Component {
	ve := ical.NewEvent()
	ve.Props.SetText(ical.PropUID, ev.ID)
	ve.Props.SetText(ical.PropSummary, ev.Title)
	if ev.Description != "" {
		ve.Props.SetText(ical.PropDescription, ev.Description)
	}
	ve.Props.SetDateTime(ical.PropDateTimeStart, ev.StartsAt().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, ev.EndsAt().UTC())
	ve.Props.SetText(ical.PropCategories, string(ev.Category))
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp)

	if ev.IsReminder {
		alarm := ical.NewComponent(ical.CompAlarm)
		alarm.Props.SetText(ical.PropAction, "DISPLAY")
		alarm.Props.SetText(ical.PropDescription, ev.Title)
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = "PT0S"
		alarm.Props.Set(trigger)
		ve.Children = append(ve.Children, alarm)
	}
	return ve.Component
}

// Encode writes events as an iCalendar document.
func Encode(w io.Writer, events []models.Event, now time.Time) error {
	// go-ical refuses to encode a VCALENDAR without components.
	if len(events) == 0 {
		_, err := io.WriteString(w, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:"+ProductID+"\r\nEND:VCALENDAR\r\n")
		return err
	}
	if err := ical.NewEncoder(w).Encode(Calendar(events, now)); err != nil {
		return fmt.Errorf("icalx: encode: %w", err)
	}
	return nil
}
