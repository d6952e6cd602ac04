package grid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var timeRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// IsValidTimeFormat reports whether s is HH:MM (or H:MM) on a 24h clock.
func IsValidTimeFormat(s string) bool {
	return timeRe.MatchString(s)
}

// ParseClock parses an HH:MM string.
func ParseClock(s string) (Clock, error) {
	if !IsValidTimeFormat(s) {
		return Clock{}, fmt.Errorf("grid: invalid time %q", s)
	}
	hh, mm, _ := strings.Cut(s, ":")
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return Clock{Hour: h, Minute: m}, nil
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// On returns date's calendar day at this wall-clock time, in date's location.
func (c Clock) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, date.Location())
}

// String formats the clock as zero-padded HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// CompareTime returns a negative, zero or positive number as a is before,
// equal to or after b. Unparseable strings count as -1 minutes.
func CompareTime(a, b string) int {
	return minutes(a) - minutes(b)
}

func minutes(s string) int {
	c, err := ParseClock(s)
	if err != nil {
		return -1
	}
	return c.Minutes()
}

// FormatTime normalises an HH:MM string for display. Empty input stays empty.
func FormatTime(s string) string {
	if s == "" {
		return ""
	}
	c, err := ParseClock(s)
	if err != nil {
		return s
	}
	return c.String()
}
