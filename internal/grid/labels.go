package grid

import (
	"fmt"
	"time"
)

// Locale selects one of the fixed label tables.
type Locale string

// Supported locales.
const (
	LocaleZH Locale = "zh"
	LocaleEN Locale = "en"
)

var weekdays = map[Locale][DaysPerWeek]string{
	LocaleZH: {"周一", "周二", "周三", "周四", "周五", "周六", "周日"},
	LocaleEN: {"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
}

var monthNames = map[Locale][12]string{
	LocaleZH: {"一月", "二月", "三月", "四月", "五月", "六月", "七月", "八月", "九月", "十月", "十一月", "十二月"},
	LocaleEN: {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
}

// Valid reports whether l has label tables.
func (l Locale) Valid() bool {
	_, ok := weekdays[l]
	return ok
}

// Or returns l when valid, otherwise zh.
func (l Locale) Or() Locale {
	if l.Valid() {
		return l
	}
	return LocaleZH
}

// Weekdays returns Monday-first weekday labels.
func Weekdays(l Locale) []string {
	w := weekdays[l.Or()]
	return w[:]
}

// MonthNames returns January-first month labels.
func MonthNames(l Locale) []string {
	m := monthNames[l.Or()]
	return m[:]
}

// MonthTitle returns the header shown above the grid.
func MonthTitle(l Locale, year int, month time.Month) string {
	name := monthNames[l.Or()][(int(month)+11)%12]
	if l.Or() == LocaleZH {
		return fmt.Sprintf("%d年 %s", year, name)
	}
	return fmt.Sprintf("%s %d", name, year)
}

// DayTitle returns the heading for a selected day.
func DayTitle(l Locale, d time.Time) string {
	if l.Or() == LocaleZH {
		return fmt.Sprintf("%d年%d月%d日", d.Year(), int(d.Month()), d.Day())
	}
	return d.Format("Monday, 2 January 2006")
}
