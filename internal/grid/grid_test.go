package grid

import (
	"testing"
	"time"
)

func TestMonthGrid_ShapeForEveryMonth(t *testing.T) {
	now := time.Date(2026, time.October, 19, 15, 4, 0, 0, time.UTC)
	for year := 2023; year <= 2029; year++ {
		for m := time.January; m <= time.December; m++ {
			days := MonthGrid(year, m, now)
			if len(days) != 42 {
				t.Fatalf("%d-%02d: len = %d", year, m, len(days))
			}
			for i := 1; i < len(days); i++ {
				want := days[i-1].Date.AddDate(0, 0, 1)
				if !days[i].Date.Equal(want) {
					t.Fatalf("%d-%02d: day %d = %v, want %v", year, m, i, days[i].Date, want)
				}
			}
			for i := 0; i < len(days); i += 7 {
				if days[i].Date.Weekday() != time.Monday {
					t.Fatalf("%d-%02d: day %d is %v, want Monday", year, m, i, days[i].Date.Weekday())
				}
			}
			first := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
			found := false
			for _, d := range days[:7] {
				if d.Date.Equal(first) {
					found = true
				}
			}
			if !found {
				t.Fatalf("%d-%02d: first of month not in first week", year, m)
			}
		}
	}
}

func TestMonthGrid_MondayFirstHasNoLeadDays(t *testing.T) {
	// 1 June 2026 is a Monday.
	days := MonthGrid(2026, time.June, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if days[0].Date.Day() != 1 || !days[0].IsCurrentMonth {
		t.Errorf("day 0 = %v (current=%v), want 1 June", days[0].Date, days[0].IsCurrentMonth)
	}
	// June has 30 days; the remaining 12 cells trail into July.
	trail := 0
	for _, d := range days {
		if !d.IsCurrentMonth {
			trail++
		}
	}
	if trail != 12 {
		t.Errorf("trail days = %d, want 12", trail)
	}
}

func TestMonthGrid_LeadDaysAndToday(t *testing.T) {
	now := time.Date(2026, time.October, 19, 23, 59, 0, 0, time.UTC)
	days := MonthGrid(2026, time.October, now)
	// 1 October 2026 is a Thursday: three lead days from September.
	for i := 0; i < 3; i++ {
		if days[i].IsCurrentMonth || days[i].Date.Month() != time.September {
			t.Errorf("day %d = %v, want September lead day", i, days[i].Date)
		}
	}
	if !days[3].IsCurrentMonth || days[3].Date.Day() != 1 {
		t.Errorf("day 3 = %v, want 1 October", days[3].Date)
	}
	today := 0
	for i, d := range days {
		if d.IsToday {
			today++
			if i != 21 {
				t.Errorf("today at index %d, want 21", i)
			}
		}
	}
	if today != 1 {
		t.Errorf("today count = %d, want 1", today)
	}
}

func TestMonthGrid_RollsOverYearAndLeapFebruary(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := MonthGrid(2024, time.February, now)
	count := 0
	for _, d := range feb {
		if d.IsCurrentMonth {
			count++
		}
	}
	if count != 29 {
		t.Errorf("Feb 2024 current days = %d, want 29", count)
	}

	thirteenth := MonthGrid(2025, 13, now)
	if thirteenth[len(thirteenth)-1].Date.Year() != 2026 {
		t.Errorf("month 13 should roll into 2026, got %v", thirteenth[41].Date)
	}
	dec := MonthGrid(2025, time.December, now)
	if last := dec[41].Date; last.Year() != 2026 || last.Month() != time.January {
		t.Errorf("December trail = %v, want January 2026", last)
	}
}

func TestIsSameDay(t *testing.T) {
	d := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	if !IsSameDay(d, d) {
		t.Error("a day should equal itself")
	}
	if !IsSameDay(d, time.Date(2026, 3, 5, 23, 59, 0, 0, time.UTC)) {
		t.Error("time of day must be ignored")
	}
	for _, other := range []time.Time{
		time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 5, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC),
	} {
		if IsSameDay(d, other) {
			t.Errorf("IsSameDay(%v, %v) = true", d, other)
		}
	}
}

func TestIsValidTimeFormat(t *testing.T) {
	for _, s := range []string{"09:00", "23:59", "9:30", "00:00", "19:05"} {
		if !IsValidTimeFormat(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []string{"24:00", "12:60", "abc", "", "9:5", "09:00:00", " 09:00"} {
		if IsValidTimeFormat(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestCompareTime(t *testing.T) {
	if CompareTime("09:00", "10:00") >= 0 {
		t.Error("09:00 should be before 10:00")
	}
	if CompareTime("10:00", "09:00") <= 0 {
		t.Error("10:00 should be after 09:00")
	}
	if CompareTime("09:00", "09:00") != 0 {
		t.Error("equal times should compare 0")
	}
	if CompareTime("9:30", "09:30") != 0 {
		t.Error("leading zero must not matter")
	}
	if CompareTime("bad", "00:00") >= 0 {
		t.Error("unparseable time should sort first")
	}
}

func TestClock(t *testing.T) {
	c, err := ParseClock("7:05")
	if err != nil {
		t.Fatal(err)
	}
	if c.Minutes() != 425 || c.String() != "07:05" {
		t.Errorf("clock = %+v (%s)", c, c)
	}
	at := c.On(time.Date(2026, 2, 3, 22, 0, 0, 0, time.UTC))
	if !at.Equal(time.Date(2026, 2, 3, 7, 5, 0, 0, time.UTC)) {
		t.Errorf("On = %v", at)
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Error("expected error")
	}
	if FormatTime("") != "" || FormatTime("9:00") != "09:00" {
		t.Error("FormatTime mismatch")
	}
}

func TestLabels(t *testing.T) {
	if w := Weekdays(LocaleEN); w[0] != "Mon" || w[6] != "Sun" {
		t.Errorf("en weekdays = %v", w)
	}
	if w := Weekdays("xx"); w[0] != "周一" {
		t.Errorf("unknown locale should fall back to zh, got %v", w)
	}
	if m := MonthNames(LocaleZH); len(m) != 12 || m[0] != "一月" {
		t.Errorf("zh months = %v", m)
	}
	if got := MonthTitle(LocaleZH, 2026, time.October); got != "2026年 十月" {
		t.Errorf("zh title = %q", got)
	}
	if got := MonthTitle(LocaleEN, 2026, time.January); got != "January 2026" {
		t.Errorf("en title = %q", got)
	}
	if got := DayTitle(LocaleZH, time.Date(2026, 10, 9, 0, 0, 0, 0, time.UTC)); got != "2026年10月9日" {
		t.Errorf("zh day title = %q", got)
	}
}
