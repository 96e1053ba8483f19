package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

// Date builds a calendar date at UTC midnight.
func Date(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf drops the clock part of t, keeping its calendar day.
func DateOf(t time.Time) datatypes.Date {
	return Date(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD.
func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return datatypes.Date{}, err
	}
	return DateOf(t), nil
}

func DatePtr(d datatypes.Date) *datatypes.Date { return &d }

func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}

// DaysBetween returns b - a in whole days.
func DaysBetween(a, b datatypes.Date) int {
	return int(time.Time(DateOf(time.Time(b))).Sub(time.Time(DateOf(time.Time(a)))).Hours() / 24)
}

func DateBefore(a, b datatypes.Date) bool {
	return time.Time(DateOf(time.Time(a))).Before(time.Time(DateOf(time.Time(b))))
}

func SameDate(a, b datatypes.Date) bool {
	return time.Time(DateOf(time.Time(a))).Equal(time.Time(DateOf(time.Time(b))))
}

// LastDayOfMonth returns the final calendar day of month in year.
func LastDayOfMonth(year int, month time.Month) datatypes.Date {
	return DateOf(time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC))
}
