package model

import (
	"fmt"
	"time"
)

// DateLayout is the canonical wire and storage format for calendar dates.
// Dates are timezone-free; intra-day times are minutes from midnight.
const DateLayout = "2006-01-02"

const MinutesPerDay = 24 * 60

func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

func IsValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

// WeekdayOf returns the day of week for a date, 0=Sunday through 6=Saturday.
func WeekdayOf(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// DaysBetween returns end minus start in whole days. Negative when end
// precedes start.
func DaysBetween(start, end string) (int, error) {
	s, err := ParseDate(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return 0, err
	}
	return int(e.Sub(s).Hours() / 24), nil
}

func AddDays(date string, days int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(DateLayout), nil
}

// MinuteLabel renders a minute-of-day as "15:04" for presentation.
func MinuteLabel(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
