package model

import "testing"

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		date     string
		expected int
	}{
		{"2025-12-25", 4}, // Thursday
		{"2025-12-28", 0}, // Sunday
		{"2025-06-02", 1}, // Monday
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := WeekdayOf(tt.date)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("WeekdayOf(%s) = %d, expected %d", tt.date, got, tt.expected)
			}
		})
	}

	if _, err := WeekdayOf("25-12-2025"); err == nil {
		t.Errorf("expected error for malformed date")
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		expected   int
	}{
		{"same day", "2025-01-10", "2025-01-10", 0},
		{"five days", "2025-01-10", "2025-01-15", 5},
		{"negative when reversed", "2025-01-15", "2025-01-10", -5},
		{"across month boundary", "2025-01-30", "2025-02-02", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DaysBetween(tt.start, tt.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("DaysBetween(%s, %s) = %d, expected %d", tt.start, tt.end, got, tt.expected)
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2025-01-30", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2025-02-02" {
		t.Errorf("AddDays = %s, expected 2025-02-02", got)
	}
}

func TestMinuteLabel(t *testing.T) {
	if got := MinuteLabel(540); got != "09:00" {
		t.Errorf("MinuteLabel(540) = %s, expected 09:00", got)
	}
	if got := MinuteLabel(13*60 + 30); got != "13:30" {
		t.Errorf("MinuteLabel(810) = %s, expected 13:30", got)
	}
}
