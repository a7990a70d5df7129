package model

import "testing"

func TestRoundHalfUpDiv(t *testing.T) {
	tests := []struct {
		name     string
		num, den int64
		expected int64
	}{
		{"exact", 600, 60, 10},
		{"below half rounds down", 124, 100, 1},
		{"exactly half rounds up", 150, 100, 2},
		{"above half rounds up", 151, 100, 2},
		{"zero", 0, 60, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundHalfUpDiv(tt.num, tt.den); got != tt.expected {
				t.Errorf("RoundHalfUpDiv(%d, %d) = %d, expected %d", tt.num, tt.den, got, tt.expected)
			}
		})
	}
}

func TestHourlyCharge(t *testing.T) {
	tests := []struct {
		name     string
		rate     Cents
		minutes  int
		expected Cents
	}{
		{"whole hours", 5000, 120, 10000},
		{"half hour", 5000, 30, 2500},
		{"fractional with rounding", 3333, 90, 5000}, // 3333 * 1.5 = 4999.5, half-up
		{"single minute", 6000, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HourlyCharge(tt.rate, tt.minutes); got != tt.expected {
				t.Errorf("HourlyCharge(%d, %d) = %d, expected %d", tt.rate, tt.minutes, got, tt.expected)
			}
		})
	}
}

func TestApplyBasisPoints(t *testing.T) {
	tests := []struct {
		name     string
		amount   Cents
		bp       int64
		expected Cents
	}{
		{"ten percent", 10000, 1000, 1000},
		{"fractional fee rounds half-up", 999, 1000, 100}, // 99.9 -> 100
		{"zero fee", 10000, 0, 0},
		{"overstay multiplier 1.5x", 2000, 15000, 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.ApplyBasisPoints(tt.bp); got != tt.expected {
				t.Errorf("(%d).ApplyBasisPoints(%d) = %d, expected %d", tt.amount, tt.bp, got, tt.expected)
			}
		})
	}
}

func TestCeilPeriods(t *testing.T) {
	tests := []struct {
		name       string
		days       int
		periodDays int
		expected   int
	}{
		{"exact periods", 14, 7, 2},
		{"partial period rounds up", 8, 7, 2},
		{"single day weekly unit", 1, 7, 1},
		{"daily unit", 5, 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CeilPeriods(tt.days, tt.periodDays); got != tt.expected {
				t.Errorf("CeilPeriods(%d, %d) = %d, expected %d", tt.days, tt.periodDays, got, tt.expected)
			}
		})
	}
}
