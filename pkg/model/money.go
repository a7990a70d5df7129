package model

// Cents is a monetary amount in minor currency units. All engine arithmetic
// stays in this type; conversion to display strings happens only at the
// presentation boundary.
type Cents int64

// BasisPointDenominator: 10000 bp == 100%.
const BasisPointDenominator = 10000

// RoundHalfUpDiv divides num by den rounding half away from zero. den must be
// positive.
func RoundHalfUpDiv(num, den int64) int64 {
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}

// ApplyBasisPoints returns c scaled by bp basis points, rounded half-up.
func (c Cents) ApplyBasisPoints(bp int64) Cents {
	return Cents(RoundHalfUpDiv(int64(c)*bp, BasisPointDenominator))
}

// HourlyCharge prices a possibly fractional duration at an hourly rate:
// round(rate x minutes / 60), half-up.
func HourlyCharge(hourlyRate Cents, minutes int) Cents {
	return Cents(RoundHalfUpDiv(int64(hourlyRate)*int64(minutes), 60))
}

// CeilPeriods returns the number of billing periods covering days. Partial
// periods round up.
func CeilPeriods(days, periodDays int) int {
	if periodDays <= 0 {
		periodDays = 1
	}
	return (days + periodDays - 1) / periodDays
}
