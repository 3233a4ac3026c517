package utils

import (
	"time"
)

// Day count conventions understood by YearFraction.
const (
	Act360   = "ACT/360"
	Act365F  = "ACT/365F"
	ActAct   = "ACT/ACT"
	Thirty   = "30/360"
	ThirtyE  = "30E/360"
	Act36525 = "ACT/365.25"
)

// YearFraction computes year fraction between two dates using the specified day count convention.
// Supported conventions: ACT/360, ACT/365F, ACT/365.25, ACT/ACT (ISDA), 30E/360, 30/360.
// Unknown conventions are treated as ACT/365F.
func YearFraction(start, end time.Time, convention string) float64 {
	switch convention {
	case Act360:
		return Days(start, end) / 360.0
	case Act36525:
		return Days(start, end) / 365.25
	case ActAct:
		if end.Before(start) {
			return -actActISDA(end, start)
		}
		return actActISDA(start, end)
	case ThirtyE, Thirty:
		// 30E/360 ISDA (Eurobond basis)
		// D1 and D2 are capped at 30
		d1 := min(start.Day(), 30)
		d2 := min(end.Day(), 30)
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	default:
		return Days(start, end) / 365.0
	}
}

// actActISDA splits the period at year boundaries and divides each piece by
// the length of its year.
func actActISDA(start, end time.Time) float64 {
	if start.Year() == end.Year() {
		return Days(start, end) / daysInYear(start.Year())
	}
	nextYear := time.Date(start.Year()+1, 1, 1, 0, 0, 0, 0, start.Location())
	lastYear := time.Date(end.Year(), 1, 1, 0, 0, 0, 0, end.Location())
	frac := Days(start, nextYear)/daysInYear(start.Year()) + Days(lastYear, end)/daysInYear(end.Year())
	return frac + float64(end.Year()-start.Year()-1)
}

func daysInYear(year int) float64 {
	if time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366 {
		return 366
	}
	return 365
}

// FloatingPointDate maps a date to a curve time relative to reference,
// measured in ACT/365 years.
func FloatingPointDate(reference, date time.Time) float64 {
	return Days(reference, date) / 365.0
}

// DateFromFloatingPoint is the inverse of FloatingPointDate, rounded to whole days.
func DateFromFloatingPoint(reference time.Time, t float64) time.Time {
	return reference.AddDate(0, 0, int(RoundTo(t*365.0, 0)))
}
