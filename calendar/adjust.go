package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meenmo/mocurve/utils"
)

// BusinessDayConvention rolls a non-business day onto a business day.
type BusinessDayConvention string

const (
	Unadjusted        BusinessDayConvention = "UNADJUSTED"
	Following         BusinessDayConvention = "FOLLOWING"
	ModifiedFollowing BusinessDayConvention = "MODIFIED_FOLLOWING"
	Preceding         BusinessDayConvention = "PRECEDING"
	ModifiedPreceding BusinessDayConvention = "MODIFIED_PRECEDING"
)

// AdjustWith applies the given business day convention.
func AdjustWith(cal CalendarID, t time.Time, roll BusinessDayConvention) time.Time {
	switch roll {
	case Unadjusted:
		return t
	case Following:
		return rollForward(cal, t)
	case Preceding:
		return rollBackward(cal, t)
	case ModifiedPreceding:
		adj := rollBackward(cal, t)
		if adj.Month() != t.Month() {
			return rollForward(cal, t)
		}
		return adj
	default:
		adj := rollForward(cal, t)
		if adj.Month() != t.Month() {
			return rollBackward(cal, t)
		}
		return adj
	}
}

func rollForward(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func rollBackward(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// OffsetUnit is the unit of an offset code.
type OffsetUnit string

const (
	UnitCalendarDays OffsetUnit = "D"
	UnitBusinessDays OffsetUnit = "BD"
	UnitWeeks        OffsetUnit = "W"
	UnitMonths       OffsetUnit = "M"
	UnitYears        OffsetUnit = "Y"
)

// Offset is a parsed offset code such as "2BD", "3M", "-1Y".
type Offset struct {
	N    int
	Unit OffsetUnit
}

// ParseOffset converts codes like "1W", "3M", "10Y", "2D", "2BD" (optionally signed).
func ParseOffset(code string) (Offset, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	for _, unit := range []OffsetUnit{UnitBusinessDays, UnitCalendarDays, UnitWeeks, UnitMonths, UnitYears} {
		if !strings.HasSuffix(code, string(unit)) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(code, string(unit)))
		if err != nil {
			return Offset{}, fmt.Errorf("calendar: invalid offset code %q: %w", code, err)
		}
		return Offset{N: n, Unit: unit}, nil
	}
	return Offset{}, fmt.Errorf("calendar: invalid offset code %q", code)
}

// Years approximates the offset as a year fraction (1W = 7/365, 1M = 1/12).
func (o Offset) Years() float64 {
	switch o.Unit {
	case UnitCalendarDays, UnitBusinessDays:
		return float64(o.N) / 365.0
	case UnitWeeks:
		return float64(o.N) * 7.0 / 365.0
	case UnitMonths:
		return float64(o.N) / 12.0
	default:
		return float64(o.N)
	}
}

// Apply moves t by the offset. Business day offsets count business days on
// cal; the other units are calendar arithmetic (EDATE semantics for months).
func (o Offset) Apply(cal CalendarID, t time.Time) time.Time {
	switch o.Unit {
	case UnitBusinessDays:
		return AddBusinessDays(cal, t, o.N)
	case UnitCalendarDays:
		return t.AddDate(0, 0, o.N)
	case UnitWeeks:
		return t.AddDate(0, 0, 7*o.N)
	case UnitMonths:
		return utils.AddMonth(t, o.N)
	default:
		return utils.AddMonth(t, 12*o.N)
	}
}

// AdjustedDate shifts date by offsetCode and rolls the result with roll.
func AdjustedDate(cal CalendarID, date time.Time, offsetCode string, roll BusinessDayConvention) (time.Time, error) {
	o, err := ParseOffset(offsetCode)
	if err != nil {
		return time.Time{}, err
	}
	return AdjustWith(cal, o.Apply(cal, date), roll), nil
}
