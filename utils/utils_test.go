package utils_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meenmo/mocurve/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearFraction(t *testing.T) {
	t.Parallel()

	start := date(2025, 1, 31)
	end := date(2025, 7, 31)

	cases := []struct {
		convention string
		want       float64
	}{
		{utils.Act360, 181.0 / 360.0},
		{utils.Act365F, 181.0 / 365.0},
		{utils.Act36525, 181.0 / 365.25},
		{utils.ThirtyE, 180.0 / 360.0},
		{"UNKNOWN", 181.0 / 365.0},
	}
	for _, tc := range cases {
		got := utils.YearFraction(start, end, tc.convention)
		assert.InDelta(t, tc.want, got, 1e-15, tc.convention)
	}
}

func TestYearFraction_ActActAcrossLeapYear(t *testing.T) {
	t.Parallel()

	got := utils.YearFraction(date(2023, 7, 1), date(2024, 7, 1), utils.ActAct)
	want := 184.0/365.0 + 182.0/366.0
	assert.InDelta(t, want, got, 1e-15)

	assert.InDelta(t, -want, utils.YearFraction(date(2024, 7, 1), date(2023, 7, 1), utils.ActAct), 1e-15)
	assert.InDelta(t, 31.0/366.0, utils.YearFraction(date(2024, 1, 1), date(2024, 2, 1), utils.ActAct), 1e-15)
}

func TestFloatingPointDateRoundTrip(t *testing.T) {
	t.Parallel()

	ref := date(2025, 3, 14)
	for _, d := range []time.Time{date(2025, 3, 14), date(2026, 2, 28), date(2024, 12, 1), date(2040, 6, 30)} {
		tf := utils.FloatingPointDate(ref, d)
		assert.True(t, utils.DateFromFloatingPoint(ref, tf).Equal(d), d.String())
	}
	assert.True(t, math.Abs(utils.FloatingPointDate(ref, date(2026, 3, 14))-1) < 1e-15)
}

func TestAddMonth_EndOfMonth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, date(2025, 2, 28), utils.AddMonth(date(2025, 1, 31), 1))
	assert.Equal(t, date(2024, 2, 29), utils.AddMonth(date(2024, 3, 31), -1))
	assert.Equal(t, date(2026, 1, 15), utils.AddMonth(date(2025, 1, 15), 12))
}

func TestMonthHelpers(t *testing.T) {
	t.Parallel()

	d := date(2024, 2, 17)
	assert.Equal(t, date(2024, 2, 1), utils.MonthStart(d))
	assert.Equal(t, date(2024, 2, 29), utils.MonthEnd(d))
	assert.Equal(t, 29, utils.DaysInMonth(d))
	assert.Equal(t, d, utils.Date(time.Date(2024, 2, 17, 23, 59, 0, 0, time.FixedZone("EST", -5*60*60))))

	dates := []time.Time{date(2025, 3, 1), date(2024, 1, 1), date(2024, 6, 1)}
	utils.SortDates(dates)
	assert.Equal(t, []time.Time{date(2024, 1, 1), date(2024, 6, 1), date(2025, 3, 1)}, dates)
	assert.Equal(t, 1.23, utils.RoundTo(1.2345, 2))
}
