package curve

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/mocurve/curve/interpolation"
	"github.com/meenmo/mocurve/utils"
)

// SeasonalCurve evaluates a base curve on the month-of-year coordinate
// (month-1)/12 + (day-1)/daysInMonth/12 of the date at t.
type SeasonalCurve struct {
	name          string
	referenceDate time.Time
	base          ref[Curve]
}

// seasonalSettings interpolates the cumulative factors log-linearly and
// keeps December flat.
var seasonalSettings = Settings{
	Method:        interpolation.Linear,
	Extrapolation: interpolation.ExtrapolationConstant,
	Entity:        interpolation.LogOfValue,
}

// NewSeasonalCurve owns base, a curve on [0, 1).
func NewSeasonalCurve(name string, referenceDate time.Time, base Curve) (*SeasonalCurve, error) {
	if referenceDate.IsZero() {
		return nil, fmt.Errorf("curve %q: %w", name, ErrMissingReferenceDate)
	}
	if base == nil {
		return nil, fmt.Errorf("curve %q: %w: nil base curve", name, ErrInvalidArgument)
	}
	return &SeasonalCurve{name: name, referenceDate: referenceDate, base: ownedRef(base)}, nil
}

// NewSeasonalCurveFromAdjustments builds the base curve from 12 annualized
// monthly log adjustments, January first. January's factor is 1 and the
// factor at the start of month j is the factor at month j-1 times
// exp(adjustments[j]/12), so adjustments[0] does not enter the curve.
func NewSeasonalCurveFromAdjustments(name string, referenceDate time.Time, adjustments []float64) (*SeasonalCurve, error) {
	if len(adjustments) != 12 {
		return nil, fmt.Errorf("curve %q: %w: expected 12 monthly adjustments, got %d", name, ErrInvalidArgument, len(adjustments))
	}
	b := NewBuilder(name+"-base", referenceDate, seasonalSettings)
	factor := 1.0
	for j := range 12 {
		if j > 0 {
			factor *= math.Exp(adjustments[j] / 12)
		}
		if err := b.AddPoint(float64(j)/12, factor, j > 0); err != nil {
			return nil, err
		}
	}
	base, err := b.Build()
	if err != nil {
		return nil, err
	}
	return NewSeasonalCurve(name, referenceDate, base)
}

// NewSeasonalCurveFromFixings estimates the adjustments with
// ComputeSeasonalAdjustments.
func NewSeasonalCurveFromFixings(name string, referenceDate time.Time, fixings map[time.Time]float64, years int) (*SeasonalCurve, error) {
	adjustments, err := ComputeSeasonalAdjustments(referenceDate, fixings, years)
	if err != nil {
		return nil, fmt.Errorf("curve %q: %w", name, err)
	}
	return NewSeasonalCurveFromAdjustments(name, referenceDate, adjustments)
}

func (c *SeasonalCurve) Name() string             { return c.name }
func (c *SeasonalCurve) ReferenceDate() time.Time { return c.referenceDate }

func (c *SeasonalCurve) Value(repo Repository, t float64) (float64, error) {
	return c.base.curve.Value(repo, monthOfYear(utils.DateFromFloatingPoint(c.referenceDate, t)))
}

func monthOfYear(d time.Time) float64 {
	return (float64(d.Month()-1) + float64(d.Day()-1)/float64(utils.DaysInMonth(d))) / 12
}

func (c *SeasonalCurve) Parameters() []float64 {
	return ownedParameters(c.base)
}

func (c *SeasonalCurve) WithParameters(p []float64) (Curve, error) {
	refs, err := withOwnedParameters([]ref[Curve]{c.base}, p)
	if err != nil {
		return nil, fmt.Errorf("curve %q: %w", c.name, err)
	}
	out := *c
	out.base = refs[0]
	return &out, nil
}

// ComputeSeasonalAdjustments estimates annualized monthly log adjustments,
// January first, from monthly index fixings. Over the years*12 months ending
// with referenceDate's month, each month's log return against the previous
// month is averaged per calendar month, multiplied by 12 and demeaned, so the
// result sums to zero. Fixings are keyed by month; the latest date in a
// month wins. Every calendar month needs at least one return.
func ComputeSeasonalAdjustments(referenceDate time.Time, fixings map[time.Time]float64, years int) ([]float64, error) {
	if years <= 0 {
		return nil, fmt.Errorf("%w: averaging over %d years", ErrInvalidArgument, years)
	}

	type monthly struct {
		date  time.Time
		value float64
	}
	byMonth := make(map[time.Time]monthly, len(fixings))
	for d, v := range fixings {
		m := utils.MonthStart(d)
		if cur, ok := byMonth[m]; !ok || d.After(cur.date) {
			byMonth[m] = monthly{date: d, value: v}
		}
	}

	var sums, counts [12]float64
	for i := range years * 12 {
		month := utils.MonthStart(utils.AddMonth(referenceDate, -i))
		cur, ok := byMonth[month]
		if !ok {
			continue
		}
		prev, ok := byMonth[utils.AddMonth(month, -1)]
		if !ok {
			continue
		}
		sums[month.Month()-1] += math.Log(cur.value / prev.value)
		counts[month.Month()-1]++
	}

	adjustments := make([]float64, 12)
	for j := range adjustments {
		if counts[j] == 0 {
			return nil, fmt.Errorf("%w: no fixings for %s in the last %d years", ErrInvalidArgument, time.Month(j+1), years)
		}
		adjustments[j] = 12 * sums[j] / counts[j]
	}
	floats.AddConst(-floats.Sum(adjustments)/12, adjustments)
	return adjustments, nil
}
