package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/mocurve/utils"
)

// DiscountCurveInterpolation is a discount curve backed by interpolated
// discount factors. By default it interpolates zero rates linearly
// (LOG_OF_VALUE_PER_TIME) and extrapolates them flat.
type DiscountCurveInterpolation struct {
	curve *InterpolatedCurve
}

// NewDiscountCurveFromDiscountFactors builds a discount curve from discount
// factors. A nil isParameter marks every point as a parameter.
func NewDiscountCurveFromDiscountFactors(name string, referenceDate time.Time, s Settings, times, dfs []float64, isParameter []bool) (*DiscountCurveInterpolation, error) {
	return newDiscountCurve(name, referenceDate, s, times, dfs, isParameter, (*DiscountCurveBuilder).AddDiscountFactor)
}

// NewDiscountCurveFromZeroRates builds a discount curve from continuously
// compounded zero rates, df = exp(-r t).
func NewDiscountCurveFromZeroRates(name string, referenceDate time.Time, s Settings, times, rates []float64, isParameter []bool) (*DiscountCurveInterpolation, error) {
	return newDiscountCurve(name, referenceDate, s, times, rates, isParameter, (*DiscountCurveBuilder).AddZeroRate)
}

// NewDiscountCurveFromAnnualizedZeroRates builds a discount curve from
// annually compounded zero rates, df = (1+r)^-t.
func NewDiscountCurveFromAnnualizedZeroRates(name string, referenceDate time.Time, s Settings, times, rates []float64, isParameter []bool) (*DiscountCurveInterpolation, error) {
	return newDiscountCurve(name, referenceDate, s, times, rates, isParameter, (*DiscountCurveBuilder).AddAnnualizedZeroRate)
}

// NewDiscountCurveFromAnnualizedZeroRateDates converts dated annualized zero
// rates to times with utils.FloatingPointDate. All points are parameters.
func NewDiscountCurveFromAnnualizedZeroRateDates(name string, referenceDate time.Time, s Settings, rates map[time.Time]float64) (*DiscountCurveInterpolation, error) {
	if referenceDate.IsZero() {
		return nil, fmt.Errorf("curve %q: %w", name, ErrMissingReferenceDate)
	}
	dates := make([]time.Time, 0, len(rates))
	for d := range rates {
		dates = append(dates, d)
	}
	utils.SortDates(dates)

	times := make([]float64, len(dates))
	values := make([]float64, len(dates))
	for i, d := range dates {
		times[i] = utils.FloatingPointDate(referenceDate, d)
		values[i] = rates[d]
	}
	return NewDiscountCurveFromAnnualizedZeroRates(name, referenceDate, s, times, values, nil)
}

func newDiscountCurve(name string, referenceDate time.Time, s Settings, times, values []float64, isParameter []bool,
	add func(*DiscountCurveBuilder, float64, float64, bool) error,
) (*DiscountCurveInterpolation, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("curve %q: %w: %d times but %d values", name, ErrInvalidArgument, len(times), len(values))
	}
	if isParameter != nil && len(isParameter) != len(times) {
		return nil, fmt.Errorf("curve %q: %w: %d times but %d parameter flags", name, ErrInvalidArgument, len(times), len(isParameter))
	}
	b := NewDiscountCurveBuilder(name, referenceDate, s)
	for i := range times {
		if err := add(b, times[i], values[i], b.b.parameterFlag(isParameter, i, times[i])); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func (c *DiscountCurveInterpolation) Name() string             { return c.curve.Name() }
func (c *DiscountCurveInterpolation) ReferenceDate() time.Time { return c.curve.ReferenceDate() }
func (c *DiscountCurveInterpolation) Settings() Settings       { return c.curve.Settings() }
func (c *DiscountCurveInterpolation) Points() []Point          { return c.curve.Points() }

// DiscountFactor is 1 at t=0 and 0 before it.
func (c *DiscountCurveInterpolation) DiscountFactor(repo Repository, t float64) (float64, error) {
	return anchored(t, func() (float64, error) {
		return c.curve.Value(repo, t)
	})
}

func (c *DiscountCurveInterpolation) Value(repo Repository, t float64) (float64, error) {
	return c.DiscountFactor(repo, t)
}

func (c *DiscountCurveInterpolation) ZeroRate(repo Repository, t float64) (float64, error) {
	return zeroRateFromDiscountFactor(repo, c, t)
}

func (c *DiscountCurveInterpolation) Parameters() []float64 { return c.curve.Parameters() }

func (c *DiscountCurveInterpolation) WithParameters(p []float64) (Curve, error) {
	clone, err := c.CloneWithParameters(p)
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// CloneWithParameters is WithParameters with a concrete result type.
func (c *DiscountCurveInterpolation) CloneWithParameters(p []float64) (*DiscountCurveInterpolation, error) {
	clone, err := c.curve.CloneWithParameters(p)
	if err != nil {
		return nil, err
	}
	if clone == c.curve {
		return c, nil
	}
	return &DiscountCurveInterpolation{curve: clone}, nil
}

// Builder returns a builder seeded with a copy of the curve's points.
func (c *DiscountCurveInterpolation) Builder() *DiscountCurveBuilder {
	return &DiscountCurveBuilder{b: c.curve.Builder()}
}

// DiscountCurveBuilder accumulates discount factors, possibly quoted as zero rates.
type DiscountCurveBuilder struct {
	b *Builder
}

// NewDiscountCurveBuilder starts an empty discount curve. Empty Settings
// fields take DefaultDiscountSettings.
func NewDiscountCurveBuilder(name string, referenceDate time.Time, s Settings) *DiscountCurveBuilder {
	return &DiscountCurveBuilder{b: NewBuilder(name, referenceDate, s.orDefault(DefaultDiscountSettings))}
}

func (b *DiscountCurveBuilder) AddDiscountFactor(t, df float64, isParameter bool) error {
	return b.b.AddPoint(t, df, isParameter)
}

// AddZeroRate adds a continuously compounded zero rate.
func (b *DiscountCurveBuilder) AddZeroRate(t, rate float64, isParameter bool) error {
	return b.b.AddPoint(t, math.Exp(-rate*t), isParameter)
}

// AddAnnualizedZeroRate adds an annually compounded zero rate.
func (b *DiscountCurveBuilder) AddAnnualizedZeroRate(t, rate float64, isParameter bool) error {
	return b.b.AddPoint(t, math.Pow(1+rate, -t), isParameter)
}

// DiscountFactor previews the curve under construction. With no points yet
// only the anchor is known.
func (b *DiscountCurveBuilder) DiscountFactor(t float64) (float64, error) {
	return anchored(t, func() (float64, error) {
		return b.b.Value(t)
	})
}

func (b *DiscountCurveBuilder) Len() int { return b.b.Len() }

func (b *DiscountCurveBuilder) Build() (*DiscountCurveInterpolation, error) {
	c, err := b.b.Build()
	if err != nil {
		return nil, err
	}
	return &DiscountCurveInterpolation{curve: c}, nil
}
