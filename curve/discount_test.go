package curve_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/mocurve/curve"
)

func TestDiscountCurve_LogLinearScenario(t *testing.T) {
	t.Parallel()

	c, err := curve.NewDiscountCurveFromDiscountFactors("eur-ois", refDate, curve.Settings{},
		[]float64{0, 1, 2}, []float64{1.0, 0.95, 0.90}, nil)
	require.NoError(t, err)

	v, err := c.Value(nil, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(0.5*math.Log(0.95)), v, 1e-12)
	assert.InDelta(t, 0.97468, v, 1e-5)

	// The anchor is implied, not stored.
	assert.Equal(t, []float64{1, 2}, pointTimes(c.Points()))
	assert.InDeltaSlice(t, []float64{0.95, 0.90}, c.Parameters(), 1e-15)
	assert.Equal(t, curve.DefaultDiscountSettings, c.Settings())
}

func TestDiscountCurve_Anchor(t *testing.T) {
	t.Parallel()

	c, err := curve.NewDiscountCurveFromDiscountFactors("anchor", refDate, curve.Settings{},
		[]float64{0.5, 3}, []float64{0.99, 0.9}, nil)
	require.NoError(t, err)

	for _, tm := range []float64{-10, -1, -1e-9} {
		df, err := c.DiscountFactor(nil, tm)
		require.NoError(t, err)
		assert.Equal(t, 0.0, df, "t=%g", tm)
	}
	df, err := c.Value(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, df)
}

func TestDiscountCurve_InvalidAnchor(t *testing.T) {
	t.Parallel()

	_, err := curve.NewDiscountCurveFromDiscountFactors("bad", refDate, curve.Settings{},
		[]float64{0, 1}, []float64{0.99, 0.95}, nil)
	require.ErrorIs(t, err, curve.ErrInvalidAnchor)

	_, err = curve.NewDiscountCurveFromDiscountFactors("bad", refDate, curve.Settings{},
		[]float64{0, 1}, []float64{1, 0.95}, []bool{true, true})
	require.ErrorIs(t, err, curve.ErrInvalidAnchor)

	b := curve.NewBuilder("bad", refDate, curve.DefaultDiscountSettings)
	require.ErrorIs(t, b.AddPoint(0, 1, true), curve.ErrInvalidAnchor)
	require.NoError(t, b.AddPoint(0, 1, false))
	assert.Equal(t, 0, b.Len())

	c, err := curve.NewDiscountCurveFromDiscountFactors("ok", refDate, curve.Settings{},
		[]float64{0, 1}, []float64{1, 0.95}, []bool{false, true})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.95}, c.Parameters())
}

func TestDiscountCurve_FromZeroRates(t *testing.T) {
	t.Parallel()

	c, err := curve.NewDiscountCurveFromZeroRates("zero", refDate, curve.Settings{},
		[]float64{1, 2}, []float64{0.02, 0.03}, nil)
	require.NoError(t, err)

	df, err := c.DiscountFactor(nil, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.06), df, 1e-15)

	for tm, want := range map[float64]float64{0.5: 0.02, 1.5: 0.025, 2: 0.03, 8: 0.03} {
		r, err := curve.ZeroRate(nil, c, tm)
		require.NoError(t, err)
		assert.InDelta(t, want, r, 1e-12, "t=%g", tm)
	}
}

func TestDiscountCurve_FromAnnualizedZeroRates(t *testing.T) {
	t.Parallel()

	c, err := curve.NewDiscountCurveFromAnnualizedZeroRates("annual", refDate, curve.Settings{},
		[]float64{1, 2}, []float64{0.02, 0.03}, nil)
	require.NoError(t, err)

	df, err := c.DiscountFactor(nil, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(1.03, -2), df, 1e-15)
}

func TestDiscountCurve_FromAnnualizedZeroRateDates(t *testing.T) {
	t.Parallel()

	rates := map[time.Time]float64{
		refDate.AddDate(0, 0, 730): 0.025,
		refDate.AddDate(0, 0, 365): 0.02,
	}
	c, err := curve.NewDiscountCurveFromAnnualizedZeroRateDates("dated", refDate, curve.Settings{}, rates)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, pointTimes(c.Points()))

	df, err := c.DiscountFactor(nil, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1/1.02, df, 1e-15)

	_, err = curve.NewDiscountCurveFromAnnualizedZeroRateDates("dated", time.Time{}, curve.Settings{}, rates)
	require.ErrorIs(t, err, curve.ErrMissingReferenceDate)
}

func TestDiscountCurveBuilder_Preview(t *testing.T) {
	t.Parallel()

	b := curve.NewDiscountCurveBuilder("boot", refDate, curve.Settings{})
	df, err := b.DiscountFactor(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, df)
	_, err = b.DiscountFactor(1)
	require.ErrorIs(t, err, curve.ErrNoPoints)

	require.NoError(t, b.AddDiscountFactor(0, 1, false))
	require.NoError(t, b.AddDiscountFactor(1, 0.95, true))
	assert.Equal(t, 1, b.Len())
	df, err = b.DiscountFactor(0.5)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.95), df, 1e-12)

	c, err := b.Build()
	require.NoError(t, err)
	_, err = b.Build()
	require.ErrorIs(t, err, curve.ErrBuilderExhausted)

	more := c.Builder()
	require.NoError(t, more.AddZeroRate(2, 0.03, true))
	extended, err := more.Build()
	require.NoError(t, err)
	assert.Len(t, extended.Parameters(), 2)
	assert.Len(t, c.Parameters(), 1)
}

func TestDiscountCurve_WithParameters(t *testing.T) {
	t.Parallel()

	c, err := curve.NewDiscountCurveFromDiscountFactors("clone", refDate, curve.Settings{},
		[]float64{1, 2}, []float64{0.98, 0.95}, nil)
	require.NoError(t, err)

	same, err := c.WithParameters(c.Parameters())
	require.NoError(t, err)
	assert.Same(t, c, same)

	moved, err := c.WithParameters([]float64{0.97, 0.95})
	require.NoError(t, err)
	dc, ok := moved.(curve.DiscountCurve)
	require.True(t, ok)
	df, err := dc.DiscountFactor(nil, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.97, df, 1e-15)

	df, err = c.DiscountFactor(nil, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.98, df, 1e-15)
}

func TestNelsonSiegelSvensson(t *testing.T) {
	t.Parallel()

	params := []float64{0.03, -0.01, 0.02, 0.01, 1.5, 5}
	c, err := curve.NewDiscountCurveNelsonSiegelSvensson("nss", refDate, params, 1)
	require.NoError(t, err)

	r0, err := curve.ZeroRate(nil, c, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.02, r0, 1e-12, "short end is β0+β1")

	rLong, err := c.ZeroRate(nil, 1e9)
	require.NoError(t, err)
	assert.InDelta(t, 0.03, rLong, 1e-8, "long end is β0")

	r2, err := c.ZeroRate(nil, 2)
	require.NoError(t, err)
	x0, x1 := 2/1.5, 2/5.0
	g0 := (1 - math.Exp(-x0)) / x0
	g1 := (1 - math.Exp(-x1)) / x1
	want := 0.03 - 0.01*g0 + 0.02*(g0-math.Exp(-x0)) + 0.01*(g1-math.Exp(-x1))
	assert.InDelta(t, want, r2, 1e-14)

	df, err := c.DiscountFactor(nil, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-2*want), df, 1e-14)

	df, err = c.Value(nil, -1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, df)
	df, err = c.Value(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, df)
}

func TestNelsonSiegelSvensson_DisabledTerms(t *testing.T) {
	t.Parallel()

	c, err := curve.NewDiscountCurveNelsonSiegelSvensson("flat", refDate, []float64{0.04, 0.5, 0.5, 0.5, 0, -1}, 1)
	require.NoError(t, err)

	for _, tm := range []float64{0.1, 1, 30} {
		r, err := c.ZeroRate(nil, tm)
		require.NoError(t, err)
		assert.Equal(t, 0.04, r)
	}
}

func TestNelsonSiegelSvensson_TimeScaling(t *testing.T) {
	t.Parallel()

	params := []float64{0.03, -0.01, 0.02, 0.01, 1.5, 5}
	scaled, err := curve.NewDiscountCurveNelsonSiegelSvensson("scaled", refDate, params, 2)
	require.NoError(t, err)
	plain, err := curve.NewDiscountCurveNelsonSiegelSvensson("plain", refDate, params, 1)
	require.NoError(t, err)

	a, err := scaled.ZeroRate(nil, 1)
	require.NoError(t, err)
	b, err := plain.ZeroRate(nil, 2)
	require.NoError(t, err)
	assert.InDelta(t, b, a, 1e-15)
}

func TestNelsonSiegelSvensson_WithParameters(t *testing.T) {
	t.Parallel()

	params := []float64{0.03, -0.01, 0.02, 0.01, 1.5, 5}
	c, err := curve.NewDiscountCurveNelsonSiegelSvensson("nss", refDate, params, 1)
	require.NoError(t, err)

	clone, err := c.WithParameters(c.Parameters())
	require.NoError(t, err)
	assert.NotSame(t, c, clone)
	assert.Equal(t, params, clone.Parameters())

	_, err = c.WithParameters(params[:5])
	require.ErrorIs(t, err, curve.ErrArityMismatch)

	_, err = curve.NewDiscountCurveNelsonSiegelSvensson("nss", refDate, params, 0)
	require.ErrorIs(t, err, curve.ErrInvalidArgument)
}
