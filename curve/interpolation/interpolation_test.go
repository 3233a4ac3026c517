package interpolation_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/mocurve/curve/interpolation"
)

var (
	xs = []float64{1, 2, 4}
	ys = []float64{10, 20, 16}
)

func TestEntityRoundTrip(t *testing.T) {
	t.Parallel()

	for _, e := range []interpolation.Entity{interpolation.Value, interpolation.LogOfValue, interpolation.LogOfValuePerTime} {
		for _, tm := range []float64{0.25, 1, 7.5} {
			x, err := e.ToEntity(0.93, tm)
			require.NoError(t, err)
			assert.InDelta(t, 0.93, e.FromEntity(x, tm), 1e-15, "%s at %g", e, tm)
		}
	}
}

func TestEntity_LogOfNonPositive(t *testing.T) {
	t.Parallel()

	x, err := interpolation.LogOfValue.ToEntity(-1, 2)
	require.NoError(t, err)
	assert.True(t, math.IsInf(x, -1))
	assert.Equal(t, 0.0, interpolation.LogOfValue.FromEntity(x, 2))
}

func TestEntity_Anchor(t *testing.T) {
	t.Parallel()

	x, err := interpolation.LogOfValuePerTime.ToEntity(1.0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 1.0, interpolation.LogOfValuePerTime.FromEntity(0.3, 0))

	_, err = interpolation.LogOfValuePerTime.ToEntity(0.99, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interpolation.ErrInvalidAnchor))
}

func TestKernel_LinearAndExtrapolation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		extrapolation interpolation.ExtrapolationMethod
		left, right   float64
	}{
		{interpolation.ExtrapolationConstant, 10, 16},
		{interpolation.ExtrapolationLinear, 5, 14},
		{interpolation.ExtrapolationDefault, 5, 14},
	}
	for _, tc := range cases {
		k, err := interpolation.NewKernel(xs, ys, interpolation.Linear, tc.extrapolation)
		require.NoError(t, err)

		assert.InDelta(t, 15.0, k.ValueAt(1.5), 1e-12)
		assert.InDelta(t, 18.0, k.ValueAt(3), 1e-12)
		assert.InDelta(t, tc.left, k.ValueAt(0.5), 1e-12, tc.extrapolation)
		assert.InDelta(t, tc.right, k.ValueAt(5), 1e-12, tc.extrapolation)
	}
}

func TestKernel_PiecewiseConstant(t *testing.T) {
	t.Parallel()

	left, err := interpolation.NewKernel(xs, ys, interpolation.PiecewiseConstantLeftPoint, interpolation.ExtrapolationDefault)
	require.NoError(t, err)
	right, err := interpolation.NewKernel(xs, ys, interpolation.PiecewiseConstantRightPoint, interpolation.ExtrapolationDefault)
	require.NoError(t, err)

	for _, x := range []float64{1, 2, 4} {
		assert.Equal(t, left.ValueAt(x), right.ValueAt(x), "nodes agree at %g", x)
	}
	assert.Equal(t, 10.0, left.ValueAt(1.999))
	assert.Equal(t, 20.0, right.ValueAt(1.001))
	assert.Equal(t, 20.0, left.ValueAt(3.5))
	assert.Equal(t, 16.0, right.ValueAt(3.5))

	assert.Equal(t, 10.0, left.ValueAt(-3))
	assert.Equal(t, 16.0, right.ValueAt(9))
}

func TestKernel_SplinesInterpolateNodes(t *testing.T) {
	t.Parallel()

	nodesX := []float64{0.5, 1, 2, 3, 5, 7, 10}
	nodesY := []float64{0.010, 0.012, 0.015, 0.017, 0.020, 0.021, 0.022}

	for _, m := range []interpolation.Method{interpolation.CubicSpline, interpolation.Akima, interpolation.HarmonicSpline} {
		k, err := interpolation.NewKernel(nodesX, nodesY, m, interpolation.ExtrapolationConstant)
		require.NoError(t, err, m)
		for i, x := range nodesX {
			assert.InDelta(t, nodesY[i], k.ValueAt(x), 1e-12, "%s node %g", m, x)
		}
		v := k.ValueAt(4)
		assert.Greater(t, v, 0.017, m)
		assert.Less(t, v, 0.020, m)
	}
}

func TestKernel_HarmonicSplineIsMonotone(t *testing.T) {
	t.Parallel()

	nodesX := []float64{0, 1, 2, 3, 4}
	nodesY := []float64{0, 0.1, 0.1, 2, 2.1}
	k, err := interpolation.NewKernel(nodesX, nodesY, interpolation.HarmonicSpline, interpolation.ExtrapolationConstant)
	require.NoError(t, err)

	prev := k.ValueAt(0)
	for x := 0.01; x <= 4; x += 0.01 {
		v := k.ValueAt(x)
		assert.GreaterOrEqual(t, v, prev-1e-12, "x=%g", x)
		prev = v
	}
}

func TestKernel_SplineDefaultExtrapolationContinuesBoundaryPiece(t *testing.T) {
	t.Parallel()

	// Natural cubic through (0,0), (1,1), (2,0): S(x) = -0.5x^3 + 1.5x on
	// [0,1], mirrored on [1,2].
	k, err := interpolation.NewKernel([]float64{0, 1, 2}, []float64{0, 1, 0}, interpolation.CubicSpline, interpolation.ExtrapolationDefault)
	require.NoError(t, err)

	piece := func(x float64) float64 { return -0.5*x*x*x + 1.5*x }
	assert.InDelta(t, piece(0.5), k.ValueAt(0.5), 1e-12)
	assert.InDelta(t, -1.0, k.ValueAt(-1), 1e-12)
	assert.InDelta(t, piece(-0.5), k.ValueAt(-0.5), 1e-12)
	assert.InDelta(t, piece(-1), k.ValueAt(3), 1e-12)

	akima, err := interpolation.NewKernel([]float64{1, 2, 3, 4}, []float64{1, 4, 9, 16}, interpolation.Akima, interpolation.ExtrapolationDefault)
	require.NoError(t, err)
	assert.InDelta(t, 16, akima.ValueAt(4+1e-9), 1e-6)
	assert.InDelta(t, 1, akima.ValueAt(1-1e-9), 1e-6)
}

func TestKernel_NaN(t *testing.T) {
	t.Parallel()

	for _, m := range []interpolation.Method{
		interpolation.PiecewiseConstantLeftPoint,
		interpolation.PiecewiseConstantRightPoint,
		interpolation.Linear,
		interpolation.CubicSpline,
	} {
		k, err := interpolation.NewKernel([]float64{0, 1, 2}, []float64{1, 2, 3}, m, interpolation.ExtrapolationDefault)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(k.ValueAt(math.NaN())), m)
	}
}

func TestKernel_SplineFallsBackBelowThreePoints(t *testing.T) {
	t.Parallel()

	k, err := interpolation.NewKernel([]float64{0, 2}, []float64{1, 3}, interpolation.CubicSpline, interpolation.ExtrapolationConstant)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, k.ValueAt(1), 1e-15)
}

func TestKernel_SinglePoint(t *testing.T) {
	t.Parallel()

	k, err := interpolation.NewKernel([]float64{3}, []float64{7}, interpolation.Linear, interpolation.ExtrapolationLinear)
	require.NoError(t, err)
	assert.Equal(t, 1, k.Len())
	for _, x := range []float64{-1, 3, 10} {
		assert.Equal(t, 7.0, k.ValueAt(x))
	}
}

func TestNewKernel_Errors(t *testing.T) {
	t.Parallel()

	_, err := interpolation.NewKernel(nil, nil, interpolation.Linear, interpolation.ExtrapolationConstant)
	assert.ErrorIs(t, err, interpolation.ErrTooFewPoints)

	_, err = interpolation.NewKernel([]float64{1}, []float64{1, 2}, interpolation.Linear, interpolation.ExtrapolationConstant)
	assert.Error(t, err)

	_, err = interpolation.NewKernel(xs, ys, "QUADRATIC", interpolation.ExtrapolationConstant)
	assert.Error(t, err)

	_, err = interpolation.NewKernel(xs, ys, interpolation.Linear, "MIRROR")
	assert.Error(t, err)
}
