package calibration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/mocurve/calibration"
	"github.com/meenmo/mocurve/config"
	"github.com/meenmo/mocurve/curve"
)

var refDate = time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

func testCalibrator() *calibration.Calibrator {
	return calibration.New(config.CalibrationConfig{
		Tolerance:      1e-7,
		MaxIterations:  10000,
		MaxEvaluations: 100000,
		Concurrency:    2,
	})
}

func TestCalibrate_DiscountFactors(t *testing.T) {
	t.Parallel()

	initial, err := curve.NewDiscountCurveFromDiscountFactors("ois", refDate, curve.Settings{},
		[]float64{1, 2}, []float64{0.9, 0.8}, nil)
	require.NoError(t, err)

	res, err := testCalibrator().Calibrate(context.Background(), calibration.Problem{
		Curves: []curve.Curve{initial},
		Targets: []calibration.Target{
			calibration.DiscountFactorTarget{Curve: "ois", Time: 1, Quote: 0.97},
			calibration.DiscountFactorTarget{Curve: "ois", Time: 2, Quote: 0.94},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Curves, 1)
	assert.LessOrEqual(t, res.RMS, 1e-7)
	assert.Positive(t, res.Evaluations)

	assert.InDeltaSlice(t, []float64{0.97, 0.94}, res.Curves[0].Parameters(), 1e-6)
	assert.InDeltaSlice(t, []float64{0.9, 0.8}, initial.Parameters(), 1e-15)

	calibrated, ok := res.Repository.DiscountCurve("ois")
	require.True(t, ok)
	df, err := calibrated.DiscountFactor(res.Repository, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.94, df, 1e-6)
}

func TestCalibrate_ZeroRates(t *testing.T) {
	t.Parallel()

	initial, err := curve.NewDiscountCurveFromZeroRates("ois", refDate, curve.Settings{},
		[]float64{1, 5}, []float64{0.01, 0.01}, nil)
	require.NoError(t, err)

	res, err := testCalibrator().Calibrate(context.Background(), calibration.Problem{
		Curves: []curve.Curve{initial},
		Targets: []calibration.Target{
			calibration.ZeroRateTarget{Curve: "ois", Time: 1, Quote: 0.03},
			calibration.ZeroRateTarget{Curve: "ois", Time: 5, Quote: 0.035},
		},
	})
	require.NoError(t, err)

	for _, tc := range []struct{ t, z float64 }{{1, 0.03}, {5, 0.035}} {
		z, err := curve.ZeroRate(nil, res.Curves[0].(curve.DiscountCurve), tc.t)
		require.NoError(t, err)
		assert.InDelta(t, tc.z, z, 1e-6)
	}
}

func TestCalibrate_ForwardCurve(t *testing.T) {
	t.Parallel()

	initial, err := curve.NewForwardCurveFromForwards(curve.ForwardCurveSpec{
		Name:          "euribor3m",
		ReferenceDate: refDate,
		Entity:        curve.ForwardEntityForward,
		PaymentOffset: curve.FixedPaymentOffset(0.25),
	}, nil, []float64{0, 1}, []float64{0.01, 0.01}, nil)
	require.NoError(t, err)

	res, err := testCalibrator().Calibrate(context.Background(), calibration.Problem{
		Curves: []curve.Curve{initial},
		Targets: []calibration.Target{
			calibration.ForwardTarget{Curve: "euribor3m", Time: 0.5, Quote: 0.025},
			calibration.ForwardTarget{Curve: "euribor3m", Time: 1, Quote: 0.03},
		},
	})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.02, 0.03}, res.Curves[0].Parameters(), 1e-6)
}

// The forward curve resolves its discount curve by name, so the calibrated
// discount curve must reach it through the result repository.
func TestCalibrate_NamedDependency(t *testing.T) {
	t.Parallel()

	fwd, err := curve.NewForwardCurveFromDiscountCurveName("ois-6m", refDate, "ois", curve.FixedPaymentOffset(0.5))
	require.NoError(t, err)
	ois, err := curve.NewDiscountCurveFromDiscountFactors("ois", refDate, curve.Settings{},
		[]float64{1}, []float64{0.99}, nil)
	require.NoError(t, err)

	base := curve.NewRegistry(fwd, ois)
	res, err := testCalibrator().Calibrate(context.Background(), calibration.Problem{
		Curves:     []curve.Curve{ois},
		Repository: base,
		Targets: []calibration.Target{
			calibration.ForwardTarget{Curve: "ois-6m", Time: 0, Quote: 0.04},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 1/1.0404, res.Parameters[0], 1e-6)

	f, err := fwd.Forward(res.Repository, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.04, f, 1e-6)

	// The base repository still holds the original curve.
	c, ok := base.DiscountCurve("ois")
	require.True(t, ok)
	assert.Same(t, ois, c)
}

func TestCalibrate_CompositeParameters(t *testing.T) {
	t.Parallel()

	a, err := curve.NewDiscountCurveFromDiscountFactors("a", refDate, curve.Settings{}, []float64{1}, []float64{0.99}, nil)
	require.NoError(t, err)
	b, err := curve.NewDiscountCurveFromDiscountFactors("b", refDate, curve.Settings{}, []float64{1}, []float64{0.99}, nil)
	require.NoError(t, err)
	product, err := curve.NewDiscountCurveProduct("ab", a, b)
	require.NoError(t, err)
	require.Len(t, product.Parameters(), 2)

	res, err := testCalibrator().Calibrate(context.Background(), calibration.Problem{
		Curves: []curve.Curve{product},
		Targets: []calibration.Target{
			calibration.ValueTarget{Curve: "ab", Time: 1, Quote: 0.95},
		},
	})
	require.NoError(t, err)

	p := res.Curves[0].Parameters()
	require.Len(t, p, 2)
	assert.InDelta(t, 0.95, p[0]*p[1], 1e-6)
}

func TestCalibrate_NotConverged(t *testing.T) {
	t.Parallel()

	initial, err := curve.NewDiscountCurveFromDiscountFactors("ois", refDate, curve.Settings{},
		[]float64{1}, []float64{0.9}, nil)
	require.NoError(t, err)

	res, err := testCalibrator().Calibrate(context.Background(), calibration.Problem{
		Curves: []curve.Curve{initial},
		Targets: []calibration.Target{
			calibration.DiscountFactorTarget{Curve: "ois", Time: 1, Quote: 0.90},
			calibration.DiscountFactorTarget{Curve: "ois", Time: 1, Quote: 0.95},
		},
	})
	require.ErrorIs(t, err, calibration.ErrNotConverged)
	require.NotNil(t, res)
	assert.InDelta(t, 0.025, res.RMS, 1e-6)
	assert.InDelta(t, 0.925, res.Parameters[0], 1e-6)
}

func TestCalibrate_InvalidProblems(t *testing.T) {
	t.Parallel()

	ois, err := curve.NewDiscountCurveFromDiscountFactors("ois", refDate, curve.Settings{}, []float64{1}, []float64{0.99}, nil)
	require.NoError(t, err)
	fixed, err := curve.NewDiscountCurveFromDiscountFactors("fixed", refDate, curve.Settings{}, []float64{1}, []float64{0.99}, []bool{false})
	require.NoError(t, err)
	target := calibration.DiscountFactorTarget{Curve: "ois", Time: 1, Quote: 0.98}

	cal := testCalibrator()
	ctx := context.Background()

	_, err = cal.Calibrate(ctx, calibration.Problem{Targets: []calibration.Target{target}})
	require.ErrorIs(t, err, curve.ErrInvalidArgument)

	_, err = cal.Calibrate(ctx, calibration.Problem{Curves: []curve.Curve{ois}})
	require.ErrorIs(t, err, curve.ErrInvalidArgument)

	_, err = cal.Calibrate(ctx, calibration.Problem{Curves: []curve.Curve{fixed}, Targets: []calibration.Target{target}})
	require.ErrorIs(t, err, curve.ErrInvalidArgument)

	_, err = cal.Calibrate(ctx, calibration.Problem{
		Curves:  []curve.Curve{ois},
		Targets: []calibration.Target{calibration.ZeroRateTarget{Curve: "missing", Time: 1}},
	})
	require.ErrorIs(t, err, curve.ErrUnresolvedCurve)
}

func TestCalibrate_Canceled(t *testing.T) {
	t.Parallel()

	ois, err := curve.NewDiscountCurveFromDiscountFactors("ois", refDate, curve.Settings{}, []float64{1}, []float64{0.99}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = testCalibrator().Calibrate(ctx, calibration.Problem{
		Curves:  []curve.Curve{ois},
		Targets: []calibration.Target{calibration.DiscountFactorTarget{Curve: "ois", Time: 1, Quote: 0.98}},
	})
	require.ErrorIs(t, err, context.Canceled)
}
