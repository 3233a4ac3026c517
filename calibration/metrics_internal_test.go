package calibration

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/mocurve/config"
	"github.com/meenmo/mocurve/curve"
)

func TestCalibrate_Metrics(t *testing.T) {
	ois, err := curve.NewDiscountCurveFromDiscountFactors("ois", time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
		curve.Settings{}, []float64{1}, []float64{0.99}, nil)
	require.NoError(t, err)

	evaluations := testutil.ToFloat64(objectiveEvaluations)
	converged := testutil.ToFloat64(runs.WithLabelValues(outcomeConverged))

	res, err := New(config.CalibrationConfig{Tolerance: 1e-7}).Calibrate(context.Background(), Problem{
		Curves:  []curve.Curve{ois},
		Targets: []Target{DiscountFactorTarget{Curve: "ois", Time: 1, Quote: math.Exp(-0.02)}},
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, testutil.ToFloat64(objectiveEvaluations)-evaluations, float64(res.Evaluations))
	assert.GreaterOrEqual(t, testutil.ToFloat64(runs.WithLabelValues(outcomeConverged))-converged, 1.0)
}

func TestWithParameters_Arity(t *testing.T) {
	t.Parallel()

	ois, err := curve.NewDiscountCurveFromDiscountFactors("ois", time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), curve.Settings{}, []float64{1, 2}, []float64{0.99, 0.98}, nil)
	require.NoError(t, err)

	_, err = withParameters([]curve.Curve{ois}, []float64{0.99})
	require.ErrorIs(t, err, curve.ErrArityMismatch)
	_, err = withParameters([]curve.Curve{ois}, []float64{0.99, 0.98, 0.97})
	require.ErrorIs(t, err, curve.ErrArityMismatch)

	out, err := withParameters([]curve.Curve{ois}, []float64{0.97, 0.96})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.97, 0.96}, out[0].Parameters(), 1e-15)
}
