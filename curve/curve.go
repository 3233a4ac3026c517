// Package curve implements discount, forward and index curves as interpolated
// functions of time, together with the combinators that derive curves from
// other curves.
//
// Curves are immutable once built. Calibration works on clones obtained from
// WithParameters, so a single baseline curve can back any number of
// concurrent candidate evaluations.
package curve

import (
	"math"
	"time"

	"github.com/meenmo/mocurve/config"
)

// Curve is a named real-valued function of time.
//
// Value takes the repository used to resolve curves referenced by name; it may
// be nil for self-contained curves.
type Curve interface {
	Name() string
	// ReferenceDate anchors t=0. The zero time means the curve has none.
	ReferenceDate() time.Time
	Value(repo Repository, t float64) (float64, error)
	// Parameters returns the calibration vector.
	Parameters() []float64
	// WithParameters returns a curve with the calibration vector replaced.
	// The receiver is never modified.
	WithParameters(p []float64) (Curve, error)
}

// DiscountCurve provides discount factors: df(0) = 1 and df(t) = 0 for t < 0.
type DiscountCurve interface {
	Curve
	DiscountFactor(repo Repository, t float64) (float64, error)
}

// ForwardCurve provides forward rates for fixing times.
type ForwardCurve interface {
	Curve
	Forward(repo Repository, fixingTime float64) (float64, error)
	// PaymentOffset is the time from fixing to payment.
	PaymentOffset(fixingTime float64) float64
}

type zeroRater interface {
	ZeroRate(repo Repository, t float64) (float64, error)
}

// ZeroRate returns the continuously compounded zero rate -ln(df(t))/t.
// At t == 0 the rate is taken at config ZeroRateEpsilon.
func ZeroRate(repo Repository, c DiscountCurve, t float64) (float64, error) {
	if z, ok := c.(zeroRater); ok {
		return z.ZeroRate(repo, t)
	}
	return zeroRateFromDiscountFactor(repo, c, t)
}

func zeroRateFromDiscountFactor(repo Repository, c DiscountCurve, t float64) (float64, error) {
	if t == 0 {
		t = config.GetConfig().ZeroRateEpsilon
	}
	df, err := c.DiscountFactor(repo, t)
	if err != nil {
		return 0, err
	}
	return -math.Log(df) / t, nil
}

// Values evaluates c at each time.
func Values(repo Repository, c Curve, times []float64) ([]float64, error) {
	out := make([]float64, len(times))
	for i, t := range times {
		v, err := c.Value(repo, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// anchored applies the discount factor convention around t=0.
func anchored(t float64, eval func() (float64, error)) (float64, error) {
	switch {
	case t < 0:
		return 0, nil
	case t == 0:
		return 1, nil
	}
	return eval()
}

func equalBits(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}
