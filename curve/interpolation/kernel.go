// Package interpolation turns sorted nodes into a function of time: the
// interior interpolation method, the exterior extrapolation method and the
// value transform that defines the space the nodes live in.
package interpolation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Method is the interior interpolation rule.
type Method string

const (
	// PiecewiseConstantLeftPoint takes the left node's value on [x_i, x_{i+1}).
	PiecewiseConstantLeftPoint Method = "PIECEWISE_CONSTANT_LEFTPOINT"
	// PiecewiseConstantRightPoint takes the right node's value on (x_i, x_{i+1}].
	PiecewiseConstantRightPoint Method = "PIECEWISE_CONSTANT_RIGHTPOINT"
	Linear                      Method = "LINEAR"
	// CubicSpline is the natural cubic spline.
	CubicSpline Method = "CUBIC_SPLINE"
	// Akima is the Akima C1 sub-spline.
	Akima Method = "AKIMA"
	// HarmonicSpline is the Fritsch-Butland monotone C1 sub-spline
	// (harmonic mean of adjacent slopes).
	HarmonicSpline Method = "HARMONIC_SPLINE"
)

// ExtrapolationMethod is the rule outside [x_0, x_n].
type ExtrapolationMethod string

const (
	// ExtrapolationDefault continues the rule of the adjacent interval.
	ExtrapolationDefault ExtrapolationMethod = "DEFAULT"
	// ExtrapolationConstant clamps to the boundary node.
	ExtrapolationConstant ExtrapolationMethod = "CONSTANT"
	// ExtrapolationLinear extends the boundary segment's slope.
	ExtrapolationLinear ExtrapolationMethod = "LINEAR"
)

// ErrTooFewPoints is returned by NewKernel for an empty node set.
var ErrTooFewPoints = errors.New("interpolation: no points")

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	switch m {
	case PiecewiseConstantLeftPoint, PiecewiseConstantRightPoint, Linear, CubicSpline, Akima, HarmonicSpline:
		return true
	}
	return false
}

func (m Method) isSpline() bool {
	return m == CubicSpline || m == Akima || m == HarmonicSpline
}

// Valid reports whether e is a known extrapolation method.
func (e ExtrapolationMethod) Valid() bool {
	switch e {
	case ExtrapolationDefault, ExtrapolationConstant, ExtrapolationLinear:
		return true
	}
	return false
}

type derivativePredictor interface {
	PredictDerivative(x float64) float64
}

// Kernel evaluates an interpolated function. It is immutable and safe for
// concurrent use.
type Kernel struct {
	xs, ys        []float64
	method        Method
	extrapolation ExtrapolationMethod
	fitted        interp.Predictor
}

// NewKernel fits the nodes. xs must be strictly increasing; the slices are
// copied. Spline methods need three nodes and fall back to Linear below that.
func NewKernel(xs, ys []float64, method Method, extrapolation ExtrapolationMethod) (*Kernel, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("interpolation: %d times but %d values", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, ErrTooFewPoints
	}
	if !method.Valid() {
		return nil, fmt.Errorf("interpolation: unknown method %q", method)
	}
	if !extrapolation.Valid() {
		return nil, fmt.Errorf("interpolation: unknown extrapolation method %q", extrapolation)
	}

	k := &Kernel{
		xs:            append([]float64(nil), xs...),
		ys:            append([]float64(nil), ys...),
		method:        method,
		extrapolation: extrapolation,
	}
	if method.isSpline() && len(xs) < 3 {
		k.method = Linear
	}
	if len(xs) < 2 {
		return k, nil
	}

	var fp interp.FittablePredictor
	switch k.method {
	case Linear:
		fp = &interp.PiecewiseLinear{}
	case CubicSpline:
		fp = &interp.NaturalCubic{}
	case Akima:
		fp = &interp.AkimaSpline{}
	case HarmonicSpline:
		fp = &interp.FritschButland{}
	default:
		return k, nil
	}
	if err := fp.Fit(k.xs, k.ys); err != nil {
		return nil, fmt.Errorf("interpolation: fit %s: %w", k.method, err)
	}
	k.fitted = fp
	return k, nil
}

// Len returns the number of nodes.
func (k *Kernel) Len() int {
	return len(k.xs)
}

// ValueAt returns the interpolated entity value at x.
func (k *Kernel) ValueAt(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	n := len(k.xs)
	if n == 1 {
		return k.ys[0]
	}
	switch {
	case x < k.xs[0]:
		return k.extrapolate(x, 0)
	case x > k.xs[n-1]:
		return k.extrapolate(x, n-1)
	}
	return k.interior(x)
}

func (k *Kernel) interior(x float64) float64 {
	switch k.method {
	case PiecewiseConstantLeftPoint:
		i := sort.SearchFloat64s(k.xs, x)
		if k.xs[i] == x {
			return k.ys[i]
		}
		return k.ys[i-1]
	case PiecewiseConstantRightPoint:
		return k.ys[sort.SearchFloat64s(k.xs, x)]
	default:
		return k.fitted.Predict(x)
	}
}

// extrapolate continues from boundary node b (0 or n-1).
func (k *Kernel) extrapolate(x float64, b int) float64 {
	switch k.extrapolation {
	case ExtrapolationConstant:
		return k.ys[b]
	case ExtrapolationLinear:
		return k.ys[b] + k.boundarySlope(b)*(x-k.xs[b])
	}

	switch k.method {
	case PiecewiseConstantLeftPoint, PiecewiseConstantRightPoint:
		return k.ys[b]
	case Linear:
		return k.ys[b] + k.boundarySlope(b)*(x-k.xs[b])
	}
	if dp, ok := k.fitted.(derivativePredictor); ok {
		i, j := 0, 1
		if b > 0 {
			i, j = b-1, b
		}
		return hermite(x, k.xs[i], k.xs[j], k.ys[i], k.ys[j], dp.PredictDerivative(k.xs[i]), dp.PredictDerivative(k.xs[j]))
	}
	return k.ys[b] + k.boundarySlope(b)*(x-k.xs[b])
}

// hermite evaluates the cubic through (a, ya) and (b, yb) with slopes da and
// db, continued beyond [a, b]. It is the boundary piece of a C1 cubic spline.
func hermite(x, a, b, ya, yb, da, db float64) float64 {
	h := b - a
	s := (x - a) / h
	s2, s3 := s*s, s*s*s
	return (2*s3-3*s2+1)*ya + (s3-2*s2+s)*h*da + (-2*s3+3*s2)*yb + (s3-s2)*h*db
}

func (k *Kernel) boundarySlope(b int) float64 {
	i, j := 0, 1
	if b > 0 {
		i, j = b-1, b
	}
	return (k.ys[j] - k.ys[i]) / (k.xs[j] - k.xs[i])
}
