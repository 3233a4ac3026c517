package calibration

import (
	"fmt"

	"github.com/meenmo/mocurve/curve"
)

// Target is a calibration instrument. Its residual is model minus quote,
// evaluated against a repository holding the candidate curves.
type Target interface {
	Residual(repo curve.Repository) (float64, error)
}

// DiscountFactorTarget quotes a discount factor.
type DiscountFactorTarget struct {
	Curve string
	Time  float64
	Quote float64
}

func (t DiscountFactorTarget) Residual(repo curve.Repository) (float64, error) {
	dc, ok := repo.DiscountCurve(t.Curve)
	if !ok {
		return 0, fmt.Errorf("%w: discount curve %q", curve.ErrUnresolvedCurve, t.Curve)
	}
	v, err := dc.DiscountFactor(repo, t.Time)
	if err != nil {
		return 0, err
	}
	return v - t.Quote, nil
}

// ZeroRateTarget quotes a continuously compounded zero rate.
type ZeroRateTarget struct {
	Curve string
	Time  float64
	Quote float64
}

func (t ZeroRateTarget) Residual(repo curve.Repository) (float64, error) {
	dc, ok := repo.DiscountCurve(t.Curve)
	if !ok {
		return 0, fmt.Errorf("%w: discount curve %q", curve.ErrUnresolvedCurve, t.Curve)
	}
	v, err := curve.ZeroRate(repo, dc, t.Time)
	if err != nil {
		return 0, err
	}
	return v - t.Quote, nil
}

// ForwardTarget quotes a forward fixing at Time.
type ForwardTarget struct {
	Curve string
	Time  float64
	Quote float64
}

func (t ForwardTarget) Residual(repo curve.Repository) (float64, error) {
	fc, ok := repo.ForwardCurve(t.Curve)
	if !ok {
		return 0, fmt.Errorf("%w: forward curve %q", curve.ErrUnresolvedCurve, t.Curve)
	}
	v, err := fc.Forward(repo, t.Time)
	if err != nil {
		return 0, err
	}
	return v - t.Quote, nil
}

// ValueTarget quotes the plain value of any curve.
type ValueTarget struct {
	Curve string
	Time  float64
	Quote float64
}

func (t ValueTarget) Residual(repo curve.Repository) (float64, error) {
	c, ok := repo.Curve(t.Curve)
	if !ok {
		return 0, fmt.Errorf("%w: curve %q", curve.ErrUnresolvedCurve, t.Curve)
	}
	v, err := c.Value(repo, t.Time)
	if err != nil {
		return 0, err
	}
	return v - t.Quote, nil
}
