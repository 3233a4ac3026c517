package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/mocurve/config"
)

// DiscountCurveFromForwardCurve compounds the single-period discount factors
// 1/(1 + f(t_i) δ_i) of a forward curve from t=0 to maturity, stepping by the
// forward curve's payment offset. The last period is cut at maturity.
type DiscountCurveFromForwardCurve struct {
	name          string
	referenceDate time.Time
	forward       ref[ForwardCurve]
}

// NewDiscountCurveFromForwardCurve owns forward.
func NewDiscountCurveFromForwardCurve(name string, forward ForwardCurve) (*DiscountCurveFromForwardCurve, error) {
	if forward == nil {
		return nil, fmt.Errorf("curve %q: %w: nil forward curve", name, ErrInvalidArgument)
	}
	return &DiscountCurveFromForwardCurve{name: name, referenceDate: forward.ReferenceDate(), forward: ownedRef(forward)}, nil
}

// NewDiscountCurveFromForwardCurveName resolves the forward curve by name.
func NewDiscountCurveFromForwardCurveName(name string, referenceDate time.Time, forwardCurveName string) *DiscountCurveFromForwardCurve {
	return &DiscountCurveFromForwardCurve{name: name, referenceDate: referenceDate, forward: namedRef[ForwardCurve](forwardCurveName)}
}

func (c *DiscountCurveFromForwardCurve) Name() string             { return c.name }
func (c *DiscountCurveFromForwardCurve) ReferenceDate() time.Time { return c.referenceDate }

// DiscountFactor chains the forwards up to maturity. An unresolved forward
// curve is reported at every maturity, including t <= 0.
func (c *DiscountCurveFromForwardCurve) DiscountFactor(repo Repository, maturity float64) (float64, error) {
	fc, err := c.forward.resolve(repo, lookupForwardCurve)
	if err != nil {
		return 0, fmt.Errorf("curve %q: %w", c.name, err)
	}
	return anchored(maturity, func() (float64, error) {
		maxSteps := config.GetConfig().MaxForwardSteps

		df := 1.0
		t := 0.0
		for step := 0; t < maturity; step++ {
			if step >= maxSteps {
				return 0, fmt.Errorf("curve %q: %w: more than %d periods to %g", c.name, ErrInvalidArgument, maxSteps, maturity)
			}
			delta := fc.PaymentOffset(t)
			if !(delta > 0) {
				return 0, fmt.Errorf("curve %q: %w: %g at %g", c.name, ErrNonPositiveOffset, delta, t)
			}
			f, err := fc.Forward(repo, t)
			if err != nil {
				return 0, err
			}
			df /= 1 + f*math.Min(delta, maturity-t)
			t += delta
		}
		return df, nil
	})
}

func (c *DiscountCurveFromForwardCurve) Value(repo Repository, t float64) (float64, error) {
	return c.DiscountFactor(repo, t)
}

func (c *DiscountCurveFromForwardCurve) ZeroRate(repo Repository, t float64) (float64, error) {
	return zeroRateFromDiscountFactor(repo, c, t)
}

func (c *DiscountCurveFromForwardCurve) Parameters() []float64 {
	return ownedParameters(c.forward)
}

func (c *DiscountCurveFromForwardCurve) WithParameters(p []float64) (Curve, error) {
	refs, err := withOwnedParameters([]ref[ForwardCurve]{c.forward}, p)
	if err != nil {
		return nil, fmt.Errorf("curve %q: %w", c.name, err)
	}
	out := *c
	out.forward = refs[0]
	return &out, nil
}
