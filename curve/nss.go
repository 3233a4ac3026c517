package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/mocurve/config"
)

// DiscountCurveNelsonSiegelSvensson is the parametric discount curve
//
//	r(t) = β0 + β1 g(x0) + β2 (g(x0) - e^-x0) + β3 (g(x1) - e^-x1),
//	g(x) = (1 - e^-x) / x,  x_i = t * timeScaling / τ_i,
//
// with df(t) = exp(-r(t) t). A τ_i <= 0 switches its terms off.
// Parameters are (β0, β1, β2, β3, τ0, τ1).
type DiscountCurveNelsonSiegelSvensson struct {
	name          string
	referenceDate time.Time
	params        [6]float64
	timeScaling   float64
}

// NewDiscountCurveNelsonSiegelSvensson requires six parameters and a
// positive time scaling.
func NewDiscountCurveNelsonSiegelSvensson(name string, referenceDate time.Time, params []float64, timeScaling float64) (*DiscountCurveNelsonSiegelSvensson, error) {
	if len(params) != 6 {
		return nil, fmt.Errorf("curve %q: %w: expected 6 parameters, got %d", name, ErrArityMismatch, len(params))
	}
	if !(timeScaling > 0) || math.IsInf(timeScaling, 0) {
		return nil, fmt.Errorf("curve %q: %w: time scaling %g", name, ErrInvalidArgument, timeScaling)
	}
	c := &DiscountCurveNelsonSiegelSvensson{name: name, referenceDate: referenceDate, timeScaling: timeScaling}
	copy(c.params[:], params)
	return c, nil
}

func (c *DiscountCurveNelsonSiegelSvensson) Name() string             { return c.name }
func (c *DiscountCurveNelsonSiegelSvensson) ReferenceDate() time.Time { return c.referenceDate }
func (c *DiscountCurveNelsonSiegelSvensson) TimeScaling() float64     { return c.timeScaling }

func (c *DiscountCurveNelsonSiegelSvensson) ZeroRate(_ Repository, t float64) (float64, error) {
	if t == 0 {
		t = config.GetConfig().ZeroRateEpsilon
	}
	return c.zeroRate(t), nil
}

func (c *DiscountCurveNelsonSiegelSvensson) zeroRate(t float64) float64 {
	b0, b1, b2, b3, tau0, tau1 := c.params[0], c.params[1], c.params[2], c.params[3], c.params[4], c.params[5]
	r := b0
	if tau0 > 0 {
		g, h := nssLoadings(t * c.timeScaling / tau0)
		r += b1*g + b2*h
	}
	if tau1 > 0 {
		_, h := nssLoadings(t * c.timeScaling / tau1)
		r += b3 * h
	}
	return r
}

// nssLoadings returns g(x) and g(x) - e^-x, with their limits 1 and 0 at x = 0.
func nssLoadings(x float64) (float64, float64) {
	if x == 0 {
		return 1, 0
	}
	g := -math.Expm1(-x) / x
	return g, g - math.Exp(-x)
}

func (c *DiscountCurveNelsonSiegelSvensson) DiscountFactor(_ Repository, t float64) (float64, error) {
	return anchored(t, func() (float64, error) {
		return math.Exp(-c.zeroRate(t) * t), nil
	})
}

func (c *DiscountCurveNelsonSiegelSvensson) Value(repo Repository, t float64) (float64, error) {
	return c.DiscountFactor(repo, t)
}

func (c *DiscountCurveNelsonSiegelSvensson) Parameters() []float64 {
	return append([]float64(nil), c.params[:]...)
}

// WithParameters always returns a new instance.
func (c *DiscountCurveNelsonSiegelSvensson) WithParameters(p []float64) (Curve, error) {
	clone, err := NewDiscountCurveNelsonSiegelSvensson(c.name, c.referenceDate, p, c.timeScaling)
	if err != nil {
		return nil, err
	}
	return clone, nil
}
