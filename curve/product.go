package curve

import (
	"fmt"
	"time"
)

// productOf multiplies the values of its factors at the same time.
type productOf[C Curve] struct {
	name          string
	referenceDate time.Time
	factors       []ref[C]
	lookup        func(Repository, string) (C, bool)
}

func (p *productOf[C]) Name() string             { return p.name }
func (p *productOf[C]) ReferenceDate() time.Time { return p.referenceDate }

func (p *productOf[C]) value(repo Repository, t float64) (float64, error) {
	v := 1.0
	for _, f := range p.factors {
		c, err := f.resolve(repo, p.lookup)
		if err != nil {
			return 0, fmt.Errorf("curve %q: %w", p.name, err)
		}
		x, err := c.Value(repo, t)
		if err != nil {
			return 0, err
		}
		v *= x
	}
	return v, nil
}

// resolved reports ErrUnresolvedCurve for the first factor missing from repo.
func (p *productOf[C]) resolved(repo Repository) error {
	for _, f := range p.factors {
		if _, err := f.resolve(repo, p.lookup); err != nil {
			return fmt.Errorf("curve %q: %w", p.name, err)
		}
	}
	return nil
}

// Parameters concatenates the parameters of the owned factors in order.
func (p *productOf[C]) Parameters() []float64 {
	return ownedParameters(p.factors...)
}

func (p *productOf[C]) withParameters(params []float64) (*productOf[C], error) {
	factors, err := withOwnedParameters(p.factors, params)
	if err != nil {
		return nil, fmt.Errorf("curve %q: %w", p.name, err)
	}
	out := *p
	out.factors = factors
	return &out, nil
}

func newProductOf[C Curve](name string, referenceDate time.Time, factors []ref[C], lookup func(Repository, string) (C, bool)) (*productOf[C], error) {
	if len(factors) == 0 {
		return nil, fmt.Errorf("curve %q: %w: product of no curves", name, ErrInvalidArgument)
	}
	if referenceDate.IsZero() {
		for _, f := range factors {
			if f.owned && !f.curve.ReferenceDate().IsZero() {
				referenceDate = f.curve.ReferenceDate()
				break
			}
		}
	}
	return &productOf[C]{name: name, referenceDate: referenceDate, factors: factors, lookup: lookup}, nil
}

// ProductCurve is the pointwise product of curves, e.g. an index curve
// times a seasonal curve.
type ProductCurve struct {
	*productOf[Curve]
}

// NewProductCurve owns curves. The reference date is the first non-zero
// reference date among them.
func NewProductCurve(name string, curves ...Curve) (*ProductCurve, error) {
	factors := make([]ref[Curve], len(curves))
	for i, c := range curves {
		if c == nil {
			return nil, fmt.Errorf("curve %q: %w: nil factor", name, ErrInvalidArgument)
		}
		factors[i] = ownedRef(c)
	}
	p, err := newProductOf(name, time.Time{}, factors, lookupCurve)
	if err != nil {
		return nil, err
	}
	return &ProductCurve{p}, nil
}

// NewProductCurveOfNames resolves every factor through the repository.
func NewProductCurveOfNames(name string, referenceDate time.Time, names ...string) (*ProductCurve, error) {
	factors := make([]ref[Curve], len(names))
	for i, n := range names {
		factors[i] = namedRef[Curve](n)
	}
	p, err := newProductOf(name, referenceDate, factors, lookupCurve)
	if err != nil {
		return nil, err
	}
	return &ProductCurve{p}, nil
}

func (c *ProductCurve) Value(repo Repository, t float64) (float64, error) {
	return c.value(repo, t)
}

func (c *ProductCurve) WithParameters(p []float64) (Curve, error) {
	out, err := c.withParameters(p)
	if err != nil {
		return nil, err
	}
	return &ProductCurve{out}, nil
}

// DiscountCurveProduct is the product of discount curves, e.g. a spread
// curve on top of a base curve. It is itself a discount curve.
type DiscountCurveProduct struct {
	*productOf[DiscountCurve]
}

// NewDiscountCurveProduct owns curves.
func NewDiscountCurveProduct(name string, curves ...DiscountCurve) (*DiscountCurveProduct, error) {
	factors := make([]ref[DiscountCurve], len(curves))
	for i, c := range curves {
		if c == nil {
			return nil, fmt.Errorf("curve %q: %w: nil factor", name, ErrInvalidArgument)
		}
		factors[i] = ownedRef(c)
	}
	p, err := newProductOf(name, time.Time{}, factors, lookupDiscountCurve)
	if err != nil {
		return nil, err
	}
	return &DiscountCurveProduct{p}, nil
}

// NewDiscountCurveProductOfNames resolves every factor as a discount curve.
func NewDiscountCurveProductOfNames(name string, referenceDate time.Time, names ...string) (*DiscountCurveProduct, error) {
	factors := make([]ref[DiscountCurve], len(names))
	for i, n := range names {
		factors[i] = namedRef[DiscountCurve](n)
	}
	p, err := newProductOf(name, referenceDate, factors, lookupDiscountCurve)
	if err != nil {
		return nil, err
	}
	return &DiscountCurveProduct{p}, nil
}

// DiscountFactor is 1 at t=0 and 0 before it, once every factor resolves.
func (c *DiscountCurveProduct) DiscountFactor(repo Repository, t float64) (float64, error) {
	if err := c.resolved(repo); err != nil {
		return 0, err
	}
	return anchored(t, func() (float64, error) {
		return c.value(repo, t)
	})
}

func (c *DiscountCurveProduct) Value(repo Repository, t float64) (float64, error) {
	return c.DiscountFactor(repo, t)
}

func (c *DiscountCurveProduct) ZeroRate(repo Repository, t float64) (float64, error) {
	return zeroRateFromDiscountFactor(repo, c, t)
}

func (c *DiscountCurveProduct) WithParameters(p []float64) (Curve, error) {
	out, err := c.withParameters(p)
	if err != nil {
		return nil, err
	}
	return &DiscountCurveProduct{out}, nil
}
