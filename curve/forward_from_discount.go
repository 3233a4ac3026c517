package curve

import (
	"fmt"
	"time"
)

// ForwardCurveFromDiscountCurve projects forwards off a discount curve:
// f(t) = (df(t)/df(t+δ) - 1) / δ.
type ForwardCurveFromDiscountCurve struct {
	name          string
	referenceDate time.Time
	discount      ref[DiscountCurve]
	paymentOffset PaymentOffsetConvention
}

// NewForwardCurveFromDiscountCurve owns discount; its parameters are the
// forward curve's parameters.
func NewForwardCurveFromDiscountCurve(name string, discount DiscountCurve, paymentOffset PaymentOffsetConvention) (*ForwardCurveFromDiscountCurve, error) {
	if discount == nil {
		return nil, fmt.Errorf("curve %q: %w: nil discount curve", name, ErrInvalidArgument)
	}
	return newForwardCurveFromDiscountCurve(name, discount.ReferenceDate(), ownedRef(discount), paymentOffset)
}

// NewForwardCurveFromDiscountCurveName resolves the discount curve through
// the repository passed to each evaluation.
func NewForwardCurveFromDiscountCurveName(name string, referenceDate time.Time, discountCurveName string, paymentOffset PaymentOffsetConvention) (*ForwardCurveFromDiscountCurve, error) {
	return newForwardCurveFromDiscountCurve(name, referenceDate, namedRef[DiscountCurve](discountCurveName), paymentOffset)
}

func newForwardCurveFromDiscountCurve(name string, referenceDate time.Time, discount ref[DiscountCurve], paymentOffset PaymentOffsetConvention) (*ForwardCurveFromDiscountCurve, error) {
	if paymentOffset.isCode() && referenceDate.IsZero() {
		return nil, fmt.Errorf("curve %q: %w: payment offset code %q", name, ErrMissingReferenceDate, paymentOffset.code)
	}
	return &ForwardCurveFromDiscountCurve{
		name:          name,
		referenceDate: referenceDate,
		discount:      discount,
		paymentOffset: paymentOffset.forCurve(),
	}, nil
}

func (c *ForwardCurveFromDiscountCurve) Name() string             { return c.name }
func (c *ForwardCurveFromDiscountCurve) ReferenceDate() time.Time { return c.referenceDate }

func (c *ForwardCurveFromDiscountCurve) PaymentOffset(fixingTime float64) float64 {
	return c.paymentOffset.at(c.referenceDate, fixingTime)
}

func (c *ForwardCurveFromDiscountCurve) Forward(repo Repository, fixingTime float64) (float64, error) {
	delta := c.PaymentOffset(fixingTime)
	if !(delta > 0) {
		return 0, fmt.Errorf("curve %q: %w: %g at %g", c.name, ErrNonPositiveOffset, delta, fixingTime)
	}
	dc, err := c.discount.resolve(repo, lookupDiscountCurve)
	if err != nil {
		return 0, fmt.Errorf("curve %q: %w", c.name, err)
	}
	start, err := dc.DiscountFactor(repo, fixingTime)
	if err != nil {
		return 0, err
	}
	end, err := dc.DiscountFactor(repo, fixingTime+delta)
	if err != nil {
		return 0, err
	}
	return (start/end - 1) / delta, nil
}

func (c *ForwardCurveFromDiscountCurve) Value(repo Repository, t float64) (float64, error) {
	return c.Forward(repo, t)
}

func (c *ForwardCurveFromDiscountCurve) Parameters() []float64 {
	return ownedParameters(c.discount)
}

func (c *ForwardCurveFromDiscountCurve) WithParameters(p []float64) (Curve, error) {
	refs, err := withOwnedParameters([]ref[DiscountCurve]{c.discount}, p)
	if err != nil {
		return nil, fmt.Errorf("curve %q: %w", c.name, err)
	}
	out := *c
	out.discount = refs[0]
	return &out, nil
}
