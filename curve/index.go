package curve

import (
	"fmt"
	"time"
)

// IndexCurveFromDiscountCurve projects an index off a discount curve:
// I(t) = indexValue / df(t), so I(0) = indexValue.
type IndexCurveFromDiscountCurve struct {
	name          string
	referenceDate time.Time
	indexValue    float64
	discount      ref[DiscountCurve]
}

// NewIndexCurveFromDiscountCurve owns discount.
func NewIndexCurveFromDiscountCurve(name string, indexValue float64, discount DiscountCurve) (*IndexCurveFromDiscountCurve, error) {
	if discount == nil {
		return nil, fmt.Errorf("curve %q: %w: nil discount curve", name, ErrInvalidArgument)
	}
	return &IndexCurveFromDiscountCurve{
		name:          name,
		referenceDate: discount.ReferenceDate(),
		indexValue:    indexValue,
		discount:      ownedRef(discount),
	}, nil
}

// NewIndexCurveFromDiscountCurveName resolves the discount curve by name.
func NewIndexCurveFromDiscountCurveName(name string, referenceDate time.Time, indexValue float64, discountCurveName string) *IndexCurveFromDiscountCurve {
	return &IndexCurveFromDiscountCurve{
		name:          name,
		referenceDate: referenceDate,
		indexValue:    indexValue,
		discount:      namedRef[DiscountCurve](discountCurveName),
	}
}

func (c *IndexCurveFromDiscountCurve) Name() string             { return c.name }
func (c *IndexCurveFromDiscountCurve) ReferenceDate() time.Time { return c.referenceDate }
func (c *IndexCurveFromDiscountCurve) IndexValue() float64      { return c.indexValue }

func (c *IndexCurveFromDiscountCurve) Value(repo Repository, t float64) (float64, error) {
	dc, err := c.discount.resolve(repo, lookupDiscountCurve)
	if err != nil {
		return 0, fmt.Errorf("curve %q: %w", c.name, err)
	}
	df, err := dc.DiscountFactor(repo, t)
	if err != nil {
		return 0, err
	}
	return c.indexValue / df, nil
}

// Parameters are those of an owned discount curve; the index level is fixed.
func (c *IndexCurveFromDiscountCurve) Parameters() []float64 {
	return ownedParameters(c.discount)
}

func (c *IndexCurveFromDiscountCurve) WithParameters(p []float64) (Curve, error) {
	refs, err := withOwnedParameters([]ref[DiscountCurve]{c.discount}, p)
	if err != nil {
		return nil, fmt.Errorf("curve %q: %w", c.name, err)
	}
	out := *c
	out.discount = refs[0]
	return &out, nil
}
