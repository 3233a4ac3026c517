package curve

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/meenmo/mocurve/calendar"
	"github.com/meenmo/mocurve/utils"
)

// ForwardEntity selects the quantity a forward curve stores and interpolates.
type ForwardEntity string

const (
	// ForwardEntityForward stores the forward f.
	ForwardEntityForward ForwardEntity = "FORWARD"
	// ForwardEntityForwardTimesDiscountFactor stores f * df(t+δ) on a named discount curve.
	ForwardEntityForwardTimesDiscountFactor ForwardEntity = "FORWARD_TIMES_DISCOUNTFACTOR"
	// ForwardEntityZero stores the zero rate ln(1+fδ)/δ between fixing and payment.
	ForwardEntityZero ForwardEntity = "ZERO"
	// ForwardEntityDiscountFactor stores a synthetic discount factor D with
	// D(t+δ) = D(t)/(1+fδ) and D(0) = 1.
	ForwardEntityDiscountFactor ForwardEntity = "DISCOUNTFACTOR"
)

func (e ForwardEntity) Valid() bool {
	switch e {
	case ForwardEntityForward, ForwardEntityForwardTimesDiscountFactor, ForwardEntityZero, ForwardEntityDiscountFactor:
		return true
	}
	return false
}

// PaymentOffsetConvention gives the time from fixing to payment, either as a
// fixed year fraction or from an offset code rolled on a calendar.
type PaymentOffsetConvention struct {
	fixed float64
	code  string
	step  calendar.Offset
	cal   calendar.CalendarID
	roll  calendar.BusinessDayConvention
	memo  *sync.Map
}

// FixedPaymentOffset pays delta years after fixing.
func FixedPaymentOffset(delta float64) PaymentOffsetConvention {
	return PaymentOffsetConvention{fixed: delta}
}

// CodePaymentOffset pays at the fixing date moved by code (e.g. "3M") and
// rolled with roll on cal. Each curve memoizes its offsets per fixing time.
func CodePaymentOffset(code string, cal calendar.CalendarID, roll calendar.BusinessDayConvention) (PaymentOffsetConvention, error) {
	step, err := calendar.ParseOffset(code)
	if err != nil {
		return PaymentOffsetConvention{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return PaymentOffsetConvention{code: code, step: step, cal: cal, roll: roll, memo: &sync.Map{}}, nil
}

// Code returns the offset code, empty for a fixed offset.
func (p PaymentOffsetConvention) Code() string { return p.code }

func (p PaymentOffsetConvention) isCode() bool { return p.memo != nil }

// forCurve returns p with an empty memo. Memoized offsets depend on the
// reference date, so each curve holds its own; clones of a curve share it.
func (p PaymentOffsetConvention) forCurve() PaymentOffsetConvention {
	if p.isCode() {
		p.memo = &sync.Map{}
	}
	return p
}

func (p PaymentOffsetConvention) at(referenceDate time.Time, fixingTime float64) float64 {
	if !p.isCode() {
		return p.fixed
	}
	if v, ok := p.memo.Load(fixingTime); ok {
		return v.(float64)
	}
	fixingDate := utils.DateFromFloatingPoint(referenceDate, fixingTime)
	paymentDate := calendar.AdjustWith(p.cal, p.step.Apply(p.cal, fixingDate), p.roll)
	offset := utils.FloatingPointDate(referenceDate, paymentDate) - fixingTime
	p.memo.Store(fixingTime, offset)
	return offset
}

// ForwardCurveSpec describes a ForwardCurveInterpolation.
type ForwardCurveSpec struct {
	Name          string
	ReferenceDate time.Time
	// Settings defaults to DefaultSettings field by field.
	Settings Settings
	// Entity defaults to ForwardEntityForward.
	Entity        ForwardEntity
	PaymentOffset PaymentOffsetConvention
	// DiscountCurveName is required by ForwardEntityForwardTimesDiscountFactor.
	DiscountCurveName string
}

func (s ForwardCurveSpec) normalize() (ForwardCurveSpec, error) {
	if s.Entity == "" {
		s.Entity = ForwardEntityForward
	}
	s.Settings = s.Settings.orDefault(DefaultSettings)
	switch {
	case !s.Entity.Valid():
		return s, fmt.Errorf("curve %q: %w: forward entity %q", s.Name, ErrInvalidArgument, s.Entity)
	case s.Entity == ForwardEntityForwardTimesDiscountFactor && s.DiscountCurveName == "":
		return s, fmt.Errorf("curve %q: %w: %s needs a discount curve name", s.Name, ErrInvalidArgument, s.Entity)
	case s.PaymentOffset.isCode() && s.ReferenceDate.IsZero():
		return s, fmt.Errorf("curve %q: %w: payment offset code %q", s.Name, ErrMissingReferenceDate, s.PaymentOffset.code)
	}
	return s, nil
}

// ForwardCurveInterpolation is a forward curve interpolating one of the
// ForwardEntity quantities.
type ForwardCurveInterpolation struct {
	curve             *InterpolatedCurve
	entity            ForwardEntity
	paymentOffset     PaymentOffsetConvention
	discountCurveName string
}

// NewForwardCurveFromForwards builds a forward curve from forwards at fixing
// times. repo resolves the discount curve for
// ForwardEntityForwardTimesDiscountFactor and may be nil otherwise.
func NewForwardCurveFromForwards(spec ForwardCurveSpec, repo Repository, times, forwards []float64, isParameter []bool) (*ForwardCurveInterpolation, error) {
	if len(times) != len(forwards) {
		return nil, fmt.Errorf("curve %q: %w: %d times but %d forwards", spec.Name, ErrInvalidArgument, len(times), len(forwards))
	}
	if isParameter != nil && len(isParameter) != len(times) {
		return nil, fmt.Errorf("curve %q: %w: %d times but %d parameter flags", spec.Name, ErrInvalidArgument, len(times), len(isParameter))
	}
	b, err := NewForwardCurveBuilder(spec)
	if err != nil {
		return nil, err
	}
	for i := range times {
		if err := b.AddForward(repo, times[i], forwards[i], b.b.parameterFlag(isParameter, i, times[i])); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func (c *ForwardCurveInterpolation) Name() string             { return c.curve.Name() }
func (c *ForwardCurveInterpolation) ReferenceDate() time.Time { return c.curve.ReferenceDate() }
func (c *ForwardCurveInterpolation) Entity() ForwardEntity    { return c.entity }
func (c *ForwardCurveInterpolation) DiscountCurveName() string {
	return c.discountCurveName
}

func (c *ForwardCurveInterpolation) PaymentOffset(fixingTime float64) float64 {
	return c.paymentOffset.at(c.curve.ReferenceDate(), fixingTime)
}

func (c *ForwardCurveInterpolation) Forward(repo Repository, fixingTime float64) (float64, error) {
	stored, err := c.curve.Value(repo, fixingTime)
	if err != nil {
		return 0, err
	}
	delta := c.PaymentOffset(fixingTime)

	switch c.entity {
	case ForwardEntityForwardTimesDiscountFactor:
		df, err := discountFactorByName(repo, c.discountCurveName, fixingTime+delta)
		if err != nil {
			return 0, fmt.Errorf("curve %q: %w", c.Name(), err)
		}
		return stored / df, nil
	case ForwardEntityZero:
		if !(delta > 0) {
			return 0, fmt.Errorf("curve %q: %w: %g at %g", c.Name(), ErrNonPositiveOffset, delta, fixingTime)
		}
		return math.Expm1(stored*delta) / delta, nil
	case ForwardEntityDiscountFactor:
		if !(delta > 0) {
			return 0, fmt.Errorf("curve %q: %w: %g at %g", c.Name(), ErrNonPositiveOffset, delta, fixingTime)
		}
		end, err := c.curve.Value(repo, fixingTime+delta)
		if err != nil {
			return 0, err
		}
		return (stored/end - 1) / delta, nil
	default:
		return stored, nil
	}
}

func (c *ForwardCurveInterpolation) Value(repo Repository, t float64) (float64, error) {
	return c.Forward(repo, t)
}

// Parameters are the stored entity values of the parameter points.
func (c *ForwardCurveInterpolation) Parameters() []float64 { return c.curve.Parameters() }

func (c *ForwardCurveInterpolation) WithParameters(p []float64) (Curve, error) {
	clone, err := c.curve.CloneWithParameters(p)
	if err != nil {
		return nil, err
	}
	if clone == c.curve {
		return c, nil
	}
	out := *c
	out.curve = clone
	return &out, nil
}

// Builder returns a builder seeded with a copy of the curve's points.
func (c *ForwardCurveInterpolation) Builder() *ForwardCurveBuilder {
	return &ForwardCurveBuilder{
		b:                 c.curve.Builder(),
		referenceDate:     c.curve.ReferenceDate(),
		entity:            c.entity,
		paymentOffset:     c.paymentOffset,
		discountCurveName: c.discountCurveName,
	}
}

// ForwardCurveBuilder converts forwards into the configured ForwardEntity.
type ForwardCurveBuilder struct {
	b                 *Builder
	referenceDate     time.Time
	entity            ForwardEntity
	paymentOffset     PaymentOffsetConvention
	discountCurveName string
}

func NewForwardCurveBuilder(spec ForwardCurveSpec) (*ForwardCurveBuilder, error) {
	spec, err := spec.normalize()
	if err != nil {
		return nil, err
	}
	fb := &ForwardCurveBuilder{
		b:                 NewBuilder(spec.Name, spec.ReferenceDate, spec.Settings),
		referenceDate:     spec.ReferenceDate,
		entity:            spec.Entity,
		paymentOffset:     spec.PaymentOffset.forCurve(),
		discountCurveName: spec.DiscountCurveName,
	}
	if spec.Entity == ForwardEntityDiscountFactor {
		if err := fb.b.AddPoint(0, 1, false); err != nil {
			return nil, err
		}
	}
	return fb, nil
}

// AddForward adds the forward f fixing at t.
func (fb *ForwardCurveBuilder) AddForward(repo Repository, t, f float64, isParameter bool) error {
	delta := fb.paymentOffset.at(fb.referenceDate, t)

	switch fb.entity {
	case ForwardEntityForwardTimesDiscountFactor:
		df, err := discountFactorByName(repo, fb.discountCurveName, t+delta)
		if err != nil {
			return fmt.Errorf("curve %q: %w", fb.b.name, err)
		}
		return fb.b.AddPoint(t, f*df, isParameter)
	case ForwardEntityZero:
		if !(delta > 0) {
			return fmt.Errorf("curve %q: %w: %g at %g", fb.b.name, ErrNonPositiveOffset, delta, t)
		}
		return fb.b.AddPoint(t, math.Log1p(f*delta)/delta, isParameter)
	case ForwardEntityDiscountFactor:
		if !(delta > 0) {
			return fmt.Errorf("curve %q: %w: %g at %g", fb.b.name, ErrNonPositiveOffset, delta, t)
		}
		start := 1.0
		if fb.b.Len() > 0 {
			v, err := fb.b.Value(t)
			if err != nil {
				return err
			}
			start = v
		}
		return fb.b.AddPoint(t+delta, start/(1+f*delta), isParameter)
	default:
		return fb.b.AddPoint(t, f, isParameter)
	}
}

func (fb *ForwardCurveBuilder) Len() int { return fb.b.Len() }

func (fb *ForwardCurveBuilder) Build() (*ForwardCurveInterpolation, error) {
	c, err := fb.b.Build()
	if err != nil {
		return nil, err
	}
	return &ForwardCurveInterpolation{
		curve:             c,
		entity:            fb.entity,
		paymentOffset:     fb.paymentOffset,
		discountCurveName: fb.discountCurveName,
	}, nil
}

func discountFactorByName(repo Repository, name string, t float64) (float64, error) {
	dc, err := namedRef[DiscountCurve](name).resolve(repo, lookupDiscountCurve)
	if err != nil {
		return 0, err
	}
	return dc.DiscountFactor(repo, t)
}
