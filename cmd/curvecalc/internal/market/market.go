// Package market loads a YAML market description into a curve registry.
//
// Example:
//
//	reference_date: 2025-01-15
//	curves:
//	  - name: ois
//	    kind: discount
//	    discount_factors: {1: 0.97, 2: 0.94}
//	  - name: euribor3m
//	    kind: forward
//	    payment_offset: 3M
//	    calendar: TARGET
//	    forwards: {0: 0.025, 5: 0.03}
//	  - name: ois-euribor
//	    kind: product
//	    factors: [ois, euribor3m]
//
// Curves are built in file order. Composite curves reference other curves by
// name, so they may appear before their factors; a forward curve storing
// FORWARD_TIMES_DISCOUNTFACTOR must follow its discount curve.
package market

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/mocurve/calendar"
	"github.com/meenmo/mocurve/curve"
	"github.com/meenmo/mocurve/curve/factory"
	"github.com/meenmo/mocurve/curve/interpolation"
	"github.com/meenmo/mocurve/logging"
	"github.com/meenmo/mocurve/utils"
)

// Curve kinds accepted in the kind field.
const (
	KindDiscount            = "discount"
	KindNSS                 = "nss"
	KindForward             = "forward"
	KindForwardFromDiscount = "forward_from_discount"
	KindDiscountFromForward = "discount_from_forward"
	KindProduct             = "product"
	KindDiscountProduct     = "discount_product"
	KindIndexFromDiscount   = "index_from_discount"
	KindIndex               = "index"
)

// File is the top level of a market file.
type File struct {
	ReferenceDate any          `yaml:"reference_date"`
	Curves        []CurveInput `yaml:"curves"`
}

// CurveInput describes one curve. Which fields apply depends on Kind.
// Point maps are keyed by time in years, or by date for index curves.
type CurveInput struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	Method        string `yaml:"method"`
	Extrapolation string `yaml:"extrapolation"`
	Entity        string `yaml:"entity"`

	// discount
	DiscountFactors       map[any]any `yaml:"discount_factors"`
	ZeroRates             map[any]any `yaml:"zero_rates"`
	AnnualizedZeroRates   map[any]any `yaml:"annualized_zero_rates"`
	ParQuotes             map[any]any `yaml:"par_quotes"` // tenor -> percent
	Calendar              string      `yaml:"calendar"`
	BusinessDayConvention string      `yaml:"business_day_convention"`

	// nss
	Parameters  []any `yaml:"parameters"`
	TimeScaling any   `yaml:"time_scaling"`

	// forward and friends
	ForwardEntity string      `yaml:"forward_entity"`
	Forwards      map[any]any `yaml:"forwards"`
	PaymentOffset any         `yaml:"payment_offset"` // years or offset code
	DiscountCurve string      `yaml:"discount_curve"`
	ForwardCurve  string      `yaml:"forward_curve"`

	// product
	Factors []string `yaml:"factors"`

	// index
	IndexValue             any         `yaml:"index_value"`
	Lag                    string      `yaml:"lag"`
	FixingType             string      `yaml:"fixing_type"`
	Fixings                map[any]any `yaml:"fixings"`
	SeasonalAdjustments    []any       `yaml:"seasonal_adjustments"`
	SeasonalAveragingYears int         `yaml:"seasonal_averaging_years"`
}

// Parse decodes a market file.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("market: parse: %w", err)
	}
	return f, nil
}

// Load parses r and builds every curve into a registry.
func Load(r io.Reader) (*curve.Registry, error) {
	f, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return f.Build()
}

// Build constructs the curves of f into a new registry.
func (f File) Build() (*curve.Registry, error) {
	var ref time.Time
	if f.ReferenceDate != nil {
		d, err := cast.ToTimeE(f.ReferenceDate)
		if err != nil {
			return nil, fmt.Errorf("market: reference_date: %w", err)
		}
		ref = d.UTC()
	}

	log := logging.Component("market")
	repo := curve.NewRegistry()
	for i, in := range f.Curves {
		if strings.TrimSpace(in.Name) == "" {
			return nil, fmt.Errorf("market: curve %d: missing name", i)
		}
		if _, dup := repo.Curve(in.Name); dup {
			return nil, fmt.Errorf("market: curve %q defined twice", in.Name)
		}
		c, err := in.build(ref, repo)
		if err != nil {
			return nil, fmt.Errorf("market: curve %q: %w", in.Name, err)
		}
		repo.Add(c)
		log.WithFields(logrus.Fields{
			"curve":      in.Name,
			"kind":       in.Kind,
			"parameters": len(c.Parameters()),
		}).Debug("curve loaded")
	}
	return repo, nil
}

func (in CurveInput) build(ref time.Time, repo curve.Repository) (curve.Curve, error) {
	switch strings.ToLower(in.Kind) {
	case KindDiscount:
		return in.discount(ref)
	case KindNSS:
		params, err := floatSlice(in.Parameters)
		if err != nil {
			return nil, fmt.Errorf("parameters: %w", err)
		}
		scaling := 1.0
		if in.TimeScaling != nil {
			if scaling, err = cast.ToFloat64E(in.TimeScaling); err != nil {
				return nil, fmt.Errorf("time_scaling: %w", err)
			}
		}
		return curve.NewDiscountCurveNelsonSiegelSvensson(in.Name, ref, params, scaling)
	case KindForward:
		return in.forward(ref, repo)
	case KindForwardFromDiscount:
		offset, err := in.paymentOffset()
		if err != nil {
			return nil, err
		}
		return curve.NewForwardCurveFromDiscountCurveName(in.Name, ref, in.DiscountCurve, offset)
	case KindDiscountFromForward:
		return curve.NewDiscountCurveFromForwardCurveName(in.Name, ref, in.ForwardCurve), nil
	case KindProduct:
		return curve.NewProductCurveOfNames(in.Name, ref, in.Factors...)
	case KindDiscountProduct:
		return curve.NewDiscountCurveProductOfNames(in.Name, ref, in.Factors...)
	case KindIndexFromDiscount:
		v, err := cast.ToFloat64E(in.IndexValue)
		if err != nil {
			return nil, fmt.Errorf("index_value: %w", err)
		}
		return curve.NewIndexCurveFromDiscountCurveName(in.Name, ref, v, in.DiscountCurve), nil
	case KindIndex:
		return in.index(ref)
	}
	return nil, fmt.Errorf("%w: unknown kind %q", curve.ErrInvalidArgument, in.Kind)
}

func (in CurveInput) settings() curve.Settings {
	return curve.Settings{
		Method:        interpolation.Method(strings.ToUpper(in.Method)),
		Extrapolation: interpolation.ExtrapolationMethod(strings.ToUpper(in.Extrapolation)),
		Entity:        interpolation.Entity(strings.ToUpper(in.Entity)),
	}
}

func (in CurveInput) discount(ref time.Time) (curve.Curve, error) {
	inputs := 0
	for _, m := range []map[any]any{in.DiscountFactors, in.ZeroRates, in.AnnualizedZeroRates, in.ParQuotes} {
		if len(m) > 0 {
			inputs++
		}
	}
	if inputs != 1 {
		return nil, fmt.Errorf("%w: exactly one of discount_factors, zero_rates, annualized_zero_rates, par_quotes is required", curve.ErrInvalidArgument)
	}

	s := in.settings()
	switch {
	case len(in.DiscountFactors) > 0:
		times, values, err := timePoints(in.DiscountFactors)
		if err != nil {
			return nil, fmt.Errorf("discount_factors: %w", err)
		}
		return curve.NewDiscountCurveFromDiscountFactors(in.Name, ref, s, times, values, nil)
	case len(in.ZeroRates) > 0:
		times, values, err := timePoints(in.ZeroRates)
		if err != nil {
			return nil, fmt.Errorf("zero_rates: %w", err)
		}
		return curve.NewDiscountCurveFromZeroRates(in.Name, ref, s, times, values, nil)
	case len(in.AnnualizedZeroRates) > 0:
		times, values, err := timePoints(in.AnnualizedZeroRates)
		if err != nil {
			return nil, fmt.Errorf("annualized_zero_rates: %w", err)
		}
		return curve.NewDiscountCurveFromAnnualizedZeroRates(in.Name, ref, s, times, values, nil)
	}

	quotes := make(map[string]float64, len(in.ParQuotes))
	for k, v := range in.ParQuotes {
		pct, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("par_quotes[%v]: %w", k, err)
		}
		quotes[cast.ToString(k)] = pct
	}
	return factory.BootstrapDiscountCurve(in.Name, ref, quotes, in.calendar())
}

func (in CurveInput) forward(ref time.Time, repo curve.Repository) (curve.Curve, error) {
	offset, err := in.paymentOffset()
	if err != nil {
		return nil, err
	}
	entity := curve.ForwardEntity(strings.ToUpper(in.ForwardEntity))
	if entity == "" {
		entity = curve.ForwardEntityForward
	}
	times, values, err := timePoints(in.Forwards)
	if err != nil {
		return nil, fmt.Errorf("forwards: %w", err)
	}
	return curve.NewForwardCurveFromForwards(curve.ForwardCurveSpec{
		Name:              in.Name,
		ReferenceDate:     ref,
		Settings:          in.settings(),
		Entity:            entity,
		PaymentOffset:     offset,
		DiscountCurveName: in.DiscountCurve,
	}, repo, times, values, nil)
}

func (in CurveInput) index(ref time.Time) (curve.Curve, error) {
	fixings, err := datePoints(in.Fixings)
	if err != nil {
		return nil, fmt.Errorf("fixings: %w", err)
	}
	rates, err := datePoints(in.AnnualizedZeroRates)
	if err != nil {
		return nil, fmt.Errorf("annualized_zero_rates: %w", err)
	}
	var adjustments []float64
	if in.SeasonalAdjustments != nil {
		if adjustments, err = floatSlice(in.SeasonalAdjustments); err != nil {
			return nil, fmt.Errorf("seasonal_adjustments: %w", err)
		}
	}
	return factory.NewIndexCurveWithSeasonality(factory.IndexCurveSpec{
		Name:                   in.Name,
		ReferenceDate:          ref,
		Lag:                    in.Lag,
		FixingType:             factory.FixingType(in.FixingType),
		Fixings:                fixings,
		AnnualizedZeroRates:    rates,
		SeasonalAdjustments:    adjustments,
		SeasonalAveragingYears: in.SeasonalAveragingYears,
	})
}

func (in CurveInput) calendar() calendar.CalendarID {
	if in.Calendar == "" {
		return calendar.WeekendsOnly
	}
	return calendar.CalendarID(strings.ToUpper(in.Calendar))
}

// paymentOffset reads a number as a fixed year fraction and anything else as
// an offset code rolled on the curve's calendar.
func (in CurveInput) paymentOffset() (curve.PaymentOffsetConvention, error) {
	if in.PaymentOffset == nil {
		return curve.PaymentOffsetConvention{}, fmt.Errorf("%w: payment_offset is required", curve.ErrInvalidArgument)
	}
	if s, ok := in.PaymentOffset.(string); ok {
		roll := calendar.ModifiedFollowing
		if in.BusinessDayConvention != "" {
			roll = calendar.BusinessDayConvention(strings.ToUpper(in.BusinessDayConvention))
		}
		return curve.CodePaymentOffset(strings.TrimSpace(s), in.calendar(), roll)
	}
	delta, err := cast.ToFloat64E(in.PaymentOffset)
	if err != nil {
		return curve.PaymentOffsetConvention{}, fmt.Errorf("payment_offset: %w", err)
	}
	return curve.FixedPaymentOffset(delta), nil
}

// timePoints converts a map keyed by time to sorted slices.
func timePoints(m map[any]any) ([]float64, []float64, error) {
	times := make([]float64, 0, len(m))
	byTime := make(map[float64]float64, len(m))
	for k, v := range m {
		t, err := cast.ToFloat64E(k)
		if err != nil {
			return nil, nil, fmt.Errorf("time %v: %w", k, err)
		}
		x, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, nil, fmt.Errorf("value at %v: %w", k, err)
		}
		if _, dup := byTime[t]; dup {
			return nil, nil, fmt.Errorf("%w: time %v", curve.ErrDuplicatePoint, t)
		}
		times = append(times, t)
		byTime[t] = x
	}
	sort.Float64s(times)
	values := make([]float64, len(times))
	for i, t := range times {
		values[i] = byTime[t]
	}
	return times, values, nil
}

func datePoints(m map[any]any) (map[time.Time]float64, error) {
	out := make(map[time.Time]float64, len(m))
	for k, v := range m {
		d, err := cast.ToTimeE(k)
		if err != nil {
			return nil, fmt.Errorf("date %v: %w", k, err)
		}
		x, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("value at %v: %w", k, err)
		}
		out[utils.Date(d)] = x
	}
	return out, nil
}

func floatSlice(in []any) ([]float64, error) {
	out := make([]float64, len(in))
	for i, v := range in {
		x, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = x
	}
	return out, nil
}
