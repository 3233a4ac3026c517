// Package factory assembles composite curves from raw market inputs.
package factory

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/mocurve/calendar"
	"github.com/meenmo/mocurve/curve"
	"github.com/meenmo/mocurve/curve/interpolation"
	"github.com/meenmo/mocurve/logging"
	"github.com/meenmo/mocurve/utils"
)

var (
	// ErrConflictingSeasonalitySpec is returned when explicit seasonal
	// adjustments and an averaging period are both given.
	ErrConflictingSeasonalitySpec = errors.New("conflicting seasonality specification")
	// ErrMissingBaseFixing is returned when the lagged base date has no fixing.
	ErrMissingBaseFixing = errors.New("missing base fixing")
)

// FixingType selects the base date from the lagged reference date.
type FixingType string

const (
	FixingBeginningOfMonth FixingType = "beginningOfMonth"
	FixingEndOfMonth       FixingType = "endOfMonth"
	FixingExact            FixingType = "exact"
)

// IndexCurveSpec describes an index curve with fixings, seasonality and a
// projection implied by annualized zero rates.
type IndexCurveSpec struct {
	Name          string
	ReferenceDate time.Time
	// Lag is an offset code such as "3M"; the base date is ReferenceDate
	// moved back by Lag, then snapped per FixingType. Empty means no lag.
	Lag        string
	FixingType FixingType

	// Fixings are keyed by calendar date at midnight UTC (see utils.Date).
	Fixings             map[time.Time]float64
	AnnualizedZeroRates map[time.Time]float64

	// SeasonalAdjustments are 12 annualized monthly log adjustments,
	// January first. Mutually exclusive with SeasonalAveragingYears.
	SeasonalAdjustments []float64
	// SeasonalAveragingYears estimates the adjustments from Fixings.
	SeasonalAveragingYears int
}

// BaseDate returns the date whose fixing anchors the projection.
func (s IndexCurveSpec) BaseDate() (time.Time, error) {
	lagged := s.ReferenceDate
	if s.Lag != "" {
		lag, err := calendar.ParseOffset(s.Lag)
		if err != nil {
			return time.Time{}, fmt.Errorf("index curve %q: %w", s.Name, err)
		}
		lagged = calendar.Offset{N: -lag.N, Unit: lag.Unit}.Apply(calendar.WeekendsOnly, lagged)
	}
	switch s.FixingType {
	case FixingBeginningOfMonth:
		return utils.MonthStart(lagged), nil
	case FixingEndOfMonth:
		return utils.MonthEnd(lagged), nil
	case FixingExact, "":
		return lagged, nil
	}
	return time.Time{}, fmt.Errorf("index curve %q: %w: fixing type %q", s.Name, curve.ErrInvalidArgument, s.FixingType)
}

// NewIndexCurveWithSeasonality builds
//
//	Piecewise(fixings on (-inf, lastFixing], IndexFromDiscount x Seasonal)
//
// on a time axis anchored at the base date, so the curve returns the base
// fixing at t=0. The returned curve's ReferenceDate is the base date (at
// midnight UTC), not spec.ReferenceDate; callers converting dates to times
// must measure from it. The projection is rebased so that the seasonal
// factor of the base date cancels out.
func NewIndexCurveWithSeasonality(spec IndexCurveSpec) (*curve.PiecewiseCurve, error) {
	if spec.SeasonalAdjustments != nil && spec.SeasonalAveragingYears != 0 {
		return nil, fmt.Errorf("index curve %q: %w", spec.Name, ErrConflictingSeasonalitySpec)
	}
	if spec.ReferenceDate.IsZero() {
		return nil, fmt.Errorf("index curve %q: %w", spec.Name, curve.ErrMissingReferenceDate)
	}
	if len(spec.Fixings) == 0 {
		return nil, fmt.Errorf("index curve %q: %w: no fixings", spec.Name, curve.ErrInvalidArgument)
	}

	baseDate, err := spec.BaseDate()
	if err != nil {
		return nil, err
	}
	baseDate = utils.Date(baseDate)
	baseFixing, ok := spec.Fixings[baseDate]
	if !ok {
		return nil, fmt.Errorf("index curve %q: %w: %s", spec.Name, ErrMissingBaseFixing, baseDate.Format("2006-01-02"))
	}

	log := logging.Component("factory").WithFields(logrus.Fields{
		"curve":     spec.Name,
		"base_date": baseDate.Format("2006-01-02"),
	})

	discount, err := curve.NewDiscountCurveFromAnnualizedZeroRateDates(spec.Name+"-discount", baseDate, curve.Settings{
		Method:        interpolation.Linear,
		Extrapolation: interpolation.ExtrapolationConstant,
		Entity:        interpolation.LogOfValuePerTime,
	}, spec.AnnualizedZeroRates)
	if err != nil {
		return nil, err
	}

	var seasonal *curve.SeasonalCurve
	switch {
	case spec.SeasonalAdjustments != nil:
		seasonal, err = curve.NewSeasonalCurveFromAdjustments(spec.Name+"-seasonal", baseDate, spec.SeasonalAdjustments)
	case spec.SeasonalAveragingYears != 0:
		seasonal, err = curve.NewSeasonalCurveFromFixings(spec.Name+"-seasonal", baseDate, spec.Fixings, spec.SeasonalAveragingYears)
	}
	if err != nil {
		return nil, err
	}

	var projection curve.Curve
	if seasonal == nil {
		log.Debug("index curve without seasonality")
		projection, err = curve.NewIndexCurveFromDiscountCurve(spec.Name+"-projection", baseFixing, discount)
		if err != nil {
			return nil, err
		}
	} else {
		s0, err := seasonal.Value(nil, 0)
		if err != nil {
			return nil, err
		}
		log.WithField("seasonal_base_factor", s0).Debug("index curve with seasonality")
		index, err := curve.NewIndexCurveFromDiscountCurve(spec.Name+"-projection", baseFixing/s0, discount)
		if err != nil {
			return nil, err
		}
		projection, err = curve.NewProductCurve(spec.Name+"-seasonal-projection", index, seasonal)
		if err != nil {
			return nil, err
		}
	}

	fixings, lastFixingTime, err := fixingCurve(spec.Name+"-fixings", baseDate, spec.Fixings)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"fixings":          len(spec.Fixings),
		"last_fixing_time": lastFixingTime,
	}).Debug("splicing fixings into projection")

	return curve.NewPiecewiseCurve(spec.Name, projection, fixings, -math.MaxFloat64, math.Nextafter(lastFixingTime, math.Inf(1)))
}

// fixingCurve holds the fixings piecewise constant from each fixing date on.
func fixingCurve(name string, baseDate time.Time, fixings map[time.Time]float64) (*curve.InterpolatedCurve, float64, error) {
	dates := make([]time.Time, 0, len(fixings))
	for d := range fixings {
		dates = append(dates, d)
	}
	utils.SortDates(dates)

	b := curve.NewBuilder(name, baseDate, curve.Settings{
		Method:        interpolation.PiecewiseConstantLeftPoint,
		Extrapolation: interpolation.ExtrapolationConstant,
		Entity:        interpolation.Value,
	})
	for _, d := range dates {
		if err := b.AddPoint(utils.FloatingPointDate(baseDate, d), fixings[d], false); err != nil {
			return nil, 0, err
		}
	}
	c, err := b.Build()
	if err != nil {
		return nil, 0, err
	}
	return c, utils.FloatingPointDate(baseDate, dates[len(dates)-1]), nil
}
