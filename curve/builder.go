package curve

import (
	"fmt"
	"time"

	"github.com/meenmo/mocurve/curve/interpolation"
)

// Builder accumulates points for an InterpolatedCurve. It is the only way to
// add points to a curve and is not safe for concurrent use.
type Builder struct {
	name          string
	referenceDate time.Time
	ip            *interpolator
	exhausted     bool
}

// NewBuilder starts an empty curve. Empty Settings fields take DefaultSettings.
func NewBuilder(name string, referenceDate time.Time, s Settings) *Builder {
	return &Builder{
		name:          name,
		referenceDate: referenceDate,
		ip:            newInterpolator(name, s.orDefault(DefaultSettings), pointStore{}),
	}
}

// AddPoint adds (t, value) with value given in natural space.
func (b *Builder) AddPoint(t, value float64, isParameter bool) error {
	if b.exhausted {
		return fmt.Errorf("curve %q: %w", b.name, ErrBuilderExhausted)
	}
	return b.ip.addPoint(t, value, isParameter)
}

func (b *Builder) addPoints(times, values []float64, isParameter []bool) error {
	if len(times) != len(values) {
		return fmt.Errorf("curve %q: %w: %d times but %d values", b.name, ErrInvalidArgument, len(times), len(values))
	}
	if isParameter != nil && len(isParameter) != len(times) {
		return fmt.Errorf("curve %q: %w: %d times but %d parameter flags", b.name, ErrInvalidArgument, len(times), len(isParameter))
	}
	for i := range times {
		if err := b.AddPoint(times[i], values[i], b.parameterFlag(isParameter, i, times[i])); err != nil {
			return err
		}
	}
	return nil
}

// parameterFlag reads isParameter[i]. nil flags mark every point except the
// implied LOG_OF_VALUE_PER_TIME anchor at t=0.
func (b *Builder) parameterFlag(isParameter []bool, i int, t float64) bool {
	if isParameter != nil {
		return isParameter[i]
	}
	return t != 0 || b.ip.store.entity != interpolation.LogOfValuePerTime
}

// Len returns the number of points added so far.
func (b *Builder) Len() int {
	if b.exhausted {
		return 0
	}
	return b.ip.store.len()
}

// Value evaluates the curve under construction, as needed when bootstrapping.
func (b *Builder) Value(t float64) (float64, error) {
	if b.exhausted {
		return 0, fmt.Errorf("curve %q: %w", b.name, ErrBuilderExhausted)
	}
	if b.ip.store.len() == 0 {
		return 0, fmt.Errorf("curve %q: %w", b.name, ErrNoPoints)
	}
	return b.ip.value(t)
}

// Build freezes the points into a curve. A builder can be built once.
func (b *Builder) Build() (*InterpolatedCurve, error) {
	if b.exhausted {
		return nil, fmt.Errorf("curve %q: %w", b.name, ErrBuilderExhausted)
	}
	if err := b.ip.settings.validate(); err != nil {
		return nil, fmt.Errorf("curve %q: %w", b.name, err)
	}
	if b.ip.store.len() == 0 {
		return nil, fmt.Errorf("curve %q: %w", b.name, ErrNoPoints)
	}
	c := &InterpolatedCurve{name: b.name, referenceDate: b.referenceDate, ip: b.ip}
	b.ip = nil
	b.exhausted = true
	return c, nil
}
