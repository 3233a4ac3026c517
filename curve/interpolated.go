package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/mocurve/config"
	"github.com/meenmo/mocurve/curve/interpolation"
	"github.com/meenmo/mocurve/logging"
)

// Settings is the interpolation configuration of a curve. Empty fields take
// the defaults of the curve kind being constructed.
type Settings struct {
	Method        interpolation.Method
	Extrapolation interpolation.ExtrapolationMethod
	Entity        interpolation.Entity
}

// DefaultSettings is used by plain interpolated curves and forward curves.
var DefaultSettings = Settings{
	Method:        interpolation.Linear,
	Extrapolation: interpolation.ExtrapolationConstant,
	Entity:        interpolation.Value,
}

// DefaultDiscountSettings interpolates zero rates linearly.
var DefaultDiscountSettings = Settings{
	Method:        interpolation.Linear,
	Extrapolation: interpolation.ExtrapolationConstant,
	Entity:        interpolation.LogOfValuePerTime,
}

func (s Settings) orDefault(d Settings) Settings {
	if s.Method == "" {
		s.Method = d.Method
	}
	if s.Extrapolation == "" {
		s.Extrapolation = d.Extrapolation
	}
	if s.Entity == "" {
		s.Entity = d.Entity
	}
	return s
}

func (s Settings) validate() error {
	if !s.Method.Valid() {
		return fmt.Errorf("%w: interpolation method %q", ErrInvalidArgument, s.Method)
	}
	if !s.Extrapolation.Valid() {
		return fmt.Errorf("%w: extrapolation method %q", ErrInvalidArgument, s.Extrapolation)
	}
	if !s.Entity.Valid() {
		return fmt.Errorf("%w: interpolation entity %q", ErrInvalidArgument, s.Entity)
	}
	return nil
}

// interpolator owns the points of one curve instance together with the
// derived kernel and evaluation cache. Points change only through addPoint,
// which is reachable from a Builder alone.
type interpolator struct {
	name     string
	settings Settings
	store    pointStore
	kernel   lazyKernel
	cache    *evalCache
}

func newInterpolator(name string, s Settings, store pointStore) *interpolator {
	store.entity = s.Entity
	return &interpolator{
		name:     name,
		settings: s,
		store:    store,
		cache:    newEvalCache(config.GetConfig()),
	}
}

func (ip *interpolator) addPoint(t, value float64, isParameter bool) error {
	changed, err := ip.store.insert(t, value, isParameter)
	if err != nil {
		return fmt.Errorf("curve %q: %w", ip.name, err)
	}
	if changed {
		ip.invalidate()
	}
	return nil
}

func (ip *interpolator) invalidate() {
	ip.kernel.invalidate()
	ip.cache.flush()
}

func (ip *interpolator) buildKernel() (*interpolation.Kernel, error) {
	xs, ys := ip.store.xy()
	k, err := interpolation.NewKernel(xs, ys, ip.settings.Method, ip.settings.Extrapolation)
	if err != nil {
		return nil, fmt.Errorf("curve %q: %w", ip.name, err)
	}
	if logging.L().IsLevelEnabled(logrus.DebugLevel) {
		logging.Component("curve").WithFields(logrus.Fields{
			"curve":  ip.name,
			"points": len(xs),
			"method": ip.settings.Method,
		}).Debug("built interpolation kernel")
	}
	return k, nil
}

func (ip *interpolator) value(t float64) (float64, error) {
	if math.IsNaN(t) {
		return 0, fmt.Errorf("%w: time is NaN", ErrInvalidArgument)
	}
	if v, ok := ip.cache.get(t); ok {
		return v, nil
	}
	k, err := ip.kernel.get(ip.buildKernel)
	if err != nil {
		return 0, err
	}
	v := ip.settings.Entity.FromEntity(k.ValueAt(t), t)
	ip.cache.set(t, v)
	return v, nil
}

// InterpolatedCurve is a curve given by points, an interpolation method, an
// extrapolation method and an interpolation entity.
type InterpolatedCurve struct {
	name          string
	referenceDate time.Time
	ip            *interpolator
}

// NewInterpolatedCurve builds a curve from (time, natural value) pairs.
// A nil isParameter marks every point as a calibration parameter.
func NewInterpolatedCurve(name string, referenceDate time.Time, s Settings, times, values []float64, isParameter []bool) (*InterpolatedCurve, error) {
	b := NewBuilder(name, referenceDate, s)
	if err := b.addPoints(times, values, isParameter); err != nil {
		return nil, err
	}
	return b.Build()
}

func (c *InterpolatedCurve) Name() string             { return c.name }
func (c *InterpolatedCurve) ReferenceDate() time.Time { return c.referenceDate }

// Settings returns the interpolation configuration.
func (c *InterpolatedCurve) Settings() Settings { return c.ip.settings }

// Points returns a copy of the points, values in entity space.
func (c *InterpolatedCurve) Points() []Point {
	return append([]Point(nil), c.ip.store.points...)
}

// Len returns the number of stored points.
func (c *InterpolatedCurve) Len() int { return c.ip.store.len() }

// Value returns the interpolated natural value at t. repo is not used.
func (c *InterpolatedCurve) Value(_ Repository, t float64) (float64, error) {
	return c.ip.value(t)
}

// Values evaluates the curve element-wise.
func (c *InterpolatedCurve) Values(repo Repository, times []float64) ([]float64, error) {
	return Values(repo, c, times)
}

func (c *InterpolatedCurve) Parameters() []float64 {
	return c.ip.store.parameters()
}

func (c *InterpolatedCurve) WithParameters(p []float64) (Curve, error) {
	clone, err := c.CloneWithParameters(p)
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// CloneWithParameters is WithParameters with a concrete result type. A vector
// bit-identical to Parameters returns the receiver.
func (c *InterpolatedCurve) CloneWithParameters(p []float64) (*InterpolatedCurve, error) {
	if equalBits(p, c.Parameters()) {
		return c, nil
	}
	store, err := c.ip.store.withParameters(p)
	if err != nil {
		return nil, fmt.Errorf("curve %q: %w", c.name, err)
	}
	return &InterpolatedCurve{
		name:          c.name,
		referenceDate: c.referenceDate,
		ip:            newInterpolator(c.name, c.ip.settings, store),
	}, nil
}

// Builder returns a builder seeded with a copy of the curve's points.
func (c *InterpolatedCurve) Builder() *Builder {
	return &Builder{
		name:          c.name,
		referenceDate: c.referenceDate,
		ip:            newInterpolator(c.name, c.ip.settings, c.ip.store.clone()),
	}
}
