package interpolation

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidAnchor is returned when a log-value-per-time entity is asked to
// store a value other than 1 at time 0.
var ErrInvalidAnchor = errors.New("invalid anchor")

// Entity is the space in which values are stored and interpolated.
type Entity string

const (
	// Value interpolates the natural value.
	Value Entity = "VALUE"
	// LogOfValue interpolates ln(value).
	LogOfValue Entity = "LOG_OF_VALUE"
	// LogOfValuePerTime interpolates ln(value)/t, e.g. a zero rate for a
	// discount factor. The value at t=0 is fixed to 1.
	LogOfValuePerTime Entity = "LOG_OF_VALUE_PER_TIME"
)

// ToEntity maps a natural value at time t into entity space.
// Non-positive values under the log entities map to -Inf.
func (e Entity) ToEntity(value, t float64) (float64, error) {
	switch e {
	case LogOfValue:
		return math.Log(math.Max(value, 0)), nil
	case LogOfValuePerTime:
		if t == 0 {
			if value != 1.0 {
				return 0, fmt.Errorf("%w: %s requires value 1 at time 0, got %g", ErrInvalidAnchor, e, value)
			}
			return 0, nil
		}
		return math.Log(math.Max(value, 0)) / t, nil
	default:
		return value, nil
	}
}

// FromEntity maps an entity-space value at time t back to the natural value.
func (e Entity) FromEntity(x, t float64) float64 {
	switch e {
	case LogOfValue:
		return math.Exp(x)
	case LogOfValuePerTime:
		return math.Exp(x * t)
	default:
		return x
	}
}

// Valid reports whether e is a known entity.
func (e Entity) Valid() bool {
	switch e {
	case Value, LogOfValue, LogOfValuePerTime:
		return true
	}
	return false
}
