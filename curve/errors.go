package curve

import (
	"errors"

	"github.com/meenmo/mocurve/curve/interpolation"
)

var (
	// ErrDuplicatePoint is returned when a point is added at an existing time with a different value.
	ErrDuplicatePoint = errors.New("duplicate point")
	// ErrInvalidAnchor is returned for a non-unit value at t=0 under LOG_OF_VALUE_PER_TIME.
	ErrInvalidAnchor = interpolation.ErrInvalidAnchor
	// ErrArityMismatch is returned when a parameter vector has the wrong length.
	ErrArityMismatch = errors.New("parameter arity mismatch")
	// ErrUnresolvedCurve is returned when a named curve cannot be found in the repository.
	ErrUnresolvedCurve = errors.New("unresolved curve")
	// ErrNonPositiveOffset is returned when a forward curve reports a payment offset <= 0.
	ErrNonPositiveOffset = errors.New("non-positive payment offset")
	// ErrBuilderExhausted is returned when a builder is used after Build.
	ErrBuilderExhausted = errors.New("builder exhausted")
	// ErrNoPoints is returned when building a curve without points.
	ErrNoPoints = errors.New("curve has no points")
	// ErrMissingReferenceDate is returned when a date-based feature is used on a curve without reference date.
	ErrMissingReferenceDate = errors.New("missing reference date")
	// ErrInvalidArgument is returned for malformed constructor input.
	ErrInvalidArgument = errors.New("invalid argument")
)
