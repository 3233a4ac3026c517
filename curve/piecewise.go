package curve

import (
	"fmt"
	"math"
	"time"
)

// PiecewiseCurve evaluates fixedPart strictly inside (start, end) and base
// everywhere else, e.g. historical fixings spliced into a projection.
type PiecewiseCurve struct {
	name       string
	start, end float64
	base       ref[Curve]
	fixedPart  ref[Curve]
}

// NewPiecewiseCurve owns both curves. The reference date is base's.
func NewPiecewiseCurve(name string, base, fixedPart Curve, start, end float64) (*PiecewiseCurve, error) {
	if base == nil || fixedPart == nil {
		return nil, fmt.Errorf("curve %q: %w: nil constituent", name, ErrInvalidArgument)
	}
	if math.IsNaN(start) || math.IsNaN(end) || !(start < end) {
		return nil, fmt.Errorf("curve %q: %w: interval (%g, %g)", name, ErrInvalidArgument, start, end)
	}
	return &PiecewiseCurve{
		name:      name,
		start:     start,
		end:       end,
		base:      ownedRef(base),
		fixedPart: ownedRef(fixedPart),
	}, nil
}

func (c *PiecewiseCurve) Name() string             { return c.name }
func (c *PiecewiseCurve) ReferenceDate() time.Time { return c.base.curve.ReferenceDate() }

// Interval returns the open interval served by the fixed part.
func (c *PiecewiseCurve) Interval() (float64, float64) { return c.start, c.end }

func (c *PiecewiseCurve) Value(repo Repository, t float64) (float64, error) {
	if t > c.start && t < c.end {
		return c.fixedPart.curve.Value(repo, t)
	}
	return c.base.curve.Value(repo, t)
}

// Parameters are base's followed by the fixed part's.
func (c *PiecewiseCurve) Parameters() []float64 {
	return ownedParameters(c.base, c.fixedPart)
}

func (c *PiecewiseCurve) WithParameters(p []float64) (Curve, error) {
	refs, err := withOwnedParameters([]ref[Curve]{c.base, c.fixedPart}, p)
	if err != nil {
		return nil, fmt.Errorf("curve %q: %w", c.name, err)
	}
	out := *c
	out.base, out.fixedPart = refs[0], refs[1]
	return &out, nil
}
