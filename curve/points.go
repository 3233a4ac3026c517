package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/meenmo/mocurve/curve/interpolation"
)

// Point is a node of an interpolated curve. Value is in interpolation entity space.
type Point struct {
	Time        float64
	Value       float64
	IsParameter bool
}

// pointStore keeps points sorted by time with unique times.
type pointStore struct {
	entity interpolation.Entity
	points []Point
}

// search returns the index of the first point with Time >= t.
func (s *pointStore) search(t float64) int {
	return sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Time >= t
	})
}

// insert stores (t, value) converted to entity space. It reports whether the
// store changed; re-inserting an identical point is a no-op.
func (s *pointStore) insert(t, value float64, isParameter bool) (bool, error) {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return false, fmt.Errorf("%w: point time %g", ErrInvalidArgument, t)
	}
	x, err := s.entity.ToEntity(value, t)
	if err != nil {
		return false, err
	}
	// Under LOG_OF_VALUE_PER_TIME the value at t=0 is implied and fixed.
	if s.entity == interpolation.LogOfValuePerTime && t == 0 {
		if isParameter {
			return false, fmt.Errorf("%w: the anchor at time 0 cannot be a parameter", ErrInvalidAnchor)
		}
		return false, nil
	}

	i := s.search(t)
	if i < len(s.points) && s.points[i].Time == t {
		if math.Float64bits(s.points[i].Value) == math.Float64bits(x) {
			return false, nil
		}
		return false, fmt.Errorf("%w: time %g holds %g, got %g",
			ErrDuplicatePoint, t, s.entity.FromEntity(s.points[i].Value, t), value)
	}

	s.points = append(s.points, Point{})
	copy(s.points[i+1:], s.points[i:])
	s.points[i] = Point{Time: t, Value: x, IsParameter: isParameter}
	return true, nil
}

func (s *pointStore) len() int {
	return len(s.points)
}

func (s *pointStore) clone() pointStore {
	return pointStore{entity: s.entity, points: append([]Point(nil), s.points...)}
}

// xy splits the points into interpolation nodes.
func (s *pointStore) xy() ([]float64, []float64) {
	xs := make([]float64, len(s.points))
	ys := make([]float64, len(s.points))
	for i, p := range s.points {
		xs[i], ys[i] = p.Time, p.Value
	}
	return xs, ys
}

// parameters returns the natural values of the parameter points in time order.
func (s *pointStore) parameters() []float64 {
	var p []float64
	for _, pt := range s.points {
		if pt.IsParameter {
			p = append(p, s.entity.FromEntity(pt.Value, pt.Time))
		}
	}
	return p
}

func (s *pointStore) parameterCount() int {
	n := 0
	for _, pt := range s.points {
		if pt.IsParameter {
			n++
		}
	}
	return n
}

// withParameters returns a copy whose parameter points hold p.
func (s *pointStore) withParameters(p []float64) (pointStore, error) {
	if n := s.parameterCount(); n != len(p) {
		return pointStore{}, fmt.Errorf("%w: expected %d parameters, got %d", ErrArityMismatch, n, len(p))
	}
	out := s.clone()
	j := 0
	for i, pt := range out.points {
		if !pt.IsParameter {
			continue
		}
		x, err := s.entity.ToEntity(p[j], pt.Time)
		if err != nil {
			return pointStore{}, err
		}
		out.points[i].Value = x
		j++
	}
	return out, nil
}
