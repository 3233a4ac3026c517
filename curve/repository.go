package curve

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Repository resolves curves by name.
type Repository interface {
	Curve(name string) (Curve, bool)
	DiscountCurve(name string) (DiscountCurve, bool)
	ForwardCurve(name string) (ForwardCurve, bool)
}

// Registry is a map-backed Repository, safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	curves map[string]Curve
}

// NewRegistry returns a registry holding curves, keyed by name.
func NewRegistry(curves ...Curve) *Registry {
	r := &Registry{curves: make(map[string]Curve, len(curves))}
	r.Add(curves...)
	return r
}

// Add registers curves, replacing any curve with the same name.
func (r *Registry) Add(curves ...Curve) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range curves {
		if c != nil {
			r.curves[c.Name()] = c
		}
	}
}

// With returns a new registry holding r's curves overlaid with curves.
// r is left unchanged.
func (r *Registry) With(curves ...Curve) *Registry {
	out := &Registry{}
	if r != nil {
		r.mu.RLock()
		out.curves = maps.Clone(r.curves)
		r.mu.RUnlock()
	}
	if out.curves == nil {
		out.curves = make(map[string]Curve, len(curves))
	}
	out.Add(curves...)
	return out
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.curves))
}

func (r *Registry) Curve(name string) (Curve, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.curves[name]
	return c, ok
}

func (r *Registry) DiscountCurve(name string) (DiscountCurve, bool) {
	c, ok := r.Curve(name)
	if !ok {
		return nil, false
	}
	dc, ok := c.(DiscountCurve)
	return dc, ok
}

func (r *Registry) ForwardCurve(name string) (ForwardCurve, bool) {
	c, ok := r.Curve(name)
	if !ok {
		return nil, false
	}
	fc, ok := c.(ForwardCurve)
	return fc, ok
}

// ref addresses a curve either directly or by name through a Repository.
type ref[C Curve] struct {
	name  string
	curve C
	owned bool
}

func ownedRef[C Curve](c C) ref[C] {
	return ref[C]{name: c.Name(), curve: c, owned: true}
}

func namedRef[C Curve](name string) ref[C] {
	return ref[C]{name: name}
}

func (r ref[C]) resolve(repo Repository, lookup func(Repository, string) (C, bool)) (C, error) {
	if r.owned {
		return r.curve, nil
	}
	var zero C
	if repo == nil {
		return zero, fmt.Errorf("%w: %q (no repository)", ErrUnresolvedCurve, r.name)
	}
	c, ok := lookup(repo, r.name)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrUnresolvedCurve, r.name)
	}
	return c, nil
}

func lookupCurve(repo Repository, name string) (Curve, bool) { return repo.Curve(name) }

func lookupDiscountCurve(repo Repository, name string) (DiscountCurve, bool) {
	return repo.DiscountCurve(name)
}

func lookupForwardCurve(repo Repository, name string) (ForwardCurve, bool) {
	return repo.ForwardCurve(name)
}

// ownedParameters concatenates the parameter vectors of the owned refs.
func ownedParameters[C Curve](refs ...ref[C]) []float64 {
	var p []float64
	for _, r := range refs {
		if r.owned {
			p = append(p, r.curve.Parameters()...)
		}
	}
	return p
}

// withOwnedParameters splits p over the owned refs and returns refs holding
// the clones. Named refs are carried over unchanged.
func withOwnedParameters[C Curve](refs []ref[C], p []float64) ([]ref[C], error) {
	out := make([]ref[C], len(refs))
	offset := 0
	for i, r := range refs {
		out[i] = r
		if !r.owned {
			continue
		}
		n := len(r.curve.Parameters())
		if offset+n > len(p) {
			return nil, fmt.Errorf("%w: got %d parameters", ErrArityMismatch, len(p))
		}
		clone, err := r.curve.WithParameters(p[offset : offset+n])
		if err != nil {
			return nil, err
		}
		c, ok := clone.(C)
		if !ok {
			return nil, fmt.Errorf("%w: clone of %q changed kind", ErrInvalidArgument, r.name)
		}
		out[i].curve = c
		offset += n
	}
	if offset != len(p) {
		return nil, fmt.Errorf("%w: expected %d parameters, got %d", ErrArityMismatch, offset, len(p))
	}
	return out, nil
}
