package curve

import (
	"math"
	"strconv"
	"sync/atomic"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/meenmo/mocurve/config"
	"github.com/meenmo/mocurve/curve/interpolation"
)

// evalCache memoizes natural values by the bit pattern of t. A nil
// *evalCache is a disabled cache.
type evalCache struct {
	c *cache.Cache
}

// newEvalCache runs without a janitor: every clone gets its own cache, and a
// goroutine per clone would outlive calibration loops. Expired entries are
// still hidden by Get and replaced by the next set.
func newEvalCache(cfg config.Config) *evalCache {
	if !cfg.CacheEnabled {
		return nil
	}
	return &evalCache{c: cache.New(cfg.CacheExpiration, 0)}
}

func cacheKey(t float64) string {
	return strconv.FormatUint(math.Float64bits(t), 36)
}

func (e *evalCache) get(t float64) (float64, bool) {
	if e == nil {
		return 0, false
	}
	v, ok := e.c.Get(cacheKey(t))
	if !ok {
		cacheMisses.Inc()
		return 0, false
	}
	cacheHits.Inc()
	return v.(float64), true
}

func (e *evalCache) set(t, v float64) {
	if e != nil {
		e.c.SetDefault(cacheKey(t), v)
	}
}

func (e *evalCache) flush() {
	if e != nil {
		e.c.Flush()
	}
}

func (e *evalCache) len() int {
	if e == nil {
		return 0
	}
	return e.c.ItemCount()
}

type epochKernel struct {
	epoch  uint64
	kernel *interpolation.Kernel
}

// lazyKernel builds the interpolation kernel on first use after each
// invalidation. Concurrent callers of one epoch share a single build.
type lazyKernel struct {
	epoch   atomic.Uint64
	current atomic.Pointer[epochKernel]
	group   singleflight.Group
}

func (l *lazyKernel) get(build func() (*interpolation.Kernel, error)) (*interpolation.Kernel, error) {
	epoch := l.epoch.Load()
	if ek := l.current.Load(); ek != nil && ek.epoch == epoch {
		return ek.kernel, nil
	}
	v, err, _ := l.group.Do(strconv.FormatUint(epoch, 10), func() (any, error) {
		if ek := l.current.Load(); ek != nil && ek.epoch == epoch {
			return ek.kernel, nil
		}
		k, err := build()
		if err != nil {
			return nil, err
		}
		l.current.Store(&epochKernel{epoch: epoch, kernel: k})
		kernelBuilds.Inc()
		return k, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*interpolation.Kernel), nil
}

func (l *lazyKernel) invalidate() {
	l.epoch.Add(1)
}
