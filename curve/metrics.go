package curve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	kernelBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mocurve",
		Name:      "kernel_builds_total",
		Help:      "Interpolation kernels built.",
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mocurve",
		Name:      "evaluation_cache_hits_total",
		Help:      "Curve evaluations served from the evaluation cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mocurve",
		Name:      "evaluation_cache_misses_total",
		Help:      "Curve evaluations computed through the interpolation kernel.",
	})
)
