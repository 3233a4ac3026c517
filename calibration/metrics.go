package calibration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	objectiveEvaluations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mocurve",
		Subsystem: "calibration",
		Name:      "objective_evaluations_total",
		Help:      "Objective function evaluations, one per candidate parameter vector.",
	})
	runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mocurve",
		Subsystem: "calibration",
		Name:      "runs_total",
		Help:      "Calibration runs by outcome.",
	}, []string{"outcome"})
)

const (
	outcomeConverged    = "converged"
	outcomeNotConverged = "not_converged"
	outcomeFailed       = "failed"
)
