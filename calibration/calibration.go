// Package calibration fits curve parameters to market targets.
package calibration

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/meenmo/mocurve/config"
	"github.com/meenmo/mocurve/curve"
	"github.com/meenmo/mocurve/logging"
)

// ErrNotConverged is returned when the fitted residuals stay above tolerance.
var ErrNotConverged = errors.New("calibration did not converge")

// Problem lists the curves whose parameters are fitted and the targets they
// are fitted to. Repository holds the other curves the targets or the
// calibrated curves reference by name; it may be nil.
type Problem struct {
	Curves     []curve.Curve
	Repository *curve.Registry
	Targets    []Target
}

// Result holds the calibrated curves, in the order of Problem.Curves, and a
// repository where they replace their originals.
type Result struct {
	Curves      []curve.Curve
	Repository  *curve.Registry
	Parameters  []float64
	RMS         float64
	Evaluations int
	Iterations  int
	Status      string
}

// Calibrator minimizes the sum of squared target residuals with Nelder-Mead.
type Calibrator struct {
	cfg config.CalibrationConfig
	log *logrus.Entry
}

// New returns a calibrator. Zero fields of cfg take config defaults.
func New(cfg config.CalibrationConfig) *Calibrator {
	def := config.DefaultConfig.Calibration
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.MaxEvaluations <= 0 {
		cfg.MaxEvaluations = def.MaxEvaluations
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Calibrator{cfg: cfg, log: logging.Component("calibration")}
}

// Calibrate fits p. The curves in p are never modified. When the fit stays
// above tolerance the best result found is returned along with an error
// wrapping ErrNotConverged.
func (c *Calibrator) Calibrate(ctx context.Context, p Problem) (*Result, error) {
	if len(p.Curves) == 0 {
		return nil, fmt.Errorf("calibration: %w: no curves", curve.ErrInvalidArgument)
	}
	if len(p.Targets) == 0 {
		return nil, fmt.Errorf("calibration: %w: no targets", curve.ErrInvalidArgument)
	}

	var x0 []float64
	for _, cv := range p.Curves {
		x0 = append(x0, cv.Parameters()...)
	}
	if len(x0) == 0 {
		return nil, fmt.Errorf("calibration: %w: no parameters", curve.ErrInvalidArgument)
	}

	// Fail fast on targets that cannot be evaluated at all.
	if _, err := c.sumOfSquares(ctx, p, x0); err != nil {
		runs.WithLabelValues(outcomeFailed).Inc()
		return nil, fmt.Errorf("calibration: %w", err)
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			objectiveEvaluations.Inc()
			sse, err := c.sumOfSquares(ctx, p, x)
			if err != nil || math.IsNaN(sse) {
				return math.Inf(1)
			}
			return sse
		},
	}
	settings := &optimize.Settings{
		MajorIterations: c.cfg.MaxIterations,
		FuncEvaluations: c.cfg.MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-24,
			Relative:   1e-12,
			Iterations: 100,
		},
	}

	opt, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if opt == nil {
		runs.WithLabelValues(outcomeFailed).Inc()
		return nil, fmt.Errorf("calibration: %w", err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		runs.WithLabelValues(outcomeFailed).Inc()
		return nil, fmt.Errorf("calibration: %w", ctxErr)
	}

	curves, err := withParameters(p.Curves, opt.X)
	if err != nil {
		runs.WithLabelValues(outcomeFailed).Inc()
		return nil, fmt.Errorf("calibration: %w", err)
	}
	res := &Result{
		Curves:      curves,
		Repository:  p.Repository.With(curves...),
		Parameters:  append([]float64(nil), opt.X...),
		RMS:         math.Sqrt(opt.F / float64(len(p.Targets))),
		Evaluations: opt.FuncEvaluations,
		Iterations:  opt.MajorIterations,
		Status:      opt.Status.String(),
	}

	log := c.log.WithFields(logrus.Fields{
		"curves":      len(curves),
		"parameters":  len(x0),
		"targets":     len(p.Targets),
		"rms":         res.RMS,
		"evaluations": res.Evaluations,
		"status":      res.Status,
	})
	if !(res.RMS <= c.cfg.Tolerance) {
		runs.WithLabelValues(outcomeNotConverged).Inc()
		log.Warn("calibration did not converge")
		return res, fmt.Errorf("calibration: %w: rms %g above tolerance %g", ErrNotConverged, res.RMS, c.cfg.Tolerance)
	}
	runs.WithLabelValues(outcomeConverged).Inc()
	log.Info("calibration finished")
	return res, nil
}

// Calibrate fits p with the active configuration.
func Calibrate(ctx context.Context, p Problem) (*Result, error) {
	return New(config.GetConfig().Calibration).Calibrate(ctx, p)
}

// sumOfSquares evaluates all residuals for the parameter vector x, at most
// cfg.Concurrency at a time.
func (c *Calibrator) sumOfSquares(ctx context.Context, p Problem, x []float64) (float64, error) {
	curves, err := withParameters(p.Curves, x)
	if err != nil {
		return 0, err
	}
	repo := p.Repository.With(curves...)

	residuals := make([]float64, len(p.Targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, target := range p.Targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := target.Residual(repo)
			if err != nil {
				return err
			}
			residuals[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return floats.Dot(residuals, residuals), nil
}

// withParameters splits x over curves in order and clones each curve.
func withParameters(curves []curve.Curve, x []float64) ([]curve.Curve, error) {
	out := make([]curve.Curve, len(curves))
	offset := 0
	for i, cv := range curves {
		n := len(cv.Parameters())
		if offset+n > len(x) {
			return nil, fmt.Errorf("%w: %d parameters for %d curves", curve.ErrArityMismatch, len(x), len(curves))
		}
		clone, err := cv.WithParameters(x[offset : offset+n])
		if err != nil {
			return nil, fmt.Errorf("curve %q: %w", cv.Name(), err)
		}
		out[i] = clone
		offset += n
	}
	if offset != len(x) {
		return nil, fmt.Errorf("%w: %d parameters, curves take %d", curve.ErrArityMismatch, len(x), offset)
	}
	return out, nil
}
