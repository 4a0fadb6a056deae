package fitters

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/lucasmaystre/gpinterp/gpi"
	"github.com/lucasmaystre/gpinterp/param"
	"github.com/lucasmaystre/gpinterp/restraint"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

var ErrParamCount = errors.New("parameter count does not match the restraint")

// BFGS minimizes the score of a restraint over the optimized parameters.
// Parameters with a finite lower bound are optimized in log space, so the
// optimizer never proposes a value below the bound.
type BFGS struct {
	Restraint *restraint.Restraint
	// Params in the engine's global layout: mean parameters, the noise
	// scale, then the covariance parameters.
	Params            []*param.Param
	MaxIterations     int
	GradientThreshold float64
	Logger            *slog.Logger
	Verbose           bool
}

type Result struct {
	InitialScore float64
	Score        float64
	Iterations   int
	Evaluations  int
	Status       string
}

// Fit runs the optimizer and leaves the parameters at the best point found.
// The score never increases: if the run ends worse off than it started, the
// initial values are restored.
func (f *BFGS) Fit() (*Result, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	engine := f.Restraint.Engine()
	if len(f.Params) != engine.NumParams() {
		return nil, fmt.Errorf("%w: got %d, engine has %d", ErrParamCount, len(f.Params), engine.NumParams())
	}
	initial, err := f.Restraint.Score()
	if err != nil {
		return nil, err
	}

	var idx []int
	for i, p := range f.Params {
		if p.IsOptimized() {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return &Result{InitialScore: initial, Score: initial, Status: "NothingToOptimize"}, nil
	}
	start := make([]float64, len(f.Params))
	for i, p := range f.Params {
		start[i] = p.Value()
	}
	x0 := make([]float64, len(idx))
	for k, i := range idx {
		x0[k] = f.toFree(i, start[i])
	}

	evaluations := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			evaluations++
			if err := f.set(idx, x); err != nil {
				return math.Inf(1)
			}
			s, err := f.Restraint.Score()
			if err != nil {
				if !errors.Is(err, gpi.ErrInvalidPrior) {
					logger.Warn("score evaluation failed", "error", err)
				}
				return math.Inf(1)
			}
			return s
		},
		Grad: func(grad, x []float64) {
			for k := range grad {
				grad[k] = 0
			}
			if err := f.set(idx, x); err != nil {
				return
			}
			g, err := f.Restraint.Gradient()
			if err != nil {
				return
			}
			for k, i := range idx {
				grad[k] = g.AtVec(i) * f.jacobian(i)
			}
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: f.GradientThreshold,
		MajorIterations:   f.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Iterations: 20,
		},
	}
	if f.Verbose {
		settings.Recorder = &progress{logger: logger}
	}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.BFGS{})
	if res == nil {
		f.restore(start)
		return nil, fmt.Errorf("bfgs: %w", err)
	}
	if err != nil {
		logger.Warn("optimizer stopped early", "status", res.Status.String(), "error", err)
	}

	result := &Result{
		InitialScore: initial,
		Iterations:   res.MajorIterations,
		Evaluations:  evaluations,
		Status:       res.Status.String(),
	}
	if math.IsInf(res.F, 0) || math.IsNaN(res.F) || res.F > initial {
		f.restore(start)
		result.Score = initial
		return result, nil
	}
	if err := f.set(idx, res.X); err != nil {
		f.restore(start)
		result.Score = initial
		return result, nil
	}
	result.Score, err = f.Restraint.Score()
	if err != nil {
		return nil, err
	}
	logger.Info("fit done",
		"initial_score", initial,
		"score", result.Score,
		"iterations", result.Iterations,
		"status", result.Status)
	return result, nil
}

func (f *BFGS) bounded(i int) bool {
	return !math.IsInf(f.Params[i].Lower(), -1)
}

func (f *BFGS) toFree(i int, v float64) float64 {
	if f.bounded(i) {
		return math.Log(math.Max(v-f.Params[i].Lower(), 1e-300))
	}
	return v
}

func (f *BFGS) fromFree(i int, u float64) float64 {
	if f.bounded(i) {
		return f.Params[i].Lower() + math.Exp(u)
	}
	return u
}

// jacobian returns dp/du at the current value.
func (f *BFGS) jacobian(i int) float64 {
	if f.bounded(i) {
		return f.Params[i].Value() - f.Params[i].Lower()
	}
	return 1
}

func (f *BFGS) set(idx []int, x []float64) error {
	for k, i := range idx {
		if err := f.Params[i].Set(f.fromFree(i, x[k])); err != nil {
			return err
		}
	}
	return nil
}

func (f *BFGS) restore(values []float64) {
	for i, p := range f.Params {
		// The values were valid to begin with.
		_ = p.Set(values[i])
	}
}

// progress logs every major iteration of the optimizer.
type progress struct {
	logger *slog.Logger
}

func (p *progress) Init() error {
	return nil
}

func (p *progress) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if op&optimize.MajorIteration == 0 {
		return nil
	}
	p.logger.Info("iteration",
		"n", stats.MajorIterations,
		"score", loc.F,
		"grad_norm", floats.Norm(loc.Gradient, 2))
	return nil
}
