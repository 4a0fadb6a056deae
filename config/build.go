package config

import (
	"fmt"
	"log/slog"

	"github.com/lucasmaystre/gpinterp/fitters"
	"github.com/lucasmaystre/gpinterp/gpi"
	"github.com/lucasmaystre/gpinterp/kern"
	"github.com/lucasmaystre/gpinterp/mean"
	"github.com/lucasmaystre/gpinterp/param"
	"github.com/lucasmaystre/gpinterp/restraint"
	"gonum.org/v1/gonum/mat"
)

// Model is a built run: the engine, the restraint scoring it and the
// parameters both depend on.
type Model struct {
	// Params follow the engine's global layout: mean parameters, the noise
	// scale, then the covariance parameters.
	Params    []*param.Param
	Sigma     *param.Param
	Engine    *gpi.Interpolation
	Restraint *restraint.Restraint
	Queries   *mat.Dense // nil when the run has no queries.

	fit    FitSpec
	logger *slog.Logger
}

func (c *Config) Build() (*Model, error) {
	logger := c.logger
	if logger == nil {
		logger = slog.Default()
	}
	meanFn, meanParams, err := buildMean(c.Prior.Mean)
	if err != nil {
		return nil, fmt.Errorf("prior.mean: %w", err)
	}
	covFn, covParams, err := buildKernel(c.Prior.Kernel)
	if err != nil {
		return nil, fmt.Errorf("prior.kernel: %w", err)
	}
	sigma, err := buildParam("sigma", c.Sigma)
	if err != nil {
		return nil, err
	}

	opts := []gpi.Option{gpi.WithLogger(logger)}
	if c.Cutoff != nil {
		opts = append(opts, gpi.WithCutoff(*c.Cutoff))
	}
	engine, err := gpi.New(rows(c.Data.X), c.Data.Mean, c.Data.Std, c.Data.NObs,
		meanFn, covFn, sigma, opts...)
	if err != nil {
		return nil, err
	}

	params := make([]*param.Param, 0, len(meanParams)+1+len(covParams))
	params = append(params, meanParams...)
	params = append(params, sigma)
	params = append(params, covParams...)
	m := &Model{
		Params:    params,
		Sigma:     sigma,
		Engine:    engine,
		Restraint: restraint.New(engine),
		fit:       c.Fit,
		logger:    logger,
	}
	if len(c.Queries) > 0 {
		m.Queries = rows(c.Queries)
	}
	return m, nil
}

// Fitter returns a BFGS fitter over the model's parameters with the
// settings of the run file.
func (m *Model) Fitter(verbose bool) *fitters.BFGS {
	return &fitters.BFGS{
		Restraint:         m.Restraint,
		Params:            m.Params,
		MaxIterations:     m.fit.MaxIterations,
		GradientThreshold: m.fit.GradientThreshold,
		Logger:            m.logger,
		Verbose:           verbose,
	}
}

func rows(data [][]float64) *mat.Dense {
	r := mat.NewDense(len(data), len(data[0]), nil)
	for i, row := range data {
		r.SetRow(i, row)
	}
	return r
}

func buildParam(name string, s ParamSpec) (*param.Param, error) {
	p, err := param.NewBounded(name, s.Value, s.lower())
	if err != nil {
		return nil, err
	}
	p.SetOptimized(s.optimized())
	return p, nil
}

// namedParams builds the parameters of f in the given order.
func namedParams(f FunctionSpec, names ...string) ([]*param.Param, error) {
	ps := make([]*param.Param, len(names))
	for i, name := range names {
		s, ok := f.Params[name]
		if !ok {
			return nil, fmt.Errorf("%s params.%s: %w", f.Type, name, ErrMissingField)
		}
		p, err := buildParam(name, s)
		if err != nil {
			return nil, err
		}
		ps[i] = p
	}
	return ps, nil
}

func buildMean(f FunctionSpec) (mean.Function, []*param.Param, error) {
	switch f.Type {
	case MeanZero:
		return mean.NewZero(), nil, nil
	case MeanConstant:
		ps, err := namedParams(f, "offset")
		if err != nil {
			return nil, nil, err
		}
		return mean.NewConstant(ps[0]), ps, nil
	case MeanLinear:
		ps, err := namedParams(f, "slope", "intercept")
		if err != nil {
			return nil, nil, err
		}
		return mean.NewLinear(ps[0], ps[1]), ps, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownMean, f.Type)
	}
}

// buildKernel returns the kernel and its parameters in the kernel's own
// order. Sums concatenate the parameters of their terms.
func buildKernel(f FunctionSpec) (kern.Kernel, []*param.Param, error) {
	switch f.Type {
	case KernelSquaredExponential:
		ps, err := namedParams(f, "tau", "lambda")
		if err != nil {
			return nil, nil, err
		}
		return kern.NewSquaredExponential(ps[0], ps[1]), ps, nil
	case KernelMatern12, KernelMatern32:
		ps, err := namedParams(f, "variance", "lscale")
		if err != nil {
			return nil, nil, err
		}
		if f.Type == KernelMatern12 {
			return kern.NewMatern12(ps[0], ps[1]), ps, nil
		}
		return kern.NewMatern32(ps[0], ps[1]), ps, nil
	case KernelConstant:
		ps, err := namedParams(f, "variance")
		if err != nil {
			return nil, nil, err
		}
		return kern.NewConstant(ps[0]), ps, nil
	case KernelSum:
		if len(f.Terms) < 2 {
			return nil, nil, fmt.Errorf("sum needs at least two terms: %w", ErrMissingField)
		}
		var (
			parts  []kern.Kernel
			params []*param.Param
		)
		for i, t := range f.Terms {
			k, ps, err := buildKernel(t)
			if err != nil {
				return nil, nil, fmt.Errorf("terms[%d]: %w", i, err)
			}
			parts = append(parts, k)
			params = append(params, ps...)
		}
		return kern.NewAdd(parts[0], parts[1], parts[2:]...), params, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKernel, f.Type)
	}
}
