// Package gpi performs Bayesian interpolation of noisy data sampled at
// scattered points using a Gaussian process prior.
//
// Given sample means I and standard deviations s observed at abscissae x_i
// (each averaged over n_obs samples), a prior mean function m, a prior
// covariance function w and a noise scale sigma, the posterior is
//
//	mean(q)      = m(q) + w(q)ᵀ Omega⁻¹ (I - m)
//	cov(q1, q2)  = w(q1, q2) - w(q1)ᵀ Omega⁻¹ w(q2)
//
// with Omega = W + sigma * S, W_ij = w(x_i, x_j) and S = diag(s²) / n_obs.
//
// The matrices are cached and recomputed lazily: the engine watches the
// version counters of the mean and covariance functions and the value of the
// noise scale, and only redoes the work that a change actually invalidates.
package gpi

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/lucasmaystre/gpinterp/kern"
	"github.com/lucasmaystre/gpinterp/mean"
	"github.com/lucasmaystre/gpinterp/param"
	"gonum.org/v1/gonum/mat"
)

const DefaultCutoff = 1e-7

type Option func(*Interpolation)

// WithCutoff sets the threshold below which kernel values are stored as 0.
func WithCutoff(cutoff float64) Option {
	return func(g *Interpolation) {
		g.cutoff = cutoff
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Interpolation) {
		g.logger = logger
	}
}

// Interpolation is the posterior engine. It is safe for concurrent use, but
// mutating the parameters while a query runs is not.
type Interpolation struct {
	mu sync.Mutex

	n    int        // Dimension of the abscissa.
	m    int        // Number of observations.
	x    *mat.Dense // Abscissae, one per row.
	nObs int
	vecI *mat.VecDense  // Sample means.
	matS *mat.DiagDense // Sample variances over n_obs.

	meanFn mean.Function
	covFn  kern.Kernel
	sigma  *param.Param
	cutoff float64
	logger *slog.Logger

	tracker

	// Cached quantities, each tagged with the generation it was computed at.
	vecM     *mat.VecDense   // Prior mean at the observations.
	matW     *mat.SymDense   // Prior covariance among the observations.
	matOmega *mat.SymDense   // W + sigma * S.
	chol     mat.Cholesky    // Factorization of Omega.
	matOmi   *mat.SymDense   // Omega⁻¹.
	vecOmiIm *mat.VecDense   // Omega⁻¹ (I - m).
	matsDW   []*mat.SymDense // dW/dp for each covariance parameter.

	stamps stamps
	stats  Stats
}

// New builds an engine over M observations. x is M×N; sampleMean and
// sampleStd have length M. Nothing is computed until the first query.
func New(x *mat.Dense, sampleMean, sampleStd []float64, nObs int,
	meanFn mean.Function, covFn kern.Kernel, sigma *param.Param,
	opts ...Option) (*Interpolation, error) {
	if x == nil || x.IsEmpty() {
		return nil, ErrEmpty
	}
	if meanFn == nil || covFn == nil || sigma == nil {
		return nil, ErrNilFunction
	}
	m, n := x.Dims()
	if len(sampleMean) != m || len(sampleStd) != m {
		return nil, fmt.Errorf("%w: %d abscissae, %d means, %d standard deviations",
			ErrDimension, m, len(sampleMean), len(sampleStd))
	}
	if nObs < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrSampleSize, nObs)
	}
	variances := make([]float64, m)
	for i, s := range sampleStd {
		if s < 0 {
			return nil, fmt.Errorf("%w: std[%d]=%v", ErrNegativeStd, i, s)
		}
		variances[i] = s * s / float64(nObs)
	}

	g := &Interpolation{
		n:      n,
		m:      m,
		x:      mat.DenseCopyOf(x),
		nObs:   nObs,
		vecI:   mat.NewVecDense(m, append([]float64(nil), sampleMean...)),
		matS:   mat.NewDiagDense(m, variances),
		meanFn: meanFn,
		covFn:  covFn,
		sigma:  sigma,
		cutoff: DefaultCutoff,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.cutoff < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativeCutoff, g.cutoff)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.tracker = newTracker(meanFn.Version(), covFn.Version(), sigma.Value())
	g.vecM = mat.NewVecDense(m, nil)
	g.matW = mat.NewSymDense(m, nil)
	g.matOmega = mat.NewSymDense(m, nil)
	g.matOmi = mat.NewSymDense(m, nil)
	g.vecOmiIm = mat.NewVecDense(m, nil)
	g.logger.Debug("gaussian process interpolation created",
		"observations", m,
		"dimensions", n,
		"n_obs", nObs,
		"cutoff", g.cutoff)
	return g, nil
}

// Dims returns the number of observations M and the abscissa dimension N.
func (g *Interpolation) Dims() (m, n int) {
	return g.m, g.n
}

func (g *Interpolation) Cutoff() float64 {
	return g.cutoff
}

func (g *Interpolation) NumMeanParams() int {
	return g.meanFn.NumParams()
}

func (g *Interpolation) MeanParamIsOptimized(i int) bool {
	return g.meanFn.IsOptimized(i)
}

// NumOmegaParams counts the parameters Omega depends on: the noise scale
// (index 0) followed by the covariance function's parameters.
func (g *Interpolation) NumOmegaParams() int {
	return 1 + g.covFn.NumParams()
}

func (g *Interpolation) OmegaParamIsOptimized(p int) bool {
	if p == 0 {
		return g.sigma.IsOptimized()
	}
	return g.covFn.IsOptimized(p - 1)
}

// NumParams is the size of the global parameter layout used by derivative
// outputs: mean parameters first, then Omega parameters.
func (g *Interpolation) NumParams() int {
	return g.NumMeanParams() + g.NumOmegaParams()
}

func (g *Interpolation) DataAbscissa() *mat.Dense {
	return mat.DenseCopyOf(g.x)
}

func (g *Interpolation) DataMean() *mat.VecDense {
	return mat.VecDenseCopyOf(g.vecI)
}

// DataVariance returns S, the sample variances divided by n_obs.
func (g *Interpolation) DataVariance() *mat.DiagDense {
	vars := make([]float64, g.m)
	for i := range vars {
		vars[i] = g.matS.At(i, i)
	}
	return mat.NewDiagDense(g.m, vars)
}

func (g *Interpolation) checkQuery(q []float64) error {
	if len(q) != g.n {
		return fmt.Errorf("%w: query has %d coordinates, abscissa has %d", ErrDimension, len(q), g.n)
	}
	return nil
}
