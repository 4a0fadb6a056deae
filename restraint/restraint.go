// Package restraint scores the parameters of a Gaussian process
// interpolation by the marginal likelihood of the observed sample means.
package restraint

import (
	"fmt"

	"github.com/lucasmaystre/gpinterp/gpi"
	"github.com/lucasmaystre/gpinterp/mvn"
	"github.com/lucasmaystre/gpinterp/utils"
	"gonum.org/v1/gonum/mat"
)

// Restraint is -log N(I; m, Omega). It owns its own change flags on the
// engine, so it only rebuilds the density when m or Omega actually moved.
type Restraint struct {
	in       *gpi.Internals
	dist     *mvn.MVN
	rebuilds int
}

func New(engine *gpi.Interpolation) *Restraint {
	return &Restraint{in: engine.Internals()}
}

func (r *Restraint) Engine() *gpi.Interpolation {
	return r.in.Engine()
}

// Rebuilds counts how many times the density was rebuilt.
func (r *Restraint) Rebuilds() int {
	return r.rebuilds
}

func (r *Restraint) update() error {
	// Both flags must be read so that both watermarks move.
	meanChanged := r.in.MeanChanged()
	omegaChanged := r.in.OmegaChanged()
	if r.dist != nil && !meanChanged && !omegaChanged {
		return nil
	}
	dist, err := mvn.New(r.in.I(), r.in.M(), 0, r.in.Omega())
	if err != nil {
		r.dist = nil
		return fmt.Errorf("%w: %v", gpi.ErrInvalidPrior, err)
	}
	r.dist = dist
	r.rebuilds++
	return nil
}

func (r *Restraint) Score() (float64, error) {
	if err := r.update(); err != nil {
		return 0, err
	}
	return r.dist.Evaluate(), nil
}

// Gradient returns the derivative of the score over the engine's global
// parameter layout: mean parameters, the noise scale, covariance
// parameters. Slots of parameters that are not optimized are zero.
func (r *Restraint) Gradient() (*mat.VecDense, error) {
	if err := r.update(); err != nil {
		return nil, err
	}
	g := r.in.Engine()
	nm := g.NumMeanParams()
	grad := mat.NewVecDense(g.NumParams(), nil)

	dm := r.dist.DerivativeFM()
	for i := 0; i < nm; i++ {
		if g.MeanParamIsOptimized(i) {
			grad.SetVec(i, mat.Dot(dm, r.in.MDerivative(i)))
		}
	}

	dOmega, err := r.dist.DerivativeSigma()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gpi.ErrInvalidPrior, err)
	}
	for p := 0; p < g.NumOmegaParams(); p++ {
		if g.OmegaParamIsOptimized(p) {
			grad.SetVec(nm+p, utils.TraceProd(dOmega, r.in.OmegaDerivative(p)))
		}
	}
	return grad, nil
}
