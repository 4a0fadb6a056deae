package gpi

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// computeOmega sets Omega = W + sigma * S.
func (g *Interpolation) computeOmega() {
	g.ensureW()
	g.matOmega.CopySym(g.matW)
	for i := 0; i < g.m; i++ {
		g.matOmega.SetSym(i, i, g.matW.At(i, i)+g.sigmaVal*g.matS.At(i, i))
	}
	g.stamps.omega = g.omegaGen
	g.stats.Omegas++
}

func (g *Interpolation) ensureOmega() {
	if g.stamps.omega != g.omegaGen {
		g.computeOmega()
	}
}

// computeLDLT factorizes Omega. Omega is stored as Uᵀ U with U upper
// triangular.
func (g *Interpolation) computeLDLT() error {
	g.ensureOmega()
	g.stats.Factorizations++
	if ok := g.chol.Factorize(g.matOmega); !ok {
		return fmt.Errorf("%w: factorization failed (sigma=%v)", ErrInvalidPrior, g.sigmaVal)
	}
	logDet := g.chol.LogDet()
	if math.IsNaN(logDet) || math.IsInf(logDet, 0) {
		return fmt.Errorf("%w: log-determinant is %v", ErrInvalidPrior, logDet)
	}
	g.stamps.chol = g.omegaGen
	g.logger.Debug("prior covariance factorized", "size", g.m, "log_det", logDet)
	return nil
}

func (g *Interpolation) ensureLDLT() error {
	if g.stamps.chol != g.omegaGen {
		return g.computeLDLT()
	}
	return nil
}

// computeOmi solves Omega X = Id through the factorization. The explicit
// inverse is needed by the second derivatives.
func (g *Interpolation) computeOmi() error {
	if err := g.ensureLDLT(); err != nil {
		return err
	}
	if err := g.chol.InverseTo(g.matOmi); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPrior, err)
	}
	g.stamps.omi = g.omegaGen
	g.stats.Inversions++
	return nil
}

func (g *Interpolation) ensureOmi() error {
	if g.stamps.omi != g.omegaGen {
		return g.computeOmi()
	}
	return nil
}

// computeOmiIm sets OmiIm = Omega⁻¹ (I - m).
func (g *Interpolation) computeOmiIm() error {
	g.ensureM()
	if err := g.ensureOmi(); err != nil {
		return err
	}
	var diff mat.VecDense
	diff.SubVec(g.vecI, g.vecM)
	g.vecOmiIm.MulVec(g.matOmi, &diff)
	g.stamps.omiImM = g.meanGen
	g.stamps.omiImO = g.omegaGen
	g.stats.Weights++
	return nil
}

func (g *Interpolation) ensureOmiIm() error {
	if g.stamps.omiImM != g.meanGen || g.stamps.omiImO != g.omegaGen {
		return g.computeOmiIm()
	}
	return nil
}

// LogDetOmega returns log |Omega|.
func (g *Interpolation) LogDetOmega() (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshCovariance()
	if err := g.ensureLDLT(); err != nil {
		return math.NaN(), err
	}
	return g.chol.LogDet(), nil
}

// SolveOmega returns Omega⁻¹ b through the factorization.
func (g *Interpolation) SolveOmega(b mat.Vector) (*mat.VecDense, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b.Len() != g.m {
		return nil, fmt.Errorf("%w: vector of length %d, expected %d", ErrDimension, b.Len(), g.m)
	}
	g.refreshCovariance()
	if err := g.ensureLDLT(); err != nil {
		return nil, err
	}
	var x mat.VecDense
	if err := g.chol.SolveVecTo(&x, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrior, err)
	}
	return &x, nil
}
