package gpi

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Internals gives one external consumer, such as a likelihood restraint,
// read access to the cached quantities together with its own change flags.
// Reading the flags never invalidates the engine's caches, and refreshing
// the caches never clears the consumer's flags.
//
// Returned matrices and vectors are copies.
type Internals struct {
	g    *Interpolation
	mark Watermark
}

// Internals returns a new capability whose change flags start raised.
func (g *Interpolation) Internals() *Internals {
	return &Internals{g: g}
}

// MeanChanged reports whether m changed since the last call.
func (in *Internals) MeanChanged() bool {
	in.g.mu.Lock()
	defer in.g.mu.Unlock()
	return in.g.meanChangedFor(&in.mark)
}

// OmegaChanged reports whether Omega changed since the last call.
func (in *Internals) OmegaChanged() bool {
	in.g.mu.Lock()
	defer in.g.mu.Unlock()
	return in.g.omegaChangedFor(&in.mark)
}

func (in *Internals) Engine() *Interpolation {
	return in.g
}

// I returns the sample means.
func (in *Internals) I() *mat.VecDense {
	return mat.VecDenseCopyOf(in.g.vecI)
}

// M returns the prior mean at the observations.
func (in *Internals) M() *mat.VecDense {
	g := in.g
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshMean()
	g.ensureM()
	return mat.VecDenseCopyOf(g.vecM)
}

func (in *Internals) W() *mat.SymDense {
	g := in.g
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshCovariance()
	g.ensureW()
	return mat.NewSymDense(g.m, append([]float64(nil), g.matW.RawSymmetric().Data...))
}

func (in *Internals) Omega() *mat.SymDense {
	g := in.g
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshCovariance()
	g.ensureOmega()
	return mat.NewSymDense(g.m, append([]float64(nil), g.matOmega.RawSymmetric().Data...))
}

func (in *Internals) Omi() (*mat.SymDense, error) {
	g := in.g
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshCovariance()
	if err := g.ensureOmi(); err != nil {
		return nil, err
	}
	return mat.NewSymDense(g.m, append([]float64(nil), g.matOmi.RawSymmetric().Data...)), nil
}

// OmiIm returns Omega⁻¹ (I - m).
func (in *Internals) OmiIm() (*mat.VecDense, error) {
	g := in.g
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshMean()
	g.refreshCovariance()
	if err := g.ensureOmiIm(); err != nil {
		return nil, err
	}
	return mat.VecDenseCopyOf(g.vecOmiIm), nil
}

func (in *Internals) LogDetOmega() (float64, error) {
	g := in.g
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshCovariance()
	if err := g.ensureLDLT(); err != nil {
		return math.NaN(), err
	}
	return g.chol.LogDet(), nil
}

// MDerivative returns dm/dp for mean parameter i.
func (in *Internals) MDerivative(i int) *mat.VecDense {
	g := in.g
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mDerivative(i)
}

// MSecondDerivative returns d2m/(dp_i dp_j).
func (in *Internals) MSecondDerivative(i, j int) *mat.VecDense {
	g := in.g
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mSecondDerivative(i, j)
}

// OmegaDerivative returns dOmega/dp for Omega parameter p (0 is the noise
// scale).
func (in *Internals) OmegaDerivative(p int) *mat.SymDense {
	g := in.g
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshCovariance()
	d := g.omegaDerivative(p)
	return mat.NewSymDense(g.m, append([]float64(nil), d.RawSymmetric().Data...))
}

// OmegaSecondDerivative returns d2Omega/(dp dr), a zero matrix when either
// index is the noise scale.
func (in *Internals) OmegaSecondDerivative(p, r int) *mat.SymDense {
	g := in.g
	g.mu.Lock()
	defer g.mu.Unlock()
	if d := g.omegaSecondDerivative(p, r); d != nil {
		return d
	}
	return mat.NewSymDense(g.m, nil)
}
