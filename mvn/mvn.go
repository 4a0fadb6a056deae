// Package mvn evaluates the negative log density of a multivariate normal
// distribution and its derivatives with respect to the mean, the observed
// point and the covariance matrix.
package mvn

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var ErrNotPositiveDefinite = errors.New("covariance matrix is not positive definite")
var ErrDimension = errors.New("dimension mismatch")

// MVN is -log p(FX | FM, Sigma) + lJF, where lJF is minus the log of the
// Jacobian of any transformation applied to FX.
type MVN struct {
	fx    *mat.VecDense
	fm    *mat.VecDense
	lJF   float64
	chol  mat.Cholesky
	eps   *mat.VecDense // FX - FM.
	pEps  *mat.VecDense // Sigma⁻¹ eps.
	prec  *mat.SymDense // Sigma⁻¹, computed on first use.
	dSig  *mat.SymDense
	nrows int
}

func New(fx, fm mat.Vector, lJF float64, sigma mat.Symmetric) (*MVN, error) {
	n := fx.Len()
	if fm.Len() != n || sigma.SymmetricDim() != n {
		return nil, fmt.Errorf("%w: x has %d rows, mean %d, covariance %d",
			ErrDimension, n, fm.Len(), sigma.SymmetricDim())
	}
	d := &MVN{
		fx:    mat.VecDenseCopyOf(fx),
		fm:    mat.VecDenseCopyOf(fm),
		lJF:   lJF,
		nrows: n,
	}
	if ok := d.chol.Factorize(sigma); !ok {
		return nil, ErrNotPositiveDefinite
	}
	d.eps = mat.NewVecDense(n, nil)
	d.eps.SubVec(d.fx, d.fm)
	d.pEps = mat.NewVecDense(n, nil)
	if err := d.chol.SolveVecTo(d.pEps, d.eps); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPositiveDefinite, err)
	}
	return d, nil
}

// Evaluate returns n/2 log 2π + 1/2 log|Sigma| + 1/2 epsᵀ Sigma⁻¹ eps + lJF.
func (d *MVN) Evaluate() float64 {
	norm := float64(d.nrows)*0.5*math.Log(2*math.Pi) + 0.5*d.chol.LogDet()
	return norm + 0.5*mat.Dot(d.eps, d.pEps) + d.lJF
}

// DerivativeFM returns -Sigma⁻¹ eps.
func (d *MVN) DerivativeFM() *mat.VecDense {
	var r mat.VecDense
	r.ScaleVec(-1, d.pEps)
	return &r
}

// DerivativeFX returns Sigma⁻¹ eps.
func (d *MVN) DerivativeFX() *mat.VecDense {
	return mat.VecDenseCopyOf(d.pEps)
}

// Precision returns Sigma⁻¹.
func (d *MVN) Precision() (*mat.SymDense, error) {
	if d.prec == nil {
		var p mat.SymDense
		if err := d.chol.InverseTo(&p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotPositiveDefinite, err)
		}
		d.prec = &p
	}
	return d.prec, nil
}

// DerivativeSigma returns 1/2 (Sigma⁻¹ - Sigma⁻¹ eps epsᵀ Sigma⁻¹).
func (d *MVN) DerivativeSigma() (*mat.SymDense, error) {
	if d.dSig != nil {
		return d.dSig, nil
	}
	p, err := d.Precision()
	if err != nil {
		return nil, err
	}
	r := mat.NewSymDense(d.nrows, nil)
	r.CopySym(p)
	r.SymRankOne(r, -1, d.pEps)
	r.ScaleSym(0.5, r)
	d.dSig = r
	return r, nil
}
