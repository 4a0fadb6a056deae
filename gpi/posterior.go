package gpi

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PosteriorMean returns m(q) + w(q)ᵀ Omega⁻¹ (I - m).
func (g *Interpolation) PosteriorMean(q []float64) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkQuery(q); err != nil {
		return math.NaN(), err
	}
	g.refreshMean()
	g.refreshCovariance()
	if err := g.ensureOmiIm(); err != nil {
		return math.NaN(), err
	}
	mq := g.meanFn.Eval(q)
	return mq + mat.Dot(g.wxVector(q), g.vecOmiIm), nil
}

// PosteriorCovariance returns w(q1, q2) - w(q1)ᵀ Omega⁻¹ w(q2).
func (g *Interpolation) PosteriorCovariance(q1, q2 []float64) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkQuery(q1); err != nil {
		return math.NaN(), err
	}
	if err := g.checkQuery(q2); err != nil {
		return math.NaN(), err
	}
	g.refreshCovariance()
	if err := g.ensureOmi(); err != nil {
		return math.NaN(), err
	}
	w1 := g.wxVector(q1)
	w2 := g.wxVector(q2)
	return g.covFn.Eval(q1, q2) - mat.Inner(w1, g.matOmi, w2), nil
}

// PosteriorCovarianceMatrix returns the posterior covariance between every
// pair of rows of qs. The result is symmetric; it is positive semi-definite
// up to rounding, so tiny negative eigenvalues can show up for nearly
// degenerate queries.
func (g *Interpolation) PosteriorCovarianceMatrix(qs *mat.Dense) (*mat.SymDense, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if qs == nil || qs.IsEmpty() {
		return nil, fmt.Errorf("%w: no query points", ErrDimension)
	}
	nq, n := qs.Dims()
	if n != g.n {
		return nil, fmt.Errorf("%w: queries have %d coordinates, abscissa has %d", ErrDimension, n, g.n)
	}
	g.refreshCovariance()
	if err := g.ensureOmi(); err != nil {
		return nil, err
	}

	// wq = [w(q_1) ... w(q_P)]ᵀ (P×M), b = wq Omega⁻¹
	wq := mat.NewDense(nq, g.m, nil)
	for i := 0; i < nq; i++ {
		wq.SetRow(i, g.wxVector(qs.RawRowView(i)).RawVector().Data)
	}
	var b mat.Dense
	b.Mul(wq, g.matOmi)

	cov := mat.NewSymDense(nq, nil)
	for i := 0; i < nq; i++ {
		qi := qs.RawRowView(i)
		bi := b.RowView(i)
		for j := i; j < nq; j++ {
			cov.SetSym(i, j, g.covFn.Eval(qi, qs.RawRowView(j))-mat.Dot(bi, wq.RowView(j)))
		}
	}
	return cov, nil
}
