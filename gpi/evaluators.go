package gpi

import (
	"github.com/lucasmaystre/gpinterp/utils"
	"gonum.org/v1/gonum/mat"
)

// computeM evaluates the prior mean at every observation.
func (g *Interpolation) computeM() {
	for i := 0; i < g.m; i++ {
		g.vecM.SetVec(i, g.meanFn.Eval(g.x.RawRowView(i)))
	}
	g.stamps.m = g.meanGen
	g.stats.MeanVectors++
}

func (g *Interpolation) ensureM() {
	if g.stamps.m != g.meanGen {
		g.computeM()
	}
}

// computeW evaluates the prior covariance over every pair of observations.
// Values below the cutoff are stored as exact zeros.
func (g *Interpolation) computeW() {
	nonZero := 0
	for i := 0; i < g.m; i++ {
		xi := g.x.RawRowView(i)
		for j := i; j < g.m; j++ {
			v := utils.Snap(g.covFn.Eval(xi, g.x.RawRowView(j)), g.cutoff)
			g.matW.SetSym(i, j, v)
			if v != 0 {
				nonZero++
			}
		}
	}
	g.stamps.w = g.wGen
	g.stats.Covariances++
	g.logger.Debug("prior covariance matrix computed",
		"size", g.m,
		"upper_non_zero", nonZero)
}

func (g *Interpolation) ensureW() {
	if g.stamps.w != g.wGen {
		g.computeW()
	}
}

// wxVector returns w(q), the covariances between q and the observations,
// with the cutoff applied.
func (g *Interpolation) wxVector(q []float64) *mat.VecDense {
	w := mat.NewVecDense(g.m, nil)
	for i := 0; i < g.m; i++ {
		w.SetVec(i, utils.Snap(g.covFn.Eval(q, g.x.RawRowView(i)), g.cutoff))
	}
	return w
}

// wxVectorDerivative returns dw(q)/dp for Omega parameter p, or nil when
// w(q) does not depend on it.
func (g *Interpolation) wxVectorDerivative(q []float64, p int) *mat.VecDense {
	if p == 0 {
		return nil
	}
	w := mat.NewVecDense(g.m, nil)
	for i := 0; i < g.m; i++ {
		w.SetVec(i, g.covFn.Derivative(q, g.x.RawRowView(i), p-1))
	}
	return w
}

// wxVectorSecondDerivative returns d2w(q)/(dp dr), or nil when zero.
func (g *Interpolation) wxVectorSecondDerivative(q []float64, p, r int) *mat.VecDense {
	if p == 0 || r == 0 {
		return nil
	}
	w := mat.NewVecDense(g.m, nil)
	for i := 0; i < g.m; i++ {
		w.SetVec(i, g.covFn.SecondDerivative(q, g.x.RawRowView(i), p-1, r-1))
	}
	return w
}

// priorCovarianceDerivative returns dw(q1, q2)/dp for Omega parameter p.
func (g *Interpolation) priorCovarianceDerivative(q1, q2 []float64, p int) float64 {
	if p == 0 {
		return 0
	}
	return g.covFn.Derivative(q1, q2, p-1)
}

func (g *Interpolation) priorCovarianceSecondDerivative(q1, q2 []float64, p, r int) float64 {
	if p == 0 || r == 0 {
		return 0
	}
	return g.covFn.SecondDerivative(q1, q2, p-1, r-1)
}

// mDerivative returns dm/dp for mean parameter i.
func (g *Interpolation) mDerivative(i int) *mat.VecDense {
	d := mat.NewVecDense(g.m, nil)
	for k := 0; k < g.m; k++ {
		d.SetVec(k, g.meanFn.Derivative(g.x.RawRowView(k), i))
	}
	return d
}

// mSecondDerivative returns d2m/(dp_i dp_j).
func (g *Interpolation) mSecondDerivative(i, j int) *mat.VecDense {
	d := mat.NewVecDense(g.m, nil)
	for k := 0; k < g.m; k++ {
		d.SetVec(k, g.meanFn.SecondDerivative(g.x.RawRowView(k), i, j))
	}
	return d
}

func (g *Interpolation) ensureDW() {
	if g.stamps.dW == g.wGen {
		return
	}
	nc := g.covFn.NumParams()
	if len(g.matsDW) != nc {
		g.matsDW = make([]*mat.SymDense, nc)
	}
	// Computed lazily per parameter.
	for p := range g.matsDW {
		g.matsDW[p] = nil
	}
	g.stamps.dW = g.wGen
}

// omegaDerivative returns dOmega/dp. The noise scale (p = 0) gives S; the
// covariance parameters give the matrix of kernel derivatives, cached until
// W changes.
func (g *Interpolation) omegaDerivative(p int) *mat.SymDense {
	if p == 0 {
		d := mat.NewSymDense(g.m, nil)
		for i := 0; i < g.m; i++ {
			d.SetSym(i, i, g.matS.At(i, i))
		}
		return d
	}
	g.ensureDW()
	if g.matsDW[p-1] == nil {
		d := mat.NewSymDense(g.m, nil)
		for i := 0; i < g.m; i++ {
			xi := g.x.RawRowView(i)
			for j := i; j < g.m; j++ {
				d.SetSym(i, j, g.covFn.Derivative(xi, g.x.RawRowView(j), p-1))
			}
		}
		g.matsDW[p-1] = d
	}
	return g.matsDW[p-1]
}

// omegaSecondDerivative returns d2Omega/(dp dr), or nil when zero.
func (g *Interpolation) omegaSecondDerivative(p, r int) *mat.SymDense {
	if p == 0 || r == 0 {
		return nil
	}
	d := mat.NewSymDense(g.m, nil)
	for i := 0; i < g.m; i++ {
		xi := g.x.RawRowView(i)
		for j := i; j < g.m; j++ {
			d.SetSym(i, j, g.covFn.SecondDerivative(xi, g.x.RawRowView(j), p-1, r-1))
		}
	}
	return d
}
