package gpi

import (
	"github.com/lucasmaystre/gpinterp/utils"
	"gonum.org/v1/gonum/mat"
)

// Derivatives of cov(q, q) = w(q, q) - w(q)ᵀ Omi w(q) with respect to the
// global parameter layout [mean params | sigma | covariance params]. The
// posterior covariance does not depend on the mean, so the mean slots are
// zero; so are slots of parameters that are not optimized.

// dcovDwq is dcov(q,q)/dw(q) = -2 Omi w(q).
func dcovDwq(v *mat.VecDense) *mat.VecDense {
	var d mat.VecDense
	d.ScaleVec(-2, v)
	return &d
}

// dcovDOmega is dcov(q,q)/dOmega = Omi w(q) w(q)ᵀ Omi.
func dcovDOmega(v *mat.VecDense) *mat.SymDense {
	var d mat.SymDense
	d.SymOuterK(1, v)
	return &d
}

// omegaTerms holds, for one Omega parameter p, the pieces the chain rule
// reuses across the Hessian.
type omegaTerms struct {
	dk    float64       // dw(q,q)/dp
	dw    *mat.VecDense // dw(q)/dp, nil when zero
	dOm   *mat.SymDense // dOmega/dp
	omiDw *mat.VecDense // Omi dw(q)/dp, nil when zero
	dOmV  *mat.VecDense // dOmega/dp Omi w(q)
	omiDv *mat.VecDense // Omi dOmega/dp Omi w(q)
}

func (g *Interpolation) omegaTermsAt(q []float64, v *mat.VecDense, p int) *omegaTerms {
	t := &omegaTerms{
		dk:  g.priorCovarianceDerivative(q, q, p),
		dw:  g.wxVectorDerivative(q, p),
		dOm: g.omegaDerivative(p),
	}
	if t.dw != nil {
		t.omiDw = mat.NewVecDense(g.m, nil)
		t.omiDw.MulVec(g.matOmi, t.dw)
	}
	t.dOmV = mat.NewVecDense(g.m, nil)
	t.dOmV.MulVec(t.dOm, v)
	t.omiDv = mat.NewVecDense(g.m, nil)
	t.omiDv.MulVec(g.matOmi, t.dOmV)
	return t
}

// PosteriorCovarianceDerivative returns dcov(q,q)/dp for every parameter p
// of the global layout.
func (g *Interpolation) PosteriorCovarianceDerivative(q []float64) (*mat.VecDense, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkQuery(q); err != nil {
		return nil, err
	}
	g.refreshCovariance()
	if err := g.ensureOmi(); err != nil {
		return nil, err
	}
	wq := g.wxVector(q)
	var v mat.VecDense
	v.MulVec(g.matOmi, wq)
	dwq := dcovDwq(&v)
	dOm := dcovDOmega(&v)

	nOm := g.NumOmegaParams()
	d := mat.NewVecDense(nOm, nil)
	for p := 0; p < nOm; p++ {
		if !g.OmegaParamIsOptimized(p) {
			continue
		}
		val := g.priorCovarianceDerivative(q, q, p)
		if dw := g.wxVectorDerivative(q, p); dw != nil {
			val += mat.Dot(dwq, dw)
		}
		val += utils.TraceProd(dOm, g.omegaDerivative(p))
		d.SetVec(p, val)
	}
	return g.globalVec(d), nil
}

// PosteriorCovarianceHessian returns d2cov(q,q)/(dp dr) over the global
// layout. With v = Omi w, w_p = dw/dp and Om_p = dOmega/dp:
//
//	H_pr = w_pr(q,q) - 2 w_rᵀ Omi w_p - 2 vᵀ w_pr
//	       + 2 (Om_r v)ᵀ Omi w_p + 2 (Om_p v)ᵀ Omi w_r
//	       - 2 (Om_r v)ᵀ Omi (Om_p v) + vᵀ Om_pr v
//
// The first line is the d2cov/dw² block (-2 Omi), the second the mixed
// dw dOmega block, the last the d2cov/dOmega² block.
func (g *Interpolation) PosteriorCovarianceHessian(q []float64) (*mat.SymDense, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkQuery(q); err != nil {
		return nil, err
	}
	g.refreshCovariance()
	if err := g.ensureOmi(); err != nil {
		return nil, err
	}
	wq := g.wxVector(q)
	v := mat.NewVecDense(g.m, nil)
	v.MulVec(g.matOmi, wq)

	nOm := g.NumOmegaParams()
	terms := make([]*omegaTerms, nOm)
	for p := 0; p < nOm; p++ {
		if g.OmegaParamIsOptimized(p) {
			terms[p] = g.omegaTermsAt(q, v, p)
		}
	}

	h := mat.NewSymDense(nOm, nil)
	for p := 0; p < nOm; p++ {
		tp := terms[p]
		if tp == nil {
			continue
		}
		for r := p; r < nOm; r++ {
			tr := terms[r]
			if tr == nil {
				continue
			}
			val := g.priorCovarianceSecondDerivative(q, q, p, r)
			if tp.omiDw != nil && tr.dw != nil {
				val -= 2 * mat.Dot(tr.dw, tp.omiDw)
			}
			if wpr := g.wxVectorSecondDerivative(q, p, r); wpr != nil {
				val -= 2 * mat.Dot(v, wpr)
			}
			if tp.omiDw != nil {
				val += 2 * mat.Dot(tr.dOmV, tp.omiDw)
			}
			if tr.omiDw != nil {
				val += 2 * mat.Dot(tp.dOmV, tr.omiDw)
			}
			val -= 2 * mat.Dot(tr.dOmV, tp.omiDv)
			if ompr := g.omegaSecondDerivative(p, r); ompr != nil {
				val += mat.Inner(v, ompr, v)
			}
			h.SetSym(p, r, val)
		}
	}
	return g.globalSym(h), nil
}

// globalVec prepends the (zero) mean slots to an Omega-indexed vector.
func (g *Interpolation) globalVec(omega *mat.VecDense) *mat.VecDense {
	nm := g.NumMeanParams()
	if nm == 0 {
		return omega
	}
	return utils.ConcatVecs(nm+omega.Len(), mat.NewVecDense(nm, nil), omega)
}

// globalSym places an Omega-indexed matrix after the (zero) mean block.
func (g *Interpolation) globalSym(omega *mat.SymDense) *mat.SymDense {
	nm := g.NumMeanParams()
	if nm == 0 {
		return omega
	}
	return utils.BlockDiag(nm+omega.SymmetricDim(), mat.NewSymDense(nm, nil), omega)
}
