package kern

import (
	"math"

	"github.com/lucasmaystre/gpinterp/param"
)

var (
	matern12 *Matern12
	_        Kernel = matern12 // Check that Matern12 respects the Kernel interface.
)

// Matern12 (exponential) covariance variance * exp(-r / lscale).
type Matern12 struct {
	params
	variance *param.Param
	lscale   *param.Param
}

func NewMatern12(variance, lscale *param.Param) *Matern12 {
	return &Matern12{
		params:   params{variance, lscale},
		variance: variance,
		lscale:   lscale,
	}
}

func (k *Matern12) Eval(x1, x2 []float64) float64 {
	r := distance(x1, x2)
	return k.variance.Value() * math.Exp(-r/k.lscale.Value())
}

func (k *Matern12) Derivative(x1, x2 []float64, i int) float64 {
	k.check(i)
	r := distance(x1, x2)
	v, l := k.variance.Value(), k.lscale.Value()
	e := math.Exp(-r / l)
	if i == 0 {
		return e
	}
	// d/dl exp(-r/l) = exp(-r/l) * r / l^2
	return v * e * r / (l * l)
}

func (k *Matern12) SecondDerivative(x1, x2 []float64, i, j int) float64 {
	k.check(i, j)
	r := distance(x1, x2)
	v, l := k.variance.Value(), k.lscale.Value()
	e := math.Exp(-r / l)
	switch i + j {
	case 0:
		return 0.0
	case 1:
		return e * r / (l * l)
	default:
		a := r / (l * l)
		return v * e * (a*a - 2*r/(l*l*l))
	}
}
