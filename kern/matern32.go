package kern

import (
	"math"

	"github.com/lucasmaystre/gpinterp/param"
)

var (
	matern32 *Matern32
	_        Kernel = matern32 // Check that Matern32 respects the Kernel interface.
)

// Matern32 covariance variance * (1 + a) * exp(-a), a = sqrt(3) r / lscale.
type Matern32 struct {
	params
	variance *param.Param
	lscale   *param.Param
}

func NewMatern32(variance, lscale *param.Param) *Matern32 {
	return &Matern32{
		params:   params{variance, lscale},
		variance: variance,
		lscale:   lscale,
	}
}

func (k *Matern32) scaled(x1, x2 []float64) float64 {
	return math.Sqrt(3) * distance(x1, x2) / k.lscale.Value()
}

func (k *Matern32) Eval(x1, x2 []float64) float64 {
	a := k.scaled(x1, x2)
	return k.variance.Value() * (1 + a) * math.Exp(-a)
}

func (k *Matern32) Derivative(x1, x2 []float64, i int) float64 {
	k.check(i)
	a := k.scaled(x1, x2)
	e := math.Exp(-a)
	if i == 0 {
		return (1 + a) * e
	}
	// dk/da = -v a exp(-a), da/dl = -a/l
	l := k.lscale.Value()
	return k.variance.Value() * a * a * e / l
}

func (k *Matern32) SecondDerivative(x1, x2 []float64, i, j int) float64 {
	k.check(i, j)
	a := k.scaled(x1, x2)
	e := math.Exp(-a)
	l := k.lscale.Value()
	switch i + j {
	case 0:
		return 0.0
	case 1:
		return a * a * e / l
	default:
		return k.variance.Value() * e * a * a * (a - 3) / (l * l)
	}
}
