package kern

import (
	"github.com/lucasmaystre/gpinterp/param"
)

var (
	constant *Constant
	_        Kernel = constant // Check that Constant respects the Kernel interface.
)

// Constant covariance k(x1, x2) = variance.
type Constant struct {
	params
	variance *param.Param
}

func NewConstant(variance *param.Param) *Constant {
	return &Constant{
		params:   params{variance},
		variance: variance,
	}
}

func (k *Constant) Eval(x1, x2 []float64) float64 {
	return k.variance.Value()
}

func (k *Constant) Derivative(x1, x2 []float64, i int) float64 {
	k.check(i)
	return 1.0
}

func (k *Constant) SecondDerivative(x1, x2 []float64, i, j int) float64 {
	k.check(i, j)
	return 0.0
}
