package kern

import (
	"math"

	"github.com/lucasmaystre/gpinterp/param"
)

var (
	sqexp *SquaredExponential
	_     Kernel = sqexp // Check that SquaredExponential respects the Kernel interface.
)

// SquaredExponential covariance tau^2 * exp(-r^2 / (2 lambda^2)).
type SquaredExponential struct {
	params
	tau    *param.Param
	lambda *param.Param
}

func NewSquaredExponential(tau, lambda *param.Param) *SquaredExponential {
	return &SquaredExponential{
		params: params{tau, lambda},
		tau:    tau,
		lambda: lambda,
	}
}

func (k *SquaredExponential) Eval(x1, x2 []float64) float64 {
	r := distance(x1, x2)
	t, l := k.tau.Value(), k.lambda.Value()
	return t * t * math.Exp(-r*r/(2*l*l))
}

func (k *SquaredExponential) Derivative(x1, x2 []float64, i int) float64 {
	k.check(i)
	r := distance(x1, x2)
	t, l := k.tau.Value(), k.lambda.Value()
	e := math.Exp(-r * r / (2 * l * l))
	if i == 0 {
		return 2 * t * e
	}
	return t * t * e * r * r / (l * l * l)
}

func (k *SquaredExponential) SecondDerivative(x1, x2 []float64, i, j int) float64 {
	k.check(i, j)
	r := distance(x1, x2)
	t, l := k.tau.Value(), k.lambda.Value()
	e := math.Exp(-r * r / (2 * l * l))
	r2 := r * r
	l2 := l * l
	switch i + j {
	case 0:
		return 2 * e
	case 1:
		return 2 * t * e * r2 / (l2 * l)
	default:
		return t * t * e * (r2*r2/(l2*l2*l2) - 3*r2/(l2*l2))
	}
}
