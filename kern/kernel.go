package kern

import (
	"errors"

	"github.com/lucasmaystre/gpinterp/param"
	"gonum.org/v1/gonum/floats"
)

var ErrParamIndex = errors.New("parameter index out of range")

// Kernel is a prior covariance function k(x1, x2) over points of any
// dimension, differentiable with respect to its own parameters.
type Kernel interface {
	// Covariance between two points.
	Eval(x1, x2 []float64) float64

	// Derivative of the covariance with respect to parameter i.
	Derivative(x1, x2 []float64, i int) float64

	// Second derivative with respect to parameters i and j.
	SecondDerivative(x1, x2 []float64, i, j int) float64

	// Number of parameters the covariance depends on.
	NumParams() int

	// Whether parameter i is moved by optimizers.
	IsOptimized(i int) bool

	// Monotonic counter that changes whenever a parameter does.
	Version() uint64
}

// params holds the parameters shared by every kernel in this package.
type params []*param.Param

func (ps params) NumParams() int {
	return len(ps)
}

func (ps params) IsOptimized(i int) bool {
	ps.check(i)
	return ps[i].IsOptimized()
}

func (ps params) Version() uint64 {
	return param.Versions(ps...)
}

func (ps params) check(idx ...int) {
	for _, i := range idx {
		if i < 0 || i >= len(ps) {
			panic(ErrParamIndex)
		}
	}
}

func distance(x1, x2 []float64) float64 {
	return floats.Distance(x1, x2, 2)
}
