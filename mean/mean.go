package mean

import (
	"errors"

	"github.com/lucasmaystre/gpinterp/param"
)

var ErrParamIndex = errors.New("parameter index out of range")

// Function is a prior mean function m(x), differentiable with respect to its
// own parameters.
type Function interface {
	Eval(x []float64) float64
	Derivative(x []float64, i int) float64
	SecondDerivative(x []float64, i, j int) float64
	NumParams() int
	IsOptimized(i int) bool
	Version() uint64
}

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

var (
	_ Function = (*Zero)(nil)
	_ Function = (*Constant)(nil)
	_ Function = (*Linear)(nil)
)

// Zero is the parameterless mean m(x) = 0.
type Zero struct {
	params
}

func NewZero() *Zero {
	return &Zero{}
}

func (f *Zero) Eval(x []float64) float64 {
	return 0.0
}

func (f *Zero) Derivative(x []float64, i int) float64 {
	f.check(i)
	return 0.0
}

func (f *Zero) SecondDerivative(x []float64, i, j int) float64 {
	f.check(i, j)
	return 0.0
}

// Constant is m(x) = offset.
type Constant struct {
	params
	offset *param.Param
}

func NewConstant(offset *param.Param) *Constant {
	return &Constant{
		params: params{offset},
		offset: offset,
	}
}

func (f *Constant) Eval(x []float64) float64 {
	return f.offset.Value()
}

func (f *Constant) Derivative(x []float64, i int) float64 {
	f.check(i)
	return 1.0
}

func (f *Constant) SecondDerivative(x []float64, i, j int) float64 {
	f.check(i, j)
	return 0.0
}

// Linear is m(x) = slope * x[0] + intercept. Only the first coordinate is
// used.
type Linear struct {
	params
	slope     *param.Param
	intercept *param.Param
}

func NewLinear(slope, intercept *param.Param) *Linear {
	return &Linear{
		params:    params{slope, intercept},
		slope:     slope,
		intercept: intercept,
	}
}

func (f *Linear) Eval(x []float64) float64 {
	return f.slope.Value()*x[0] + f.intercept.Value()
}

func (f *Linear) Derivative(x []float64, i int) float64 {
	f.check(i)
	if i == 0 {
		return x[0]
	}
	return 1.0
}

func (f *Linear) SecondDerivative(x []float64, i, j int) float64 {
	f.check(i, j)
	return 0.0
}
