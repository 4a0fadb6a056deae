package kern

import (
	"math"
	"testing"

	"github.com/lucasmaystre/gpinterp/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kernelCase struct {
	name   string
	kernel Kernel
	params []*param.Param
}

func kernelCases() []kernelCase {
	se := []*param.Param{param.New("tau", 1.3), param.New("lambda", 0.7)}
	m12 := []*param.Param{param.New("variance", 2.0), param.New("lscale", 1.5)}
	m32 := []*param.Param{param.New("variance", 0.8), param.New("lscale", 0.9)}
	c := []*param.Param{param.New("variance", 0.3)}
	addSE := []*param.Param{param.New("tau", 0.9), param.New("lambda", 1.1)}
	addC := []*param.Param{param.New("variance", 0.5)}
	return []kernelCase{
		{"squared exponential", NewSquaredExponential(se[0], se[1]), se},
		{"matern12", NewMatern12(m12[0], m12[1]), m12},
		{"matern32", NewMatern32(m32[0], m32[1]), m32},
		{"constant", NewConstant(c[0]), c},
		{"add", NewAdd(NewSquaredExponential(addSE[0], addSE[1]), NewConstant(addC[0])),
			append(append([]*param.Param{}, addSE...), addC...)},
	}
}

func TestKernel_Symmetric(t *testing.T) {
	x1 := []float64{0.1, -0.4}
	x2 := []float64{1.2, 0.3}
	for _, tc := range kernelCases() {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kernel.Eval(x1, x2), tc.kernel.Eval(x2, x1))
			assert.GreaterOrEqual(t, tc.kernel.Eval(x1, x1), tc.kernel.Eval(x1, x2))
			assert.Equal(t, len(tc.params), tc.kernel.NumParams())
		})
	}
}

func TestKernel_DerivativesMatchFiniteDifferences(t *testing.T) {
	const eps = 1e-5
	x1 := []float64{0.2, 0.5}
	x2 := []float64{-0.6, 1.1}
	for _, tc := range kernelCases() {
		t.Run(tc.name, func(t *testing.T) {
			for i, p := range tc.params {
				v := p.Value()
				require.NoError(t, p.Set(v+eps))
				fp := tc.kernel.Eval(x1, x2)
				dp := make([]float64, len(tc.params))
				for j := range tc.params {
					dp[j] = tc.kernel.Derivative(x1, x2, j)
				}
				require.NoError(t, p.Set(v-eps))
				fm := tc.kernel.Eval(x1, x2)
				dm := make([]float64, len(tc.params))
				for j := range tc.params {
					dm[j] = tc.kernel.Derivative(x1, x2, j)
				}
				require.NoError(t, p.Set(v))

				fd := (fp - fm) / (2 * eps)
				assert.InDelta(t, fd, tc.kernel.Derivative(x1, x2, i), 1e-7, "d/d%s", p.Name())
				for j := range tc.params {
					fd2 := (dp[j] - dm[j]) / (2 * eps)
					assert.InDelta(t, fd2, tc.kernel.SecondDerivative(x1, x2, j, i), 1e-6,
						"d2/d%s d%s", tc.params[j].Name(), p.Name())
				}
			}
		})
	}
}

func TestKernel_VersionFollowsParams(t *testing.T) {
	for _, tc := range kernelCases() {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.kernel.Version()
			require.NoError(t, tc.params[0].Set(tc.params[0].Value()+1))
			assert.Greater(t, tc.kernel.Version(), before)
		})
	}
}

func TestKernel_IsOptimized(t *testing.T) {
	tau := param.New("tau", 1.0)
	lambda := param.New("lambda", 1.0)
	lambda.SetOptimized(false)
	variance := param.New("variance", 1.0)
	k := NewAdd(NewSquaredExponential(tau, lambda), NewConstant(variance))
	assert.True(t, k.IsOptimized(0))
	assert.False(t, k.IsOptimized(1))
	assert.True(t, k.IsOptimized(2))
	assert.Panics(t, func() { k.IsOptimized(3) })
	assert.Panics(t, func() { k.Derivative(nil, nil, -1) })
}

func TestAdd_FlattensNestedSums(t *testing.T) {
	a := NewConstant(param.New("a", 1.0))
	b := NewConstant(param.New("b", 2.0))
	c := NewConstant(param.New("c", 4.0))
	k := NewAdd(NewAdd(a, b), c)
	assert.Len(t, k.parts, 3)
	assert.Equal(t, 3, k.NumParams())
	assert.Equal(t, 7.0, k.Eval([]float64{0}, []float64{1}))
	assert.Equal(t, 0.0, k.SecondDerivative(nil, nil, 0, 2))
}

func TestSquaredExponential_Values(t *testing.T) {
	k := NewSquaredExponential(param.New("tau", 2.0), param.New("lambda", 1.0))
	assert.Equal(t, 4.0, k.Eval([]float64{1}, []float64{1}))
	assert.InDelta(t, 4.0*math.Exp(-0.5), k.Eval([]float64{0}, []float64{1}), 1e-15)
	assert.InDelta(t, 4.0*math.Exp(-1), k.Eval([]float64{0, 0}, []float64{1, 1}), 1e-15)
}
