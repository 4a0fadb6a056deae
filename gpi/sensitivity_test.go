package gpi

import (
	"testing"

	"github.com/lucasmaystre/gpinterp/kern"
	"github.com/lucasmaystre/gpinterp/mean"
	"github.com/lucasmaystre/gpinterp/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type sensitivityCase struct {
	name   string
	g      *Interpolation
	params []*param.Param // In global layout order.
	q      []float64
}

func sensitivityCases(t *testing.T) []sensitivityCase {
	t.Helper()
	var cases []sensitivityCase

	{
		offset := param.New("offset", 0.2)
		sigma := param.New("sigma", 0.8)
		tau := param.New("tau", 1.2)
		lambda := param.New("lambda", 0.9)
		x := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
		g, err := New(x, []float64{0.3, 1.1, 0.4, -0.2}, []float64{0.3, 0.3, 0.5, 0.3}, 2,
			mean.NewConstant(offset), kern.NewSquaredExponential(tau, lambda), sigma)
		require.NoError(t, err)
		cases = append(cases, sensitivityCase{"squared exponential 1d", g,
			[]*param.Param{offset, sigma, tau, lambda}, []float64{1.3}})
	}

	{
		slope := param.New("slope", 0.5)
		intercept := param.New("intercept", -0.1)
		sigma := param.New("sigma", 1.5)
		v1 := param.New("variance", 0.7)
		l1 := param.New("lscale", 1.4)
		v2 := param.New("variance", 0.4)
		l2 := param.New("lscale", 0.6)
		x := mat.NewDense(5, 2, []float64{
			0, 0,
			1, 0.5,
			0.2, 1.3,
			1.7, 1.1,
			-0.6, 0.4,
		})
		k := kern.NewAdd(kern.NewMatern32(v1, l1), kern.NewSquaredExponential(v2, l2))
		g, err := New(x, []float64{0.1, 0.8, -0.4, 0.6, 0.0}, []float64{0.2, 0.3, 0.2, 0.4, 0.3}, 3,
			mean.NewLinear(slope, intercept), k, sigma)
		require.NoError(t, err)
		cases = append(cases, sensitivityCase{"matern32 plus squared exponential 2d", g,
			[]*param.Param{slope, intercept, sigma, v1, l1, v2, l2}, []float64{0.6, 0.7}})
	}
	return cases
}

func posteriorVariance(t *testing.T, g *Interpolation, q []float64) float64 {
	v, err := g.PosteriorCovariance(q, q)
	require.NoError(t, err)
	return v
}

func TestPosteriorCovarianceDerivative_FiniteDifferences(t *testing.T) {
	const eps = 1e-5
	for _, tc := range sensitivityCases(t) {
		t.Run(tc.name, func(t *testing.T) {
			d, err := tc.g.PosteriorCovarianceDerivative(tc.q)
			require.NoError(t, err)
			require.Equal(t, len(tc.params), d.Len())
			for i, p := range tc.params {
				v := p.Value()
				require.NoError(t, p.Set(v+eps))
				fp := posteriorVariance(t, tc.g, tc.q)
				require.NoError(t, p.Set(v-eps))
				fm := posteriorVariance(t, tc.g, tc.q)
				require.NoError(t, p.Set(v))
				assert.InDelta(t, (fp-fm)/(2*eps), d.AtVec(i), 1e-7, "slot %d (%s)", i, p.Name())
			}
			for i := 0; i < tc.g.NumMeanParams(); i++ {
				assert.Equal(t, 0.0, d.AtVec(i))
			}
		})
	}
}

func TestPosteriorCovarianceHessian_FiniteDifferences(t *testing.T) {
	const eps = 1e-5
	for _, tc := range sensitivityCases(t) {
		t.Run(tc.name, func(t *testing.T) {
			h, err := tc.g.PosteriorCovarianceHessian(tc.q)
			require.NoError(t, err)
			require.Equal(t, len(tc.params), h.SymmetricDim())
			for j, p := range tc.params {
				v := p.Value()
				require.NoError(t, p.Set(v+eps))
				dp, err := tc.g.PosteriorCovarianceDerivative(tc.q)
				require.NoError(t, err)
				require.NoError(t, p.Set(v-eps))
				dm, err := tc.g.PosteriorCovarianceDerivative(tc.q)
				require.NoError(t, err)
				require.NoError(t, p.Set(v))
				for i := range tc.params {
					fd := (dp.AtVec(i) - dm.AtVec(i)) / (2 * eps)
					assert.InDelta(t, fd, h.At(i, j), 1e-6, "H[%d][%d]", i, j)
				}
			}
		})
	}
}

func TestSensitivity_NonOptimizedSlotsAreZero(t *testing.T) {
	f := threePoints(t, 0.7)
	f.lambda.SetOptimized(false)
	q := []float64{0.4}

	d, err := f.g.PosteriorCovarianceDerivative(q)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, 0.0, d.AtVec(0), "mean slot")
	assert.NotEqual(t, 0.0, d.AtVec(1), "sigma slot")
	assert.NotEqual(t, 0.0, d.AtVec(2), "tau slot")
	assert.Equal(t, 0.0, d.AtVec(3), "lambda slot")

	h, err := f.g.PosteriorCovarianceHessian(q)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0.0, h.At(0, i))
		assert.Equal(t, 0.0, h.At(3, i))
	}
	assert.NotEqual(t, 0.0, h.At(1, 1))
}

func TestSensitivity_NoiseSlot(t *testing.T) {
	// dcov/dsigma = w(q)ᵀ Omi S Omi w(q) >= 0: more noise, more uncertainty.
	f := threePoints(t, 1.0)
	for _, q := range []float64{-1, 0, 0.5, 1, 2.5} {
		d, err := f.g.PosteriorCovarianceDerivative([]float64{q})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d.AtVec(1), 0.0)
	}
}

func TestSensitivity_ReusesCachedFactorization(t *testing.T) {
	f := threePoints(t, 1.0)
	q := []float64{0.5}
	_, err := f.g.PosteriorCovarianceDerivative(q)
	require.NoError(t, err)
	_, err = f.g.PosteriorCovarianceHessian(q)
	require.NoError(t, err)
	_, err = f.g.PosteriorCovariance(q, q)
	require.NoError(t, err)
	stats := f.g.Stats()
	assert.Equal(t, 1, stats.Factorizations)
	assert.Equal(t, 1, stats.Inversions)
	assert.Equal(t, 0, stats.MeanVectors, "the covariance never needs m")
}
