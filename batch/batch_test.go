package batch

import (
	"testing"

	"github.com/lucasmaystre/gpinterp/gpi"
	"github.com/lucasmaystre/gpinterp/kern"
	"github.com/lucasmaystre/gpinterp/mean"
	"github.com/lucasmaystre/gpinterp/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newEngine(t *testing.T) *gpi.Interpolation {
	t.Helper()
	x := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	g, err := gpi.New(x, []float64{0, 1, 0, -1}, []float64{0.2, 0.2, 0.2, 0.2}, 2,
		mean.NewZero(),
		kern.NewSquaredExponential(param.New("tau", 1), param.New("lambda", 0.8)),
		param.New("sigma", 1))
	require.NoError(t, err)
	return g
}

func TestPredict_MatchesSequentialQueries(t *testing.T) {
	g := newEngine(t)
	qs := Grid(-1, 4, 51)
	for _, workers := range []int{0, 1, 4} {
		preds, err := Predict(g, qs, workers)
		require.NoError(t, err)
		require.Len(t, preds, 51)
		for k, p := range preds {
			q := qs.RawRowView(k)
			assert.Equal(t, q, p.Query)
			mu, err := g.PosteriorMean(q)
			require.NoError(t, err)
			v, err := g.PosteriorCovariance(q, q)
			require.NoError(t, err)
			assert.Equal(t, mu, p.Mean)
			assert.Equal(t, v, p.Variance)
			assert.GreaterOrEqual(t, p.Std(), 0.0)
		}
	}
	assert.Equal(t, 1, g.Stats().Factorizations)
}

func TestPredict_PropagatesErrors(t *testing.T) {
	g := newEngine(t)
	_, err := Predict(g, mat.NewDense(2, 2, nil), 3)
	assert.ErrorIs(t, err, gpi.ErrDimension)
}

func TestGrid(t *testing.T) {
	g := Grid(0, 1, 5)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, g.RawMatrix().Data)
	assert.Equal(t, []float64{2}, Grid(2, 3, 1).RawMatrix().Data)
}

func TestPrediction_Std(t *testing.T) {
	assert.Equal(t, 0.0, Prediction{Variance: -1e-17}.Std())
	assert.Equal(t, 3.0, Prediction{Variance: 9}.Std())
}
