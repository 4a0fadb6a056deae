// Package batch evaluates the posterior of an interpolation at many query
// points with a pool of workers.
package batch

import (
	"fmt"
	"math"
	"sync"

	"github.com/lucasmaystre/gpinterp/gpi"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type Prediction struct {
	Query    []float64
	Mean     float64
	Variance float64
}

// Std returns the posterior standard deviation. Variances that rounding
// pushed slightly below zero give 0.
func (p Prediction) Std() float64 {
	return math.Sqrt(math.Max(p.Variance, 0))
}

// Predict returns the posterior mean and variance at every row of qs, in
// order. The first error met by a worker is returned.
func Predict(engine *gpi.Interpolation, qs *mat.Dense, nWorkers int) ([]Prediction, error) {
	if nWorkers < 1 {
		nWorkers = 1
	}
	nq, _ := qs.Dims()
	preds := make([]Prediction, nq)
	idxChan := make(chan int, 100)
	var (
		wg    sync.WaitGroup
		once  sync.Once
		first error
	)

	for i := 0; i < nWorkers; i++ {
		go func() {
			for k := range idxChan {
				q := qs.RawRowView(k)
				mu, err := engine.PosteriorMean(q)
				if err == nil {
					var v float64
					v, err = engine.PosteriorCovariance(q, q)
					preds[k] = Prediction{Query: append([]float64(nil), q...), Mean: mu, Variance: v}
				}
				if err != nil {
					once.Do(func() { first = fmt.Errorf("query %d: %w", k, err) })
				}
				wg.Done()
			}
		}()
	}

	for k := 0; k < nq; k++ {
		wg.Add(1)
		idxChan <- k
	}
	close(idxChan)
	wg.Wait()
	if first != nil {
		return nil, first
	}
	return preds, nil
}

// Grid returns n evenly spaced one-dimensional query points from lo to hi.
func Grid(lo, hi float64, n int) *mat.Dense {
	if n < 2 {
		return mat.NewDense(1, 1, []float64{lo})
	}
	return mat.NewDense(n, 1, floats.Span(make([]float64, n), lo, hi))
}
