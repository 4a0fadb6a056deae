package gpi

import "errors"

var (
	ErrEmpty          = errors.New("no observations or zero-dimensional abscissa")
	ErrDimension      = errors.New("dimension mismatch")
	ErrSampleSize     = errors.New("sample size must be at least 1")
	ErrNegativeStd    = errors.New("negative sample standard deviation")
	ErrNegativeCutoff = errors.New("negative sparsity cutoff")
	ErrNilFunction    = errors.New("nil mean function, covariance function or noise scale")

	// ErrInvalidPrior is returned at query time when W + sigma*S is not
	// positive definite. The caller should reject the current parameters.
	ErrInvalidPrior = errors.New("prior covariance is not positive definite")
)
