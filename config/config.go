// Package config reads the YAML description of an interpolation run and
// builds the parameters, prior functions, engine and restraint it names.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownKernel = errors.New("unknown kernel type")
	ErrUnknownMean   = errors.New("unknown mean type")
	ErrMissingField  = errors.New("missing field")
	ErrShape         = errors.New("inconsistent shape")
)

// Kernel and mean type names.
const (
	KernelSquaredExponential = "squared_exponential"
	KernelMatern12           = "matern12"
	KernelMatern32           = "matern32"
	KernelConstant           = "constant"
	KernelSum                = "sum"

	MeanZero     = "zero"
	MeanConstant = "constant"
	MeanLinear   = "linear"
)

// Config is a run file. Queries are the points predict and sensitivity
// report on.
type Config struct {
	Data    Data        `yaml:"data"`
	Prior   Prior       `yaml:"prior"`
	Sigma   ParamSpec   `yaml:"sigma"`
	Cutoff  *float64    `yaml:"cutoff,omitempty"`
	Queries [][]float64 `yaml:"queries,omitempty"`
	Fit     FitSpec     `yaml:"fit,omitempty"`

	logger *slog.Logger
}

// Data holds the sample statistics: one abscissa row, mean and standard
// deviation per observation, all averaged over NObs samples.
type Data struct {
	X    [][]float64 `yaml:"x"`
	Mean []float64   `yaml:"mean"`
	Std  []float64   `yaml:"std"`
	NObs int         `yaml:"n_obs"`
}

type Prior struct {
	Mean   FunctionSpec `yaml:"mean"`
	Kernel FunctionSpec `yaml:"kernel"`
}

// FunctionSpec names a mean or covariance function. Terms is only used by
// sum kernels.
type FunctionSpec struct {
	Type   string               `yaml:"type"`
	Params map[string]ParamSpec `yaml:"params,omitempty"`
	Terms  []FunctionSpec       `yaml:"terms,omitempty"`
}

type ParamSpec struct {
	Value     float64  `yaml:"value"`
	Optimized *bool    `yaml:"optimized,omitempty"`
	Lower     *float64 `yaml:"lower,omitempty"`
}

type FitSpec struct {
	MaxIterations     int     `yaml:"max_iterations,omitempty"`
	GradientThreshold float64 `yaml:"gradient_threshold,omitempty"`
}

// Load reads and validates a run file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a run description. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

// WithLogger sets the logger handed to the engine and the fitter.
func (c *Config) WithLogger(logger *slog.Logger) *Config {
	c.logger = logger
	return c
}

func (c *Config) validate() error {
	d := c.Data
	if len(d.X) == 0 {
		return fmt.Errorf("data.x: %w", ErrMissingField)
	}
	if d.Mean == nil {
		return fmt.Errorf("data.mean: %w", ErrMissingField)
	}
	if d.Std == nil {
		return fmt.Errorf("data.std: %w", ErrMissingField)
	}
	if d.NObs == 0 {
		return fmt.Errorf("data.n_obs: %w", ErrMissingField)
	}
	n := len(d.X[0])
	for i, row := range d.X {
		if len(row) != n || n == 0 {
			return fmt.Errorf("data.x[%d] has %d coordinates, expected %d: %w", i, len(row), n, ErrShape)
		}
	}
	if len(d.Mean) != len(d.X) || len(d.Std) != len(d.X) {
		return fmt.Errorf("%d abscissae, %d means, %d standard deviations: %w",
			len(d.X), len(d.Mean), len(d.Std), ErrShape)
	}
	for i, q := range c.Queries {
		if len(q) != n {
			return fmt.Errorf("queries[%d] has %d coordinates, expected %d: %w", i, len(q), n, ErrShape)
		}
	}
	if c.Prior.Mean.Type == "" {
		return fmt.Errorf("prior.mean.type: %w", ErrMissingField)
	}
	if c.Prior.Kernel.Type == "" {
		return fmt.Errorf("prior.kernel.type: %w", ErrMissingField)
	}
	return nil
}

func (s ParamSpec) optimized() bool {
	return s.Optimized == nil || *s.Optimized
}

func (s ParamSpec) lower() float64 {
	if s.Lower == nil {
		return math.Inf(-1)
	}
	return *s.Lower
}
