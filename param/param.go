package param

import (
	"errors"
	"fmt"
	"math"
)

var ErrOutOfBounds = errors.New("parameter value below lower bound")

// Param is a mutable scalar shared between the prior functions, the noise
// scale of an interpolation and the optimizers that move it. Every change of
// value bumps the version, which is how consumers notice the mutation.
type Param struct {
	name      string
	value     float64
	lower     float64
	optimized bool
	version   uint64
}

func New(name string, value float64) *Param {
	return &Param{
		name:      name,
		value:     value,
		lower:     math.Inf(-1),
		optimized: true,
	}
}

// NewBounded returns a parameter constrained to values >= lower.
func NewBounded(name string, value, lower float64) (*Param, error) {
	if value < lower {
		return nil, fmt.Errorf("%s=%v (lower %v): %w", name, value, lower, ErrOutOfBounds)
	}
	p := New(name, value)
	p.lower = lower
	return p, nil
}

func (p *Param) Name() string {
	return p.name
}

func (p *Param) Value() float64 {
	return p.value
}

func (p *Param) Lower() float64 {
	return p.lower
}

// Set changes the value. The version only moves if the value does.
func (p *Param) Set(v float64) error {
	if v < p.lower {
		return fmt.Errorf("%s=%v (lower %v): %w", p.name, v, p.lower, ErrOutOfBounds)
	}
	if v != p.value || math.IsNaN(v) {
		p.value = v
		p.version++
	}
	return nil
}

// Touch bumps the version without changing the value.
func (p *Param) Touch() {
	p.version++
}

func (p *Param) Version() uint64 {
	return p.version
}

func (p *Param) IsOptimized() bool {
	return p.optimized
}

func (p *Param) SetOptimized(optimized bool) {
	p.optimized = optimized
}

func (p *Param) String() string {
	return fmt.Sprintf("%s=%g", p.name, p.value)
}

// Versions sums the versions of several parameters. Since each version only
// grows, so does the sum.
func Versions(ps ...*Param) uint64 {
	var sum uint64
	for _, p := range ps {
		sum += p.version
	}
	return sum
}
