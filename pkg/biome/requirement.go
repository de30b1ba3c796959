// Package biome assigns biome runs to the boundary loop of a world and
// spreads them inward over the site graph.
package biome

import (
	"errors"
	"fmt"
)

var (
	// ErrInfeasible reports requirements that cannot be met on the loop.
	ErrInfeasible = errors.New("biome requirements are infeasible")
	// ErrInvalidRequirement reports a requirement with a non-positive length
	// or a negative count.
	ErrInvalidRequirement = errors.New("invalid biome requirement")
)

// Requirement asks for at least MinCount runs of biome ID, each at least
// MinLength long along the boundary loop.
type Requirement struct {
	ID        string  `yaml:"id" json:"id"`
	MinCount  int     `yaml:"min_count" json:"min_count"`
	MinLength float64 `yaml:"min_length" json:"min_length"`
}

// Rand is the random source every stochastic choice draws from.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// InfeasibleError carries why an allocation failed and by how much arc
// length it fell short. It matches ErrInfeasible under errors.Is.
type InfeasibleError struct {
	Reason    string
	Shortfall float64
}

func (e *InfeasibleError) Error() string {
	if e.Shortfall > 0 {
		return fmt.Sprintf("%s: %s (short by %.3f)", ErrInfeasible, e.Reason, e.Shortfall)
	}
	return fmt.Sprintf("%s: %s", ErrInfeasible, e.Reason)
}

func (e *InfeasibleError) Unwrap() error {
	return ErrInfeasible
}

func infeasible(shortfall float64, format string, args ...any) error {
	return &InfeasibleError{Reason: fmt.Sprintf(format, args...), Shortfall: shortfall}
}

func checkRequirements(reqs []Requirement) error {
	seen := make(map[string]bool, len(reqs))
	for i, r := range reqs {
		if r.ID == "" {
			return fmt.Errorf("requirement %d: empty id: %w", i, ErrInvalidRequirement)
		}
		if seen[r.ID] {
			return fmt.Errorf("requirement %d: duplicate id %q: %w", i, r.ID, ErrInvalidRequirement)
		}
		seen[r.ID] = true
		if r.MinLength <= 0 {
			return fmt.Errorf("requirement %q: min_length %v must be positive: %w", r.ID, r.MinLength, ErrInvalidRequirement)
		}
		if r.MinCount < 0 {
			return fmt.Errorf("requirement %q: min_count %d is negative: %w", r.ID, r.MinCount, ErrInvalidRequirement)
		}
	}
	return nil
}
