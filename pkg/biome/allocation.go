package biome

import (
	"errors"
	"fmt"
)

// Run is one contiguous arc of the boundary loop assigned to a biome. End is
// inclusive and may be smaller than Start when the run wraps.
type Run struct {
	ID          string  `json:"id"`
	Requirement int     `json:"requirement"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Length      float64 `json:"length"`
}

// Allocation is the outcome of Allocate.
type Allocation struct {
	Requirements []Requirement `json:"requirements"`
	Lengths      []float64     `json:"lengths"`
	// Assigned holds the requirement index of every loop position, or -1.
	Assigned []int `json:"assigned"`
	runs     []Run
}

func (s *allocState) result() *Allocation {
	a := &Allocation{
		Requirements: s.reqs,
		Lengths:      make([]float64, len(s.edges)),
		Assigned:     make([]int, len(s.edges)),
	}
	for i, e := range s.edges {
		a.Lengths[i] = e.length
		a.Assigned[i] = e.req
		if e.req < 0 || e.runStart != i {
			continue
		}
		run := Run{ID: s.reqs[e.req].ID, Requirement: e.req, Start: i, End: e.runEnd}
		for j := i; ; j = s.next(j) {
			run.Length += s.edges[j].length
			if j == e.runEnd {
				break
			}
		}
		a.runs = append(a.runs, run)
	}
	return a
}

// Runs returns the placed runs ordered by start position.
func (a *Allocation) Runs() []Run {
	return append([]Run(nil), a.runs...)
}

// Validate checks that every requirement has at least MinCount runs of at
// least MinLength, that no more than maxBiomeCount runs exist, and that runs
// do not overlap.
func (a *Allocation) Validate(maxBiomeCount int) error {
	var errs []error
	if len(a.runs) > maxBiomeCount {
		errs = append(errs, fmt.Errorf("%d runs exceed max biome count %d", len(a.runs), maxBiomeCount))
	}

	n := len(a.Assigned)
	owner := make([]int, n)
	for i := range owner {
		owner[i] = -1
	}
	counts := make([]int, len(a.Requirements))
	for ri, r := range a.runs {
		if r.Length+1e-9 >= a.Requirements[r.Requirement].MinLength {
			counts[r.Requirement]++
		} else {
			errs = append(errs, fmt.Errorf("run %d (%s) has length %.3f below %.3f", ri, r.ID, r.Length, a.Requirements[r.Requirement].MinLength))
		}
		for j := r.Start; ; j = (j + 1) % n {
			if owner[j] >= 0 {
				errs = append(errs, fmt.Errorf("runs %d and %d overlap at position %d", owner[j], ri, j))
			}
			owner[j] = ri
			if a.Assigned[j] != r.Requirement {
				errs = append(errs, fmt.Errorf("run %d covers position %d assigned to %d", ri, j, a.Assigned[j]))
			}
			if j == r.End {
				break
			}
		}
	}
	for i, r := range a.Requirements {
		if counts[i] < r.MinCount {
			errs = append(errs, fmt.Errorf("requirement %q has %d runs, wants %d", r.ID, counts[i], r.MinCount))
		}
	}
	return errors.Join(errs...)
}
