package mesh

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of a built graph: edge matches
// are mutual and reversed, neighbour lists agree with matched edges, and the
// boundary loop visits every outside edge exactly once as one closed chain.
func (g *Graph) Validate() error {
	var errs []error

	for s := range g.Sites {
		site := &g.Sites[s]
		matched := make(map[int]bool)
		for k, e := range site.Edges {
			if e.IsOutside {
				if e.Neighbour != -1 || e.NeighbourEdge != -1 {
					errs = append(errs, fmt.Errorf("site %d edge %d: outside edge has neighbour %d", s, k, e.Neighbour))
				}
				continue
			}
			if e.Neighbour < 0 || e.Neighbour >= len(g.Sites) {
				errs = append(errs, fmt.Errorf("site %d edge %d: %w", s, k, ErrUnmatchedEdge))
				continue
			}
			other := &g.Sites[e.Neighbour]
			if e.NeighbourEdge < 0 || e.NeighbourEdge >= len(other.Edges) {
				errs = append(errs, fmt.Errorf("site %d edge %d: neighbour edge %d out of range", s, k, e.NeighbourEdge))
				continue
			}
			back := other.Edges[e.NeighbourEdge]
			if back.Neighbour != s || back.NeighbourEdge != k {
				errs = append(errs, fmt.Errorf("site %d edge %d: match with site %d edge %d is not mutual", s, k, e.Neighbour, e.NeighbourEdge))
			}
			matched[e.Neighbour] = true
		}
		if len(matched) != len(site.Neighbours) {
			errs = append(errs, fmt.Errorf("site %d: %d neighbours listed, %d matched", s, len(site.Neighbours), len(matched)))
		}
		for _, n := range site.Neighbours {
			if !matched[n] {
				errs = append(errs, fmt.Errorf("site %d: neighbour %d has no shared edge", s, n))
			}
		}
	}

	outside := 0
	for s := range g.Sites {
		for _, e := range g.Sites[s].Edges {
			if e.IsOutside {
				outside++
			}
		}
	}
	if len(g.Boundary) != outside {
		errs = append(errs, fmt.Errorf("boundary has %d edges, graph has %d outside edges: %w", len(g.Boundary), outside, ErrBrokenBoundary))
	}
	seen := make(map[[2]int]bool)
	for i, e := range g.Boundary {
		key := [2]int{e.Site, e.Edge}
		if seen[key] {
			errs = append(errs, fmt.Errorf("boundary position %d repeats site %d edge %d", i, e.Site, e.Edge))
		}
		seen[key] = true
		next := g.Boundary[(i+1)%len(g.Boundary)]
		if !e.To.SameProvenance(next.From) {
			errs = append(errs, fmt.Errorf("boundary position %d does not meet position %d: %w", i, (i+1)%len(g.Boundary), ErrBrokenBoundary))
		}
	}

	if len(g.Distance) != len(g.Sites) {
		errs = append(errs, fmt.Errorf("distance field has %d entries for %d sites", len(g.Distance), len(g.Sites)))
	}
	return errors.Join(errs...)
}
