package biome

import "fmt"

// Fill extends every run forward over the unassigned positions after it,
// wrapping around the loop. It returns a requirement index per position;
// every entry is -1 only when nothing was assigned.
func Fill(assigned []int) []int {
	n := len(assigned)
	out := append([]int(nil), assigned...)
	first := -1
	for i, q := range assigned {
		if q >= 0 {
			first = i
			break
		}
	}
	if first < 0 {
		return out
	}
	active := assigned[first]
	for k := 1; k < n; k++ {
		i := (first + k) % n
		if out[i] >= 0 {
			active = out[i]
			continue
		}
		out[i] = active
	}
	return out
}

// FloodFill spreads the biome of each boundary loop position into its owning
// site, then breadth-first into neighbouring sites closer to the boundary
// than depth. Sites left without a biome are "".
func FloodFill(owner []int, edgeBiomes []string, neighbours [][]int, distance []int, depth int) []string {
	sites := make([]string, len(neighbours))
	var queue []int
	for i, s := range owner {
		if s < 0 || s >= len(sites) || sites[s] != "" || edgeBiomes[i] == "" {
			continue
		}
		sites[s] = edgeBiomes[i]
		queue = append(queue, s)
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, n := range neighbours[s] {
			if sites[n] != "" || distance[n] < 0 || distance[n] >= depth {
				continue
			}
			sites[n] = sites[s]
			queue = append(queue, n)
		}
	}
	return sites
}

// Underground overwrites the biome of deep sites with id. Sites at or beyond
// depth, or with no path to the boundary, always change; sites within
// gradientOffset above depth change with probability gradientPct.
func Underground(sites []string, distance []int, depth, gradientOffset int, gradientPct float64, id string, rng Rand) {
	for s, d := range distance {
		switch {
		case d < 0 || d >= depth:
			sites[s] = id
		case d >= depth-gradientOffset:
			if rng.Float64() < gradientPct {
				sites[s] = id
			}
		}
	}
}

// Params configures Generate.
type Params struct {
	Requirements   []Requirement
	MaxBiomeCount  int
	Depth          int
	GradientOffset int
	GradientPct    float64
	Underground    string
}

// Result holds the biome of every boundary loop position and every site.
type Result struct {
	Allocation *Allocation `json:"allocation"`
	EdgeBiomes []string    `json:"edge_biomes"`
	SiteBiomes []string    `json:"site_biomes"`
}

// Generate allocates runs onto the boundary loop, fills the gaps, floods the
// biomes inward and applies the underground overwrite. lengths and owner
// describe each loop position; neighbours and distance describe each site.
func Generate(lengths []float64, owner []int, neighbours [][]int, distance []int, p Params, rng Rand) (*Result, error) {
	if len(owner) != len(lengths) {
		return nil, fmt.Errorf("%d loop owners for %d loop lengths", len(owner), len(lengths))
	}
	if len(distance) != len(neighbours) {
		return nil, fmt.Errorf("%d distances for %d sites", len(distance), len(neighbours))
	}

	alloc, err := Allocate(lengths, p.Requirements, p.MaxBiomeCount, rng)
	if err != nil {
		return nil, err
	}

	filled := Fill(alloc.Assigned)
	edges := make([]string, len(filled))
	for i, q := range filled {
		if q >= 0 {
			edges[i] = p.Requirements[q].ID
		}
	}

	sites := FloodFill(owner, edges, neighbours, distance, p.Depth)
	Underground(sites, distance, p.Depth, p.GradientOffset, p.GradientPct, p.Underground, rng)
	return &Result{Allocation: alloc, EdgeBiomes: edges, SiteBiomes: sites}, nil
}
