// Package mesh turns clipped Voronoi cells into an indexed site graph with a
// single ordered boundary loop and a hop-distance field.
package mesh

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/tomster12/growth-sub000/pkg/geo"
)

var (
	// ErrUnmatchedEdge reports an internal cell edge no other cell shares.
	ErrUnmatchedEdge = errors.New("internal edge has no neighbour")
	// ErrBrokenBoundary reports outside edges that do not chain into one cycle.
	ErrBrokenBoundary = errors.New("boundary loop is broken")
)

// MeshSiteEdge is one edge of a site's clipped loop.
type MeshSiteEdge struct {
	Site int `json:"site"`
	// From and To are positions in the owning site's loop.
	From int `json:"from"`
	To   int `json:"to"`
	// IsOutside marks edges lying on the bounding polygon.
	IsOutside bool `json:"is_outside"`
	// Neighbour and NeighbourEdge identify the matching edge of the adjacent
	// site; both are -1 for outside edges.
	Neighbour     int `json:"neighbour"`
	NeighbourEdge int `json:"neighbour_edge"`
}

// MeshSite is the graph node for one clipped cell.
type MeshSite struct {
	Index int                 `json:"index"`
	Loop  []geo.ClippedVertex `json:"loop"`
	// Vertices holds one vertex pool index per loop vertex.
	Vertices   []int          `json:"vertices"`
	Centroid   int            `json:"centroid"`
	Edges      []MeshSiteEdge `json:"edges"`
	Neighbours []int          `json:"neighbours"`
	IsOutside  bool           `json:"is_outside"`
}

// EdgeVertices returns the clipped vertices an edge of the site spans.
func (s *MeshSite) EdgeVertices(edge int) (geo.ClippedVertex, geo.ClippedVertex) {
	e := s.Edges[edge]
	return s.Loop[e.From], s.Loop[e.To]
}

// SurfaceEdge is one position of the boundary loop.
type SurfaceEdge struct {
	Site   int               `json:"site"`
	Edge   int               `json:"edge"`
	From   geo.ClippedVertex `json:"from"`
	To     geo.ClippedVertex `json:"to"`
	Length float64           `json:"length"`
}

// Graph is the site graph of one world.
type Graph struct {
	// Pool holds every centroid and clipped vertex position.
	Pool     []geo.Point2D `json:"pool"`
	Sites    []MeshSite    `json:"sites"`
	Boundary []SurfaceEdge `json:"boundary"`
	// Distance is the hop count from each site to the nearest outside site.
	Distance []int `json:"distance"`
}

// Build indexes the clipped cells, matches shared edges between cells,
// orders the outside edges into the boundary loop and computes the distance
// field. polygonN is the vertex count of the bounding polygon the cells were
// clipped against.
func Build(cells [][]geo.ClippedVertex, triangles [][3]int, polygonN int) (*Graph, error) {
	g := &Graph{Sites: make([]MeshSite, len(cells))}

	for i, loop := range cells {
		site := MeshSite{
			Index:    i,
			Loop:     loop,
			Vertices: make([]int, len(loop)),
			Edges:    make([]MeshSiteEdge, len(loop)),
		}
		site.Centroid = g.addVertex(geo.LoopPolygon(loop).Centroid())
		for k, v := range loop {
			site.Vertices[k] = g.addVertex(v.Pos)
		}
		for k := range loop {
			next := (k + 1) % len(loop)
			_, outside := geo.SharedPolygonEdge(loop[k], loop[next], polygonN)
			site.Edges[k] = MeshSiteEdge{
				Site:          i,
				From:          k,
				To:            next,
				IsOutside:     outside,
				Neighbour:     -1,
				NeighbourEdge: -1,
			}
			if outside {
				site.IsOutside = true
			}
		}
		g.Sites[i] = site
	}

	seeded := seedNeighbours(len(cells), triangles)
	if err := g.matchEdges(seeded); err != nil {
		return nil, err
	}
	if err := g.orderBoundary(); err != nil {
		return nil, err
	}
	g.Distance = DistanceField(g.NeighbourLists(), g.Outside())
	return g, nil
}

func (g *Graph) addVertex(p geo.Point2D) int {
	g.Pool = append(g.Pool, p)
	return len(g.Pool) - 1
}

// seedNeighbours makes every pair of sites in a triangle mutual neighbours.
func seedNeighbours(n int, triangles [][3]int) [][]int {
	sets := make([]map[int]bool, n)
	for i := range sets {
		sets[i] = make(map[int]bool)
	}
	for _, t := range triangles {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if a < 0 || b < 0 || a >= n || b >= n || a == b {
				continue
			}
			sets[a][b] = true
			sets[b][a] = true
		}
	}
	return sortedSets(sets)
}

func sortedSets(sets []map[int]bool) [][]int {
	result := make([][]int, len(sets))
	for i, set := range sets {
		keys := make([]int, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		result[i] = keys
	}
	return result
}

// matchEdges pairs every internal edge with the one edge of another site
// carrying the same two provenance keys. Seeded neighbours are searched
// first; geometric distance breaks ties between equal keys.
func (g *Graph) matchEdges(seeded [][]int) error {
	all := make([]int, len(g.Sites))
	for i := range all {
		all[i] = i
	}
	refined := make([]map[int]bool, len(g.Sites))
	for i := range refined {
		refined[i] = make(map[int]bool)
	}

	for s := range g.Sites {
		site := &g.Sites[s]
		for k := range site.Edges {
			e := &site.Edges[k]
			if e.IsOutside || e.Neighbour >= 0 {
				continue
			}
			from, to := site.EdgeVertices(k)
			o, oe, ok := g.findMatch(s, from, to, seeded[s])
			if !ok {
				o, oe, ok = g.findMatch(s, from, to, all)
			}
			if !ok {
				return fmt.Errorf("site %d edge %d (%v -> %v): %w", s, k, from.Key(), to.Key(), ErrUnmatchedEdge)
			}
			e.Neighbour, e.NeighbourEdge = o, oe
			other := &g.Sites[o].Edges[oe]
			other.Neighbour, other.NeighbourEdge = s, k
			refined[s][o] = true
			refined[o][s] = true
		}
	}

	for i, ns := range sortedSets(refined) {
		g.Sites[i].Neighbours = ns
	}
	return nil
}

func (g *Graph) findMatch(s int, from, to geo.ClippedVertex, candidates []int) (int, int, bool) {
	bestSite, bestEdge := -1, -1
	bestDist := math.Inf(1)
	for _, o := range candidates {
		if o == s {
			continue
		}
		other := &g.Sites[o]
		for j := range other.Edges {
			oe := other.Edges[j]
			if oe.IsOutside || oe.Neighbour >= 0 {
				continue
			}
			of, ot := other.EdgeVertices(j)
			var dist float64
			switch {
			case of.SameProvenance(to) && ot.SameProvenance(from):
				dist = of.Pos.Distance(to.Pos) + ot.Pos.Distance(from.Pos)
			case of.SameProvenance(from) && ot.SameProvenance(to):
				dist = of.Pos.Distance(from.Pos) + ot.Pos.Distance(to.Pos)
			default:
				continue
			}
			if dist < bestDist {
				bestSite, bestEdge, bestDist = o, j, dist
			}
		}
	}
	return bestSite, bestEdge, bestSite >= 0
}

// orderBoundary chains every outside edge into one cycle.
func (g *Graph) orderBoundary() error {
	var pool []SurfaceEdge
	for s := range g.Sites {
		site := &g.Sites[s]
		for k, e := range site.Edges {
			if !e.IsOutside {
				continue
			}
			from, to := site.EdgeVertices(k)
			pool = append(pool, SurfaceEdge{
				Site:   s,
				Edge:   k,
				From:   from,
				To:     to,
				Length: from.Pos.Distance(to.Pos),
			})
		}
	}
	if len(pool) == 0 {
		return fmt.Errorf("no outside edges: %w", ErrBrokenBoundary)
	}

	used := make([]bool, len(pool))
	loop := make([]SurfaceEdge, 0, len(pool))
	loop = append(loop, pool[0])
	used[0] = true
	for len(loop) < len(pool) {
		cur := loop[len(loop)-1]
		best := -1
		bestDist := math.Inf(1)
		for i, e := range pool {
			if used[i] || !e.From.SameProvenance(cur.To) {
				continue
			}
			if d := e.From.Pos.Distance(cur.To.Pos); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			return fmt.Errorf("no edge continues from site %d edge %d (%v) after %d of %d: %w",
				cur.Site, cur.Edge, cur.To.Key(), len(loop), len(pool), ErrBrokenBoundary)
		}
		used[best] = true
		loop = append(loop, pool[best])
	}

	last, first := loop[len(loop)-1], loop[0]
	if !last.To.SameProvenance(first.From) {
		return fmt.Errorf("loop ends at %v but starts at %v: %w", last.To.Key(), first.From.Key(), ErrBrokenBoundary)
	}
	g.Boundary = loop
	return nil
}

// NeighbourLists returns the refined neighbour list of every site.
func (g *Graph) NeighbourLists() [][]int {
	lists := make([][]int, len(g.Sites))
	for i := range g.Sites {
		lists[i] = g.Sites[i].Neighbours
	}
	return lists
}

// Outside returns which sites touch the bounding polygon.
func (g *Graph) Outside() []bool {
	out := make([]bool, len(g.Sites))
	for i := range g.Sites {
		out[i] = g.Sites[i].IsOutside
	}
	return out
}

// BoundaryLengths returns the arc length of each boundary loop position.
func (g *Graph) BoundaryLengths() []float64 {
	lengths := make([]float64, len(g.Boundary))
	for i, e := range g.Boundary {
		lengths[i] = e.Length
	}
	return lengths
}

// BoundaryOwners returns the site owning each boundary loop position.
func (g *Graph) BoundaryOwners() []int {
	owners := make([]int, len(g.Boundary))
	for i, e := range g.Boundary {
		owners[i] = e.Site
	}
	return owners
}

// BoundaryLength returns the total length of the boundary loop.
func (g *Graph) BoundaryLength() float64 {
	total := 0.0
	for _, e := range g.Boundary {
		total += e.Length
	}
	return total
}
