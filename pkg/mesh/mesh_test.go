package mesh

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/tomster12/growth-sub000/pkg/geo"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func bv(i int, x, y float64) geo.ClippedVertex {
	return geo.ClippedVertex{Pos: geo.Pt(x, y), Kind: geo.BoundaryVertex, Index: i}
}

func bi(e int, x, y float64) geo.ClippedVertex {
	return geo.ClippedVertex{Pos: geo.Pt(x, y), Kind: geo.BoundaryIntersection, Index: e}
}

// splitSquare is the 20x20 square cut by the line x=0 into two cells.
func splitSquare() [][]geo.ClippedVertex {
	left := []geo.ClippedVertex{
		bi(0, 0, -10), bi(2, 0, 10), bv(3, -10, 10), bv(0, -10, -10),
	}
	right := []geo.ClippedVertex{
		bi(0, 0, -10), bv(1, 10, -10), bv(2, 10, 10), bi(2, 0, 10),
	}
	return [][]geo.ClippedVertex{left, right}
}

// --- Synthetic graph tests ---

func TestBuildSplitSquare(t *testing.T) {
	g, err := Build(splitSquare(), nil, 4)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	left, right := g.Sites[0], g.Sites[1]
	if left.Edges[0].IsOutside || left.Edges[0].Neighbour != 1 || left.Edges[0].NeighbourEdge != 3 {
		t.Errorf("left edge 0 = %+v, want internal match with site 1 edge 3", left.Edges[0])
	}
	if right.Edges[3].Neighbour != 0 || right.Edges[3].NeighbourEdge != 0 {
		t.Errorf("right edge 3 = %+v, want match with site 0 edge 0", right.Edges[3])
	}
	for _, k := range []int{1, 2, 3} {
		if !left.Edges[k].IsOutside {
			t.Errorf("left edge %d should be outside", k)
		}
	}
	if len(left.Neighbours) != 1 || left.Neighbours[0] != 1 {
		t.Errorf("left neighbours = %v, want [1]", left.Neighbours)
	}
	if !left.IsOutside || !right.IsOutside {
		t.Error("both halves touch the square")
	}

	if len(g.Boundary) != 6 {
		t.Fatalf("expected 6 boundary edges, got %d", len(g.Boundary))
	}
	if !approxEqual(g.BoundaryLength(), 80, 1e-9) {
		t.Errorf("expected boundary length 80, got %f", g.BoundaryLength())
	}
	// Each cell pools its centroid and its four loop vertices.
	if len(g.Pool) != 10 {
		t.Errorf("expected 10 pooled vertices, got %d", len(g.Pool))
	}
	c := g.Pool[left.Centroid]
	if !approxEqual(c.X, -5, 1e-9) || !approxEqual(c.Y, 0, 1e-9) {
		t.Errorf("left centroid %v, want (-5,0)", c)
	}
	for i, d := range g.Distance {
		if d != 0 {
			t.Errorf("site %d distance %d, want 0", i, d)
		}
	}
}

func TestBuildUnmatchedEdge(t *testing.T) {
	cells := splitSquare()[:1]
	_, err := Build(cells, nil, 4)
	if !errors.Is(err, ErrUnmatchedEdge) {
		t.Fatalf("expected ErrUnmatchedEdge, got %v", err)
	}
}

func TestBuildBrokenBoundary(t *testing.T) {
	// Two cells whose outside edges form two separate cycles.
	cells := [][]geo.ClippedVertex{
		{bi(0, 0, 0), bi(0, 1, 0), bi(0, 0, 1)},
		{bi(2, 5, 5), bi(2, 6, 5), bi(2, 5, 6)},
	}
	_, err := Build(cells, nil, 4)
	if !errors.Is(err, ErrBrokenBoundary) {
		t.Fatalf("expected ErrBrokenBoundary, got %v", err)
	}
}

func TestValidateDetectsOneSidedMatch(t *testing.T) {
	g, err := Build(splitSquare(), nil, 4)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	g.Sites[1].Edges[3].NeighbourEdge = 1
	if err := g.Validate(); err == nil {
		t.Error("expected Validate to reject a one-sided match")
	}
}

// --- Distance field tests ---

func TestDistanceFieldChain(t *testing.T) {
	// 0 - 1 - 2 - 3, with 4 isolated.
	neighbours := [][]int{{1}, {0, 2}, {1, 3}, {2}, {}}
	outside := []bool{true, false, false, false, false}
	got := DistanceField(neighbours, outside)
	want := []int{0, 1, 2, 3, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("site %d distance %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDistanceFieldTakesShortestPath(t *testing.T) {
	// A ring of six with two outside sites on opposite sides.
	neighbours := [][]int{{1, 5}, {0, 2}, {1, 3}, {2, 4}, {3, 5}, {4, 0}}
	outside := []bool{true, false, false, true, false, false}
	got := DistanceField(neighbours, outside)
	want := []int{0, 1, 1, 0, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("site %d distance %d, want %d", i, got[i], want[i])
		}
	}
}

// bfs is the textbook multi-source breadth-first search.
func bfs(neighbours [][]int, outside []bool) []int {
	dist := make([]int, len(neighbours))
	var queue []int
	for i := range dist {
		dist[i] = -1
		if outside[i] {
			dist[i] = 0
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, n := range neighbours[s] {
			if dist[n] < 0 {
				dist[n] = dist[s] + 1
				queue = append(queue, n)
			}
		}
	}
	return dist
}

// --- Whole diagram tests ---

func buildRandom(t *testing.T, seed int64, count int) *Graph {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	seeds := make([]geo.Point2D, 0, count)
	for len(seeds) < count {
		p := geo.Pt((rng.Float64()*2-1)*80, (rng.Float64()*2-1)*80)
		if p.Length() <= 80 {
			seeds = append(seeds, p)
		}
	}
	d, err := geo.BuildDiagram(seeds)
	if err != nil {
		t.Fatalf("BuildDiagram failed: %v", err)
	}
	bounds := geo.ApproximateCircle(geo.Origin, 100, 64)
	cells, err := geo.ClipCells(d, bounds, 1)
	if err != nil {
		t.Fatalf("ClipCells failed: %v", err)
	}
	g, err := Build(cells, d.Triangles, bounds.Len())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func TestBuildRandomDiagram(t *testing.T) {
	g := buildRandom(t, 42, 40)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	perimeter := geo.ApproximateCircle(geo.Origin, 100, 64).Perimeter()
	if !approxEqual(g.BoundaryLength(), perimeter, 1e-6*perimeter) {
		t.Errorf("boundary length %f, polygon perimeter %f", g.BoundaryLength(), perimeter)
	}

	for i, s := range g.Sites {
		if len(s.Neighbours) == 0 {
			t.Errorf("site %d has no neighbours", i)
		}
		if s.IsOutside != (g.Distance[i] == 0) {
			t.Errorf("site %d outside=%v but distance %d", i, s.IsOutside, g.Distance[i])
		}
	}

	want := bfs(g.NeighbourLists(), g.Outside())
	interior := 0
	for i := range want {
		if g.Distance[i] != want[i] {
			t.Errorf("site %d distance %d, breadth-first %d", i, g.Distance[i], want[i])
		}
		if want[i] > 0 {
			interior++
		}
	}
	if interior == 0 {
		t.Error("expected some interior sites")
	}
}

func TestBuildBoundaryOwnersAreOutside(t *testing.T) {
	g := buildRandom(t, 9, 60)
	owners := g.BoundaryOwners()
	lengths := g.BoundaryLengths()
	if len(owners) != len(lengths) || len(owners) != len(g.Boundary) {
		t.Fatalf("owners %d, lengths %d, boundary %d", len(owners), len(lengths), len(g.Boundary))
	}
	for i, s := range owners {
		if !g.Sites[s].IsOutside {
			t.Errorf("boundary position %d owned by inside site %d", i, s)
		}
		if lengths[i] <= 0 {
			t.Errorf("boundary position %d has length %f", i, lengths[i])
		}
	}
}
