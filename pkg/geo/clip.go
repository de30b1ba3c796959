package geo

import (
	"fmt"
	"math"
	"sync"
)

// VertexKind records why a clipped vertex exists.
type VertexKind int

const (
	// SiteVertex is an original Voronoi vertex; Index is its vertex index.
	SiteVertex VertexKind = iota
	// BoundaryVertex is a bounding polygon vertex; Index is its polygon index.
	BoundaryVertex
	// BoundaryIntersection is where a Voronoi edge crosses the bounding
	// polygon; Index is the polygon edge it lies on.
	BoundaryIntersection
)

func (k VertexKind) String() string {
	switch k {
	case SiteVertex:
		return "site"
	case BoundaryVertex:
		return "boundary"
	case BoundaryIntersection:
		return "intersection"
	}
	return fmt.Sprintf("vertex_kind(%d)", int(k))
}

// siteVertexEpsilon decides whether a crossing on a clip line belongs to the
// line's first or second Voronoi vertex. Neighbouring cells must agree on
// this attribution for their shared edges to match.
const siteVertexEpsilon = 1e-4

// ClippedVertex is a vertex of a clipped cell tagged with its provenance.
type ClippedVertex struct {
	Pos   Point2D    `json:"pos"`
	Kind  VertexKind `json:"kind"`
	Index int        `json:"index"`
}

// VertexKey is the provenance identity of a clipped vertex.
type VertexKey struct {
	Kind  VertexKind
	Index int
}

// Key returns the provenance identity used to match vertices across cells.
func (v ClippedVertex) Key() VertexKey {
	return VertexKey{Kind: v.Kind, Index: v.Index}
}

// SameProvenance reports whether v and o were produced by the same Voronoi
// vertex, polygon vertex or polygon edge crossing.
func (v ClippedVertex) SameProvenance(o ClippedVertex) bool {
	return v.Kind == o.Kind && v.Index == o.Index
}

// OnBoundary reports whether v lies on the bounding polygon.
func (v ClippedVertex) OnBoundary() bool {
	return v.Kind == BoundaryVertex || v.Kind == BoundaryIntersection
}

// SharedPolygonEdge returns the bounding polygon edge both vertices lie on.
// n is the number of polygon vertices; polygon edge i runs from vertex i to
// vertex i+1.
func SharedPolygonEdge(a, b ClippedVertex, n int) (int, bool) {
	ea0, ea1, okA := polygonEdges(a, n)
	eb0, eb1, okB := polygonEdges(b, n)
	if !okA || !okB {
		return 0, false
	}
	switch {
	case ea0 == eb0 || ea0 == eb1:
		return ea0, true
	case ea1 == eb0 || ea1 == eb1:
		return ea1, true
	}
	return 0, false
}

// polygonEdges returns the polygon edges touching a boundary vertex. An
// intersection touches one edge; it is returned twice.
func polygonEdges(v ClippedVertex, n int) (int, int, bool) {
	switch v.Kind {
	case BoundaryVertex:
		return (v.Index - 1 + n) % n, v.Index, true
	case BoundaryIntersection:
		return v.Index, v.Index, true
	}
	return 0, 0, false
}

// clipLine is the directed line of one raw cell edge.
type clipLine struct {
	lv, ld       Point2D
	vert0, vert1 int
}

func edgeLine(e Edge, vertices []Point2D) (clipLine, error) {
	switch e.Kind {
	case EdgeSegment:
		v0, v1 := vertices[e.V0], vertices[e.V1]
		return clipLine{lv: v0, ld: v1.Sub(v0), vert0: e.V0, vert1: e.V1}, nil
	case EdgeRayCCW:
		return clipLine{lv: vertices[e.V0], ld: e.Dir, vert0: e.V0, vert1: e.V0}, nil
	case EdgeRayCW:
		return clipLine{lv: vertices[e.V0], ld: e.Dir.Scale(-1), vert0: e.V0, vert1: e.V0}, nil
	}
	return clipLine{}, fmt.Errorf("%s edge: %w", e.Kind, ErrUnsupportedEdge)
}

// ClipCell intersects one raw Voronoi cell with the bounding polygon.
//
// The working loop starts as the polygon itself and is cut by the half-plane
// of each cell edge in turn (Sutherland-Hodgman over possibly unbounded
// edges). Every new vertex is tagged with where it came from so that
// independently clipped neighbours agree on their shared vertices.
func ClipCell(site int, edges []Edge, vertices []Point2D, bounds Polygon) ([]ClippedVertex, error) {
	n := len(bounds.Vertices)
	loop := make([]ClippedVertex, n)
	for i, p := range bounds.Vertices {
		loop[i] = ClippedVertex{Pos: p, Kind: BoundaryVertex, Index: i}
	}

	for ei, e := range edges {
		line, err := edgeLine(e, vertices)
		if err != nil {
			return nil, fmt.Errorf("site %d edge %d: %w", site, ei, err)
		}
		loop = clipLoop(loop, line, n)
		if len(loop) == 0 {
			break
		}
	}
	if len(loop) < 3 {
		return nil, fmt.Errorf("site %d: %w", site, ErrEmptyCell)
	}
	return loop, nil
}

func clipLoop(loop []ClippedVertex, line clipLine, polygonN int) []ClippedVertex {
	out := make([]ClippedVertex, 0, len(loop)+1)
	for i := range loop {
		v0 := loop[i]
		v1 := loop[(i+1)%len(loop)]
		in0 := leftOf(v0.Pos, line.lv, line.ld) >= 0
		in1 := leftOf(v1.Pos, line.lv, line.ld) >= 0

		switch {
		case in0 && in1:
			out = append(out, v1)
		case in0 != in1:
			m0, t, ok := lineIntersection(line.lv, line.ld, v0.Pos, v1.Pos)
			if !ok {
				t = 1
			}
			cv := ClippedVertex{Pos: v0.Pos.Lerp(v1.Pos, t)}
			if edge, shared := SharedPolygonEdge(v0, v1, polygonN); shared {
				cv.Kind = BoundaryIntersection
				cv.Index = edge
			} else {
				cv.Kind = SiteVertex
				cv.Index = line.vert1
				if math.Abs(m0) < siteVertexEpsilon {
					cv.Index = line.vert0
				}
			}
			out = append(out, cv)
			if in1 {
				out = append(out, v1)
			}
		}
	}
	return out
}

// ClipCells clips every cell of the diagram against bounds. Cells are
// independent, so up to workers of them are clipped concurrently; workers
// below 2 clips sequentially. The first error by site order is returned.
func ClipCells(d *Diagram, bounds Polygon, workers int) ([][]ClippedVertex, error) {
	cells := make([][]ClippedVertex, len(d.Sites))
	errs := make([]error, len(d.Sites))

	if workers < 2 {
		for i := range d.Sites {
			cells[i], errs[i] = ClipCell(i, d.Edges[i], d.Vertices, bounds)
			if errs[i] != nil {
				return nil, errs[i]
			}
		}
		return cells, nil
	}

	var wg sync.WaitGroup
	next := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				cells[i], errs[i] = ClipCell(i, d.Edges[i], d.Vertices, bounds)
			}
		}()
	}
	for i := range d.Sites {
		next <- i
	}
	close(next)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return cells, nil
}

// LoopPolygon returns the positions of a clipped loop as a polygon.
func LoopPolygon(loop []ClippedVertex) Polygon {
	pts := make([]Point2D, len(loop))
	for i, v := range loop {
		pts[i] = v.Pos
	}
	return Polygon{Vertices: pts}
}
