package geo

import (
	"errors"
	"fmt"
)

// EdgeKind discriminates the edges that bound a raw Voronoi cell.
type EdgeKind int

const (
	// EdgeSegment runs between two Voronoi vertices.
	EdgeSegment EdgeKind = iota
	// EdgeRayCW comes in from infinity and ends at its origin vertex when the
	// cell is walked counterclockwise.
	EdgeRayCW
	// EdgeRayCCW leaves its origin vertex towards infinity.
	EdgeRayCCW
	// EdgeLine is unbounded in both directions (two-site diagrams).
	// The clipper does not support it.
	EdgeLine
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeSegment:
		return "segment"
	case EdgeRayCW:
		return "ray_cw"
	case EdgeRayCCW:
		return "ray_ccw"
	case EdgeLine:
		return "line"
	}
	return fmt.Sprintf("edge_kind(%d)", int(k))
}

// Edge is one boundary edge of a raw, unclipped Voronoi cell. Edges of a
// cell are listed counterclockwise so the site lies to the left of each.
type Edge struct {
	Kind EdgeKind `json:"kind"`
	// V0 is the start vertex of a segment or the origin of a ray.
	V0 int `json:"v0"`
	// V1 is the end vertex of a segment, -1 otherwise.
	V1 int `json:"v1"`
	// Dir is the ray direction (pointing away from the origin) or the line
	// direction. Unused for segments.
	Dir Point2D `json:"dir"`
	// Through is a point on an EdgeLine.
	Through Point2D `json:"through"`
}

// Segment returns a segment edge between two vertex indices.
func Segment(v0, v1 int) Edge {
	return Edge{Kind: EdgeSegment, V0: v0, V1: v1}
}

// Ray returns a ray edge from origin along dir. Clockwise rays are walked
// towards their origin.
func Ray(origin int, dir Point2D, clockwise bool) Edge {
	kind := EdgeRayCCW
	if clockwise {
		kind = EdgeRayCW
	}
	return Edge{Kind: kind, V0: origin, V1: -1, Dir: dir}
}

// Diagram is a raw Voronoi diagram together with its dual triangulation.
type Diagram struct {
	Sites    []Point2D `json:"sites"`
	Vertices []Point2D `json:"vertices"`
	// Edges[i] lists the counterclockwise boundary of site i's cell.
	Edges [][]Edge `json:"edges"`
	// Triangles are triples of site indices.
	Triangles [][3]int `json:"triangles"`
}

var (
	// ErrEmptyCell reports a site whose clipped cell has no area.
	ErrEmptyCell = errors.New("clipped cell is empty")
	// ErrUnsupportedEdge reports an edge kind the clipper cannot handle.
	ErrUnsupportedEdge = errors.New("unsupported edge kind")
	// ErrDegenerateDiagram reports seeds that cannot form a diagram.
	ErrDegenerateDiagram = errors.New("degenerate diagram")
)
