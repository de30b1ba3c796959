package geo

import (
	"fmt"
	"math"
	"sort"
)

// BuildDiagram computes the raw Voronoi diagram of the given seeds.
//
// Uses Bowyer-Watson Delaunay for the triangulation; each triangle's
// circumcenter becomes a Voronoi vertex (vertex i belongs to triangle i).
// Hull sites get unbounded cells closed by a clockwise ray on one side and a
// counterclockwise ray on the other.
func BuildDiagram(seeds []Point2D) (*Diagram, error) {
	n := len(seeds)
	if n < 3 {
		return nil, fmt.Errorf("%d seeds: %w", n, ErrDegenerateDiagram)
	}
	sorted := make([]int, n)
	for i := range sorted {
		sorted[i] = i
	}
	sort.Slice(sorted, func(a, b int) bool {
		pa, pb := seeds[sorted[a]], seeds[sorted[b]]
		if pa.X != pb.X {
			return pa.X < pb.X
		}
		return pa.Y < pb.Y
	})
	for k := 1; k < n; k++ {
		if seeds[sorted[k]].Distance(seeds[sorted[k-1]]) < 1e-9 {
			return nil, fmt.Errorf("seeds %d and %d coincide: %w", sorted[k-1], sorted[k], ErrDegenerateDiagram)
		}
	}

	triangles := Delaunay(seeds)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("no triangles from %d seeds: %w", n, ErrDegenerateDiagram)
	}

	d := &Diagram{
		Sites:     append([]Point2D(nil), seeds...),
		Vertices:  make([]Point2D, len(triangles)),
		Edges:     make([][]Edge, n),
		Triangles: triangles,
	}
	for ti, t := range triangles {
		c, ok := circumcenter(seeds[t[0]], seeds[t[1]], seeds[t[2]])
		if !ok {
			return nil, fmt.Errorf("triangle %d is flat: %w", ti, ErrDegenerateDiagram)
		}
		d.Vertices[ti] = c
	}

	// fans[s][p] is the triangle (s, p, q) in which p follows s.
	fans := make([]map[int]fanEntry, n)
	for i := range fans {
		fans[i] = make(map[int]fanEntry)
	}
	for ti, t := range triangles {
		for k := 0; k < 3; k++ {
			s, p, q := t[k], t[(k+1)%3], t[(k+2)%3]
			fans[s][p] = fanEntry{tri: ti, next: q}
		}
	}

	for s := 0; s < n; s++ {
		fan := fans[s]
		if len(fan) == 0 {
			return nil, fmt.Errorf("site %d has no triangles: %w", s, ErrDegenerateDiagram)
		}
		// A hull site's fan starts at the spoke nothing rotates onto.
		incoming := make(map[int]bool, len(fan))
		for _, e := range fan {
			incoming[e.next] = true
		}
		start, hull := -1, false
		for p := range fan {
			if !incoming[p] {
				if hull {
					return nil, fmt.Errorf("site %d has a split fan: %w", s, ErrDegenerateDiagram)
				}
				start, hull = p, true
			}
		}
		if !hull {
			start = smallestKey(fan)
		}

		var tris []int
		last := -1
		for p, steps := start, 0; steps < len(fan); steps++ {
			e, ok := fan[p]
			if !ok {
				break
			}
			tris = append(tris, e.tri)
			last = e.next
			p = e.next
			if p == start {
				break
			}
		}
		if len(tris) != len(fan) {
			return nil, fmt.Errorf("site %d fan covers %d of %d triangles: %w", s, len(tris), len(fan), ErrDegenerateDiagram)
		}

		edges := make([]Edge, 0, len(tris)+1)
		if hull {
			in := seeds[start].Sub(seeds[s])
			edges = append(edges, Ray(tris[0], Pt(in.Y, -in.X).Normalize(), true))
		}
		for k := 0; k+1 < len(tris); k++ {
			edges = append(edges, Segment(tris[k], tris[k+1]))
		}
		if hull {
			out := seeds[s].Sub(seeds[last])
			edges = append(edges, Ray(tris[len(tris)-1], Pt(out.Y, -out.X).Normalize(), false))
		} else {
			edges = append(edges, Segment(tris[len(tris)-1], tris[0]))
		}
		d.Edges[s] = edges
	}
	return d, nil
}

// fanEntry is one triangle around a site: the triangle index and the
// neighbour that follows in counter-clockwise order.
type fanEntry struct {
	tri  int
	next int
}

func smallestKey(m map[int]fanEntry) int {
	best := math.MaxInt
	for k := range m {
		if k < best {
			best = k
		}
	}
	return best
}

// circumcenter returns the center of the circle through a, b and c.
func circumcenter(a, b, c Point2D) (Point2D, bool) {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	d := 2 * (bx*cy - by*cx)
	if math.Abs(d) < 1e-12 {
		return Point2D{}, false
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	return Point2D{
		X: a.X + (cy*b2-by*c2)/d,
		Y: a.Y + (bx*c2-cx*b2)/d,
	}, true
}

// Delaunay triangulates the seeds with Bowyer-Watson and returns
// counterclockwise triangles of seed indices.
func Delaunay(seeds []Point2D) [][3]int {
	n := len(seeds)
	if n < 3 {
		return nil
	}

	// Jitter to avoid degeneracy.
	pts := make([]Point2D, n)
	for i, s := range seeds {
		pts[i] = Point2D{
			X: s.X + float64(i)*1e-8,
			Y: s.Y + float64(i)*1e-8,
		}
	}

	// Super-triangle.
	bbMin, bbMax := NewPolygon(pts...).BoundingBox()
	dx := bbMax.X - bbMin.X
	dy := bbMax.Y - bbMin.Y
	maxD := math.Max(math.Max(dx, dy), 1) * 64

	superA := Point2D{bbMin.X - maxD, bbMin.Y - maxD}
	superB := Point2D{bbMax.X + maxD, bbMin.Y - maxD}
	superC := Point2D{(bbMin.X + bbMax.X) / 2, bbMax.Y + maxD}

	allPts := make([]Point2D, n+3)
	copy(allPts, pts)
	allPts[n] = superA
	allPts[n+1] = superB
	allPts[n+2] = superC

	type triangle struct{ v [3]int }
	triangles := []triangle{{v: [3]int{n, n + 1, n + 2}}}

	for pi := 0; pi < n; pi++ {
		p := allPts[pi]
		bad := make([]int, 0)
		for ti, t := range triangles {
			if inCircumcircle(p, allPts[t.v[0]], allPts[t.v[1]], allPts[t.v[2]]) {
				bad = append(bad, ti)
			}
		}

		type edge struct{ a, b int }
		edgeCount := make(map[edge]int)
		for _, ti := range bad {
			t := triangles[ti]
			for k := 0; k < 3; k++ {
				e := edge{t.v[k], t.v[(k+1)%3]}
				if e.a > e.b {
					e.a, e.b = e.b, e.a
				}
				edgeCount[e]++
			}
		}

		boundaryEdges := make([]edge, 0)
		for _, ti := range bad {
			t := triangles[ti]
			for k := 0; k < 3; k++ {
				e := edge{t.v[k], t.v[(k+1)%3]}
				eNorm := e
				if eNorm.a > eNorm.b {
					eNorm.a, eNorm.b = eNorm.b, eNorm.a
				}
				if edgeCount[eNorm] == 1 {
					boundaryEdges = append(boundaryEdges, e)
				}
			}
		}

		sort.Sort(sort.Reverse(sort.IntSlice(bad)))
		for _, ti := range bad {
			triangles[ti] = triangles[len(triangles)-1]
			triangles = triangles[:len(triangles)-1]
		}

		for _, e := range boundaryEdges {
			triangles = append(triangles, triangle{v: [3]int{e.a, e.b, pi}})
		}
	}

	result := make([][3]int, 0, len(triangles))
	for _, t := range triangles {
		if t.v[0] >= n || t.v[1] >= n || t.v[2] >= n {
			continue
		}
		v := t.v
		a, b, c := seeds[v[0]], seeds[v[1]], seeds[v[2]]
		if b.Sub(a).Cross(c.Sub(a)) < 0 {
			v[1], v[2] = v[2], v[1]
		}
		result = append(result, v)
	}
	// Deterministic vertex numbering regardless of removal order.
	sort.Slice(result, func(i, j int) bool {
		for k := 0; k < 3; k++ {
			if result[i][k] != result[j][k] {
				return result[i][k] < result[j][k]
			}
		}
		return false
	})
	return result
}

// inCircumcircle returns true if point p is inside the circumcircle of
// triangle (a,b,c). Uses the determinant test.
func inCircumcircle(p, a, b, c Point2D) bool {
	ax, ay := a.X-p.X, a.Y-p.Y
	bx, by := b.X-p.X, b.Y-p.Y
	cx, cy := c.X-p.X, c.Y-p.Y

	det := ax*(by*(cx*cx+cy*cy)-cy*(bx*bx+by*by)) -
		ay*(bx*(cx*cx+cy*cy)-cx*(bx*bx+by*by)) +
		(ax*ax+ay*ay)*(bx*cy-cx*by)

	orient := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if orient < 0 {
		det = -det
	}
	return det > 0
}

// CellByHalfPlanes computes a Voronoi cell by intersecting half-planes.
// For each other seed, clip the bounds to the half-plane closer to seed[i].
// It ignores provenance and is used as a geometric reference for ClipCell.
func CellByHalfPlanes(seedIdx int, seeds []Point2D, bounds Polygon) Polygon {
	cell := bounds
	seed := seeds[seedIdx]
	for j, other := range seeds {
		if j == seedIdx {
			continue
		}
		mid := MidPoint(seed, other)
		dir := other.Sub(seed).Perp()
		cell = clipToHalfPlane(cell, mid, mid.Add(dir))
		if cell.IsEmpty() {
			break
		}
	}
	return cell
}

// clipToHalfPlane clips a polygon to the left side of the directed line from a to b.
func clipToHalfPlane(poly Polygon, a, b Point2D) Polygon {
	if poly.IsEmpty() {
		return Polygon{}
	}
	n := len(poly.Vertices)
	ld := b.Sub(a)
	output := make([]Point2D, 0, n)
	for i := 0; i < n; i++ {
		curr := poly.Vertices[i]
		next := poly.Vertices[(i+1)%n]
		currInside := leftOf(curr, a, ld) >= 0
		nextInside := leftOf(next, a, ld) >= 0

		if currInside && nextInside {
			output = append(output, next)
		} else if currInside && !nextInside {
			if _, t, ok := lineIntersection(a, ld, curr, next); ok {
				output = append(output, curr.Lerp(next, t))
			}
		} else if !currInside && nextInside {
			if _, t, ok := lineIntersection(a, ld, curr, next); ok {
				output = append(output, curr.Lerp(next, t))
			}
			output = append(output, next)
		}
	}
	if len(output) < 3 {
		return Polygon{}
	}
	return Polygon{Vertices: output}
}

// lineIntersection intersects the line lv + m*ld with the segment v0→v1.
// It returns m along the line and t along the segment.
func lineIntersection(lv, ld, v0, v1 Point2D) (m, t float64, ok bool) {
	d := v1.Sub(v0)
	denom := ld.Cross(d)
	if math.Abs(denom) < 1e-12 {
		return 0, 0, false
	}
	w := v0.Sub(lv)
	m = w.Cross(d) / denom
	t = w.Cross(ld) / denom
	return m, t, true
}
