package geom

import "gonum.org/v1/gonum/spatial/r2"

// Polygon is an ordered sequence of vertices describing a closed loop. The
// closing edge from the last vertex back to the first is implicit.
type Polygon []Point

// Bounds returns the tight bounding rectangle of the polygon.
func (pg Polygon) Bounds() Rect {
	return BoundsOf(pg)
}

// Contains runs a ray-casting test: a horizontal ray from p to +infinity
// crosses the polygon boundary an odd number of times iff p is inside.
func (pg Polygon) Contains(p Point) bool {
	if len(pg) < 3 {
		return false
	}
	inside := false
	j := len(pg) - 1
	for i := 0; i < len(pg); i++ {
		pi, pj := pg[i], pg[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xCross := pi.X + (p.Y-pi.Y)/(pj.Y-pi.Y)*(pj.X-pi.X)
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// ClassifyRect classifies r against the polygon. The full case requires all
// four corners of r inside the polygon with no polygon vertex or edge
// entering r; anything else that touches the polygon's bounding box is
// conservatively partial, leaving correctness to the exact per-item tests.
func (pg Polygon) ClassifyRect(r Rect) Overlap {
	if len(pg) < 3 || !pg.Bounds().Intersects(r) {
		return OverlapNone
	}
	full := true
	for _, corner := range r.Corners() {
		if !pg.Contains(corner) {
			full = false
			break
		}
	}
	if full {
		for _, v := range pg {
			if r.Contains(v) {
				full = false
				break
			}
		}
	}
	if full && !pg.edgeTouchesRect(r) {
		return OverlapFull
	}
	return OverlapPartial
}

// edgeTouchesRect reports whether any polygon edge crosses an edge of r.
func (pg Polygon) edgeTouchesRect(r Rect) bool {
	corners := r.Corners()
	j := len(pg) - 1
	for i := 0; i < len(pg); i++ {
		for k := 0; k < 4; k++ {
			if SegmentsIntersect(pg[j], pg[i], corners[k], corners[(k+1)%4]) {
				return true
			}
		}
		j = i
	}
	return false
}

// SegmentsIntersect reports whether the closed segments p1-p2 and q1-q2
// share a point, using orientation cross products with collinear handling.
func SegmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := r2.Cross(r2.Sub(q2, q1), r2.Sub(p1, q1))
	d2 := r2.Cross(r2.Sub(q2, q1), r2.Sub(p2, q1))
	d3 := r2.Cross(r2.Sub(p2, p1), r2.Sub(q1, p1))
	d4 := r2.Cross(r2.Sub(p2, p1), r2.Sub(q2, p1))

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

// onSegment reports whether p, known collinear with a-b, lies between them.
func onSegment(a, b, p Point) bool {
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}

// SignedArea computes the shoelace signed area of an ordered loop: positive
// for counter-clockwise winding, negative for clockwise.
func SignedArea(loop []Point) float64 {
	if len(loop) < 3 {
		return 0
	}
	sum := 0.0
	j := len(loop) - 1
	for i := 0; i < len(loop); i++ {
		sum += r2.Cross(loop[j], loop[i])
		j = i
	}
	return sum / 2
}
