package geom

import (
	"math"
	"testing"
)

func TestRectContainsAndIntersects(t *testing.T) {
	r := Rect{Left: 0, Right: 10, Bottom: 0, Top: 5}

	testCases := []struct {
		name string
		p    Point
		want bool
	}{
		{"interior", Point{X: 5, Y: 2.5}, true},
		{"on left edge", Point{X: 0, Y: 2}, true},
		{"on corner", Point{X: 10, Y: 5}, true},
		{"outside right", Point{X: 10.01, Y: 2}, false},
		{"outside below", Point{X: 5, Y: -0.5}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.p); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}

	if !r.Intersects(Rect{Left: 9, Right: 12, Bottom: 4, Top: 6}) {
		t.Error("overlapping rects should intersect")
	}
	if !r.Intersects(Rect{Left: 10, Right: 12, Bottom: 0, Top: 5}) {
		t.Error("edge-touching rects should intersect")
	}
	if r.Intersects(Rect{Left: 11, Right: 12, Bottom: 0, Top: 5}) {
		t.Error("disjoint rects should not intersect")
	}
}

func TestRectQuadrants(t *testing.T) {
	r := Rect{Left: 0, Right: 4, Bottom: 0, Top: 4}

	// The four quadrants must tile the parent exactly.
	nw, ne, sw, se := r.Quadrant(0), r.Quadrant(1), r.Quadrant(2), r.Quadrant(3)
	if nw.Right != 2 || nw.Bottom != 2 {
		t.Errorf("NW quadrant wrong: %+v", nw)
	}
	if se.Left != 2 || se.Top != 2 {
		t.Errorf("SE quadrant wrong: %+v", se)
	}

	// QuadrantOf must agree with the quadrant geometry, including the
	// east/north rule on dividing lines.
	testCases := []struct {
		p    Point
		want int
	}{
		{Point{X: 1, Y: 3}, 0},
		{Point{X: 3, Y: 3}, 1},
		{Point{X: 1, Y: 1}, 2},
		{Point{X: 3, Y: 1}, 3},
		{Point{X: 2, Y: 2}, 1}, // exactly on center: goes NE
		{Point{X: 2, Y: 1}, 3}, // on vertical divider: goes east
	}
	for _, tc := range testCases {
		if got := r.QuadrantOf(tc.p); got != tc.want {
			t.Errorf("QuadrantOf(%v) = %d, want %d", tc.p, got, tc.want)
		}
	}
	_ = []Rect{ne, sw}
}

func TestTriangleContains(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 4, Y: 0}
	c := Point{X: 0, Y: 4}

	testCases := []struct {
		name string
		p    Point
		want bool
	}{
		{"centroid", Point{X: 1, Y: 1}, true},
		{"outside", Point{X: 3, Y: 3}, false},
		{"far away", Point{X: -1, Y: -1}, false},
		{"on edge is not strictly inside", Point{X: 2, Y: 0}, false},
		{"on vertex is not strictly inside", Point{X: 0, Y: 0}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TriangleContains(a, b, c, tc.p); got != tc.want {
				t.Errorf("TriangleContains(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}

	// Degenerate triangle claims nothing.
	if TriangleContains(a, b, Point{X: 2, Y: 0}, Point{X: 1, Y: 0}) {
		t.Error("degenerate triangle must not contain any point")
	}
}

func TestCircleClassifyRect(t *testing.T) {
	c := Circle{Center: Point{X: 0, Y: 0}, Radius: 10}

	testCases := []struct {
		name string
		r    Rect
		want Overlap
	}{
		{"small rect at center", Rect{Left: -1, Right: 1, Bottom: -1, Top: 1}, OverlapFull},
		{"rect crossing the rim", Rect{Left: 8, Right: 12, Bottom: -1, Top: 1}, OverlapPartial},
		{"rect beyond the rim", Rect{Left: 11, Right: 12, Bottom: -1, Top: 1}, OverlapNone},
		{"diagonal near miss", Rect{Left: 8, Right: 12, Bottom: 8, Top: 12}, OverlapNone},
		{"enclosing rect", Rect{Left: -20, Right: 20, Bottom: -20, Top: 20}, OverlapPartial},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.ClassifyRect(tc.r); got != tc.want {
				t.Errorf("ClassifyRect(%+v) = %v, want %v", tc.r, got, tc.want)
			}
		})
	}
}

func TestPolygonContains(t *testing.T) {
	// Concave "L" shape.
	pg := Polygon{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 2},
		{X: 2, Y: 2}, {X: 2, Y: 4}, {X: 0, Y: 4},
	}

	testCases := []struct {
		name string
		p    Point
		want bool
	}{
		{"in lower arm", Point{X: 3, Y: 1}, true},
		{"in upper arm", Point{X: 1, Y: 3}, true},
		{"in the notch", Point{X: 3, Y: 3}, false},
		{"outside", Point{X: 5, Y: 5}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pg.Contains(tc.p); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestPolygonClassifyRect(t *testing.T) {
	square := Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}

	if got := square.ClassifyRect(Rect{Left: 2, Right: 4, Bottom: 2, Top: 4}); got != OverlapFull {
		t.Errorf("interior rect = %v, want OverlapFull", got)
	}
	if got := square.ClassifyRect(Rect{Left: 8, Right: 12, Bottom: 2, Top: 4}); got != OverlapPartial {
		t.Errorf("straddling rect = %v, want OverlapPartial", got)
	}
	if got := square.ClassifyRect(Rect{Left: 20, Right: 22, Bottom: 2, Top: 4}); got != OverlapNone {
		t.Errorf("distant rect = %v, want OverlapNone", got)
	}

	// A rect whose corners are all inside but which swallows a polygon
	// vertex is not fully inside.
	concave := Polygon{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10},
		{X: 5, Y: 5}, {X: 0, Y: 10},
	}
	if got := concave.ClassifyRect(Rect{Left: 3, Right: 7, Bottom: 3, Top: 6}); got != OverlapPartial {
		t.Errorf("rect around concave vertex = %v, want OverlapPartial", got)
	}
}

func TestSegmentsIntersect(t *testing.T) {
	testCases := []struct {
		name           string
		p1, p2, q1, q2 Point
		want           bool
	}{
		{"crossing", Point{X: 0, Y: 0}, Point{X: 2, Y: 2}, Point{X: 0, Y: 2}, Point{X: 2, Y: 0}, true},
		{"parallel", Point{X: 0, Y: 0}, Point{X: 2, Y: 0}, Point{X: 0, Y: 1}, Point{X: 2, Y: 1}, false},
		{"touching at endpoint", Point{X: 0, Y: 0}, Point{X: 2, Y: 0}, Point{X: 2, Y: 0}, Point{X: 3, Y: 1}, true},
		{"collinear overlapping", Point{X: 0, Y: 0}, Point{X: 3, Y: 0}, Point{X: 2, Y: 0}, Point{X: 5, Y: 0}, true},
		{"collinear disjoint", Point{X: 0, Y: 0}, Point{X: 1, Y: 0}, Point{X: 2, Y: 0}, Point{X: 3, Y: 0}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SegmentsIntersect(tc.p1, tc.p2, tc.q1, tc.q2); got != tc.want {
				t.Errorf("SegmentsIntersect = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSignedArea(t *testing.T) {
	ccw := []Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	if got := SignedArea(ccw); got != 4 {
		t.Errorf("CCW square area = %v, want 4", got)
	}
	cw := []Point{{X: 0, Y: 0}, {X: 0, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 0}}
	if got := SignedArea(cw); got != -4 {
		t.Errorf("CW square area = %v, want -4", got)
	}
	if got := SignedArea(ccw[:2]); got != 0 {
		t.Errorf("degenerate loop area = %v, want 0", got)
	}
}

func TestDist(t *testing.T) {
	got := Dist(Point{X: 0, Y: 0}, Point{X: 3, Y: 4})
	if math.Abs(got-5) > 1e-12 {
		t.Errorf("Dist = %v, want 5", got)
	}
}
