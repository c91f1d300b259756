// Package geom provides the planar primitives shared by the quadtree and
// boundary packages: points, axis-aligned rectangles, circles, polygons, and
// the exact containment predicates used to refine spatial range queries.
//
// Every query in the quadtree follows the same pattern: a cheap three-way
// box classification (fully inside / fully outside / straddling the query
// shape) prunes whole subtrees, and only the straddling remainder pays for
// the exact tests defined here.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a planar (x, y) position. It aliases the gonum r2 vector so the
// r2 arithmetic helpers apply directly to query inputs and polygon vertices.
type Point = r2.Vec

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// Overlap is the result of classifying a rectangle against a query shape.
type Overlap int

const (
	// OverlapNone means the rectangle lies entirely outside the shape.
	OverlapNone Overlap = iota
	// OverlapPartial means the rectangle straddles the shape boundary and
	// its contents need exact per-item tests.
	OverlapPartial
	// OverlapFull means the rectangle lies entirely inside the shape and
	// its contents can be accepted without exact tests.
	OverlapFull
)

// Rect is an axis-aligned rectangle [Left, Right] x [Bottom, Top].
type Rect struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

// NewRect builds a rectangle from two opposite corners given in any order.
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{
		Left:   math.Min(x1, x2),
		Right:  math.Max(x1, x2),
		Bottom: math.Min(y1, y2),
		Top:    math.Max(y1, y2),
	}
}

// IsZero reports whether r is the zero value, used to mark "no bounds given".
func (r Rect) IsZero() bool {
	return r.Left == 0 && r.Right == 0 && r.Bottom == 0 && r.Top == 0
}

// IsDegenerate reports whether r has no interior area.
func (r Rect) IsDegenerate() bool {
	return r.Right <= r.Left || r.Top <= r.Bottom
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Top - r.Bottom }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Left + r.Right) / 2, Y: (r.Bottom + r.Top) / 2}
}

// HalfDiagonal returns the distance from the center to a corner.
func (r Rect) HalfDiagonal() float64 {
	return math.Hypot(r.Width(), r.Height()) / 2
}

// Contains reports whether p falls inside r. Boundaries are inclusive, so a
// point on a shared edge of two sibling quadrants is contained by both; the
// quadtree resolves the tie with a single consistent descent rule.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Bottom && p.Y <= r.Top
}

// Intersects reports whether r and o share any area or edge.
func (r Rect) Intersects(o Rect) bool {
	return r.Left <= o.Right && o.Left <= r.Right && r.Bottom <= o.Top && o.Bottom <= r.Top
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.Left >= r.Left && o.Right <= r.Right && o.Bottom >= r.Bottom && o.Top <= r.Top
}

// Corners returns the four corners of r.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.Left, Y: r.Bottom},
		{X: r.Right, Y: r.Bottom},
		{X: r.Right, Y: r.Top},
		{X: r.Left, Y: r.Top},
	}
}

// Quadrant returns one of the four equal subdivisions of r, indexed
// 0=NW, 1=NE, 2=SW, 3=SE.
func (r Rect) Quadrant(q int) Rect {
	c := r.Center()
	switch q {
	case 0:
		return Rect{Left: r.Left, Right: c.X, Bottom: c.Y, Top: r.Top}
	case 1:
		return Rect{Left: c.X, Right: r.Right, Bottom: c.Y, Top: r.Top}
	case 2:
		return Rect{Left: r.Left, Right: c.X, Bottom: r.Bottom, Top: c.Y}
	default:
		return Rect{Left: c.X, Right: r.Right, Bottom: r.Bottom, Top: c.Y}
	}
}

// QuadrantOf returns the quadrant index (as used by Quadrant) that p falls
// into. Points exactly on a dividing line go east/north, matching the split
// redistribution rule so every point lands in exactly one child.
func (r Rect) QuadrantOf(p Point) int {
	c := r.Center()
	if p.Y >= c.Y {
		if p.X >= c.X {
			return 1
		}
		return 0
	}
	if p.X >= c.X {
		return 3
	}
	return 2
}

// Classify reports how the candidate rectangle o relates to r treated as the
// query shape.
func (r Rect) Classify(o Rect) Overlap {
	if !r.Intersects(o) {
		return OverlapNone
	}
	if r.ContainsRect(o) {
		return OverlapFull
	}
	return OverlapPartial
}

// Expanded returns r grown by pad on every side.
func (r Rect) Expanded(pad float64) Rect {
	return Rect{Left: r.Left - pad, Right: r.Right + pad, Bottom: r.Bottom - pad, Top: r.Top + pad}
}

// BoundsOf computes the tight bounding rectangle of a non-empty point set.
func BoundsOf(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	b := Rect{Left: pts[0].X, Right: pts[0].X, Bottom: pts[0].Y, Top: pts[0].Y}
	for _, p := range pts[1:] {
		b.Left = math.Min(b.Left, p.X)
		b.Right = math.Max(b.Right, p.X)
		b.Bottom = math.Min(b.Bottom, p.Y)
		b.Top = math.Max(b.Top, p.Y)
	}
	return b
}

// TriangleContains runs the barycentric containment test for point p against
// the triangle (a, b, c). The point counts as inside only when all three
// barycentric weights are strictly positive, so a point exactly on a shared
// edge is claimed by neither adjacent triangle here; the quadtree search
// resolves edge ties by first match in traversal order.
func TriangleContains(a, b, c, p Point) bool {
	den := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if den == 0 {
		// Degenerate (zero-area) triangle contains nothing.
		return false
	}
	w1 := ((b.Y-c.Y)*(p.X-c.X) + (c.X-b.X)*(p.Y-c.Y)) / den
	w2 := ((c.Y-a.Y)*(p.X-c.X) + (a.X-c.X)*(p.Y-c.Y)) / den
	w3 := 1 - w1 - w2
	return w1 > 0 && w2 > 0 && w3 > 0
}

// Circle is a query disc.
type Circle struct {
	Center Point
	Radius float64
}

// Contains reports whether p lies inside or on the circle.
func (c Circle) Contains(p Point) bool {
	dx := p.X - c.Center.X
	dy := p.Y - c.Center.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// ClassifyRect classifies r against the circle: fully inside when all four
// corners are inside, fully outside when the closest point of r to the
// center is farther than the radius, partial otherwise.
func (c Circle) ClassifyRect(r Rect) Overlap {
	closest := Point{
		X: math.Max(r.Left, math.Min(c.Center.X, r.Right)),
		Y: math.Max(r.Bottom, math.Min(c.Center.Y, r.Top)),
	}
	if !c.Contains(closest) {
		return OverlapNone
	}
	for _, corner := range r.Corners() {
		if !c.Contains(corner) {
			return OverlapPartial
		}
	}
	return OverlapFull
}
