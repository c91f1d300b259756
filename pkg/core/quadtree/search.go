package quadtree

import (
	"github.com/sanonone/meshdex/pkg/core/geom"
	"github.com/sanonone/meshdex/pkg/core/mesh"
)

// NearestNode returns the mesh node closest to (x, y), or nil when the
// index holds no nodes. The point may lie outside the index bounds; the
// query degrades to a widening ring search instead of failing.
//
// Ties are broken by first-encountered in the stored leaf order.
func (ix *Index) NearestNode(x, y float64) *mesh.Node {
	if ix.mesh.NumNodes() == 0 {
		return nil
	}
	p := geom.Point{X: x, Y: y}

	// Fast path: scan the leaf containing the point, then confirm with a
	// circle query of the leaf-local best distance. The leaf result alone is
	// only a candidate: a closer node can sit just across a quadrant divider
	// in a neighboring leaf.
	var startRadius float64
	if ix.arena[0].bounds.Contains(p) {
		leaf := ix.leafAt(p)
		if len(leaf.points) > 0 {
			best := ix.closestIn(leaf.points, p)
			d := geom.Dist(best.Pos(), p)
			if d == 0 {
				return best
			}
			if found := ix.NodesInCircle(x, y, d); len(found) > 0 {
				return closestOf(found, p)
			}
			return best
		}
		startRadius = leaf.bounds.HalfDiagonal() * 2
	}

	// Sparse region or point outside bounds: widen a ring search until it
	// catches something. rMax is guaranteed to cover every node.
	root := ix.arena[0].bounds
	rMax := geom.Dist(p, root.Center()) + root.HalfDiagonal()
	if startRadius <= 0 {
		startRadius = rMax / 1024
	}
	for r := startRadius; r < rMax; r *= 2 {
		if found := ix.NodesInCircle(x, y, r); len(found) > 0 {
			return closestOf(found, p)
		}
	}

	// Everything is within rMax of p; scan the lot.
	nodes := ix.mesh.Nodes()
	best := &nodes[0]
	for i := range nodes[1:] {
		if geom.Dist(nodes[i+1].Pos(), p) < geom.Dist(best.Pos(), p) {
			best = &nodes[i+1]
		}
	}
	return best
}

// leafAt descends to the leaf whose box contains p. p must be inside the
// root bounds.
func (ix *Index) leafAt(p geom.Point) *treeNode {
	ti := int32(0)
	for ix.arena[ti].kind == kindBranch {
		n := &ix.arena[ti]
		ti = n.children[n.bounds.QuadrantOf(p)]
	}
	return &ix.arena[ti]
}

func closestOf(nodes []*mesh.Node, p geom.Point) *mesh.Node {
	best := nodes[0]
	bestDist := geom.Dist(best.Pos(), p)
	for _, n := range nodes[1:] {
		if d := geom.Dist(n.Pos(), p); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

func (ix *Index) closestIn(points []int32, p geom.Point) *mesh.Node {
	nodes := ix.mesh.Nodes()
	best := &nodes[points[0]]
	bestDist := geom.Dist(best.Pos(), p)
	for _, pi := range points[1:] {
		n := &nodes[pi]
		if d := geom.Dist(n.Pos(), p); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// ContainingElement returns the element whose triangle strictly contains
// (x, y), or nil when no triangle does. At most one element can claim a
// point strictly inside a conforming triangulation; on shared edges the
// barycentric test is strict, so the first match in traversal order wins.
func (ix *Index) ContainingElement(x, y float64) *mesh.Element {
	p := geom.Point{X: x, Y: y}
	if !ix.arena[0].bounds.Contains(p) {
		return nil
	}
	return ix.containingIn(0, p)
}

func (ix *Index) containingIn(ti int32, p geom.Point) *mesh.Element {
	n := &ix.arena[ti]
	if !n.bounds.Contains(p) {
		return nil
	}
	if n.kind == kindBranch {
		// A point on a quadrant divider is contained by both siblings;
		// visit all four and return the first claim.
		for _, ci := range n.children {
			if e := ix.containingIn(ci, p); e != nil {
				return e
			}
		}
		return nil
	}
	elems := ix.mesh.Elements()
	for _, ei := range n.elems {
		if elems[ei].Contains(p) {
			return &elems[ei]
		}
	}
	return nil
}

// NodesInCircle returns every node within radius r of (x, y). Leaves fully
// inside the circle contribute all their nodes without a distance test;
// straddling leaves are scanned exactly. The result order is unspecified
// and duplicate-free.
func (ix *Index) NodesInCircle(x, y, r float64) []*mesh.Node {
	if r <= 0 || ix.mesh.NumNodes() == 0 {
		return nil
	}
	circle := geom.Circle{Center: geom.Point{X: x, Y: y}, Radius: r}

	var out []*mesh.Node
	nodes := ix.mesh.Nodes()
	ix.walk(0, circle.ClassifyRect, func(leaf *treeNode, ov geom.Overlap) {
		for _, pi := range leaf.points {
			if ov == geom.OverlapFull || circle.Contains(nodes[pi].Pos()) {
				out = append(out, &nodes[pi])
			}
		}
	})
	return out
}

// ElementsInCircle returns every element with at least one vertex inside
// the circle. The any-vertex rule is the single selection rule for circular
// and polygonal ranges; see ElementsInRectangle for the rectangle rule.
func (ix *Index) ElementsInCircle(x, y, r float64) []*mesh.Element {
	if r <= 0 {
		return nil
	}
	circle := geom.Circle{Center: geom.Point{X: x, Y: y}, Radius: r}
	return ix.collectElements(circle.ClassifyRect, func(e *mesh.Element) bool {
		for _, v := range e.Vertices() {
			if circle.Contains(v) {
				return true
			}
		}
		return false
	})
}

// ElementsInRectangle returns every element whose bounding box overlaps the
// rectangle. Selection treats "touches" as "selected", so the box overlap
// is itself the exact rule.
func (ix *Index) ElementsInRectangle(l, r, b, t float64) []*mesh.Element {
	rect := geom.Rect{Left: l, Right: r, Bottom: b, Top: t}
	if rect.IsDegenerate() {
		return nil
	}
	return ix.collectElements(rect.Classify, func(e *mesh.Element) bool {
		return rect.Intersects(e.Bounds())
	})
}

// ElementsInPolygon returns every element with at least one vertex strictly
// inside the polygon, mirroring the circle rule.
func (ix *Index) ElementsInPolygon(poly []geom.Point) []*mesh.Element {
	pg := geom.Polygon(poly)
	if len(pg) < 3 {
		return nil
	}
	return ix.collectElements(pg.ClassifyRect, func(e *mesh.Element) bool {
		for _, v := range e.Vertices() {
			if pg.Contains(v) {
				return true
			}
		}
		return false
	})
}

// collectElements is the shared range-query engine: subtrees are pruned by
// the classifier, candidate element bounding boxes are classified again so
// fully-covered elements skip the exact test, and results are de-duplicated
// through a pooled visited set.
func (ix *Index) collectElements(classify func(geom.Rect) geom.Overlap, exact func(*mesh.Element) bool) []*mesh.Element {
	if ix.mesh.NumElements() == 0 {
		return nil
	}
	visited := ix.visitedPool.Get().(*bitSet)
	defer func() {
		visited.clear()
		ix.visitedPool.Put(visited)
	}()

	var out []*mesh.Element
	elems := ix.mesh.Elements()
	ix.walk(0, classify, func(leaf *treeNode, _ geom.Overlap) {
		for _, ei := range leaf.elems {
			if visited.has(ei) {
				continue
			}
			visited.add(ei)
			e := &elems[ei]
			switch classify(e.Bounds()) {
			case geom.OverlapNone:
				continue
			case geom.OverlapFull:
				out = append(out, e)
			case geom.OverlapPartial:
				if exact(e) {
					out = append(out, e)
				}
			}
		}
	})
	return out
}

// walk prunes subtrees classified as outside and hands every surviving leaf
// to visit together with its classification.
func (ix *Index) walk(ti int32, classify func(geom.Rect) geom.Overlap, visit func(*treeNode, geom.Overlap)) {
	n := &ix.arena[ti]
	ov := classify(n.bounds)
	if ov == geom.OverlapNone {
		return
	}
	if n.kind == kindLeaf {
		visit(n, ov)
		return
	}
	if ov == geom.OverlapFull {
		// The whole subtree is inside; skip re-classifying descendants.
		ix.walkAll(ti, visit)
		return
	}
	for _, ci := range n.children {
		ix.walk(ci, classify, visit)
	}
}

func (ix *Index) walkAll(ti int32, visit func(*treeNode, geom.Overlap)) {
	n := &ix.arena[ti]
	if n.kind == kindLeaf {
		visit(n, geom.OverlapFull)
		return
	}
	for _, ci := range n.children {
		ix.walkAll(ci, visit)
	}
}

// ElementsThroughDepth returns, for each depth 0..depth, the elements held
// by leaves at that depth; subtrees deeper than the cutoff are flattened
// into the cutoff slot. Coarser prefixes of the result approximate the full
// element set, which is what level-of-detail rendering consumes. Each
// element appears exactly once, at the shallowest depth that references it.
func (ix *Index) ElementsThroughDepth(depth int) [][]*mesh.Element {
	return ix.elementsThroughDepth(depth, nil)
}

// ElementsThroughDepthIn is ElementsThroughDepth pruned to a rectangle.
func (ix *Index) ElementsThroughDepthIn(depth int, bounds geom.Rect) [][]*mesh.Element {
	return ix.elementsThroughDepth(depth, &bounds)
}

func (ix *Index) elementsThroughDepth(depth int, bounds *geom.Rect) [][]*mesh.Element {
	if depth < 0 {
		return nil
	}
	out := make([][]*mesh.Element, depth+1)
	if ix.mesh.NumElements() == 0 {
		return out
	}
	visited := ix.visitedPool.Get().(*bitSet)
	defer func() {
		visited.clear()
		ix.visitedPool.Put(visited)
	}()

	elems := ix.mesh.Elements()
	var descend func(ti int32, d int)
	descend = func(ti int32, d int) {
		n := &ix.arena[ti]
		if bounds != nil && !bounds.Intersects(n.bounds) {
			return
		}
		if n.kind == kindLeaf {
			slot := min(d, depth)
			for _, ei := range n.elems {
				if visited.has(ei) {
					continue
				}
				visited.add(ei)
				out[slot] = append(out[slot], &elems[ei])
			}
			return
		}
		next := d
		if d < depth {
			next = d + 1
		}
		for _, ci := range n.children {
			descend(ci, next)
		}
	}
	descend(0, 0)
	return out
}
