// Package quadtree implements the hierarchical spatial index over mesh
// nodes and elements.
//
// The tree is built once from an immutable mesh snapshot and never mutated
// afterwards; all queries are read-only and safe to run concurrently once
// Build has returned. Nodes are stored in the single leaf whose box contains
// their position. Elements cover an area, so they are referenced from every
// leaf whose box intersects their bounding box; queries de-duplicate results
// by element index before returning them.
//
// Tree nodes live in a flat arena addressed by index rather than a pointer
// hierarchy, keeping the whole structure in a few contiguous allocations.
package quadtree

import (
	"fmt"

	"github.com/sanonone/meshdex/pkg/core/geom"
	"github.com/sanonone/meshdex/pkg/core/mesh"
	"sync"
)

const (
	kindLeaf = iota
	kindBranch
)

// treeNode is the tagged arena variant: a leaf holding node/element indices,
// or a branch holding exactly four child quadrants.
type treeNode struct {
	kind     uint8
	depth    int16
	bounds   geom.Rect
	points   []int32  // mesh node indices, leaf only
	elems    []int32  // mesh element indices, leaf only
	children [4]int32 // arena indices, branch only (NW, NE, SW, SE)
}

// Index is the built quadtree. It borrows the mesh snapshot it was built
// from and must not outlive it.
type Index struct {
	mesh  *mesh.Mesh
	cfg   Config
	arena []treeNode

	maxDepthSeen int

	// visited sets are reused across queries; elements can appear in many
	// leaves and each query needs one scratch set to de-duplicate.
	visitedPool sync.Pool
}

// Build constructs the index over every node of the mesh, then references
// each element from every leaf its bounding box intersects. Nodes are
// inserted one at a time in input order; insertion order affects tree shape
// but never query results.
//
// A mesh with zero nodes yields a single empty leaf and all queries return
// empty results. Non-empty meshes with degenerate (zero-area) bounds are
// rejected, as are nodes falling outside an explicitly supplied Bounds.
func Build(m *mesh.Mesh, cfg Config) (*Index, error) {
	cfg = cfg.withDefaults()

	bounds := cfg.Bounds
	if bounds.IsZero() {
		bounds = m.Bounds()
	}
	if m.NumNodes() > 0 && bounds.IsDegenerate() {
		return nil, fmt.Errorf("quadtree: degenerate bounds %+v for %d nodes", bounds, m.NumNodes())
	}
	cfg.Bounds = bounds

	ix := &Index{
		mesh:  m,
		cfg:   cfg,
		arena: make([]treeNode, 1, 64),
	}
	ix.arena[0] = treeNode{kind: kindLeaf, bounds: bounds}
	ix.visitedPool = sync.Pool{
		New: func() any { return newBitSet(m.NumElements()) },
	}

	for i := range m.Nodes() {
		if err := ix.insertPoint(int32(i)); err != nil {
			return nil, err
		}
	}
	for i := range m.Elements() {
		ix.insertElement(int32(i), 0)
	}
	return ix, nil
}

// Mesh returns the snapshot the index was built over.
func (ix *Index) Mesh() *mesh.Mesh { return ix.mesh }

// Bounds returns the global bounding rectangle of the tree.
func (ix *Index) Bounds() geom.Rect { return ix.cfg.Bounds }

// insertPoint descends to the leaf whose box contains the node position,
// splitting overflowing leaves on the way down.
func (ix *Index) insertPoint(pi int32) error {
	p := ix.mesh.Nodes()[pi].Pos()
	if !ix.arena[0].bounds.Contains(p) {
		return fmt.Errorf("quadtree: node %d at (%g, %g) outside index bounds %+v",
			ix.mesh.Nodes()[pi].ID, p.X, p.Y, ix.arena[0].bounds)
	}

	ti := int32(0)
	for {
		n := &ix.arena[ti]
		if n.kind == kindBranch {
			ti = n.children[n.bounds.QuadrantOf(p)]
			continue
		}
		if len(n.points) < ix.cfg.Capacity || int(n.depth) >= ix.cfg.MaxDepth {
			// Leaves at MaxDepth grow past Capacity instead of splitting,
			// the escape valve for coincident point clusters.
			n.points = append(n.points, pi)
			return nil
		}
		ix.split(ti)
	}
}

// split converts the leaf at arena index ti into a branch with four fresh
// leaf quadrants and redistributes its nodes among them.
func (ix *Index) split(ti int32) {
	base := int32(len(ix.arena))
	bounds := ix.arena[ti].bounds
	depth := ix.arena[ti].depth
	for q := 0; q < 4; q++ {
		ix.arena = append(ix.arena, treeNode{
			kind:   kindLeaf,
			depth:  depth + 1,
			bounds: bounds.Quadrant(q),
		})
	}
	if int(depth)+1 > ix.maxDepthSeen {
		ix.maxDepthSeen = int(depth) + 1
	}

	points := ix.arena[ti].points
	n := &ix.arena[ti]
	n.kind = kindBranch
	n.points = nil
	n.children = [4]int32{base, base + 1, base + 2, base + 3}

	for _, pi := range points {
		p := ix.mesh.Nodes()[pi].Pos()
		child := &ix.arena[n.children[bounds.QuadrantOf(p)]]
		child.points = append(child.points, pi)
	}
}

// insertElement references element ei from every leaf under ti whose box
// intersects the element bounding box. The tree shape is final by the time
// elements are inserted, so no redistribution is ever needed.
func (ix *Index) insertElement(ei, ti int32) {
	n := &ix.arena[ti]
	if !n.bounds.Intersects(ix.mesh.Elements()[ei].Bounds()) {
		return
	}
	if n.kind == kindLeaf {
		n.elems = append(n.elems, ei)
		return
	}
	for _, ci := range n.children {
		ix.insertElement(ei, ci)
	}
}

// Stats describes the built tree, for logs and the info surfaces.
type Stats struct {
	Leaves   int `json:"leaves"`
	Branches int `json:"branches"`
	MaxDepth int `json:"max_depth"`
	Capacity int `json:"capacity"`
}

// Stats walks the arena and reports tree shape counters.
func (ix *Index) Stats() Stats {
	s := Stats{MaxDepth: ix.maxDepthSeen, Capacity: ix.cfg.Capacity}
	for i := range ix.arena {
		if ix.arena[i].kind == kindLeaf {
			s.Leaves++
		} else {
			s.Branches++
		}
	}
	return s
}

// eachLeaf invokes fn for every leaf in the arena, in arena order.
func (ix *Index) eachLeaf(fn func(*treeNode)) {
	for i := range ix.arena {
		if ix.arena[i].kind == kindLeaf {
			fn(&ix.arena[i])
		}
	}
}
