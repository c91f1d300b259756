// Package mesh holds the immutable node/element snapshot that the quadtree
// and boundary packages operate on.
//
// A Mesh is built once from loader output and never mutated; the index and
// the extractors borrow it for their lifetime. Nodes keep the 1-based ids
// assigned by the grid file, and elements resolve their three vertex
// positions and bounding box at construction time so the hot query paths
// never chase an id lookup.
package mesh

import (
	"fmt"
	"math"

	"github.com/sanonone/meshdex/pkg/core/geom"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Node is a mesh vertex: a stable 1-based id, a planar position, and an
// elevation value.
type Node struct {
	ID uint32  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// Pos returns the planar position of the node.
func (n Node) Pos() geom.Point {
	return geom.Point{X: n.X, Y: n.Y}
}

// Element is a triangle referencing exactly three node ids. The vertex
// positions and the bounding box are derived once in New.
type Element struct {
	ID    uint32    `json:"id"`
	Nodes [3]uint32 `json:"nodes"`

	verts  [3]geom.Point
	bounds geom.Rect
}

// Vertex returns the resolved position of vertex i (0..2).
func (e *Element) Vertex(i int) geom.Point {
	return e.verts[i]
}

// Vertices returns the three resolved vertex positions.
func (e *Element) Vertices() [3]geom.Point {
	return e.verts
}

// Bounds returns the derived bounding box of the triangle.
func (e *Element) Bounds() geom.Rect {
	return e.bounds
}

// Contains runs the barycentric containment test against this triangle.
func (e *Element) Contains(p geom.Point) bool {
	return geom.TriangleContains(e.verts[0], e.verts[1], e.verts[2], p)
}

// Mesh is the immutable snapshot of a triangulated domain.
type Mesh struct {
	nodes    []Node
	elements []Element
	nodeIdx  map[uint32]int32
	elemIdx  map[uint32]int32
	bounds   geom.Rect
}

// New builds a snapshot from loader output. It fails if an element
// references a node id that is not present in nodes.
func New(nodes []Node, elements []Element) (*Mesh, error) {
	m := &Mesh{
		nodes:    nodes,
		elements: elements,
		nodeIdx:  make(map[uint32]int32, len(nodes)),
		elemIdx:  make(map[uint32]int32, len(elements)),
	}

	for i := range nodes {
		if _, dup := m.nodeIdx[nodes[i].ID]; dup {
			return nil, fmt.Errorf("mesh: duplicate node id %d", nodes[i].ID)
		}
		m.nodeIdx[nodes[i].ID] = int32(i)
	}

	for i := range elements {
		e := &elements[i]
		if _, dup := m.elemIdx[e.ID]; dup {
			return nil, fmt.Errorf("mesh: duplicate element id %d", e.ID)
		}
		m.elemIdx[e.ID] = int32(i)
		for v, nid := range e.Nodes {
			ni, ok := m.nodeIdx[nid]
			if !ok {
				return nil, fmt.Errorf("mesh: element %d references unknown node %d", e.ID, nid)
			}
			e.verts[v] = nodes[ni].Pos()
		}
		e.bounds = geom.BoundsOf(e.verts[:])
	}

	if len(nodes) > 0 {
		b := geom.Rect{
			Left: nodes[0].X, Right: nodes[0].X,
			Bottom: nodes[0].Y, Top: nodes[0].Y,
		}
		for i := range nodes[1:] {
			n := &nodes[i+1]
			b.Left = math.Min(b.Left, n.X)
			b.Right = math.Max(b.Right, n.X)
			b.Bottom = math.Min(b.Bottom, n.Y)
			b.Top = math.Max(b.Top, n.Y)
		}
		m.bounds = b
	}

	return m, nil
}

// Nodes returns the backing node array. Callers must treat it as read-only.
func (m *Mesh) Nodes() []Node { return m.nodes }

// Elements returns the backing element array. Callers must treat it as
// read-only.
func (m *Mesh) Elements() []Element { return m.elements }

func (m *Mesh) NumNodes() int    { return len(m.nodes) }
func (m *Mesh) NumElements() int { return len(m.elements) }

// Bounds returns the tight bounding rectangle of all node positions.
func (m *Mesh) Bounds() geom.Rect { return m.bounds }

// Node looks up a node by its stable id.
func (m *Mesh) Node(id uint32) (*Node, bool) {
	i, ok := m.nodeIdx[id]
	if !ok {
		return nil, false
	}
	return &m.nodes[i], true
}

// Element looks up an element by its stable id.
func (m *Mesh) Element(id uint32) (*Element, bool) {
	i, ok := m.elemIdx[id]
	if !ok {
		return nil, false
	}
	return &m.elements[i], true
}

// Summary carries the descriptive statistics reported by the info surfaces.
type Summary struct {
	NumNodes    int       `json:"num_nodes"`
	NumElements int       `json:"num_elements"`
	Bounds      geom.Rect `json:"bounds"`
	MinZ        float64   `json:"min_z"`
	MaxZ        float64   `json:"max_z"`
	MeanZ       float64   `json:"mean_z"`
	StdDevZ     float64   `json:"stddev_z"`
}

// Summarize computes elevation statistics over the whole snapshot.
func (m *Mesh) Summarize() Summary {
	s := Summary{
		NumNodes:    len(m.nodes),
		NumElements: len(m.elements),
		Bounds:      m.bounds,
	}
	if len(m.nodes) == 0 {
		return s
	}
	zs := make([]float64, len(m.nodes))
	for i := range m.nodes {
		zs[i] = m.nodes[i].Z
	}
	s.MinZ = floats.Min(zs)
	s.MaxZ = floats.Max(zs)
	s.MeanZ = stat.Mean(zs, nil)
	if len(zs) > 1 {
		s.StdDevZ = stat.StdDev(zs, nil)
	}
	return s
}
