// Package boundary recovers ordered boundary node loops from the element
// connectivity of a mesh subset.
//
// An edge referenced by exactly one triangle of the subset lies on the
// boundary; edges shared by two triangles are interior. Walking the graph
// of boundary edges yields closed loops, which are then classified by
// signed area: the loop enclosing the largest absolute area is the outer
// boundary, everything else bounds a hole.
//
// The extractor holds no state across calls; every invocation builds its
// edge map, walks it, and discards it. Malformed topology (an edge shared
// by three or more triangles, or a boundary node of degree other than two)
// is reported as a typed error and never produces a partial loop, since the
// output feeds subdomain file generation.
package boundary

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sanonone/meshdex/pkg/core/geom"
	"github.com/sanonone/meshdex/pkg/core/mesh"
)

// ErrTopology is the common failure class for malformed boundary input.
// The concrete errors below all match it through errors.Is.
var ErrTopology = errors.New("boundary: invalid topology")

// ErrEmptyInput is returned when the element subset is empty.
var ErrEmptyInput = errors.New("boundary: empty element set")

// NonManifoldError reports an edge referenced by more than two triangles.
type NonManifoldError struct {
	Edge  Edge
	Count int
}

func (e *NonManifoldError) Error() string {
	return fmt.Sprintf("boundary: edge (%d, %d) shared by %d elements", e.Edge.N1, e.Edge.N2, e.Count)
}

func (e *NonManifoldError) Is(target error) bool { return target == ErrTopology }

// DegreeError reports a boundary node with a degree other than two, the
// signature of a self-touching or otherwise malformed boundary.
type DegreeError struct {
	Node   uint32
	Degree int
}

func (e *DegreeError) Error() string {
	return fmt.Sprintf("boundary: node %d has boundary degree %d, want 2", e.Node, e.Degree)
}

func (e *DegreeError) Is(target error) bool { return target == ErrTopology }

// Edge is an unordered node-id pair in canonical (min, max) order, so the
// same geometric edge hashes identically regardless of triangle winding.
type Edge struct {
	N1, N2 uint32
}

// NewEdge builds the canonical form of the edge between a and b.
func NewEdge(a, b uint32) Edge {
	if a < b {
		return Edge{N1: a, N2: b}
	}
	return Edge{N1: b, N2: a}
}

// Boundaries is the extraction result: one outer loop and zero or more
// inner (hole) loops, each an ordered closed sequence of node ids. The
// outer loop winds counter-clockwise, inner loops clockwise.
type Boundaries struct {
	Outer []uint32   `json:"outer"`
	Inner [][]uint32 `json:"inner"`
}

// Extractor computes boundaries against one mesh snapshot. It is stateless
// and safe for concurrent use.
type Extractor struct {
	mesh *mesh.Mesh
}

// NewExtractor returns an extractor borrowing the given snapshot for node
// coordinate lookups during loop classification.
func NewExtractor(m *mesh.Mesh) *Extractor {
	return &Extractor{mesh: m}
}

// FindAllBoundaries computes the ordered boundary loops of the element
// subset. The subset must be non-empty; any topology defect fails the whole
// call rather than returning partial loops.
func (x *Extractor) FindAllBoundaries(elements []*mesh.Element) (Boundaries, error) {
	if len(elements) == 0 {
		return Boundaries{}, ErrEmptyInput
	}

	// Count occurrences of every canonical edge across the subset.
	counts := make(map[Edge]int, len(elements)*3)
	for _, e := range elements {
		counts[NewEdge(e.Nodes[0], e.Nodes[1])]++
		counts[NewEdge(e.Nodes[1], e.Nodes[2])]++
		counts[NewEdge(e.Nodes[2], e.Nodes[0])]++
	}

	// Keep only boundary edges (count 1); count 2 is interior, more is a
	// non-manifold defect.
	adjacency := make(map[uint32][]uint32)
	for edge, c := range counts {
		switch {
		case c == 1:
			adjacency[edge.N1] = append(adjacency[edge.N1], edge.N2)
			adjacency[edge.N2] = append(adjacency[edge.N2], edge.N1)
		case c == 2:
			// interior edge
		default:
			return Boundaries{}, &NonManifoldError{Edge: edge, Count: c}
		}
	}
	if len(adjacency) == 0 {
		return Boundaries{}, fmt.Errorf("%w: element set has no boundary edges", ErrTopology)
	}
	for node, neighbors := range adjacency {
		if len(neighbors) != 2 {
			return Boundaries{}, &DegreeError{Node: node, Degree: len(neighbors)}
		}
	}

	loops, err := x.walkLoops(adjacency)
	if err != nil {
		return Boundaries{}, err
	}
	return x.classify(loops)
}

// walkLoops consumes the degree-2 adjacency graph into closed loops. Walks
// start from the smallest unvisited node and prefer the smaller neighbor
// id, making the output deterministic for a given subset.
func (x *Extractor) walkLoops(adjacency map[uint32][]uint32) ([][]uint32, error) {
	starts := make([]uint32, 0, len(adjacency))
	for node := range adjacency {
		starts = append(starts, node)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	visited := make(map[uint32]bool, len(adjacency))
	var loops [][]uint32
	for _, start := range starts {
		if visited[start] {
			continue
		}
		loop := []uint32{start}
		visited[start] = true

		prev := start
		cur := min(adjacency[start][0], adjacency[start][1])
		for cur != start {
			if visited[cur] {
				// Cannot close back to start: the walk ran into another
				// loop, which a degree-2 graph should make impossible.
				return nil, &DegreeError{Node: cur, Degree: len(adjacency[cur])}
			}
			loop = append(loop, cur)
			visited[cur] = true

			next := adjacency[cur][0]
			if next == prev {
				next = adjacency[cur][1]
			}
			prev, cur = cur, next
		}
		if len(loop) < 3 {
			return nil, fmt.Errorf("%w: boundary loop through node %d has only %d nodes", ErrTopology, start, len(loop))
		}
		loops = append(loops, loop)
	}
	return loops, nil
}

// classify splits loops into outer and inner by absolute shoelace area and
// normalizes winding: outer counter-clockwise, inner clockwise.
func (x *Extractor) classify(loops [][]uint32) (Boundaries, error) {
	type measured struct {
		loop []uint32
		area float64
	}
	ms := make([]measured, len(loops))
	largest := 0
	for i, loop := range loops {
		pts := make([]geom.Point, len(loop))
		for j, id := range loop {
			n, ok := x.mesh.Node(id)
			if !ok {
				return Boundaries{}, fmt.Errorf("boundary: loop references node %d not in mesh", id)
			}
			pts[j] = n.Pos()
		}
		ms[i] = measured{loop: loop, area: geom.SignedArea(pts)}
		if abs(ms[i].area) > abs(ms[largest].area) {
			largest = i
		}
	}

	var out Boundaries
	for i, m := range ms {
		if i == largest {
			out.Outer = orient(m.loop, m.area, true)
			continue
		}
		out.Inner = append(out.Inner, orient(m.loop, m.area, false))
	}
	return out, nil
}

// orient reverses the loop in place when its winding does not match the
// requested orientation (counter-clockwise has positive signed area). The
// starting node is preserved.
func orient(loop []uint32, area float64, ccw bool) []uint32 {
	if (area > 0) == ccw {
		return loop
	}
	for i, j := 1, len(loop)-1; i < j; i, j = i+1, j-1 {
		loop[i], loop[j] = loop[j], loop[i]
	}
	return loop
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
