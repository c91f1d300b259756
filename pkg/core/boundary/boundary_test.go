package boundary

import (
	"errors"
	"testing"

	"github.com/sanonone/meshdex/pkg/core/geom"
	"github.com/sanonone/meshdex/pkg/core/mesh"
)

// patchMesh triangulates a cols x rows cell grid over unit squares, two
// triangles per cell, optionally leaving holes at the given cell indices.
func patchMesh(t *testing.T, cols, rows int, holes map[[2]int]bool) (*mesh.Mesh, []*mesh.Element) {
	t.Helper()
	var nodes []mesh.Node
	id := uint32(1)
	for j := 0; j <= rows; j++ {
		for i := 0; i <= cols; i++ {
			nodes = append(nodes, mesh.Node{ID: id, X: float64(i), Y: float64(j)})
			id++
		}
	}
	var elements []mesh.Element
	eid := uint32(1)
	stride := uint32(cols + 1)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			if holes[[2]int{i, j}] {
				continue
			}
			sw := uint32(j)*stride + uint32(i) + 1
			se, nw, ne := sw+1, sw+stride, sw+stride+1
			elements = append(elements,
				mesh.Element{ID: eid, Nodes: [3]uint32{sw, se, ne}},
				mesh.Element{ID: eid + 1, Nodes: [3]uint32{sw, ne, nw}},
			)
			eid += 2
		}
	}
	m, err := mesh.New(nodes, elements)
	if err != nil {
		t.Fatalf("patchMesh: %v", err)
	}
	refs := make([]*mesh.Element, m.NumElements())
	for i := range m.Elements() {
		refs[i] = &m.Elements()[i]
	}
	return m, refs
}

func loopArea(t *testing.T, m *mesh.Mesh, loop []uint32) float64 {
	t.Helper()
	pts := make([]geom.Point, len(loop))
	for i, id := range loop {
		n, ok := m.Node(id)
		if !ok {
			t.Fatalf("loop node %d missing from mesh", id)
		}
		pts[i] = n.Pos()
	}
	return geom.SignedArea(pts)
}

func TestTwoTrianglePatch(t *testing.T) {
	// A single 1x1 cell: two triangles sharing the diagonal. The outer
	// loop is the four corners; the shared diagonal (count 2) must vanish.
	m, elems := patchMesh(t, 1, 1, nil)

	b, err := NewExtractor(m).FindAllBoundaries(elems)
	if err != nil {
		t.Fatalf("FindAllBoundaries: %v", err)
	}
	if len(b.Inner) != 0 {
		t.Errorf("got %d inner loops, want 0", len(b.Inner))
	}
	if len(b.Outer) != 4 {
		t.Fatalf("outer loop = %v, want the 4 corner nodes", b.Outer)
	}
	seen := make(map[uint32]bool)
	for _, id := range b.Outer {
		seen[id] = true
	}
	for id := uint32(1); id <= 4; id++ {
		if !seen[id] {
			t.Errorf("outer loop %v missing corner node %d", b.Outer, id)
		}
	}
	if area := loopArea(t, m, b.Outer); area != 1 {
		t.Errorf("outer loop area = %v, want +1 (counter-clockwise unit square)", area)
	}
}

func TestAnnulusHoleDetection(t *testing.T) {
	// 3x3 cells with the center cell unmeshed: a square annulus.
	m, elems := patchMesh(t, 3, 3, map[[2]int]bool{{1, 1}: true})

	b, err := NewExtractor(m).FindAllBoundaries(elems)
	if err != nil {
		t.Fatalf("FindAllBoundaries: %v", err)
	}
	if len(b.Inner) != 1 {
		t.Fatalf("got %d inner loops, want 1", len(b.Inner))
	}
	if len(b.Outer) != 12 {
		t.Errorf("outer loop has %d nodes, want the 12 perimeter nodes", len(b.Outer))
	}
	if len(b.Inner[0]) != 4 {
		t.Errorf("inner loop has %d nodes, want the 4 hole corners", len(b.Inner[0]))
	}

	outerArea := loopArea(t, m, b.Outer)
	innerArea := loopArea(t, m, b.Inner[0])
	if outerArea <= 0 {
		t.Errorf("outer loop area = %v, want positive (counter-clockwise)", outerArea)
	}
	if innerArea >= 0 {
		t.Errorf("inner loop area = %v, want negative (clockwise)", innerArea)
	}
	if -innerArea >= outerArea {
		t.Errorf("|inner| = %v should be smaller than outer = %v", -innerArea, outerArea)
	}
}

func TestNonManifoldRejection(t *testing.T) {
	// Three triangles sharing the edge (1, 2).
	m, err := mesh.New([]mesh.Node{
		{ID: 1, X: 0, Y: 0},
		{ID: 2, X: 2, Y: 0},
		{ID: 3, X: 1, Y: 1},
		{ID: 4, X: 1, Y: -1},
		{ID: 5, X: 1, Y: 2},
	}, []mesh.Element{
		{ID: 1, Nodes: [3]uint32{1, 2, 3}},
		{ID: 2, Nodes: [3]uint32{1, 2, 4}},
		{ID: 3, Nodes: [3]uint32{1, 2, 5}},
	})
	if err != nil {
		t.Fatal(err)
	}
	refs := []*mesh.Element{&m.Elements()[0], &m.Elements()[1], &m.Elements()[2]}

	_, err = NewExtractor(m).FindAllBoundaries(refs)
	var nm *NonManifoldError
	if !errors.As(err, &nm) {
		t.Fatalf("err = %v, want NonManifoldError", err)
	}
	if nm.Edge != (Edge{N1: 1, N2: 2}) || nm.Count != 3 {
		t.Errorf("NonManifoldError = %+v, want edge (1,2) count 3", nm)
	}
	if !errors.Is(err, ErrTopology) {
		t.Error("NonManifoldError should match ErrTopology")
	}
}

func TestBowtieRejection(t *testing.T) {
	// Two triangles touching at a single shared vertex: that vertex has
	// boundary degree 4.
	m, err := mesh.New([]mesh.Node{
		{ID: 1, X: 0, Y: 0},
		{ID: 2, X: 2, Y: 0},
		{ID: 3, X: 1, Y: 1},
		{ID: 4, X: 0, Y: 2},
		{ID: 5, X: 2, Y: 2},
	}, []mesh.Element{
		{ID: 1, Nodes: [3]uint32{1, 2, 3}},
		{ID: 2, Nodes: [3]uint32{3, 4, 5}},
	})
	if err != nil {
		t.Fatal(err)
	}
	refs := []*mesh.Element{&m.Elements()[0], &m.Elements()[1]}

	_, err = NewExtractor(m).FindAllBoundaries(refs)
	var de *DegreeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DegreeError", err)
	}
	if de.Node != 3 || de.Degree != 4 {
		t.Errorf("DegreeError = %+v, want node 3 degree 4", de)
	}
	if !errors.Is(err, ErrTopology) {
		t.Error("DegreeError should match ErrTopology")
	}
}

func TestEmptyInput(t *testing.T) {
	m, _ := patchMesh(t, 1, 1, nil)
	if _, err := NewExtractor(m).FindAllBoundaries(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", err)
	}
}

func TestLoopOrderIsConnected(t *testing.T) {
	m, elems := patchMesh(t, 4, 2, nil)

	b, err := NewExtractor(m).FindAllBoundaries(elems)
	if err != nil {
		t.Fatalf("FindAllBoundaries: %v", err)
	}

	// Consecutive loop nodes (including the wrap-around pair) must be
	// geometric neighbors on the unit grid.
	for i := range b.Outer {
		a, _ := m.Node(b.Outer[i])
		c, _ := m.Node(b.Outer[(i+1)%len(b.Outer)])
		if geom.Dist(a.Pos(), c.Pos()) != 1 {
			t.Errorf("loop nodes %d and %d are not adjacent", a.ID, c.ID)
		}
	}
}

func TestCanonicalEdge(t *testing.T) {
	if NewEdge(7, 3) != NewEdge(3, 7) {
		t.Error("edge canonicalization must ignore orientation")
	}
	if e := NewEdge(7, 3); e.N1 != 3 || e.N2 != 7 {
		t.Errorf("NewEdge(7, 3) = %+v, want (3, 7)", e)
	}
}
