// Package gridio reads and writes ASCII finite-element grid files in the
// ADCIRC fort.14 layout: a title line, an element/node count line, the node
// table (id x y depth), the element table (id 3 n1 n2 n3), and optional
// boundary blocks.
//
// The reader produces the immutable mesh snapshot the index is built over;
// the writer emits a renumbered sub-grid from a selected element subset and
// its extracted boundary loops.
package gridio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sanonone/meshdex/pkg/core/mesh"
)

// ReadFile reads a grid file from disk. See Read.
func ReadFile(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gridio: %w", err)
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("gridio: %s: %w", path, err)
	}
	return m, nil
}

// Read parses a fort.14-style grid from r into a mesh snapshot. Boundary
// blocks after the element table are ignored; the extractor recomputes
// boundaries from connectivity when they are needed.
func Read(r io.Reader) (*mesh.Mesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0

	next := func() ([]string, error) {
		for sc.Scan() {
			line++
			fields := strings.Fields(sc.Text())
			if len(fields) > 0 {
				return fields, nil
			}
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}

	// Title line, then "NE NN".
	if _, err := next(); err != nil {
		return nil, fmt.Errorf("reading title: %w", err)
	}
	counts, err := next()
	if err != nil {
		return nil, fmt.Errorf("reading counts: %w", err)
	}
	if len(counts) < 2 {
		return nil, fmt.Errorf("line %d: want element and node counts, got %q", line, strings.Join(counts, " "))
	}
	numElements, err := strconv.Atoi(counts[0])
	if err != nil {
		return nil, fmt.Errorf("line %d: bad element count: %w", line, err)
	}
	numNodes, err := strconv.Atoi(counts[1])
	if err != nil {
		return nil, fmt.Errorf("line %d: bad node count: %w", line, err)
	}
	if numElements < 0 || numNodes < 0 {
		return nil, fmt.Errorf("line %d: negative counts %d/%d", line, numElements, numNodes)
	}

	nodes := make([]mesh.Node, 0, numNodes)
	for i := 0; i < numNodes; i++ {
		fields, err := next()
		if err != nil {
			return nil, fmt.Errorf("node %d of %d: %w", i+1, numNodes, err)
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("line %d: node record needs id x y depth", line)
		}
		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad node id: %w", line, err)
		}
		var coords [3]float64
		for c := 0; c < 3; c++ {
			coords[c], err = strconv.ParseFloat(fields[c+1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad node coordinate: %w", line, err)
			}
		}
		nodes = append(nodes, mesh.Node{ID: uint32(id), X: coords[0], Y: coords[1], Z: coords[2]})
	}

	elements := make([]mesh.Element, 0, numElements)
	for i := 0; i < numElements; i++ {
		fields, err := next()
		if err != nil {
			return nil, fmt.Errorf("element %d of %d: %w", i+1, numElements, err)
		}
		if len(fields) < 5 {
			return nil, fmt.Errorf("line %d: element record needs id nvert n1 n2 n3", line)
		}
		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad element id: %w", line, err)
		}
		if nv, err := strconv.Atoi(fields[1]); err != nil || nv != 3 {
			return nil, fmt.Errorf("line %d: only 3-node triangles are supported, got %q", line, fields[1])
		}
		var ref [3]uint32
		for v := 0; v < 3; v++ {
			n, err := strconv.ParseUint(fields[v+2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad vertex reference: %w", line, err)
			}
			ref[v] = uint32(n)
		}
		elements = append(elements, mesh.Element{ID: uint32(id), Nodes: ref})
	}

	m, err := mesh.New(nodes, elements)
	if err != nil {
		return nil, err
	}
	return m, nil
}
