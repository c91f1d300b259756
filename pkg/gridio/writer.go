package gridio

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/sanonone/meshdex/pkg/core/boundary"
	"github.com/sanonone/meshdex/pkg/core/mesh"
)

// Subdomain describes a carved-out sub-region ready for serialization: the
// parent snapshot, the selected element subset, and the boundary loops
// extracted from that subset.
type Subdomain struct {
	Title    string
	Mesh     *mesh.Mesh
	Elements []*mesh.Element
	Bounds   boundary.Boundaries
}

// WriteSubdomain writes the subdomain as a fort.14-style grid. Nodes and
// elements are renumbered to dense 1-based ids in ascending parent-id
// order; boundary loops are emitted as one open-water segment (the outer
// loop) followed by one land segment per hole, all in the new numbering.
func WriteSubdomain(w io.Writer, sd Subdomain) error {
	if len(sd.Elements) == 0 {
		return fmt.Errorf("gridio: subdomain has no elements")
	}

	// Collect the node ids the subset references, in ascending order.
	used := make(map[uint32]bool)
	for _, e := range sd.Elements {
		for _, nid := range e.Nodes {
			used[nid] = true
		}
	}
	oldIDs := make([]uint32, 0, len(used))
	for id := range used {
		oldIDs = append(oldIDs, id)
	}
	sort.Slice(oldIDs, func(i, j int) bool { return oldIDs[i] < oldIDs[j] })

	renum := make(map[uint32]uint32, len(oldIDs))
	for i, id := range oldIDs {
		renum[id] = uint32(i + 1)
	}

	bw := bufio.NewWriter(w)
	title := sd.Title
	if title == "" {
		title = "meshdex subdomain"
	}
	fmt.Fprintln(bw, title)
	fmt.Fprintf(bw, "%d %d\n", len(sd.Elements), len(oldIDs))

	for _, id := range oldIDs {
		n, ok := sd.Mesh.Node(id)
		if !ok {
			return fmt.Errorf("gridio: subdomain references node %d not in mesh", id)
		}
		fmt.Fprintf(bw, "%d %.10g %.10g %.10g\n", renum[id], n.X, n.Y, n.Z)
	}

	for i, e := range sd.Elements {
		fmt.Fprintf(bw, "%d 3 %d %d %d\n", i+1,
			renum[e.Nodes[0]], renum[e.Nodes[1]], renum[e.Nodes[2]])
	}

	// Boundary blocks: the outer loop as the single open segment, holes as
	// land segments.
	if err := writeLoop(bw, "open", 1, [][]uint32{sd.Bounds.Outer}, renum); err != nil {
		return err
	}
	if err := writeLoop(bw, "land", len(sd.Bounds.Inner), sd.Bounds.Inner, renum); err != nil {
		return err
	}
	return bw.Flush()
}

func writeLoop(w io.Writer, kind string, count int, loops [][]uint32, renum map[uint32]uint32) error {
	total := 0
	for _, loop := range loops {
		total += len(loop)
	}
	fmt.Fprintf(w, "%d = number of %s boundaries\n", count, kind)
	fmt.Fprintf(w, "%d = total number of %s boundary nodes\n", total, kind)
	for _, loop := range loops {
		fmt.Fprintf(w, "%d\n", len(loop))
		for _, id := range loop {
			nid, ok := renum[id]
			if !ok {
				return fmt.Errorf("gridio: boundary loop references node %d outside the subdomain", id)
			}
			fmt.Fprintf(w, "%d\n", nid)
		}
	}
	return nil
}
