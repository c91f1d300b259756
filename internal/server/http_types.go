package server

import (
	"github.com/sanonone/meshdex/pkg/core/boundary"
	"github.com/sanonone/meshdex/pkg/core/geom"
	"github.com/sanonone/meshdex/pkg/core/mesh"
	"github.com/sanonone/meshdex/pkg/core/quadtree"
	"github.com/x448/float16"
)

// MeshLoadRequest defines the body for the asynchronous mesh load action.
type MeshLoadRequest struct {
	Path string `json:"path"`
}

// MeshInfoResponse reports mesh statistics plus index shape counters.
type MeshInfoResponse struct {
	Mesh  mesh.Summary   `json:"mesh"`
	Index quadtree.Stats `json:"index"`
}

// NodeDTO is the wire form of a mesh node.
type NodeDTO struct {
	ID uint32  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// ElementDTO is the wire form of a mesh element.
type ElementDTO struct {
	ID    uint32    `json:"id"`
	Nodes [3]uint32 `json:"nodes"`
}

func nodeDTO(n *mesh.Node) NodeDTO {
	return NodeDTO{ID: n.ID, X: n.X, Y: n.Y, Z: n.Z}
}

func elementDTOs(elems []*mesh.Element) []ElementDTO {
	out := make([]ElementDTO, len(elems))
	for i, e := range elems {
		out[i] = ElementDTO{ID: e.ID, Nodes: e.Nodes}
	}
	return out
}

// CircleQueryRequest defines the body for circle range queries.
type CircleQueryRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// RectangleQueryRequest defines the body for rectangle range queries.
type RectangleQueryRequest struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

// PolygonQueryRequest defines the body for polygon range queries.
type PolygonQueryRequest struct {
	Vertices []geom.Point `json:"vertices"`
}

// DepthLevelDTO is one level of the level-of-detail retrieval. Elevations
// are packed to half precision, which is plenty for progressive rendering
// and halves the payload for large grids.
type DepthLevelDTO struct {
	Depth      int          `json:"depth"`
	Elements   []ElementDTO `json:"elements"`
	Elevations []uint16     `json:"elevations_f16"`
}

func depthLevelDTOs(m *mesh.Mesh, levels [][]*mesh.Element) []DepthLevelDTO {
	out := make([]DepthLevelDTO, len(levels))
	for d, elems := range levels {
		lvl := DepthLevelDTO{
			Depth:      d,
			Elements:   elementDTOs(elems),
			Elevations: make([]uint16, 0, len(elems)),
		}
		for _, e := range elems {
			var z float64
			for _, nid := range e.Nodes {
				if n, ok := m.Node(nid); ok {
					z += n.Z
				}
			}
			lvl.Elevations = append(lvl.Elevations, float16.Fromfloat32(float32(z/3)).Bits())
		}
		out[d] = lvl
	}
	return out
}

// SelectionApplyRequest defines the body for applying a range query to a
// selection. Shape is one of "circle", "rectangle" or "polygon"; mode is
// "select" (default) or "deselect".
type SelectionApplyRequest struct {
	Shape     string                 `json:"shape"`
	Mode      string                 `json:"mode,omitempty"`
	Circle    *CircleQueryRequest    `json:"circle,omitempty"`
	Rectangle *RectangleQueryRequest `json:"rectangle,omitempty"`
	Polygon   *PolygonQueryRequest   `json:"polygon,omitempty"`
}

// SelectionResponse reports a selection id and its current size.
type SelectionResponse struct {
	ID   string `json:"id"`
	Size int    `json:"size"`
}

// BoundaryResponse is the wire form of an extraction result.
type BoundaryResponse struct {
	Outer []uint32   `json:"outer"`
	Inner [][]uint32 `json:"inner"`
}

func boundaryResponse(b boundary.Boundaries) BoundaryResponse {
	inner := b.Inner
	if inner == nil {
		inner = [][]uint32{}
	}
	return BoundaryResponse{Outer: b.Outer, Inner: inner}
}

// ExportRequest defines the body for subdomain export.
type ExportRequest struct {
	Title string `json:"title,omitempty"`
}
