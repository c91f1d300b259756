package mcp

// --- Tool Arguments ---

type MeshInfoArgs struct{}

type MeshInfoResult struct {
	NumNodes    int     `json:"num_nodes"`
	NumElements int     `json:"num_elements"`
	Left        float64 `json:"left"`
	Right       float64 `json:"right"`
	Bottom      float64 `json:"bottom"`
	Top         float64 `json:"top"`
	MinZ        float64 `json:"min_z"`
	MaxZ        float64 `json:"max_z"`
}

type NearestNodeArgs struct {
	X float64 `json:"x" jsonschema:"X coordinate of the query point,required"`
	Y float64 `json:"y" jsonschema:"Y coordinate of the query point,required"`
}

type NearestNodeResult struct {
	NodeID   uint32  `json:"node_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Distance float64 `json:"distance"`
}

type ContainingElementArgs struct {
	X float64 `json:"x" jsonschema:"X coordinate of the query point,required"`
	Y float64 `json:"y" jsonschema:"Y coordinate of the query point,required"`
}

type ContainingElementResult struct {
	Found     bool      `json:"found"`
	ElementID uint32    `json:"element_id,omitempty"`
	Nodes     [3]uint32 `json:"nodes,omitempty"`
}

type ElementsInCircleArgs struct {
	X      float64 `json:"x" jsonschema:"Circle center X,required"`
	Y      float64 `json:"y" jsonschema:"Circle center Y,required"`
	Radius float64 `json:"radius" jsonschema:"Circle radius in grid units,required"`
	Limit  int     `json:"limit,omitempty" jsonschema:"Max number of element ids to return (default 100)"`
}

type ElementsInCircleResult struct {
	Count      int      `json:"count"`
	ElementIDs []uint32 `json:"element_ids"`
	Truncated  bool     `json:"truncated"`
}

type ExtractBoundaryArgs struct {
	X      float64 `json:"x" jsonschema:"Circle center X of the region to carve,required"`
	Y      float64 `json:"y" jsonschema:"Circle center Y of the region to carve,required"`
	Radius float64 `json:"radius" jsonschema:"Circle radius of the region to carve,required"`
}

type ExtractBoundaryResult struct {
	OuterNodes []uint32   `json:"outer_nodes"`
	InnerLoops [][]uint32 `json:"inner_loops"`
}
