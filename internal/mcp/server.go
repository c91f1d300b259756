package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/meshdex/pkg/engine"
)

func NewMCPServer(eng *engine.Engine) *mcp.Server {
	service := NewService(eng)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "meshdex",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "mesh_info",
		Description: "Get size, bounding box and elevation range of the loaded coastal grid.",
	}, service.MeshInfo)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "find_nearest_node",
		Description: "Find the grid node closest to a coordinate pair.",
	}, service.NearestNode)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "find_containing_element",
		Description: "Find the triangular element that contains a coordinate pair, if any.",
	}, service.ContainingElement)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "query_elements_in_circle",
		Description: "List the elements with at least one vertex inside a circle.",
	}, service.ElementsInCircle)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "extract_boundary",
		Description: "Extract the ordered outer and inner boundary node loops of the region inside a circle.",
	}, service.ExtractBoundary)

	return s
}
