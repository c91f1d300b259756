package mcp

import (
	"context"
	"math"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/meshdex/pkg/engine"
)

type Service struct {
	engine *engine.Engine
}

func NewService(eng *engine.Engine) *Service {
	return &Service{engine: eng}
}

// --- Tool Handlers ---

func (s *Service) MeshInfo(ctx context.Context, req *mcp.CallToolRequest, args MeshInfoArgs) (*mcp.CallToolResult, MeshInfoResult, error) {
	sum, _, err := s.engine.Summary()
	if err != nil {
		return nil, MeshInfoResult{}, err
	}
	return nil, MeshInfoResult{
		NumNodes:    sum.NumNodes,
		NumElements: sum.NumElements,
		Left:        sum.Bounds.Left,
		Right:       sum.Bounds.Right,
		Bottom:      sum.Bounds.Bottom,
		Top:         sum.Bounds.Top,
		MinZ:        sum.MinZ,
		MaxZ:        sum.MaxZ,
	}, nil
}

func (s *Service) NearestNode(ctx context.Context, req *mcp.CallToolRequest, args NearestNodeArgs) (*mcp.CallToolResult, NearestNodeResult, error) {
	n, err := s.engine.NearestNode(args.X, args.Y)
	if err != nil {
		return nil, NearestNodeResult{}, err
	}
	if n == nil {
		return nil, NearestNodeResult{}, engine.ErrNoMesh
	}
	dx, dy := n.X-args.X, n.Y-args.Y
	return nil, NearestNodeResult{
		NodeID:   n.ID,
		X:        n.X,
		Y:        n.Y,
		Z:        n.Z,
		Distance: math.Hypot(dx, dy),
	}, nil
}

func (s *Service) ContainingElement(ctx context.Context, req *mcp.CallToolRequest, args ContainingElementArgs) (*mcp.CallToolResult, ContainingElementResult, error) {
	el, err := s.engine.ContainingElement(args.X, args.Y)
	if err != nil {
		return nil, ContainingElementResult{}, err
	}
	if el == nil {
		return nil, ContainingElementResult{Found: false}, nil
	}
	return nil, ContainingElementResult{Found: true, ElementID: el.ID, Nodes: el.Nodes}, nil
}

func (s *Service) ElementsInCircle(ctx context.Context, req *mcp.CallToolRequest, args ElementsInCircleArgs) (*mcp.CallToolResult, ElementsInCircleResult, error) {
	elems, err := s.engine.ElementsInCircle(args.X, args.Y, args.Radius)
	if err != nil {
		return nil, ElementsInCircleResult{}, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = 100
	}
	res := ElementsInCircleResult{Count: len(elems)}
	for _, e := range elems {
		if len(res.ElementIDs) >= limit {
			res.Truncated = true
			break
		}
		res.ElementIDs = append(res.ElementIDs, e.ID)
	}
	return nil, res, nil
}

// ExtractBoundary carves the elements inside a circle into a throwaway
// selection, extracts its boundary loops and drops the selection.
func (s *Service) ExtractBoundary(ctx context.Context, req *mcp.CallToolRequest, args ExtractBoundaryArgs) (*mcp.CallToolResult, ExtractBoundaryResult, error) {
	id := s.engine.CreateSelection()
	defer s.engine.DropSelection(id)

	if _, err := s.engine.ApplyCircle(id, args.X, args.Y, args.Radius, engine.ModeSelect); err != nil {
		return nil, ExtractBoundaryResult{}, err
	}
	b, err := s.engine.ExtractBoundary(id)
	if err != nil {
		return nil, ExtractBoundaryResult{}, err
	}
	inner := b.Inner
	if inner == nil {
		inner = [][]uint32{}
	}
	return nil, ExtractBoundaryResult{OuterNodes: b.Outer, InnerLoops: inner}, nil
}
