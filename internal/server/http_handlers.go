package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"strconv"

	"github.com/sanonone/meshdex/pkg/core/boundary"
	"github.com/sanonone/meshdex/pkg/core/geom"
	"github.com/sanonone/meshdex/pkg/core/mesh"
	"github.com/sanonone/meshdex/pkg/engine"
)

// registerHTTPHandlers sets up the REST API routes.
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	// Debug endpoints (pprof)
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)

	// Mesh lifecycle
	mux.HandleFunc("POST /mesh/actions/load", s.handleMeshLoad)
	mux.HandleFunc("GET /mesh/info", s.handleMeshInfo)

	// Point and range queries
	mux.HandleFunc("GET /query/nearest-node", s.handleNearestNode)
	mux.HandleFunc("GET /query/containing-element", s.handleContainingElement)
	mux.HandleFunc("POST /query/nodes-in-circle", s.handleNodesInCircle)
	mux.HandleFunc("POST /query/elements-in-circle", s.handleElementsInCircle)
	mux.HandleFunc("POST /query/elements-in-rectangle", s.handleElementsInRectangle)
	mux.HandleFunc("POST /query/elements-in-polygon", s.handleElementsInPolygon)
	mux.HandleFunc("GET /query/elements-through-depth", s.handleElementsThroughDepth)

	// Selection lifecycle
	mux.HandleFunc("POST /selections", s.handleSelectionCreate)
	mux.HandleFunc("GET /selections", s.handleSelectionList)
	mux.HandleFunc("GET /selections/{id}", s.handleSelectionGet)
	mux.HandleFunc("DELETE /selections/{id}", s.handleSelectionDelete)
	mux.HandleFunc("POST /selections/{id}/actions/apply", s.handleSelectionApply)
	mux.HandleFunc("POST /selections/{id}/actions/extract-boundary", s.handleExtractBoundary)
	mux.HandleFunc("POST /selections/{id}/actions/export", s.handleExport)

	// Async tasks
	mux.HandleFunc("GET /tasks/{id}", s.handleGetTask)
}

// handleMeshLoad kicks off an asynchronous load-and-index task and returns
// 202 with the task id. Indexing a large coastal grid takes seconds, too
// long to hold the request open.
func (s *Server) handleMeshLoad(w http.ResponseWriter, r *http.Request) {
	var req MeshLoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Path == "" {
		s.writeHTTPError(w, http.StatusBadRequest, "'path' is required")
		return
	}

	task := s.taskManager.NewTask()
	go func() {
		task.SetStatus(TaskStatusRunning)
		task.SetProgress("reading " + req.Path)
		if err := s.Engine.LoadMeshFile(req.Path); err != nil {
			slog.Error("mesh load failed", "path", req.Path, "error", err)
			task.SetError(err)
			return
		}
		sum, stats, err := s.Engine.Summary()
		if err != nil {
			task.SetError(err)
			return
		}
		task.SetResult(MeshInfoResponse{Mesh: sum, Index: stats})
	}()

	s.writeHTTPResponse(w, http.StatusAccepted, map[string]string{"task_id": task.ID})
}

func (s *Server) handleMeshInfo(w http.ResponseWriter, r *http.Request) {
	sum, stats, err := s.Engine.Summary()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, MeshInfoResponse{Mesh: sum, Index: stats})
}

// parseCoord reads a required float query parameter.
func parseCoord(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("'%s' query parameter is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a number: %q", name, raw)
	}
	return v, nil
}

func (s *Server) handleNearestNode(w http.ResponseWriter, r *http.Request) {
	x, err := parseCoord(r, "x")
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	y, err := parseCoord(r, "y")
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := s.Engine.NearestNode(x, y)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if n == nil {
		s.writeHTTPError(w, http.StatusNotFound, "mesh has no nodes")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, nodeDTO(n))
}

func (s *Server) handleContainingElement(w http.ResponseWriter, r *http.Request) {
	x, err := parseCoord(r, "x")
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	y, err := parseCoord(r, "y")
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	el, err := s.Engine.ContainingElement(x, y)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if el == nil {
		s.writeHTTPError(w, http.StatusNotFound, "point is not inside any element")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, ElementDTO{ID: el.ID, Nodes: el.Nodes})
}

func (s *Server) handleNodesInCircle(w http.ResponseWriter, r *http.Request) {
	var req CircleQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	nodes, err := s.Engine.NodesInCircle(req.X, req.Y, req.Radius)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	out := make([]NodeDTO, len(nodes))
	for i, n := range nodes {
		out[i] = nodeDTO(n)
	}
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{"nodes": out, "count": len(out)})
}

func (s *Server) handleElementsInCircle(w http.ResponseWriter, r *http.Request) {
	var req CircleQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	elems, err := s.Engine.ElementsInCircle(req.X, req.Y, req.Radius)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeElements(w, elems)
}

func (s *Server) handleElementsInRectangle(w http.ResponseWriter, r *http.Request) {
	var req RectangleQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	elems, err := s.Engine.ElementsInRectangle(req.Left, req.Right, req.Bottom, req.Top)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeElements(w, elems)
}

func (s *Server) handleElementsInPolygon(w http.ResponseWriter, r *http.Request) {
	var req PolygonQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Vertices) < 3 {
		s.writeHTTPError(w, http.StatusBadRequest, "polygon needs at least 3 vertices")
		return
	}

	elems, err := s.Engine.ElementsInPolygon(req.Vertices)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeElements(w, elems)
}

func (s *Server) handleElementsThroughDepth(w http.ResponseWriter, r *http.Request) {
	depthRaw := r.URL.Query().Get("depth")
	depth, err := strconv.Atoi(depthRaw)
	if err != nil || depth < 0 {
		s.writeHTTPError(w, http.StatusBadRequest, "'depth' must be a non-negative integer")
		return
	}

	// Optional viewport: all four of left/right/bottom/top.
	var window *geom.Rect
	if r.URL.Query().Get("left") != "" {
		l, err1 := parseCoord(r, "left")
		rt, err2 := parseCoord(r, "right")
		b, err3 := parseCoord(r, "bottom")
		t, err4 := parseCoord(r, "top")
		if err := errors.Join(err1, err2, err3, err4); err != nil {
			s.writeHTTPError(w, http.StatusBadRequest, err.Error())
			return
		}
		window = &geom.Rect{Left: l, Right: rt, Bottom: b, Top: t}
	}

	levels, err := s.Engine.ElementsThroughDepth(depth, window)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	m, err := s.Engine.Mesh()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{
		"levels": depthLevelDTOs(m, levels),
	})
}

func (s *Server) handleSelectionCreate(w http.ResponseWriter, r *http.Request) {
	id := s.Engine.CreateSelection()
	s.writeHTTPResponse(w, http.StatusCreated, SelectionResponse{ID: id, Size: 0})
}

func (s *Server) handleSelectionList(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{"selections": s.Engine.SelectionIDs()})
}

func (s *Server) handleSelectionGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	set, err := s.Engine.Selection(id)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{
		"id":          id,
		"size":        set.Len(),
		"element_ids": set.IDs(),
	})
}

func (s *Server) handleSelectionDelete(w http.ResponseWriter, r *http.Request) {
	s.Engine.DropSelection(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectionApply(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req SelectionApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	mode := engine.ModeSelect
	if req.Mode == string(engine.ModeDeselect) {
		mode = engine.ModeDeselect
	}

	var size int
	var err error
	switch req.Shape {
	case "circle":
		if req.Circle == nil {
			s.writeHTTPError(w, http.StatusBadRequest, "'circle' body is required for shape circle")
			return
		}
		size, err = s.Engine.ApplyCircle(id, req.Circle.X, req.Circle.Y, req.Circle.Radius, mode)
	case "rectangle":
		if req.Rectangle == nil {
			s.writeHTTPError(w, http.StatusBadRequest, "'rectangle' body is required for shape rectangle")
			return
		}
		size, err = s.Engine.ApplyRectangle(id, req.Rectangle.Left, req.Rectangle.Right, req.Rectangle.Bottom, req.Rectangle.Top, mode)
	case "polygon":
		if req.Polygon == nil || len(req.Polygon.Vertices) < 3 {
			s.writeHTTPError(w, http.StatusBadRequest, "'polygon' with at least 3 vertices is required for shape polygon")
			return
		}
		size, err = s.Engine.ApplyPolygon(id, req.Polygon.Vertices, mode)
	default:
		s.writeHTTPError(w, http.StatusBadRequest, "shape must be one of: circle, rectangle, polygon")
		return
	}
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, SelectionResponse{ID: id, Size: size})
}

func (s *Server) handleExtractBoundary(w http.ResponseWriter, r *http.Request) {
	b, err := s.Engine.ExtractBoundary(r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, boundaryResponse(b))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
	}
	if req.Title == "" {
		req.Title = "meshdex subdomain"
	}

	// Buffer the whole export before touching the ResponseWriter, so a
	// failure never leaves a 200 with a truncated grid body.
	var buf bytes.Buffer
	if err := s.Engine.ExportSubdomain(r.PathValue("id"), req.Title, &buf); err != nil {
		slog.Error("subdomain export failed", "error", err)
		s.writeEngineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, found := s.taskManager.GetTask(r.PathValue("id"))
	if !found {
		s.writeHTTPError(w, http.StatusNotFound, "task not found")
		return
	}
	snap := task.Snapshot()
	s.writeHTTPResponse(w, http.StatusOK, &snap)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- HTTP response helpers ---

func (s *Server) writeElements(w http.ResponseWriter, elems []*mesh.Element) {
	out := elementDTOs(elems)
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{"elements": out, "count": len(out)})
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}

// writeEngineError maps engine sentinel errors onto HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNoMesh):
		s.writeHTTPError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrSelectionNotFound):
		s.writeHTTPError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, boundary.ErrTopology), errors.Is(err, boundary.ErrEmptyInput):
		s.writeHTTPError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
	}
}
