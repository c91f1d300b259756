// Package engine provides the high-level, embedded interface for meshdex.
//
// It owns the loaded mesh snapshot, the spatial index built over it, and a
// registry of named selections, providing a thread-safe instance that can
// be used directly within Go applications without network overhead. The
// HTTP and MCP surfaces are both thin wrappers around this type.
//
// Basic usage:
//
//	eng := engine.Open(engine.DefaultOptions())
//	if err := eng.LoadMeshFile("fort.14"); err != nil {
//	    log.Fatal(err)
//	}
//	node, _ := eng.NearestNode(-75.6, 35.8)
//
// The mesh and index are replaced atomically on every load: a rebuild
// publishes a complete new snapshot, and in-flight queries keep reading
// the one they started on.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sanonone/meshdex/pkg/core/boundary"
	"github.com/sanonone/meshdex/pkg/core/geom"
	"github.com/sanonone/meshdex/pkg/core/mesh"
	"github.com/sanonone/meshdex/pkg/core/quadtree"
	"github.com/sanonone/meshdex/pkg/gridio"
	"github.com/sanonone/meshdex/pkg/metrics"
	"github.com/sanonone/meshdex/pkg/selection"
)

// ErrNoMesh is returned by queries before any mesh has been loaded.
var ErrNoMesh = errors.New("engine: no mesh loaded")

// ErrSelectionNotFound is returned for unknown selection ids.
var ErrSelectionNotFound = errors.New("engine: selection not found")

// Options configures index construction.
type Options struct {
	// Capacity is the quadtree leaf bucket size. Zero means the quadtree
	// default.
	Capacity int

	// MaxDepth caps quadtree splitting. Zero means the quadtree default.
	MaxDepth int
}

// DefaultOptions returns a standard configuration suitable for most grids.
func DefaultOptions() Options {
	return Options{}
}

// snapshot binds one mesh to the index built over it, so both swap as a
// unit.
type snapshot struct {
	mesh  *mesh.Mesh
	index *quadtree.Index
}

// Engine is a thread-safe meshdex instance.
type Engine struct {
	opts Options

	mu         sync.RWMutex
	snap       *snapshot
	selections map[string]*selection.Set
}

// Open creates an engine with no mesh loaded.
func Open(opts Options) *Engine {
	return &Engine{
		opts:       opts,
		selections: make(map[string]*selection.Set),
	}
}

// LoadMeshFile reads a grid file and builds a fresh index over it.
// Existing selections survive a reload and re-resolve against the new
// snapshot by element id.
func (e *Engine) LoadMeshFile(path string) error {
	m, err := gridio.ReadFile(path)
	if err != nil {
		return err
	}
	return e.SetMesh(m)
}

// SetMesh builds a fresh index over m and atomically publishes the new
// snapshot.
func (e *Engine) SetMesh(m *mesh.Mesh) error {
	start := time.Now()
	ix, err := quadtree.Build(m, quadtree.Config{
		Capacity: e.opts.Capacity,
		MaxDepth: e.opts.MaxDepth,
	})
	if err != nil {
		return fmt.Errorf("engine: building index: %w", err)
	}
	elapsed := time.Since(start)

	metrics.IndexBuildDuration.Observe(elapsed.Seconds())
	metrics.MeshNodes.Set(float64(m.NumNodes()))
	metrics.MeshElements.Set(float64(m.NumElements()))
	slog.Info("index built",
		"nodes", m.NumNodes(),
		"elements", m.NumElements(),
		"stats", ix.Stats(),
		"duration", elapsed.String(),
	)

	e.mu.Lock()
	e.snap = &snapshot{mesh: m, index: ix}
	e.mu.Unlock()
	return nil
}

// HasMesh reports whether a snapshot is loaded.
func (e *Engine) HasMesh() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap != nil
}

func (e *Engine) snapshot() (*snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap == nil {
		return nil, ErrNoMesh
	}
	return e.snap, nil
}

// Mesh returns the current mesh snapshot. Callers must treat it as
// read-only.
func (e *Engine) Mesh() (*mesh.Mesh, error) {
	s, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return s.mesh, nil
}

// Summary returns mesh statistics plus index shape counters.
func (e *Engine) Summary() (mesh.Summary, quadtree.Stats, error) {
	s, err := e.snapshot()
	if err != nil {
		return mesh.Summary{}, quadtree.Stats{}, err
	}
	return s.mesh.Summarize(), s.index.Stats(), nil
}

// NearestNode returns the node closest to (x, y).
func (e *Engine) NearestNode(x, y float64) (*mesh.Node, error) {
	s, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues("nearest_node").Inc()
	return s.index.NearestNode(x, y), nil
}

// ContainingElement returns the element containing (x, y), or nil when the
// point falls outside every element.
func (e *Engine) ContainingElement(x, y float64) (*mesh.Element, error) {
	s, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues("containing_element").Inc()
	return s.index.ContainingElement(x, y), nil
}

// NodesInCircle returns every node within radius r of (x, y).
func (e *Engine) NodesInCircle(x, y, r float64) ([]*mesh.Node, error) {
	s, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues("nodes_in_circle").Inc()
	return s.index.NodesInCircle(x, y, r), nil
}

// ElementsInCircle returns every element with a vertex inside the circle.
func (e *Engine) ElementsInCircle(x, y, r float64) ([]*mesh.Element, error) {
	s, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues("elements_in_circle").Inc()
	return s.index.ElementsInCircle(x, y, r), nil
}

// ElementsInRectangle returns every element whose bounding box overlaps
// the rectangle.
func (e *Engine) ElementsInRectangle(l, r, b, t float64) ([]*mesh.Element, error) {
	s, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues("elements_in_rectangle").Inc()
	return s.index.ElementsInRectangle(l, r, b, t), nil
}

// ElementsInPolygon returns every element with a vertex inside the polygon.
func (e *Engine) ElementsInPolygon(poly []geom.Point) ([]*mesh.Element, error) {
	s, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues("elements_in_polygon").Inc()
	return s.index.ElementsInPolygon(poly), nil
}

// ElementsThroughDepth returns per-depth element lists for level-of-detail
// rendering, optionally pruned to a window rectangle.
func (e *Engine) ElementsThroughDepth(depth int, window *geom.Rect) ([][]*mesh.Element, error) {
	s, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues("elements_through_depth").Inc()
	if window != nil {
		return s.index.ElementsThroughDepthIn(depth, *window), nil
	}
	return s.index.ElementsThroughDepth(depth), nil
}

// SelectMode chooses whether a range query result is merged into or
// removed from a selection.
type SelectMode string

const (
	ModeSelect   SelectMode = "select"
	ModeDeselect SelectMode = "deselect"
)

// CreateSelection registers an empty selection and returns its id.
func (e *Engine) CreateSelection() string {
	id := uuid.New().String()
	e.mu.Lock()
	e.selections[id] = selection.NewSet()
	e.mu.Unlock()
	return id
}

// Selection looks up a selection by id.
func (e *Engine) Selection(id string) (*selection.Set, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	set, ok := e.selections[id]
	if !ok {
		return nil, ErrSelectionNotFound
	}
	return set, nil
}

// SelectionIDs lists the registered selection ids.
func (e *Engine) SelectionIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.selections))
	for id := range e.selections {
		out = append(out, id)
	}
	return out
}

// DropSelection removes a selection. Dropping an unknown id is a no-op.
func (e *Engine) DropSelection(id string) {
	e.mu.Lock()
	delete(e.selections, id)
	e.mu.Unlock()
}

// ApplyCircle merges or removes the circle query result on a selection and
// returns the resulting selection size.
func (e *Engine) ApplyCircle(id string, x, y, r float64, mode SelectMode) (int, error) {
	elems, err := e.ElementsInCircle(x, y, r)
	if err != nil {
		return 0, err
	}
	return e.apply(id, elems, mode)
}

// ApplyRectangle merges or removes the rectangle query result on a
// selection and returns the resulting selection size.
func (e *Engine) ApplyRectangle(id string, l, r, b, t float64, mode SelectMode) (int, error) {
	elems, err := e.ElementsInRectangle(l, r, b, t)
	if err != nil {
		return 0, err
	}
	return e.apply(id, elems, mode)
}

// ApplyPolygon merges or removes the polygon query result on a selection
// and returns the resulting selection size.
func (e *Engine) ApplyPolygon(id string, poly []geom.Point, mode SelectMode) (int, error) {
	elems, err := e.ElementsInPolygon(poly)
	if err != nil {
		return 0, err
	}
	return e.apply(id, elems, mode)
}

func (e *Engine) apply(id string, elems []*mesh.Element, mode SelectMode) (int, error) {
	set, err := e.Selection(id)
	if err != nil {
		return 0, err
	}
	if mode == ModeDeselect {
		set.Deselect(elems)
	} else {
		set.Select(elems)
	}
	return set.Len(), nil
}

// ExtractBoundary runs boundary extraction over the selection's element
// subset. Topology defects come back as boundary.ErrTopology matches.
func (e *Engine) ExtractBoundary(id string) (boundary.Boundaries, error) {
	s, err := e.snapshot()
	if err != nil {
		return boundary.Boundaries{}, err
	}
	set, err := e.Selection(id)
	if err != nil {
		return boundary.Boundaries{}, err
	}
	b, err := boundary.NewExtractor(s.mesh).FindAllBoundaries(set.Elements(s.mesh))
	if err != nil {
		metrics.BoundaryExtractionsTotal.WithLabelValues("topology_error").Inc()
		return boundary.Boundaries{}, err
	}
	metrics.BoundaryExtractionsTotal.WithLabelValues("ok").Inc()
	return b, nil
}

// ExportSubdomain extracts the selection's boundary and writes the carved
// sub-grid to w. Nothing is written when extraction fails.
func (e *Engine) ExportSubdomain(id, title string, w io.Writer) error {
	s, err := e.snapshot()
	if err != nil {
		return err
	}
	set, err := e.Selection(id)
	if err != nil {
		return err
	}
	elems := set.Elements(s.mesh)
	b, err := boundary.NewExtractor(s.mesh).FindAllBoundaries(elems)
	if err != nil {
		metrics.BoundaryExtractionsTotal.WithLabelValues("topology_error").Inc()
		return err
	}
	metrics.BoundaryExtractionsTotal.WithLabelValues("ok").Inc()
	return gridio.WriteSubdomain(w, gridio.Subdomain{
		Title:    title,
		Mesh:     s.mesh,
		Elements: elems,
		Bounds:   b,
	})
}
