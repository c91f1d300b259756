package quadtree

import "github.com/sanonone/meshdex/pkg/core/geom"

// Config controls the shape of the tree.
type Config struct {
	// Capacity is the maximum number of nodes a leaf holds before it is
	// converted into a branch. It trades leaf linear-scan cost against
	// tree depth; tens of items per leaf is the sweet spot for meshes in
	// the hundred-thousand-node range.
	Capacity int `json:"capacity" yaml:"capacity"`

	// MaxDepth caps recursive splitting. A leaf at MaxDepth accepts nodes
	// beyond Capacity rather than splitting further, which guarantees
	// termination when coincident or near-coincident points cluster.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// Bounds is the global bounding rectangle of the tree. When zero it is
	// computed from the mesh. Every node position must fall inside it;
	// building with a node outside Bounds is a precondition violation.
	Bounds geom.Rect `json:"bounds" yaml:"bounds"`
}

// DefaultConfig returns the tuning used when the caller does not care.
func DefaultConfig() Config {
	return Config{
		Capacity: 50,
		MaxDepth: 32,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Capacity <= 0 {
		c.Capacity = d.Capacity
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	return c
}
