package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the HTTP surface settings plus index tuning knobs that the
// server passes down to the engine.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string `yaml:"addr"`

	// AuthToken, when non-empty, requires "Authorization: Bearer <token>"
	// on every endpoint except /healthz and /metrics.
	AuthToken string `yaml:"auth_token"`

	// MeshPath optionally names a grid file to load at startup.
	MeshPath string `yaml:"mesh_path"`

	// IndexCapacity is the quadtree leaf bucket size (0 = default).
	IndexCapacity int `yaml:"index_capacity"`

	// IndexMaxDepth caps quadtree splitting (0 = default).
	IndexMaxDepth int `yaml:"index_max_depth"`
}

// DefaultConfig returns a working local configuration.
func DefaultConfig() Config {
	return Config{
		Addr: ":9270",
	}
}

// LoadConfig reads the YAML configuration file using strict parsing.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open server config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in server config: %w", err)
	}

	return cfg, nil
}
