// Package metrics defines the Prometheus instruments exported by meshdex.
// promauto registers everything against the default registry, so importing
// the package is all the wiring a surface needs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP traffic, labeled by method, path, and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshdex_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meshdex_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Index construction time. Rebuilds happen on every mesh load, so this
	// is the number to watch when grids grow.
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meshdex_index_build_duration_seconds",
			Help:    "Time spent building the spatial index",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	// Size of the currently loaded snapshot.
	MeshNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meshdex_mesh_nodes",
		Help: "Number of nodes in the loaded mesh",
	})
	MeshElements = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meshdex_mesh_elements",
		Help: "Number of elements in the loaded mesh",
	})

	// Spatial queries served, labeled by query kind.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshdex_queries_total",
			Help: "Total number of spatial queries served",
		},
		[]string{"kind"},
	)

	// Boundary extractions, labeled by outcome (ok / topology_error).
	BoundaryExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meshdex_boundary_extractions_total",
			Help: "Total number of boundary extraction runs",
		},
		[]string{"outcome"},
	)
)
