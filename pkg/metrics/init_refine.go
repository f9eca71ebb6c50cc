package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// initRefineMetrics registers the shape of the colour refinement: how big
// the compared graphs are and how much symmetry had to be broken
func (r *Registry) initRefineMetrics() {
	factory := promauto.With(r.registry)

	r.CellGraphElements = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lvs_cell_graph_elements",
			Help:    "Devices plus wires of both cells in one comparison",
			Buckets: prometheus.ExponentialBuckets(4, 4, 9),
		},
	)

	r.ForcedSplitsPerCell = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lvs_cell_forced_splits",
			Help:    "Forced splits needed by one cell comparison",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 64, 256},
		},
	)

	r.AmbiguousBucketMembers = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lvs_ambiguous_bucket_members",
			Help:    "Members of an ambiguous bucket when a split tier acts on it",
			Buckets: prometheus.ExponentialBuckets(2, 2, 10),
		},
		[]string{"tier"},
	)

	r.RunDuration = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "lvs_run_duration_seconds",
			Help: "Wall time from registry creation to the last sample",
		},
	)

	r.HeapAllocBytes = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "lvs_heap_alloc_bytes",
			Help: "Heap bytes held by the netlists and comparators at the last sample",
		},
	)
}
