package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCompareMetrics() {
	r.CellComparesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lvs_cell_compares_total",
			Help: "Total number of cell pair comparisons by result and deciding tier",
		},
		[]string{"result", "tier"},
	)

	r.CellCompareDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lvs_cell_compare_duration_seconds",
			Help:    "Cell pair comparison duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
		},
		[]string{"result"},
	)

	r.CellCompareIterations = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lvs_cell_compare_iterations",
			Help:    "Refinement iterations per cell pair comparison",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	r.AutomorphismSplits = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lvs_automorphism_splits_total",
			Help: "Total number of automorphism splits by tier",
		},
		[]string{"tier"},
	)

	r.NetlistComparesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lvs_netlist_compares_total",
			Help: "Total number of netlist comparisons by mode and verdict",
		},
		[]string{"mode", "equivalent"},
	)

	r.NetlistCompareDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lvs_netlist_compare_duration_seconds",
			Help:    "Netlist comparison duration in seconds",
			Buckets: []float64{0.01, 0.1, 1.0, 10.0, 60.0, 600.0},
		},
		[]string{"mode"},
	)

	r.QuotesFlattenedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lvs_instances_flattened_total",
			Help: "Total number of instances inlined into their parent cell",
		},
	)

	r.QueueDepth = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lvs_eligible_queue_depth",
			Help: "Cells waiting for dispatch in concurrent mode",
		},
	)

	r.ActiveWorkers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lvs_active_workers",
			Help: "Workers currently comparing a cell pair",
		},
	)
}
