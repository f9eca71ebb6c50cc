package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initParseMetrics() {
	r.ParsesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lvs_netlist_parses_total",
			Help: "Total number of netlist files read",
		},
		[]string{"status"},
	)

	r.ParseDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lvs_netlist_parse_duration_seconds",
			Help:    "Netlist read duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"status"},
	)

	r.ParsedCells = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lvs_netlist_cells",
			Help:    "Number of cells defined per netlist",
			Buckets: []float64{1, 10, 100, 1000, 10000},
		},
		[]string{"status"},
	)
}
