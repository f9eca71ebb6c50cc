package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics of one run. A nil *Registry is valid and
// records nothing.
type Registry struct {
	// Parse Metrics
	ParsesTotal   *prometheus.CounterVec
	ParseDuration *prometheus.HistogramVec
	ParsedCells   *prometheus.HistogramVec

	// Cell Comparison Metrics
	CellComparesTotal     *prometheus.CounterVec
	CellCompareDuration   *prometheus.HistogramVec
	CellCompareIterations prometheus.Histogram
	AutomorphismSplits    *prometheus.CounterVec

	// Netlist Comparison Metrics
	NetlistComparesTotal   *prometheus.CounterVec
	NetlistCompareDuration *prometheus.HistogramVec
	QuotesFlattenedTotal   prometheus.Counter
	QueueDepth             prometheus.Gauge
	ActiveWorkers          prometheus.Gauge

	// Refinement Metrics
	CellGraphElements      prometheus.Histogram
	ForcedSplitsPerCell    prometheus.Histogram
	AmbiguousBucketMembers *prometheus.HistogramVec
	RunDuration            prometheus.Gauge
	HeapAllocBytes         prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		started:  time.Now(),
	}

	r.initParseMetrics()
	r.initCompareMetrics()
	r.initRefineMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}
