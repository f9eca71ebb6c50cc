// Package metrics exposes Prometheus metrics for netlist reading and
// comparison. Every recording method accepts a nil receiver.
package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordParse records one netlist read
func (r *Registry) RecordParse(status string, duration time.Duration, cells int) {
	if r == nil {
		return
	}
	r.ParsesTotal.WithLabelValues(status).Inc()
	r.ParseDuration.WithLabelValues(status).Observe(duration.Seconds())
	r.ParsedCells.WithLabelValues(status).Observe(float64(cells))
}

// RecordCellCompare records one cell pair comparison
func (r *Registry) RecordCellCompare(result, tier string, duration time.Duration, iterations int) {
	if r == nil {
		return
	}
	r.CellComparesTotal.WithLabelValues(result, tier).Inc()
	r.CellCompareDuration.WithLabelValues(result).Observe(duration.Seconds())
	r.CellCompareIterations.Observe(float64(iterations))
}

// RecordAutomorphismSplit counts one split of the given tier
func (r *Registry) RecordAutomorphismSplit(tier string) {
	if r == nil {
		return
	}
	r.AutomorphismSplits.WithLabelValues(tier).Inc()
}

// RecordNetlistCompare records a finished netlist comparison
func (r *Registry) RecordNetlistCompare(mode string, equivalent bool, duration time.Duration) {
	if r == nil {
		return
	}
	r.NetlistComparesTotal.WithLabelValues(mode, strconv.FormatBool(equivalent)).Inc()
	r.NetlistCompareDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordFlatten counts inlined instances
func (r *Registry) RecordFlatten(n int) {
	if r == nil {
		return
	}
	r.QuotesFlattenedTotal.Add(float64(n))
}

// SetQueueDepth sets the number of cells waiting for dispatch
func (r *Registry) SetQueueDepth(n int) {
	if r == nil {
		return
	}
	r.QueueDepth.Set(float64(n))
}

// SetActiveWorkers sets the number of busy workers
func (r *Registry) SetActiveWorkers(n int) {
	if r == nil {
		return
	}
	r.ActiveWorkers.Set(float64(n))
}

// RecordCellGraph records the size of one compared cell pair and the
// forced splits it needed
func (r *Registry) RecordCellGraph(elements, forcedSplits int) {
	if r == nil {
		return
	}
	r.CellGraphElements.Observe(float64(elements))
	r.ForcedSplitsPerCell.Observe(float64(forcedSplits))
}

// RecordAmbiguousBucket records the size of a bucket a split tier acted on
func (r *Registry) RecordAmbiguousBucket(tier string, members int) {
	if r == nil {
		return
	}
	r.AmbiguousBucketMembers.WithLabelValues(tier).Observe(float64(members))
}

// UpdateRunMetrics samples the run duration and heap size
func (r *Registry) UpdateRunMetrics() {
	if r == nil {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.RunDuration.Set(time.Since(r.started).Seconds())
	r.HeapAllocBytes.Set(float64(m.HeapAlloc))
}

// WriteTextfile samples the run metrics and writes the registry in the
// Prometheus text format, as consumed by the node exporter textfile
// collector.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	r.UpdateRunMetrics()
	return prometheus.WriteToTextfile(path, r.registry)
}
