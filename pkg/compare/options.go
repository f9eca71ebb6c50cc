package compare

import (
	"runtime"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-lvs/pkg/logging"
	"github.com/dd0wney/cluso-lvs/pkg/metrics"
)

// Mode selects how a netlist pair is walked
type Mode int

const (
	// ModeHierarchical compares matched cells bottom-up
	ModeHierarchical Mode = iota
	// ModeFlatten expands both tops fully and compares once
	ModeFlatten
)

// String returns the string representation of a mode
func (m Mode) String() string {
	switch m {
	case ModeHierarchical:
		return "hierarchical"
	case ModeFlatten:
		return "flatten"
	default:
		return "unknown"
	}
}

// Options configures comparators. The value is copied into each comparator
// and never mutated afterwards.
type Options struct {
	Mode       Mode
	Concurrent bool
	// Workers bounds concurrent cell comparisons; 0 means runtime.NumCPU()
	Workers int
	// Tolerance is the largest absolute property difference treated as equal
	Tolerance float64
	// Seed drives tie-break colors
	Seed uint64
	// VerifyProperties rejects a structural match whose paired devices
	// differ in properties
	VerifyProperties bool
	// DumpBuckets logs every bucket at debug level on each iteration
	DumpBuckets bool
	RunID       string

	Logger  logging.Logger
	Metrics *metrics.Registry
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logging.NewNopLogger()
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	return o
}
