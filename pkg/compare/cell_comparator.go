package compare

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/dd0wney/cluso-lvs/pkg/logging"
	"github.com/dd0wney/cluso-lvs/pkg/netlist"
)

// Result is the outcome of a comparison
type Result int

const (
	ResultFalse Result = iota
	ResultTrue
)

// String returns the string representation of a result
func (r Result) String() string {
	if r == ResultTrue {
		return "true"
	}
	return "false"
}

// Tiers name the stage that decided a comparison
const (
	TierInitial    = "initial"
	TierRefine     = "refine"
	TierProperty   = "property"
	TierPin        = "pin"
	TierForce      = "force"
	TierProperties = "verify-properties"
)

// iterateFalse is returned by refinement when a bucket is unbalanced
const iterateFalse = -1

// Stats describes the work done by one comparison
type Stats struct {
	Iterations     int
	Refinements    int
	PropertySplits int
	ForcedSplits   int
	Tier           string
	Duration       time.Duration
}

// CellComparator decides whether two cells are isomorphic. It owns all of
// its state and must be used from one goroutine.
type CellComparator struct {
	c1, c2 *netlist.Cell
	opts   Options
	log    logging.Logger
	rng    *rand.Rand

	g      *graph
	tables bucketTables

	ambiguousDevices []int
	ambiguousWires   []int

	stats  Stats
	result Result
	done   bool
}

// NewCellComparator builds the unified graph of c1 and c2. Elements of c1
// are tagged First and elements of c2 Second, whatever their netlists.
func NewCellComparator(c1, c2 *netlist.Cell, opts Options) *CellComparator {
	opts = opts.withDefaults()
	return &CellComparator{
		c1:   c1,
		c2:   c2,
		opts: opts,
		log: opts.Logger.With(
			logging.Component("compare"),
			logging.CellPair(c1.Name, c2.Name)),
		rng: newColorSource(opts.Seed, c1.Name, c2.Name),
		g:   buildGraph(c1, c2),
	}
}

// Compare runs the comparison. Calling it again returns the first result.
func (c *CellComparator) Compare() Result {
	if c.done {
		return c.result
	}
	start := time.Now()

	res, tier := c.compare()
	if res == ResultTrue && c.opts.VerifyProperties && !c.verifyProperties() {
		res, tier = ResultFalse, TierProperties
	}

	c.done = true
	c.result = res
	c.stats.Tier = tier
	c.stats.Duration = time.Since(start)

	c.opts.Metrics.RecordCellCompare(res.String(), tier, c.stats.Duration, c.stats.Iterations)
	c.opts.Metrics.RecordCellGraph(len(c.g.devices)+len(c.g.wires), c.stats.ForcedSplits)
	c.log.Info("cell comparison finished",
		logging.String("result", res.String()),
		logging.Tier(tier),
		logging.Int("iterations", c.stats.Iterations),
		logging.Int("forced_splits", c.stats.ForcedSplits),
		logging.Latency(c.stats.Duration))
	return res
}

// Stats returns counters for the last Compare call
func (c *CellComparator) Stats() Stats {
	return c.stats
}

func (c *CellComparator) compare() (Result, string) {
	if c.assignInitialBuckets() == iterateFalse {
		return ResultFalse, TierInitial
	}
	switch n := c.weisfeilerLehman(); {
	case n == iterateFalse:
		return ResultFalse, TierRefine
	case n == 0:
		return ResultTrue, TierRefine
	default:
		c.log.Debug("automorphisms remain after refinement", logging.Ambiguous(n))
	}
	return c.resolveAutomorphism()
}

func (c *CellComparator) assignInitialBuckets() int {
	c.g.setInitialColors()
	c.assignBuckets()
	return c.checkBuckets(0)
}

func (c *CellComparator) assignBuckets() {
	gen := c.tables.next()
	gen.devices.assign(c.g.devices)
	gen.wires.assign(c.g.wires)
}

// weisfeilerLehman refines colors until a bucket becomes unbalanced or the
// number of device and wire buckets stops changing. It returns iterateFalse
// or the number of ambiguous buckets at the fixed point.
func (c *CellComparator) weisfeilerLehman() int {
	c.stats.Refinements++
	for step := 1; ; step++ {
		c.stats.Iterations++
		c.g.refine()
		c.assignBuckets()

		n := c.checkBuckets(step)
		if n == iterateFalse {
			return n
		}
		cur, prev := c.tables.latest(), c.tables.previous()
		if len(cur.devices.buckets) == len(prev.devices.buckets) &&
			len(cur.wires.buckets) == len(prev.wires.buckets) {
			return n
		}
	}
}

// checkBuckets validates the latest generation and records ambiguous
// buckets. With bucket dumps enabled every bucket is logged even after an
// unbalanced one is found.
func (c *CellComparator) checkBuckets(step int) int {
	gen := c.tables.latest()
	c.ambiguousDevices = c.ambiguousDevices[:0]
	c.ambiguousWires = c.ambiguousWires[:0]

	dump := c.opts.DumpBuckets && logging.Enabled(c.log, logging.DebugLevel)
	failed := false

	scan := func(kind string, p *partition, elems []element, ambiguous *[]int) {
		for i := range p.buckets {
			b := &p.buckets[i]
			if dump {
				c.dumpBucket(step, kind, b, elems)
			}
			if !b.balanced() {
				failed = true
				if !dump {
					return
				}
				continue
			}
			if b.ambiguous() {
				*ambiguous = append(*ambiguous, i)
			}
		}
	}

	scan("device", &gen.devices, c.g.devices, &c.ambiguousDevices)
	if failed && !dump {
		return iterateFalse
	}
	scan("wire", &gen.wires, c.g.wires, &c.ambiguousWires)
	if failed {
		return iterateFalse
	}
	return len(c.ambiguousDevices) + len(c.ambiguousWires)
}

func (c *CellComparator) dumpBucket(step int, kind string, b *bucket, elems []element) {
	names := make([]string, 0, len(b.members))
	for _, m := range b.members {
		el := &elems[m]
		names = append(names, el.name+"("+el.side.String()+")")
	}
	c.log.Debug("bucket",
		logging.Iteration(step),
		logging.String("kind", kind),
		logging.Uint64("old", uint64(b.key.old)),
		logging.Uint64("new", uint64(b.key.new)),
		logging.String("members", strings.Join(names, " ")))
}

// verifyProperties checks every matched device pair against the property
// tolerance. Only meaningful after a TRUE result, when each device bucket
// holds one element per side.
func (c *CellComparator) verifyProperties() bool {
	gen := c.tables.latest()
	for i := range gen.devices.buckets {
		b := &gen.devices.buckets[i]
		if len(b.members) != 2 {
			continue
		}
		d1 := c.g.devices[b.members[0]].device
		d2 := c.g.devices[b.members[1]].device
		if !d1.PropertiesEqual(d2, c.opts.Tolerance) {
			c.log.Debug("matched devices differ in properties",
				logging.String("first", d1.Name), logging.String("second", d2.Name))
			return false
		}
	}
	return true
}

// Label returns the structural label of one side: the wrapping sum of
// old*new over its elements. Both sides carry equal labels after a TRUE
// result.
func (c *CellComparator) Label(side netlist.Tag) uint64 {
	var sum Color
	for i := range c.g.devices {
		if el := &c.g.devices[i]; el.side == side {
			sum += el.old * el.new
		}
	}
	for i := range c.g.wires {
		if el := &c.g.wires[i]; el.side == side {
			sum += el.old * el.new
		}
	}
	return uint64(sum)
}

// WireLabel returns old*new of a wire element. The second result is false
// when the wire took no part in the comparison.
func (c *CellComparator) WireLabel(side netlist.Tag, id netlist.WireID) (uint64, bool) {
	wi, ok := c.g.wireIndex[side][id]
	if !ok {
		return 0, false
	}
	el := &c.g.wires[wi]
	return uint64(el.old * el.new), true
}
