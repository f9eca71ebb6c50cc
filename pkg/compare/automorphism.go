package compare

import "github.com/dd0wney/cluso-lvs/pkg/logging"

// resolveAutomorphism escalates through property, pin and forced splits,
// refining after each, until the partition is discrete or unbalanced.
func (c *CellComparator) resolveAutomorphism() (Result, string) {
	c.splitByProperty()
	n := c.weisfeilerLehman()
	if r, ok := settled(n); ok {
		return r, TierProperty
	}
	c.log.Debug("automorphisms remain after property split", logging.Ambiguous(n))

	c.splitByPin()
	n = c.weisfeilerLehman()
	if r, ok := settled(n); ok {
		return r, TierPin
	}

	// every forced split shrinks an ambiguous bucket, so more splits than
	// elements means the refinement is not converging
	limit := len(c.g.devices) + len(c.g.wires) + 1
	for n > 0 {
		if c.stats.ForcedSplits >= limit {
			c.log.Error("forced split limit reached",
				logging.Int("forced_splits", c.stats.ForcedSplits),
				logging.Ambiguous(n))
			return ResultFalse, TierForce
		}
		c.forceSplit()
		n = c.weisfeilerLehman()
	}
	if n == 0 {
		return ResultTrue, TierForce
	}
	return ResultFalse, TierForce
}

func settled(n int) (Result, bool) {
	switch {
	case n == iterateFalse:
		return ResultFalse, true
	case n == 0:
		return ResultTrue, true
	default:
		return ResultFalse, false
	}
}

// splitByProperty gives every group of property-equal devices inside an
// ambiguous bucket a fresh color. Each group is trimmed back to equal
// counts per side so the split never unbalances a bucket by itself.
func (c *CellComparator) splitByProperty() {
	gen := c.tables.latest()
	for _, bi := range c.ambiguousDevices {
		b := &gen.devices.buckets[bi]
		origin := b.key.new
		c.opts.Metrics.RecordAmbiguousBucket(TierProperty, len(b.members))

		for i, m1 := range b.members {
			e1 := &c.g.devices[m1]
			if e1.new != origin {
				continue
			}
			reset := Color(c.rng.Uint64())
			e1.new = reset
			same, other := 1, 0

			for _, m2 := range b.members[i+1:] {
				e2 := &c.g.devices[m2]
				if e2.new != origin || !e1.device.PropertiesEqual(e2.device, c.opts.Tolerance) {
					continue
				}
				e2.new = reset
				if e2.side == e1.side {
					same++
				} else {
					other++
				}
			}

			for _, m := range b.members {
				if same == other {
					break
				}
				el := &c.g.devices[m]
				if el.new != reset {
					continue
				}
				if other > same && el.side != e1.side {
					el.new = origin
					other--
				} else if same > other && el.side == e1.side {
					el.new = origin
					same--
				}
			}
		}
	}
	c.stats.PropertySplits++
	c.opts.Metrics.RecordAutomorphismSplit(TierProperty)
	c.assignBuckets()
}

// splitByPin only re-buckets. It is the hook for pin-aware disambiguation.
func (c *CellComparator) splitByPin() {
	c.opts.Metrics.RecordAutomorphismSplit(TierPin)
	c.assignBuckets()
}

// forceSplit picks the most privileged ambiguous bucket across devices and
// wires and gives the first member of each side one fresh color.
func (c *CellComparator) forceSplit() {
	gen := c.tables.latest()

	device := privileged(&gen.devices, c.ambiguousDevices)
	wire := privileged(&gen.wires, c.ambiguousWires)

	elems := c.g.devices
	target, onWires := forceTarget(device, wire)
	if onWires {
		elems = c.g.wires
	}

	var picked [2]*element
	for _, m := range target.members {
		el := &elems[m]
		if picked[el.side] == nil {
			picked[el.side] = el
			if picked[0] != nil && picked[1] != nil {
				break
			}
		}
	}
	color := Color(c.rng.Uint64())
	picked[0].new = color
	picked[1].new = color

	c.stats.ForcedSplits++
	c.opts.Metrics.RecordAutomorphismSplit(TierForce)
	c.opts.Metrics.RecordAmbiguousBucket(TierForce, len(target.members))
	c.log.Debug("forced split",
		logging.String("first", picked[0].name),
		logging.String("second", picked[1].name),
		logging.Int("bucket_size", len(target.members)))
	c.assignBuckets()
}

// forceTarget chooses between the privileged device and wire buckets. The
// device bucket is split only when it strictly beats the wire bucket.
func forceTarget(device, wire *bucket) (*bucket, bool) {
	if device == nil || (wire != nil && !device.beats(wire)) {
		return wire, true
	}
	return device, false
}

// privileged returns the winning bucket among the ambiguous ones, keeping
// the first seen on ties
func privileged(p *partition, ambiguous []int) *bucket {
	var best *bucket
	for _, bi := range ambiguous {
		b := &p.buckets[bi]
		if best == nil || b.beats(best) {
			best = b
		}
	}
	return best
}
