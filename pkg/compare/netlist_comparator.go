package compare

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dd0wney/cluso-lvs/pkg/logging"
	"github.com/dd0wney/cluso-lvs/pkg/netlist"
)

// cellElement is the orchestration state of one valid cell. outDegree and
// matched are touched by several workers; the cell itself is only mutated
// under mu until flattened is set.
type cellElement struct {
	cell *netlist.Cell
	side netlist.Tag

	outDegree atomic.Int32

	mu        sync.Mutex
	flattened bool

	target *cellElement

	// label is written before matched is published and read only after
	// matched is observed non-nil
	label   uint64
	matched atomic.Pointer[cellElement]
}

// NetlistComparator walks two netlists and compares their matched cells.
// Comparing consumes the netlists: instances are expanded in place.
type NetlistComparator struct {
	n1, n2 *netlist.Netlist
	opts   Options
	log    logging.Logger

	elems      [2][]*cellElement
	top1, top2 *cellElement
	rank       map[netlist.CellID]int

	pairsMu   sync.Mutex
	pairs     []PairResult
	topResult Result

	// concurrent dispatch state, guarded by mu
	mu    sync.Mutex
	cond  *sync.Cond
	queue []*cellElement
	done  bool
	err   error
}

// NewNetlistComparator tags n1 as First and n2 as Second and prepares the
// hierarchy of both. A cyclic hierarchy is rejected here, before any cell
// is compared.
func NewNetlistComparator(n1, n2 *netlist.Netlist, opts Options) (*NetlistComparator, error) {
	if n1 == nil || n2 == nil {
		return nil, ErrNilNetlist
	}
	if n1 == n2 {
		return nil, ErrSameNetlist
	}
	opts = opts.withDefaults()

	nc := &NetlistComparator{
		n1:   n1,
		n2:   n2,
		opts: opts,
		log: opts.Logger.With(
			logging.Component("lvs"),
			logging.RunID(opts.RunID)),
		rank: make(map[netlist.CellID]int),
	}
	nc.cond = sync.NewCond(&nc.mu)

	n1.SetTag(netlist.First)
	n2.SetTag(netlist.Second)
	for _, n := range []*netlist.Netlist{n1, n2} {
		if err := n.BuildHierarchy(); err != nil {
			return nil, err
		}
		nc.wrap(n)
	}
	nc.top1 = nc.element(netlist.First, n1.Top().ID)
	nc.top2 = nc.element(netlist.Second, n2.Top().ID)

	for i, c := range n1.TopologicalOrder() {
		nc.rank[c.ID] = i
	}
	return nc, nil
}

func (nc *NetlistComparator) wrap(n *netlist.Netlist) {
	side := n.Tag()
	elems := make([]*cellElement, len(n.Cells()))
	for _, c := range n.ValidCells() {
		e := &cellElement{cell: c, side: side}
		e.outDegree.Store(int32(c.OutDegree))
		elems[c.ID] = e
	}
	nc.elems[side] = elems
}

func (nc *NetlistComparator) element(side netlist.Tag, id netlist.CellID) *cellElement {
	return nc.elems[side][id]
}

// Compare runs the configured mode and reports whether the two tops are
// equivalent.
func (nc *NetlistComparator) Compare() (*Report, error) {
	start := time.Now()
	timer := logging.StartTimer(nc.log, "netlist comparison finished",
		logging.String("mode", nc.opts.Mode.String()),
		logging.Bool("concurrent", nc.opts.Concurrent))

	var err error
	switch {
	case nc.opts.Mode == ModeFlatten:
		err = nc.compareFlat()
	case nc.opts.Concurrent:
		nc.buildTargets()
		err = nc.walkConcurrent()
	default:
		nc.buildTargets()
		err = nc.walkSequential()
	}
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	report := nc.report(time.Since(start))
	timer.EndWithLevel(logging.InfoLevel, "netlist comparison finished",
		logging.Bool("equivalent", report.Equivalent),
		logging.Count(len(report.Pairs)))
	nc.opts.Metrics.RecordNetlistCompare(nc.opts.Mode.String(), report.Equivalent, report.Duration)
	return report, nil
}

// buildTargets pairs the tops with each other and every other valid cell
// of the first netlist with the same-named valid cell of the second.
func (nc *NetlistComparator) buildTargets() {
	nc.top1.target = nc.top2
	nc.top2.target = nc.top1

	for _, c1 := range nc.n1.ValidCells() {
		e1 := nc.element(netlist.First, c1.ID)
		if e1.target != nil {
			continue
		}
		c2 := nc.n2.FindCell(c1.Name)
		if c2 == nil || !nc.n2.IsValid(c2.ID) {
			continue
		}
		e2 := nc.element(netlist.Second, c2.ID)
		if e2.target != nil {
			continue
		}
		e1.target = e2
		e2.target = e1
		nc.log.Debug("target pair", logging.CellPair(c1.Name, c2.Name))
	}
}

// leaves returns the first netlist's cells without children, in BFS order
func (nc *NetlistComparator) leaves() []*cellElement {
	var out []*cellElement
	for _, c := range nc.n1.ValidCells() {
		if e := nc.element(netlist.First, c.ID); e.outDegree.Load() == 0 {
			out = append(out, e)
		}
	}
	return out
}

func (nc *NetlistComparator) compareFlat() error {
	if err := nc.atomize(nc.top1); err != nil {
		return err
	}
	if err := nc.atomize(nc.top2); err != nil {
		return err
	}
	nc.comparePair(nc.top1, nc.top2)
	return nil
}

func (nc *NetlistComparator) walkSequential() error {
	queue := nc.leaves()
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if err := nc.process(e); err != nil {
			return err
		}
		queue = append(queue, nc.release(e)...)
	}
	return nil
}

// process expands e and, if it has a target, expands and compares the pair
func (nc *NetlistComparator) process(e1 *cellElement) error {
	if err := nc.atomize(e1); err != nil {
		return err
	}
	e2 := e1.target
	if e2 == nil {
		nc.log.Debug("no target, cell stays unmatched", logging.Cell(e1.cell.Name))
		return nil
	}
	if err := nc.atomize(e2); err != nil {
		return err
	}
	nc.comparePair(e1, e2)
	return nil
}

// release decrements the pending child count of every parent of e and
// returns the parents that became eligible
func (nc *NetlistComparator) release(e *cellElement) []*cellElement {
	var ready []*cellElement
	for _, p := range e.cell.Parents {
		pe := nc.element(netlist.First, p)
		if pe.outDegree.Add(-1) == 0 {
			ready = append(ready, pe)
		}
	}
	return ready
}

func (nc *NetlistComparator) comparePair(e1, e2 *cellElement) {
	cmp := NewCellComparator(e1.cell, e2.cell, nc.cellOptions())
	res := cmp.Compare()
	stats := cmp.Stats()

	pr := PairResult{
		First:        e1.cell.Name,
		Second:       e2.cell.Name,
		Result:       res,
		Tier:         stats.Tier,
		Iterations:   stats.Iterations,
		ForcedSplits: stats.ForcedSplits,
		Duration:     stats.Duration,
	}
	if res == ResultTrue {
		nc.dealTrue(e1, e2, cmp)
		pr.Label = e1.label
	}

	nc.pairsMu.Lock()
	nc.pairs = append(nc.pairs, pr)
	if e1 == nc.top1 {
		nc.topResult = res
	}
	nc.pairsMu.Unlock()
}

func (nc *NetlistComparator) cellOptions() Options {
	opts := nc.opts
	opts.Logger = nc.log
	return opts
}

// dealTrue stores the labels of a matched pair and then publishes the
// match. Port labels come from the colors of the nets bound to the ports;
// a port without a net gets label zero.
func (nc *NetlistComparator) dealTrue(e1, e2 *cellElement, cmp *CellComparator) {
	for _, e := range []*cellElement{e1, e2} {
		side := netlist.First
		if e == e2 {
			side = netlist.Second
		}
		e.label = cmp.Label(side)
		for _, p := range e.cell.Ports() {
			p.Label = 0
			if p.Wire == netlist.NoWire {
				continue
			}
			if l, ok := cmp.WireLabel(side, p.Wire); ok {
				p.Label = l
			}
		}
	}
	e1.matched.Store(e2)
	e2.matched.Store(e1)
}

func (nc *NetlistComparator) report(d time.Duration) *Report {
	pairs := slices.Clone(nc.pairs)
	slices.SortStableFunc(pairs, func(a, b PairResult) int {
		return nc.rankOf(a.First) - nc.rankOf(b.First)
	})
	return &Report{
		RunID:      nc.opts.RunID,
		Mode:       nc.opts.Mode,
		Concurrent: nc.opts.Concurrent && nc.opts.Mode == ModeHierarchical,
		First:      nc.n1.Name,
		Second:     nc.n2.Name,
		Top1:       nc.top1.cell.Name,
		Top2:       nc.top2.cell.Name,
		Equivalent: nc.topResult == ResultTrue,
		Pairs:      pairs,
		Duration:   d,
	}
}

func (nc *NetlistComparator) rankOf(name string) int {
	if name == nc.top1.cell.Name {
		return len(nc.rank)
	}
	if c := nc.n1.FindCell(name); c != nil {
		if r, ok := nc.rank[c.ID]; ok {
			return r
		}
	}
	return len(nc.rank)
}
