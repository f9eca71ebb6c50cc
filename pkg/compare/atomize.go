package compare

import (
	"strconv"

	"github.com/dd0wney/cluso-lvs/pkg/logging"
	"github.com/dd0wney/cluso-lvs/pkg/netlist"
)

// atomize rewrites every instance inside e so the cell holds only
// primitive and opaque devices. Instances of empty cells are dropped,
// instances of unmatched cells are flattened, and instances of matched
// cells become opaque devices. Locks are taken parent before child, which
// cannot deadlock on an acyclic hierarchy.
func (nc *NetlistComparator) atomize(e *cellElement) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.flattened {
		return nil
	}

	parent := e.cell
	flattened := 0
	for _, edge := range parent.Children {
		son := nc.element(e.side, edge.Callee)
		if err := nc.atomize(son); err != nil {
			return err
		}

		switch {
		case son.cell.DeviceCount() == 0:
			for _, q := range edge.Quotes {
				parent.EraseDevice(q)
			}
		case son.matched.Load() == nil:
			for _, q := range edge.Quotes {
				if err := flattenQuote(parent, q, son.cell); err != nil {
					return err
				}
				flattened++
			}
		default:
			for _, q := range edge.Quotes {
				quoteToDevice(parent, q, son)
			}
		}
	}
	pruned := parent.PruneDisconnectedWires()
	e.flattened = true

	if flattened > 0 {
		nc.opts.Metrics.RecordFlatten(flattened)
	}
	nc.log.Debug("cell atomized",
		logging.Netlist(parent.Netlist().Name),
		logging.Cell(parent.Name),
		logging.Int("flattened", flattened),
		logging.Int("pruned_wires", pruned),
		logging.Int("devices", parent.DeviceCount()))
	return nil
}

// flattenQuote inlines one instance of son into parent. Copies are named
// "instance/son:name"; son's port nets map onto the instance's pending
// nets.
func flattenQuote(parent *netlist.Cell, qid netlist.DeviceID, son *netlist.Cell) error {
	q := parent.Device(qid)
	if q == nil || q.Quote == nil {
		return nil
	}
	prefix := q.Name + "/" + son.Name + ":"
	pending := q.Quote.Pending

	local := make(map[netlist.WireID]netlist.WireID, son.WireCount())
	for _, w := range son.Wires() {
		if w.IsPort() {
			if w.PortIndex < len(pending) {
				local[w.ID] = pending[w.PortIndex]
			}
			continue
		}
		local[w.ID] = parent.DefineWire(prefix + w.Name).ID
	}

	for _, d := range son.Devices() {
		copied, err := parent.CopyDevice(d, prefix+d.Name)
		if err != nil {
			return netlist.NewError("Flatten").Cell(parent.Name).Device(prefix + d.Name).Cause(err)
		}
		for _, conn := range d.Connections {
			if w, ok := local[conn.Wire]; ok {
				parent.Connect(copied.ID, w, conn.Pin)
			}
		}
	}
	parent.EraseDevice(qid)
	return nil
}

// quoteToDevice turns an instance of a matched cell into an opaque device
// whose model is the cell label and whose pins are the port labels.
func quoteToDevice(parent *netlist.Cell, qid netlist.DeviceID, son *cellElement) {
	q := parent.Device(qid)
	if q == nil || q.Quote == nil {
		return
	}
	pending := q.Quote.Pending
	q.Quote = nil
	q.Model = strconv.FormatUint(son.label, 10)
	for i, w := range pending {
		var pin netlist.PinMagic
		if p := son.cell.Port(i); p != nil {
			pin = netlist.PinMagic(p.Label)
		}
		parent.Connect(q.ID, w, pin)
	}
}
