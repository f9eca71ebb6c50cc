package compare

import "github.com/dd0wney/cluso-lvs/pkg/netlist"

// edge links a device element to a wire element or back, annotated with
// the pin magic of the connection
type edge struct {
	to  int32
	pin netlist.PinMagic
}

// element is a device or wire of either cell wrapped for one comparison
type element struct {
	name   string
	side   netlist.Tag
	degree int
	old    Color
	new    Color
	adj    []edge

	device *netlist.Device
	wire   *netlist.Wire
}

// graph is the unified device/wire graph of two cells. Devices and wires
// live in separate slices; edges index into the opposite slice.
type graph struct {
	devices []element
	wires   []element

	// wireIndex maps a wire of each side to its element
	wireIndex [2]map[netlist.WireID]int32
}

func buildGraph(c1, c2 *netlist.Cell) *graph {
	g := &graph{
		devices: make([]element, 0, c1.DeviceCount()+c2.DeviceCount()),
		wires:   make([]element, 0, c1.WireCount()+c2.WireCount()),
	}
	for side, c := range []*netlist.Cell{c1, c2} {
		tag := netlist.Tag(side)
		idx := make(map[netlist.WireID]int32, c.WireCount())
		for _, w := range c.Wires() {
			idx[w.ID] = int32(len(g.wires))
			g.wires = append(g.wires, element{
				name:   w.Name,
				side:   tag,
				degree: w.Degree(),
				wire:   w,
			})
		}
		g.wireIndex[side] = idx

		for _, d := range c.Devices() {
			di := int32(len(g.devices))
			el := element{
				name:   d.Name,
				side:   tag,
				degree: d.Degree(),
				device: d,
				adj:    make([]edge, 0, d.Degree()),
			}
			for _, conn := range d.Connections {
				wi, ok := idx[conn.Wire]
				if !ok {
					continue
				}
				el.adj = append(el.adj, edge{to: wi, pin: conn.Pin})
				g.wires[wi].adj = append(g.wires[wi].adj, edge{to: di, pin: conn.Pin})
			}
			g.devices = append(g.devices, el)
		}
	}
	return g
}

func (g *graph) setInitialColors() {
	for i := range g.devices {
		g.devices[i].old = 0
		g.devices[i].new = initialDeviceColor(g.devices[i].device)
	}
	for i := range g.wires {
		g.wires[i].old = 0
		g.wires[i].new = initialWireColor(g.wires[i].wire)
	}
}

// refine runs one Weisfeiler-Lehman step: promote new colors to old, then
// add every neighbor's old color weighted by pin magic. The sum is
// commutative so adjacency order does not matter.
func (g *graph) refine() {
	for i := range g.devices {
		g.devices[i].old = g.devices[i].new
	}
	for i := range g.wires {
		g.wires[i].old = g.wires[i].new
	}
	for i := range g.devices {
		el := &g.devices[i]
		c := el.old
		for _, e := range el.adj {
			c += g.wires[e.to].old * Color(e.pin)
		}
		el.new = c
	}
	for i := range g.wires {
		el := &g.wires[i]
		c := el.old
		for _, e := range el.adj {
			c += g.devices[e.to].old * Color(e.pin)
		}
		el.new = c
	}
}
