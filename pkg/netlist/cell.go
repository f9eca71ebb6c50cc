package netlist

import (
	"fmt"
	"io"
	"sort"
)

// ChildEdge groups the instances of one callee inside a parent cell
type ChildEdge struct {
	Callee CellID
	Quotes []DeviceID
}

// Cell is a subcircuit definition. Devices and wires live in arenas indexed
// by their IDs; erased entries leave a nil slot and IDs are never reused.
type Cell struct {
	ID   CellID
	Name string

	netlist *Netlist

	devices     []*Device
	wires       []*Wire
	deviceIndex map[string]DeviceID
	wireIndex   map[string]WireID
	liveDevices int
	liveWires   int

	ports     []*Port
	portIndex map[string]int

	Children   []ChildEdge
	childIndex map[CellID]int
	Parents    []CellID
	InDegree   int
	OutDegree  int
}

func newCell(n *Netlist, id CellID, name string) *Cell {
	return &Cell{
		ID:          id,
		Name:        name,
		netlist:     n,
		deviceIndex: make(map[string]DeviceID),
		wireIndex:   make(map[string]WireID),
		portIndex:   make(map[string]int),
		childIndex:  make(map[CellID]int),
	}
}

// Netlist returns the owning netlist
func (c *Cell) Netlist() *Netlist {
	return c.netlist
}

// Tag returns the tag of the owning netlist
func (c *Cell) Tag() Tag {
	return c.netlist.Tag()
}

// Device returns a device by ID, or nil if it was erased
func (c *Cell) Device(id DeviceID) *Device {
	if id < 0 || int(id) >= len(c.devices) {
		return nil
	}
	return c.devices[id]
}

// Wire returns a wire by ID, or nil if it was erased
func (c *Cell) Wire(id WireID) *Wire {
	if id < 0 || int(id) >= len(c.wires) {
		return nil
	}
	return c.wires[id]
}

// FindDevice looks a device up by name
func (c *Cell) FindDevice(name string) *Device {
	id, ok := c.deviceIndex[c.netlist.key(name)]
	if !ok {
		return nil
	}
	return c.devices[id]
}

// FindWire looks a wire up by name
func (c *Cell) FindWire(name string) *Wire {
	id, ok := c.wireIndex[c.netlist.key(name)]
	if !ok {
		return nil
	}
	return c.wires[id]
}

// Devices returns the live devices in ID order
func (c *Cell) Devices() []*Device {
	out := make([]*Device, 0, c.liveDevices)
	for _, d := range c.devices {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

// Wires returns the live wires in ID order
func (c *Cell) Wires() []*Wire {
	out := make([]*Wire, 0, c.liveWires)
	for _, w := range c.wires {
		if w != nil {
			out = append(out, w)
		}
	}
	return out
}

// DeviceCount returns the number of live devices
func (c *Cell) DeviceCount() int {
	return c.liveDevices
}

// WireCount returns the number of live wires
func (c *Cell) WireCount() int {
	return c.liveWires
}

// Ports returns the boundary ports in declaration order
func (c *Cell) Ports() []*Port {
	return c.ports
}

// Port returns the port at index i
func (c *Cell) Port(i int) *Port {
	if i < 0 || i >= len(c.ports) {
		return nil
	}
	return c.ports[i]
}

// AddPort declares a boundary port. The port is bound to the wire of the
// same name once that wire is defined.
func (c *Cell) AddPort(name string) (*Port, error) {
	key := c.netlist.key(name)
	if _, exists := c.portIndex[key]; exists {
		return nil, NewError("AddPort").Port(name).Cause(ErrPortRedefined)
	}
	p := &Port{Name: name, Wire: NoWire}
	idx := len(c.ports)
	c.ports = append(c.ports, p)
	c.portIndex[key] = idx

	if id, ok := c.wireIndex[key]; ok {
		c.wires[id].PortIndex = idx
		p.Wire = id
	}
	return p, nil
}

// DefineWire returns the wire with the given name, creating it if needed.
// A new wire whose name matches a port is bound to that port.
func (c *Cell) DefineWire(name string) *Wire {
	key := c.netlist.key(name)
	if id, ok := c.wireIndex[key]; ok {
		return c.wires[id]
	}
	w := &Wire{
		ID:        WireID(len(c.wires)),
		Name:      name,
		PortIndex: NotPort,
	}
	if idx, ok := c.portIndex[key]; ok {
		w.PortIndex = idx
		c.ports[idx].Wire = w.ID
	}
	c.wires = append(c.wires, w)
	c.wireIndex[key] = w.ID
	c.liveWires++
	return w
}

// AddDevice stores d in the arena, assigning its ID. The name must be unique
// within the cell.
func (c *Cell) AddDevice(d *Device) (*Device, error) {
	key := c.netlist.key(d.Name)
	if _, exists := c.deviceIndex[key]; exists {
		return nil, NewError("AddDevice").Device(d.Name).Cause(ErrDeviceRedefined)
	}
	d.ID = DeviceID(len(c.devices))
	d.Connections = d.Connections[:0]
	c.devices = append(c.devices, d)
	c.deviceIndex[key] = d.ID
	c.liveDevices++
	return d, nil
}

// AddMosfet creates a transistor connected to the named d, g, s, b nets.
func (c *Cell) AddMosfet(name, model string, nets [4]string, pins [4]PinMagic, props MosfetProps) (*Device, error) {
	d, err := c.AddDevice(&Device{
		Name:   name,
		Kind:   KindMosfet,
		Model:  model,
		Mosfet: &props,
	})
	if err != nil {
		return nil, err
	}
	for i, net := range nets {
		c.Connect(d.ID, c.DefineWire(net).ID, pins[i])
	}
	return d, nil
}

// AddQuote creates an unresolved instance of callee. Pending lists the
// parent wires bound to each callee port in port order.
func (c *Cell) AddQuote(name string, callee CellID, pending []WireID) (*Device, error) {
	return c.AddDevice(&Device{
		Name:  name,
		Kind:  KindQuote,
		Quote: &QuoteRef{Callee: callee, Pending: pending},
	})
}

// Connect attaches a device terminal to a wire, updating both sides.
func (c *Cell) Connect(dev DeviceID, wire WireID, pin PinMagic) {
	d := c.devices[dev]
	w := c.wires[wire]
	d.Connections = append(d.Connections, Connection{Wire: wire, Pin: pin})
	w.Devices = append(w.Devices, Attachment{Device: dev, Pin: pin})
}

// CopyDevice deep copies src, which may belong to another cell, into c under
// a new name. Connections are not copied; the caller reconnects them.
func (c *Cell) CopyDevice(src *Device, name string) (*Device, error) {
	d := &Device{Name: name}
	src.clonePayload(d)
	return c.AddDevice(d)
}

// EraseDevice detaches a device from its wires and drops it from the arena.
func (c *Cell) EraseDevice(id DeviceID) {
	d := c.Device(id)
	if d == nil {
		return
	}
	for _, conn := range d.Connections {
		if w := c.Wire(conn.Wire); w != nil {
			w.detach(id)
		}
	}
	delete(c.deviceIndex, c.netlist.key(d.Name))
	c.devices[id] = nil
	c.liveDevices--
}

// EraseWire drops a wire from the arena. Devices still attached to it keep
// dangling connections, so callers only erase disconnected wires.
func (c *Cell) EraseWire(id WireID) {
	w := c.Wire(id)
	if w == nil {
		return
	}
	delete(c.wireIndex, c.netlist.key(w.Name))
	c.wires[id] = nil
	c.liveWires--
}

// PruneDisconnectedWires erases every wire with no device attached and
// returns how many were removed. Ports keep their binding and resolve to no
// wire afterwards.
func (c *Cell) PruneDisconnectedWires() int {
	removed := 0
	for _, w := range c.wires {
		if w != nil && len(w.Devices) == 0 {
			c.EraseWire(w.ID)
			removed++
		}
	}
	return removed
}

// Quotes returns the live instance references in ID order
func (c *Cell) Quotes() []*Device {
	var out []*Device
	for _, d := range c.devices {
		if d != nil && d.IsQuote() {
			out = append(out, d)
		}
	}
	return out
}

func (c *Cell) resetHierarchy() {
	c.Children = nil
	c.childIndex = make(map[CellID]int)
	c.Parents = nil
	c.InDegree = 0
	c.OutDegree = 0
}

// Dump writes a human readable listing of the cell
func (c *Cell) Dump(w io.Writer) {
	fmt.Fprintf(w, "cell %s (%s)\n", c.Name, c.netlist.Tag())
	for _, p := range c.ports {
		wireName := "-"
		if wire := c.Wire(p.Wire); wire != nil {
			wireName = wire.Name
		}
		fmt.Fprintf(w, "  port %s -> %s label=%d\n", p.Name, wireName, p.Label)
	}
	for _, d := range c.Devices() {
		fmt.Fprintf(w, "  device %s %s model=%q", d.Name, d.Kind, d.Model)
		if d.Mosfet != nil {
			fmt.Fprintf(w, " w=%g l=%g", d.Mosfet.W, d.Mosfet.L)
		}
		for _, conn := range d.Connections {
			if wire := c.Wire(conn.Wire); wire != nil {
				fmt.Fprintf(w, " %s:%s", PinName(conn.Pin), wire.Name)
			}
		}
		fmt.Fprintln(w)
	}
	wires := c.Wires()
	sort.Slice(wires, func(i, j int) bool { return wires[i].Name < wires[j].Name })
	for _, wire := range wires {
		fmt.Fprintf(w, "  wire %s degree=%d port=%v\n", wire.Name, wire.Degree(), wire.IsPort())
	}
}
