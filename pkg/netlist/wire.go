package netlist

// Attachment is a back reference from a wire to a device terminal
type Attachment struct {
	Device DeviceID
	Pin    PinMagic
}

// Wire is a net inside a cell
type Wire struct {
	ID        WireID
	Name      string
	PortIndex int
	Devices   []Attachment
}

// IsPort reports whether the wire is bound to a boundary port
func (w *Wire) IsPort() bool {
	return w.PortIndex != NotPort
}

// Degree returns the number of device terminals on the wire
func (w *Wire) Degree() int {
	return len(w.Devices)
}

func (w *Wire) detach(dev DeviceID) {
	kept := w.Devices[:0]
	for _, a := range w.Devices {
		if a.Device != dev {
			kept = append(kept, a)
		}
	}
	w.Devices = kept
}

// Port is a boundary terminal of a cell. Label is set once the owning cell
// has been matched against its counterpart.
type Port struct {
	Name  string
	Wire  WireID
	Label uint64
}
