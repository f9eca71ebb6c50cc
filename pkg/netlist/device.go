package netlist

import "math"

// Connection is one terminal of a device
type Connection struct {
	Wire WireID
	Pin  PinMagic
}

// MosfetProps carries the numeric properties of a transistor
type MosfetProps struct {
	W float64
	L float64
}

// QuoteRef is the payload of an instance reference. Pending holds the parent
// wires bound to each callee port, in callee port order.
type QuoteRef struct {
	Callee  CellID
	Pending []WireID
}

// Device is a circuit element inside a cell. Exactly one of Mosfet or Quote
// is set, selected by Kind.
type Device struct {
	ID          DeviceID
	Name        string
	Kind        Kind
	Model       string
	Connections []Connection

	Mosfet *MosfetProps
	Quote  *QuoteRef
}

// Degree returns the number of connections
func (d *Device) Degree() int {
	return len(d.Connections)
}

// IsQuote reports whether the device is an unresolved instance reference
func (d *Device) IsQuote() bool {
	return d.Kind == KindQuote && d.Quote != nil
}

// PropertiesEqual compares kind-specific properties within tolerance.
// A transistor only equals another transistor whose W and L each differ by
// at most tolerance. Devices without numeric properties are always equal.
func (d *Device) PropertiesEqual(other *Device, tolerance float64) bool {
	switch d.Kind {
	case KindMosfet:
		if other.Kind != KindMosfet || d.Mosfet == nil || other.Mosfet == nil {
			return false
		}
		return withinTolerance(d.Mosfet.W, other.Mosfet.W, tolerance) &&
			withinTolerance(d.Mosfet.L, other.Mosfet.L, tolerance)
	default:
		return true
	}
}

func withinTolerance(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// clonePayload copies the kind payload without connections
func (d *Device) clonePayload(dst *Device) {
	dst.Kind = d.Kind
	dst.Model = d.Model
	if d.Mosfet != nil {
		props := *d.Mosfet
		dst.Mosfet = &props
	}
	if d.Quote != nil {
		dst.Quote = &QuoteRef{
			Callee:  d.Quote.Callee,
			Pending: append([]WireID(nil), d.Quote.Pending...),
		}
	}
}
