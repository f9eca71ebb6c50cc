package netlist

import "strconv"

// Tag identifies which side of a comparison a netlist sits on.
type Tag uint8

const (
	// First is the reference side (usually the layout netlist)
	First Tag = iota
	// Second is the side compared against First (usually the schematic)
	Second
)

// String returns the string representation of a tag
func (t Tag) String() string {
	switch t {
	case First:
		return "netlist1"
	case Second:
		return "netlist2"
	default:
		return "netlist?"
	}
}

// Kind is the device-kind tag. The values are large primes so they can be
// folded straight into a device's initial color.
type Kind uint64

const (
	// KindMosfet is a four-terminal transistor (M card)
	KindMosfet Kind = 452375449
	// KindQuote is an instance of another cell (X card)
	KindQuote Kind = 807303071
)

// String returns the string representation of a device kind
func (k Kind) String() string {
	switch k {
	case KindMosfet:
		return "mosfet"
	case KindQuote:
		return "quote"
	default:
		return "kind(" + strconv.FormatUint(uint64(k), 10) + ")"
	}
}

// PinMagic identifies the terminal a connection attaches to. It is used as
// a multiplier during color refinement, so two pins with the same magic are
// interchangeable.
type PinMagic uint64

const (
	// PinUndefined marks a connection whose terminal carries no label,
	// e.g. an unconnected port of a matched sub-cell
	PinUndefined PinMagic = 0
	PinDrain     PinMagic = 581880311
	PinGate      PinMagic = 772136249
	PinSource    PinMagic = 662680627
	PinBulk      PinMagic = 928917673
)

// MosfetPins returns the pin magics of a MOSFET in card order (d g s b).
// With symmetric set, source shares the drain magic.
func MosfetPins(symmetric bool) [4]PinMagic {
	if symmetric {
		return [4]PinMagic{PinDrain, PinGate, PinDrain, PinBulk}
	}
	return [4]PinMagic{PinDrain, PinGate, PinSource, PinBulk}
}

// PinName returns a readable name for well-known pin magics
func PinName(p PinMagic) string {
	switch p {
	case PinUndefined:
		return "undefined"
	case PinDrain:
		return "drain"
	case PinGate:
		return "gate"
	case PinSource:
		return "source"
	case PinBulk:
		return "bulk"
	default:
		return strconv.FormatUint(uint64(p), 10)
	}
}

// CellID indexes a cell inside its netlist
type CellID int32

// DeviceID indexes a device inside its cell
type DeviceID int32

// WireID indexes a wire inside its cell
type WireID int32

const (
	// NoCell is the zero reference for an unset cell
	NoCell CellID = -1
	// NoWire marks a port that is not bound to a wire
	NoWire WireID = -1
	// NotPort is the port index of an internal wire
	NotPort = -1
)
