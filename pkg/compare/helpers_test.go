package compare

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-lvs/pkg/netlist"
)

// mos describes a transistor by its d, g, s, b nets
type mos struct {
	name  string
	model string
	nets  [4]string
	w, l  float64
}

func nmos(name, d, g, s, b string) mos {
	return mos{name: name, model: "nch", nets: [4]string{d, g, s, b}, w: 1e-6, l: 1.8e-7}
}

func pmos(name, d, g, s, b string) mos {
	return mos{name: name, model: "pch", nets: [4]string{d, g, s, b}, w: 2e-6, l: 1.8e-7}
}

func (m mos) withW(w float64) mos {
	m.w = w
	return m
}

func defineCell(t testing.TB, n *netlist.Netlist, name string, ports []string, devices ...mos) *netlist.Cell {
	t.Helper()
	c, err := n.DefineCell(name)
	require.NoError(t, err)
	for _, p := range ports {
		_, err := c.AddPort(p)
		require.NoError(t, err)
	}
	for _, d := range devices {
		_, err := c.AddMosfet(d.name, d.model, d.nets, netlist.MosfetPins(false), netlist.MosfetProps{W: d.w, L: d.l})
		require.NoError(t, err)
	}
	return c
}

func instantiate(t testing.TB, parent *netlist.Cell, name string, callee *netlist.Cell, nets ...string) {
	t.Helper()
	pending := make([]netlist.WireID, len(nets))
	for i, net := range nets {
		pending[i] = parent.DefineWire(net).ID
	}
	_, err := parent.AddQuote(name, callee.ID, pending)
	require.NoError(t, err)
}

// inverter defines an inverter cell; swapped reverses device order and
// names so the two sides never line up by position
func inverter(t testing.TB, n *netlist.Netlist, name string, swapped bool) *netlist.Cell {
	p := pmos("mp", "out", "in", "vdd", "vdd")
	q := nmos("mn", "out", "in", "vss", "vss")
	if swapped {
		p.name, q.name = "MP1", "MN1"
		return defineCell(t, n, name, []string{"in", "out", "vdd", "vss"}, q, p)
	}
	return defineCell(t, n, name, []string{"in", "out", "vdd", "vss"}, p, q)
}

// bufferChain builds top -> buf -> inv x2 and selects top
func bufferChain(t testing.TB, name string, swapped bool) *netlist.Netlist {
	t.Helper()
	return prefixedBufferChain(t, name, swapped, "")
}

// prefixedBufferChain is bufferChain with prefix prepended to every cell
// name below top
func prefixedBufferChain(t testing.TB, name string, swapped bool, prefix string) *netlist.Netlist {
	t.Helper()
	n := netlist.New(name, false)
	inv := inverter(t, n, prefix+"inv", swapped)

	buf := defineCell(t, n, prefix+"buf", []string{"a", "y", "vdd", "vss"})
	if swapped {
		instantiate(t, buf, "x2", inv, "m", "y", "vdd", "vss")
		instantiate(t, buf, "x1", inv, "a", "m", "vdd", "vss")
	} else {
		instantiate(t, buf, "x1", inv, "a", "mid", "vdd", "vss")
		instantiate(t, buf, "x2", inv, "mid", "y", "vdd", "vss")
	}

	top := defineCell(t, n, "top", []string{"i", "o", "vdd", "gnd"})
	instantiate(t, top, "xb", buf, "i", "o", "vdd", "gnd")
	n.SetTop("top")
	return n
}

// nandTree builds a hierarchy with a leaf shared at two depths:
// top -> {nand2, and2 -> {nand2, inv}, inv}
func nandTree(t testing.TB, name string, swapped bool) *netlist.Netlist {
	t.Helper()
	return prefixedNandTree(t, name, swapped, "")
}

func prefixedNandTree(t testing.TB, name string, swapped bool, prefix string) *netlist.Netlist {
	t.Helper()
	n := netlist.New(name, false)
	inv := inverter(t, n, prefix+"inv", swapped)

	nandDevices := []mos{
		pmos("p1", "y", "a", "vdd", "vdd"),
		pmos("p2", "y", "b", "vdd", "vdd"),
		nmos("n1", "y", "a", "x", "vss"),
		nmos("n2", "x", "b", "vss", "vss"),
	}
	if swapped {
		nandDevices[0], nandDevices[3] = nandDevices[3], nandDevices[0]
		nandDevices[1], nandDevices[2] = nandDevices[2], nandDevices[1]
	}
	nand := defineCell(t, n, prefix+"nand2", []string{"a", "b", "y", "vdd", "vss"}, nandDevices...)

	and := defineCell(t, n, prefix+"and2", []string{"a", "b", "y", "vdd", "vss"})
	instantiate(t, and, "xn", nand, "a", "b", "nb", "vdd", "vss")
	instantiate(t, and, "xi", inv, "nb", "y", "vdd", "vss")

	top := defineCell(t, n, "top", []string{"a", "b", "c", "y1", "y2", "vdd", "vss"})
	instantiate(t, top, "xa", and, "a", "b", "ab", "vdd", "vss")
	instantiate(t, top, "xn", nand, "ab", "c", "y1", "vdd", "vss")
	instantiate(t, top, "xi", inv, "y1", "y2", "vdd", "vss")
	n.SetTop("top")
	return n
}

func compareCells(t testing.TB, c1, c2 *netlist.Cell, opts Options) (*CellComparator, Result) {
	t.Helper()
	cmp := NewCellComparator(c1, c2, opts)
	return cmp, cmp.Compare()
}

func compareNetlists(t testing.TB, n1, n2 *netlist.Netlist, opts Options) *Report {
	t.Helper()
	nc, err := NewNetlistComparator(n1, n2, opts)
	require.NoError(t, err)
	report, err := nc.Compare()
	require.NoError(t, err)
	return report
}
