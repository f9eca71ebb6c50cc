package netlist

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instantiate(t *testing.T, parent *Cell, name string, callee *Cell, nets ...string) {
	t.Helper()
	pending := make([]WireID, len(nets))
	for i, net := range nets {
		pending[i] = parent.DefineWire(net).ID
	}
	_, err := parent.AddQuote(name, callee.ID, pending)
	require.NoError(t, err)
}

func TestBuildHierarchy_Tree(t *testing.T) {
	n := New("chip", false)
	inv := newInverter(t, n, "inv")
	buf, err := n.DefineCell("buf")
	require.NoError(t, err)
	for _, p := range []string{"a", "y", "vdd", "vss"} {
		_, err := buf.AddPort(p)
		require.NoError(t, err)
	}
	instantiate(t, buf, "x1", inv, "a", "mid", "vdd", "vss")
	instantiate(t, buf, "x2", inv, "mid", "y", "vdd", "vss")

	unused, err := n.DefineCell("unused")
	require.NoError(t, err)

	main := n.MainCell()
	instantiate(t, main, "xb", buf, "i", "o", "vdd", "vss")
	n.SetTop("")
	require.Equal(t, main, n.Top())

	require.NoError(t, n.BuildHierarchy())

	assert.Len(t, n.ValidCells(), 3)
	assert.False(t, n.IsValid(unused.ID))
	assert.True(t, n.IsValid(inv.ID))

	require.Len(t, buf.Children, 1)
	assert.Equal(t, inv.ID, buf.Children[0].Callee)
	assert.Len(t, buf.Children[0].Quotes, 2)
	assert.Equal(t, 1, buf.OutDegree)
	assert.Equal(t, 1, buf.InDegree)
	assert.Equal(t, 0, inv.OutDegree)
	assert.Equal(t, []CellID{buf.ID}, inv.Parents)

	order := n.TopologicalOrder()
	require.Len(t, order, 3)
	assert.Equal(t, "inv", order[0].Name)
	assert.Equal(t, main, order[2])

	var out bytes.Buffer
	n.DumpHierarchy(&out)
	assert.Contains(t, out.String(), "    inv x2")
}

func TestBuildHierarchy_Cycle(t *testing.T) {
	n := New("loop", false)
	a, err := n.DefineCell("a")
	require.NoError(t, err)
	b, err := n.DefineCell("b")
	require.NoError(t, err)
	_, err = a.AddPort("p")
	require.NoError(t, err)
	_, err = b.AddPort("p")
	require.NoError(t, err)

	instantiate(t, a, "xb", b, "p")
	instantiate(t, b, "xa", a, "p")
	n.SetTop("a")

	err = n.BuildHierarchy()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHierarchyCycle))
	assert.Nil(t, n.TopologicalOrder())
}

func TestBuildHierarchy_CycleBelowTop(t *testing.T) {
	n := New("loop", false)
	top, err := n.DefineCell("top")
	require.NoError(t, err)
	a, err := n.DefineCell("a")
	require.NoError(t, err)
	b, err := n.DefineCell("b")
	require.NoError(t, err)

	instantiate(t, top, "xa", a)
	instantiate(t, a, "xb", b)
	instantiate(t, b, "xa", a)
	n.SetTop("top")

	assert.ErrorIs(t, n.BuildHierarchy(), ErrHierarchyCycle)
}

func TestBuildHierarchy_SelfInstance(t *testing.T) {
	n := New("self", false)
	a, err := n.DefineCell("a")
	require.NoError(t, err)
	instantiate(t, a, "xa", a)
	n.SetTop("a")

	assert.ErrorIs(t, n.BuildHierarchy(), ErrHierarchyCycle)
}

func TestBuildHierarchy_NoTop(t *testing.T) {
	n := New("empty", false)
	assert.ErrorIs(t, n.BuildHierarchy(), ErrTopCellNotFound)
}

func TestDefineCell_Redefined(t *testing.T) {
	n := New("dup", false)
	_, err := n.DefineCell("inv")
	require.NoError(t, err)
	_, err = n.DefineCell("INV")
	assert.ErrorIs(t, err, ErrSubcktRedefined)
}
