package spice

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-lvs/pkg/netlist"
)

func newTestReader(t *testing.T, opts Options) *Reader {
	t.Helper()
	r, err := NewReader(opts)
	require.NoError(t, err)
	return r
}

func TestReadFile_Hierarchy(t *testing.T) {
	r := newTestReader(t, Options{})
	n, err := r.ReadFile("testdata/inv_chain.sp", "")
	require.NoError(t, err)

	assert.Equal(t, "inv_chain.sp", n.Name)
	top := n.Top()
	require.NotNil(t, top)
	assert.Equal(t, "inv_chain.sp", top.Name)
	assert.Len(t, n.ValidCells(), 3)

	inv := n.FindCell("INV")
	require.NotNil(t, inv)
	require.Len(t, inv.Ports(), 4)
	assert.Equal(t, 2, inv.DeviceCount())

	mp := inv.FindDevice("mp")
	require.NotNil(t, mp)
	assert.Equal(t, "pch", mp.Model)
	assert.InDelta(t, 2e-6, mp.Mosfet.W, 1e-15)
	assert.InDelta(t, 0.18e-6, mp.Mosfet.L, 1e-15)
	require.Len(t, mp.Connections, 4)
	assert.Equal(t, netlist.PinDrain, mp.Connections[0].Pin)
	assert.Equal(t, netlist.PinSource, mp.Connections[2].Pin)

	mn := inv.FindDevice("mn")
	require.NotNil(t, mn)
	assert.InDelta(t, 1e-6, mn.Mosfet.W, 1e-15)
	assert.InDelta(t, 180e-9, mn.Mosfet.L, 1e-15)

	buf := n.FindCell("buf")
	require.NotNil(t, buf)
	require.Len(t, buf.Children, 1)
	assert.Equal(t, inv.ID, buf.Children[0].Callee)
	assert.Len(t, buf.Children[0].Quotes, 2)

	x2 := buf.FindDevice("x2")
	require.NotNil(t, x2)
	require.True(t, x2.IsQuote())
	require.Len(t, x2.Quote.Pending, 4)
	assert.Equal(t, "mid", buf.Wire(x2.Quote.Pending[0]).Name)
	assert.Equal(t, "vss", buf.Wire(x2.Quote.Pending[3]).Name)
}

func TestReadFile_NamedTop(t *testing.T) {
	r := newTestReader(t, Options{})
	n, err := r.ReadFile("testdata/inv_chain.sp", "buf")
	require.NoError(t, err)
	assert.Equal(t, "buf", n.Top().Name)
	assert.Len(t, n.ValidCells(), 2)

	n, err = r.ReadFile("testdata/inv_chain.sp", "missing")
	require.NoError(t, err)
	assert.Equal(t, "inv_chain.sp", n.Top().Name, "unknown top falls back to the main cell")
}

func TestReadFile_SymmetricSourceDrain(t *testing.T) {
	r := newTestReader(t, Options{SymmetricSourceDrain: true})
	n, err := r.ReadFile("testdata/inv_chain.sp", "")
	require.NoError(t, err)
	mp := n.FindCell("inv").FindDevice("mp")
	assert.Equal(t, netlist.PinDrain, mp.Connections[2].Pin)
}

func TestReadFile_Cycle(t *testing.T) {
	r := newTestReader(t, Options{})
	_, err := r.ReadFile("testdata/cycle.sp", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, netlist.ErrHierarchyCycle)
	assert.Contains(t, err.Error(), "cycle.sp")
}

func TestReadFile_NotFound(t *testing.T) {
	r := newTestReader(t, Options{})
	_, err := r.ReadFile(filepath.Join(t.TempDir(), "nope.sp"), "")
	assert.ErrorIs(t, err, netlist.ErrFileNotFound)
}

func TestReadFile_Snappy(t *testing.T) {
	src, err := os.ReadFile("testdata/inv_chain.sp")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "inv_chain.sp.sz")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := snappy.NewBufferedWriter(f)
	_, err = w.Write(src)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	r := newTestReader(t, Options{})
	n, err := r.ReadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "inv_chain.sp", n.Name)
	assert.Len(t, n.ValidCells(), 3)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"subckt without name", ".subckt\n.ends\n", netlist.ErrSubcktNoName},
		{"nested subckt", ".subckt a p\n.subckt b q\n.ends\n", netlist.ErrSubcktNoEnds},
		{"missing ends", ".subckt a p\nm1 p p p p n\n", netlist.ErrSubcktNoEnds},
		{"redefined subckt", ".subckt a p\n.ends\n.subckt A q\n.ends\n", netlist.ErrSubcktRedefined},
		{"duplicate port", ".subckt a p p\n.ends\n", netlist.ErrPortRedefined},
		{"duplicate device", "m1 a b c d n\nM1 a b c d n\n", netlist.ErrDeviceRedefined},
		{"ends without subckt", ".ends\n", netlist.ErrEndsWithoutSubckt},
		{"short mosfet", "m1 a b c d\n", netlist.ErrMalformedMosfet},
		{"unparsable mosfet", "m1 a b c d n w=\n", netlist.ErrMalformedMosfet},
		{"unparsable instance", ".subckt a p\n.ends\nx1 n a m=\n", netlist.ErrMalformedCard},
		{"unparsable param", ".param w=\n", netlist.ErrMalformedCard},
		{"unresolved instance", "x1 a b nothing\n", netlist.ErrUnresolvedInstance},
		{"port count mismatch", ".subckt a p q\n.ends\nx1 n a\n", netlist.ErrPortCountMismatch},
	}
	r := newTestReader(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Read("case.sp", strings.NewReader(tt.src), "")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRead_UnparsableCardIsNotDropped(t *testing.T) {
	r := newTestReader(t, Options{})
	src := ".subckt inv a y vdd vss\nmp y a vdd vdd pch\nmn y a vss vss nch l=\n.ends\n"
	n, err := r.Read("case.sp", strings.NewReader(src), "inv")
	require.Error(t, err)
	assert.Nil(t, n)
	assert.ErrorIs(t, err, netlist.ErrMalformedMosfet)

	var nerr *netlist.NetlistError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, 3, nerr.Line)
	assert.Equal(t, "mn", nerr.Name)
}

func TestRead_UnparsableControlCardSkipped(t *testing.T) {
	r := newTestReader(t, Options{})
	n, err := r.Read("case.sp", strings.NewReader(".option gmin=\nm1 a b c d n\n"), "")
	require.NoError(t, err)
	assert.Equal(t, 1, n.Top().DeviceCount())
}

func TestRead_ErrorCarriesLine(t *testing.T) {
	r := newTestReader(t, Options{})
	_, err := r.Read("case.sp", strings.NewReader("* header\n\nm1 a b c d\n"), "")
	require.Error(t, err)

	var nerr *netlist.NetlistError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "case.sp", nerr.File)
	assert.Equal(t, 3, nerr.Line)
}

func TestRead_CaseSensitive(t *testing.T) {
	src := ".subckt inv a y\nm1 y a y y n\n.ends\nx1 i o INV\n"

	r := newTestReader(t, Options{})
	_, err := r.Read("fold.sp", strings.NewReader(src), "")
	require.NoError(t, err)

	r = newTestReader(t, Options{CaseSensitive: true})
	_, err = r.Read("exact.sp", strings.NewReader(src), "")
	assert.ErrorIs(t, err, netlist.ErrUnresolvedInstance)
}

func TestRead_UnresolvedPropertyIsZero(t *testing.T) {
	r := newTestReader(t, Options{})
	n, err := r.Read("p.sp", strings.NewReader("m1 a b c d n w=undefined*2 l=1\n"), "")
	require.NoError(t, err)
	d := n.Top().FindDevice("m1")
	require.NotNil(t, d)
	assert.Equal(t, 0.0, d.Mosfet.W)
	assert.Equal(t, 1.0, d.Mosfet.L)
}

func TestRead_LocalParamShadowsGlobal(t *testing.T) {
	src := `.param w=1
.subckt c p
.param w=3
m1 p p p p n w='w*2'
.ends
m2 a a a a n w=w
x1 a c
`
	r := newTestReader(t, Options{})
	n, err := r.Read("p.sp", strings.NewReader(src), "")
	require.NoError(t, err)
	assert.Equal(t, 6.0, n.FindCell("c").FindDevice("m1").Mosfet.W)
	assert.Equal(t, 1.0, n.Top().FindDevice("m2").Mosfet.W)
}
