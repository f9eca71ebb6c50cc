package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/cluso-lvs/pkg/metrics"
	"github.com/dd0wney/cluso-lvs/pkg/netlist"
)

func pairResults(r *Report) map[string]Result {
	out := make(map[string]Result, len(r.Pairs))
	for _, p := range r.Pairs {
		out[p.First] = p.Result
	}
	return out
}

func TestNetlistCompare_Hierarchical(t *testing.T) {
	n1 := bufferChain(t, "layout", false)
	n2 := bufferChain(t, "schematic", true)

	report := compareNetlists(t, n1, n2, Options{RunID: "run-1"})
	assert.True(t, report.Equivalent)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, ModeHierarchical, report.Mode)
	assert.Empty(t, report.Mismatches())

	require.Len(t, report.Pairs, 3)
	assert.Equal(t, []string{"inv", "buf", "top"},
		[]string{report.Pairs[0].First, report.Pairs[1].First, report.Pairs[2].First})
	assert.Contains(t, report.Verdict(), "EQUIVALENT")
}

func TestNetlistCompare_Tags(t *testing.T) {
	n1 := bufferChain(t, "layout", false)
	n2 := bufferChain(t, "schematic", true)
	_, err := NewNetlistComparator(n1, n2, Options{})
	require.NoError(t, err)

	assert.Equal(t, netlist.First, n1.Tag())
	assert.Equal(t, netlist.Second, n2.Tag())
}

func TestNetlistCompare_PortLabels(t *testing.T) {
	n1 := bufferChain(t, "layout", false)
	n2 := bufferChain(t, "schematic", true)
	report := compareNetlists(t, n1, n2, Options{})
	require.True(t, report.Equivalent)

	inv1, inv2 := n1.FindCell("inv"), n2.FindCell("inv")
	for i := range inv1.Ports() {
		assert.NotZero(t, inv1.Port(i).Label, inv1.Port(i).Name)
		assert.Equal(t, inv1.Port(i).Label, inv2.Port(i).Label, inv1.Port(i).Name)
	}

	pr, ok := report.Pair("inv")
	require.True(t, ok)
	assert.NotZero(t, pr.Label)
}

// matched instances become opaque devices; nothing is flattened
func TestNetlistCompare_MatchedInstancesStayOpaque(t *testing.T) {
	n1 := bufferChain(t, "layout", false)
	n2 := bufferChain(t, "schematic", true)
	compareNetlists(t, n1, n2, Options{})

	buf := n1.FindCell("buf")
	assert.Equal(t, 2, buf.DeviceCount())
	for _, d := range buf.Devices() {
		assert.Equal(t, netlist.KindQuote, d.Kind)
		assert.False(t, d.IsQuote())
		assert.Len(t, d.Connections, 4)
	}
	assert.Nil(t, buf.FindWire("x1/inv:out"))
}

func TestNetlistCompare_Flatten(t *testing.T) {
	n1 := bufferChain(t, "layout", false)
	n2 := bufferChain(t, "schematic", true)

	report := compareNetlists(t, n1, n2, Options{Mode: ModeFlatten})
	assert.True(t, report.Equivalent)
	require.Len(t, report.Pairs, 1)
	assert.Equal(t, "top", report.Pairs[0].First)

	top := n1.Top()
	assert.Equal(t, 4, top.DeviceCount())
	assert.NotNil(t, top.FindDevice("xb/buf:x1/inv:mp"))
	assert.NotNil(t, top.FindWire("xb/buf:mid"))
	assert.Empty(t, top.Quotes())
}

func TestNetlistCompare_FlattenAgreesWithHierarchical(t *testing.T) {
	for _, build := range []func(testing.TB, string, bool) *netlist.Netlist{bufferChain, nandTree} {
		hier := compareNetlists(t, build(t, "l", false), build(t, "s", true), Options{})
		flat := compareNetlists(t, build(t, "l", false), build(t, "s", true), Options{Mode: ModeFlatten})
		assert.True(t, hier.Equivalent)
		assert.Equal(t, hier.Equivalent, flat.Equivalent)
	}
}

// with no cell names in common nothing below the tops can pair up, so the
// hierarchical walk ends up flattening everything into the top pair
func TestNetlistCompare_NoCommonCellsFlattenAgrees(t *testing.T) {
	builders := map[string]func(testing.TB, string, bool, string) *netlist.Netlist{
		"buffer chain": prefixedBufferChain,
		"nand tree":    prefixedNandTree,
	}
	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			hier := compareNetlists(t, build(t, "l", false, ""), build(t, "s", true, "u_"), Options{})
			flat := compareNetlists(t, build(t, "l", false, ""), build(t, "s", true, "u_"), Options{Mode: ModeFlatten})

			assert.True(t, hier.Equivalent)
			assert.Equal(t, hier.Equivalent, flat.Equivalent)
			require.Len(t, hier.Pairs, 1)
			require.Len(t, flat.Pairs, 1)
			assert.Equal(t, "top", hier.Pairs[0].First)
			assert.NotZero(t, hier.Pairs[0].Label)
			assert.Equal(t, flat.Pairs[0].Label, hier.Pairs[0].Label)
		})
	}
}

func TestNetlistCompare_NoCommonCellsMismatch(t *testing.T) {
	build := func(mode Mode) *Report {
		n1 := prefixedBufferChain(t, "l", false, "")
		n2 := prefixedBufferChain(t, "s", true, "u_")
		mp := n2.FindCell("u_inv").FindDevice("MP1")
		require.NotNil(t, mp)
		mp.Model = "nch"
		return compareNetlists(t, n1, n2, Options{Mode: mode})
	}

	hier, flat := build(ModeHierarchical), build(ModeFlatten)
	assert.False(t, hier.Equivalent)
	assert.False(t, flat.Equivalent)
	assert.Len(t, hier.Mismatches(), 1)
	assert.Len(t, flat.Mismatches(), 1)
}

func TestNetlistCompare_MismatchPropagates(t *testing.T) {
	n1 := bufferChain(t, "layout", false)

	n2 := netlist.New("schematic", false)
	inv := defineCell(t, n2, "inv", []string{"in", "out", "vdd", "vss"},
		pmos("mp", "out", "in", "vdd", "vdd"),
		pmos("mn", "out", "in", "vss", "vss"))
	buf := defineCell(t, n2, "buf", []string{"a", "y", "vdd", "vss"})
	instantiate(t, buf, "x1", inv, "a", "mid", "vdd", "vss")
	instantiate(t, buf, "x2", inv, "mid", "y", "vdd", "vss")
	top := defineCell(t, n2, "top", []string{"i", "o", "vdd", "gnd"})
	instantiate(t, top, "xb", buf, "i", "o", "vdd", "gnd")
	n2.SetTop("top")

	report := compareNetlists(t, n1, n2, Options{})
	assert.False(t, report.Equivalent)
	assert.Len(t, report.Mismatches(), 3)
	assert.Contains(t, report.Verdict(), "NOT EQUIVALENT")

	// the unmatched inverter was inlined into buf on both sides
	assert.Equal(t, 4, n1.FindCell("buf").DeviceCount())
	assert.Equal(t, 4, n2.FindCell("buf").DeviceCount())
}

func TestNetlistCompare_UnnamedCounterpartIsFlattened(t *testing.T) {
	n1 := bufferChain(t, "layout", false)

	n2 := netlist.New("schematic", false)
	inv := inverter(t, n2, "not_gate", true)
	buf := defineCell(t, n2, "buf", []string{"a", "y", "vdd", "vss"})
	instantiate(t, buf, "u1", inv, "a", "n", "vdd", "vss")
	instantiate(t, buf, "u2", inv, "n", "y", "vdd", "vss")
	top := defineCell(t, n2, "top", []string{"i", "o", "vdd", "gnd"})
	instantiate(t, top, "xb", buf, "i", "o", "vdd", "gnd")
	n2.SetTop("top")

	report := compareNetlists(t, n1, n2, Options{})
	assert.True(t, report.Equivalent)
	assert.Equal(t, map[string]Result{"buf": ResultTrue, "top": ResultTrue}, pairResults(report))
}

func TestNetlistCompare_PortOrderMayDiffer(t *testing.T) {
	n1 := bufferChain(t, "layout", false)

	n2 := netlist.New("schematic", false)
	inv := defineCell(t, n2, "inv", []string{"vss", "vdd", "out", "in"},
		nmos("mn", "out", "in", "vss", "vss"),
		pmos("mp", "out", "in", "vdd", "vdd"))
	buf := defineCell(t, n2, "buf", []string{"a", "y", "vdd", "vss"})
	instantiate(t, buf, "x1", inv, "vss", "vdd", "mid", "a")
	instantiate(t, buf, "x2", inv, "vss", "vdd", "y", "mid")
	top := defineCell(t, n2, "top", []string{"i", "o", "vdd", "gnd"})
	instantiate(t, top, "xb", buf, "i", "o", "vdd", "gnd")
	n2.SetTop("top")

	report := compareNetlists(t, n1, n2, Options{})
	assert.True(t, report.Equivalent)
	assert.Empty(t, report.Mismatches())
}

func TestNetlistCompare_EmptyCellInstancesDropped(t *testing.T) {
	build := func(name string, withFiller bool) *netlist.Netlist {
		n := bufferChain(t, name, false)
		if withFiller {
			filler := defineCell(t, n, "filler", []string{"vdd", "vss"})
			instantiate(t, n.FindCell("top"), "xf", filler, "vdd", "gnd")
		}
		return n
	}

	report := compareNetlists(t, build("layout", true), build("schematic", false), Options{})
	assert.True(t, report.Equivalent)
}

func TestNetlistCompare_Concurrent(t *testing.T) {
	for _, build := range []func(testing.TB, string, bool) *netlist.Netlist{bufferChain, nandTree} {
		seq := compareNetlists(t, build(t, "l", false), build(t, "s", true), Options{})
		for _, workers := range []int{1, 2, 8} {
			con := compareNetlists(t, build(t, "l", false), build(t, "s", true),
				Options{Concurrent: true, Workers: workers})
			assert.True(t, con.Concurrent)
			assert.Equal(t, seq.Equivalent, con.Equivalent)
			assert.Equal(t, pairResults(seq), pairResults(con))
		}
	}
}

func TestNetlistCompare_ConcurrentMismatch(t *testing.T) {
	n1 := nandTree(t, "l", false)
	n2 := nandTree(t, "s", true)
	nand := n2.FindCell("nand2")
	nand.FindDevice("p1").Model = "nch"

	report := compareNetlists(t, n1, n2, Options{Concurrent: true, Workers: 4})
	assert.False(t, report.Equivalent)
	results := pairResults(report)
	assert.Equal(t, ResultTrue, results["inv"])
	assert.Equal(t, ResultFalse, results["nand2"])
	assert.Equal(t, ResultFalse, results["top"])
}

func TestNetlistCompare_Errors(t *testing.T) {
	n := bufferChain(t, "same", false)
	_, err := NewNetlistComparator(n, n, Options{})
	assert.ErrorIs(t, err, ErrSameNetlist)

	_, err = NewNetlistComparator(n, nil, Options{})
	assert.ErrorIs(t, err, ErrNilNetlist)

	noTop := netlist.New("none", false)
	_, err = NewNetlistComparator(n, noTop, Options{})
	assert.ErrorIs(t, err, netlist.ErrTopCellNotFound)
}

func TestNetlistCompare_CycleRejectedBeforeCompare(t *testing.T) {
	n1 := bufferChain(t, "layout", false)

	n2 := netlist.New("cyclic", false)
	a := defineCell(t, n2, "a", []string{"p"})
	b := defineCell(t, n2, "b", []string{"p"})
	instantiate(t, a, "xb", b, "p")
	instantiate(t, b, "xa", a, "p")
	n2.SetTop("a")

	reg := metrics.NewRegistry()
	_, err := NewNetlistComparator(n1, n2, Options{Metrics: reg})
	require.ErrorIs(t, err, netlist.ErrHierarchyCycle)

	var m dto.Metric
	require.NoError(t, reg.CellCompareIterations.Write(&m))
	assert.Zero(t, m.GetHistogram().GetSampleCount())
}

func TestNetlistCompare_Metrics(t *testing.T) {
	reg := metrics.NewRegistry()
	compareNetlists(t, bufferChain(t, "l", false), bufferChain(t, "s", true), Options{Metrics: reg})

	c, err := reg.NetlistComparesTotal.GetMetricWithLabelValues("hierarchical", "true")
	require.NoError(t, err)
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	assert.Equal(t, 1.0, m.GetCounter().GetValue())

	m.Reset()
	require.NoError(t, reg.CellCompareIterations.Write(&m))
	assert.Equal(t, uint64(3), m.GetHistogram().GetSampleCount())

	m.Reset()
	require.NoError(t, reg.CellGraphElements.Write(&m))
	assert.Equal(t, uint64(3), m.GetHistogram().GetSampleCount())

	compareNetlists(t, bufferChain(t, "l", false), bufferChain(t, "s", true),
		Options{Mode: ModeFlatten, Metrics: reg})
	m.Reset()
	require.NoError(t, reg.QuotesFlattenedTotal.Write(&m))
	assert.Equal(t, 6.0, m.GetCounter().GetValue())
}
