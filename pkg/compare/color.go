package compare

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"

	"github.com/dd0wney/cluso-lvs/pkg/netlist"
)

// Color is a structural hash of an element. Arithmetic wraps modulo 2^64.
type Color uint64

const (
	internalWireBase Color = 999999
	portWireBase     Color = 5000000
)

func initialDeviceColor(d *netlist.Device) Color {
	return Color(uint64(d.Kind) ^ xxhash.Sum64String(d.Model))
}

// initialWireColor separates ports from internal nets and nets by degree
// before any refinement.
func initialWireColor(w *netlist.Wire) Color {
	base := internalWireBase
	if w.IsPort() {
		base = portWireBase
	}
	return base - Color(2*w.Degree())
}

// newColorSource returns a generator for tie-break colors. Seeding with the
// pair of cell names keeps runs reproducible and independent of scheduling.
func newColorSource(seed uint64, first, second string) *rand.Rand {
	return rand.New(rand.NewPCG(seed, xxhash.Sum64String(first+"\x00"+second)))
}
