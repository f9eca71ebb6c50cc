package compare

import "errors"

var (
	// ErrSameNetlist is returned when both sides are the same netlist value
	ErrSameNetlist = errors.New("cannot compare a netlist with itself")
	// ErrNilNetlist is returned when either side is missing
	ErrNilNetlist = errors.New("netlist is nil")
	// ErrWorkerPanic wraps a panic raised while comparing a cell pair
	ErrWorkerPanic = errors.New("cell comparison panicked")
)
