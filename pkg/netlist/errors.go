package netlist

import (
	"errors"
	"fmt"
)

// Common sentinel errors. All of them are raised while a netlist is read and
// its hierarchy built; the comparison engine never returns them.
var (
	ErrFileNotFound       = errors.New("file not found")
	ErrSubcktNoName       = errors.New("subckt has no name")
	ErrSubcktNoEnds       = errors.New("subckt has no matching .ends")
	ErrSubcktRedefined    = errors.New("subckt redefined")
	ErrPortRedefined      = errors.New("port redefined")
	ErrDeviceRedefined    = errors.New("device redefined")
	ErrEndsWithoutSubckt  = errors.New(".ends without .subckt")
	ErrMalformedMosfet    = errors.New("malformed mosfet card")
	ErrMalformedCard      = errors.New("malformed card")
	ErrUnresolvedInstance = errors.New("instance references an undefined cell")
	ErrPortCountMismatch  = errors.New("instance port count does not match cell")
	ErrHierarchyCycle     = errors.New("cell hierarchy contains a cycle")
	ErrTopCellNotFound    = errors.New("top cell not found")
)

// NetlistError provides structured error information for netlist operations.
type NetlistError struct {
	Op     string // Operation that failed (e.g., "ReadSubckt", "BuildHierarchy")
	File   string // Source file, if known
	Line   int    // 1-based source line, if known
	Entity string // Entity type (e.g., "cell", "device", "port")
	Name   string // Entity name
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *NetlistError) Error() string {
	loc := ""
	if e.File != "" {
		loc = e.File
		if e.Line > 0 {
			loc = fmt.Sprintf("%s:%d", e.File, e.Line)
		}
		loc += ": "
	}
	if e.Name != "" {
		return fmt.Sprintf("%s%s %s %q: %v", loc, e.Op, e.Entity, e.Name, e.Cause)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s%s %s: %v", loc, e.Op, e.Entity, e.Cause)
	}
	return fmt.Sprintf("%s%s: %v", loc, e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *NetlistError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *NetlistError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building NetlistErrors.
type ErrorBuilder struct {
	err NetlistError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: NetlistError{Op: op}}
}

// At sets the source location.
func (b *ErrorBuilder) At(file string, line int) *ErrorBuilder {
	b.err.File = file
	b.err.Line = line
	return b
}

// Cell sets the entity to "cell" with the given name.
func (b *ErrorBuilder) Cell(name string) *ErrorBuilder {
	b.err.Entity = "cell"
	b.err.Name = name
	return b
}

// Device sets the entity to "device" with the given name.
func (b *ErrorBuilder) Device(name string) *ErrorBuilder {
	b.err.Entity = "device"
	b.err.Name = name
	return b
}

// Port sets the entity to "port" with the given name.
func (b *ErrorBuilder) Port(name string) *ErrorBuilder {
	b.err.Entity = "port"
	b.err.Name = name
	return b
}

// Cause sets the underlying cause and returns the error.
func (b *ErrorBuilder) Cause(err error) error {
	b.err.Cause = err
	e := b.err
	return &e
}
