package netlist

import "strings"

// Netlist owns every cell read from one input file.
type Netlist struct {
	Name string

	tag           Tag
	caseSensitive bool

	cells     []*Cell
	cellIndex map[string]CellID
	main      CellID
	top       CellID

	valid    []CellID
	validSet map[CellID]bool
}

// New creates an empty netlist. Name lookups fold case unless caseSensitive
// is set.
func New(name string, caseSensitive bool) *Netlist {
	return &Netlist{
		Name:          name,
		caseSensitive: caseSensitive,
		cellIndex:     make(map[string]CellID),
		main:          NoCell,
		top:           NoCell,
		validSet:      make(map[CellID]bool),
	}
}

func (n *Netlist) key(name string) string {
	if n.caseSensitive {
		return name
	}
	return strings.ToLower(name)
}

// Tag returns the comparison side of the netlist
func (n *Netlist) Tag() Tag {
	return n.tag
}

// SetTag assigns the comparison side
func (n *Netlist) SetTag(t Tag) {
	n.tag = t
}

// CaseSensitive reports whether names are compared case sensitively
func (n *Netlist) CaseSensitive() bool {
	return n.caseSensitive
}

// DefineCell creates a named cell. Redefining a name is an error.
func (n *Netlist) DefineCell(name string) (*Cell, error) {
	key := n.key(name)
	if _, exists := n.cellIndex[key]; exists {
		return nil, NewError("DefineCell").Cell(name).Cause(ErrSubcktRedefined)
	}
	c := n.appendCell(name)
	n.cellIndex[key] = c.ID
	return c, nil
}

// MainCell returns the implicit cell holding top-level cards, creating it on
// first use. It is not reachable through FindCell.
func (n *Netlist) MainCell() *Cell {
	if n.main == NoCell {
		n.main = n.appendCell(n.Name).ID
	}
	return n.cells[n.main]
}

func (n *Netlist) appendCell(name string) *Cell {
	c := newCell(n, CellID(len(n.cells)), name)
	n.cells = append(n.cells, c)
	return c
}

// FindCell looks a named cell up
func (n *Netlist) FindCell(name string) *Cell {
	id, ok := n.cellIndex[n.key(name)]
	if !ok {
		return nil
	}
	return n.cells[id]
}

// Cell returns a cell by ID
func (n *Netlist) Cell(id CellID) *Cell {
	if id < 0 || int(id) >= len(n.cells) {
		return nil
	}
	return n.cells[id]
}

// Cells returns all cells in definition order, including the main cell
func (n *Netlist) Cells() []*Cell {
	return n.cells
}

// SetTop selects the top cell by name. An empty or unknown name selects the
// main cell.
func (n *Netlist) SetTop(name string) *Cell {
	if name != "" {
		if c := n.FindCell(name); c != nil {
			n.top = c.ID
			return c
		}
	}
	c := n.MainCell()
	n.top = c.ID
	return c
}

// Top returns the top cell, or nil if none was selected
func (n *Netlist) Top() *Cell {
	return n.Cell(n.top)
}

// ValidCells returns the cells reachable from the top in BFS order
func (n *Netlist) ValidCells() []*Cell {
	out := make([]*Cell, len(n.valid))
	for i, id := range n.valid {
		out[i] = n.cells[id]
	}
	return out
}

// IsValid reports whether a cell is reachable from the top
func (n *Netlist) IsValid(id CellID) bool {
	return n.validSet[id]
}
