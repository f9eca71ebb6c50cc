package netlist

import (
	"fmt"
	"io"
	"strings"
)

// BuildHierarchy walks the instance graph from the top cell, records the
// reachable cells, their child edges and degrees, and rejects cycles.
func (n *Netlist) BuildHierarchy() error {
	top := n.Top()
	if top == nil {
		return NewError("BuildHierarchy").Cause(ErrTopCellNotFound)
	}

	for _, c := range n.cells {
		c.resetHierarchy()
	}
	n.valid = n.valid[:0]
	n.validSet = make(map[CellID]bool)

	queue := []CellID{top.ID}
	n.validSet[top.ID] = true
	for len(queue) > 0 {
		parent := n.cells[queue[0]]
		queue = queue[1:]
		n.valid = append(n.valid, parent.ID)

		for _, q := range parent.Quotes() {
			callee := q.Quote.Callee
			n.link(parent, callee, q.ID)
			if !n.validSet[callee] {
				n.validSet[callee] = true
				queue = append(queue, callee)
			}
		}
	}

	if _, err := n.topologicalOrder(); err != nil {
		return err
	}
	return nil
}

func (n *Netlist) link(parent *Cell, callee CellID, quote DeviceID) {
	if idx, ok := parent.childIndex[callee]; ok {
		parent.Children[idx].Quotes = append(parent.Children[idx].Quotes, quote)
		return
	}
	parent.childIndex[callee] = len(parent.Children)
	parent.Children = append(parent.Children, ChildEdge{Callee: callee, Quotes: []DeviceID{quote}})
	parent.OutDegree++

	child := n.cells[callee]
	child.Parents = append(child.Parents, parent.ID)
	child.InDegree++
}

// topologicalOrder runs Kahn's algorithm over the valid cells, parents first.
// Any cell left unvisited sits on a cycle.
func (n *Netlist) topologicalOrder() ([]*Cell, error) {
	inDegree := make(map[CellID]int, len(n.valid))
	for _, id := range n.valid {
		inDegree[id] = n.cells[id].InDegree
	}

	var queue []CellID
	for _, id := range n.valid {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]*Cell, 0, len(n.valid))
	for len(queue) > 0 {
		c := n.cells[queue[0]]
		queue = queue[1:]
		order = append(order, c)
		for _, edge := range c.Children {
			inDegree[edge.Callee]--
			if inDegree[edge.Callee] == 0 {
				queue = append(queue, edge.Callee)
			}
		}
	}

	if len(order) != len(n.valid) {
		var stuck []string
		for _, id := range n.valid {
			if inDegree[id] > 0 {
				stuck = append(stuck, n.cells[id].Name)
			}
		}
		return nil, NewError("BuildHierarchy").
			Cell(strings.Join(stuck, ",")).
			Cause(ErrHierarchyCycle)
	}
	return order, nil
}

// TopologicalOrder returns the valid cells leaves first. BuildHierarchy must
// have succeeded.
func (n *Netlist) TopologicalOrder() []*Cell {
	order, err := n.topologicalOrder()
	if err != nil {
		return nil
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// DumpHierarchy writes the instance tree below the top cell
func (n *Netlist) DumpHierarchy(w io.Writer) {
	top := n.Top()
	if top == nil {
		return
	}
	n.dumpCell(w, top, 0, 1)
}

func (n *Netlist) dumpCell(w io.Writer, c *Cell, depth, count int) {
	indent := strings.Repeat("  ", depth)
	suffix := ""
	if count > 1 {
		suffix = fmt.Sprintf(" x%d", count)
	}
	fmt.Fprintf(w, "%s%s%s (devices=%d wires=%d ports=%d)\n",
		indent, c.Name, suffix, c.DeviceCount(), c.WireCount(), len(c.ports))
	for _, edge := range c.Children {
		n.dumpCell(w, n.cells[edge.Callee], depth+1, len(edge.Quotes))
	}
}
