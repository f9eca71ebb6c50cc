package spice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-lvs/pkg/logging"
	"github.com/dd0wney/cluso-lvs/pkg/netlist"
)

type pendingInstance struct {
	cell   *netlist.Cell
	device *netlist.Device
	tokens []string
	line   int
}

// builder holds the state of one Read call
type builder struct {
	reader *Reader
	file   string
	nl     *netlist.Netlist
	main   *netlist.Cell
	cell   *netlist.Cell
	log    logging.Logger

	openLine  int
	params    map[netlist.CellID]Params
	instances []pendingInstance
}

// locate fills in the source position of a structured error
func (b *builder) locate(err error, line int) error {
	var nerr *netlist.NetlistError
	if errors.As(err, &nerr) && nerr.File == "" {
		nerr.File = b.file
		nerr.Line = line
	}
	return err
}

func (b *builder) scope(c *netlist.Cell) Params {
	p, ok := b.params[c.ID]
	if !ok {
		p = make(Params)
		b.params[c.ID] = p
	}
	return p
}

// eval resolves an expression against the current cell, then the globals
func (b *builder) eval(expr string) (float64, error) {
	if b.cell == b.main {
		return b.reader.eval.Eval(expr, b.scope(b.main))
	}
	return b.reader.eval.Eval(expr, b.scope(b.cell), b.scope(b.main))
}

func (b *builder) card(c card) error {
	ast, err := b.reader.cards.ParseString(c.Text)
	if err != nil {
		return b.unparsable(c, err)
	}

	head := strings.ToLower(ast.Head)
	switch {
	case head == ".subckt":
		return b.subckt(c, ast)
	case head == ".ends":
		if b.cell == b.main {
			return netlist.NewError("ReadEnds").At(b.file, c.Line).Cause(netlist.ErrEndsWithoutSubckt)
		}
		b.cell = b.main
	case head == ".param":
		b.param(c, ast.Assignments())
	case head == ".end", head == ".global", head == ".model", head == ".include",
		head == ".option", head == ".options":
	case head[0] == 'm':
		return b.mosfet(c, ast)
	case head[0] == 'x':
		return b.instance(c, ast)
	default:
		b.log.Debug("ignoring card", logging.Line(c.Line), logging.String("card", ast.Head))
	}
	return nil
}

// unparsable fails on cards that would change the netlist and skips the rest
func (b *builder) unparsable(c card, err error) error {
	fields := strings.Fields(c.Text)
	if len(fields) == 0 {
		return nil
	}
	head := strings.ToLower(fields[0])
	switch {
	case head[0] == 'm':
		return netlist.NewError("ReadMosfet").At(b.file, c.Line).Device(fields[0]).
			Cause(fmt.Errorf("%w: %v", netlist.ErrMalformedMosfet, err))
	case head[0] == 'x':
		return netlist.NewError("ReadInstance").At(b.file, c.Line).Device(fields[0]).
			Cause(fmt.Errorf("%w: %v", netlist.ErrMalformedCard, err))
	case head == ".subckt", head == ".ends", head == ".param":
		return netlist.NewError("ReadCard").At(b.file, c.Line).
			Cause(fmt.Errorf("%w: %v", netlist.ErrMalformedCard, err))
	}
	b.log.Warn("skipping unparsable card", logging.Line(c.Line), logging.Error(err))
	return nil
}

func (b *builder) subckt(c card, ast *CardAST) error {
	words := ast.Words()
	if len(words) == 0 {
		return netlist.NewError("ReadSubckt").At(b.file, c.Line).Cause(netlist.ErrSubcktNoName)
	}
	if b.cell != b.main {
		return netlist.NewError("ReadSubckt").At(b.file, b.openLine).Cell(b.cell.Name).Cause(netlist.ErrSubcktNoEnds)
	}

	cell, err := b.nl.DefineCell(words[0])
	if err != nil {
		return b.locate(err, c.Line)
	}
	for _, port := range words[1:] {
		if _, err := cell.AddPort(port); err != nil {
			return b.locate(err, c.Line)
		}
	}
	b.cell = cell
	b.openLine = c.Line
	b.param(c, ast.Assignments())
	return nil
}

func (b *builder) param(c card, assignments []*ArgAST) {
	scope := b.scope(b.cell)
	for _, a := range assignments {
		v, err := b.eval(*a.Value)
		if err != nil {
			b.log.Warn("unresolved parameter",
				logging.Line(c.Line), logging.String("param", a.Key), logging.Error(err))
			continue
		}
		scope.Set(a.Key, v)
	}
}

func (b *builder) mosfet(c card, ast *CardAST) error {
	words := ast.Words()
	if len(words) < 5 {
		return netlist.NewError("ReadMosfet").At(b.file, c.Line).Device(ast.Head).Cause(netlist.ErrMalformedMosfet)
	}

	var props netlist.MosfetProps
	for _, a := range ast.Assignments() {
		key := strings.ToLower(a.Key)
		if key != "w" && key != "l" {
			continue
		}
		v, err := b.eval(*a.Value)
		if err != nil {
			b.log.Warn("non-numeric device property",
				logging.Line(c.Line), logging.String("device", ast.Head),
				logging.String("property", a.Key), logging.Error(err))
			v = 0
		}
		if key == "w" {
			props.W = v
		} else {
			props.L = v
		}
	}

	nets := [4]string{words[0], words[1], words[2], words[3]}
	pins := netlist.MosfetPins(b.reader.opts.SymmetricSourceDrain)
	if _, err := b.cell.AddMosfet(ast.Head, words[4], nets, pins, props); err != nil {
		return b.locate(err, c.Line)
	}
	return nil
}

func (b *builder) instance(c card, ast *CardAST) error {
	d, err := b.cell.AddQuote(ast.Head, netlist.NoCell, nil)
	if err != nil {
		return b.locate(err, c.Line)
	}
	b.instances = append(b.instances, pendingInstance{
		cell:   b.cell,
		device: d,
		tokens: ast.Words(),
		line:   c.Line,
	})
	return nil
}

// resolveInstances binds every X card once all cells are known. The callee
// is the first token naming a cell; the tokens before it are nets.
func (b *builder) resolveInstances() error {
	for _, inst := range b.instances {
		var pending []netlist.WireID
		resolved := false
		for _, tok := range inst.tokens {
			callee := b.nl.FindCell(tok)
			if callee == nil {
				pending = append(pending, inst.cell.DefineWire(tok).ID)
				continue
			}
			if len(callee.Ports()) != len(pending) {
				return netlist.NewError("ResolveInstance").At(b.file, inst.line).
					Device(inst.device.Name).Cause(netlist.ErrPortCountMismatch)
			}
			inst.device.Quote.Callee = callee.ID
			inst.device.Quote.Pending = pending
			resolved = true
			break
		}
		if !resolved {
			return netlist.NewError("ResolveInstance").At(b.file, inst.line).
				Device(inst.device.Name).Cause(netlist.ErrUnresolvedInstance)
		}
	}
	return nil
}
