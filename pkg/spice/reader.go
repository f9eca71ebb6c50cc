// Package spice reads SPICE netlists into the netlist graph model.
package spice

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dd0wney/cluso-lvs/pkg/logging"
	"github.com/dd0wney/cluso-lvs/pkg/netlist"
)

// Options controls how cards are turned into a netlist
type Options struct {
	// CaseSensitive keeps cell, device and net names case sensitive
	CaseSensitive bool
	// SymmetricSourceDrain attaches MOSFET source with the drain pin magic,
	// making drain and source interchangeable
	SymmetricSourceDrain bool
	Logger               logging.Logger
}

// Reader parses SPICE files. A Reader holds only immutable grammars and may
// be shared between goroutines.
type Reader struct {
	opts  Options
	cards *CardParser
	eval  *Evaluator
}

// NewReader creates a reader with the given options
func NewReader(opts Options) (*Reader, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	cards, err := NewCardParser()
	if err != nil {
		return nil, err
	}
	eval, err := NewEvaluator()
	if err != nil {
		return nil, err
	}
	return &Reader{opts: opts, cards: cards, eval: eval}, nil
}

// ReadFile reads a netlist from disk, selects top (falling back to the
// file's main cell) and builds its hierarchy.
func (r *Reader) ReadFile(path, top string) (*netlist.Netlist, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return r.Read(path, src, top)
}

// Read parses a netlist from rd. Name identifies the source in errors and
// names the main cell after its base name.
func (r *Reader) Read(name string, rd io.Reader, top string) (*netlist.Netlist, error) {
	cards, err := splitCards(rd)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	base := strings.TrimSuffix(filepath.Base(name), SnappyExt)
	b := &builder{
		reader: r,
		file:   name,
		nl:     netlist.New(base, r.opts.CaseSensitive),
		params: make(map[netlist.CellID]Params),
		log:    r.opts.Logger.With(logging.Netlist(base)),
	}
	b.main = b.nl.MainCell()
	b.cell = b.main

	for _, c := range cards {
		if err := b.card(c); err != nil {
			return nil, err
		}
	}
	if b.cell != b.main {
		return nil, netlist.NewError("ReadSubckt").At(name, b.openLine).Cell(b.cell.Name).Cause(netlist.ErrSubcktNoEnds)
	}
	if err := b.resolveInstances(); err != nil {
		return nil, err
	}

	topCell := b.nl.SetTop(top)
	if top != "" && topCell == b.main {
		b.log.Warn("top cell not found, using main cell",
			logging.String("top", top), logging.Cell(topCell.Name))
	}
	if err := b.nl.BuildHierarchy(); err != nil {
		return nil, b.locate(err, 0)
	}

	b.log.Debug("netlist read",
		logging.Int("cells", len(b.nl.Cells())),
		logging.Int("valid_cells", len(b.nl.ValidCells())),
		logging.Cell(topCell.Name))
	return b.nl, nil
}
