// Package lvs runs a complete layout-versus-schematic comparison: both
// netlists are read in parallel, then compared as configured.
package lvs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-lvs/pkg/compare"
	"github.com/dd0wney/cluso-lvs/pkg/config"
	"github.com/dd0wney/cluso-lvs/pkg/logging"
	"github.com/dd0wney/cluso-lvs/pkg/metrics"
	"github.com/dd0wney/cluso-lvs/pkg/netlist"
	"github.com/dd0wney/cluso-lvs/pkg/spice"
)

// Run loads both netlists of cfg and compares their top cells. The
// configuration must already be validated.
func Run(ctx context.Context, cfg *config.Config, logger logging.Logger, reg *metrics.Registry) (*compare.Report, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	n1, n2, err := Load(ctx, cfg, logger, reg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Debug.DumpHierarchy {
		dumpHierarchy(logger, n1)
		dumpHierarchy(logger, n2)
	}

	opts := cfg.CompareOptions(logger, reg)
	cmp, err := compare.NewNetlistComparator(n1, n2, opts)
	if err != nil {
		return nil, fmt.Errorf("prepare comparison: %w", err)
	}
	return cmp.Compare()
}

// Load reads the two netlists of cfg concurrently
func Load(ctx context.Context, cfg *config.Config, logger logging.Logger, reg *metrics.Registry) (*netlist.Netlist, *netlist.Netlist, error) {
	reader, err := spice.NewReader(cfg.ReaderOptions(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("build reader: %w", err)
	}

	var n1, n2 *netlist.Netlist
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := readOne(gctx, reader, cfg.Netlist1, cfg.Top1, logger, reg)
		n1 = n
		return err
	})
	g.Go(func() error {
		n, err := readOne(gctx, reader, cfg.Netlist2, cfg.Top2, logger, reg)
		n2 = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return n1, n2, nil
}

func readOne(ctx context.Context, reader *spice.Reader, path, top string, logger logging.Logger, reg *metrics.Registry) (*netlist.Netlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timer := logging.StartTimer(logger, "netlist loaded", logging.Path(path))
	start := time.Now()

	n, err := reader.ReadFile(path, top)
	if err != nil {
		reg.RecordParse("error", time.Since(start), 0)
		timer.EndError(err)
		return nil, err
	}

	reg.RecordParse("success", time.Since(start), len(n.Cells()))
	timer.EndWithLevel(logging.InfoLevel, "netlist loaded",
		logging.Netlist(n.Name),
		logging.Cell(n.Top().Name),
		logging.Count(len(n.ValidCells())))
	return n, nil
}

func dumpHierarchy(logger logging.Logger, n *netlist.Netlist) {
	if !logging.Enabled(logger, logging.DebugLevel) {
		return
	}
	var sb strings.Builder
	n.DumpHierarchy(&sb)
	logger.Debug("hierarchy",
		logging.Netlist(n.Name),
		logging.String("tree", sb.String()))
}
