package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dd0wney/cluso-lvs/pkg/compare"
	"github.com/dd0wney/cluso-lvs/pkg/config"
	"github.com/dd0wney/cluso-lvs/pkg/logging"
	"github.com/dd0wney/cluso-lvs/pkg/lvs"
	"github.com/dd0wney/cluso-lvs/pkg/metrics"
	"github.com/dd0wney/cluso-lvs/pkg/validation"
)

type compareOptions struct {
	configPath string

	top1, top2           string
	flatten              bool
	concurrent           bool
	workers              int
	tolerance            float64
	seed                 uint64
	caseSensitive        bool
	verifyProperties     bool
	symmetricSourceDrain bool
	output               string
	metricsOut           string
}

func newCompareCmd(g *globalOptions) *cobra.Command {
	o := &compareOptions{}

	c := &cobra.Command{
		Use:   "compare [netlist1] [netlist2]",
		Short: "Compare two netlists",
		Long: `Compare the top cells of two SPICE netlists. Netlist paths and every
setting may also come from a YAML file given with --config; flags win.

Exit status is 0 when the netlists are equivalent, 1 when they are not
and 2 when the comparison could not run.

Examples:
  lvs compare layout.sp schematic.sp
  lvs compare --top1 chip --top2 CHIP --tolerance 0.01 --verify-properties a.sp b.sp
  lvs compare --config lvs.yaml --metrics-out lvs.prom`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, g, o, args)
		},
	}

	f := c.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "YAML configuration file")
	f.StringVar(&o.top1, "top1", "", "top cell of the first netlist")
	f.StringVar(&o.top2, "top2", "", "top cell of the second netlist")
	f.BoolVar(&o.flatten, "flatten", false, "flatten both top cells instead of comparing hierarchically")
	f.BoolVar(&o.concurrent, "concurrent", false, "compare independent cells in parallel")
	f.IntVarP(&o.workers, "workers", "w", 0, "worker count for --concurrent (0 = number of CPUs)")
	f.Float64Var(&o.tolerance, "tolerance", config.DefaultTolerance, "largest property difference treated as equal")
	f.Uint64Var(&o.seed, "seed", 0, "seed for automorphism splitting")
	f.BoolVar(&o.caseSensitive, "case-sensitive", false, "treat names case-sensitively")
	f.BoolVar(&o.verifyProperties, "verify-properties", false, "check device properties of matched pairs")
	f.BoolVar(&o.symmetricSourceDrain, "symmetric-sd", false, "treat MOSFET source and drain as interchangeable")
	f.StringVarP(&o.output, "output", "o", "", "write the report to a file instead of standard output")
	f.StringVar(&o.metricsOut, "metrics-out", "", "write Prometheus metrics in text format to a file")

	return c
}

// buildConfig layers defaults, the config file, arguments, LOG_LEVEL and
// LOG_FORMAT, then changed flags
func buildConfig(flags *pflag.FlagSet, g *globalOptions, o *compareOptions, args []string) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if len(args) > 0 {
		cfg.Netlist1 = args[0]
	}
	if len(args) > 1 {
		cfg.Netlist2 = args[1]
	}

	changed := flags.Changed
	if changed("top1") {
		cfg.Top1 = o.top1
	}
	if changed("top2") {
		cfg.Top2 = o.top2
	}
	if changed("flatten") {
		cfg.Mode = config.ModeHierarchical
		if o.flatten {
			cfg.Mode = config.ModeFlatten
		}
	}
	if changed("concurrent") {
		cfg.Concurrent = o.concurrent
	}
	if changed("workers") {
		cfg.Workers = o.workers
	}
	if changed("tolerance") {
		cfg.Tolerance = o.tolerance
	}
	if changed("seed") {
		cfg.Seed = o.seed
	}
	if changed("case-sensitive") {
		cfg.CaseSensitive = o.caseSensitive
	}
	if changed("verify-properties") {
		cfg.VerifyProperties = o.verifyProperties
	}
	if changed("symmetric-sd") {
		cfg.SymmetricSourceDrain = o.symmetricSourceDrain
	}
	if changed("output") {
		cfg.Output = o.output
	}
	if changed("metrics-out") {
		cfg.MetricsOut = o.metricsOut
	}
	cfg.Log.Level = validation.DefaultOr(strings.ToLower(os.Getenv("LOG_LEVEL")), cfg.Log.Level)
	cfg.Log.Format = validation.DefaultOr(strings.ToLower(os.Getenv("LOG_FORMAT")), cfg.Log.Format)
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runCompare(cmd *cobra.Command, g *globalOptions, o *compareOptions, args []string) error {
	cfg, err := buildConfig(cmd.Flags(), g, o, args)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel(), cfg.LogFormat()).
		With(logging.Component("cli"))
	reg := metrics.NewRegistry()

	report, err := lvs.Run(cmd.Context(), &cfg, logger, reg)
	if err != nil {
		logger.Error("comparison failed", logging.Error(err))
		return &exitError{code: ExitFailure, err: err}
	}

	if err := writeReport(cmd.OutOrStdout(), cfg.Output, report); err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	if cfg.MetricsOut != "" {
		if err := reg.WriteTextfile(cfg.MetricsOut); err != nil {
			return &exitError{code: ExitFailure, err: fmt.Errorf("write metrics: %w", err)}
		}
		logger.Debug("metrics written", logging.Path(cfg.MetricsOut))
	}

	if !report.Equivalent {
		return &exitError{code: ExitNotEquivalent}
	}
	return nil
}

func writeReport(stdout io.Writer, path string, report *compare.Report) error {
	if path == "" {
		_, err := io.WriteString(stdout, renderReport(stdout, report))
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if _, err := io.WriteString(f, renderReport(f, report)); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
