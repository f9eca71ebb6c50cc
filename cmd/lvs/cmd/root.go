package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Exit codes of the lvs binary
const (
	ExitEquivalent    = 0
	ExitNotEquivalent = 1
	ExitFailure       = 2
)

// Version is overridden at build time with -ldflags "-X ...cmd.Version=..."
var Version = "0.3.0"

// exitError carries a process exit code through cobra's error return
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "lvs",
		Short: "Layout versus schematic netlist comparison",
		Long: `Compare two SPICE netlists for structural equivalence. Cells are matched
by name, compared leaves first and replaced by opaque labels once they match.

Examples:
  lvs compare layout.sp schematic.sp                 # Compare top cells
  lvs compare --concurrent --workers 8 a.sp b.sp     # Compare cells in parallel
  lvs compare --flatten --top1 chip --top2 chip a.sp b.sp
  lvs hierarchy layout.sp                            # Show the cell tree`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format (json, text)")

	root.AddCommand(newCompareCmd(g))
	root.AddCommand(newHierarchyCmd(g))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, stdout, stderr io.Writer, args []string) int {
	root := newRootCmd()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitEquivalent
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintln(stderr, "Error:", exit.err)
		}
		return exit.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return ExitFailure
}
