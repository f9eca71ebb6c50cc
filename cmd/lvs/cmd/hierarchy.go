package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-lvs/pkg/config"
	"github.com/dd0wney/cluso-lvs/pkg/logging"
	"github.com/dd0wney/cluso-lvs/pkg/spice"
)

func newHierarchyCmd(g *globalOptions) *cobra.Command {
	var (
		top           string
		caseSensitive bool
	)

	c := &cobra.Command{
		Use:   "hierarchy <netlist>",
		Short: "Print the cell tree of a netlist",
		Long: `Read a SPICE netlist and print the instance tree below its top cell.
Repeated instances of the same cell are folded into one line.

Examples:
  lvs hierarchy layout.sp
  lvs hierarchy --top chip layout.sp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.CaseSensitive = caseSensitive

			base := logging.FromEnv(cmd.ErrOrStderr())
			if g.logLevel != "" {
				base.SetLevel(logging.ParseLevel(g.logLevel))
			}
			if g.logFormat != "" {
				base = logging.New(cmd.ErrOrStderr(), base.GetLevel(), logging.ParseFormat(g.logFormat))
			}
			logger := base.With(logging.Component("cli"))

			reader, err := spice.NewReader(cfg.ReaderOptions(logger))
			if err != nil {
				return fmt.Errorf("build reader: %w", err)
			}
			n, err := reader.ReadFile(args[0], top)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := newReportStyles(out)
			fmt.Fprintln(out, st.title.Render(fmt.Sprintf("%s (%d cells)", n.Name, len(n.ValidCells()))))
			n.DumpHierarchy(out)
			return nil
		},
	}

	c.Flags().StringVar(&top, "top", "", "top cell (default: the netlist's top-level statements)")
	c.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "treat names case-sensitively")
	return c
}
