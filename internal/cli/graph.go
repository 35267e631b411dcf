package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/born-ml/gradbook/internal/lessons"
	"github.com/born-ml/gradbook/internal/notebook"
	"github.com/born-ml/gradbook/internal/telemetry"
)

func newGraphCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "graph CELL",
		Short: "Print the DOT source of the graphs a cell draws",
		Long: "Runs CELL with its text output discarded and prints every graph it renders " +
			"as Graphviz DOT, e.g. `gradbook graph graph_viz | dot -Tsvg > graph.svg`.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			nb, err := lessons.Notebook()
			if err != nil {
				return err
			}
			cell, ok := nb.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", notebook.ErrUnknownCell, args[0])
			}

			cfg.Notebook.OutputDir = ""
			env := notebook.NewEnv(cell.Name, io.Discard, cfg)
			env.Logger = telemetry.WithCell(logger, cell.Name)

			graphs := 0
			env.OnGraph = func(_, dot string) {
				graphs++
				fmt.Fprintln(cmd.OutOrStdout(), dot)
			}
			if err := notebook.RunCell(telemetry.WithLogger(cmd.Context(), env.Logger), cell, env); err != nil {
				return fmt.Errorf("cell %s: %w", cell.Name, err)
			}
			if graphs == 0 {
				return fmt.Errorf("cell %s draws no graph", cell.Name)
			}
			return nil
		},
	}
}
