package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/gradbook/internal/lessons"
	"github.com/born-ml/gradbook/internal/notebook"
	"github.com/born-ml/gradbook/internal/telemetry"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var outputDir string
	var metrics bool
	var continueOnError bool
	var seed uint64

	cmd := &cobra.Command{
		Use:   "run [CELL...]",
		Short: "Run notebook cells (all cells when none are named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("output-dir") {
				cfg.Notebook.OutputDir = outputDir
			}
			if flags.Changed("continue-on-error") {
				cfg.Notebook.ContinueOnError = continueOnError
			}
			if flags.Changed("seed") {
				cfg.Notebook.Seed = seed
			}
			if len(args) == 0 {
				args = cfg.Notebook.Cells
			}

			nb, err := lessons.Notebook()
			if err != nil {
				return err
			}

			runner := &notebook.Runner{Out: cmd.OutOrStdout(), Config: cfg}
			if metrics {
				runner.Metrics = telemetry.NewMetrics()
			}

			ctx := telemetry.WithLogger(cmd.Context(), logger)
			report, runErr := runner.Run(ctx, nb, args)
			if report != nil {
				fmt.Fprintln(cmd.OutOrStdout())
				if err := report.WriteSummary(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			if runner.Metrics != nil {
				if err := runner.Metrics.WriteText(cmd.ErrOrStderr()); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Write plots, graphs and the run report below this directory")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Print Prometheus metrics to stderr after the run")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep running after a cell fails")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (overrides config)")

	return cmd
}
