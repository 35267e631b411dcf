package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/gradbook/internal/lessons"
)

func newListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notebook cells",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			type row struct {
				Name  string `json:"name"`
				Title string `json:"title"`
			}
			cells := lessons.Cells()
			rows := make([]row, len(cells))
			for i, c := range cells {
				rows[i] = row{Name: c.Name, Title: c.Title}
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tNAME\tTITLE")
			fmt.Fprintln(tw, "-\t----\t-----")
			for i, r := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, r.Name, r.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
