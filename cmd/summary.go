package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/state-dashboard/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the summary and ranked table for a selection",
	Long: `Loads the configured documents, resolves the selection for every state and
prints the average, the count of states with a value and the ranked table.

Examples:
  # Default category from config
  summary

  # AQI for 2021, with live readings when a token is configured
  summary --year 2021 --category aqi --live`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initDashboard(cmd.Context(), "render")
		if err != nil {
			return err
		}

		year, _ := cmd.Flags().GetString("year")
		category, _ := cmd.Flags().GetString("category")
		sel, err := selectionFromFlags(year, category)
		if err != nil {
			return err
		}

		if live, _ := cmd.Flags().GetBool("live"); live {
			env.enrich(cmd.Context())
		}

		view := env.Dashboard.Redraw(sel)
		return printSummary(cmd.OutOrStdout(), view)
	},
}

func printSummary(out io.Writer, view pipeline.View) error {
	if _, err := fmt.Fprintln(out, view.Summary.Text); err != nil {
		return err
	}
	if len(view.Rows) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSTATE\tVALUE")
	for i, r := range view.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, r.Name, pipeline.FormatNumber(r.Value))
	}
	return w.Flush()
}

func init() {
	f := summaryCmd.Flags()
	f.String("year", "", "year to display (time-series data)")
	f.String("category", "", "category to display (default from config)")
	f.Bool("live", false, "patch in live AQI readings before summarizing")
	rootCmd.AddCommand(summaryCmd)
}
