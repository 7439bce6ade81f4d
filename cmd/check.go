package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/state-dashboard/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report which states found a matching record",
	Long: `Loads both documents and reports the join: states with a record, states
that will render as "no data", and record keys no state matched. Useful for
spotting spelling differences between the boundaries and records documents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initDashboard(cmd.Context(), "render")
		if err != nil {
			return err
		}

		ds := env.Dashboard.Snapshot()
		rep := pipeline.Report(ds.Regions, ds.Records)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		return printReport(cmd.OutOrStdout(), rep)
	},
}

func printReport(out io.Writer, rep pipeline.JoinReport) error {
	total := len(rep.Matched) + len(rep.Missed) + rep.Unnamed
	_, err := fmt.Fprintf(out, "matched %d of %d states\n", len(rep.Matched), total)
	if err != nil {
		return err
	}
	if len(rep.Missed) > 0 {
		fmt.Fprintf(out, "no record: %s\n", strings.Join(rep.Missed, ", "))
	}
	if rep.Unnamed > 0 {
		fmt.Fprintf(out, "unnamed features: %d\n", rep.Unnamed)
	}
	if len(rep.Unused) > 0 {
		fmt.Fprintf(out, "unmatched records: %s\n", strings.Join(rep.Unused, ", "))
	}
	return nil
}

func init() {
	checkCmd.Flags().Bool("json", false, "print the report as JSON")
	rootCmd.AddCommand(checkCmd)
}
