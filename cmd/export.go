package main

import (
	"bytes"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/state-dashboard/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the summary and table for a selection to xlsx or csv",
	Long: `Examples:
  # Workbook with summary, ranked table and per-state colors
  export --output india-aqi-2021.xlsx --year 2021 --category aqi

  # Ranked table only
  export --output safety.csv --category safety`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		formatFlag, _ := cmd.Flags().GetString("format")

		var format export.Format
		var err error
		if formatFlag != "" {
			format, err = export.ParseFormat(formatFlag)
		} else {
			format, err = export.FormatForPath(output)
		}
		if err != nil {
			return err
		}

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

		var buf bytes.Buffer
		if err := export.Write(&buf, format, view); err != nil {
			return err
		}
		if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
			return eris.Wrapf(err, "export: write %s", output)
		}

		zap.L().Info("export complete",
			zap.String("output", output),
			zap.String("format", string(format)),
			zap.Int("rows", len(view.Rows)),
		)
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringP("output", "o", "", "output file path (.xlsx or .csv)")
	f.String("format", "", "output format: xlsx or csv (default from --output extension)")
	f.String("year", "", "year to export (time-series data)")
	f.String("category", "", "category to export (default from config)")
	f.Bool("live", false, "patch in live AQI readings before exporting")
	_ = exportCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportCmd)
}
