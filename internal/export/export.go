// Package export writes a drawn view as a spreadsheet or CSV table.
package export

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/state-dashboard/internal/pipeline"
)

// Format is an output file format.
type Format string

// Supported formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Sheet names in XLSX output.
const (
	SheetSummary = "Summary"
	SheetTable   = "Table"
	SheetRegions = "Regions"
)

// ParseFormat accepts "xlsx" or "csv" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", eris.Errorf("export: unsupported format %q", s)
	}
}

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Write encodes view in the given format.
func Write(w io.Writer, f Format, view pipeline.View) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, view)
	case FormatCSV:
		return WriteCSV(w, view)
	default:
		return eris.Errorf("export: unsupported format %q", f)
	}
}

// WriteCSV writes the ranked table: rank, region, value.
func WriteCSV(w io.Writer, view pipeline.View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "region", view.Selection.Category}); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for i, r := range view.Rows {
		rec := []string{strconv.Itoa(i + 1), r.Name, strconv.FormatFloat(r.Value, 'f', -1, 64)}
		if err := cw.Write(rec); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX writes a workbook with the summary, the ranked table and every
// region's value and fill color.
func WriteXLSX(w io.Writer, view pipeline.View) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet(SheetSummary)
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addStrings(summary, "Title", view.Summary.Title)
	addStrings(summary, "Category", view.Selection.Category)
	if view.Selection.Year != 0 {
		row := summary.AddRow()
		row.AddCell().SetString("Year")
		row.AddCell().SetInt(view.Selection.Year)
	}
	row := summary.AddRow()
	row.AddCell().SetString("Average")
	if view.Summary.HasAverage {
		row.AddCell().SetFloat(view.Summary.Average)
	} else {
		row.AddCell().SetString("N/A")
	}
	row = summary.AddRow()
	row.AddCell().SetString("Count")
	row.AddCell().SetInt(view.Summary.Count)
	addStrings(summary, "Dataset", view.DatasetID)

	table, err := f.AddSheet(SheetTable)
	if err != nil {
		return eris.Wrap(err, "export: add table sheet")
	}
	addStrings(table, "Rank", "Region", "Value")
	for i, r := range view.Rows {
		row := table.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().SetString(r.Name)
		row.AddCell().SetFloat(r.Value)
	}

	regions, err := f.AddSheet(SheetRegions)
	if err != nil {
		return eris.Wrap(err, "export: add regions sheet")
	}
	addStrings(regions, "Region", "Value", "Color", "Has Data")
	for _, feat := range view.Features {
		row := regions.AddRow()
		row.AddCell().SetString(feat.Name)
		if v, ok := feat.Value.Float(); ok {
			row.AddCell().SetFloat(v)
		} else {
			row.AddCell().SetString(feat.Value.String())
		}
		row.AddCell().SetString(feat.Style.FillColor)
		row.AddCell().SetBool(feat.HasData)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addStrings(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
