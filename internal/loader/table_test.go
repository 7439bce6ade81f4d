package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/state-dashboard/internal/model"
)

func TestParseRecordTable_Flat(t *testing.T) {
	recs, err := ParseRecordTable([][]string{
		{"name", "costOfLiving", "aqi", "safety"},
		{"Delhi", "High", "320", ""},
		{"", "", "", ""},
		{"Goa", "Low", "60.5"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, model.RecordFlat, recs[0].Kind)
	assert.Equal(t, "Delhi", recs[0].Key)
	assert.Equal(t, model.Label("High"), recs[0].Fields["costOfLiving"])
	assert.Equal(t, model.Number(320), recs[0].Fields["aqi"])
	assert.True(t, recs[0].Fields["safety"].IsNone())
	_, hasName := recs[0].Fields["name"]
	assert.False(t, hasName)

	assert.True(t, recs[1].Fields["safety"].IsNone(), "short row pads with no value")
}

func TestParseRecordTable_TimeSeries(t *testing.T) {
	recs, err := ParseRecordTable([][]string{
		{"State", "Year", "aqi"},
		{"Delhi", "2020", "40"},
		{"Goa", "2021", "60"},
		{"Delhi", "2021.0", "320"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	delhi := recs[0]
	assert.Equal(t, model.RecordTimeSeries, delhi.Kind)
	require.Len(t, delhi.Slices, 2)
	assert.Equal(t, 2021, delhi.Slices[1].Year)
	assert.Equal(t, model.Number(320), delhi.Slices[1].Fields["aqi"])
	assert.Equal(t, "Goa", recs[1].Key)
}

func TestParseRecordTable_Malformed(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
	}{
		{"empty", nil},
		{"no key column", [][]string{{"aqi"}, {"1"}}},
		{"missing key", [][]string{{"name", "aqi"}, {"", "1"}}},
		{"bad year", [][]string{{"state", "year", "aqi"}, {"Goa", "soon", "1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecordTable(tt.rows)
			assert.Error(t, err)
		})
	}
}

func TestLoad_CSVRecords(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "records.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,safety\nDelhi,Low\nGoa,High\n"), 0o644))

	docs, err := Load(context.Background(), testRouter(), Sources{
		Boundaries: filepath.Join("testdata", "states.geojson"),
		Records:    csvPath,
	})
	require.NoError(t, err)
	require.Len(t, docs.Records, 2)
	assert.Equal(t, model.Label("High"), docs.Records[1].Fields["safety"])
}

func TestLoad_XLSXRecordsOverHTTP(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, r := range [][]string{{"name", "aqi"}, {"Kerala", "35"}} {
		row := sheet.AddRow()
		for _, c := range r {
			row.AddCell().SetString(c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/records.xlsx" {
			_, _ = w.Write(buf.Bytes())
			return
		}
		http.ServeFile(w, r, filepath.Join("testdata", "states.geojson"))
	}))
	defer srv.Close()

	docs, err := Load(context.Background(), testRouter(), Sources{
		Boundaries: srv.URL + "/states.geojson",
		Records:    srv.URL + "/records.xlsx?v=2",
	})
	require.NoError(t, err)
	require.Len(t, docs.Records, 1)
	assert.Equal(t, model.Number(35), docs.Records[0].Fields["aqi"])
}

func zipShapefile(t *testing.T, shpPath string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	base := shpPath[:len(shpPath)-len(filepath.Ext(shpPath))]
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		src, err := os.Open(base + ext)
		require.NoError(t, err)
		w, err := zw.Create("india/" + filepath.Base(base) + ext)
		require.NoError(t, err)
		_, err = io.Copy(w, src)
		require.NoError(t, err)
		require.NoError(t, src.Close())
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoad_ZippedShapefileOverHTTP(t *testing.T) {
	archive := zipShapefile(t, writePointShapefile(t, []string{"Delhi", "Goa"}))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/states.zip" {
			_, _ = w.Write(archive)
			return
		}
		http.ServeFile(w, r, filepath.Join("testdata", "records_flat.json"))
	}))
	defer srv.Close()

	docs, err := Load(context.Background(), testRouter(), Sources{
		Boundaries: srv.URL + "/states.zip",
		Records:    srv.URL + "/records.json",
	})
	require.NoError(t, err)
	require.Len(t, docs.Regions, 2)
	assert.Equal(t, "Goa", docs.Regions[1].Name)
}

func TestLocatorExt(t *testing.T) {
	assert.Equal(t, ".zip", locatorExt("https://example.com/India.ZIP?token=x"))
	assert.Equal(t, ".csv", locatorExt("data/records.csv"))
	assert.Equal(t, ".json", locatorExt("ftp://host/pub/data.json#frag"))
	assert.Equal(t, "", locatorExt("records"))
}
