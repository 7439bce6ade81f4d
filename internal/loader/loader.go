// Package loader fetches and parses the boundaries and records documents
// that feed the dashboard.
package loader

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/state-dashboard/internal/fetcher"
	"github.com/sells-group/state-dashboard/internal/model"
)

// DefaultNameProperty is the GeoJSON property holding the state name in the
// India boundaries document.
const DefaultNameProperty = "st_nm"

// Document names used in LoadError.
const (
	DocBoundaries = "boundaries"
	DocRecords    = "records"
)

// Sources locates the two documents a dashboard needs.
type Sources struct {
	Boundaries   string
	Records      string
	NameProperty string // defaults to DefaultNameProperty
}

// Documents holds the parsed, not yet joined, inputs.
type Documents struct {
	Regions []model.Region
	Records []model.Record
}

// LoadError reports that a required document could not be fetched or
// parsed. It is fatal to the dashboard.
type LoadError struct {
	Document string // DocBoundaries or DocRecords
	Locator  string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s document %s: %v", e.Document, e.Locator, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load fetches both documents concurrently and parses them. If either fetch
// or parse fails the other is cancelled and a *LoadError is returned; no
// partial result is produced.
func Load(ctx context.Context, f fetcher.Fetcher, src Sources) (*Documents, error) {
	if src.NameProperty == "" {
		src.NameProperty = DefaultNameProperty
	}
	log := zap.L().With(zap.String("component", "loader"))
	start := time.Now()

	var docs Documents
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		regions, err := loadBoundaries(gctx, f, src)
		if err != nil {
			return &LoadError{Document: DocBoundaries, Locator: src.Boundaries, Err: err}
		}
		docs.Regions = regions
		return nil
	})

	g.Go(func() error {
		records, err := loadRecords(gctx, f, src.Records)
		if err != nil {
			return &LoadError{Document: DocRecords, Locator: src.Records, Err: err}
		}
		docs.Records = records
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("dataset load failed", zap.Error(err))
		return nil, err
	}

	log.Info("dataset loaded",
		zap.Int("regions", len(docs.Regions)),
		zap.Int("records", len(docs.Records)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &docs, nil
}

func loadBoundaries(ctx context.Context, f fetcher.Fetcher, src Sources) ([]model.Region, error) {
	switch locatorExt(src.Boundaries) {
	case ".shp":
		shpPath, err := fetcher.LocalPath(src.Boundaries)
		if err != nil {
			return nil, err
		}
		return ReadShapefile(shpPath, src.NameProperty)
	case ".zip":
		return loadZippedShapefile(ctx, f, src)
	}

	body, err := f.Download(ctx, src.Boundaries)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	return ParseBoundaries(body, src.NameProperty)
}

// loadZippedShapefile downloads a zipped shapefile to a scratch directory,
// extracts it and reads the first .shp inside.
func loadZippedShapefile(ctx context.Context, f fetcher.Fetcher, src Sources) ([]model.Region, error) {
	dir, err := os.MkdirTemp("", "dashboard-boundaries-*")
	if err != nil {
		return nil, eris.Wrap(err, "loader: create scratch dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	archive, err := fetcher.DownloadToFile(ctx, f, src.Boundaries, dir)
	if err != nil {
		return nil, err
	}
	files, err := fetcher.ExtractZIP(archive, filepath.Join(dir, "extracted"))
	if err != nil {
		return nil, err
	}
	shpPath, err := fetcher.FindByExt(files, ".shp")
	if err != nil {
		return nil, err
	}
	return ReadShapefile(shpPath, src.NameProperty)
}

func loadRecords(ctx context.Context, f fetcher.Fetcher, locator string) ([]model.Record, error) {
	body, err := f.Download(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	switch locatorExt(locator) {
	case ".csv":
		rows, err := fetcher.ReadCSV(ctx, body, fetcher.CSVOptions{TrimSpace: true})
		if err != nil {
			return nil, err
		}
		return ParseRecordTable(rows)
	case ".xlsx":
		rows, err := fetcher.ReadXLSX(body, fetcher.XLSXOptions{})
		if err != nil {
			return nil, err
		}
		return ParseRecordTable(rows)
	default:
		return ParseRecords(ctx, body)
	}
}

// locatorExt returns the lowercased extension of a locator's path, ignoring
// any query string or fragment.
func locatorExt(locator string) string {
	if i := strings.IndexAny(locator, "?#"); i >= 0 {
		locator = locator[:i]
	}
	return strings.ToLower(path.Ext(locator))
}
