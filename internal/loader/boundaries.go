package loader

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/state-dashboard/internal/model"
)

// ParseBoundaries decodes a GeoJSON FeatureCollection into regions named by
// the string property nameProp. A feature without that property becomes a
// region with an empty name, which joins to no record.
func ParseBoundaries(r io.Reader, nameProp string) ([]model.Region, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "loader: read boundaries")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "loader: parse boundaries")
	}

	regions := make([]model.Region, 0, len(fc.Features))
	var unnamed []int
	for i, feat := range fc.Features {
		if feat == nil {
			return nil, eris.Errorf("loader: feature %d is null", i)
		}
		name, _ := feat.Properties[nameProp].(string)
		if name == "" {
			unnamed = append(unnamed, i)
		}
		regions = append(regions, model.Region{Name: name, Geometry: feat.Geometry})
	}
	if len(unnamed) > 0 {
		zap.L().Warn("loader: boundary features without a name",
			zap.String("property", nameProp),
			zap.Ints("features", unnamed),
		)
	}
	return regions, nil
}
