package loader

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/state-dashboard/internal/model"
)

// ReadShapefile reads regions from an ESRI shapefile. The name comes from the
// DBF attribute nameField (matched case-insensitively).
func ReadShapefile(shpPath, nameField string) ([]model.Region, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := -1
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, nameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, eris.Errorf("loader: shapefile %s has no %q attribute", shpPath, nameField)
	}

	var regions []model.Region
	var unsupported, unnamed int
	for reader.Next() {
		_, shape := reader.Shape()
		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		if name == "" {
			unnamed++
		}

		g := shapeToGeom(shape)
		if g == nil {
			unsupported++
		}
		regions = append(regions, model.Region{Name: name, Geometry: g})
	}

	if unnamed > 0 {
		zap.L().Warn("loader: shapefile records without a name",
			zap.String("path", shpPath),
			zap.Int("count", unnamed),
		)
	}
	if unsupported > 0 {
		zap.L().Debug("loader: shapefile records without supported geometry",
			zap.String("path", shpPath),
			zap.Int("count", unsupported),
		)
	}
	return regions, nil
}

// shapeToGeom converts polygon and point shapes to go-geom geometries.
// Other shape types yield nil.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Polygon:
		return polygonToMultiPolygon(s.Parts, s.Points)
	case *shp.PolygonZ:
		return polygonToMultiPolygon(s.Parts, s.Points)
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(4326)
	default:
		return nil
	}
}

// polygonToMultiPolygon turns each shapefile part into its own polygon.
func polygonToMultiPolygon(parts []int32, points []shp.Point) geom.T {
	if len(parts) == 0 || len(points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || start >= end {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for _, p := range points[start:end] {
			flat = append(flat, p.X, p.Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("loader: skipping malformed polygon ring", zap.Int("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("loader: skipping malformed polygon part", zap.Int("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
