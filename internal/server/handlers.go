package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/state-dashboard/internal/geo"
	"github.com/sells-group/state-dashboard/internal/model"
	"github.com/sells-group/state-dashboard/internal/pipeline"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	ds := s.dash.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"dataset_id": ds.ID,
		"regions":    len(ds.Regions),
	})
}

// handleMap returns the selection as a GeoJSON FeatureCollection with the
// style for each region in its properties.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ds := s.dash.Snapshot()
	view := s.dash.Draw(ds, sel)

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, len(view.Features))}
	for i, f := range view.Features {
		fc.Features[i] = &geojson.Feature{
			Geometry: ds.Regions[i].Geometry,
			Properties: map[string]any{
				"name":      f.Name,
				"value":     f.Value,
				"has_data":  f.HasData,
				"style":     f.Style,
				"highlight": pipeline.HighlightStyle(f.Style.FillColor),
			},
		}
	}

	body, err := json.Marshal(fc)
	if err != nil {
		zap.L().Error("server: encode map", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to encode map")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Dataset-ID", view.DatasetID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type summaryResponse struct {
	pipeline.Summary
	Selection model.Selection   `json:"selection"`
	Legend    []geo.LegendEntry `json:"legend,omitempty"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view := s.dash.Redraw(sel)
	legend, _ := s.dash.Classifier().Legend(sel.Category)
	writeJSON(w, http.StatusOK, summaryResponse{Summary: view.Summary, Selection: sel, Legend: legend})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view := s.dash.Redraw(sel)
	rows := view.Rows
	if rows == nil {
		rows = []pipeline.Row{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"selection": sel,
		"rows":      rows,
	})
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tt, ok := s.dash.Tooltip(name, sel)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown region: "+name)
		return
	}
	writeJSON(w, http.StatusOK, tt)
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	ds := s.dash.Snapshot()
	years := ds.Years()
	if years == nil {
		years = []int{}
	}
	categories := ds.Categories()
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"years":            years,
		"categories":       categories,
		"default_category": s.opts.DefaultCategory,
		"default_year":     s.opts.DefaultYear,
		"center":           s.opts.Center,
		"zoom":             s.opts.Zoom,
	})
}
