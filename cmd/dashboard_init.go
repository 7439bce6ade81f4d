package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/state-dashboard/internal/config"
	"github.com/sells-group/state-dashboard/internal/fetcher"
	"github.com/sells-group/state-dashboard/internal/geo"
	"github.com/sells-group/state-dashboard/internal/loader"
	"github.com/sells-group/state-dashboard/internal/model"
	"github.com/sells-group/state-dashboard/internal/pipeline"
	"github.com/sells-group/state-dashboard/pkg/aqi"
	"github.com/sells-group/state-dashboard/pkg/metrics"
)

// dashboardEnv holds everything the serve/summary/export/check commands
// need once the dataset is loaded.
type dashboardEnv struct {
	Docs      *loader.Documents
	Dashboard *pipeline.Dashboard
	Metrics   *metrics.Manager
	AQI       pipeline.AQISource // nil when no token is configured
}

// initDashboard loads both documents, joins them and builds the dashboard.
// A load failure is returned as is; there is no partial dashboard.
func initDashboard(ctx context.Context, mode string) (*dashboardEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	m := metrics.NewManager(metrics.WithNamespace(cfg.Metrics.Namespace))

	classifier, err := initClassifier(cfg.Rules)
	if err != nil {
		return nil, err
	}

	router := fetcher.NewRouter(fetcher.HTTPOptions{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		Attempts:  1,
	}, fetcher.FTPOptions{
		Timeout: time.Duration(cfg.Fetch.FTPTimeoutSecs) * time.Second,
	})

	start := time.Now()
	docs, err := loader.Load(ctx, router, loader.Sources{
		Boundaries:   cfg.Data.Boundaries,
		Records:      cfg.Data.Records,
		NameProperty: cfg.Data.NameProperty,
	})
	m.RecordLoad(err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}

	env := &dashboardEnv{
		Docs:      docs,
		Dashboard: pipeline.NewDashboard(pipeline.Assemble(docs), classifier, m),
		Metrics:   m,
	}
	if cfg.AQI.Enabled() {
		env.AQI = newAQIClient(cfg.AQI)
	}
	return env, nil
}

func initClassifier(rc config.RulesConfig) (*geo.Classifier, error) {
	if rc.Path == "" {
		return geo.DefaultClassifier(), nil
	}
	rules, err := geo.LoadRules(rc.Path)
	if err != nil {
		return nil, err
	}
	c, err := geo.NewClassifier(rules)
	if err != nil {
		return nil, eris.Wrap(err, "color rules")
	}
	zap.L().Info("loaded color rules", zap.String("path", rc.Path))
	return c, nil
}

func newAQIClient(ac config.AQIConfig) *aqi.Client {
	opts := []aqi.Option{
		aqi.WithBaseURL(ac.BaseURL),
		aqi.WithRateLimit(ac.RateLimit),
	}
	if ac.TimeoutSecs > 0 {
		opts = append(opts, aqi.WithTimeout(time.Duration(ac.TimeoutSecs)*time.Second))
	}
	return aqi.NewClient(ac.Token, opts...)
}

// enrich runs one live AQI pass and publishes the result. It is a no-op
// when enrichment is disabled, and an abandoned pass publishes nothing.
func (e *dashboardEnv) enrich(ctx context.Context) {
	if e.AQI == nil {
		return
	}
	opts := pipeline.EnrichOptions{
		Field:       cfg.AQI.Field,
		Concurrency: cfg.AQI.Concurrency,
		Stations:    cfg.AQI.Stations,
	}
	if e.Metrics != nil {
		opts.Metrics = e.Metrics
	}
	res := pipeline.Enrich(ctx, e.Dashboard.Snapshot(), e.AQI, opts)
	if res.Err != nil {
		return
	}
	e.Dashboard.Replace(res.Dataset)
}

// selectionFromFlags builds the selection for one-shot commands, falling
// back to the configured default view.
func selectionFromFlags(year, category string) (model.Selection, error) {
	if category == "" {
		category = cfg.View.DefaultCategory
	}
	sel, err := model.ParseSelection(year, category)
	if err != nil {
		return model.Selection{}, err
	}
	if year == "" {
		sel = sel.WithYear(cfg.View.DefaultYear)
	}
	return sel, nil
}
