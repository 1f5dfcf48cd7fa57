package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/haqei/situation-engine/internal/catalog"
	"github.com/haqei/situation-engine/internal/codec"
	"github.com/haqei/situation-engine/internal/config"
	"github.com/haqei/situation-engine/internal/features"
	"github.com/haqei/situation-engine/internal/logging"
	"github.com/haqei/situation-engine/internal/orchestrator"
	"github.com/haqei/situation-engine/internal/ranker"
	"github.com/haqei/situation-engine/internal/situation"
	"github.com/haqei/situation-engine/internal/usage"
)

// #region app

// app holds the configuration and process-scoped resources shared by the
// subcommands.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	closers []func() error
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath, func(c *config.Config) {
		if opts.logLevel != "" {
			c.LogLevel = opts.logLevel
		}
		if opts.dbPath != "" {
			c.DBPath = opts.dbPath
		}
	})
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger}, nil
}

// Close releases resources in reverse acquisition order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

// #endregion app

// #region wiring

// loadCatalog returns the configured catalog, falling back to the built-in
// fallback records when the SQLite store cannot serve it.
func (a *app) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if a.cfg.CatalogSource != config.CatalogSQLite {
		return catalog.LoadOrFallback(ctx, catalog.EmbeddedLoader{})
	}
	store, err := catalog.NewStore(a.cfg.DBPath)
	if err != nil {
		return catalog.Fallback(), fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	defer store.Close()
	return catalog.LoadOrFallback(ctx, store)
}

func (a *app) extractor() (*features.Extractor, error) {
	fcfg := features.ExtractorConfig{Dim: a.cfg.FeatureDim}
	if a.cfg.VectorizerAddr == "" {
		return features.NewExtractor(features.NewHashingVectorizer(a.cfg.FeatureDim), fcfg), nil
	}
	client, err := codec.NewClient(a.cfg.VectorizerAddr)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return features.NewExtractor(client, fcfg), nil
}

// analysisLog opens the analysis log when a database is configured.
func (a *app) analysisLog() (*logging.AnalysisLog, error) {
	if a.cfg.DBPath == "" {
		return nil, nil
	}
	l, err := logging.OpenAnalysisLog(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, l.Close)
	return l, nil
}

// pipeline is a fully wired orchestrator plus the state it shares with the
// transport.
type pipeline struct {
	orch        *orchestrator.Orchestrator
	degradation *ranker.Degradation
	usage       *usage.Statistics
	log         *logging.AnalysisLog
}

func (a *app) pipeline(ctx context.Context, reg prometheus.Registerer) (*pipeline, error) {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		a.logger.Warn("catalog unavailable, serving fallback records", zap.Error(err), zap.Int("records", cat.Len()))
	}
	ext, err := a.extractor()
	if err != nil {
		return nil, err
	}
	alog, err := a.analysisLog()
	if err != nil {
		return nil, err
	}

	p := &pipeline{degradation: ranker.NewDegradation(), usage: usage.NewStatistics(), log: alog}
	deps := orchestrator.Deps{
		Classifier: situation.NewClassifier(nil),
		Ranker:     ranker.New(cat, p.degradation, p.usage, a.cfg.Ranker, a.logger.Named("ranker")),
		Extractor:  ext,
		Metrics:    orchestrator.NewMetrics(reg),
		Logger:     a.logger,
	}
	if alog != nil {
		deps.Sink = alog
	}
	p.orch = orchestrator.New(deps, a.cfg.Orchestrator())
	return p, nil
}

// #endregion wiring

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
