package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sitelint/sitelint/internal/content"
	"github.com/sitelint/sitelint/internal/engine"
	"github.com/sitelint/sitelint/internal/resilience"
	"github.com/sitelint/sitelint/internal/rules"
	"github.com/sitelint/sitelint/internal/store"
)

// scanEnv holds the initialized store, content source, and engine needed
// by the scan/batch/reap/serve commands.
type scanEnv struct {
	Store  store.Store
	Source *content.FSSource
	Engine *engine.Engine
	Stats  *engine.StatsAggregator
}

// Close releases resources held by the scan environment.
func (se *scanEnv) Close() {
	if se.Store != nil {
		_ = se.Store.Close()
	}
}

// initStore opens the configured store backend without migrating.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return store.NewSQLite(cfg.Store.Path)
	}
}

// initEnv sets up the store, content source, rule registry, and engine.
// Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*scanEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	keywords, err := rules.LoadKeywords(cfg.Rules.KeywordsFile)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "load keyword lists")
	}

	source := content.NewFSSource(cfg.Content.Root, cfg.Site.ID)

	opts := rules.Options{
		Keywords:       keywords,
		MinWordCount:   cfg.Rules.MinWordCount,
		LinkTextMinLen: cfg.Rules.LinkTextMinLen,
	}
	if cfg.Rules.MediaChecks {
		opts.Media = content.NewFSMediaSource(cfg.Content.Root)
	} else {
		zap.L().Debug("media checks disabled, animated-image rule not registered")
	}
	registry := rules.NewRegistry(opts)

	eng := engine.New(source, registry, st)
	stats := engine.NewStatsAggregator(st, len(registry.Rules()), cfg.Stats.TTL())
	stats.SetContentTypes(cfg.Content.Types)

	zap.L().Info("engine initialized",
		zap.String("site_id", cfg.Site.ID),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Int("rules", len(registry.Rules())),
	)

	return &scanEnv{
		Store:  st,
		Source: source,
		Engine: eng,
		Stats:  stats,
	}, nil
}

// newReaper builds the orphan reaper from config.
func (se *scanEnv) newReaper() *engine.Reaper {
	return engine.NewReaper(se.Source, se.Store, cfg.Site.ID, engine.ReaperConfig{
		BatchSize:        cfg.Reaper.BatchSize,
		BatchesPerSecond: cfg.Reaper.BatchesPerSecond,
		Retry:            resilience.DefaultRetryConfig(),
	})
}
