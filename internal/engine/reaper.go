package engine

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sitelint/sitelint/internal/content"
	"github.com/sitelint/sitelint/internal/resilience"
	"github.com/sitelint/sitelint/internal/store"
)

// ReaperConfig controls batching and pacing of the orphan sweep.
type ReaperConfig struct {
	// BatchSize is the number of content ids checked between pacing
	// pauses. Default: 50.
	BatchSize int

	// BatchesPerSecond limits how many batches start per second, keeping
	// the sweep from hammering the content source. Default: 1.
	BatchesPerSecond float64

	// Retry governs the per-id existence lookup.
	Retry resilience.RetryConfig
}

func (c ReaperConfig) withDefaults() ReaperConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.BatchesPerSecond <= 0 {
		c.BatchesPerSecond = 1
	}
	return c
}

// Report summarizes one reaper run.
type Report struct {
	Checked int `json:"checked"`
	Deleted int `json:"deleted"`
	Skipped int `json:"skipped"`
}

// Reaper deletes issues whose content item no longer exists at the source.
// Each run is independent and idempotent: an interrupted sweep simply
// leaves orphans for the next run.
type Reaper struct {
	source content.Source
	store  store.Store
	siteID string
	cfg    ReaperConfig
}

// NewReaper creates a Reaper for one site.
func NewReaper(source content.Source, st store.Store, siteID string, cfg ReaperConfig) *Reaper {
	return &Reaper{
		source: source,
		store:  st,
		siteID: siteID,
		cfg:    cfg.withDefaults(),
	}
}

// Run sweeps every content id that has stored issues, checks it against
// the source, and deletes the issues of ids that are gone. A failed lookup
// or delete never aborts the sweep: the id is counted as skipped and the
// sweep moves on.
func (r *Reaper) Run(ctx context.Context) (Report, error) {
	var report Report

	ids, err := r.store.ListContentIDs(ctx, r.siteID)
	if err != nil {
		return report, eris.Wrap(err, "reaper: list content ids")
	}

	limiter := rate.NewLimiter(rate.Limit(r.cfg.BatchesPerSecond), 1)
	for start := 0; start < len(ids); start += r.cfg.BatchSize {
		if err := limiter.Wait(ctx); err != nil {
			return report, eris.Wrap(err, "reaper: pacing interrupted")
		}

		end := start + r.cfg.BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		for _, id := range ids[start:end] {
			report.Checked++
			r.reapOne(ctx, id, &report)
		}
	}

	zap.L().Info("reaper: sweep complete",
		zap.String("site_id", r.siteID),
		zap.Int("checked", report.Checked),
		zap.Int("deleted", report.Deleted),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

func (r *Reaper) reapOne(ctx context.Context, contentID string, report *Report) {
	exists, err := resilience.DoVal(ctx, r.cfg.Retry, func(ctx context.Context) (bool, error) {
		return r.source.Exists(ctx, contentID)
	})
	if err != nil {
		zap.L().Warn("reaper: existence check failed, skipping",
			zap.String("content_id", contentID),
			zap.Error(err),
		)
		report.Skipped++
		return
	}
	if exists {
		return
	}

	deleted, err := r.store.DeleteAllFor(ctx, r.siteID, contentID)
	if err != nil {
		zap.L().Warn("reaper: delete failed, skipping",
			zap.String("content_id", contentID),
			zap.Error(err),
		)
		report.Skipped++
		return
	}
	report.Deleted += deleted
}
