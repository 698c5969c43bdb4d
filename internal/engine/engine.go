// Package engine ties the content source, rule registry, and issue store
// together. Engine is the single context object: construct one per site
// configuration and share it across commands and the serve surface.
package engine

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sitelint/sitelint/internal/content"
	"github.com/sitelint/sitelint/internal/dom"
	"github.com/sitelint/sitelint/internal/model"
	"github.com/sitelint/sitelint/internal/rules"
	"github.com/sitelint/sitelint/internal/store"
)

// DiscoveredBy is recorded on every issue the scanner creates.
const DiscoveredBy = "scanner"

// Engine coordinates a scan: fetch markup, evaluate rules, reconcile the
// resulting violations into the store.
type Engine struct {
	source     content.Source
	executor   *rules.Executor
	store      store.Store
	reconciler *Reconciler
	totalRules int
}

// New creates an Engine over the given collaborators. The registry's rule
// count is captured for stats derivation.
func New(source content.Source, registry *rules.Registry, st store.Store) *Engine {
	return &Engine{
		source:     source,
		executor:   rules.NewExecutor(registry),
		store:      st,
		reconciler: NewReconciler(st),
		totalRules: len(registry.Rules()),
	}
}

// TotalRules returns the number of registered rules.
func (e *Engine) TotalRules() int {
	return e.totalRules
}

// Store exposes the underlying issue store for read-side commands.
func (e *Engine) Store() store.Store {
	return e.store
}

// Scan evaluates every rule against one content item and reconciles the
// outcome into the store. A failed fetch or parse fails the whole scan and
// leaves the stored issues untouched: stale issues are better than issues
// pruned on bad input.
func (e *Engine) Scan(ctx context.Context, contentID string) (*model.ScanResult, error) {
	markup, meta, err := e.source.GetMarkup(ctx, contentID)
	if err != nil {
		return nil, eris.Wrapf(err, "engine: get markup for %q", contentID)
	}

	doc, err := dom.Parse(markup)
	if err != nil {
		return nil, eris.Wrapf(err, "engine: parse content %q", contentID)
	}

	result := e.executor.Run(doc, meta)

	if err := e.reconciler.Reconcile(ctx, meta, result.Violations); err != nil {
		return nil, eris.Wrapf(err, "engine: reconcile content %q", contentID)
	}

	zap.L().Info("engine: scan complete",
		zap.String("site_id", meta.SiteID),
		zap.String("content_id", contentID),
		zap.Int("violations", len(result.Violations)),
	)
	return result, nil
}
