package engine

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sitelint/sitelint/internal/model"
	"github.com/sitelint/sitelint/internal/store"
)

// Reconciler replays a scan's violations into the store: reset the
// confirmed flags, upsert each violation, prune what the scan did not
// reproduce. Runs for the same content item are serialized so concurrent
// scans cannot interleave reset and prune.
type Reconciler struct {
	store store.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReconciler creates a Reconciler over st.
func NewReconciler(st store.Store) *Reconciler {
	return &Reconciler{
		store: st,
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *Reconciler) lockFor(siteID, contentID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := siteID + "\x00" + contentID
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}

// Reconcile brings the stored issues for one content item in line with the
// violations from a completed scan. Idempotent: replaying the same scan
// leaves the store unchanged. Store errors abort and surface; a retry is
// safe because confirmed_present is recomputed from scratch each run.
func (r *Reconciler) Reconcile(ctx context.Context, meta model.ContentMeta, violations []model.Violation) error {
	lock := r.lockFor(meta.SiteID, meta.ContentID)
	lock.Lock()
	defer lock.Unlock()

	if err := r.store.ResetConfirmed(ctx, meta.SiteID, meta.ContentID); err != nil {
		return eris.Wrap(err, "reconcile: reset confirmed")
	}

	for _, v := range violations {
		rec, err := model.NewIssueRecord(meta, v, DiscoveredBy)
		if err != nil {
			return eris.Wrapf(err, "reconcile: build record for rule %q", v.RuleSlug)
		}
		if err := r.store.UpsertIssue(ctx, rec); err != nil {
			return eris.Wrapf(err, "reconcile: upsert issue for rule %q", v.RuleSlug)
		}
	}

	pruned, err := r.store.PruneUnconfirmed(ctx, meta.SiteID, meta.ContentID)
	if err != nil {
		return eris.Wrap(err, "reconcile: prune unconfirmed")
	}
	if pruned > 0 {
		zap.L().Debug("reconcile: pruned resolved issues",
			zap.String("site_id", meta.SiteID),
			zap.String("content_id", meta.ContentID),
			zap.Int("pruned", pruned),
		)
	}
	return nil
}
