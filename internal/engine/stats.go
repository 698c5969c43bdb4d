package engine

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sitelint/sitelint/internal/model"
	"github.com/sitelint/sitelint/internal/store"
)

// DefaultStatsTTL is how long a computed summary stays fresh.
const DefaultStatsTTL = 24 * time.Hour

type cachedStats struct {
	stats     *model.Stats
	expiresAt time.Time
}

// StatsAggregator computes site-wide issue counts, cached per site. The
// counts only move when a scan or reviewer decision changes the store, so
// a long TTL is safe; callers that just mutated the store should
// Invalidate first.
type StatsAggregator struct {
	store      store.Store
	totalRules int
	ttl        time.Duration
	now        func() time.Time

	mu           sync.Mutex
	cache        map[string]cachedStats
	contentTypes []string
}

// NewStatsAggregator creates an aggregator with the given TTL; ttl <= 0
// falls back to DefaultStatsTTL.
func NewStatsAggregator(st store.Store, totalRules int, ttl time.Duration) *StatsAggregator {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsAggregator{
		store:      st,
		totalRules: totalRules,
		ttl:        ttl,
		now:        time.Now,
		cache:      make(map[string]cachedStats),
	}
}

// Summary returns the site's counts, recomputing from the store when the
// cached copy has expired.
func (a *StatsAggregator) Summary(ctx context.Context, siteID string) (*model.Stats, error) {
	a.mu.Lock()
	if entry, ok := a.cache[siteID]; ok && a.now().Before(entry.expiresAt) {
		a.mu.Unlock()
		return entry.stats, nil
	}
	a.mu.Unlock()

	stats, err := a.store.CountStats(ctx, siteID, a.totalRules)
	if err != nil {
		return nil, eris.Wrapf(err, "stats: count for site %q", siteID)
	}

	a.mu.Lock()
	a.cache[siteID] = cachedStats{stats: stats, expiresAt: a.now().Add(a.ttl)}
	a.mu.Unlock()
	return stats, nil
}

// Invalidate drops every cached summary.
func (a *StatsAggregator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = make(map[string]cachedStats)
}

// SetContentTypes records which content types are scannable. Changing the
// set clears the cache, since every cached count was computed over the old
// scan population.
func (a *StatsAggregator) SetContentTypes(types []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if slices.Equal(a.contentTypes, types) {
		return
	}
	a.contentTypes = slices.Clone(types)
	a.cache = make(map[string]cachedStats)
}
