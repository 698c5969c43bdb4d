// Package store persists issue records under their natural key. Two
// backends implement the same interface: SQLite for embedded use and
// Postgres for multi-site deployments.
package store

import (
	"context"

	"github.com/sitelint/sitelint/internal/model"
)

// Filter specifies criteria for listing issues.
type Filter struct {
	SiteID    string         `json:"site_id,omitempty"`
	ContentID string         `json:"content_id,omitempty"`
	RuleSlug  string         `json:"rule_slug,omitempty"`
	Severity  model.Severity `json:"severity,omitempty"`
	Ignored   *bool          `json:"ignored,omitempty"`
	Limit     int            `json:"limit,omitempty"`
	Offset    int            `json:"offset,omitempty"`
}

// Store defines the persistence interface for reconciled issues. The
// natural key (site, content, type, rule, snippet) is enforced as a
// uniqueness constraint by every backend.
type Store interface {
	// FindIssues returns every record for one content item.
	FindIssues(ctx context.Context, siteID, contentID string) ([]model.IssueRecord, error)

	// ListIssues returns records matching the filter, newest first.
	ListIssues(ctx context.Context, f Filter) ([]model.IssueRecord, error)

	// UpsertIssue inserts rec, or, when its natural key already exists,
	// refreshes severity and snippet and sets confirmed_present. Ignore
	// state on an existing record is never touched.
	UpsertIssue(ctx context.Context, rec *model.IssueRecord) error

	// ResetConfirmed clears confirmed_present for one content item. The
	// reconciler calls this before replaying a scan's violations.
	ResetConfirmed(ctx context.Context, siteID, contentID string) error

	// PruneUnconfirmed deletes records for one content item that the
	// latest scan did not reproduce. Returns the number deleted.
	PruneUnconfirmed(ctx context.Context, siteID, contentID string) (int, error)

	// SetIgnored records a reviewer decision on one issue.
	SetIgnored(ctx context.Context, id string, ignored bool, scope model.IgnoreScope, by, comment string) error

	// DeleteIssue removes the record with the given natural key.
	DeleteIssue(ctx context.Context, key model.NaturalKey) error

	// DeleteAllFor removes every record for one content item. Returns the
	// number deleted.
	DeleteAllFor(ctx context.Context, siteID, contentID string) (int, error)

	// ListContentIDs returns the distinct content ids with issues on one
	// site. The orphan reaper iterates this set.
	ListContentIDs(ctx context.Context, siteID string) ([]string, error)

	// CountStats computes site-wide counts. totalRules is the registry
	// size, needed to derive the passed-tests figure.
	CountStats(ctx context.Context, siteID string, totalRules int) (*model.Stats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
