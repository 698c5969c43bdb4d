package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelint/sitelint/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testRecord(t *testing.T, contentID, slug, snippet string) *model.IssueRecord {
	t.Helper()
	rec, err := model.NewIssueRecord(
		model.ContentMeta{SiteID: "site-1", ContentID: contentID, ContentType: "page"},
		model.Violation{RuleSlug: slug, Severity: model.SeverityError, Snippet: snippet},
		"scanner",
	)
	require.NoError(t, err)
	return rec
}

func TestSQLite_UpsertAndFind(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := testRecord(t, "c1", "empty-heading", "<h1></h1>")
	require.NoError(t, st.UpsertIssue(ctx, rec))
	assert.NotEmpty(t, rec.ID)

	got, err := st.FindIssues(ctx, "site-1", "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "empty-heading", got[0].RuleSlug)
	assert.True(t, got[0].ConfirmedPresent)
	assert.False(t, got[0].Ignored)
	assert.Equal(t, model.IgnoreScopeNone, got[0].IgnoredScope)
}

func TestSQLite_UpsertSameKeyNoDuplicate(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first := testRecord(t, "c1", "empty-heading", "<h1></h1>")
	require.NoError(t, st.UpsertIssue(ctx, first))

	second := testRecord(t, "c1", "empty-heading", "<h1></h1>")
	second.Severity = model.SeverityWarning
	require.NoError(t, st.UpsertIssue(ctx, second))

	got, err := st.FindIssues(ctx, "site-1", "c1")
	require.NoError(t, err)
	require.Len(t, got, 1, "same natural key must stay one record")
	assert.Equal(t, first.ID, got[0].ID, "original record id survives")
	assert.Equal(t, model.SeverityWarning, got[0].Severity, "severity refreshed")
}

func TestSQLite_UpsertPreservesIgnoreState(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := testRecord(t, "c1", "empty-heading", "<h1></h1>")
	require.NoError(t, st.UpsertIssue(ctx, rec))
	require.NoError(t, st.SetIgnored(ctx, rec.ID, true, model.IgnoreScopeUser, "alice", "known issue"))

	again := testRecord(t, "c1", "empty-heading", "<h1></h1>")
	require.NoError(t, st.UpsertIssue(ctx, again))

	got, err := st.FindIssues(ctx, "site-1", "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Ignored, "upsert must not clear a reviewer decision")
	assert.Equal(t, model.IgnoreScopeUser, got[0].IgnoredScope)
	assert.Equal(t, "alice", got[0].IgnoredBy)
	assert.NotNil(t, got[0].IgnoredAt)
	assert.Equal(t, "known issue", got[0].IgnoredComment)
}

func TestSQLite_DifferentSnippetIsNewRecord(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertIssue(ctx, testRecord(t, "c1", "empty-heading", "<h1></h1>")))
	require.NoError(t, st.UpsertIssue(ctx, testRecord(t, "c1", "empty-heading", `<h1 class="x"></h1>`)))

	got, err := st.FindIssues(ctx, "site-1", "c1")
	require.NoError(t, err)
	assert.Len(t, got, 2, "snippet is part of the natural key")
}

func TestSQLite_ResetAndPrune(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	keep := testRecord(t, "c1", "empty-heading", "<h1></h1>")
	drop := testRecord(t, "c1", "empty-link", `<a href="/x"></a>`)
	require.NoError(t, st.UpsertIssue(ctx, keep))
	require.NoError(t, st.UpsertIssue(ctx, drop))

	require.NoError(t, st.ResetConfirmed(ctx, "site-1", "c1"))
	// Only the heading issue is reproduced by the "new scan".
	require.NoError(t, st.UpsertIssue(ctx, testRecord(t, "c1", "empty-heading", "<h1></h1>")))

	n, err := st.PruneUnconfirmed(ctx, "site-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.FindIssues(ctx, "site-1", "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "empty-heading", got[0].RuleSlug)
}

func TestSQLite_PruneDoesNotCrossContent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertIssue(ctx, testRecord(t, "c1", "empty-heading", "<h1></h1>")))
	require.NoError(t, st.UpsertIssue(ctx, testRecord(t, "c2", "empty-heading", "<h1></h1>")))

	require.NoError(t, st.ResetConfirmed(ctx, "site-1", "c1"))
	n, err := st.PruneUnconfirmed(ctx, "site-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.FindIssues(ctx, "site-1", "c2")
	require.NoError(t, err)
	assert.Len(t, got, 1, "other content items untouched")
}

func TestSQLite_SetIgnored_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.SetIgnored(context.Background(), "missing-id", true, model.IgnoreScopeUser, "bob", "")
	assert.Error(t, err)
}

func TestSQLite_DeleteIssueByNaturalKey(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := testRecord(t, "c1", "empty-heading", "<h1></h1>")
	require.NoError(t, st.UpsertIssue(ctx, rec))
	require.NoError(t, st.DeleteIssue(ctx, rec.Key()))

	got, err := st.FindIssues(ctx, "site-1", "c1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_DeleteAllForAndListContentIDs(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertIssue(ctx, testRecord(t, "c1", "empty-heading", "<h1></h1>")))
	require.NoError(t, st.UpsertIssue(ctx, testRecord(t, "c1", "empty-link", `<a href="/x"></a>`)))
	require.NoError(t, st.UpsertIssue(ctx, testRecord(t, "c2", "empty-heading", "<h1></h1>")))

	ids, err := st.ListContentIDs(ctx, "site-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids)

	n, err := st.DeleteAllFor(ctx, "site-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ids, err = st.ListContentIDs(ctx, "site-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, ids)
}

func TestSQLite_ListIssues_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	errRec := testRecord(t, "c1", "empty-heading", "<h1></h1>")
	require.NoError(t, st.UpsertIssue(ctx, errRec))

	warn := testRecord(t, "c2", "slider-present", `<div class="swiper">x</div>`)
	warn.Severity = model.SeverityWarning
	require.NoError(t, st.UpsertIssue(ctx, warn))
	require.NoError(t, st.SetIgnored(ctx, warn.ID, true, model.IgnoreScopeGlobal, "carol", ""))

	bySeverity, err := st.ListIssues(ctx, Filter{SiteID: "site-1", Severity: model.SeverityWarning})
	require.NoError(t, err)
	require.Len(t, bySeverity, 1)
	assert.Equal(t, "slider-present", bySeverity[0].RuleSlug)

	ignored := true
	byIgnored, err := st.ListIssues(ctx, Filter{SiteID: "site-1", Ignored: &ignored})
	require.NoError(t, err)
	require.Len(t, byIgnored, 1)
	assert.Equal(t, "carol", byIgnored[0].IgnoredBy)

	byRule, err := st.ListIssues(ctx, Filter{SiteID: "site-1", RuleSlug: "empty-heading"})
	require.NoError(t, err)
	assert.Len(t, byRule, 1)
}

func TestSQLite_CountStats(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertIssue(ctx, testRecord(t, "c1", "empty-heading", "<h1></h1>")))
	require.NoError(t, st.UpsertIssue(ctx, testRecord(t, "c1", "empty-heading", `<h1 id="b"></h1>`)))

	warn := testRecord(t, "c2", "slider-present", `<div class="swiper">x</div>`)
	warn.Severity = model.SeverityWarning
	require.NoError(t, st.UpsertIssue(ctx, warn))

	ign := testRecord(t, "c2", "empty-link", `<a href="/x"></a>`)
	require.NoError(t, st.UpsertIssue(ctx, ign))
	require.NoError(t, st.SetIgnored(ctx, ign.ID, true, model.IgnoreScopeUser, "dave", ""))

	stats, err := st.CountStats(ctx, "site-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Errors)
	assert.Equal(t, 1, stats.Warnings)
	assert.Equal(t, 0, stats.Notices)
	assert.Equal(t, 1, stats.Ignored)
	assert.Equal(t, 2, stats.PostsScanned)
	// 2 posts * 10 rules - 2 failing (content,rule) pairs.
	assert.Equal(t, 18, stats.PassedTests)
}
