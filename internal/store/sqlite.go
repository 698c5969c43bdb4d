package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sitelint/sitelint/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS issues (
	id                TEXT PRIMARY KEY,
	site_id           TEXT NOT NULL,
	content_id        TEXT NOT NULL,
	content_type      TEXT NOT NULL,
	rule_slug         TEXT NOT NULL,
	severity          TEXT NOT NULL,
	snippet           TEXT NOT NULL,
	snippet_hash      TEXT NOT NULL,
	confirmed_present INTEGER NOT NULL DEFAULT 1,
	ignored           INTEGER NOT NULL DEFAULT 0,
	ignored_scope     TEXT NOT NULL DEFAULT 'none',
	ignored_by        TEXT NOT NULL DEFAULT '',
	ignored_at        DATETIME,
	ignored_comment   TEXT NOT NULL DEFAULT '',
	discovered_by     TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL,
	UNIQUE (site_id, content_id, content_type, rule_slug, snippet_hash)
);

CREATE INDEX IF NOT EXISTS idx_issues_site_content ON issues(site_id, content_id);
CREATE INDEX IF NOT EXISTS idx_issues_site_rule ON issues(site_id, rule_slug);
CREATE INDEX IF NOT EXISTS idx_issues_site_ignored ON issues(site_id, ignored);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const issueColumns = `id, site_id, content_id, content_type, rule_slug, severity, snippet,
	confirmed_present, ignored, ignored_scope, ignored_by, ignored_at, ignored_comment,
	discovered_by, created_at`

func (s *SQLiteStore) FindIssues(ctx context.Context, siteID, contentID string) ([]model.IssueRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE site_id = ? AND content_id = ? ORDER BY created_at, id`,
		siteID, contentID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: find issues %s/%s", siteID, contentID)
	}
	defer rows.Close()
	return scanIssueRows(rows)
}

func (s *SQLiteStore) ListIssues(ctx context.Context, f Filter) ([]model.IssueRecord, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}
	if f.SiteID != "" {
		add("site_id = ?", f.SiteID)
	}
	if f.ContentID != "" {
		add("content_id = ?", f.ContentID)
	}
	if f.RuleSlug != "" {
		add("rule_slug = ?", f.RuleSlug)
	}
	if f.Severity != "" {
		add("severity = ?", string(f.Severity))
	}
	if f.Ignored != nil {
		add("ignored = ?", boolToInt(*f.Ignored))
	}

	q := `SELECT ` + issueColumns + ` FROM issues`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
		if f.Offset > 0 {
			q += ` OFFSET ?`
			args = append(args, f.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list issues")
	}
	defer rows.Close()
	return scanIssueRows(rows)
}

func (s *SQLiteStore) UpsertIssue(ctx context.Context, rec *model.IssueRecord) error {
	key := rec.Key()
	if err := key.Validate(); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO issues (
			id, site_id, content_id, content_type, rule_slug, severity, snippet,
			snippet_hash, confirmed_present, ignored, ignored_scope, discovered_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?)
		ON CONFLICT (site_id, content_id, content_type, rule_slug, snippet_hash)
		DO UPDATE SET
			severity = excluded.severity,
			snippet = excluded.snippet,
			confirmed_present = 1`,
		rec.ID, rec.SiteID, rec.ContentID, rec.ContentType, rec.RuleSlug,
		string(rec.Severity), rec.Snippet, key.SnippetHash(),
		boolToInt(rec.Ignored), string(rec.IgnoredScope), rec.DiscoveredBy, rec.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert issue %s/%s", rec.ContentID, rec.RuleSlug)
	}
	return nil
}

func (s *SQLiteStore) ResetConfirmed(ctx context.Context, siteID, contentID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE issues SET confirmed_present = 0 WHERE site_id = ? AND content_id = ?`,
		siteID, contentID,
	)
	return eris.Wrapf(err, "sqlite: reset confirmed %s/%s", siteID, contentID)
}

func (s *SQLiteStore) PruneUnconfirmed(ctx context.Context, siteID, contentID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM issues WHERE site_id = ? AND content_id = ? AND confirmed_present = 0`,
		siteID, contentID,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: prune %s/%s", siteID, contentID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune rows affected")
	}
	return int(n), nil
}

func (s *SQLiteStore) SetIgnored(ctx context.Context, id string, ignored bool, scope model.IgnoreScope, by, comment string) error {
	var ignoredAt any
	if ignored {
		ignoredAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE issues SET ignored = ?, ignored_scope = ?, ignored_by = ?, ignored_at = ?, ignored_comment = ?
		WHERE id = ?`,
		boolToInt(ignored), string(scope), by, ignoredAt, comment, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set ignored %s", id)
	}
	return checkRowsAffected(res, "issue", id)
}

func (s *SQLiteStore) DeleteIssue(ctx context.Context, key model.NaturalKey) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM issues
		WHERE site_id = ? AND content_id = ? AND content_type = ? AND rule_slug = ? AND snippet_hash = ?`,
		key.SiteID, key.ContentID, key.ContentType, key.RuleSlug, key.SnippetHash(),
	)
	return eris.Wrapf(err, "sqlite: delete issue %s/%s", key.ContentID, key.RuleSlug)
}

func (s *SQLiteStore) DeleteAllFor(ctx context.Context, siteID, contentID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM issues WHERE site_id = ? AND content_id = ?`,
		siteID, contentID,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: delete all %s/%s", siteID, contentID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete all rows affected")
	}
	return int(n), nil
}

func (s *SQLiteStore) ListContentIDs(ctx context.Context, siteID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT content_id FROM issues WHERE site_id = ? ORDER BY content_id`,
		siteID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list content ids %s", siteID)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan content id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: list content ids")
}

func (s *SQLiteStore) CountStats(ctx context.Context, siteID string, totalRules int) (*model.Stats, error) {
	stats := &model.Stats{SiteID: siteID, GeneratedAt: time.Now().UTC()}

	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN severity = 'error' AND ignored = 0 THEN 1 END),
			COUNT(CASE WHEN severity = 'warning' AND ignored = 0 THEN 1 END),
			COUNT(CASE WHEN severity = 'notice' AND ignored = 0 THEN 1 END),
			COUNT(CASE WHEN ignored = 1 THEN 1 END),
			COUNT(DISTINCT content_id),
			COUNT(DISTINCT CASE WHEN ignored = 0 THEN content_id || '|' || rule_slug END)
		FROM issues WHERE site_id = ?`,
		siteID,
	)
	var failingPairs int
	if err := row.Scan(&stats.Errors, &stats.Warnings, &stats.Notices,
		&stats.Ignored, &stats.PostsScanned, &failingPairs); err != nil {
		return nil, eris.Wrapf(err, "sqlite: count stats %s", siteID)
	}
	if totalRules > 0 {
		stats.PassedTests = stats.PostsScanned*totalRules - failingPairs
	}
	return stats, nil
}

func scanIssueRows(rows *sql.Rows) ([]model.IssueRecord, error) {
	var out []model.IssueRecord
	for rows.Next() {
		var rec model.IssueRecord
		var confirmed, ignored int
		var scope string
		var ignoredAt sql.NullTime
		if err := rows.Scan(
			&rec.ID, &rec.SiteID, &rec.ContentID, &rec.ContentType, &rec.RuleSlug,
			&rec.Severity, &rec.Snippet, &confirmed, &ignored, &scope,
			&rec.IgnoredBy, &ignoredAt, &rec.IgnoredComment, &rec.DiscoveredBy, &rec.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan issue row")
		}
		rec.ConfirmedPresent = confirmed != 0
		rec.Ignored = ignored != 0
		rec.IgnoredScope = model.IgnoreScope(scope)
		if ignoredAt.Valid {
			t := ignoredAt.Time
			rec.IgnoredAt = &t
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate issue rows")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", kind, id)
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s not found: %s", kind, id)
	}
	return nil
}
