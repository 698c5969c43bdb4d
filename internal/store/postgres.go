package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sitelint/sitelint/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock implements
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS issues (
	id                TEXT PRIMARY KEY,
	site_id           TEXT NOT NULL,
	content_id        TEXT NOT NULL,
	content_type      TEXT NOT NULL,
	rule_slug         TEXT NOT NULL,
	severity          TEXT NOT NULL,
	snippet           TEXT NOT NULL,
	snippet_hash      TEXT NOT NULL,
	confirmed_present BOOLEAN NOT NULL DEFAULT TRUE,
	ignored           BOOLEAN NOT NULL DEFAULT FALSE,
	ignored_scope     TEXT NOT NULL DEFAULT 'none',
	ignored_by        TEXT NOT NULL DEFAULT '',
	ignored_at        TIMESTAMPTZ,
	ignored_comment   TEXT NOT NULL DEFAULT '',
	discovered_by     TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL,
	UNIQUE (site_id, content_id, content_type, rule_slug, snippet_hash)
);

CREATE INDEX IF NOT EXISTS idx_issues_site_content ON issues(site_id, content_id);
CREATE INDEX IF NOT EXISTS idx_issues_site_rule ON issues(site_id, rule_slug);
CREATE INDEX IF NOT EXISTS idx_issues_site_ignored ON issues(site_id, ignored);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const pgIssueColumns = `id, site_id, content_id, content_type, rule_slug, severity, snippet,
	confirmed_present, ignored, ignored_scope, ignored_by, ignored_at, ignored_comment,
	discovered_by, created_at`

func (s *PostgresStore) FindIssues(ctx context.Context, siteID, contentID string) ([]model.IssueRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgIssueColumns+` FROM issues WHERE site_id = $1 AND content_id = $2 ORDER BY created_at, id`,
		siteID, contentID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: find issues %s/%s", siteID, contentID)
	}
	defer rows.Close()
	return scanPgIssueRows(rows)
}

func (s *PostgresStore) ListIssues(ctx context.Context, f Filter) ([]model.IssueRecord, error) {
	var conds []string
	var args []any
	add := func(col string, arg any) {
		args = append(args, arg)
		conds = append(conds, col+" = $"+strconv.Itoa(len(args)))
	}
	if f.SiteID != "" {
		add("site_id", f.SiteID)
	}
	if f.ContentID != "" {
		add("content_id", f.ContentID)
	}
	if f.RuleSlug != "" {
		add("rule_slug", f.RuleSlug)
	}
	if f.Severity != "" {
		add("severity", string(f.Severity))
	}
	if f.Ignored != nil {
		add("ignored", *f.Ignored)
	}

	q := `SELECT ` + pgIssueColumns + ` FROM issues`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
		if f.Offset > 0 {
			args = append(args, f.Offset)
			q += ` OFFSET $` + strconv.Itoa(len(args))
		}
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list issues")
	}
	defer rows.Close()
	return scanPgIssueRows(rows)
}

func (s *PostgresStore) UpsertIssue(ctx context.Context, rec *model.IssueRecord) error {
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

	_, err := s.pool.Exec(ctx, `
		INSERT INTO issues (
			id, site_id, content_id, content_type, rule_slug, severity, snippet,
			snippet_hash, confirmed_present, ignored, ignored_scope, discovered_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, $10, $11, $12)
		ON CONFLICT (site_id, content_id, content_type, rule_slug, snippet_hash)
		DO UPDATE SET
			severity = excluded.severity,
			snippet = excluded.snippet,
			confirmed_present = TRUE`,
		rec.ID, rec.SiteID, rec.ContentID, rec.ContentType, rec.RuleSlug,
		string(rec.Severity), rec.Snippet, key.SnippetHash(),
		rec.Ignored, string(rec.IgnoredScope), rec.DiscoveredBy, rec.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert issue %s/%s", rec.ContentID, rec.RuleSlug)
	}
	return nil
}

func (s *PostgresStore) ResetConfirmed(ctx context.Context, siteID, contentID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE issues SET confirmed_present = FALSE WHERE site_id = $1 AND content_id = $2`,
		siteID, contentID,
	)
	return eris.Wrapf(err, "postgres: reset confirmed %s/%s", siteID, contentID)
}

func (s *PostgresStore) PruneUnconfirmed(ctx context.Context, siteID, contentID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM issues WHERE site_id = $1 AND content_id = $2 AND confirmed_present = FALSE`,
		siteID, contentID,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: prune %s/%s", siteID, contentID)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) SetIgnored(ctx context.Context, id string, ignored bool, scope model.IgnoreScope, by, comment string) error {
	var ignoredAt any
	if ignored {
		ignoredAt = time.Now().UTC()
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE issues SET ignored = $1, ignored_scope = $2, ignored_by = $3, ignored_at = $4, ignored_comment = $5
		WHERE id = $6`,
		ignored, string(scope), by, ignoredAt, comment, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set ignored %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: issue not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteIssue(ctx context.Context, key model.NaturalKey) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM issues
		WHERE site_id = $1 AND content_id = $2 AND content_type = $3 AND rule_slug = $4 AND snippet_hash = $5`,
		key.SiteID, key.ContentID, key.ContentType, key.RuleSlug, key.SnippetHash(),
	)
	return eris.Wrapf(err, "postgres: delete issue %s/%s", key.ContentID, key.RuleSlug)
}

func (s *PostgresStore) DeleteAllFor(ctx context.Context, siteID, contentID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM issues WHERE site_id = $1 AND content_id = $2`,
		siteID, contentID,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: delete all %s/%s", siteID, contentID)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) ListContentIDs(ctx context.Context, siteID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT content_id FROM issues WHERE site_id = $1 ORDER BY content_id`,
		siteID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list content ids %s", siteID)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan content id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "postgres: list content ids")
}

func (s *PostgresStore) CountStats(ctx context.Context, siteID string, totalRules int) (*model.Stats, error) {
	stats := &model.Stats{SiteID: siteID, GeneratedAt: time.Now().UTC()}

	row := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE severity = 'error' AND NOT ignored),
			COUNT(*) FILTER (WHERE severity = 'warning' AND NOT ignored),
			COUNT(*) FILTER (WHERE severity = 'notice' AND NOT ignored),
			COUNT(*) FILTER (WHERE ignored),
			COUNT(DISTINCT content_id),
			COUNT(DISTINCT content_id || '|' || rule_slug) FILTER (WHERE NOT ignored)
		FROM issues WHERE site_id = $1`,
		siteID,
	)
	var failingPairs int
	if err := row.Scan(&stats.Errors, &stats.Warnings, &stats.Notices,
		&stats.Ignored, &stats.PostsScanned, &failingPairs); err != nil {
		return nil, eris.Wrapf(err, "postgres: count stats %s", siteID)
	}
	if totalRules > 0 {
		stats.PassedTests = stats.PostsScanned*totalRules - failingPairs
	}
	return stats, nil
}

func scanPgIssueRows(rows pgx.Rows) ([]model.IssueRecord, error) {
	var out []model.IssueRecord
	for rows.Next() {
		var rec model.IssueRecord
		var scope string
		var ignoredAt *time.Time
		if err := rows.Scan(
			&rec.ID, &rec.SiteID, &rec.ContentID, &rec.ContentType, &rec.RuleSlug,
			&rec.Severity, &rec.Snippet, &rec.ConfirmedPresent, &rec.Ignored, &scope,
			&rec.IgnoredBy, &ignoredAt, &rec.IgnoredComment, &rec.DiscoveredBy, &rec.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan issue row")
		}
		rec.IgnoredScope = model.IgnoreScope(scope)
		rec.IgnoredAt = ignoredAt
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate issue rows")
}
