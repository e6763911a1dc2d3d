package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/db"
	"github.com/sells-group/outreach-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// the hot cache-lookup path.
var preparedStatements = map[string]string{
	"put_contact": `
		INSERT INTO contact_cache (key, email, first_name, last_name, title, source, enriched_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (key) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			title = EXCLUDED.title,
			source = EXCLUDED.source,
			enriched_at = now()`,
	"insert_batch_run": `INSERT INTO batch_runs (id, total, started_at) VALUES ($1, $2, $3)`,
	"finish_batch_run": `
		UPDATE batch_runs SET
			total = $1, enriched = $2, verified = $3, no_candidates = $4,
			errors = $5, avg_duration_ms = $6, finished_at = now()
		WHERE id = $7`,
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS contact_cache (
	key         TEXT PRIMARY KEY,
	email       TEXT NOT NULL,
	first_name  TEXT,
	last_name   TEXT,
	title       TEXT,
	source      TEXT NOT NULL,
	enriched_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS batch_runs (
	id              UUID PRIMARY KEY,
	total           INT NOT NULL DEFAULT 0,
	enriched        INT NOT NULL DEFAULT 0,
	verified        INT NOT NULL DEFAULT 0,
	no_candidates   INT NOT NULL DEFAULT 0,
	errors          INT NOT NULL DEFAULT 0,
	avg_duration_ms BIGINT NOT NULL DEFAULT 0,
	started_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at     TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_contact_cache_enriched_at ON contact_cache(enriched_at);
CREATE INDEX IF NOT EXISTS idx_batch_runs_started_at ON batch_runs(started_at);
`

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

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

func (s *PostgresStore) GetContact(ctx context.Context, key string, ttlDays int) (*ContactEntry, error) {
	query := `SELECT key, email, first_name, last_name, title, source, enriched_at FROM contact_cache WHERE key = $1`
	if ttlDays > 0 {
		query += fmt.Sprintf(" AND enriched_at > now() - interval '%d days'", ttlDays)
	}

	var e ContactEntry
	var firstName, lastName, title *string
	row := s.pool.QueryRow(ctx, query, key)
	if err := row.Scan(&e.Key, &e.Email, &firstName, &lastName, &title, &e.Source, &e.EnrichedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get contact %s", key)
	}
	if firstName != nil {
		e.FirstName = *firstName
	}
	if lastName != nil {
		e.LastName = *lastName
	}
	if title != nil {
		e.Title = *title
	}
	return &e, nil
}

func (s *PostgresStore) PutContact(ctx context.Context, entry ContactEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contact_cache (key, email, first_name, last_name, title, source, enriched_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (key) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			title = EXCLUDED.title,
			source = EXCLUDED.source,
			enriched_at = now()`,
		entry.Key, entry.Email, nilIfEmpty(entry.FirstName), nilIfEmpty(entry.LastName),
		nilIfEmpty(entry.Title), entry.Source,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: put contact %s", entry.Key)
	}
	return nil
}

func (s *PostgresStore) DeleteExpiredContacts(ctx context.Context, ttlDays int) (int, error) {
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM contact_cache WHERE enriched_at <= now() - interval '%d days'`, ttlDays),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired contacts")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) ContactStats(ctx context.Context, ttlDays int) (*ContactStats, error) {
	query := fmt.Sprintf(`
		SELECT
			count(*) FILTER (WHERE enriched_at > now() - interval '%d days'),
			count(*) FILTER (WHERE enriched_at <= now() - interval '%d days')
		FROM contact_cache`, ttlDays, ttlDays)

	var stats ContactStats
	if err := s.pool.QueryRow(ctx, query).Scan(&stats.Live, &stats.Expired); err != nil {
		return nil, eris.Wrap(err, "postgres: contact stats")
	}
	return &stats, nil
}

func (s *PostgresStore) CreateBatchRun(ctx context.Context, run model.BatchRun) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO batch_runs (id, total, started_at) VALUES ($1, $2, $3)`,
		run.ID, run.Total, run.StartedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: create batch run %s", run.ID)
	}
	return nil
}

func (s *PostgresStore) FinishBatchRun(ctx context.Context, summary model.BatchSummary) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE batch_runs SET
			total = $1, enriched = $2, verified = $3, no_candidates = $4,
			errors = $5, avg_duration_ms = $6, finished_at = now()
		WHERE id = $7`,
		summary.Total, summary.Enriched, summary.Verified, summary.NoCandidates,
		summary.Errors, summary.AvgDurationMs, summary.RunID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish batch run %s", summary.RunID)
	}
	return nil
}

func (s *PostgresStore) ListBatchRuns(ctx context.Context, filter RunFilter) ([]model.BatchRun, error) {
	query := `SELECT id, total, enriched, verified, no_candidates, errors, avg_duration_ms, started_at, finished_at
		FROM batch_runs ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list batch runs")
	}
	defer rows.Close()

	var runs []model.BatchRun
	for rows.Next() {
		var r model.BatchRun
		if err := rows.Scan(&r.ID, &r.Total, &r.Enriched, &r.Verified, &r.NoCandidates,
			&r.Errors, &r.AvgDurationMs, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan batch run")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// nilIfEmpty returns nil for empty strings, allowing NULL storage.
func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
