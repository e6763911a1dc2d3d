package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/model"
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
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contact_cache (
	key         TEXT PRIMARY KEY,
	email       TEXT NOT NULL,
	first_name  TEXT,
	last_name   TEXT,
	title       TEXT,
	source      TEXT NOT NULL,
	enriched_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS batch_runs (
	id              TEXT PRIMARY KEY,
	total           INTEGER NOT NULL DEFAULT 0,
	enriched        INTEGER NOT NULL DEFAULT 0,
	verified        INTEGER NOT NULL DEFAULT 0,
	no_candidates   INTEGER NOT NULL DEFAULT 0,
	errors          INTEGER NOT NULL DEFAULT 0,
	avg_duration_ms INTEGER NOT NULL DEFAULT 0,
	started_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at     DATETIME
);

CREATE INDEX IF NOT EXISTS idx_contact_cache_enriched_at ON contact_cache(enriched_at);
CREATE INDEX IF NOT EXISTS idx_batch_runs_started_at ON batch_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetContact(ctx context.Context, key string, ttlDays int) (*ContactEntry, error) {
	query := `SELECT key, email, first_name, last_name, title, source, enriched_at FROM contact_cache WHERE key = ?`
	if ttlDays > 0 {
		query += fmt.Sprintf(` AND enriched_at > datetime('now', '-%d days')`, ttlDays)
	}

	var e ContactEntry
	var firstName, lastName, title sql.NullString
	row := s.db.QueryRowContext(ctx, query, key)
	if err := row.Scan(&e.Key, &e.Email, &firstName, &lastName, &title, &e.Source, &e.EnrichedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get contact %s", key)
	}
	e.FirstName = firstName.String
	e.LastName = lastName.String
	e.Title = title.String
	return &e, nil
}

func (s *SQLiteStore) PutContact(ctx context.Context, entry ContactEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_cache (key, email, first_name, last_name, title, source, enriched_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (key) DO UPDATE SET
			email = excluded.email,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			title = excluded.title,
			source = excluded.source,
			enriched_at = datetime('now')`,
		entry.Key, entry.Email, entry.FirstName, entry.LastName, entry.Title, entry.Source,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: put contact %s", entry.Key)
	}
	return nil
}

func (s *SQLiteStore) DeleteExpiredContacts(ctx context.Context, ttlDays int) (int, error) {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM contact_cache WHERE enriched_at <= datetime('now', '-%d days')`, ttlDays),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired contacts")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) ContactStats(ctx context.Context, ttlDays int) (*ContactStats, error) {
	query := fmt.Sprintf(`
		SELECT
			count(CASE WHEN enriched_at > datetime('now', '-%d days') THEN 1 END),
			count(CASE WHEN enriched_at <= datetime('now', '-%d days') THEN 1 END)
		FROM contact_cache`, ttlDays, ttlDays)

	var stats ContactStats
	if err := s.db.QueryRowContext(ctx, query).Scan(&stats.Live, &stats.Expired); err != nil {
		return nil, eris.Wrap(err, "sqlite: contact stats")
	}
	return &stats, nil
}

func (s *SQLiteStore) CreateBatchRun(ctx context.Context, run model.BatchRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batch_runs (id, total, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Total, run.StartedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: create batch run %s", run.ID)
	}
	return nil
}

func (s *SQLiteStore) FinishBatchRun(ctx context.Context, summary model.BatchSummary) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE batch_runs SET
			total = ?, enriched = ?, verified = ?, no_candidates = ?,
			errors = ?, avg_duration_ms = ?, finished_at = ?
		WHERE id = ?`,
		summary.Total, summary.Enriched, summary.Verified, summary.NoCandidates,
		summary.Errors, summary.AvgDurationMs, time.Now().UTC(), summary.RunID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish batch run %s", summary.RunID)
	}
	return nil
}

func (s *SQLiteStore) ListBatchRuns(ctx context.Context, filter RunFilter) ([]model.BatchRun, error) {
	query := `SELECT id, total, enriched, verified, no_candidates, errors, avg_duration_ms, started_at, finished_at
		FROM batch_runs ORDER BY started_at DESC LIMIT ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args := []any{limit}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list batch runs")
	}
	defer rows.Close()

	var runs []model.BatchRun
	for rows.Next() {
		var r model.BatchRun
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Total, &r.Enriched, &r.Verified, &r.NoCandidates,
			&r.Errors, &r.AvgDurationMs, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan batch run")
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
