package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore backs deployments with a shared database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, verifies connectivity and ensures the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: pg ping: %w", err)
	}
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS jobs (
		id               TEXT PRIMARY KEY,
		source           TEXT NOT NULL DEFAULT 'manual',
		title            TEXT NOT NULL,
		company          TEXT NOT NULL,
		location         TEXT NOT NULL,
		url              TEXT NOT NULL DEFAULT '',
		description      TEXT NOT NULL DEFAULT '',
		requirements     TEXT NOT NULL DEFAULT '',
		salary_min       DOUBLE PRECISION,
		salary_max       DOUBLE PRECISION,
		is_remote        BOOLEAN NOT NULL DEFAULT FALSE,
		visa_sponsorship BOOLEAN NOT NULL DEFAULT FALSE,
		fetched_at       TIMESTAMPTZ NOT NULL
	)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	if _, err := pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_jobs_url ON jobs(url)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: init index: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

const pgJobColumns = `id, source, title, company, location, url, description,
	requirements, salary_min, salary_max, is_remote, visa_sponsorship, fetched_at`

func (s *PostgresStore) scanRow(row pgx.Row) (*JobRecord, error) {
	var rec JobRecord
	var salMin, salMax *float64
	var fetched time.Time
	err := row.Scan(
		&rec.ID, &rec.Source, &rec.Title, &rec.Company, &rec.Location,
		&rec.URL, &rec.Description, &rec.Requirements,
		&salMin, &salMax, &rec.IsRemote, &rec.VisaSponsorship, &fetched,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan: %w", err)
	}
	rec.SalaryMin, rec.SalaryMax = salMin, salMax
	rec.FetchedAt = fetched
	return &rec, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*JobRecord, error) {
	return s.scanRow(s.pool.QueryRow(ctx,
		`SELECT `+pgJobColumns+` FROM jobs WHERE id = $1`, id))
}

func (s *PostgresStore) FindByIDOrURL(ctx context.Context, id, url string) (*JobRecord, error) {
	if url != "" {
		rec, err := s.scanRow(s.pool.QueryRow(ctx,
			`SELECT `+pgJobColumns+` FROM jobs WHERE url = $1`, url))
		if err == nil || !errors.Is(err, ErrNotFound) {
			return rec, err
		}
	}
	if id != "" {
		return s.Get(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *PostgresStore) InsertBatch(ctx context.Context, recs []JobRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range recs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO jobs (`+pgJobColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			rec.ID, rec.Source, rec.Title, rec.Company, rec.Location,
			rec.URL, rec.Description, rec.Requirements,
			rec.SalaryMin, rec.SalaryMax, rec.IsRemote, rec.VisaSponsorship,
			rec.FetchedAt.UTC(),
		); err != nil {
			return fmt.Errorf("store: insert %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateDescription(ctx context.Context, id, description string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET description = $1 WHERE id = $2`, description, id)
	if err != nil {
		return fmt.Errorf("store: update description: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec JobRecord) (bool, error) {
	existing, err := s.FindByIDOrURL(ctx, rec.ID, rec.URL)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if existing == nil {
		if err := s.InsertBatch(ctx, []JobRecord{rec}); err != nil {
			return false, err
		}
		return true, nil
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE jobs SET
			description  = CASE WHEN $1 != '' THEN $1 ELSE description END,
			requirements = CASE WHEN $2 != '' THEN $2 ELSE requirements END,
			salary_min   = COALESCE($3, salary_min),
			salary_max   = COALESCE($4, salary_max)
		 WHERE id = $5`,
		rec.Description, rec.Requirements, rec.SalaryMin, rec.SalaryMax, existing.ID)
	if err != nil {
		return false, fmt.Errorf("store: upsert update: %w", err)
	}
	return false, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgJobColumns+` FROM jobs ORDER BY fetched_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var recs []JobRecord
	for rows.Next() {
		var rec JobRecord
		var fetched time.Time
		if err := rows.Scan(
			&rec.ID, &rec.Source, &rec.Title, &rec.Company, &rec.Location,
			&rec.URL, &rec.Description, &rec.Requirements,
			&rec.SalaryMin, &rec.SalaryMax, &rec.IsRemote, &rec.VisaSponsorship,
			&fetched,
		); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		rec.FetchedAt = fetched
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
