package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the default single-file backend.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the jobs database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initJobsSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// initJobsSchema creates the jobs table if it doesn't exist.
func initJobsSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS jobs (
		id               TEXT PRIMARY KEY,
		source           TEXT NOT NULL DEFAULT 'manual',
		title            TEXT NOT NULL,
		company          TEXT NOT NULL,
		location         TEXT NOT NULL,
		url              TEXT NOT NULL DEFAULT '',
		description      TEXT NOT NULL DEFAULT '',
		requirements     TEXT NOT NULL DEFAULT '',
		salary_min       REAL,
		salary_max       REAL,
		is_remote        INTEGER NOT NULL DEFAULT 0,
		visa_sponsorship INTEGER NOT NULL DEFAULT 0,
		fetched_at       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_url ON jobs(url)`)
	return err
}

const jobColumns = `id, source, title, company, location, url, description,
	requirements, salary_min, salary_max, is_remote, visa_sponsorship, fetched_at`

func scanJob(row *sql.Row) (*JobRecord, error) {
	var rec JobRecord
	var salMin, salMax sql.NullFloat64
	var fetched string
	err := row.Scan(
		&rec.ID, &rec.Source, &rec.Title, &rec.Company, &rec.Location,
		&rec.URL, &rec.Description, &rec.Requirements,
		&salMin, &salMax, &rec.IsRemote, &rec.VisaSponsorship, &fetched,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan: %w", err)
	}
	if salMin.Valid {
		rec.SalaryMin = &salMin.Float64
	}
	if salMax.Valid {
		rec.SalaryMax = &salMax.Float64
	}
	rec.FetchedAt, _ = time.Parse(time.RFC3339, fetched)
	return &rec, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*JobRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

func (s *SQLiteStore) FindByIDOrURL(ctx context.Context, id, url string) (*JobRecord, error) {
	if url != "" {
		rec, err := scanJob(s.db.QueryRowContext(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE url = ?`, url))
		if err == nil || !errors.Is(err, ErrNotFound) {
			return rec, err
		}
	}
	if id != "" {
		return s.Get(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *SQLiteStore) InsertBatch(ctx context.Context, recs []JobRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		if err := insertJob(ctx, tx, rec); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func insertJob(ctx context.Context, tx *sql.Tx, rec JobRecord) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO jobs (`+jobColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.Title, rec.Company, rec.Location,
		rec.URL, rec.Description, rec.Requirements,
		nullable(rec.SalaryMin), nullable(rec.SalaryMax),
		rec.IsRemote, rec.VisaSponsorship,
		rec.FetchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: insert %s: %w", rec.ID, err)
	}
	return nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func (s *SQLiteStore) UpdateDescription(ctx context.Context, id, description string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET description = ? WHERE id = ?`, description, id)
	if err != nil {
		return fmt.Errorf("store: update description: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert backs the manual import endpoint: existing records keep their id
// and get the provided fields refreshed; unknown records are inserted.
func (s *SQLiteStore) Upsert(ctx context.Context, rec JobRecord) (bool, error) {
	existing, err := s.FindByIDOrURL(ctx, rec.ID, rec.URL)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if existing == nil {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return false, fmt.Errorf("store: begin: %w", err)
		}
		defer tx.Rollback()
		if err := insertJob(ctx, tx, rec); err != nil {
			return false, err
		}
		return true, tx.Commit()
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE jobs SET
			description  = CASE WHEN ?1 != '' THEN ?1 ELSE description END,
			requirements = CASE WHEN ?2 != '' THEN ?2 ELSE requirements END,
			salary_min   = COALESCE(?3, salary_min),
			salary_max   = COALESCE(?4, salary_max)
		 WHERE id = ?5`,
		rec.Description, rec.Requirements,
		nullable(rec.SalaryMin), nullable(rec.SalaryMax), existing.ID)
	if err != nil {
		return false, fmt.Errorf("store: upsert update: %w", err)
	}
	return false, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY fetched_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var recs []JobRecord
	for rows.Next() {
		var rec JobRecord
		var salMin, salMax sql.NullFloat64
		var fetched string
		if err := rows.Scan(
			&rec.ID, &rec.Source, &rec.Title, &rec.Company, &rec.Location,
			&rec.URL, &rec.Description, &rec.Requirements,
			&salMin, &salMax, &rec.IsRemote, &rec.VisaSponsorship, &fetched,
		); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		if salMin.Valid {
			v := salMin.Float64
			rec.SalaryMin = &v
		}
		if salMax.Valid {
			v := salMax.Float64
			rec.SalaryMax = &v
		}
		rec.FetchedAt, _ = time.Parse(time.RFC3339, fetched)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
