// Package store persists ingested job records. Two backends implement the
// same contract: SQLite (default, file DSN) and Postgres (postgres:// DSN).
package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("job not found")

// JobRecord is the canonical ingested-job entity.
//
// Display fields are never empty: ingestion fills placeholders before
// insert. SalaryMin <= SalaryMax is not enforced; providers occasionally
// ship odd bounds and we store them as-is.
type JobRecord struct {
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	URL             string    `json:"url"`
	Description     string    `json:"description"`
	Requirements    string    `json:"requirements,omitempty"`
	SalaryMin       *float64  `json:"salary_min"`
	SalaryMax       *float64  `json:"salary_max"`
	IsRemote        bool      `json:"is_remote"`
	VisaSponsorship bool      `json:"visa_sponsorship"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// Store is the persistence contract consumed by ingestion and enrichment.
type Store interface {
	// Get fetches a record by id; ErrNotFound if absent.
	Get(ctx context.Context, id string) (*JobRecord, error)

	// FindByIDOrURL looks a record up by URL first (the primary dedup
	// key), then by id. Either argument may be empty.
	FindByIDOrURL(ctx context.Context, id, url string) (*JobRecord, error)

	// InsertBatch persists all records in a single transaction:
	// all-or-nothing.
	InsertBatch(ctx context.Context, recs []JobRecord) error

	// UpdateDescription overwrites a record's description and commits.
	UpdateDescription(ctx context.Context, id, description string) error

	// Upsert inserts rec, or updates the provided fields of the record
	// matching its URL or id. Reports whether a new row was created.
	Upsert(ctx context.Context, rec JobRecord) (created bool, err error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]JobRecord, error)

	Close() error
}

// Open selects a backend by DSN scheme: postgres:// or postgresql:// for
// pgx, anything else is treated as a SQLite file path.
func Open(ctx context.Context, dsn string) (Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(dsn)
}
