package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BigE06/job-agent-mvp/internal/store"
)

// Summary reports the outcome of one ingestion run.
type Summary struct {
	Status         string `json:"status"` // success | error
	Added          int    `json:"added"`
	Skipped        int    `json:"skipped"`
	TotalProcessed int    `json:"total_processed"`
	Error          string `json:"error,omitempty"`
}

// Ingestor runs the search → filter → dedup → upsert pipeline.
type Ingestor struct {
	providers []Provider
	filter    *RelevanceFilter
	store     store.Store
}

// NewIngestor constructs the orchestrator.
func NewIngestor(providers []Provider, filter *RelevanceFilter, st store.Store) *Ingestor {
	return &Ingestor{providers: providers, filter: filter, store: st}
}

// Run executes one ingestion run. A failed provider call yields zero
// results for that provider, not a failed run; only a store failure
// produces an error status, and then the whole batch is rolled back.
func (ing *Ingestor) Run(ctx context.Context, query, country, location string) Summary {
	if strings.TrimSpace(query) == "" {
		return Summary{Status: "error", Error: "query is required"}
	}

	q := SearchQuery{Query: query, Location: location, Country: country}

	var candidates []CandidateJob
	for _, p := range ing.providers {
		results, err := p.Search(ctx, q)
		if err != nil {
			slog.Warn("ingest: provider failed",
				slog.String("provider", p.Name()), slog.Any("error", err))
			continue
		}
		candidates = append(candidates, results...)
	}

	kept := ing.filter.Apply(candidates, query)

	now := time.Now().UTC()
	var newRecords []store.JobRecord
	skipped := 0
	seen := make(map[string]bool) // dedup within the batch itself, by URL

	for _, c := range kept {
		rec := toRecord(c, now)
		if rec.URL != "" && seen[rec.URL] {
			skipped++
			continue
		}
		existing, err := ing.store.FindByIDOrURL(ctx, rec.ID, rec.URL)
		if err != nil && err != store.ErrNotFound {
			slog.Error("ingest: lookup failed", slog.Any("error", err))
			return Summary{Status: "error", Error: err.Error(),
				Skipped: skipped, TotalProcessed: len(kept)}
		}
		if existing != nil {
			// Existing descriptions are never overwritten here;
			// refreshing short ones is enrichment's job.
			skipped++
			continue
		}
		if rec.URL != "" {
			seen[rec.URL] = true
		}
		newRecords = append(newRecords, rec)
	}

	if err := ing.store.InsertBatch(ctx, newRecords); err != nil {
		slog.Error("ingest: batch insert failed", slog.Any("error", err))
		return Summary{Status: "error", Error: err.Error(),
			Skipped: skipped, TotalProcessed: len(kept)}
	}

	summary := Summary{
		Status:         "success",
		Added:          len(newRecords),
		Skipped:        skipped,
		TotalProcessed: len(kept),
	}
	slog.Info("ingest: run complete",
		slog.String("query", query),
		slog.Int("added", summary.Added),
		slog.Int("skipped", summary.Skipped),
		slog.Int("total", summary.TotalProcessed))
	return summary
}

// toRecord promotes a filter survivor to a store record, filling
// placeholder display values and a stable id.
func toRecord(c CandidateJob, now time.Time) store.JobRecord {
	rec := store.JobRecord{
		ID:          candidateID(c),
		Source:      c.Source,
		Title:       c.Title,
		Company:     c.Company,
		Location:    c.Location,
		URL:         c.URL,
		Description: c.Description,
		SalaryMin:   c.SalaryMin,
		SalaryMax:   c.SalaryMax,
		IsRemote:    c.IsRemote,
		FetchedAt:   now,
	}
	if rec.Title == "" {
		rec.Title = UnknownTitle
	}
	if rec.Company == "" {
		rec.Company = UnknownCompany
	}
	if rec.Location == "" {
		rec.Location = DefaultLocation
	}
	return rec
}

// candidateID derives a stable id: source plus external id when the
// provider supplied one, otherwise a generated token.
func candidateID(c CandidateJob) string {
	if c.ExternalID != "" {
		return c.Source + "-" + c.ExternalID
	}
	return "job-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
