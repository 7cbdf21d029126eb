package scrape

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/BigE06/job-agent-mvp/internal/store"
)

// Enrichment outcomes. "failed" covers best-effort misses (no URL, no
// content, nothing longer than what is stored); "error" is reserved for
// missing jobs and store failures.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
	StatusError   = "error"
)

// EnrichResult is the structured outcome of one enrichment attempt.
type EnrichResult struct {
	Status string `json:"status"`
	JobID  string `json:"job_id,omitempty"`
	Chars  int    `json:"chars,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Enricher replaces short stored descriptions with deep-scraped content.
type Enricher struct {
	store     store.Store
	extractor *Extractor
	minChars  int // descriptions at or below this length get re-scraped
}

// NewEnricher constructs an enricher.
func NewEnricher(st store.Store, ex *Extractor, minChars int) *Enricher {
	if minChars <= 0 {
		minChars = 500
	}
	return &Enricher{store: st, extractor: ex, minChars: minChars}
}

// EnrichIfShort scrapes and stores a richer description for the job when
// its current one is under the threshold. The stored description only ever
// grows: scraped content not strictly longer than the current text is a
// "failed" outcome and leaves the record untouched.
func (en *Enricher) EnrichIfShort(ctx context.Context, jobID string) EnrichResult {
	if jobID == "" {
		return EnrichResult{Status: StatusError, Reason: "job id is required"}
	}

	rec, err := en.store.Get(ctx, jobID)
	if errors.Is(err, store.ErrNotFound) {
		return EnrichResult{Status: StatusError, JobID: jobID, Reason: "job not found"}
	}
	if err != nil {
		return EnrichResult{Status: StatusError, JobID: jobID, Reason: err.Error()}
	}

	current := utf8.RuneCountInString(rec.Description)
	if current > en.minChars {
		return EnrichResult{Status: StatusSkipped, JobID: jobID, Chars: current,
			Reason: "description already populated"}
	}
	if rec.URL == "" {
		return EnrichResult{Status: StatusFailed, JobID: jobID, Reason: "no url to scrape"}
	}

	text, err := en.extractor.Extract(ctx, rec.URL)
	if err != nil {
		slog.Debug("enrich: extraction failed",
			slog.String("job_id", jobID), slog.Any("error", err))
		return EnrichResult{Status: StatusFailed, JobID: jobID, Reason: err.Error()}
	}

	scraped := utf8.RuneCountInString(text)
	if scraped <= current {
		return EnrichResult{Status: StatusFailed, JobID: jobID, Chars: current,
			Reason: "scraped content not longer than stored description"}
	}

	if err := en.store.UpdateDescription(ctx, jobID, text); err != nil {
		slog.Error("enrich: update failed",
			slog.String("job_id", jobID), slog.Any("error", err))
		return EnrichResult{Status: StatusError, JobID: jobID, Reason: err.Error()}
	}

	slog.Info("enrich: description updated",
		slog.String("job_id", jobID),
		slog.Int("before", current), slog.Int("after", scraped))
	return EnrichResult{Status: StatusSuccess, JobID: jobID, Chars: scraped}
}
