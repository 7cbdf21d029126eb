// Package scheduler runs standing search queries on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/BigE06/job-agent-mvp/internal/ingest"
)

// Scheduler drives periodic ingestion runs for a set of standing queries.
type Scheduler struct {
	cron     *cron.Cron
	ingestor *ingest.Ingestor
	queries  []string
	country  string
	interval int
}

// New creates a scheduler that runs every intervalHours hours.
func New(ing *ingest.Ingestor, queries []string, country string, intervalHours int) *Scheduler {
	if intervalHours <= 0 {
		intervalHours = 6
	}
	return &Scheduler{
		cron:     cron.New(),
		ingestor: ing,
		queries:  queries,
		country:  country,
		interval: intervalHours,
	}
}

// Start registers the cron entry and kicks off an immediate first run in
// the background. Returns an error only if the cron spec fails to parse.
func (s *Scheduler) Start() error {
	if len(s.queries) == 0 {
		slog.Info("scheduler: no standing queries configured, not starting")
		return nil
	}

	spec := fmt.Sprintf("@every %dh", s.interval)
	if _, err := s.cron.AddFunc(spec, s.runAll); err != nil {
		return fmt.Errorf("schedule ingestion: %w", err)
	}
	s.cron.Start()
	slog.Info("scheduler: started",
		slog.String("interval", spec), slog.Int("queries", len(s.queries)))

	go s.runAll()
	return nil
}

// Stop halts the cron loop. In-flight runs finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runAll() {
	for _, q := range s.queries {
		summary := s.ingestor.Run(context.Background(), q, s.country, "")
		slog.Info("scheduler: run finished",
			slog.String("query", q),
			slog.String("status", summary.Status),
			slog.Int("added", summary.Added),
			slog.Int("skipped", summary.Skipped))
	}
}
