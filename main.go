// Job agent: searches job boards, filters for relevance, stores what it
// finds, and deep-scrapes descriptions on demand.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/BigE06/job-agent-mvp/internal/config"
	"github.com/BigE06/job-agent-mvp/internal/ingest"
	"github.com/BigE06/job-agent-mvp/internal/scheduler"
	"github.com/BigE06/job-agent-mvp/internal/scrape"
	"github.com/BigE06/job-agent-mvp/internal/server"
	"github.com/BigE06/job-agent-mvp/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	providers := buildProviders(cfg)
	filter := ingest.NewRelevanceFilter(ingest.FilterConfig{
		Threshold:    cfg.FilterThreshold,
		TokenWeight:  cfg.TokenWeight,
		Penalty:      cfg.PenaltyWeight,
		PenaltyWords: cfg.PenaltyWords,
	})
	ingestor := ingest.NewIngestor(providers, filter, st)

	extractor := scrape.NewExtractor(scrape.ExtractorConfig{
		Timeout:           cfg.FetchTimeout,
		MaxChars:          cfg.MaxDescriptionChars,
		MinContainerChars: cfg.MinContainerChars,
		RatePerSec:        cfg.ScrapeRatePerSec,
		Client:            cfg.HTTPClient,
	})
	enricher := scrape.NewEnricher(st, extractor, cfg.MinDescriptionChars)

	sched := scheduler.New(ingestor, cfg.StandingQueries, cfg.AdzunaCountry, cfg.ScrapeIntervalHours)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := server.New(st, ingestor, enricher, extractor)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http: listening", slog.String("addr", httpSrv.Addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutCtx); err != nil {
			return err
		}
	}
	return nil
}

// buildProviders assembles the enabled search providers. Adzuna is always
// registered; it degrades to empty results without credentials. The
// others only run when configured.
func buildProviders(cfg config.Config) []ingest.Provider {
	providers := []ingest.Provider{
		ingest.NewAdzuna(ingest.AdzunaConfig{
			AppID:          cfg.AdzunaAppID,
			AppKey:         cfg.AdzunaAppKey,
			Country:        cfg.AdzunaCountry,
			ResultsPerPage: cfg.ResultsPerPage,
			Client:         cfg.HTTPClient,
		}),
	}
	if len(cfg.GreenhouseBoards) > 0 {
		providers = append(providers, ingest.NewGreenhouse(ingest.GreenhouseConfig{
			Boards: cfg.GreenhouseBoards,
			Client: cfg.HTTPClient,
		}))
	}
	if cfg.WWRFeedURL != "" {
		providers = append(providers, ingest.NewWWR(ingest.WWRConfig{FeedURL: cfg.WWRFeedURL}))
	}
	return providers
}
