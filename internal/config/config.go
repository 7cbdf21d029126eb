// Package config defines the runtime configuration for the job agent.
// All values are read once in main and injected into constructors; no
// package carries ambient config state.
package config

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
)

// Config holds all runtime configuration, injected from main.
type Config struct {
	Port        string
	DatabaseURL string

	// Adzuna search provider credentials. Empty credentials are not an
	// error: the provider degrades to zero results.
	AdzunaAppID    string
	AdzunaAppKey   string
	AdzunaCountry  string // default market, e.g. "gb", "us"
	ResultsPerPage int

	// Greenhouse board slugs to poll as an additional provider.
	GreenhouseBoards []string
	// WeWorkRemotely RSS feed; empty disables the provider.
	WWRFeedURL string

	SearchTimeout time.Duration
	FetchTimeout  time.Duration

	// Deep-scrape extraction bounds.
	MaxDescriptionChars int     // hard cap on stored descriptions
	MinContainerChars   int     // selector must yield at least this much text
	MinDescriptionChars int     // below this, enrichment kicks in
	ScrapeRatePerSec    float64 // deep-scrape pacing

	// Relevance filter tuning. The penalty vocabulary is configuration,
	// not a business rule.
	FilterThreshold int
	TokenWeight     int
	PenaltyWeight   int
	PenaltyWords    []string

	// Standing queries re-run by the cron scheduler. Empty disables it.
	StandingQueries     []string
	ScrapeIntervalHours int

	HTTPClient *http.Client
}

// DefaultPenaltyWords lists occupations that usually leak into broad
// keyword searches for tech roles. Overrideable via JOBAGENT_PENALTY_WORDS.
func DefaultPenaltyWords() []string {
	return []string{
		"nurse", "nursing", "driver", "cashier", "waiter", "waitress",
		"barista", "cleaner", "janitor", "plumber", "electrician",
		"chef", "cook", "receptionist", "bartender", "forklift",
		"warehouse operative", "security guard", "sales representative",
		"care assistant", "delivery rider",
	}
}

// Load builds a Config from the environment.
func Load() Config {
	c := Config{
		Port:        env.Str("JOBAGENT_PORT", "8000"),
		DatabaseURL: env.Str("DATABASE_URL", "data/jobs.db"),

		AdzunaAppID:    env.Str("ADZUNA_APP_ID", ""),
		AdzunaAppKey:   env.Str("ADZUNA_APP_KEY", ""),
		AdzunaCountry:  env.Str("ADZUNA_COUNTRY", "gb"),
		ResultsPerPage: env.Int("ADZUNA_RESULTS_PER_PAGE", 15),

		GreenhouseBoards: env.List("GREENHOUSE_BOARDS", ""),
		WWRFeedURL:       env.Str("WWR_FEED_URL", "https://weworkremotely.com/remote-jobs.rss"),

		SearchTimeout: env.Duration("SEARCH_TIMEOUT", 30*time.Second),
		FetchTimeout:  env.Duration("FETCH_TIMEOUT", 15*time.Second),

		MaxDescriptionChars: env.Int("MAX_DESCRIPTION_CHARS", 8000),
		MinContainerChars:   env.Int("MIN_CONTAINER_CHARS", 200),
		MinDescriptionChars: env.Int("MIN_DESCRIPTION_CHARS", 500),
		ScrapeRatePerSec:    env.Float("SCRAPE_RATE_PER_SEC", 1.0),

		FilterThreshold: env.Int("FILTER_THRESHOLD", 10),
		TokenWeight:     env.Int("FILTER_TOKEN_WEIGHT", 15),
		PenaltyWeight:   env.Int("FILTER_PENALTY_WEIGHT", 50),
		PenaltyWords:    DefaultPenaltyWords(),

		StandingQueries:     env.List("JOBAGENT_SEARCH_QUERIES", ""),
		ScrapeIntervalHours: env.Int("SCRAPE_INTERVAL_HOURS", 6),

		HTTPClient: &http.Client{
			Timeout: env.Duration("HTTP_TIMEOUT", 30*time.Second),
		},
	}

	if words := env.List("JOBAGENT_PENALTY_WORDS", ""); len(words) > 0 {
		c.PenaltyWords = words
	}
	return c
}
