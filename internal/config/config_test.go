package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "data/jobs.db", cfg.DatabaseURL)
	assert.Equal(t, "gb", cfg.AdzunaCountry)
	assert.Equal(t, 8000, cfg.MaxDescriptionChars)
	assert.Equal(t, 200, cfg.MinContainerChars)
	assert.Equal(t, 500, cfg.MinDescriptionChars)
	assert.Equal(t, 10, cfg.FilterThreshold)
	assert.Equal(t, 15, cfg.TokenWeight)
	assert.Equal(t, 50, cfg.PenaltyWeight)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.NotEmpty(t, cfg.PenaltyWords)
	assert.Empty(t, cfg.StandingQueries)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JOBAGENT_PORT", "9000")
	t.Setenv("ADZUNA_COUNTRY", "us")
	t.Setenv("FILTER_THRESHOLD", "25")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("JOBAGENT_PENALTY_WORDS", "nurse,driver")
	t.Setenv("JOBAGENT_SEARCH_QUERIES", "golang developer,platform engineer")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "us", cfg.AdzunaCountry)
	assert.Equal(t, 25, cfg.FilterThreshold)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, []string{"nurse", "driver"}, cfg.PenaltyWords)
	assert.Equal(t, []string{"golang developer", "platform engineer"}, cfg.StandingQueries)
}
