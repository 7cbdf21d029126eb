package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BigE06/job-agent-mvp/internal/store"
)

func newEnrichStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func insertJob(t *testing.T, st store.Store, rec store.JobRecord) {
	t.Helper()
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now().UTC()
	}
	require.NoError(t, st.InsertBatch(context.Background(), []store.JobRecord{rec}))
}

func TestEnrichIfShortSuccess(t *testing.T) {
	long := strings.Repeat("Detailed responsibilities and requirements for the role. ", 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><article>` + long + `</article></body></html>`))
	}))
	defer srv.Close()

	st := newEnrichStore(t)
	insertJob(t, st, store.JobRecord{
		ID: "j1", Source: "adzuna", Title: "Golang Developer",
		URL: srv.URL, Description: "Short snippet.",
	})

	ex := NewExtractor(ExtractorConfig{RatePerSec: 1000, Client: srv.Client()})
	en := NewEnricher(st, ex, 500)

	result := en.EnrichIfShort(context.Background(), "j1")
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "j1", result.JobID)
	assert.Greater(t, result.Chars, 500)

	rec, err := st.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Contains(t, rec.Description, "Detailed responsibilities")
	assert.Equal(t, result.Chars, utf8.RuneCountInString(rec.Description))
}

func TestEnrichIfShortSkipspopulated(t *testing.T) {
	st := newEnrichStore(t)
	insertJob(t, st, store.JobRecord{
		ID: "j1", Source: "adzuna", Title: "Golang Developer",
		URL: "https://example.com/1", Description: strings.Repeat("x", 501),
	})

	en := NewEnricher(st, NewExtractor(ExtractorConfig{RatePerSec: 1000}), 500)

	result := en.EnrichIfShort(context.Background(), "j1")
	assert.Equal(t, StatusSkipped, result.Status)
	assert.Equal(t, 501, result.Chars)
}

func TestEnrichIfShortNoURL(t *testing.T) {
	st := newEnrichStore(t)
	insertJob(t, st, store.JobRecord{ID: "j1", Source: "manual", Title: "Golang Developer"})

	en := NewEnricher(st, NewExtractor(ExtractorConfig{RatePerSec: 1000}), 500)

	result := en.EnrichIfShort(context.Background(), "j1")
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "no url to scrape", result.Reason)
}

func TestEnrichIfShortNeverShrinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Tiny page.</p></body></html>`))
	}))
	defer srv.Close()

	stored := strings.Repeat("Existing description text. ", 15)
	st := newEnrichStore(t)
	insertJob(t, st, store.JobRecord{
		ID: "j1", Source: "adzuna", Title: "Golang Developer",
		URL: srv.URL, Description: stored,
	})

	ex := NewExtractor(ExtractorConfig{RatePerSec: 1000, Client: srv.Client()})
	en := NewEnricher(st, ex, 500)

	result := en.EnrichIfShort(context.Background(), "j1")
	assert.Equal(t, StatusFailed, result.Status)

	rec, err := st.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, stored, rec.Description)
}

func TestEnrichIfShortScrapeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	st := newEnrichStore(t)
	insertJob(t, st, store.JobRecord{
		ID: "j1", Source: "adzuna", Title: "Golang Developer",
		URL: srv.URL, Description: "Short.",
	})

	ex := NewExtractor(ExtractorConfig{RatePerSec: 1000, Client: srv.Client()})
	en := NewEnricher(st, ex, 500)

	result := en.EnrichIfShort(context.Background(), "j1")
	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Reason, "status 403")
}

func TestEnrichIfShortErrors(t *testing.T) {
	st := newEnrichStore(t)
	en := NewEnricher(st, NewExtractor(ExtractorConfig{RatePerSec: 1000}), 500)

	result := en.EnrichIfShort(context.Background(), "")
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "job id is required", result.Reason)

	result = en.EnrichIfShort(context.Background(), "missing")
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "job not found", result.Reason)
}
