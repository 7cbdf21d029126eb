package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdzuna(t *testing.T, handler http.HandlerFunc) *Adzuna {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAdzuna(AdzunaConfig{
		AppID:   "id",
		AppKey:  "key",
		BaseURL: srv.URL,
		Client:  srv.Client(),
	})
}

func TestAdzunaSearch(t *testing.T) {
	payload := `{
		"results": [
			{
				"id": 12345,
				"title": "Golang Developer",
				"description": "<p>Build <b>services</b> in Go.</p>",
				"redirect_url": "https://example.com/jobs/12345",
				"company": {"display_name": "Acme Ltd"},
				"location": {"display_name": "London, UK"},
				"salary_min": 60000,
				"salary_max": "80000"
			},
			{
				"id": "str-id",
				"title": "Remote Platform Engineer",
				"redirect_url": "https://example.com/jobs/2",
				"company": "Flat Co",
				"location": "Anywhere",
				"salary_min": "not-a-number"
			}
		]
	}`

	a := newTestAdzuna(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/gb/search/1"))
		assert.Equal(t, "id", r.URL.Query().Get("app_id"))
		assert.Equal(t, "golang", r.URL.Query().Get("what"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	})

	jobs, err := a.Search(context.Background(), SearchQuery{Query: "golang"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, "12345", first.ExternalID)
	assert.Equal(t, "adzuna", first.Source)
	assert.Equal(t, "Acme Ltd", first.Company)
	assert.Equal(t, "London, UK", first.Location)
	assert.Equal(t, "Build services in Go.", first.Description)
	require.NotNil(t, first.SalaryMin)
	assert.Equal(t, 60000.0, *first.SalaryMin)
	require.NotNil(t, first.SalaryMax)
	assert.Equal(t, 80000.0, *first.SalaryMax)
	assert.False(t, first.IsRemote)

	second := jobs[1]
	assert.Equal(t, "str-id", second.ExternalID)
	assert.Equal(t, "Flat Co", second.Company)
	assert.Nil(t, second.SalaryMin, "non-numeric salary must parse to nil")
	assert.True(t, second.IsRemote)
}

func TestAdzunaSearchCapsFields(t *testing.T) {
	longTitle := strings.Repeat("x", 300)
	a := newTestAdzuna(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"` + longTitle + `","redirect_url":"https://example.com/1"}]}`))
	})

	jobs, err := a.Search(context.Background(), SearchQuery{Query: "golang"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Len(t, []rune(jobs[0].Title), maxTitleChars)
}

func TestAdzunaSearchMissingCredentials(t *testing.T) {
	a := NewAdzuna(AdzunaConfig{})
	jobs, err := a.Search(context.Background(), SearchQuery{Query: "golang"})
	assert.NoError(t, err)
	assert.Nil(t, jobs)
}

func TestAdzunaSearchSoftFailures(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		a := newTestAdzuna(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		jobs, err := a.Search(context.Background(), SearchQuery{Query: "golang"})
		assert.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("malformed json", func(t *testing.T) {
		a := newTestAdzuna(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results": [`))
		})
		jobs, err := a.Search(context.Background(), SearchQuery{Query: "golang"})
		assert.NoError(t, err)
		assert.Empty(t, jobs)
	})
}

func TestInferCountry(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"London", "gb"},
		{"New York, NY", "us"},
		{"Berlin, Germany", "de"},
		{"Remote", "gb"},
		{"", "gb"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferCountry(tt.location, "gb"), tt.location)
	}
}
