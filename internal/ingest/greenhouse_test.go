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

func TestGreenhouseSearch(t *testing.T) {
	boards := map[string]string{
		"/acme/jobs": `{"jobs": [
			{"id": 101, "title": "Golang Engineer", "location": {"name": "Remote"},
			 "absolute_url": "https://boards.greenhouse.io/acme/jobs/101",
			 "content": "<p>Go services.</p>"},
			{"id": 102, "title": "Account Executive", "location": {"name": "NYC"}}
		]}`,
		"/ghost/jobs": ``, // served as 404 below
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ghost/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, ok := boards[r.URL.Path]
		require.True(t, ok, "unexpected path %s", r.URL.Path)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	g := NewGreenhouse(GreenhouseConfig{
		Boards:  []string{"acme", "ghost"},
		BaseURL: srv.URL,
		Client:  srv.Client(),
	})

	jobs, err := g.Search(context.Background(), SearchQuery{Query: "golang"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "101", job.ExternalID)
	assert.Equal(t, "greenhouse", job.Source)
	assert.Equal(t, "acme", job.Company)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/101", job.URL)
	assert.Equal(t, "Go services.", job.Description)
	assert.True(t, job.IsRemote)
}

func TestGreenhouseSearchEmptyQueryKeepsAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobs": [
			{"id": 1, "title": "Engineer", "location": {"name": "London"}},
			{"id": 2, "title": "Designer", "location": {"name": "Paris"}}
		]}`))
	}))
	defer srv.Close()

	g := NewGreenhouse(GreenhouseConfig{Boards: []string{"acme"}, BaseURL: srv.URL, Client: srv.Client()})

	jobs, err := g.Search(context.Background(), SearchQuery{})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	// Postings without an absolute_url get a synthesized board URL.
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/1", jobs[0].URL)
}

func TestGreenhouseSearchNoBoards(t *testing.T) {
	g := NewGreenhouse(GreenhouseConfig{})
	jobs, err := g.Search(context.Background(), SearchQuery{Query: "golang"})
	assert.NoError(t, err)
	assert.Nil(t, jobs)
}

func TestMatchesKeywords(t *testing.T) {
	assert.True(t, matchesKeywords("Senior Golang Engineer London", []string{"golang"}))
	assert.True(t, matchesKeywords("anything", nil))
	assert.False(t, matchesKeywords("Account Executive", []string{"golang", "go"}))
}
