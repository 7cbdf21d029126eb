// Package ingest implements the job ingestion pipeline: provider search,
// relevance filtering, dedup and batch persistence.
package ingest

import (
	"context"
	"strings"

	"github.com/BigE06/job-agent-mvp/internal/textutil"
)

// Field caps applied during normalization, bounding storage and prompt sizes.
const (
	maxTitleChars    = 200
	maxCompanyChars  = 100
	maxLocationChars = 100
	maxSnippetChars  = 2000
)

// Placeholder display values for candidates with missing fields.
const (
	UnknownTitle    = "Unknown Role"
	UnknownCompany  = "Unknown"
	DefaultLocation = "Remote"
)

// SearchQuery is the ephemeral input of an ingestion run.
type SearchQuery struct {
	Query    string
	Location string
	Country  string // provider market code, e.g. "gb"
}

// CandidateJob is a normalized search result before filtering and
// persistence. Only filter survivors become store records.
type CandidateJob struct {
	ExternalID  string
	Source      string
	Title       string
	Company     string
	Location    string
	URL         string
	Description string
	SalaryMin   *float64
	SalaryMax   *float64
	IsRemote    bool
}

// Provider is a search source producing candidates for a query.
//
// Implementations fail softly: missing credentials, transport errors and
// non-2xx responses are logged and yield an empty slice, never an error
// that would abort a whole ingestion run.
type Provider interface {
	Name() string
	Search(ctx context.Context, q SearchQuery) ([]CandidateJob, error)
}

// capFields applies the normalization length caps in place.
func (c *CandidateJob) capFields() {
	c.Title = textutil.TruncateRunes(strings.TrimSpace(c.Title), maxTitleChars, "")
	c.Company = textutil.TruncateRunes(strings.TrimSpace(c.Company), maxCompanyChars, "")
	c.Location = textutil.TruncateRunes(strings.TrimSpace(c.Location), maxLocationChars, "")
	c.Description = textutil.TruncateRunes(strings.TrimSpace(c.Description), maxSnippetChars, "")
}

// looksRemote reports whether title or location text mentions remote work.
func looksRemote(title, location string) bool {
	return strings.Contains(strings.ToLower(title), "remote") ||
		strings.Contains(strings.ToLower(location), "remote")
}
