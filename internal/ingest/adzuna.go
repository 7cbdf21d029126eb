package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BigE06/job-agent-mvp/internal/textutil"
)

const (
	adzunaBaseURL     = "https://api.adzuna.com/v1/api/jobs"
	adzunaMaxPageSize = 20
)

// AdzunaConfig configures the Adzuna search provider.
type AdzunaConfig struct {
	AppID          string
	AppKey         string
	Country        string // default market when the query has none
	ResultsPerPage int
	BaseURL        string // override for tests; defaults to the public API
	Client         *http.Client
}

// Adzuna queries the Adzuna job-search API.
//
// Missing credentials are not an error: Search logs once and returns no
// results, so a misconfigured deployment degrades instead of failing runs.
type Adzuna struct {
	cfg AdzunaConfig
}

// NewAdzuna constructs the provider.
func NewAdzuna(cfg AdzunaConfig) *Adzuna {
	if cfg.BaseURL == "" {
		cfg.BaseURL = adzunaBaseURL
	}
	if cfg.ResultsPerPage <= 0 || cfg.ResultsPerPage > adzunaMaxPageSize {
		cfg.ResultsPerPage = adzunaMaxPageSize
	}
	if cfg.Country == "" {
		cfg.Country = "gb"
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Adzuna{cfg: cfg}
}

func (a *Adzuna) Name() string { return "adzuna" }

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaJob `json:"results"`
}

// adzunaJob is the provider-raw shape. Company and location arrive as
// nested objects on most markets but have been observed flat; salary
// bounds are sometimes numbers, sometimes strings.
type adzunaJob struct {
	ID          flexString    `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	RedirectURL string        `json:"redirect_url"`
	Company     adzunaDisplay `json:"company"`
	Location    adzunaDisplay `json:"location"`
	SalaryMin   flexFloat     `json:"salary_min"`
	SalaryMax   flexFloat     `json:"salary_max"`
}

// adzunaDisplay decodes either {"display_name": "..."} or a bare string.
type adzunaDisplay struct {
	DisplayName string
}

func (d *adzunaDisplay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		d.DisplayName = s
		return nil
	}
	var obj struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		d.DisplayName = obj.DisplayName
	}
	return nil
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexString(s)
	return nil
}

// flexFloat decodes a JSON number or numeric string. Anything
// non-numeric becomes nil rather than an error.
type flexFloat struct {
	Value *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		f.Value = &v
	}
	return nil
}

// Search runs a single-page Adzuna search and normalizes the results.
func (a *Adzuna) Search(ctx context.Context, q SearchQuery) ([]CandidateJob, error) {
	if a.cfg.AppID == "" || a.cfg.AppKey == "" {
		slog.Warn("adzuna: credentials not set, skipping search")
		return nil, nil
	}

	country := q.Country
	if country == "" {
		country = inferCountry(q.Location, a.cfg.Country)
	}

	endpoint := fmt.Sprintf("%s/%s/search/1", a.cfg.BaseURL, country)
	params := url.Values{}
	params.Set("app_id", a.cfg.AppID)
	params.Set("app_key", a.cfg.AppKey)
	params.Set("results_per_page", strconv.Itoa(a.cfg.ResultsPerPage))
	params.Set("what", q.Query)
	if q.Location != "" {
		params.Set("where", q.Location)
	}
	params.Set("content-type", "application/json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("adzuna: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", textutil.UserAgentBot)

	resp, err := a.cfg.Client.Do(req)
	if err != nil {
		slog.Warn("adzuna: request failed", slog.Any("error", err))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("adzuna: unexpected status",
			slog.Int("status", resp.StatusCode), slog.String("country", country))
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		slog.Warn("adzuna: read body", slog.Any("error", err))
		return nil, nil
	}

	var ar adzunaResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		slog.Warn("adzuna: parse response", slog.Any("error", err))
		return nil, nil
	}

	candidates := make([]CandidateJob, 0, len(ar.Results))
	for _, raw := range ar.Results {
		candidates = append(candidates, normalizeAdzuna(raw))
	}
	slog.Debug("adzuna: search complete",
		slog.String("query", q.Query), slog.Int("results", len(candidates)))
	return candidates, nil
}

// normalizeAdzuna flattens a provider-raw job into a CandidateJob.
func normalizeAdzuna(raw adzunaJob) CandidateJob {
	c := CandidateJob{
		ExternalID:  string(raw.ID),
		Source:      "adzuna",
		Title:       raw.Title,
		Company:     raw.Company.DisplayName,
		Location:    raw.Location.DisplayName,
		URL:         raw.RedirectURL,
		Description: textutil.CleanHTML(raw.Description),
		SalaryMin:   raw.SalaryMin.Value,
		SalaryMax:   raw.SalaryMax.Value,
	}
	c.IsRemote = looksRemote(c.Title, c.Location)
	c.capFields()
	return c
}

// countryHints maps place-name substrings to Adzuna market codes. This is
// a best-effort convenience for queries that name a city but no country.
var countryHints = []struct {
	place string
	code  string
}{
	{"united kingdom", "gb"}, {"london", "gb"}, {"manchester", "gb"},
	{"birmingham", "gb"}, {"edinburgh", "gb"}, {"glasgow", "gb"},
	{"united states", "us"}, {"new york", "us"}, {"san francisco", "us"},
	{"seattle", "us"}, {"austin", "us"}, {"boston", "us"}, {"chicago", "us"},
	{"germany", "de"}, {"berlin", "de"}, {"munich", "de"}, {"hamburg", "de"},
	{"france", "fr"}, {"paris", "fr"}, {"lyon", "fr"},
	{"canada", "ca"}, {"toronto", "ca"}, {"vancouver", "ca"},
	{"australia", "au"}, {"sydney", "au"}, {"melbourne", "au"},
	{"netherlands", "nl"}, {"amsterdam", "nl"},
	{"ireland", "ie"}, {"dublin", "ie"},
	{"switzerland", "ch"}, {"zurich", "ch"},
	{"spain", "es"}, {"madrid", "es"}, {"barcelona", "es"},
	{"italy", "it"}, {"milan", "it"}, {"rome", "it"},
	{"india", "in"}, {"bangalore", "in"}, {"mumbai", "in"},
	{"singapore", "sg"},
}

// inferCountry guesses a market code from location text, falling back to
// the configured default.
func inferCountry(location, fallback string) string {
	loc := strings.ToLower(location)
	for _, h := range countryHints {
		if strings.Contains(loc, h.place) {
			return h.code
		}
	}
	return fallback
}
