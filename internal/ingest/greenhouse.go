package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BigE06/job-agent-mvp/internal/textutil"
)

const greenhouseBoardsAPI = "https://boards-api.greenhouse.io/v1/boards"

// GreenhouseConfig configures the Greenhouse board provider.
type GreenhouseConfig struct {
	Boards  []string // company slugs, e.g. "stripe"
	BaseURL string   // override for tests
	Client  *http.Client
}

// Greenhouse polls the public boards JSON API of a configured list of
// companies and keyword-matches postings against the query.
type Greenhouse struct {
	cfg GreenhouseConfig
}

// NewGreenhouse constructs the provider.
func NewGreenhouse(cfg GreenhouseConfig) *Greenhouse {
	if cfg.BaseURL == "" {
		cfg.BaseURL = greenhouseBoardsAPI
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Greenhouse{cfg: cfg}
}

func (g *Greenhouse) Name() string { return "greenhouse" }

// greenhouseJob is a single posting from the boards API.
type greenhouseJob struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	AbsoluteURL string `json:"absolute_url"`
	Content     string `json:"content,omitempty"`
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// Search fetches each configured board and keeps postings whose title or
// location mentions any query token. Per-board failures are logged and
// skipped; the provider never aborts a run.
func (g *Greenhouse) Search(ctx context.Context, q SearchQuery) ([]CandidateJob, error) {
	if len(g.cfg.Boards) == 0 {
		return nil, nil
	}

	type fetchResult struct {
		slug string
		jobs []greenhouseJob
		err  error
	}
	ch := make(chan fetchResult, len(g.cfg.Boards))
	for _, slug := range g.cfg.Boards {
		go func(s string) {
			jobs, err := g.fetchBoard(ctx, s)
			ch <- fetchResult{s, jobs, err}
		}(slug)
	}

	tokens := queryTokens(q.Query)
	var candidates []CandidateJob
	for range g.cfg.Boards {
		r := <-ch
		if r.err != nil {
			slog.Warn("greenhouse: board fetch failed",
				slog.String("board", r.slug), slog.Any("error", r.err))
			continue
		}
		for _, job := range r.jobs {
			if !matchesKeywords(job.Title+" "+job.Location.Name, tokens) {
				continue
			}
			candidates = append(candidates, normalizeGreenhouse(r.slug, job))
		}
	}

	slog.Debug("greenhouse: search complete",
		slog.String("query", q.Query), slog.Int("results", len(candidates)))
	return candidates, nil
}

// fetchBoard fetches all postings for a company slug.
func (g *Greenhouse) fetchBoard(ctx context.Context, slug string) ([]greenhouseJob, error) {
	apiURL := fmt.Sprintf("%s/%s/jobs?content=true", g.cfg.BaseURL, slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", textutil.UserAgentBot)
	req.Header.Set("Accept", "application/json")

	resp, err := g.cfg.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("board API status %d for %s", resp.StatusCode, slug)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}

	var gr greenhouseResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("board parse: %w", err)
	}
	return gr.Jobs, nil
}

func normalizeGreenhouse(slug string, job greenhouseJob) CandidateJob {
	jobURL := job.AbsoluteURL
	if jobURL == "" {
		jobURL = fmt.Sprintf("https://boards.greenhouse.io/%s/jobs/%d", slug, job.ID)
	}
	c := CandidateJob{
		ExternalID:  fmt.Sprintf("%d", job.ID),
		Source:      "greenhouse",
		Title:       job.Title,
		Company:     slug,
		Location:    job.Location.Name,
		URL:         jobURL,
		Description: textutil.CleanHTML(job.Content),
	}
	c.IsRemote = looksRemote(c.Title, c.Location)
	c.capFields()
	return c
}

// matchesKeywords returns true if haystack contains any keyword
// (case-insensitive). An empty keyword list matches everything.
func matchesKeywords(haystack string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(haystack)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
