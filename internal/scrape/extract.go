// Package scrape deep-scrapes job posting pages to recover full
// descriptions, and triggers enrichment of under-populated records.
package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/BigE06/job-agent-mvp/internal/textutil"
)

// TruncationMarker is appended when an extracted description hits the cap.
const TruncationMarker = "\n[truncated]"

// ScrapeError is the typed failure of one extraction attempt.
type ScrapeError struct {
	Stage string // fetch | status | parse | empty
	URL   string
	Err   error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s: %s: %v", e.URL, e.Stage, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// ExtractorConfig configures the description extractor.
type ExtractorConfig struct {
	Timeout           time.Duration // per-fetch bound
	MaxChars          int           // description cap, marker excluded
	MinContainerChars int           // selector acceptance threshold
	RatePerSec        float64       // pacing across successive fetches
	Client            *http.Client
}

// Extractor fetches a posting page and extracts readable description text.
type Extractor struct {
	client   *http.Client
	limiter  *rate.Limiter
	timeout  time.Duration
	maxChars int
	minChars int
}

// NewExtractor constructs an extractor.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 8000
	}
	if cfg.MinContainerChars <= 0 {
		cfg.MinContainerChars = 200
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1.0
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	return &Extractor{
		client:   cfg.Client,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		timeout:  cfg.Timeout,
		maxChars: cfg.MaxChars,
		minChars: cfg.MinContainerChars,
	}
}

// removeSelectors strips page chrome before text extraction.
var removeSelectors = []string{
	"script", "style", "noscript", "iframe", "svg",
	"header", "footer", "nav", "aside", "form",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]",
}

// contentSelectors is the prioritized list of description containers:
// ATS-specific markers first, generic content containers last. Unknown
// page structures fall through to whole-body text.
var contentSelectors = []string{
	".job__description",         // Greenhouse (new boards)
	"#content",                  // Greenhouse (classic boards)
	"[data-qa=job-description]", // Lever
	".posting .section-wrapper", // Lever (older layouts)
	"[class*=_descriptionText]", // Ashby (hashed class names)
	"[class*=jobPosting]",       // Ashby
	"[data-ui=job-description]", // Workable
	".section--text",            // Workable (older layouts)
	"article",
	"main",
	".job-description",
	".description",
	".content",
}

// Extract fetches url and returns the readable description text.
//
// Each fallible step returns a *ScrapeError; callers treat any error as
// "no content obtained", never as a reason to abort a run.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", &ScrapeError{Stage: "fetch", URL: rawURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &ScrapeError{Stage: "fetch", URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", textutil.UserAgentChrome)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", &ScrapeError{Stage: "fetch", URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ScrapeError{Stage: "status", URL: rawURL,
			Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return "", &ScrapeError{Stage: "fetch", URL: rawURL, Err: err}
	}

	text, err := e.extractFromHTML(string(body))
	if err != nil {
		serr := err.(*ScrapeError)
		serr.URL = rawURL
		return "", serr
	}
	slog.Debug("scrape: extracted description",
		slog.String("url", rawURL), slog.Int("chars", utf8.RuneCountInString(text)))
	return text, nil
}

// extractFromHTML runs the selector-priority loop over a fetched page:
// try each container strategy in order, keep the first that yields enough
// text, fall back to body.
func (e *Extractor) extractFromHTML(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", &ScrapeError{Stage: "parse", Err: err}
	}

	doc.Find(strings.Join(removeSelectors, ", ")).Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	for _, sel := range contentSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		text := renderText(container)
		if utf8.RuneCountInString(text) >= e.minChars {
			return e.truncate(text), nil
		}
	}

	body := renderText(doc.Find("body").First())
	if body == "" {
		return "", &ScrapeError{Stage: "empty", Err: fmt.Errorf("no extractable content")}
	}
	return e.truncate(body), nil
}

// renderText converts a container to readable text: markdown when the
// HTML converts cleanly, plain node text otherwise.
func renderText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	if h, err := goquery.OuterHtml(sel); err == nil {
		if md, err := htmltomarkdown.ConvertString(h); err == nil {
			return textutil.NormalizeWhitespace(md)
		}
	}
	return textutil.NormalizeWhitespace(sel.Text())
}

func (e *Extractor) truncate(text string) string {
	return textutil.TruncateRunes(text, e.maxChars, TruncationMarker)
}
