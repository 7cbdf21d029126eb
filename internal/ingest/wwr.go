package ingest

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/BigE06/job-agent-mvp/internal/textutil"
)

const wwrFeedURL = "https://weworkremotely.com/remote-jobs.rss"

// WWRConfig configures the WeWorkRemotely RSS provider.
type WWRConfig struct {
	FeedURL string // override for tests
}

// WWR reads the WeWorkRemotely RSS feed as an alternative search source.
// Everything in the feed is a remote position; items are keyword-matched
// against the query because the feed itself is not searchable.
type WWR struct {
	feedURL string
	parser  *gofeed.Parser
}

// NewWWR constructs the provider.
func NewWWR(cfg WWRConfig) *WWR {
	if cfg.FeedURL == "" {
		cfg.FeedURL = wwrFeedURL
	}
	return &WWR{feedURL: cfg.FeedURL, parser: gofeed.NewParser()}
}

func (w *WWR) Name() string { return "weworkremotely" }

// Search parses the feed and keeps items whose title mentions any query
// token. Feed errors degrade to zero results.
func (w *WWR) Search(ctx context.Context, q SearchQuery) ([]CandidateJob, error) {
	feed, err := w.parser.ParseURLWithContext(w.feedURL, ctx)
	if err != nil {
		slog.Warn("wwr: feed fetch failed", slog.Any("error", err))
		return nil, nil
	}

	tokens := queryTokens(q.Query)
	var candidates []CandidateJob
	for _, item := range feed.Items {
		if !matchesKeywords(item.Title, tokens) {
			continue
		}
		candidates = append(candidates, normalizeWWR(item))
	}

	slog.Debug("wwr: search complete",
		slog.String("query", q.Query), slog.Int("results", len(candidates)))
	return candidates, nil
}

// normalizeWWR maps an RSS item to a candidate. WWR titles read
// "Company: Role"; without the separator the whole title is the role.
func normalizeWWR(item *gofeed.Item) CandidateJob {
	title := strings.TrimSpace(item.Title)
	company := ""
	if idx := strings.Index(title, ":"); idx > 0 {
		company = strings.TrimSpace(title[:idx])
		title = strings.TrimSpace(title[idx+1:])
	}

	c := CandidateJob{
		ExternalID:  item.GUID,
		Source:      "weworkremotely",
		Title:       title,
		Company:     company,
		Location:    "Remote",
		URL:         item.Link,
		Description: textutil.CleanHTML(item.Description),
		IsRemote:    true,
	}
	c.capFields()
	return c
}
