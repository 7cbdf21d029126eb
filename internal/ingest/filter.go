package ingest

import (
	"log/slog"
	"strings"
	"unicode"
)

// FilterConfig tunes the relevance scoring heuristic. The penalty
// vocabulary and all weights are deployment configuration.
type FilterConfig struct {
	Threshold    int      // keep candidates scoring at least this
	TokenWeight  int      // added per query token found in the title
	Penalty      int      // subtracted once when a penalty word matches
	PenaltyWords []string // off-topic occupation terms
}

// DefaultFilterConfig returns the stock tuning.
func DefaultFilterConfig(penaltyWords []string) FilterConfig {
	return FilterConfig{
		Threshold:    10,
		TokenWeight:  15,
		Penalty:      50,
		PenaltyWords: penaltyWords,
	}
}

// RelevanceFilter scores candidates against the query that produced them
// and drops low scorers. It is a heuristic, not a classifier: the goal is
// to bias toward titles that literally mention the query and suppress
// obviously unrelated occupations that leak in from broad keyword search.
type RelevanceFilter struct {
	cfg FilterConfig
}

// NewRelevanceFilter constructs a filter.
func NewRelevanceFilter(cfg FilterConfig) *RelevanceFilter {
	return &RelevanceFilter{cfg: cfg}
}

// Apply returns the candidates scoring at or above the threshold.
func (f *RelevanceFilter) Apply(candidates []CandidateJob, query string) []CandidateJob {
	tokens := queryTokens(query)
	queryLower := strings.ToLower(query)

	kept := make([]CandidateJob, 0, len(candidates))
	for _, c := range candidates {
		score := f.Score(c.Title, tokens, queryLower)
		if score >= f.cfg.Threshold {
			kept = append(kept, c)
		} else {
			slog.Debug("filter: dropped candidate",
				slog.String("title", c.Title), slog.Int("score", score))
		}
	}
	return kept
}

// Score computes the relevance score of a title.
//
// With no usable query tokens the positive-match requirement is disabled:
// the base score sits at the threshold and only penalties can sink it.
func (f *RelevanceFilter) Score(title string, tokens []string, queryLower string) int {
	titleLower := strings.ToLower(title)

	score := 0
	if len(tokens) == 0 {
		score = f.cfg.Threshold
	}
	for _, tok := range tokens {
		if strings.Contains(titleLower, tok) {
			score += f.cfg.TokenWeight
		}
	}

	// At most one penalty per candidate. A penalty entry present in the
	// query itself is exempt: someone searching for it wants it.
	for _, word := range f.cfg.PenaltyWords {
		if word == "" {
			continue
		}
		if strings.Contains(titleLower, word) && !strings.Contains(queryLower, word) {
			score -= f.cfg.Penalty
			break
		}
	}
	return score
}

// queryTokens splits a query into lowercase words of at least two runes.
func queryTokens(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
