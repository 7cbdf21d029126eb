package ingest

import (
	"strings"

	"github.com/BigE06/job-agent-mvp/internal/store"
)

// KeywordScore returns the fraction of keywords present in text,
// case-insensitive. Empty text or an empty keyword list scores zero.
func KeywordScore(text string, keywords []string) float64 {
	if text == "" || len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(k)) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

// RankJob scores a stored job against profile keywords, with small boosts
// for visa sponsorship and remote positions. Result is clamped to [0, 1].
func RankJob(rec store.JobRecord, profileKeywords []string) float64 {
	text := rec.Title + " " + rec.Description + " " + rec.Requirements
	score := KeywordScore(text, profileKeywords)
	if rec.VisaSponsorship {
		score += 0.1
	}
	if rec.IsRemote {
		score += 0.05
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
