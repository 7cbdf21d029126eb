package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultTestFilter() *RelevanceFilter {
	return NewRelevanceFilter(DefaultFilterConfig([]string{
		"nurse", "driver", "warehouse operative",
	}))
}

func TestScore(t *testing.T) {
	f := defaultTestFilter()

	tests := []struct {
		name  string
		title string
		query string
		want  int
	}{
		{"no token match", "Registered Accountant", "golang developer", 0},
		{"one token match", "Golang Engineer", "golang developer", 15},
		{"two token matches", "Senior Golang Developer", "golang developer", 30},
		{"match minus penalty", "Golang Developer turned Nurse", "golang developer", -35},
		{"penalty only applied once", "Nurse Driver", "golang developer", -50},
		{"penalty word in query is exempt", "Registered Nurse", "nurse practitioner", 15},
		{"multi-word penalty", "Warehouse Operative (Nights)", "golang developer", -50},
		{"case insensitive", "GOLANG developer", "Golang", 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Score(tt.title, queryTokens(tt.query), strings.ToLower(tt.query))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreEmptyQuery(t *testing.T) {
	f := defaultTestFilter()

	// No usable tokens: base score sits at the threshold so everything
	// passes unless penalized.
	assert.Equal(t, 10, f.Score("Any Title At All", queryTokens(""), ""))
	assert.Equal(t, -40, f.Score("Night Shift Nurse", queryTokens(""), ""))

	// Single-rune words never become tokens.
	assert.Equal(t, 10, f.Score("C Developer", queryTokens("c"), "c"))
}

func TestApply(t *testing.T) {
	f := defaultTestFilter()

	candidates := []CandidateJob{
		{Title: "Golang Developer", URL: "https://example.com/1"},
		{Title: "Registered Nurse", URL: "https://example.com/2"},
		{Title: "Marketing Manager", URL: "https://example.com/3"},
	}

	kept := f.Apply(candidates, "golang developer")
	if assert.Len(t, kept, 1) {
		assert.Equal(t, "Golang Developer", kept[0].Title)
	}
}

func TestApplyEmptyQueryKeepsUnpenalized(t *testing.T) {
	f := defaultTestFilter()

	candidates := []CandidateJob{
		{Title: "Golang Developer"},
		{Title: "Registered Nurse"},
	}

	kept := f.Apply(candidates, "")
	if assert.Len(t, kept, 1) {
		assert.Equal(t, "Golang Developer", kept[0].Title)
	}
}
