package main

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/cognicore/textlens/pkg/textlens"
	"github.com/cognicore/textlens/pkg/textlens/analytics"
	"github.com/cognicore/textlens/pkg/textlens/patterns"
	"github.com/cognicore/textlens/pkg/textlens/store"
)

// analysisView renders rune-keyed maps with string keys for JSON.
type analysisView struct {
	ID                string                `json:"id"`
	DocumentID        string                `json:"document_id"`
	TopWords          []analytics.WordCount `json:"top_words"`
	StartsWith        map[string]int64      `json:"starts_with"`
	Punctuation       map[string]int64      `json:"punctuation"`
	WordLengths       map[string]int        `json:"word_lengths"`
	StopWordsExcluded bool                  `json:"stop_words_excluded"`
	CreatedAt         time.Time             `json:"created_at"`
}

func newAnalysisView(a store.Analysis) analysisView {
	return analysisView{
		ID:                a.ID,
		DocumentID:        a.DocumentID,
		TopWords:          a.TopWords,
		StartsWith:        runeKeys(a.StartsWith),
		Punctuation:       runeKeys(a.Punctuation),
		WordLengths:       a.WordLengths,
		StopWordsExcluded: a.StopWordsExcluded,
		CreatedAt:         a.CreatedAt,
	}
}

func runeKeys(in map[rune]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for r, n := range in {
		out[string(r)] = n
	}
	return out
}

// extractionView lists tags in registry order with every tag present.
type extractionView struct {
	DocumentID   string     `json:"document_id"`
	Matches      []tagMatch `json:"matches"`
	TotalMatches int        `json:"total_matches"`
	CreatedAt    time.Time  `json:"created_at"`
}

type tagMatch struct {
	Tag     patterns.Tag `json:"tag"`
	Matches []string     `json:"matches"`
}

func newExtractionView(x store.Extraction) extractionView {
	v := extractionView{
		DocumentID:   x.DocumentID,
		Matches:      make([]tagMatch, 0, len(x.Matches)),
		TotalMatches: x.TotalMatches,
		CreatedAt:    x.CreatedAt,
	}
	order := make(map[patterns.Tag]int)
	for i, t := range patterns.Tags() {
		order[t] = i
	}
	for tag, m := range x.Matches {
		if m == nil {
			m = []string{}
		}
		v.Matches = append(v.Matches, tagMatch{Tag: tag, Matches: m})
	}
	sort.Slice(v.Matches, func(i, j int) bool {
		return order[v.Matches[i].Tag] < order[v.Matches[j].Tag]
	})
	return v
}

type statsView struct {
	Document      store.Document  `json:"document"`
	HasAnalysis   bool            `json:"has_analysis"`
	HasExtraction bool            `json:"has_extraction"`
	Analysis      *analysisView   `json:"analysis,omitempty"`
	Extraction    *extractionView `json:"extraction,omitempty"`
}

func newStatsView(s textlens.DocumentStats) statsView {
	v := statsView{
		Document:      s.Document,
		HasAnalysis:   s.HasAnalysis,
		HasExtraction: s.HasExtraction,
	}
	if s.Analysis != nil {
		a := newAnalysisView(*s.Analysis)
		v.Analysis = &a
	}
	if s.Extraction != nil {
		x := newExtractionView(*s.Extraction)
		v.Extraction = &x
	}
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
