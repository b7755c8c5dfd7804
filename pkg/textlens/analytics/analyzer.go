package analytics

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/textlens/pkg/textlens/ingest"
)

// WordCount is a single ranked frequency entry.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int64  `json:"count" yaml:"count"`
}

// Stats holds everything an analysis run derives from one document.
type Stats struct {
	TopWords    []WordCount
	StartsWith  map[rune]int64
	Punctuation map[rune]int64
	WordLengths map[string]int
	TokenCount  int
}

// Compute aggregates statistics for one document. tokens must already be
// normalized and stop-word filtered; raw is the original text and is only
// used for the punctuation distribution.
func Compute(raw string, tokens []string, topN int) Stats {
	return Stats{
		TopWords:    TopN(tokens, topN),
		StartsWith:  StartsWith(tokens),
		Punctuation: Punctuation(raw),
		WordLengths: WordLengths(tokens),
		TokenCount:  len(tokens),
	}
}

// Counts groups tokens by exact string equality. The returned order slice
// lists every distinct token once, in order of first appearance.
func Counts(tokens []string) (counts map[string]int64, order []string) {
	counts = make(map[string]int64)
	for _, tok := range tokens {
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}
	return counts, order
}

// TopN ranks tokens by descending frequency and keeps the first n.
// Ties keep first-appearance order (stable sort), so the result is fully
// deterministic. n <= 0 yields nil.
func TopN(tokens []string, n int) []WordCount {
	if n <= 0 {
		return nil
	}
	counts, order := Counts(tokens)

	ranked := make([]WordCount, len(order))
	for i, w := range order {
		ranked[i] = WordCount{Word: w, Count: counts[w]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// StartsWith counts tokens by their first rune. Blank tokens are skipped.
func StartsWith(tokens []string) map[rune]int64 {
	out := make(map[rune]int64)
	for _, tok := range tokens {
		r, size := utf8.DecodeRuneInString(tok)
		if size == 0 || unicode.IsSpace(r) {
			continue
		}
		out[r]++
	}
	return out
}

// Punctuation counts every punctuation rune of the raw text.
func Punctuation(raw string) map[rune]int64 {
	out := make(map[rune]int64)
	for _, r := range raw {
		if ingest.IsPunct(r) {
			out[r]++
		}
	}
	return out
}

// WordLengths maps each distinct token to its length in runes.
func WordLengths(tokens []string) map[string]int {
	out := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		if _, ok := out[tok]; ok {
			continue
		}
		out[tok] = utf8.RuneCountInString(tok)
	}
	return out
}
