package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize splits text on runs of whitespace and normalizes every field.
// Fields that normalize to the empty string are dropped, so the result
// never contains blank tokens. Order of appearance is preserved.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if word := Normalize(f); word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// Normalize strips punctuation (hyphens are kept), lower-cases and trims
// a single whitespace-delimited field.
// Example: "World!" → "world", "Machine-Learning," → "machine-learning"
func Normalize(field string) string {
	var b strings.Builder
	b.Grow(len(field))
	for _, r := range field {
		if r != '-' && IsPunct(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.TrimSpace(b.String())
}

// IsPunct reports whether r counts as punctuation. It covers every Unicode
// punctuation rune plus the ASCII symbols ($+<=>^`|~) so that the whole
// POSIX [:punct:] class is included.
func IsPunct(r rune) bool {
	if unicode.IsPunct(r) {
		return true
	}
	return r < utf8.RuneSelf && unicode.IsSymbol(r)
}
