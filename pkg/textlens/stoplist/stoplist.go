package stoplist

import (
	"sort"
	"strings"
	"sync/atomic"
)

// Set is a normalized (lower-cased, trimmed) set of stop words
type Set map[string]struct{}

// Parse splits a comma-delimited raw string into a Set.
// Entries are trimmed and lower-cased; blank entries are dropped.
// An empty or blank raw string yields an empty set.
func Parse(raw string) Set {
	set := make(Set)
	if strings.TrimSpace(raw) == "" {
		return set
	}
	for _, part := range strings.Split(raw, ",") {
		w := strings.ToLower(strings.TrimSpace(part))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// IsStop checks if a token is a stopword
func (s Set) IsStop(token string) bool {
	_, ok := s[token]
	return ok
}

// Filter returns tokens that are not in the set, preserving order.
func (s Set) Filter(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if s.IsStop(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// All returns all stopwords, sorted
func (s Set) All() []string {
	result := make([]string, 0, len(s))
	for w := range s {
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}

type snapshot struct {
	raw   string
	words Set
}

// Holder is the process-wide stop-word configuration. Set swaps the whole
// value atomically; concurrent readers observe either the old or the new
// list, never a mix. There is no ordering guarantee between a Set and a
// read that started before it returns.
type Holder struct {
	cur atomic.Pointer[snapshot]
}

// NewHolder creates a holder initialized from raw.
func NewHolder(raw string) *Holder {
	h := &Holder{}
	h.Set(raw)
	return h
}

// Set replaces the configuration. An empty string clears the list.
func (h *Holder) Set(raw string) {
	h.cur.Store(&snapshot{raw: raw, words: Parse(raw)})
}

// Raw returns the raw comma-delimited string currently in effect.
func (h *Holder) Raw() string {
	if s := h.cur.Load(); s != nil {
		return s.raw
	}
	return ""
}

// Words returns the parsed set currently in effect. Callers must not
// modify it.
func (h *Holder) Words() Set {
	if s := h.cur.Load(); s != nil {
		return s.words
	}
	return Set{}
}
