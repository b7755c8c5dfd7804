// Package patterns holds the fixed entity pattern registry and the extractor
// that runs it over document text.
//
// The patterns are intentionally permissive: IP groups and dates are not
// range-checked, so "999.999.999.999" and "99.99.9999" both match.
package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cognicore/textlens/pkg/textlens/internalerr"
)

// Tag identifies a registered pattern.
type Tag string

// Registered tags.
const (
	Email Tag = "EMAIL"
	Phone Tag = "PHONE"
	IP    Tag = "IP"
	Date  Tag = "DATE"
)

var (
	// Email: local-part@domain.tld, TLD of 2-4 word characters
	reEmail = regexp.MustCompile(`\b[\w.-]+@[\w.-]+\.\w{2,4}\b`)

	// Phone: Belarusian +375 with a 2-digit area code, parenthesized or
	// space-separated, then a 7-digit subscriber number with optional hyphens
	rePhone = regexp.MustCompile(`\+375(?:\s?\(\d{2}\)|\s\d{2})\s?\d{3}-?\d{2}-?\d{2}`)

	// IP: four dot-separated groups of 1-3 digits
	reIP = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)

	// Date: DD.MM.YYYY
	reDate = regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b`)
)

var registry = map[Tag]*regexp.Regexp{
	Email: reEmail,
	Phone: rePhone,
	IP:    reIP,
	Date:  reDate,
}

// tagOrder is the stable listing order for Tags and for rendering.
var tagOrder = []Tag{Email, Phone, IP, Date}

// Tags returns every registered tag in a stable order.
func Tags() []Tag {
	out := make([]Tag, len(tagOrder))
	copy(out, tagOrder)
	return out
}

// Known reports whether t is in the registry.
func Known(t Tag) bool {
	_, ok := registry[t]
	return ok
}

// Pattern returns the compiled pattern for t.
func Pattern(t Tag) (*regexp.Regexp, bool) {
	re, ok := registry[t]
	return re, ok
}

// ParseTag resolves a case-insensitive tag name.
func ParseTag(s string) (Tag, error) {
	t := Tag(strings.ToUpper(strings.TrimSpace(s)))
	if !Known(t) {
		return "", fmt.Errorf("unknown pattern tag %q: %w", s, internalerr.ErrInvalidArgument)
	}
	return t, nil
}

// ParseTags resolves a list of tag names. Unknown names are rejected here;
// Extract itself silently skips unknown tags.
func ParseTags(names []string) ([]Tag, error) {
	out := make([]Tag, 0, len(names))
	for _, n := range names {
		t, err := ParseTag(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Find returns the distinct matches of one tag in first-occurrence order.
// Unknown tags yield nil.
func Find(text string, t Tag) []string {
	re, ok := registry[t]
	if !ok {
		return nil
	}
	return dedupe(re.FindAllString(text, -1))
}

// Extract runs every requested known tag over text. Unknown tags are
// ignored. Each known requested tag is present in the result, with an empty
// (non-nil) slice when nothing matched. total is the sum of the per-tag
// counts after deduplication.
func Extract(text string, tags []Tag) (matches map[Tag][]string, total int) {
	matches = make(map[Tag][]string)
	for _, t := range tags {
		if !Known(t) {
			continue
		}
		if _, done := matches[t]; done {
			continue
		}
		found := Find(text, t)
		if found == nil {
			found = []string{}
		}
		matches[t] = found
		total += len(found)
	}
	return matches, total
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
