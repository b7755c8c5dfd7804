package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeBasic(t *testing.T) {
	tokens := Tokenize("Hello world! Hello again. This is a test, Egor.")
	assert.Equal(t, []string{"hello", "world", "hello", "again", "this", "is", "a", "test", "egor"}, tokens)
}

func TestTokenizeHyphens(t *testing.T) {
	tokens := Tokenize("machine-learning and deep-learning")
	assert.Equal(t, []string{"machine-learning", "and", "deep-learning"}, tokens)
}

func TestTokenizeDropsPunctuationOnlyFields(t *testing.T) {
	tokens := Tokenize("wait ... what ?! -- ok")
	// "--" survives because hyphens are never stripped
	assert.Equal(t, []string{"wait", "what", "--", "ok"}, tokens)
}

func TestTokenizeWhitespaceRuns(t *testing.T) {
	tokens := Tokenize("  one\t\ttwo\n\nthree   ")
	assert.Equal(t, []string{"one", "two", "three"}, tokens)
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   \n\t "))
	assert.Empty(t, Tokenize("!!! ... ,,,"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"World!", "world"},
		{"(Quoted)", "quoted"},
		{"don't", "dont"},
		{"GPT-4", "gpt-4"},
		{"«Привет»", "привет"},
		{"$100", "100"},
		{"a+b=c", "abc"},
		{"...", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestIsPunct(t *testing.T) {
	for _, r := range "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~«»—…" {
		assert.True(t, IsPunct(r), "expected %q to be punctuation", r)
	}
	for _, r := range "aZ09 \tЖ€" {
		assert.False(t, IsPunct(r), "expected %q not to be punctuation", r)
	}
}
