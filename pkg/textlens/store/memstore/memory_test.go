package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/textlens/pkg/textlens/analytics"
	"github.com/cognicore/textlens/pkg/textlens/patterns"
	"github.com/cognicore/textlens/pkg/textlens/store"
	"github.com/cognicore/textlens/pkg/textlens/store/storetest"
)

func TestStoreSuite(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestAnalysisIsCopiedOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SaveDocument(ctx, store.Document{ID: "d", HasContent: true, RawText: "x"}))

	a := store.Analysis{
		ID:          "a",
		DocumentID:  "d",
		TopWords:    []analytics.WordCount{{Word: "x", Count: 1}},
		WordLengths: map[string]int{"x": 1},
	}
	require.NoError(t, s.SaveAnalysis(ctx, a))

	a.TopWords[0].Word = "mutated"
	a.WordLengths["y"] = 9

	got, ok, err := s.FindAnalysisByDocumentID(ctx, "d")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", got.TopWords[0].Word)
	assert.NotContains(t, got.WordLengths, "y")

	got.TopWords[0].Word = "again"
	again, _, _ := s.FindAnalysisByDocumentID(ctx, "d")
	assert.Equal(t, "x", again.TopWords[0].Word)
}

func TestMatchesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SaveDocument(ctx, store.Document{ID: "d"}))
	require.NoError(t, s.SaveExtraction(ctx, store.Extraction{
		DocumentID: "d",
		Matches:    map[patterns.Tag][]string{patterns.IP: {"1.1.1.1"}},
	}))

	m, err := s.FindMatchesByDocumentAndTag(ctx, "d", patterns.IP)
	require.NoError(t, err)
	m[0] = "changed"

	m2, err := s.FindMatchesByDocumentAndTag(ctx, "d", patterns.IP)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1.1.1"}, m2)
}
