// Package storetest holds behaviour tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/textlens/pkg/textlens/analytics"
	"github.com/cognicore/textlens/pkg/textlens/internalerr"
	"github.com/cognicore/textlens/pkg/textlens/patterns"
	"github.com/cognicore/textlens/pkg/textlens/store"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Run executes the whole suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(*testing.T, store.Store)
	}{
		{"DocumentRoundTrip", testDocumentRoundTrip},
		{"LoadDocumentText", testLoadDocumentText},
		{"ListDocuments", testListDocuments},
		{"EmptyListsAreNotNil", testEmptyListsAreNotNil},
		{"AnalysisRoundTrip", testAnalysisRoundTrip},
		{"AnalysisConflict", testAnalysisConflict},
		{"AnalysisUnknownDocument", testAnalysisUnknownDocument},
		{"AnalysisConcurrentInsert", testAnalysisConcurrentInsert},
		{"ExtractionReplace", testExtractionReplace},
		{"ExtractionDeleteIdempotent", testExtractionDeleteIdempotent},
		{"MatchesByTag", testMatchesByTag},
		{"DeleteDocumentCascades", testDeleteDocumentCascades},
		{"Events", testEvents},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newStore(t)
			t.Cleanup(func() { st.Close() })
			tt.fn(t, st)
		})
	}
}

var base = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func seedDocument(t *testing.T, st store.Store, id, text string) store.Document {
	t.Helper()
	d := store.Document{
		ID:          id,
		Filename:    id + ".txt",
		ContentType: "TXT",
		UploadedAt:  base,
		RawText:     text,
		HasContent:  true,
		LineCount:   1,
		WordCount:   int64(len(text)),
	}
	require.NoError(t, st.SaveDocument(context.Background(), d))
	return d
}

func sampleAnalysis(id, docID string) store.Analysis {
	return store.Analysis{
		ID:         id,
		DocumentID: docID,
		TopWords: []analytics.WordCount{
			{Word: "hello", Count: 2},
			{Word: "world", Count: 1},
			{Word: "again", Count: 1},
		},
		StartsWith:        map[rune]int64{'h': 2, 'w': 1, 'a': 1},
		Punctuation:       map[rune]int64{'!': 1, '.': 2, '«': 1},
		WordLengths:       map[string]int{"hello": 5, "world": 5, "again": 5},
		StopWordsExcluded: true,
		CreatedAt:         base.Add(time.Minute),
	}
}

func testDocumentRoundTrip(t *testing.T, st store.Store) {
	ctx := context.Background()
	want := seedDocument(t, st, "doc-1", "some text")

	got, ok, err := st.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Filename, got.Filename)
	assert.Equal(t, want.RawText, got.RawText)
	assert.True(t, want.UploadedAt.Equal(got.UploadedAt))
	assert.True(t, got.HasContent)

	_, ok, err = st.GetDocument(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testLoadDocumentText(t *testing.T, st store.Store) {
	ctx := context.Background()
	seedDocument(t, st, "with-text", "body")
	require.NoError(t, st.SaveDocument(ctx, store.Document{
		ID: "no-content", Filename: "x.txt", ContentType: "TXT", UploadedAt: base,
	}))

	text, hasContent, exists, err := st.LoadDocumentText(ctx, "with-text")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, hasContent)
	assert.Equal(t, "body", text)

	_, hasContent, exists, err = st.LoadDocumentText(ctx, "no-content")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.False(t, hasContent)

	_, _, exists, err = st.LoadDocumentText(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func testListDocuments(t *testing.T, st store.Store) {
	ctx := context.Background()
	for i, id := range []string{"c", "a", "b"} {
		require.NoError(t, st.SaveDocument(ctx, store.Document{
			ID: id, Filename: id, ContentType: "TXT", UploadedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	docs, err := st.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "c", docs[0].ID)
	assert.Equal(t, "a", docs[1].ID)
	assert.Equal(t, "b", docs[2].ID)
}

func testEmptyListsAreNotNil(t *testing.T, st store.Store) {
	ctx := context.Background()

	docs, err := st.ListDocuments(ctx)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	events, err := st.ListEvents(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func testAnalysisRoundTrip(t *testing.T, st store.Store) {
	ctx := context.Background()
	seedDocument(t, st, "doc-1", "Hello world! Hello again.")
	want := sampleAnalysis("an-1", "doc-1")
	require.NoError(t, st.SaveAnalysis(ctx, want))

	got, ok, err := st.FindAnalysisByDocumentID(ctx, "doc-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.TopWords, got.TopWords, "top words keep rank order")
	assert.Equal(t, want.StartsWith, got.StartsWith)
	assert.Equal(t, want.Punctuation, got.Punctuation)
	assert.Equal(t, want.WordLengths, got.WordLengths)
	assert.True(t, got.StopWordsExcluded)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	again, _, err := st.FindAnalysisByDocumentID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, got, again, "lookup must be idempotent")

	exists, err := st.ExistsAnalysisForDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, st.DeleteAnalysisForDocument(ctx, "doc-1"))
	exists, err = st.ExistsAnalysisForDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func testAnalysisConflict(t *testing.T, st store.Store) {
	ctx := context.Background()
	seedDocument(t, st, "doc-1", "text")
	require.NoError(t, st.SaveAnalysis(ctx, sampleAnalysis("an-1", "doc-1")))

	err := st.SaveAnalysis(ctx, sampleAnalysis("an-2", "doc-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalerr.ErrConflict), "got %v", err)

	got, _, err := st.FindAnalysisByDocumentID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "an-1", got.ID, "loser must not overwrite")
}

func testAnalysisUnknownDocument(t *testing.T, st store.Store) {
	err := st.SaveAnalysis(context.Background(), sampleAnalysis("an-1", "ghost"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalerr.ErrNotFound), "got %v", err)
}

func testAnalysisConcurrentInsert(t *testing.T, st store.Store) {
	ctx := context.Background()
	seedDocument(t, st, "doc-1", "text")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := st.SaveAnalysis(ctx, sampleAnalysis(fmt.Sprintf("an-%d", i), "doc-1"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, internalerr.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, conflicts)
}

func testExtractionReplace(t *testing.T, st store.Store) {
	ctx := context.Background()
	seedDocument(t, st, "doc-1", "text")

	first := store.Extraction{
		DocumentID: "doc-1",
		Matches: map[patterns.Tag][]string{
			patterns.Email: {"a@b.com", "c@d.org"},
			patterns.IP:    {"1.2.3.4"},
		},
		TotalMatches: 3,
		CreatedAt:    base,
	}
	require.NoError(t, st.SaveExtraction(ctx, first))

	second := store.Extraction{
		DocumentID: "doc-1",
		Matches: map[patterns.Tag][]string{
			patterns.Date:  {"01.01.2020"},
			patterns.Phone: {},
		},
		TotalMatches: 1,
		CreatedAt:    base.Add(time.Hour),
	}
	require.NoError(t, st.SaveExtraction(ctx, second))

	got, ok, err := st.FindExtractionByDocumentID(ctx, "doc-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[patterns.Tag][]string{
		patterns.Date:  {"01.01.2020"},
		patterns.Phone: {},
	}, got.Matches, "replace, never union")
	assert.Equal(t, 1, got.TotalMatches)
	assert.True(t, second.CreatedAt.Equal(got.CreatedAt))

	err = st.SaveExtraction(ctx, store.Extraction{DocumentID: "ghost", Matches: map[patterns.Tag][]string{}})
	assert.True(t, errors.Is(err, internalerr.ErrNotFound), "got %v", err)
}

func testExtractionDeleteIdempotent(t *testing.T, st store.Store) {
	ctx := context.Background()
	seedDocument(t, st, "doc-1", "text")

	require.NoError(t, st.DeleteExtraction(ctx, "doc-1"))

	require.NoError(t, st.SaveExtraction(ctx, store.Extraction{
		DocumentID: "doc-1",
		Matches:    map[patterns.Tag][]string{patterns.IP: {"1.1.1.1"}},
	}))
	require.NoError(t, st.DeleteExtraction(ctx, "doc-1"))
	require.NoError(t, st.DeleteExtraction(ctx, "doc-1"))

	_, ok, err := st.FindExtractionByDocumentID(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testMatchesByTag(t *testing.T, st store.Store) {
	ctx := context.Background()
	seedDocument(t, st, "doc-1", "text")

	require.NoError(t, st.SaveExtraction(ctx, store.Extraction{
		DocumentID: "doc-1",
		Matches: map[patterns.Tag][]string{
			patterns.Email: {"z@z.com", "a@a.com", "m@m.com"},
		},
		TotalMatches: 3,
	}))

	got, err := st.FindMatchesByDocumentAndTag(ctx, "doc-1", patterns.Email)
	require.NoError(t, err)
	assert.Equal(t, []string{"z@z.com", "a@a.com", "m@m.com"}, got, "first-occurrence order")

	got, err = st.FindMatchesByDocumentAndTag(ctx, "doc-1", patterns.IP)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = st.FindMatchesByDocumentAndTag(ctx, "missing", patterns.IP)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testDeleteDocumentCascades(t *testing.T, st store.Store) {
	ctx := context.Background()
	seedDocument(t, st, "doc-1", "text")
	require.NoError(t, st.SaveAnalysis(ctx, sampleAnalysis("an-1", "doc-1")))
	require.NoError(t, st.SaveExtraction(ctx, store.Extraction{
		DocumentID: "doc-1",
		Matches:    map[patterns.Tag][]string{patterns.IP: {"1.1.1.1"}},
	}))
	require.NoError(t, st.AppendEvent(ctx, store.Event{ID: "ev-1", DocumentID: "doc-1", Type: store.EventUpload, At: base}))

	deleted, err := st.DeleteDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, ok, err := st.FindAnalysisByDocumentID(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = st.FindExtractionByDocumentID(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, ok)
	events, err := st.ListEvents(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, events)

	deleted, err = st.DeleteDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, deleted)

	// A fresh analysis is allowed once the document is re-uploaded.
	seedDocument(t, st, "doc-1", "text")
	require.NoError(t, st.SaveAnalysis(ctx, sampleAnalysis("an-2", "doc-1")))
}

func testEvents(t *testing.T, st store.Store) {
	ctx := context.Background()
	seedDocument(t, st, "doc-1", "text")

	require.NoError(t, st.AppendEvent(ctx, store.Event{ID: "ev-1", DocumentID: "doc-1", Type: store.EventParseStart, At: base}))
	require.NoError(t, st.AppendEvent(ctx, store.Event{ID: "ev-2", DocumentID: "doc-1", Type: store.EventParseEnd, At: base.Add(time.Millisecond)}))

	events, err := st.ListEvents(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, store.EventParseStart, events[0].Type)
	assert.Equal(t, store.EventParseEnd, events[1].Type)

	err = st.AppendEvent(ctx, store.Event{ID: "ev-3", DocumentID: "ghost", Type: store.EventParseStart, At: base})
	assert.True(t, errors.Is(err, internalerr.ErrNotFound), "got %v", err)

	require.NoError(t, st.AppendEvent(ctx, store.Event{ID: "ev-4", DocumentID: "ghost", Type: store.EventDeleted, At: base}))
}
