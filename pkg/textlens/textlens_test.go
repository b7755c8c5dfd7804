package textlens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/textlens/pkg/textlens/analytics"
	"github.com/cognicore/textlens/pkg/textlens/internalerr"
	"github.com/cognicore/textlens/pkg/textlens/patterns"
	"github.com/cognicore/textlens/pkg/textlens/stoplist"
	"github.com/cognicore/textlens/pkg/textlens/store"
	"github.com/cognicore/textlens/pkg/textlens/store/memstore"
)

const sample = "Hello world! Hello again. This is a test, Egor."

type published struct {
	Type  store.EventType
	DocID string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) Publish(t store.EventType, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{t, docID})
	return nil
}

func (f *fakePublisher) types() []store.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.EventType, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

func newEngine(t *testing.T, stopWords string) (*Engine, *fakePublisher) {
	t.Helper()
	pub := &fakePublisher{}
	e := New(Options{
		Store:     memstore.New(),
		StopWords: stoplist.NewHolder(stopWords),
		Events:    pub,
	})
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e, pub
}

func addText(t *testing.T, e *Engine, text string) string {
	t.Helper()
	d, err := e.AddDocument(context.Background(), "doc.txt", "", []byte(text))
	require.NoError(t, err)
	return d.ID
}

func TestCreateAnalysisWorkedExample(t *testing.T) {
	ctx := context.Background()
	e, pub := newEngine(t, "this,is,a")
	id := addText(t, e, sample)

	a, err := e.CreateAnalysis(ctx, id, 5, true)
	require.NoError(t, err)

	assert.Equal(t, []analytics.WordCount{
		{Word: "hello", Count: 2},
		{Word: "world", Count: 1},
		{Word: "again", Count: 1},
		{Word: "test", Count: 1},
		{Word: "egor", Count: 1},
	}, a.TopWords)
	assert.Equal(t, map[rune]int64{'!': 1, '.': 2, ',': 1}, a.Punctuation)
	assert.Equal(t, int64(2), a.StartsWith['h'])
	assert.Equal(t, map[rune]int64{'h': 2, 'w': 1, 'a': 1, 't': 1, 'e': 1}, a.StartsWith)
	assert.Equal(t, map[string]int{"hello": 5, "world": 5, "again": 5, "test": 4, "egor": 4}, a.WordLengths)
	assert.True(t, a.StopWordsExcluded)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, id, a.DocumentID)

	got, ok, err := e.GetAnalysis(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.TopWords, got.TopWords)

	assert.Equal(t, []store.EventType{store.EventUpload, store.EventParseStart, store.EventParseEnd}, pub.types())
}

func TestCreateAnalysisKeepsStopWordsWhenNotExcluded(t *testing.T) {
	e, _ := newEngine(t, "this,is,a")
	id := addText(t, e, sample)

	a, err := e.CreateAnalysis(context.Background(), id, 100, false)
	require.NoError(t, err)
	assert.Len(t, a.TopWords, 8)
	assert.Contains(t, a.WordLengths, "this")
	assert.False(t, a.StopWordsExcluded)
}

func TestCreateAnalysisStopWordsCaseInsensitive(t *testing.T) {
	e, _ := newEngine(t, "")
	e.SetStopWords(" THIS, Is ,A,, ")
	assert.Equal(t, " THIS, Is ,A,, ", e.StopWords())
	id := addText(t, e, sample)

	a, err := e.CreateAnalysis(context.Background(), id, 10, true)
	require.NoError(t, err)
	assert.NotContains(t, a.WordLengths, "this")
	assert.NotContains(t, a.WordLengths, "is")
	assert.NotContains(t, a.WordLengths, "a")
	assert.Len(t, a.TopWords, 5)
}

func TestCreateAnalysisTopNTruncates(t *testing.T) {
	e, _ := newEngine(t, "")
	id := addText(t, e, sample)

	a, err := e.CreateAnalysis(context.Background(), id, 2, false)
	require.NoError(t, err)
	assert.Equal(t, []analytics.WordCount{{Word: "hello", Count: 2}, {Word: "world", Count: 1}}, a.TopWords)
	// Maps are not truncated by topN.
	assert.Len(t, a.WordLengths, 8)
}

func TestCreateAnalysisInvalidTopN(t *testing.T) {
	ctx := context.Background()
	for _, n := range []int{0, -1} {
		e, pub := newEngine(t, "")
		id := addText(t, e, sample)

		_, err := e.CreateAnalysis(ctx, id, n, false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, internalerr.ErrInvalidArgument), "got %v", err)

		_, ok, err := e.GetAnalysis(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok, "nothing is written for topN=%d", n)
		assert.Equal(t, []store.EventType{store.EventUpload}, pub.types())
	}
}

func TestCreateAnalysisMissingDocument(t *testing.T) {
	e, pub := newEngine(t, "")
	_, err := e.CreateAnalysis(context.Background(), "nope", 5, false)
	assert.True(t, errors.Is(err, internalerr.ErrNotFound), "got %v", err)
	assert.Empty(t, pub.types())
}

func TestCreateAnalysisNoContent(t *testing.T) {
	e, _ := newEngine(t, "")
	d, err := e.AddDocument(context.Background(), "empty.txt", "", nil)
	require.NoError(t, err)
	assert.False(t, d.HasContent)

	_, err = e.CreateAnalysis(context.Background(), d.ID, 5, false)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidState), "got %v", err)
}

func TestCreateAnalysisBlankText(t *testing.T) {
	ctx := context.Background()
	e, pub := newEngine(t, "")
	id := addText(t, e, "  \n\t ")

	_, err := e.CreateAnalysis(ctx, id, 5, false)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidState), "got %v", err)

	_, ok, err := e.GetAnalysis(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []store.EventType{store.EventUpload, store.EventParseStart}, pub.types())
}

func TestCreateAnalysisTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, "this,is,a")
	id := addText(t, e, sample)

	first, err := e.CreateAnalysis(ctx, id, 5, true)
	require.NoError(t, err)

	_, err = e.CreateAnalysis(ctx, id, 1, false)
	assert.True(t, errors.Is(err, internalerr.ErrConflict), "got %v", err)

	got, ok, err := e.GetAnalysis(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)
	assert.Len(t, got.TopWords, 5)
}

func TestCreateAnalysisConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, "")
	id := addText(t, e, sample)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.CreateAnalysis(ctx, id, 3, false)
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, internalerr.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, conflicts)
}

func TestPublisherFailureDoesNotFailOperations(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: internalerr.ErrUnavailable}
	e := New(Options{Store: memstore.New(), Events: pub})
	defer e.Close(ctx)

	d, err := e.AddDocument(ctx, "doc.txt", "TXT", []byte(sample))
	require.NoError(t, err)
	_, err = e.CreateAnalysis(ctx, d.ID, 5, false)
	require.NoError(t, err)
	_, err = e.CreateExtraction(ctx, d.ID, []patterns.Tag{patterns.Email})
	require.NoError(t, err)
	require.NoError(t, e.DeleteDocument(ctx, d.ID))
}

func TestNilPublisher(t *testing.T) {
	ctx := context.Background()
	e := New(Options{Store: memstore.New()})
	defer e.Close(ctx)

	d, err := e.AddDocument(ctx, "doc.txt", "", []byte(sample))
	require.NoError(t, err)
	_, err = e.CreateAnalysis(ctx, d.ID, 5, false)
	require.NoError(t, err)
}

const contacts = "Write to ivan.ivanov@example.com or ivan.ivanov@example.com, " +
	"not user@@domain..com. Call +375 (29) 123-45-67 or +375 29 1234567. " +
	"Server 192.168.0.1 went down on 01.02.2024 and again on 01.02.2024."

func TestCreateExtraction(t *testing.T) {
	ctx := context.Background()
	e, pub := newEngine(t, "")
	id := addText(t, e, contacts)

	x, err := e.CreateExtraction(ctx, id, []patterns.Tag{patterns.Email, patterns.Phone, patterns.IP, patterns.Date})
	require.NoError(t, err)

	assert.Contains(t, x.Matches[patterns.Email], "ivan.ivanov@example.com")
	assert.Equal(t, []string{"+375 (29) 123-45-67", "+375 29 1234567"}, x.Matches[patterns.Phone])
	assert.Equal(t, []string{"192.168.0.1"}, x.Matches[patterns.IP])
	assert.Equal(t, []string{"01.02.2024"}, x.Matches[patterns.Date])

	total := 0
	for tag, m := range x.Matches {
		total += len(m)
		seen := map[string]bool{}
		for _, s := range m {
			assert.False(t, seen[s], "duplicate %q under %s", s, tag)
			seen[s] = true
		}
	}
	assert.Equal(t, total, x.TotalMatches)
	assert.Equal(t, store.EventExtract, pub.types()[len(pub.types())-1])
}

func TestCreateExtractionReplaces(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, "")
	id := addText(t, e, contacts)

	_, err := e.CreateExtraction(ctx, id, []patterns.Tag{patterns.Email, patterns.IP})
	require.NoError(t, err)
	second, err := e.CreateExtraction(ctx, id, []patterns.Tag{patterns.Date})
	require.NoError(t, err)

	got, ok, err := e.GetExtraction(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[patterns.Tag][]string{patterns.Date: {"01.02.2024"}}, got.Matches)
	assert.Equal(t, 1, got.TotalMatches)
	assert.Equal(t, second.TotalMatches, got.TotalMatches)

	ips, err := e.GetMatchesByTag(ctx, id, patterns.IP)
	require.NoError(t, err)
	assert.Empty(t, ips)
	assert.NotNil(t, ips)
}

func TestCreateExtractionUnknownAndEmptyTags(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, "")
	id := addText(t, e, "nothing to see here")

	x, err := e.CreateExtraction(ctx, id, []patterns.Tag{"SSN", patterns.Phone})
	require.NoError(t, err)
	assert.Equal(t, map[patterns.Tag][]string{patterns.Phone: {}}, x.Matches)
	assert.Equal(t, 0, x.TotalMatches)

	got, ok, err := e.GetExtraction(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	m, present := got.Matches[patterns.Phone]
	assert.True(t, present, "tags with no matches are kept")
	assert.Empty(t, m)
}

func TestCreateExtractionErrors(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, "")

	_, err := e.CreateExtraction(ctx, "nope", []patterns.Tag{patterns.Email})
	assert.True(t, errors.Is(err, internalerr.ErrNotFound), "got %v", err)

	blank := addText(t, e, "   ")
	_, err = e.CreateExtraction(ctx, blank, []patterns.Tag{patterns.Email})
	assert.True(t, errors.Is(err, internalerr.ErrInvalidArgument), "got %v", err)

	d, err := e.AddDocument(ctx, "none.txt", "", nil)
	require.NoError(t, err)
	_, err = e.CreateExtraction(ctx, d.ID, []patterns.Tag{patterns.Email})
	assert.True(t, errors.Is(err, internalerr.ErrInvalidArgument), "got %v", err)
}

func TestDeleteExtractionIdempotent(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, "")
	id := addText(t, e, contacts)

	_, err := e.CreateExtraction(ctx, id, []patterns.Tag{patterns.Email})
	require.NoError(t, err)
	require.NoError(t, e.DeleteExtraction(ctx, id))
	require.NoError(t, e.DeleteExtraction(ctx, id))

	_, ok, err := e.GetExtraction(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMatchesByTag(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, "")
	id := addText(t, e, contacts)

	m, err := e.GetMatchesByTag(ctx, id, patterns.Email)
	require.NoError(t, err)
	assert.Equal(t, []string{}, m, "no extraction yet")

	_, err = e.CreateExtraction(ctx, id, []patterns.Tag{patterns.IP})
	require.NoError(t, err)
	m, err = e.GetMatchesByTag(ctx, id, patterns.IP)
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.0.1"}, m)

	_, err = e.GetMatchesByTag(ctx, id, "SSN")
	assert.True(t, errors.Is(err, internalerr.ErrInvalidArgument), "got %v", err)
}

func TestAddDocumentHTML(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, "")

	d, err := e.AddDocument(ctx, "page.html", "", []byte(`<html><head><title>x</title></head><body><p>Hello <b>world</b>!</p><script>var a=1;</script></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "HTML", d.ContentType)
	assert.Equal(t, "Hello world!", d.RawText)
	assert.Equal(t, int64(2), d.WordCount)

	_, err = e.AddDocument(ctx, "doc.pdf", "PDF", []byte("x"))
	assert.True(t, errors.Is(err, internalerr.ErrInvalidArgument), "got %v", err)

	_, err = e.AddDocument(ctx, " ", "", []byte("x"))
	assert.True(t, errors.Is(err, internalerr.ErrInvalidArgument), "got %v", err)
}

func TestListAndGetDocuments(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := New(Options{Store: memstore.New(), Now: func() time.Time {
		at = at.Add(time.Second)
		return at
	}})
	defer e.Close(ctx)

	a, err := e.AddDocument(ctx, "a.txt", "", []byte("one"))
	require.NoError(t, err)
	b, err := e.AddDocument(ctx, "b.txt", "", []byte("two\nlines"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.LineCount)

	docs, err := e.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, a.ID, docs[0].ID)
	assert.Equal(t, b.ID, docs[1].ID)

	got, ok, err := e.GetDocument(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two\nlines", got.RawText)
}

func TestDeleteDocumentCascades(t *testing.T) {
	ctx := context.Background()
	e, pub := newEngine(t, "")
	id := addText(t, e, contacts)

	_, err := e.CreateAnalysis(ctx, id, 5, false)
	require.NoError(t, err)
	_, err = e.CreateExtraction(ctx, id, []patterns.Tag{patterns.Email})
	require.NoError(t, err)

	require.NoError(t, e.DeleteDocument(ctx, id))

	_, ok, err := e.GetAnalysis(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = e.GetExtraction(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = e.Stats(ctx, id)
	assert.True(t, errors.Is(err, internalerr.ErrNotFound), "got %v", err)

	err = e.DeleteDocument(ctx, id)
	assert.True(t, errors.Is(err, internalerr.ErrNotFound), "got %v", err)

	types := pub.types()
	assert.Equal(t, store.EventDeleted, types[len(types)-1])
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, "")
	id := addText(t, e, contacts)

	st, err := e.Stats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, st.Document.ID)
	assert.False(t, st.HasAnalysis)
	assert.False(t, st.HasExtraction)
	assert.Nil(t, st.Analysis)
	assert.Nil(t, st.Extraction)

	_, err = e.CreateAnalysis(ctx, id, 3, false)
	require.NoError(t, err)
	_, err = e.CreateExtraction(ctx, id, []patterns.Tag{patterns.Date})
	require.NoError(t, err)

	st, err = e.Stats(ctx, id)
	require.NoError(t, err)
	assert.True(t, st.HasAnalysis)
	assert.True(t, st.HasExtraction)
	require.NotNil(t, st.Analysis)
	assert.Len(t, st.Analysis.TopWords, 3)
	require.NotNil(t, st.Extraction)
	assert.Equal(t, 1, st.Extraction.TotalMatches)
}

func TestCloseWithoutClosablePublisher(t *testing.T) {
	e := New(Options{Store: memstore.New(), Events: &fakePublisher{}})
	assert.NoError(t, e.Close(context.Background()))
}
