package textlens

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/textlens/pkg/textlens/analytics"
	"github.com/cognicore/textlens/pkg/textlens/ingest"
	"github.com/cognicore/textlens/pkg/textlens/internalerr"
	"github.com/cognicore/textlens/pkg/textlens/patterns"
	"github.com/cognicore/textlens/pkg/textlens/stoplist"
	"github.com/cognicore/textlens/pkg/textlens/store"
)

// Publisher receives lifecycle events. events.Publisher satisfies it.
// Errors are logged by the engine and never returned to callers.
type Publisher interface {
	Publish(t store.EventType, docID string) error
}

// Engine is the main text analysis facade
type Engine struct {
	store     store.Store
	stopWords *stoplist.Holder
	events    Publisher
	log       *slog.Logger
	now       func() time.Time

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Engine instance
type Options struct {
	Store store.Store
	// StopWords is shared with whoever administers the list. A nil holder
	// starts empty.
	StopWords *stoplist.Holder
	// Events may be nil, in which case no lifecycle events are emitted.
	Events Publisher
	Logger *slog.Logger
	Now    func() time.Time
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	if opts.StopWords == nil {
		opts.StopWords = stoplist.NewHolder("")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		store:     opts.Store,
		stopWords: opts.StopWords,
		events:    opts.Events,
		log:       opts.Logger,
		now:       opts.Now,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// Close drains the event publisher, if it supports closing, and then
// closes the store.
func (e *Engine) Close(ctx context.Context) error {
	var errs []error
	if c, ok := e.events.(interface{ Close(context.Context) error }); ok {
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close events: %w", err))
		}
	}
	if err := e.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}

func (e *Engine) newID(at time.Time) string {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), e.entropy).String()
}

// publish is best effort: failures are logged and dropped.
func (e *Engine) publish(t store.EventType, docID string) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(t, docID); err != nil {
		e.log.Warn("lifecycle event dropped",
			slog.String("type", string(t)),
			slog.String("document", docID),
			slog.Any("error", err))
	}
}

// SetStopWords replaces the stop-word list. An empty string clears it.
func (e *Engine) SetStopWords(raw string) {
	e.stopWords.Set(raw)
	e.log.Info("stop words updated", slog.Int("count", len(e.stopWords.Words())))
}

// StopWords returns the raw stop-word list currently in effect.
func (e *Engine) StopWords() string {
	return e.stopWords.Raw()
}

// CreateAnalysis runs the statistics pipeline over a document and persists
// the result. A document has at most one analysis; a second call, or the
// loser of a concurrent race, gets internalerr.ErrConflict. Nothing is
// written when validation fails.
func (e *Engine) CreateAnalysis(ctx context.Context, docID string, topN int, excludeStopWords bool) (store.Analysis, error) {
	if topN <= 0 {
		return store.Analysis{}, fmt.Errorf("topN must be positive, got %d: %w", topN, internalerr.ErrInvalidArgument)
	}

	text, hasContent, exists, err := e.store.LoadDocumentText(ctx, docID)
	if err != nil {
		return store.Analysis{}, fmt.Errorf("load document %s: %w", docID, err)
	}
	if !exists {
		return store.Analysis{}, fmt.Errorf("document %s: %w", docID, internalerr.ErrNotFound)
	}
	if !hasContent {
		return store.Analysis{}, fmt.Errorf("document %s has no content: %w", docID, internalerr.ErrInvalidState)
	}

	found, err := e.store.ExistsAnalysisForDocument(ctx, docID)
	if err != nil {
		return store.Analysis{}, fmt.Errorf("check analysis for %s: %w", docID, err)
	}
	if found {
		return store.Analysis{}, fmt.Errorf("analysis for %s: %w", docID, internalerr.ErrConflict)
	}

	e.publish(store.EventParseStart, docID)

	if strings.TrimSpace(text) == "" {
		return store.Analysis{}, fmt.Errorf("document %s text is blank: %w", docID, internalerr.ErrInvalidState)
	}

	tokens := ingest.Tokenize(text)
	if excludeStopWords {
		tokens = e.stopWords.Words().Filter(tokens)
	}
	stats := analytics.Compute(text, tokens, topN)

	now := e.now()
	a := store.Analysis{
		ID:                e.newID(now),
		DocumentID:        docID,
		TopWords:          stats.TopWords,
		StartsWith:        stats.StartsWith,
		Punctuation:       stats.Punctuation,
		WordLengths:       stats.WordLengths,
		StopWordsExcluded: excludeStopWords,
		CreatedAt:         now,
	}
	if a.TopWords == nil {
		a.TopWords = []analytics.WordCount{}
	}

	if err := e.store.SaveAnalysis(ctx, a); err != nil {
		return store.Analysis{}, fmt.Errorf("save analysis for %s: %w", docID, err)
	}

	e.log.Debug("analysis created",
		slog.String("document", docID),
		slog.Int("tokens", stats.TokenCount),
		slog.Int("top_n", topN),
		slog.Bool("stop_words_excluded", excludeStopWords))

	e.publish(store.EventParseEnd, docID)
	return a, nil
}

// GetAnalysis returns the analysis for a document, if one exists.
func (e *Engine) GetAnalysis(ctx context.Context, docID string) (store.Analysis, bool, error) {
	return e.store.FindAnalysisByDocumentID(ctx, docID)
}

// CreateExtraction runs the requested patterns over a document and replaces
// any earlier extraction for it. Unknown tags are ignored.
func (e *Engine) CreateExtraction(ctx context.Context, docID string, tags []patterns.Tag) (store.Extraction, error) {
	text, _, exists, err := e.store.LoadDocumentText(ctx, docID)
	if err != nil {
		return store.Extraction{}, fmt.Errorf("load document %s: %w", docID, err)
	}
	if !exists {
		return store.Extraction{}, fmt.Errorf("document %s: %w", docID, internalerr.ErrNotFound)
	}
	if strings.TrimSpace(text) == "" {
		return store.Extraction{}, fmt.Errorf("document %s text is blank: %w", docID, internalerr.ErrInvalidArgument)
	}

	matches, total := patterns.Extract(text, tags)
	x := store.Extraction{
		DocumentID:   docID,
		Matches:      matches,
		TotalMatches: total,
		CreatedAt:    e.now(),
	}
	if err := e.store.SaveExtraction(ctx, x); err != nil {
		return store.Extraction{}, fmt.Errorf("save extraction for %s: %w", docID, err)
	}

	e.log.Debug("extraction created",
		slog.String("document", docID),
		slog.Int("tags", len(matches)),
		slog.Int("total", total))

	e.publish(store.EventExtract, docID)
	return x, nil
}

// GetExtraction returns the extraction for a document, if one exists.
func (e *Engine) GetExtraction(ctx context.Context, docID string) (store.Extraction, bool, error) {
	return e.store.FindExtractionByDocumentID(ctx, docID)
}

// DeleteExtraction removes the extraction for a document. Deleting a
// missing extraction is not an error.
func (e *Engine) DeleteExtraction(ctx context.Context, docID string) error {
	return e.store.DeleteExtraction(ctx, docID)
}

// GetMatchesByTag returns the stored matches of one tag, or an empty slice.
func (e *Engine) GetMatchesByTag(ctx context.Context, docID string, tag patterns.Tag) ([]string, error) {
	if !patterns.Known(tag) {
		return nil, fmt.Errorf("unknown pattern tag %q: %w", tag, internalerr.ErrInvalidArgument)
	}
	m, err := e.store.FindMatchesByDocumentAndTag(ctx, docID, tag)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = []string{}
	}
	return m, nil
}

// AddDocument stores an uploaded body. HTML is reduced to visible text.
func (e *Engine) AddDocument(ctx context.Context, filename, contentType string, body []byte) (store.Document, error) {
	d, err := ingest.PrepareDocument(filename, contentType, body)
	if err != nil {
		return store.Document{}, fmt.Errorf("prepare %q: %v: %w", filename, err, internalerr.ErrInvalidArgument)
	}

	now := e.now()
	doc := store.Document{
		ID:          e.newID(now),
		Filename:    d.Filename,
		ContentType: d.ContentType,
		UploadedAt:  now,
		RawText:     d.Text,
		HasContent:  body != nil,
		LineCount:   d.LineCount,
		WordCount:   d.WordCount,
	}
	if err := e.store.SaveDocument(ctx, doc); err != nil {
		return store.Document{}, fmt.Errorf("save document %q: %w", filename, err)
	}

	e.log.Info("document added",
		slog.String("document", doc.ID),
		slog.String("filename", doc.Filename),
		slog.String("content_type", doc.ContentType),
		slog.Int64("words", doc.WordCount))

	e.publish(store.EventUpload, doc.ID)
	return doc, nil
}

// GetDocument returns a document by ID.
func (e *Engine) GetDocument(ctx context.Context, docID string) (store.Document, bool, error) {
	return e.store.GetDocument(ctx, docID)
}

// ListDocuments returns every document in upload order.
func (e *Engine) ListDocuments(ctx context.Context) ([]store.Document, error) {
	return e.store.ListDocuments(ctx)
}

// DeleteDocument removes a document together with its analysis, extraction
// and events.
func (e *Engine) DeleteDocument(ctx context.Context, docID string) error {
	ok, err := e.store.DeleteDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", docID, err)
	}
	if !ok {
		return fmt.Errorf("document %s: %w", docID, internalerr.ErrNotFound)
	}
	e.log.Info("document deleted", slog.String("document", docID))
	e.publish(store.EventDeleted, docID)
	return nil
}

// DocumentStats summarizes a document and whatever has been derived from it.
type DocumentStats struct {
	Document      store.Document    `json:"document"`
	HasAnalysis   bool              `json:"has_analysis"`
	HasExtraction bool              `json:"has_extraction"`
	Analysis      *store.Analysis   `json:"analysis,omitempty"`
	Extraction    *store.Extraction `json:"extraction,omitempty"`
}

// Stats gathers a document with its analysis and extraction, if present.
func (e *Engine) Stats(ctx context.Context, docID string) (DocumentStats, error) {
	doc, ok, err := e.store.GetDocument(ctx, docID)
	if err != nil {
		return DocumentStats{}, err
	}
	if !ok {
		return DocumentStats{}, fmt.Errorf("document %s: %w", docID, internalerr.ErrNotFound)
	}

	out := DocumentStats{Document: doc}

	a, ok, err := e.store.FindAnalysisByDocumentID(ctx, docID)
	if err != nil {
		return DocumentStats{}, err
	}
	if ok {
		out.HasAnalysis = true
		out.Analysis = &a
	}

	x, ok, err := e.store.FindExtractionByDocumentID(ctx, docID)
	if err != nil {
		return DocumentStats{}, err
	}
	if ok {
		out.HasExtraction = true
		out.Extraction = &x
	}
	return out, nil
}

// Events lists the lifecycle events recorded for a document. Delivery is
// asynchronous, so the most recent events may not be visible yet.
func (e *Engine) Events(ctx context.Context, docID string) ([]store.Event, error) {
	return e.store.ListEvents(ctx, docID)
}
