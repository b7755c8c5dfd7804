package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/textlens/pkg/textlens/internalerr"
	"github.com/cognicore/textlens/pkg/textlens/patterns"
	"github.com/cognicore/textlens/pkg/textlens/store"
)

// Store is an in-memory implementation of store.Store for tests and
// ephemeral runs. A single mutex makes every check-and-write atomic, which
// is what backs the one-analysis-per-document rule here.
type Store struct {
	mu          sync.RWMutex
	docs        map[string]store.Document
	analyses    map[string]store.Analysis
	extractions map[string]store.Extraction
	events      map[string][]store.Event
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		docs:        make(map[string]store.Document),
		analyses:    make(map[string]store.Analysis),
		extractions: make(map[string]store.Extraction),
		events:      make(map[string][]store.Event),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// LoadDocumentText implements store.DocumentSource.
func (s *Store) LoadDocumentText(ctx context.Context, docID string) (string, bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[docID]
	if !ok {
		return "", false, false, nil
	}
	return d.RawText, d.HasContent, true, nil
}

// SaveDocument inserts or replaces a document, keyed by ID.
func (s *Store) SaveDocument(ctx context.Context, d store.Document) error {
	if d.ID == "" {
		return fmt.Errorf("save document: empty id: %w", internalerr.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.ID] = d
	return nil
}

// GetDocument returns a document by ID.
func (s *Store) GetDocument(ctx context.Context, docID string) (store.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[docID]
	return d, ok, nil
}

// ListDocuments returns all documents ordered by upload time, then ID.
func (s *Store) ListDocuments(ctx context.Context) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteDocument removes a document and everything derived from it.
func (s *Store) DeleteDocument(ctx context.Context, docID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[docID]; !ok {
		return false, nil
	}
	delete(s.docs, docID)
	delete(s.analyses, docID)
	delete(s.extractions, docID)
	delete(s.events, docID)
	return true, nil
}

// SaveAnalysis stores a new analysis. The existence check and the insert
// happen under one lock.
func (s *Store) SaveAnalysis(ctx context.Context, a store.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[a.DocumentID]; !ok {
		return fmt.Errorf("save analysis for %s: %w", a.DocumentID, internalerr.ErrNotFound)
	}
	if _, ok := s.analyses[a.DocumentID]; ok {
		return fmt.Errorf("analysis for %s: %w", a.DocumentID, internalerr.ErrConflict)
	}
	s.analyses[a.DocumentID] = store.CopyAnalysis(a)
	return nil
}

// FindAnalysisByDocumentID returns the analysis for a document if present.
func (s *Store) FindAnalysisByDocumentID(ctx context.Context, docID string) (store.Analysis, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.analyses[docID]
	if !ok {
		return store.Analysis{}, false, nil
	}
	return store.CopyAnalysis(a), true, nil
}

// ExistsAnalysisForDocument reports whether an analysis exists.
func (s *Store) ExistsAnalysisForDocument(ctx context.Context, docID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.analyses[docID]
	return ok, nil
}

// DeleteAnalysisForDocument removes the analysis if present.
func (s *Store) DeleteAnalysisForDocument(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.analyses, docID)
	return nil
}

// SaveExtraction replaces any prior extraction for the document.
func (s *Store) SaveExtraction(ctx context.Context, e store.Extraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[e.DocumentID]; !ok {
		return fmt.Errorf("save extraction for %s: %w", e.DocumentID, internalerr.ErrNotFound)
	}
	s.extractions[e.DocumentID] = store.CopyExtraction(e)
	return nil
}

// FindExtractionByDocumentID returns the extraction for a document if present.
func (s *Store) FindExtractionByDocumentID(ctx context.Context, docID string) (store.Extraction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.extractions[docID]
	if !ok {
		return store.Extraction{}, false, nil
	}
	return store.CopyExtraction(e), true, nil
}

// DeleteExtraction removes the extraction if present.
func (s *Store) DeleteExtraction(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.extractions, docID)
	return nil
}

// FindMatchesByDocumentAndTag returns the stored matches for one tag.
func (s *Store) FindMatchesByDocumentAndTag(ctx context.Context, docID string, tag patterns.Tag) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.extractions[docID]
	if !ok {
		return []string{}, nil
	}
	return append([]string{}, e.Matches[tag]...), nil
}

// AppendEvent records an event. Events for unknown documents are kept
// only for DELETED, which by definition outlives its document.
func (s *Store) AppendEvent(ctx context.Context, e store.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[e.DocumentID]; !ok && e.Type != store.EventDeleted {
		return fmt.Errorf("event %s for %s: %w", e.Type, e.DocumentID, internalerr.ErrNotFound)
	}
	s.events[e.DocumentID] = append(s.events[e.DocumentID], e)
	return nil
}

// ListEvents returns events for a document in insertion order.
func (s *Store) ListEvents(ctx context.Context, docID string) ([]store.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]store.Event{}, s.events[docID]...), nil
}

var _ store.Store = (*Store)(nil)
