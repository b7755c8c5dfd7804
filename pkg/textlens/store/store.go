package store

import (
	"context"
	"time"

	"github.com/cognicore/textlens/pkg/textlens/analytics"
	"github.com/cognicore/textlens/pkg/textlens/patterns"
)

// Store is the main interface for persisting and querying textlens data
type Store interface {
	Close() error

	DocumentSource
	DocumentStore
	AnalysisStore
	ExtractionStore
	EventLog
}

// DocumentSource is the narrow read contract the analysis pipeline needs.
// exists=false means the document is unknown; hasContent=false means it
// exists but never had a text body attached.
type DocumentSource interface {
	LoadDocumentText(ctx context.Context, docID string) (text string, hasContent bool, exists bool, err error)
}

// DocumentStore manages uploaded documents. Deleting a document cascades
// to its analysis, extraction and events.
type DocumentStore interface {
	SaveDocument(ctx context.Context, d Document) error
	GetDocument(ctx context.Context, docID string) (Document, bool, error)
	ListDocuments(ctx context.Context) ([]Document, error)
	DeleteDocument(ctx context.Context, docID string) (bool, error)
}

// AnalysisStore persists analyses. SaveAnalysis returns
// internalerr.ErrConflict when an analysis already exists for the document
// and internalerr.ErrNotFound when the document is unknown.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, a Analysis) error
	FindAnalysisByDocumentID(ctx context.Context, docID string) (Analysis, bool, error)
	ExistsAnalysisForDocument(ctx context.Context, docID string) (bool, error)
	DeleteAnalysisForDocument(ctx context.Context, docID string) error
}

// ExtractionStore persists extraction results. SaveExtraction replaces any
// prior result for the same document in one atomic step.
type ExtractionStore interface {
	SaveExtraction(ctx context.Context, e Extraction) error
	FindExtractionByDocumentID(ctx context.Context, docID string) (Extraction, bool, error)
	DeleteExtraction(ctx context.Context, docID string) error
	FindMatchesByDocumentAndTag(ctx context.Context, docID string, tag patterns.Tag) ([]string, error)
}

// EventLog records document lifecycle events.
type EventLog interface {
	AppendEvent(ctx context.Context, e Event) error
	ListEvents(ctx context.Context, docID string) ([]Event, error)
}

// Document represents a stored document
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
	RawText     string    `json:"-"`
	HasContent  bool      `json:"has_content"`
	LineCount   int64     `json:"line_count"`
	WordCount   int64     `json:"word_count"`
}

// Analysis is the persisted statistical artifact for one document
type Analysis struct {
	ID                string                `json:"id"`
	DocumentID        string                `json:"document_id"`
	TopWords          []analytics.WordCount `json:"top_words"`
	StartsWith        map[rune]int64        `json:"-"`
	Punctuation       map[rune]int64        `json:"-"`
	WordLengths       map[string]int        `json:"word_lengths"`
	StopWordsExcluded bool                  `json:"stop_words_excluded"`
	CreatedAt         time.Time             `json:"created_at"`
}

// Extraction is the persisted pattern-match artifact for one document
type Extraction struct {
	DocumentID   string                    `json:"document_id"`
	Matches      map[patterns.Tag][]string `json:"matches"`
	TotalMatches int                       `json:"total_matches"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// EventType names a document lifecycle event
type EventType string

// Lifecycle event types.
const (
	EventUpload     EventType = "UPLOAD"
	EventParseStart EventType = "PARSE_START"
	EventParseEnd   EventType = "PARSE_END"
	EventExtract    EventType = "EXTRACT"
	EventDeleted    EventType = "DELETED"
)

// Event represents one logged lifecycle event
type Event struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Type       EventType `json:"type"`
	At         time.Time `json:"at"`
}

// CopyAnalysis returns a deep copy so callers cannot alias store state.
func CopyAnalysis(a Analysis) Analysis {
	out := a
	out.TopWords = append([]analytics.WordCount(nil), a.TopWords...)
	out.StartsWith = copyRuneMap(a.StartsWith)
	out.Punctuation = copyRuneMap(a.Punctuation)
	out.WordLengths = make(map[string]int, len(a.WordLengths))
	for k, v := range a.WordLengths {
		out.WordLengths[k] = v
	}
	return out
}

// CopyExtraction returns a deep copy so callers cannot alias store state.
func CopyExtraction(e Extraction) Extraction {
	out := e
	out.Matches = make(map[patterns.Tag][]string, len(e.Matches))
	for tag, m := range e.Matches {
		out.Matches[tag] = append([]string{}, m...)
	}
	return out
}

func copyRuneMap(in map[rune]int64) map[rune]int64 {
	out := make(map[rune]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
