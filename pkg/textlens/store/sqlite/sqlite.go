package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/cognicore/textlens/pkg/textlens/analytics"
	"github.com/cognicore/textlens/pkg/textlens/internalerr"
	"github.com/cognicore/textlens/pkg/textlens/patterns"
	"github.com/cognicore/textlens/pkg/textlens/store"
)

// Store implements store.Store using SQLite
type Store struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode and foreign keys
// enabled on every connection, and creates the schema if needed.
// path may be ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}

	// SQLite serializes writers anyway; one connection also keeps
	// ":memory:" databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func dsn(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + pragmas
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	content_type TEXT NOT NULL,
	uploaded_at TEXT NOT NULL,
	has_content INTEGER NOT NULL DEFAULT 0,
	raw_text TEXT,
	line_count INTEGER NOT NULL DEFAULT 0,
	word_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL UNIQUE,
	stop_words_excluded INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY(document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS analysis_top_words (
	analysis_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	word TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(analysis_id, rank),
	FOREIGN KEY(analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS analysis_starts_with (
	analysis_id TEXT NOT NULL,
	prefix TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(analysis_id, prefix),
	FOREIGN KEY(analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS analysis_punctuation (
	analysis_id TEXT NOT NULL,
	character TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(analysis_id, character),
	FOREIGN KEY(analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS analysis_word_lengths (
	analysis_id TEXT NOT NULL,
	word TEXT NOT NULL,
	length INTEGER NOT NULL,
	PRIMARY KEY(analysis_id, word),
	FOREIGN KEY(analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS extractions (
	document_id TEXT PRIMARY KEY,
	total_matches INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY(document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS extraction_tags (
	document_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	PRIMARY KEY(document_id, tag),
	FOREIGN KEY(document_id) REFERENCES extractions(document_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS extraction_matches (
	document_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	position INTEGER NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY(document_id, tag, position),
	FOREIGN KEY(document_id) REFERENCES extractions(document_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_extraction_matches_tag ON extraction_matches(document_id, tag);

CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	type TEXT NOT NULL,
	at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_document ON events(document_id);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// constraintErr maps SQLite constraint violations onto the error taxonomy.
func constraintErr(err error, what string) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w", what, internalerr.ErrConflict)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%s: %w", what, internalerr.ErrNotFound)
		case sqlite3.SQLITE_CONSTRAINT:
			// extended codes disabled: fall back to the message
			msg := se.Error()
			if strings.Contains(msg, "UNIQUE") {
				return fmt.Errorf("%s: %w", what, internalerr.ErrConflict)
			}
			if strings.Contains(msg, "FOREIGN KEY") {
				return fmt.Errorf("%s: %w", what, internalerr.ErrNotFound)
			}
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// timeLayout is fixed-width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// LoadDocumentText implements store.DocumentSource.
func (s *Store) LoadDocumentText(ctx context.Context, docID string) (string, bool, bool, error) {
	var (
		text       sql.NullString
		hasContent int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT raw_text, has_content FROM documents WHERE id = ?`, docID,
	).Scan(&text, &hasContent)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, false, nil
	}
	if err != nil {
		return "", false, false, fmt.Errorf("load document %s: %w", docID, err)
	}
	return text.String, hasContent == 1 && text.Valid, true, nil
}

// SaveDocument inserts or updates a document
func (s *Store) SaveDocument(ctx context.Context, d store.Document) error {
	if d.ID == "" {
		return fmt.Errorf("save document: empty id: %w", internalerr.ErrInvalidArgument)
	}

	const stmt = `
INSERT INTO documents (id, filename, content_type, uploaded_at, has_content, raw_text, line_count, word_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	filename=excluded.filename,
	content_type=excluded.content_type,
	uploaded_at=excluded.uploaded_at,
	has_content=excluded.has_content,
	raw_text=excluded.raw_text,
	line_count=excluded.line_count,
	word_count=excluded.word_count
`
	var raw any
	if d.HasContent {
		raw = d.RawText
	}
	_, err := s.db.ExecContext(ctx, stmt,
		d.ID, d.Filename, d.ContentType, formatTime(d.UploadedAt),
		boolInt(d.HasContent), raw, d.LineCount, d.WordCount,
	)
	if err != nil {
		return constraintErr(err, "save document "+d.ID)
	}
	return nil
}

const documentColumns = `id, filename, content_type, uploaded_at, has_content, raw_text, line_count, word_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (store.Document, error) {
	var (
		d          store.Document
		uploadedAt string
		hasContent int
		raw        sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Filename, &d.ContentType, &uploadedAt, &hasContent, &raw, &d.LineCount, &d.WordCount); err != nil {
		return store.Document{}, err
	}
	d.UploadedAt = parseTime(uploadedAt)
	d.HasContent = hasContent == 1 && raw.Valid
	d.RawText = raw.String
	return d, nil
}

// GetDocument returns a document by ID.
func (s *Store) GetDocument(ctx context.Context, docID string) (store.Document, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, docID)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, false, nil
	}
	if err != nil {
		return store.Document{}, false, fmt.Errorf("get document %s: %w", docID, err)
	}
	return d, true, nil
}

// ListDocuments returns all documents ordered by upload time, then ID.
func (s *Store) ListDocuments(ctx context.Context) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY uploaded_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := []store.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document; analyses and extractions cascade,
// events are removed explicitly.
func (s *Store) DeleteDocument(ctx context.Context, docID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, docID)
	if err != nil {
		return false, fmt.Errorf("delete document %s: %w", docID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE document_id = ?`, docID); err != nil {
		return false, fmt.Errorf("delete events %s: %w", docID, err)
	}
	return true, tx.Commit()
}

// SaveAnalysis inserts a new analysis and its statistics in one
// transaction. The UNIQUE(document_id) constraint turns a concurrent second
// insert into internalerr.ErrConflict.
func (s *Store) SaveAnalysis(ctx context.Context, a store.Analysis) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analyses (id, document_id, stop_words_excluded, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.DocumentID, boolInt(a.StopWordsExcluded), formatTime(a.CreatedAt),
	)
	if err != nil {
		return constraintErr(err, "save analysis for "+a.DocumentID)
	}

	if err := insertTopWords(ctx, tx, a.ID, a.TopWords); err != nil {
		return err
	}
	if err := insertRuneCounts(ctx, tx, `INSERT INTO analysis_starts_with (analysis_id, prefix, count) VALUES (?, ?, ?)`, a.ID, a.StartsWith); err != nil {
		return err
	}
	if err := insertRuneCounts(ctx, tx, `INSERT INTO analysis_punctuation (analysis_id, character, count) VALUES (?, ?, ?)`, a.ID, a.Punctuation); err != nil {
		return err
	}
	if err := insertWordLengths(ctx, tx, a.ID, a.WordLengths); err != nil {
		return err
	}

	return tx.Commit()
}

func insertTopWords(ctx context.Context, tx *sql.Tx, analysisID string, words []analytics.WordCount) error {
	if len(words) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO analysis_top_words (analysis_id, rank, word, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, w := range words {
		if _, err := stmt.ExecContext(ctx, analysisID, i, w.Word, w.Count); err != nil {
			return fmt.Errorf("insert top word %q: %w", w.Word, err)
		}
	}
	return nil
}

func insertRuneCounts(ctx context.Context, tx *sql.Tx, query, analysisID string, counts map[rune]int64) error {
	if len(counts) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for r, n := range counts {
		if _, err := stmt.ExecContext(ctx, analysisID, string(r), n); err != nil {
			return fmt.Errorf("insert rune count %q: %w", r, err)
		}
	}
	return nil
}

func insertWordLengths(ctx context.Context, tx *sql.Tx, analysisID string, lengths map[string]int) error {
	if len(lengths) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO analysis_word_lengths (analysis_id, word, length) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for w, n := range lengths {
		if _, err := stmt.ExecContext(ctx, analysisID, w, n); err != nil {
			return fmt.Errorf("insert word length %q: %w", w, err)
		}
	}
	return nil
}

// FindAnalysisByDocumentID returns the analysis for a document if present.
func (s *Store) FindAnalysisByDocumentID(ctx context.Context, docID string) (store.Analysis, bool, error) {
	var (
		a        store.Analysis
		excluded int
		created  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, stop_words_excluded, created_at FROM analyses WHERE document_id = ?`, docID,
	).Scan(&a.ID, &a.DocumentID, &excluded, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Analysis{}, false, nil
	}
	if err != nil {
		return store.Analysis{}, false, fmt.Errorf("find analysis %s: %w", docID, err)
	}
	a.StopWordsExcluded = excluded == 1
	a.CreatedAt = parseTime(created)

	if a.TopWords, err = s.loadTopWords(ctx, a.ID); err != nil {
		return store.Analysis{}, false, err
	}
	if a.StartsWith, err = s.loadRuneCounts(ctx, `SELECT prefix, count FROM analysis_starts_with WHERE analysis_id = ?`, a.ID); err != nil {
		return store.Analysis{}, false, err
	}
	if a.Punctuation, err = s.loadRuneCounts(ctx, `SELECT character, count FROM analysis_punctuation WHERE analysis_id = ?`, a.ID); err != nil {
		return store.Analysis{}, false, err
	}
	if a.WordLengths, err = s.loadWordLengths(ctx, a.ID); err != nil {
		return store.Analysis{}, false, err
	}
	return a, true, nil
}

func (s *Store) loadTopWords(ctx context.Context, analysisID string) ([]analytics.WordCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, count FROM analysis_top_words WHERE analysis_id = ? ORDER BY rank`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("load top words: %w", err)
	}
	defer rows.Close()

	out := []analytics.WordCount{}
	for rows.Next() {
		var w analytics.WordCount
		if err := rows.Scan(&w.Word, &w.Count); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) loadRuneCounts(ctx context.Context, query, analysisID string) (map[rune]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("load rune counts: %w", err)
	}
	defer rows.Close()

	out := make(map[rune]int64)
	for rows.Next() {
		var (
			key string
			n   int64
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		r, _ := utf8.DecodeRuneInString(key)
		out[r] = n
	}
	return out, rows.Err()
}

func (s *Store) loadWordLengths(ctx context.Context, analysisID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, length FROM analysis_word_lengths WHERE analysis_id = ?`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("load word lengths: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			w string
			n int
		)
		if err := rows.Scan(&w, &n); err != nil {
			return nil, err
		}
		out[w] = n
	}
	return out, rows.Err()
}

// ExistsAnalysisForDocument reports whether an analysis exists.
func (s *Store) ExistsAnalysisForDocument(ctx context.Context, docID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM analyses WHERE document_id = ?`, docID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("exists analysis %s: %w", docID, err)
	}
	return n > 0, nil
}

// DeleteAnalysisForDocument removes the analysis if present.
func (s *Store) DeleteAnalysisForDocument(ctx context.Context, docID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("delete analysis %s: %w", docID, err)
	}
	return nil
}

// SaveExtraction deletes any prior extraction and inserts the new one in a
// single transaction, so concurrent callers never see a union of results.
func (s *Store) SaveExtraction(ctx context.Context, e store.Extraction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM extractions WHERE document_id = ?`, e.DocumentID); err != nil {
		return fmt.Errorf("delete prior extraction %s: %w", e.DocumentID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO extractions (document_id, total_matches, created_at) VALUES (?, ?, ?)`,
		e.DocumentID, e.TotalMatches, formatTime(e.CreatedAt),
	)
	if err != nil {
		return constraintErr(err, "save extraction for "+e.DocumentID)
	}

	tagStmt, err := tx.PrepareContext(ctx, `INSERT INTO extraction_tags (document_id, tag) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer tagStmt.Close()
	matchStmt, err := tx.PrepareContext(ctx, `INSERT INTO extraction_matches (document_id, tag, position, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer matchStmt.Close()

	for tag, matches := range e.Matches {
		if _, err := tagStmt.ExecContext(ctx, e.DocumentID, string(tag)); err != nil {
			return fmt.Errorf("insert tag %s: %w", tag, err)
		}
		for i, m := range matches {
			if _, err := matchStmt.ExecContext(ctx, e.DocumentID, string(tag), i, m); err != nil {
				return fmt.Errorf("insert match %q: %w", m, err)
			}
		}
	}

	return tx.Commit()
}

// FindExtractionByDocumentID returns the extraction for a document if present.
func (s *Store) FindExtractionByDocumentID(ctx context.Context, docID string) (store.Extraction, bool, error) {
	var (
		e       store.Extraction
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT document_id, total_matches, created_at FROM extractions WHERE document_id = ?`, docID,
	).Scan(&e.DocumentID, &e.TotalMatches, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Extraction{}, false, nil
	}
	if err != nil {
		return store.Extraction{}, false, fmt.Errorf("find extraction %s: %w", docID, err)
	}
	e.CreatedAt = parseTime(created)
	e.Matches = make(map[patterns.Tag][]string)

	tagRows, err := s.db.QueryContext(ctx, `SELECT tag FROM extraction_tags WHERE document_id = ?`, docID)
	if err != nil {
		return store.Extraction{}, false, fmt.Errorf("load extraction tags: %w", err)
	}
	for tagRows.Next() {
		var tag string
		if err := tagRows.Scan(&tag); err != nil {
			tagRows.Close()
			return store.Extraction{}, false, err
		}
		e.Matches[patterns.Tag(tag)] = []string{}
	}
	if err := tagRows.Err(); err != nil {
		tagRows.Close()
		return store.Extraction{}, false, err
	}
	tagRows.Close()

	rows, err := s.db.QueryContext(ctx,
		`SELECT tag, value FROM extraction_matches WHERE document_id = ? ORDER BY tag, position`, docID)
	if err != nil {
		return store.Extraction{}, false, fmt.Errorf("load extraction matches: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tag, value string
		if err := rows.Scan(&tag, &value); err != nil {
			return store.Extraction{}, false, err
		}
		e.Matches[patterns.Tag(tag)] = append(e.Matches[patterns.Tag(tag)], value)
	}
	return e, true, rows.Err()
}

// DeleteExtraction removes the extraction if present.
func (s *Store) DeleteExtraction(ctx context.Context, docID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM extractions WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("delete extraction %s: %w", docID, err)
	}
	return nil
}

// FindMatchesByDocumentAndTag returns the stored matches for one tag in
// first-occurrence order.
func (s *Store) FindMatchesByDocumentAndTag(ctx context.Context, docID string, tag patterns.Tag) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM extraction_matches WHERE document_id = ? AND tag = ? ORDER BY position`,
		docID, string(tag))
	if err != nil {
		return nil, fmt.Errorf("find matches %s/%s: %w", docID, tag, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// AppendEvent records an event.
func (s *Store) AppendEvent(ctx context.Context, e store.Event) error {
	if e.Type != store.EventDeleted {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM documents WHERE id = ?`, e.DocumentID).Scan(&n); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("event %s for %s: %w", e.Type, e.DocumentID, internalerr.ErrNotFound)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, document_id, type, at) VALUES (?, ?, ?, ?)`,
		e.ID, e.DocumentID, string(e.Type), formatTime(e.At),
	)
	if err != nil {
		return constraintErr(err, "append event "+e.ID)
	}
	return nil
}

// ListEvents returns events for a document in time order.
func (s *Store) ListEvents(ctx context.Context, docID string) ([]store.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, type, at FROM events WHERE document_id = ? ORDER BY at, id`, docID)
	if err != nil {
		return nil, fmt.Errorf("list events %s: %w", docID, err)
	}
	defer rows.Close()

	out := []store.Event{}
	for rows.Next() {
		var (
			e  store.Event
			at string
			tp string
		)
		if err := rows.Scan(&e.ID, &e.DocumentID, &tp, &at); err != nil {
			return nil, err
		}
		e.Type = store.EventType(tp)
		e.At = parseTime(at)
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ store.Store = (*Store)(nil)
