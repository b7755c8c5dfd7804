package ingest

import (
	"errors"
	"path/filepath"
	"strings"
)

// Content types accepted for upload.
const (
	ContentTXT  = "TXT"
	ContentHTML = "HTML"
)

// Doc represents a document after body extraction, ready to be stored
type Doc struct {
	Filename    string
	ContentType string
	Text        string
	LineCount   int64
	WordCount   int64
}

// Validate checks if the document has required fields
func (d *Doc) Validate() error {
	if strings.TrimSpace(d.Filename) == "" {
		return errors.New("doc filename is required")
	}

	switch d.ContentType {
	case ContentTXT, ContentHTML:
	default:
		return errors.New("doc content type must be TXT or HTML")
	}

	return nil
}

// DetectContentType guesses the content type from the filename extension.
func DetectContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm", ".xhtml":
		return ContentHTML
	default:
		return ContentTXT
	}
}

// PrepareDocument turns an uploaded body into a Doc. HTML bodies are reduced
// to their visible text; an empty contentType is detected from filename.
func PrepareDocument(filename, contentType string, body []byte) (Doc, error) {
	if contentType == "" {
		contentType = DetectContentType(filename)
	}
	contentType = strings.ToUpper(contentType)

	text := string(body)
	if contentType == ContentHTML {
		text = HTMLText(text)
	}

	d := Doc{
		Filename:    filename,
		ContentType: contentType,
		Text:        text,
		LineCount:   CountLines(text),
		WordCount:   CountWords(text),
	}
	if err := d.Validate(); err != nil {
		return Doc{}, err
	}
	return d, nil
}

// CountLines counts lines terminated by \n, \r or \r\n. A trailing
// terminator does not start a new line.
func CountLines(text string) int64 {
	if text == "" {
		return 0
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	n := int64(strings.Count(text, "\n")) + 1
	if strings.HasSuffix(text, "\n") {
		n--
	}
	return n
}

// CountWords counts non-blank whitespace-delimited fields.
func CountWords(text string) int64 {
	return int64(len(strings.Fields(text)))
}
