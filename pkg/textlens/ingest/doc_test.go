package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareDocumentPlainText(t *testing.T) {
	d, err := PrepareDocument("notes.txt", "", []byte("first line\nsecond line here\n"))
	require.NoError(t, err)

	assert.Equal(t, ContentTXT, d.ContentType)
	assert.Equal(t, int64(2), d.LineCount)
	assert.Equal(t, int64(5), d.WordCount)
	assert.Equal(t, "first line\nsecond line here\n", d.Text)
}

func TestPrepareDocumentHTML(t *testing.T) {
	body := `<html><head><title>t</title><style>p{}</style></head>
<body><p>Hello <b>world</b></p><script>var x = 1;</script><p>again</p></body></html>`

	d, err := PrepareDocument("page.html", "", []byte(body))
	require.NoError(t, err)

	assert.Equal(t, ContentHTML, d.ContentType)
	assert.Contains(t, d.Text, "Hello world")
	assert.Contains(t, d.Text, "again")
	assert.NotContains(t, d.Text, "var x")
	assert.NotContains(t, d.Text, "p{}")
	assert.Equal(t, []string{"hello", "world", "again"}, Tokenize(d.Text))
}

func TestPrepareDocumentExplicitType(t *testing.T) {
	d, err := PrepareDocument("upload.bin", "html", []byte("<p>x</p>"))
	require.NoError(t, err)
	assert.Equal(t, ContentHTML, d.ContentType)
	assert.Equal(t, "x", d.Text)
}

func TestPrepareDocumentValidation(t *testing.T) {
	_, err := PrepareDocument("  ", "", []byte("text"))
	assert.Error(t, err)

	_, err = PrepareDocument("a.pdf", "PDF", []byte("text"))
	assert.Error(t, err)
}

func TestPrepareDocumentEmptyBody(t *testing.T) {
	d, err := PrepareDocument("empty.txt", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "", d.Text)
	assert.Zero(t, d.LineCount)
	assert.Zero(t, d.WordCount)
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"one", 1},
		{"one\n", 1},
		{"one\ntwo", 2},
		{"one\r\ntwo\r\n", 2},
		{"one\rtwo", 2},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountLines(tt.in), "CountLines(%q)", tt.in)
	}
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, ContentHTML, DetectContentType("INDEX.HTM"))
	assert.Equal(t, ContentHTML, DetectContentType("a/b/page.html"))
	assert.Equal(t, ContentTXT, DetectContentType("readme"))
	assert.Equal(t, ContentTXT, DetectContentType("log.txt"))
}
