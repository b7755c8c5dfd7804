// Package corpus reads documents for bulk import from JSON Lines files.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// maxLine bounds a single JSONL record.
const maxLine = 16 << 20

// Item is one document in an import file
type Item struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Text        string `json:"text"`
}

// LoadFromJSONL loads items from a JSONL file. Malformed lines are logged
// and skipped.
func LoadFromJSONL(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read parses JSONL from r. name is only used in messages.
func Read(r io.Reader, name string) ([]Item, error) {
	var items []Item
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			slog.Warn("skipping malformed JSON",
				slog.String("file", name),
				slog.Int("line", line),
				slog.Any("error", err))
			continue
		}
		if strings.TrimSpace(item.Filename) == "" {
			item.Filename = fmt.Sprintf("%s#%d", name, line)
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid items found in %s", name)
	}

	return items, nil
}
