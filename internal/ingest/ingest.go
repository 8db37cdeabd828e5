// Package ingest turns uploaded product files into text a model can read.
// Tables become a JSON array with one object per row.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
)

const errorPrefix = "Error reading file: "

// Parse reads r according to the extension of name.
func Parse(name string, r io.Reader) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		t, err := readCSV(r)
		if err != nil {
			return "", fmt.Errorf("read csv: %w", err)
		}
		return t.JSON()
	case ".xlsx":
		t, err := readXLSX(r)
		if err != nil {
			return "", fmt.Errorf("read xlsx: %w", err)
		}
		return t.JSON()
	default:
		return readText(r)
	}
}

// ParseOrNotice is Parse, with failures rendered as the returned text so the
// conversation can carry on with the error visible to the model.
func ParseOrNotice(name string, r io.Reader) (string, error) {
	text, err := Parse(name, r)
	if err != nil {
		return errorPrefix + err.Error(), err
	}
	return text, nil
}

// Preview cuts text at limit runes and marks the cut.
func Preview(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}

func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid utf-8", models.ErrUnsupportedFile)
	}
	return string(data), nil
}

// table keeps column order so rows serialize as the header declares them.
type table struct {
	columns []string
	rows    [][]any
}

func (t *table) JSON() (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range t.columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return "", err
			}
			var v any
			if j < len(row) {
				v = row[j]
			}
			val, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.String(), nil
}

// newTable builds a table from raw string records, the first being the header.
func newTable(records [][]string) (*table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", models.ErrUnsupportedFile)
	}
	t := &table{columns: headerNames(records[0])}
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make([]any, len(t.columns))
		for i := range t.columns {
			if i < len(rec) {
				row[i] = cellValue(rec[i])
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// headerNames fills blank and duplicate headers the way spreadsheet tools
// usually do: "Unnamed: n" and "name.1".
func headerNames(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
