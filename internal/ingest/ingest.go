// Package ingest turns article files into documents for scoring.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/articlescore/internal/logger"
	"github.com/ppiankov/articlescore/internal/model"
)

// maxLineSize bounds one JSONL record; articles can be long.
const maxLineSize = 16 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile loads one document. Its ID is the file name without extension.
// Bytes are passed through unchanged apart from a leading BOM, so that
// undecodable content is reported per document during analysis.
func ReadFile(path string) (model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("read document: %w", err)
	}
	return model.Document{
		ID:     DocumentID(path),
		Text:   string(bytes.TrimPrefix(data, utf8BOM)),
		Source: path,
	}, nil
}

// DocumentID derives a document ID from a file path
func DocumentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadDir loads every *.txt file in dir (not recursive), ordered by ID.
func ReadDir(dir string) ([]model.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var docs []model.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		doc, err := ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	SortByID(docs)
	return docs, nil
}

// SortByID orders documents by ID. Numeric IDs compare numerically and sort
// before non-numeric ones, which compare lexically.
func SortByID(docs []model.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return lessID(docs[i].ID, docs[j].ID)
	})
}

func lessID(a, b string) bool {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// jsonlRecord accepts both {"id","text"} and {"url_id","body"} shapes
type jsonlRecord struct {
	ID     json.RawMessage `json:"id"`
	URLID  json.RawMessage `json:"url_id"`
	Text   *string         `json:"text"`
	Body   *string         `json:"body"`
	Source string          `json:"url"`
}

// ReadJSONL loads documents from a JSON Lines file, keeping file order.
// Blank lines are ignored; malformed lines are skipped with a warning.
func ReadJSONL(path string) ([]model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jsonl: %w", err)
	}
	defer func() { _ = f.Close() }()

	docs, err := DecodeJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return docs, nil
}

// DecodeJSONL is ReadJSONL over an arbitrary reader
func DecodeJSONL(r io.Reader) ([]model.Document, error) {
	log := logger.WithComponent("ingest")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var docs []model.Document
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if lineNo == 1 {
			line = bytes.TrimPrefix(line, utf8BOM)
		}
		if len(line) == 0 {
			continue
		}

		doc, err := decodeLine(line)
		if err != nil {
			log.Warn("skipping malformed jsonl line", "line", lineNo, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan jsonl: %w", err)
	}

	return docs, nil
}

var errMissingID = errors.New("missing id")

func decodeLine(line []byte) (model.Document, error) {
	var rec jsonlRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return model.Document{}, err
	}

	id, err := idString(rec.ID)
	if err != nil {
		return model.Document{}, err
	}
	if id == "" {
		if id, err = idString(rec.URLID); err != nil {
			return model.Document{}, err
		}
	}
	if id == "" {
		return model.Document{}, errMissingID
	}

	var text string
	switch {
	case rec.Text != nil:
		text = *rec.Text
	case rec.Body != nil:
		text = *rec.Body
	default:
		return model.Document{}, errors.New("missing text")
	}

	return model.Document{ID: id, Text: text, Source: rec.Source}, nil
}

// idString accepts string or numeric IDs
func idString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}

	return "", fmt.Errorf("id must be a string or number, got %s", raw)
}
