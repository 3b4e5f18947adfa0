package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ppiankov/articlescore/internal/model"
)

// JSONSink writes records as an array of objects keyed by column name
type JSONSink struct {
	path      string
	precision int
}

// NewJSONSink creates a JSON sink
func NewJSONSink(path string, precision int) *JSONSink {
	return &JSONSink{path: path, precision: precision}
}

// Write encodes all records as one indented JSON array
func (s *JSONSink) Write(ctx context.Context, run Run, records []model.MetricsRecord) (err error) {
	w, closeFn, err := openOutput(s.path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("close json: %w", cerr)
		}
	}()

	return WriteJSON(ctx, w, records, s.precision)
}

// Close is a no-op; the file is closed after each Write
func (s *JSONSink) Close() error {
	return nil
}

// WriteJSON renders records as a JSON array. Object keys follow Columns order.
func WriteJSON(ctx context.Context, w io.Writer, records []model.MetricsRecord, precision int) error {
	rows := make([]jsonRow, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows = append(rows, jsonRow(rec.Fields(precision)))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// jsonRow encodes as an object whose keys keep field order
type jsonRow []model.Field

func (r jsonRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
