package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ppiankov/articlescore/internal/model"
)

// CSVSink writes the 14-column metrics table
type CSVSink struct {
	path      string
	precision int
}

// NewCSVSink creates a CSV sink. Floats are rounded to precision decimals.
func NewCSVSink(path string, precision int) *CSVSink {
	return &CSVSink{path: path, precision: precision}
}

// Write writes the header and one row per record
func (s *CSVSink) Write(ctx context.Context, run Run, records []model.MetricsRecord) (err error) {
	w, closeFn, err := openOutput(s.path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("close csv: %w", cerr)
		}
	}()

	return WriteCSV(ctx, w, records, s.precision)
}

// Close is a no-op; the file is closed after each Write
func (s *CSVSink) Close() error {
	return nil
}

// WriteCSV renders records as CSV with the export header
func WriteCSV(ctx context.Context, w io.Writer, records []model.MetricsRecord, precision int) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(model.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write(rec.Row(precision)); err != nil {
			return fmt.Errorf("write csv row %s: %w", rec.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
