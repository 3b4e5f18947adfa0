// Package export writes scored records to CSV, JSON or SQLite.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/articlescore/internal/model"
)

// Run describes the batch a set of records came from
type Run struct {
	ID                 string
	StartedAt          time.Time
	FinishedAt         time.Time
	LexiconFingerprint string
	Total              int
	Errors             []*model.DocumentAnalysisError
}

// Sink persists the records of one run. Records arrive in export order.
type Sink interface {
	Write(ctx context.Context, run Run, records []model.MetricsRecord) error
	Close() error
}

// Supported output formats
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Open creates the sink for format writing to path. A path of "-" writes
// CSV or JSON to stdout.
func Open(ctx context.Context, format, path string, precision int) (Sink, error) {
	switch format {
	case FormatCSV:
		return NewCSVSink(path, precision), nil
	case FormatJSON:
		return NewJSONSink(path, precision), nil
	case FormatSQLite:
		if path == "-" {
			return nil, fmt.Errorf("%w: sqlite output needs a file path", model.ErrInvalidConfig)
		}
		return OpenSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", model.ErrInvalidConfig, format)
	}
}

// openOutput returns the destination writer and its closer
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
