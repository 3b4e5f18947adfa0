package worker

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ppiankov/articlescore/internal/logger"
	"github.com/ppiankov/articlescore/internal/metrics"
	"github.com/ppiankov/articlescore/internal/model"
)

// Analyzer scores a single document
type Analyzer interface {
	Analyze(ctx context.Context, doc model.Document) (model.MetricsRecord, error)
}

// AnalyzeJob scores one document at a fixed position in the batch
type AnalyzeJob struct {
	Index    int
	Doc      model.Document
	Analyzer Analyzer
	Metrics  *metrics.Metrics
}

// Execute executes the analysis job
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	j.Metrics.WorkerStarted()
	defer j.Metrics.WorkerDone()

	start := time.Now()
	record, err := j.Analyzer.Analyze(ctx, j.Doc)
	j.Metrics.ObserveDocument(time.Since(start), err)

	return &AnalyzeResult{
		Index:  j.Index,
		Record: record,
		Error:  err,
	}
}

// AnalyzeResult represents the result of an analysis job
type AnalyzeResult struct {
	Index  int
	Record model.MetricsRecord
	Error  error
}

// GetError returns the error from the analysis result
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchResult is the outcome of one run over a document set
type BatchResult struct {
	RunID      string
	Records    []model.MetricsRecord // Input order; includes zero records for failed documents
	Errors     []*model.DocumentAnalysisError
	Total      int // Documents submitted
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed returns the number of documents that produced a zero record
func (r *BatchResult) Failed() int {
	return len(r.Errors)
}

// Duration returns the wall time of the run
func (r *BatchResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// BatchProcessor processes multiple documents concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	metrics     *metrics.Metrics

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// NewBatchProcessor creates a new batch processor. m may be nil.
func NewBatchProcessor(analyzer Analyzer, concurrency int, m *metrics.Metrics) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		metrics:     m,
		entropy:     ulid.Monotonic(rand.Reader, 0),
	}
}

// NewRunID returns a new time-ordered run identifier
func (b *BatchProcessor) NewRunID() string {
	b.entropyMu.Lock()
	defer b.entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), b.entropy).String()
}

// Process analyzes docs concurrently. Records come back in input order.
// A per-document failure never stops the batch: it yields a zero record and
// an entry in Errors. When ctx is cancelled, dispatch stops, documents that
// were not analyzed are left out of Records, and ctx.Err() is returned with
// the partial result.
func (b *BatchProcessor) Process(ctx context.Context, docs []model.Document) (*BatchResult, error) {
	result := &BatchResult{
		RunID:     b.NewRunID(),
		Records:   []model.MetricsRecord{},
		Total:     len(docs),
		StartedAt: time.Now(),
	}
	ctx = logger.WithRunID(ctx, result.RunID)
	log := logger.FromContext(ctx).With("component", "worker")

	if len(docs) == 0 {
		result.FinishedAt = time.Now()
		return result, nil
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	// Submit from a separate goroutine so results drain while jobs queue
	go func() {
		defer pool.Close()
		for i, doc := range docs {
			job := &AnalyzeJob{
				Index:    i,
				Doc:      doc,
				Analyzer: b.analyzer,
				Metrics:  b.metrics,
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	slots := make([]*AnalyzeResult, len(docs))
	for res := range pool.Results() {
		r, ok := res.(*AnalyzeResult)
		if !ok {
			continue
		}
		slots[r.Index] = r
	}

	for i, r := range slots {
		if r == nil {
			continue
		}
		if r.Error != nil {
			// A document interrupted by cancellation did not fail on its own
			if isCancellation(r.Error) {
				continue
			}
			var docErr *model.DocumentAnalysisError
			if !errors.As(r.Error, &docErr) {
				docErr = &model.DocumentAnalysisError{DocumentID: docs[i].ID, Err: r.Error}
			}
			result.Errors = append(result.Errors, docErr)
			log.Warn("document analysis failed", "document_id", docErr.DocumentID, "error", docErr.Err)
		}
		result.Records = append(result.Records, r.Record)
	}

	result.FinishedAt = time.Now()

	if err := ctx.Err(); err != nil {
		log.Warn("batch interrupted",
			"analyzed", len(result.Records),
			"total", len(docs),
			"error", err,
		)
		return result, fmt.Errorf("batch cancelled: %w", err)
	}

	log.Info("batch complete",
		"documents", len(docs),
		"failed", len(result.Errors),
		"duration", result.Duration(),
	)
	return result, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
