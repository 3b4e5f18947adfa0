package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ppiankov/articlescore/internal/metrics"
	"github.com/ppiankov/articlescore/internal/model"
)

// MockAnalyzer implements Analyzer. Documents whose text is "bad" fail.
type MockAnalyzer struct {
	delay time.Duration
	calls int32
}

func (m *MockAnalyzer) Analyze(ctx context.Context, doc model.Document) (model.MetricsRecord, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return model.ZeroRecord(doc.ID), ctx.Err()
		}
	}
	if doc.Text == "bad" {
		return model.ZeroRecord(doc.ID), &model.DocumentAnalysisError{DocumentID: doc.ID, Err: model.ErrEmptyDocument}
	}
	return model.MetricsRecord{ID: doc.ID, WordCount: len(doc.Text)}, nil
}

func docs(n int) []model.Document {
	out := make([]model.Document, n)
	for i := range out {
		out[i] = model.Document{ID: fmt.Sprintf("%d", i+1), Text: fmt.Sprintf("text %d", i)}
	}
	return out
}

func TestBatchProcessor_Process(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 2, nil)

	result, err := processor.Process(context.Background(), docs(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(result.Records))
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
	if result.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Total)
	}
	if result.FinishedAt.Before(result.StartedAt) {
		t.Error("expected finish time after start time")
	}
	if _, err := ulid.Parse(result.RunID); err != nil {
		t.Errorf("expected ULID run id, got %q: %v", result.RunID, err)
	}
}

func TestBatchProcessor_PreservesOrder(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{delay: time.Millisecond}, 8, nil)
	input := docs(200)

	result, err := processor.Process(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Records) != len(input) {
		t.Fatalf("expected %d records, got %d", len(input), len(result.Records))
	}
	for i, rec := range result.Records {
		if rec.ID != input[i].ID {
			t.Fatalf("expected record %d to be %s, got %s", i, input[i].ID, rec.ID)
		}
	}
}

func TestBatchProcessor_FailureIsolation(t *testing.T) {
	m := metrics.New()
	processor := NewBatchProcessor(&MockAnalyzer{}, 3, m)
	input := []model.Document{
		{ID: "1", Text: "fine"},
		{ID: "2", Text: "bad"},
		{ID: "3", Text: "also fine"},
	}

	result, err := processor.Process(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(result.Records))
	}
	if len(result.Errors) != 1 || result.Failed() != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	if result.Errors[0].DocumentID != "2" {
		t.Errorf("expected error for document 2, got %s", result.Errors[0].DocumentID)
	}
	if !errors.Is(result.Errors[0], model.ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", result.Errors[0])
	}
	if !result.Records[1].IsZero() || result.Records[1].ID != "2" {
		t.Errorf("expected zero record for document 2, got %+v", result.Records[1])
	}
	if result.Records[2].WordCount == 0 {
		t.Error("expected document 3 to be scored after document 2 failed")
	}

	if got := testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("expected 2 ok documents, got %v", got)
	}
	if got := testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("expected 1 failed document, got %v", got)
	}
	if got := testutil.ToFloat64(m.WorkersBusy); got != 0 {
		t.Errorf("expected no busy workers after the batch, got %v", got)
	}
}

// plainErrAnalyzer returns an untyped error
type plainErrAnalyzer struct{}

func (plainErrAnalyzer) Analyze(ctx context.Context, doc model.Document) (model.MetricsRecord, error) {
	return model.ZeroRecord(doc.ID), errors.New("boom")
}

func TestBatchProcessor_WrapsUntypedErrors(t *testing.T) {
	processor := NewBatchProcessor(plainErrAnalyzer{}, 1, nil)

	result, err := processor.Process(context.Background(), docs(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].DocumentID != "1" {
		t.Fatalf("expected wrapped error for document 1, got %v", result.Errors)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 2, nil)

	result, err := processor.Process(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 0 {
		t.Errorf("expected 0 records, got %d", len(result.Records))
	}
	if result.RunID == "" {
		t.Error("expected run id even for an empty batch")
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	analyzer := &MockAnalyzer{delay: 50 * time.Millisecond}
	processor := NewBatchProcessor(analyzer, 2, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := processor.Process(ctx, docs(100))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if result == nil {
		t.Fatal("expected partial result on cancellation")
	}
	if len(result.Records) >= 100 {
		t.Errorf("expected cancellation to stop the batch, got %d records", len(result.Records))
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected interrupted documents not to count as failures, got %d", len(result.Errors))
	}
	if calls := atomic.LoadInt32(&analyzer.calls); calls >= 100 {
		t.Errorf("expected dispatch to stop, got %d calls", calls)
	}
}

func TestBatchProcessor_RunIDsIncrease(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 1, nil)

	a := processor.NewRunID()
	b := processor.NewRunID()
	if a >= b {
		t.Errorf("expected monotonic run ids, got %s then %s", a, b)
	}
}

func TestAnalyzeResult_GetError(t *testing.T) {
	r1 := &AnalyzeResult{Index: 0}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("analysis failed")
	r2 := &AnalyzeResult{Index: 1, Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
