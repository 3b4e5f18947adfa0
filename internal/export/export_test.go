package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/articlescore/internal/model"
)

func sampleRecords() []model.MetricsRecord {
	return []model.MetricsRecord{
		{
			ID:                  "1",
			PositiveScore:       3,
			NegativeScore:       1,
			PolarityScore:       0.4999998750000312,
			SubjectivityScore:   0.19999999000000048,
			AvgSentenceLength:   12.5,
			PctComplexWords:     0.16,
			FogIndex:            5.064,
			AvgWordsPerSentence: 12.5,
			ComplexWordCount:    4,
			WordCount:           25,
			SyllablesPerWord:    1.48,
			PersonalPronouns:    2,
			AvgWordLength:       4.52,
			SentenceCount:       2,
		},
		model.ZeroRecord("2"),
	}
}

func sampleRun() Run {
	return Run{
		ID:                 "01HZX0000000000000000000AA",
		StartedAt:          time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		FinishedAt:         time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC),
		LexiconFingerprint: "abc123",
		Total:              2,
		Errors: []*model.DocumentAnalysisError{
			{DocumentID: "2", Err: model.ErrEmptyDocument},
		},
	}
}

func TestWriteCSV_Header(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(context.Background(), &buf, sampleRecords(), 3); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	want := "FILENAME,POSITIVE SCORE,NEGATIVE SCORE,POLARITY SCORE,SUBJECTIVITY SCORE," +
		"AVG SENTENCE LENGTH,PERCENTAGE OF COMPLEX WORDS,FOG INDEX," +
		"AVG NUMBER OF WORDS PER SENTENCE,COMPLEX WORD COUNT,WORD COUNT," +
		"SYLLABLE PER WORD,PERSONAL PRONOUNS,AVG WORD LENGTH"
	if got := strings.Join(rows[0], ","); got != want {
		t.Errorf("unexpected header:\n got %s\nwant %s", got, want)
	}

	first := rows[1]
	if first[0] != "1" || first[3] != "0.5" || first[4] != "0.2" || first[7] != "5.064" {
		t.Errorf("unexpected rounded row: %v", first)
	}
	for i, v := range rows[2][1:] {
		if v != "0" {
			t.Errorf("expected zero in column %s, got %s", model.Columns[i+1], v)
		}
	}
}

func TestCSVSink_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sink := NewCSVSink(path, -1)

	if err := sink.Write(context.Background(), sampleRun(), sampleRecords()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	_ = sink.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "0.4999998750000312") {
		t.Error("expected full precision with precision -1")
	}
}

func TestWriteCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WriteCSV(ctx, &bytes.Buffer{}, sampleRecords(), 3)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(context.Background(), &buf, sampleRecords(), 2); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(rows))
	}
	if len(rows[0]) != len(model.Columns) {
		t.Errorf("expected %d keys, got %d", len(model.Columns), len(rows[0]))
	}
	if rows[0]["FILENAME"] != "1" {
		t.Errorf("expected FILENAME 1, got %v", rows[0]["FILENAME"])
	}
	if rows[0]["FOG INDEX"] != 5.06 {
		t.Errorf("expected fog 5.06, got %v", rows[0]["FOG INDEX"])
	}
}

func TestWriteJSON_ColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(context.Background(), &buf, sampleRecords()[:1], 2); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	out := buf.String()

	prev := -1
	for _, col := range model.Columns {
		idx := strings.Index(out, `"`+col+`":`)
		if idx < 0 {
			t.Fatalf("expected key %q in output:\n%s", col, out)
		}
		if idx < prev {
			t.Errorf("expected key %q after the previous column, output:\n%s", col, out)
		}
		prev = idx
	}
}

func TestSQLiteSink_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scores.db")

	sink, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer func() { _ = sink.Close() }()

	records := sampleRecords()
	if err := sink.Write(ctx, sampleRun(), records); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := sink.Records(ctx, sampleRun().ID)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d mismatch:\n got %+v\nwant %+v", i, got[i], records[i])
		}
	}

	runs, err := sink.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Total != 2 || runs[0].Failed != 1 || runs[0].LexiconFingerprint != "abc123" {
		t.Errorf("unexpected runs: %+v", runs)
	}
	if !runs[0].StartedAt.Equal(sampleRun().StartedAt) {
		t.Errorf("expected started_at to round-trip, got %v", runs[0].StartedAt)
	}

	errs, err := sink.RunErrors(ctx, sampleRun().ID)
	if err != nil {
		t.Fatalf("RunErrors failed: %v", err)
	}
	if errs["2"] != model.ErrEmptyDocument.Error() {
		t.Errorf("expected run error for document 2, got %v", errs)
	}
}

func TestSQLiteSink_DuplicateRunRollsBack(t *testing.T) {
	ctx := context.Background()
	sink, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = sink.Close() }()

	if err := sink.Write(ctx, sampleRun(), sampleRecords()); err != nil {
		t.Fatal(err)
	}
	if err := sink.Write(ctx, sampleRun(), sampleRecords()[:1]); err == nil {
		t.Fatal("expected duplicate run id to fail")
	}

	got, err := sink.Records(ctx, sampleRun().ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected original 2 records to survive, got %d", len(got))
	}
}

func TestSQLiteSink_HasRun(t *testing.T) {
	ctx := context.Background()
	sink, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = sink.Close() }()

	empty := Run{ID: "01HZX0000000000000000000BB", StartedAt: time.Now()}
	if err := sink.Write(ctx, empty, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	ok, err := sink.HasRun(ctx, empty.ID)
	if err != nil {
		t.Fatalf("HasRun failed: %v", err)
	}
	if !ok {
		t.Error("expected a run without records to exist")
	}

	ok, err = sink.HasRun(ctx, "missing")
	if err != nil {
		t.Fatalf("HasRun failed: %v", err)
	}
	if ok {
		t.Error("expected unknown run to be absent")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if s, err := Open(ctx, FormatCSV, filepath.Join(dir, "a.csv"), 3); err != nil {
		t.Errorf("csv: %v", err)
	} else if _, ok := s.(*CSVSink); !ok {
		t.Errorf("expected *CSVSink, got %T", s)
	}

	if s, err := Open(ctx, FormatJSON, "-", 3); err != nil {
		t.Errorf("json: %v", err)
	} else if _, ok := s.(*JSONSink); !ok {
		t.Errorf("expected *JSONSink, got %T", s)
	}

	s, err := Open(ctx, FormatSQLite, filepath.Join(dir, "a.db"), 3)
	if err != nil {
		t.Errorf("sqlite: %v", err)
	} else {
		_ = s.Close()
	}

	if _, err := Open(ctx, FormatSQLite, "-", 3); !errors.Is(err, model.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for sqlite on stdout, got %v", err)
	}
	if _, err := Open(ctx, "xml", "out.xml", 3); !errors.Is(err, model.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown format, got %v", err)
	}
}
