package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/articlescore/internal/model"
)

// SQLiteSink appends runs to a SQLite database. Every run is written in one
// transaction so a failed export leaves no partial run behind.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path with WAL mode enabled
func OpenSQLite(ctx context.Context, path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteSink{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	lexicon_fingerprint TEXT,
	total INTEGER NOT NULL,
	failed INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS metrics (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	filename TEXT NOT NULL,
	positive_score INTEGER NOT NULL,
	negative_score INTEGER NOT NULL,
	polarity_score REAL NOT NULL,
	subjectivity_score REAL NOT NULL,
	avg_sentence_length REAL NOT NULL,
	pct_complex_words REAL NOT NULL,
	fog_index REAL NOT NULL,
	avg_words_per_sentence REAL NOT NULL,
	complex_word_count INTEGER NOT NULL,
	word_count INTEGER NOT NULL,
	syllables_per_word REAL NOT NULL,
	personal_pronouns INTEGER NOT NULL,
	avg_word_length REAL NOT NULL,
	sentence_count INTEGER NOT NULL,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_metrics_filename ON metrics(filename);

CREATE TABLE IF NOT EXISTS run_errors (
	run_id TEXT NOT NULL,
	document_id TEXT NOT NULL,
	error TEXT NOT NULL,
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Write stores the run, its records at full precision, and its errors
func (s *SQLiteSink) Write(ctx context.Context, run Run, records []model.MetricsRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, lexicon_fingerprint, total, failed) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.LexiconFingerprint,
		run.Total,
		len(run.Errors),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO metrics (
	run_id, position, filename, positive_score, negative_score, polarity_score,
	subjectivity_score, avg_sentence_length, pct_complex_words, fog_index,
	avg_words_per_sentence, complex_word_count, word_count, syllables_per_word,
	personal_pronouns, avg_word_length, sentence_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare metrics: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			run.ID, i, r.ID,
			r.PositiveScore, r.NegativeScore, r.PolarityScore,
			r.SubjectivityScore, r.AvgSentenceLength, r.PctComplexWords, r.FogIndex,
			r.AvgWordsPerSentence, r.ComplexWordCount, r.WordCount, r.SyllablesPerWord,
			r.PersonalPronouns, r.AvgWordLength, r.SentenceCount,
		)
		if err != nil {
			return fmt.Errorf("insert metrics %s: %w", r.ID, err)
		}
	}

	if len(run.Errors) > 0 {
		errStmt, err := tx.PrepareContext(ctx, `INSERT INTO run_errors (run_id, document_id, error) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare run_errors: %w", err)
		}
		defer errStmt.Close()

		for _, e := range run.Errors {
			if _, err := errStmt.ExecContext(ctx, run.ID, e.DocumentID, e.Err.Error()); err != nil {
				return fmt.Errorf("insert run error %s: %w", e.DocumentID, err)
			}
		}
	}

	return tx.Commit()
}

// RunSummary is one row of the runs table
type RunSummary struct {
	ID                 string
	StartedAt          time.Time
	LexiconFingerprint string
	Total              int
	Failed             int
}

// Runs lists stored runs, newest first
func (s *SQLiteSink) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(lexicon_fingerprint, ''), total, failed FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var started string
		if err := rows.Scan(&rs.ID, &started, &rs.LexiconFingerprint, &rs.Total, &rs.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			rs.StartedAt = t
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Records loads the records of a run in export order
func (s *SQLiteSink) Records(ctx context.Context, runID string) ([]model.MetricsRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
	filename, positive_score, negative_score, polarity_score, subjectivity_score,
	avg_sentence_length, pct_complex_words, fog_index, avg_words_per_sentence,
	complex_word_count, word_count, syllables_per_word, personal_pronouns,
	avg_word_length, sentence_count
FROM metrics WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []model.MetricsRecord
	for rows.Next() {
		var r model.MetricsRecord
		err := rows.Scan(
			&r.ID, &r.PositiveScore, &r.NegativeScore, &r.PolarityScore, &r.SubjectivityScore,
			&r.AvgSentenceLength, &r.PctComplexWords, &r.FogIndex, &r.AvgWordsPerSentence,
			&r.ComplexWordCount, &r.WordCount, &r.SyllablesPerWord, &r.PersonalPronouns,
			&r.AvgWordLength, &r.SentenceCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// HasRun reports whether a run with this id was stored, even one with no records
func (s *SQLiteSink) HasRun(ctx context.Context, runID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query run: %w", err)
	}
	return true, nil
}

// RunErrors loads the per-document errors of a run
func (s *SQLiteSink) RunErrors(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document_id, error FROM run_errors WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run_errors: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, msg string
		if err := rows.Scan(&id, &msg); err != nil {
			return nil, fmt.Errorf("scan run error: %w", err)
		}
		out[id] = msg
	}
	return out, rows.Err()
}
