package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/articlescore/internal/cache"
	"github.com/ppiankov/articlescore/internal/export"
	"github.com/ppiankov/articlescore/internal/ingest"
	"github.com/ppiankov/articlescore/internal/lexicon"
	"github.com/ppiankov/articlescore/internal/metrics"
	"github.com/ppiankov/articlescore/internal/model"
	"github.com/ppiankov/articlescore/internal/pipeline"
	"github.com/ppiankov/articlescore/internal/worker"
)

var (
	inputDir     string
	inputJSONL   string
	batchTimeout time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [dir]",
	Short: "Score every article in a directory or JSONL file",
	Long: `Analyze scores a corpus concurrently and exports one row per document:
- Load positive, negative and stop-word lexicons
- Read documents from a directory of .txt files or a JSONL file
- Score each document with a bounded worker pool
- Export the 14-column table as CSV, JSON or SQLite

Documents that cannot be analyzed are exported with zero metrics and listed
in the error summary.

Example:
  articlescore analyze ./articles
  articlescore analyze --jsonl corpus.jsonl --format json --output scores.json
  articlescore analyze ./articles --workers 8 --cache --metrics-addr :9090`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	f := analyzeCmd.Flags()
	f.StringVar(&inputDir, "input-dir", "", "directory of .txt articles (or pass as argument)")
	f.StringVar(&inputJSONL, "jsonl", "", "JSONL file with {id, text} objects")
	f.DurationVar(&batchTimeout, "timeout", 0, "total timeout for the batch (0 = none)")

	// Flag defaults mirror the config defaults so --help shows real values
	def := model.DefaultConfig()
	f.Int("workers", def.Concurrency.Workers, "number of concurrent workers")
	f.StringP("output", "o", def.Output.Path, "output path, - for stdout")
	f.String("format", def.Output.Format, "output format (csv, json, sqlite)")
	f.Int("precision", def.Output.Precision, "decimals for float columns, -1 for full precision")
	f.Bool("cache", def.Cache.Enabled, "cache analyzed records across runs")
	f.String("cache-dir", def.Cache.Dir, "record cache directory")
	f.String("metrics-addr", def.Metrics.Addr, "serve Prometheus metrics on this address during the run")
	f.String("positive", def.Lexicon.Positive, "positive word list")
	f.String("negative", def.Lexicon.Negative, "negative word list")
	f.StringSlice("stopwords", def.Lexicon.StopWords, "stop-word files or directories")

	bindFlags(analyzeCmd, map[string]string{
		"workers":      "concurrency.workers",
		"output":       "output.path",
		"format":       "output.format",
		"precision":    "output.precision",
		"cache":        "cache.enabled",
		"cache-dir":    "cache.dir",
		"metrics-addr": "metrics.addr",
		"positive":     "lexicon.positive",
		"negative":     "lexicon.negative",
		"stopwords":    "lexicon.stopwords",
	})
}

// bindFlags binds command flags to config keys so flags override config
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		_ = viper.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	dir := inputDir
	if len(args) == 1 {
		dir = args[0]
	}
	if (dir == "") == (inputJSONL == "") {
		return fmt.Errorf("%w: exactly one of a directory or --jsonl is required", model.ErrInvalidConfig)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, batchTimeout)
		defer cancel()
	}

	source := dir
	if inputJSONL != "" {
		source = inputJSONL
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  articlescore analyze\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input:        %s\n", source)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output:       %s (%s)\n", cfg.Output.Path, cfg.Output.Format)
	fmt.Fprintf(os.Stderr, "  Cache:        %v\n", cfg.Cache.Enabled)
	if batchTimeout > 0 {
		fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	}
	fmt.Fprintf(os.Stderr, "\n")

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		shutdown := m.StartServer(cfg.Metrics.Addr)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	// 1. Lexicons (fatal on failure)
	fmt.Fprintf(os.Stderr, "⚙️  Loading lexicons...\n")
	lex, err := loadLexicons(ctx, cfg, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ %d positive, %d negative, %d stop words\n",
		lex.Positive.Len(), lex.Negative.Len(), lex.Stop.Len())
	if len(lex.Overlap) > 0 {
		fmt.Fprintf(os.Stderr, "  %d words in both polarity lists were dropped\n", len(lex.Overlap))
	}

	// 2. Documents
	fmt.Fprintf(os.Stderr, "⚙️  Reading documents...\n")
	var docs []model.Document
	if inputJSONL != "" {
		docs, err = ingest.ReadJSONL(inputJSONL)
	} else {
		docs, err = ingest.ReadDir(dir)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d documents\n", len(docs))

	// 3. Score
	opts := []pipeline.Option{pipeline.WithMetrics(m)}
	if c := cache.New(cfg.Cache); c != nil {
		opts = append(opts, pipeline.WithCache(c))
	}
	p, err := pipeline.NewPipeline(lex, opts...)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	fmt.Fprintf(os.Stderr, "⚙️  Scoring with %d workers...\n", cfg.Concurrency.Workers)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, m)
	result, batchErr := processor.Process(ctx, docs)
	if batchErr != nil && result == nil {
		return batchErr
	}

	// 4. Export (partial results are still written on cancellation)
	run := export.Run{
		ID:                 result.RunID,
		StartedAt:          result.StartedAt,
		FinishedAt:         result.FinishedAt,
		LexiconFingerprint: lex.Fingerprint(),
		Total:              result.Total,
		Errors:             result.Errors,
	}
	exportErr := writeResults(context.Background(), cfg.Output, run, result.Records, m)

	printSummary(os.Stderr, result, cfg.Output)

	return errors.Join(batchErr, exportErr)
}

func loadLexicons(ctx context.Context, cfg *model.Config, m *metrics.Metrics) (*lexicon.Lexicons, error) {
	lex, err := lexicon.LoadLexicons(ctx, lexicon.Paths{
		Positive:      cfg.Lexicon.Positive,
		Negative:      cfg.Lexicon.Negative,
		StopWords:     cfg.Lexicon.StopWords,
		CommentPrefix: cfg.Lexicon.CommentPrefix,
	})
	if err != nil {
		return nil, err
	}
	m.SetLexiconSize("positive", lex.Positive.Len())
	m.SetLexiconSize("negative", lex.Negative.Len())
	m.SetLexiconSize("stop", lex.Stop.Len())
	return lex, nil
}

func writeResults(ctx context.Context, out model.OutputConfig, run export.Run, records []model.MetricsRecord, m *metrics.Metrics) (err error) {
	defer func() { m.ObserveExport(out.Format, err) }()

	sink, err := export.Open(ctx, out.Format, out.Path, out.Precision)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close sink: %w", cerr)
		}
	}()

	if err := sink.Write(ctx, run, records); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, result *worker.BatchResult, out model.OutputConfig) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Batch Complete\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Run:       %s\n", result.RunID)
	fmt.Fprintf(w, "  Total:     %d documents\n", result.Total)
	fmt.Fprintf(w, "  Scored:    %d\n", len(result.Records)-result.Failed())
	fmt.Fprintf(w, "  Failures:  %d\n", result.Failed())
	if skipped := result.Total - len(result.Records); skipped > 0 {
		fmt.Fprintf(w, "  Skipped:   %d (interrupted)\n", skipped)
	}
	fmt.Fprintf(w, "  Duration:  %v\n", result.Duration().Round(time.Millisecond))
	fmt.Fprintf(w, "  Output:    %s\n", out.Path)
	fmt.Fprintf(w, "\n")

	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s: %v\n", e.DocumentID, e.Err)
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\n")
	}
}
