package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/articlescore/internal/cache"
	"github.com/ppiankov/articlescore/internal/export"
	"github.com/ppiankov/articlescore/internal/model"
	"github.com/ppiankov/articlescore/internal/pipeline"
	"github.com/ppiankov/articlescore/internal/worker"
)

// testContext mirrors testing.T.Context (Go 1.24+): the context is
// canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// setupLexicons writes a tiny lexicon set and points the env config at it
func setupLexicons(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	pos := filepath.Join(dir, "positive-words.txt")
	neg := filepath.Join(dir, "negative-words.txt")
	stop := filepath.Join(dir, "StopWords")

	writeFile(t, pos, ";comment\nhappy\ngood\n")
	writeFile(t, neg, ";comment\nsad\nbad\n")
	writeFile(t, filepath.Join(stop, "generic.txt"), "the\nit\nwas\n")

	t.Setenv("HOME", t.TempDir())
	t.Setenv("ARTICLESCORE_LEXICON_POSITIVE", pos)
	t.Setenv("ARTICLESCORE_LEXICON_NEGATIVE", neg)
	t.Setenv("ARTICLESCORE_LEXICON_STOPWORDS", stop)
	initConfig()
}

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v, model.DefaultConfig())

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Output.Format != "csv" || cfg.Output.Precision != 3 {
		t.Errorf("unexpected output defaults: %+v", cfg.Output)
	}
	if cfg.Cache.MemoryTTL != 30*time.Minute {
		t.Errorf("expected 30m memory ttl, got %v", cfg.Cache.MemoryTTL)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "output:\n  format: json\n  precision: 5\ncache:\n  memory_ttl: 1m\n")
	t.Setenv("ARTICLESCORE_OUTPUT_PRECISION", "2")

	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected json from file, got %s", cfg.Output.Format)
	}
	if cfg.Output.Precision != 2 {
		t.Errorf("expected env to override file precision, got %d", cfg.Output.Precision)
	}
	if cfg.Cache.MemoryTTL != time.Minute {
		t.Errorf("expected 1m memory ttl, got %v", cfg.Cache.MemoryTTL)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	v.Set("output.format", "xml")

	if _, err := loadConfig(v); !errors.Is(err, model.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".articlescore", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	// The written file must load back into the defaults
	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("written config is not readable: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.DiskTTL != model.DefaultConfig().Cache.DiskTTL {
		t.Errorf("expected disk ttl to round-trip, got %v", cfg.Cache.DiskTTL)
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestPrintSummary(t *testing.T) {
	result := &worker.BatchResult{
		RunID:   "01HZX",
		Total:   3,
		Records: []model.MetricsRecord{{ID: "1"}, {ID: "2"}},
		Errors: []*model.DocumentAnalysisError{
			{DocumentID: "2", Err: model.ErrEmptyDocument},
		},
	}

	var buf bytes.Buffer
	printSummary(&buf, result, model.OutputConfig{Path: "out.csv"})
	out := buf.String()

	for _, want := range []string{"Failures:  1", "Scored:    1", "Skipped:   1", "✗ 2: document text is empty"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q, got:\n%s", want, out)
		}
	}
}

func TestWriteScoreReport(t *testing.T) {
	setupLexicons(t)
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		t.Fatal(err)
	}
	lex, err := loadLexicons(testContext(t), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	p, err := pipeline.NewPipeline(lex)
	if err != nil {
		t.Fatal(err)
	}

	doc := model.Document{ID: "d1", Text: "The cat sat. It was happy."}
	analysis, err := p.Explain(doc)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeScoreReport(&buf, doc, analysis, 3); err != nil {
		t.Fatalf("writeScoreReport failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"id: d1", "POSITIVE SCORE: 1", "name: fog_index"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, out)
		}
	}

	prev := -1
	for _, col := range model.Columns {
		idx := strings.Index(out, "\n  "+col+":")
		if idx < 0 {
			t.Fatalf("expected metric %q in report, got:\n%s", col, out)
		}
		if idx < prev {
			t.Errorf("expected metric %q after the previous column", col)
		}
		prev = idx
	}
}

func TestAnalyzeCommand_EndToEnd(t *testing.T) {
	setupLexicons(t)

	input := t.TempDir()
	writeFile(t, filepath.Join(input, "2.txt"), "The market was bad. It was sad.")
	writeFile(t, filepath.Join(input, "1.txt"), "The cat sat. It was happy.")
	writeFile(t, filepath.Join(input, "3.txt"), "   ")

	out := filepath.Join(t.TempDir(), "scores.csv")
	rootCmd.SetArgs([]string{"analyze", input, "--output", out, "--format", "csv", "--workers", "2"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != model.ColFilename || len(rows[0]) != 14 {
		t.Errorf("unexpected header %v", rows[0])
	}

	ids := []string{rows[1][0], rows[2][0], rows[3][0]}
	if strings.Join(ids, ",") != "1,2,3" {
		t.Errorf("expected rows in id order, got %v", ids)
	}
	if rows[1][1] != "1" || rows[2][2] != "2" {
		t.Errorf("unexpected sentiment counts: %v / %v", rows[1], rows[2])
	}
	for _, v := range rows[3][1:] {
		if v != "0" {
			t.Errorf("expected zero row for blank document, got %v", rows[3])
			break
		}
	}
}

func TestRunsCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "scores.db")

	db, err := export.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	full := export.Run{ID: "01HZX0000000000000000000AA", StartedAt: time.Now(), Total: 1}
	empty := export.Run{ID: "01HZX0000000000000000000BB", StartedAt: time.Now()}
	if err := db.Write(ctx, full, []model.MetricsRecord{{ID: "1", WordCount: 5}}); err != nil {
		t.Fatal(err)
	}
	if err := db.Write(ctx, empty, nil); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	t.Cleanup(func() {
		runsShow = ""
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"runs", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("runs failed: %v", err)
	}
	for _, want := range []string{"RUN", full.ID, empty.ID} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected listing to contain %q, got:\n%s", want, buf.String())
		}
	}

	// A stored run without records is shown as a bare header
	buf.Reset()
	rootCmd.SetArgs([]string{"runs", path, "--show", empty.ID})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("runs --show of an empty run failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != strings.Join(model.Columns, ",") {
		t.Errorf("expected header only, got %q", got)
	}

	buf.Reset()
	rootCmd.SetArgs([]string{"runs", path, "--show", "01HZX0000000000000000000ZZ"})
	if err := rootCmd.Execute(); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestRunsCommand_MissingDatabase(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "absent.db")

	runsShow = ""
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	rootCmd.SetArgs([]string{"runs", path})
	if err := rootCmd.Execute(); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("expected missing database error, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected runs to leave a missing database uncreated")
	}
}

func TestAnalyzeFlagDefaults(t *testing.T) {
	def := model.DefaultConfig()
	cases := map[string]string{
		"precision": "3",
		"workers":   strconv.Itoa(def.Concurrency.Workers),
		"format":    def.Output.Format,
		"output":    def.Output.Path,
		"cache-dir": def.Cache.Dir,
	}
	for name, want := range cases {
		flag := analyzeCmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("missing flag --%s", name)
		}
		if flag.DefValue != want {
			t.Errorf("--%s default = %q, want %q", name, flag.DefValue, want)
		}
	}
}

func TestCacheClearCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := filepath.Join(t.TempDir(), "cache")

	c := cache.NewDiskCache(dir, time.Hour)
	key := cache.RecordKey("fp", "text")
	if err := c.Set(key, []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	rootCmd.SetArgs([]string{"cache", "clear", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("cache clear failed: %v", err)
	}

	if _, ok := c.Get(key); ok {
		t.Error("expected cached record to be gone")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("expected cache directory to be removed")
	}
}
