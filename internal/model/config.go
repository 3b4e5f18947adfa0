package model

import (
	"fmt"
	"runtime"
	"time"
)

// Config holds all articlescore settings
type Config struct {
	Lexicon     LexiconConfig     `yaml:"lexicon" mapstructure:"lexicon"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
}

// LexiconConfig locates the word lists
type LexiconConfig struct {
	Positive      string   `yaml:"positive" mapstructure:"positive"`             // Positive word list
	Negative      string   `yaml:"negative" mapstructure:"negative"`             // Negative word list
	StopWords     []string `yaml:"stopwords" mapstructure:"stopwords"`           // Files or directories of stop-word lists
	CommentPrefix string   `yaml:"comment_prefix" mapstructure:"comment_prefix"` // Lines starting with this are skipped
}

// ConcurrencyConfig sizes the worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig controls the analyzed-record cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls the export sink
type OutputConfig struct {
	Format    string `yaml:"format" mapstructure:"format"` // csv, json, sqlite
	Path      string `yaml:"path" mapstructure:"path"`
	Precision int    `yaml:"precision" mapstructure:"precision"` // Decimals for float columns, -1 for full precision
}

// LoggingConfig controls the slog handler
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"` // Empty disables the endpoint
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Lexicon: LexiconConfig{
			Positive:      "data/MasterDictionary/positive-words.txt",
			Negative:      "data/MasterDictionary/negative-words.txt",
			StopWords:     []string{"data/StopWords"},
			CommentPrefix: ";",
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Cache: CacheConfig{
			Enabled:   false,
			Dir:       ".articlescore-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			Format:    "csv",
			Path:      "Output Data Structure.csv",
			Precision: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Lexicon.Positive == "" {
		return fmt.Errorf("%w: lexicon.positive is required", ErrInvalidConfig)
	}
	if c.Lexicon.Negative == "" {
		return fmt.Errorf("%w: lexicon.negative is required", ErrInvalidConfig)
	}
	if c.Concurrency.Workers < 1 {
		return fmt.Errorf("%w: concurrency.workers must be >= 1, got %d", ErrInvalidConfig, c.Concurrency.Workers)
	}
	switch c.Output.Format {
	case "csv", "json", "sqlite":
	default:
		return fmt.Errorf("%w: unknown output.format %q", ErrInvalidConfig, c.Output.Format)
	}
	if c.Output.Precision < -1 || c.Output.Precision > 15 {
		return fmt.Errorf("%w: output.precision must be in [-1, 15], got %d", ErrInvalidConfig, c.Output.Precision)
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		return fmt.Errorf("%w: cache.dir is required when cache is enabled", ErrInvalidConfig)
	}
	return nil
}
