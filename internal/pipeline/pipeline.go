package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/articlescore/internal/cache"
	"github.com/ppiankov/articlescore/internal/lexicon"
	"github.com/ppiankov/articlescore/internal/logger"
	"github.com/ppiankov/articlescore/internal/metrics"
	"github.com/ppiankov/articlescore/internal/model"
	"github.com/ppiankov/articlescore/internal/score"
	"github.com/ppiankov/articlescore/internal/text"
)

// Pipeline turns one document into one metrics record:
// segment → tokenize → filter stop words → score → merge.
type Pipeline struct {
	lexicons  *lexicon.Lexicons
	tokenizer *text.Tokenizer
	scorer    *score.Scorer
	cache     cache.Cache // Optional record cache (nil if disabled)
	metrics   *metrics.Metrics
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithCache enables the record cache
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithMetrics records cache hits and misses
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// NewPipeline creates a pipeline scoring against lex
func NewPipeline(lex *lexicon.Lexicons, opts ...Option) (*Pipeline, error) {
	if lex == nil {
		return nil, fmt.Errorf("%w: lexicons are required", model.ErrInvalidConfig)
	}

	tokenizer, err := text.NewTokenizer()
	if err != nil {
		return nil, fmt.Errorf("tokenizer: %w", err)
	}

	p := &Pipeline{
		lexicons:  lex,
		tokenizer: tokenizer,
		scorer:    score.NewScorer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Analysis is the detailed result of scoring one document
type Analysis struct {
	Record      model.MetricsRecord
	Sentiment   score.SentimentScore
	Readability score.ReadabilityScore
}

// Signals returns the explainable breakdown of every metric
func (a *Analysis) Signals() []model.Signal {
	return append(a.Sentiment.Signals(), a.Readability.Signals()...)
}

// Analyze scores a document. A document that cannot be analyzed yields a
// zero-valued record keyed by its ID together with a
// *model.DocumentAnalysisError.
func (p *Pipeline) Analyze(ctx context.Context, doc model.Document) (model.MetricsRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.ZeroRecord(doc.ID), err
	}

	var key string
	if p.cache != nil {
		key = cache.RecordKey(p.lexicons.Fingerprint(), doc.Text)
		rec, ok := p.cached(key)
		p.metrics.ObserveCache(ok)
		if ok {
			return rec.WithID(doc.ID), nil
		}
	}

	analysis, err := p.Explain(doc)
	if err != nil {
		return model.ZeroRecord(doc.ID), err
	}

	if p.cache != nil {
		p.store(key, analysis.Record)
	}
	return analysis.Record, nil
}

// Explain scores a document and keeps the intermediate scores
func (p *Pipeline) Explain(doc model.Document) (*Analysis, error) {
	if err := validate(doc.Text); err != nil {
		return nil, &model.DocumentAnalysisError{DocumentID: doc.ID, Err: err}
	}

	// 1. Segment and tokenize (unfiltered)
	tokenized := p.tokenizer.Tokenize(doc.Text)
	words := tokenized.Words()
	if len(words) == 0 {
		return nil, &model.DocumentAnalysisError{DocumentID: doc.ID, Err: model.ErrNoWords}
	}

	// 2. Stop-word filtering applies to sentiment only
	filtered := text.FilterStopWords(words, p.lexicons.Stop)

	// 3. Score
	sentiment := p.scorer.Sentiment(filtered, p.lexicons)
	readability := p.scorer.Readability(tokenized.SentenceCount(), words)

	return &Analysis{
		Record:      score.Record(doc.ID, sentiment, readability),
		Sentiment:   sentiment,
		Readability: readability,
	}, nil
}

// validate rejects input that is not analyzable text
func validate(s string) error {
	if strings.TrimSpace(s) == "" {
		return model.ErrEmptyDocument
	}
	if !utf8.ValidString(s) || strings.ContainsRune(s, 0) {
		return model.ErrNonText
	}
	return nil
}

func (p *Pipeline) cached(key string) (model.MetricsRecord, bool) {
	data, ok := p.cache.Get(key)
	if !ok {
		return model.MetricsRecord{}, false
	}

	var entry cachedRecord
	if err := json.Unmarshal(data, &entry); err != nil {
		logger.WithComponent("pipeline").Debug("discarding unreadable cache entry", "key", key, "error", err)
		_ = p.cache.Delete(key)
		return model.MetricsRecord{}, false
	}
	return entry.record(), true
}

func (p *Pipeline) store(key string, rec model.MetricsRecord) {
	data, err := json.Marshal(newCachedRecord(rec))
	if err != nil {
		return
	}
	if err := p.cache.Set(key, data, 0); err != nil {
		logger.WithComponent("pipeline").Debug("cache write failed", "key", key, "error", err)
	}
}

// cachedRecord keeps the diagnostic sentence count that MetricsRecord omits from JSON
type cachedRecord struct {
	Record        model.MetricsRecord `json:"record"`
	SentenceCount int                 `json:"sentence_count"`
}

func newCachedRecord(r model.MetricsRecord) cachedRecord {
	return cachedRecord{Record: r, SentenceCount: r.SentenceCount}
}

func (c cachedRecord) record() model.MetricsRecord {
	r := c.Record
	r.SentenceCount = c.SentenceCount
	return r
}
