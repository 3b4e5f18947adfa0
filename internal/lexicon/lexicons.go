package lexicon

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/articlescore/internal/logger"
)

// Lexicons bundles the positive, negative and stop-word sets used by every
// analysis. It is built once at startup and shared read-only.
type Lexicons struct {
	Positive *WordSet
	Negative *WordSet
	Stop     *WordSet

	// Overlap lists words found in both polarity lists; they were removed from both.
	Overlap []string

	fingerprint string
}

// NewLexicons enforces the lexicon invariants: stop words are removed from
// both polarity sets, and words present in both polarity sets are dropped
// from each.
func NewLexicons(positive, negative, stop *WordSet) *Lexicons {
	if stop == nil {
		stop = NewWordSet()
	}

	var overlap []string
	for _, w := range positive.Words() {
		if negative.Contains(w) {
			overlap = append(overlap, w)
		}
	}
	inOverlap := NewWordSet(overlap...)

	drop := func(w string) bool { return stop.Contains(w) || inOverlap.Contains(w) }

	l := &Lexicons{
		Positive: positive.without(drop),
		Negative: negative.without(drop),
		Stop:     stop,
		Overlap:  overlap,
	}
	l.fingerprint = l.computeFingerprint()
	return l
}

// Fingerprint identifies the lexicon contents. Two Lexicons with equal
// fingerprints score every document identically.
func (l *Lexicons) Fingerprint() string {
	return l.fingerprint
}

func (l *Lexicons) computeFingerprint() string {
	h := sha256.New()
	for _, set := range []*WordSet{l.Positive, l.Negative, l.Stop} {
		for _, w := range set.Words() {
			h.Write([]byte(w))
			h.Write([]byte{'\n'})
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Paths locates the three lexicon sources
type Paths struct {
	Positive      string
	Negative      string
	StopWords     []string
	CommentPrefix string
}

// LoadLexicons loads all sources concurrently. The first failure cancels the
// remaining loads and is returned as *model.LoadError.
func LoadLexicons(ctx context.Context, paths Paths) (*Lexicons, error) {
	opts := LoadOptions{CommentPrefix: paths.CommentPrefix}

	var positive, negative, stop *WordSet
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		set, stats, err := LoadFile(paths.Positive, opts)
		if err != nil {
			return err
		}
		logLoad(paths.Positive, stats)
		positive = set
		return ctx.Err()
	})
	g.Go(func() error {
		set, stats, err := LoadFile(paths.Negative, opts)
		if err != nil {
			return err
		}
		logLoad(paths.Negative, stats)
		negative = set
		return ctx.Err()
	})
	g.Go(func() error {
		set, err := LoadStopWords(paths.StopWords...)
		if err != nil {
			return err
		}
		stop = set
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	lex := NewLexicons(positive, negative, stop)
	logger.WithComponent("lexicon").Info("lexicons loaded",
		"positive", lex.Positive.Len(),
		"negative", lex.Negative.Len(),
		"stopwords", lex.Stop.Len(),
		"overlap_removed", len(lex.Overlap),
		"fingerprint", lex.Fingerprint(),
	)
	return lex, nil
}

func logLoad(path string, stats LoadStats) {
	if stats.Skipped > 0 {
		logger.WithComponent("lexicon").Warn("skipped malformed lines",
			"source", path, "skipped", stats.Skipped)
	}
}
