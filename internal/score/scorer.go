package score

import "github.com/ppiankov/articlescore/internal/lexicon"

// Epsilon keeps the polarity and subjectivity ratios defined when their
// denominators are zero
const Epsilon = 1e-6

// DefaultPronouns are the personal pronouns counted by Readability
var DefaultPronouns = []string{"i", "we", "my", "ours", "us"}

// excludedPronounForm is matched case-sensitively against the raw token so
// the country abbreviation is not counted as "us"
const excludedPronounForm = "US"

// Scorer computes sentiment and readability metrics. It holds no per-call
// state and is safe for concurrent use.
type Scorer struct {
	epsilon  float64
	pronouns *lexicon.WordSet
}

// NewScorer creates a scorer with the default epsilon and pronoun set
func NewScorer() *Scorer {
	return &Scorer{
		epsilon:  Epsilon,
		pronouns: lexicon.NewWordSet(DefaultPronouns...),
	}
}
