package score

import (
	"github.com/ppiankov/articlescore/internal/lexicon"
	"github.com/ppiankov/articlescore/internal/model"
	"github.com/ppiankov/articlescore/internal/text"
)

// SentimentScore is the lexicon-based sentiment of a token sequence
type SentimentScore struct {
	Positive     int
	Negative     int // Magnitude, never negative
	Polarity     float64
	Subjectivity float64
	Tokens       int // Stop-word filtered token count
}

// Sentiment scores stop-word filtered tokens against the polarity lexicons
func (s *Scorer) Sentiment(tokens []text.WordToken, lex *lexicon.Lexicons) SentimentScore {
	var pos, neg int
	for _, tok := range tokens {
		if lex.Positive.Contains(tok.Norm) {
			pos++
		}
		if lex.Negative.Contains(tok.Norm) {
			neg++
		}
	}

	return SentimentScore{
		Positive:     pos,
		Negative:     neg,
		Polarity:     float64(pos-neg) / (float64(pos+neg) + s.epsilon),
		Subjectivity: float64(pos+neg) / (float64(len(tokens)) + s.epsilon),
		Tokens:       len(tokens),
	}
}

// Signals explains each sentiment value
func (r SentimentScore) Signals() []model.Signal {
	p, n := float64(r.Positive), float64(r.Negative)
	return []model.Signal{
		{
			Name:    "positive_score",
			Value:   p,
			Formula: "count(tokens in positive lexicon)",
		},
		{
			Name:    "negative_score",
			Value:   n,
			Formula: "count(tokens in negative lexicon)",
		},
		{
			Name:    "polarity_score",
			Value:   r.Polarity,
			Formula: "(positive - negative) / (positive + negative + 1e-6)",
			Inputs:  map[string]float64{"positive": p, "negative": n},
		},
		{
			Name:    "subjectivity_score",
			Value:   r.Subjectivity,
			Formula: "(positive + negative) / (filtered_words + 1e-6)",
			Inputs:  map[string]float64{"positive": p, "negative": n, "filtered_words": float64(r.Tokens)},
		},
	}
}
