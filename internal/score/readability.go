package score

import (
	"unicode/utf8"

	"github.com/ppiankov/articlescore/internal/model"
	"github.com/ppiankov/articlescore/internal/text"
)

// ReadabilityScore holds the sentence and word statistics of a document
type ReadabilityScore struct {
	SentenceCount       int
	WordCount           int
	AvgSentenceLength   float64
	ComplexWordCount    int
	PctComplexWords     float64 // Fraction of words that are complex
	FogIndex            float64
	AvgWordsPerSentence float64
	SyllableCount       int
	SyllablesPerWord    float64
	PersonalPronouns    int
	CharCount           int
	AvgWordLength       float64
}

// Readability computes readability metrics over unfiltered tokens.
// Gunning fog: 0.4 * (words per sentence + 100 * complex fraction).
func (s *Scorer) Readability(sentenceCount int, tokens []text.WordToken) ReadabilityScore {
	r := ReadabilityScore{
		SentenceCount: sentenceCount,
		WordCount:     len(tokens),
	}

	for _, tok := range tokens {
		syl := text.CountSyllables(tok.Norm)
		r.SyllableCount += syl
		if syl > text.ComplexSyllableThreshold {
			r.ComplexWordCount++
		}
		if s.isPronoun(tok) {
			r.PersonalPronouns++
		}
		r.CharCount += utf8.RuneCountInString(tok.Norm)
	}

	words := float64(max(r.WordCount, 1))
	r.AvgSentenceLength = float64(r.WordCount) / float64(max(sentenceCount, 1))
	r.AvgWordsPerSentence = r.AvgSentenceLength
	r.PctComplexWords = float64(r.ComplexWordCount) / words
	r.FogIndex = 0.4 * (r.AvgSentenceLength + r.PctComplexWords*100)
	r.SyllablesPerWord = float64(r.SyllableCount) / words
	r.AvgWordLength = float64(r.CharCount) / words

	return r
}

func (s *Scorer) isPronoun(tok text.WordToken) bool {
	return tok.Raw != excludedPronounForm && s.pronouns.Contains(tok.Norm)
}

// Signals explains each readability value
func (r ReadabilityScore) Signals() []model.Signal {
	words := float64(r.WordCount)
	sentences := float64(r.SentenceCount)
	complexWords := float64(r.ComplexWordCount)

	return []model.Signal{
		{
			Name:    "avg_sentence_length",
			Value:   r.AvgSentenceLength,
			Formula: "words / max(sentences, 1)",
			Inputs:  map[string]float64{"words": words, "sentences": sentences},
		},
		{
			Name:    "pct_complex_words",
			Value:   r.PctComplexWords,
			Formula: "complex_words / max(words, 1)",
			Inputs:  map[string]float64{"complex_words": complexWords, "words": words},
		},
		{
			Name:    "fog_index",
			Value:   r.FogIndex,
			Formula: "0.4 * (avg_sentence_length + pct_complex_words * 100)",
			Inputs:  map[string]float64{"avg_sentence_length": r.AvgSentenceLength, "pct_complex_words": r.PctComplexWords},
		},
		{
			Name:    "syllables_per_word",
			Value:   r.SyllablesPerWord,
			Formula: "syllables / max(words, 1)",
			Inputs:  map[string]float64{"syllables": float64(r.SyllableCount), "words": words},
		},
		{
			Name:    "personal_pronouns",
			Value:   float64(r.PersonalPronouns),
			Formula: "count(i, we, my, ours, us; excluding \"US\")",
		},
		{
			Name:    "avg_word_length",
			Value:   r.AvgWordLength,
			Formula: "characters / max(words, 1)",
			Inputs:  map[string]float64{"characters": float64(r.CharCount), "words": words},
		},
	}
}
