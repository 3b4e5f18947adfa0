package model

import (
	"math"
	"strconv"
)

// MetricsRecord holds the sentiment and readability metrics of one document.
type MetricsRecord struct {
	ID                  string  `json:"filename"`
	PositiveScore       int     `json:"positive_score"`
	NegativeScore       int     `json:"negative_score"`
	PolarityScore       float64 `json:"polarity_score"`
	SubjectivityScore   float64 `json:"subjectivity_score"`
	AvgSentenceLength   float64 `json:"avg_sentence_length"`
	PctComplexWords     float64 `json:"pct_complex_words"` // Fraction in [0,1]
	FogIndex            float64 `json:"fog_index"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"` // Same value as AvgSentenceLength
	ComplexWordCount    int     `json:"complex_word_count"`
	WordCount           int     `json:"word_count"`
	SyllablesPerWord    float64 `json:"syllables_per_word"`
	PersonalPronouns    int     `json:"personal_pronouns"`
	AvgWordLength       float64 `json:"avg_word_length"`

	// SentenceCount is diagnostic only and not part of the export schema.
	SentenceCount int `json:"-"`
}

// Export column names, in output order.
const (
	ColFilename            = "FILENAME"
	ColPositiveScore       = "POSITIVE SCORE"
	ColNegativeScore       = "NEGATIVE SCORE"
	ColPolarityScore       = "POLARITY SCORE"
	ColSubjectivityScore   = "SUBJECTIVITY SCORE"
	ColAvgSentenceLength   = "AVG SENTENCE LENGTH"
	ColPctComplexWords     = "PERCENTAGE OF COMPLEX WORDS"
	ColFogIndex            = "FOG INDEX"
	ColAvgWordsPerSentence = "AVG NUMBER OF WORDS PER SENTENCE"
	ColComplexWordCount    = "COMPLEX WORD COUNT"
	ColWordCount           = "WORD COUNT"
	ColSyllablePerWord     = "SYLLABLE PER WORD"
	ColPersonalPronouns    = "PERSONAL PRONOUNS"
	ColAvgWordLength       = "AVG WORD LENGTH"
)

// Columns is the export header.
var Columns = []string{
	ColFilename,
	ColPositiveScore,
	ColNegativeScore,
	ColPolarityScore,
	ColSubjectivityScore,
	ColAvgSentenceLength,
	ColPctComplexWords,
	ColFogIndex,
	ColAvgWordsPerSentence,
	ColComplexWordCount,
	ColWordCount,
	ColSyllablePerWord,
	ColPersonalPronouns,
	ColAvgWordLength,
}

// ZeroRecord returns the all-zero record for a document that could not be analyzed.
func ZeroRecord(id string) MetricsRecord {
	return MetricsRecord{ID: id}
}

// WithID returns a copy of the record keyed by id.
func (r MetricsRecord) WithID(id string) MetricsRecord {
	r.ID = id
	return r
}

// IsZero reports whether every metric is zero.
func (r MetricsRecord) IsZero() bool {
	return r.WithID("") == MetricsRecord{}
}

// Row renders the record as strings in Columns order. Floats are rounded to
// precision decimals; a negative precision keeps full precision.
func (r MetricsRecord) Row(precision int) []string {
	f := func(v float64) string {
		if precision >= 0 {
			v = Round(v, precision)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	i := strconv.Itoa

	return []string{
		r.ID,
		i(r.PositiveScore),
		i(r.NegativeScore),
		f(r.PolarityScore),
		f(r.SubjectivityScore),
		f(r.AvgSentenceLength),
		f(r.PctComplexWords),
		f(r.FogIndex),
		f(r.AvgWordsPerSentence),
		i(r.ComplexWordCount),
		i(r.WordCount),
		f(r.SyllablesPerWord),
		i(r.PersonalPronouns),
		f(r.AvgWordLength),
	}
}

// Field is one named column of a rendered record.
type Field struct {
	Name  string
	Value any
}

// Fields returns the record in Columns order, rounded like Row. FILENAME is
// a string and every metric a float64.
func (r MetricsRecord) Fields(precision int) []Field {
	row := r.Row(precision)
	out := make([]Field, 0, len(Columns))
	out = append(out, Field{Name: ColFilename, Value: r.ID})
	for idx := 1; idx < len(Columns); idx++ {
		if n, err := strconv.ParseFloat(row[idx], 64); err == nil {
			out = append(out, Field{Name: Columns[idx], Value: n})
		}
	}
	return out
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
