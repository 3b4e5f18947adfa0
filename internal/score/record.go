package score

import "github.com/ppiankov/articlescore/internal/model"

// Record merges both scores into the export record for document id
func Record(id string, s SentimentScore, r ReadabilityScore) model.MetricsRecord {
	return model.MetricsRecord{
		ID:                  id,
		PositiveScore:       s.Positive,
		NegativeScore:       s.Negative,
		PolarityScore:       s.Polarity,
		SubjectivityScore:   s.Subjectivity,
		AvgSentenceLength:   r.AvgSentenceLength,
		PctComplexWords:     r.PctComplexWords,
		FogIndex:            r.FogIndex,
		AvgWordsPerSentence: r.AvgWordsPerSentence,
		ComplexWordCount:    r.ComplexWordCount,
		WordCount:           r.WordCount,
		SyllablesPerWord:    r.SyllablesPerWord,
		PersonalPronouns:    r.PersonalPronouns,
		AvgWordLength:       r.AvgWordLength,
		SentenceCount:       r.SentenceCount,
	}
}
