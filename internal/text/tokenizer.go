// Package text splits cleaned article text into sentences and word tokens and
// estimates syllable counts.
//
// Word rule set (fixed, it drives every derived metric):
//   - any rune that is not a letter, digit or apostrophe is a boundary, so
//     hyphenated compounds split into their parts;
//   - apostrophes are removed ("don't" -> "dont", "cat's" -> "cats");
//   - a field counts as a word only if every remaining rune is a letter, so
//     numerals ("2024") and mixed tokens ("3rd", "mp3") are never counted.
package text

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/ppiankov/articlescore/internal/lexicon"
)

// WordToken is one word occurrence
type WordToken struct {
	Raw  string // Original casing, apostrophes removed
	Norm string // Lowercased form used for lookups
}

// Tokenized is a document split into sentences of unfiltered word tokens
type Tokenized struct {
	Sentences [][]WordToken
}

// SentenceCount returns the number of sentences, including sentences
// without any word tokens
func (t Tokenized) SentenceCount() int {
	return len(t.Sentences)
}

// Words returns all unfiltered tokens in order
func (t Tokenized) Words() []WordToken {
	n := 0
	for _, s := range t.Sentences {
		n += len(s)
	}
	out := make([]WordToken, 0, n)
	for _, s := range t.Sentences {
		out = append(out, s...)
	}
	return out
}

// Tokenizer segments text with an English Punkt model. The model is
// read-only after construction and safe for concurrent use.
type Tokenizer struct {
	punkt *sentences.DefaultSentenceTokenizer
}

// NewTokenizer loads the English Punkt model
func NewTokenizer() (*Tokenizer, error) {
	punkt, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load sentence model: %w", err)
	}
	return &Tokenizer{punkt: punkt}, nil
}

// SegmentSentences splits text into trimmed, non-empty sentences using
// abbreviation-aware boundary detection
func (t *Tokenizer) SegmentSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []string
	for _, s := range t.punkt.Tokenize(text) {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Tokenize segments text and tokenizes every sentence
func (t *Tokenizer) Tokenize(text string) Tokenized {
	raw := t.SegmentSentences(text)
	out := Tokenized{Sentences: make([][]WordToken, 0, len(raw))}
	for _, s := range raw {
		out.Sentences = append(out.Sentences, TokenizeWords(s))
	}
	return out
}

// TokenizeWords splits a sentence into word tokens
func TokenizeWords(sentence string) []WordToken {
	fields := strings.FieldsFunc(sentence, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !isApostrophe(r)
	})

	tokens := make([]WordToken, 0, len(fields))
	for _, f := range fields {
		word := stripApostrophes(f)
		if word == "" || !isAlpha(word) {
			continue
		}
		tokens = append(tokens, WordToken{Raw: word, Norm: strings.ToLower(word)})
	}
	return tokens
}

// FilterStopWords drops tokens whose normalized form is a stop word
func FilterStopWords(tokens []WordToken, stop *lexicon.WordSet) []WordToken {
	out := make([]WordToken, 0, len(tokens))
	for _, tok := range tokens {
		if !stop.Contains(tok.Norm) {
			out = append(out, tok)
		}
	}
	return out
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’' || r == '‘'
}

func stripApostrophes(s string) string {
	if !strings.ContainsFunc(s, isApostrophe) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if !isApostrophe(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
