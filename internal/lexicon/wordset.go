// Package lexicon loads the sentiment word lists and stop-word lists the
// scoring engine depends on. All sets are normalized to lowercase and are
// read-only once constructed.
package lexicon

import (
	"sort"
	"strings"
)

// WordSet is an immutable set of normalized words
type WordSet struct {
	words map[string]struct{}
}

// NewWordSet builds a set from words, lowercasing and trimming each entry.
// Empty entries are ignored.
func NewWordSet(words ...string) *WordSet {
	s := &WordSet{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if w = normalize(w); w != "" {
			s.words[w] = struct{}{}
		}
	}
	return s
}

// Contains reports whether the normalized word is in the set
func (s *WordSet) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[word]
	return ok
}

// Len returns the number of words
func (s *WordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Words returns the words in sorted order
func (s *WordSet) Words() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// without returns a copy of s minus every word for which drop returns true
func (s *WordSet) without(drop func(string) bool) *WordSet {
	out := &WordSet{words: make(map[string]struct{}, s.Len())}
	if s == nil {
		return out
	}
	for w := range s.words {
		if !drop(w) {
			out.words[w] = struct{}{}
		}
	}
	return out
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
