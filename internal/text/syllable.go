package text

import "strings"

// ComplexSyllableThreshold is the syllable count above which a word is complex
const ComplexSyllableThreshold = 2

// CountSyllables estimates the syllables in word. It is a vowel-group
// heuristic, not a phonetic lookup:
//   - vowels are a, e, i, o, u, and y when it is not the first letter;
//   - every maximal run of vowels is one syllable;
//   - a trailing "es" or "ed" whose e forms its own run is not counted,
//     even where it is pronounced ("wanted", "boxes");
//   - the result is never below 1, even for "" or vowel-less acronyms.
func CountSyllables(word string) int {
	runes := []rune(strings.ToLower(word))

	count := 0
	prevVowel := false
	for i, r := range runes {
		v := isVowel(r, i)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	if silentSuffix(runes) {
		count--
	}

	if count < 1 {
		return 1
	}
	return count
}

// IsComplex reports whether word has more than ComplexSyllableThreshold syllables
func IsComplex(word string) bool {
	return CountSyllables(word) > ComplexSyllableThreshold
}

// silentSuffix reports whether the word ends in an "es" or "ed" whose e is
// a vowel run of its own
func silentSuffix(runes []rune) bool {
	n := len(runes)
	if n < 3 || runes[n-2] != 'e' {
		return false
	}
	if runes[n-1] != 's' && runes[n-1] != 'd' {
		return false
	}
	return !isVowel(runes[n-3], n-3)
}

func isVowel(r rune, pos int) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	case 'y':
		return pos > 0
	}
	return false
}
