package song

import (
	"regexp"
	"strings"
)

var (
	silentEndingRe = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	vowelGroupRe   = regexp.MustCompile(`[aeiouy]{1,2}`)
	wordRe         = regexp.MustCompile(`[A-Za-z']+`)
	lastVowelRe    = regexp.MustCompile(`[aeiouy][^aeiouy]*$`)
)

// Syllables estimates the syllable count of an English word.
func Syllables(word string) int {
	w := strings.ToLower(strings.Trim(word, "'"))
	w = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, w)
	if w == "" {
		return 0
	}
	if len(w) <= 3 {
		return 1
	}
	w = silentEndingRe.ReplaceAllString(w, "")
	w = strings.TrimPrefix(w, "y")
	n := len(vowelGroupRe.FindAllString(w, -1))
	if n == 0 {
		return 1
	}
	return n
}

// LineSyllables sums Syllables over the words of line.
func LineSyllables(line string) int {
	total := 0
	for _, w := range wordRe.FindAllString(line, -1) {
		total += Syllables(w)
	}
	return total
}

// RhymeGroups groups line indexes whose last words share an ending from the
// last vowel on. Only groups of two or more lines are returned, ordered by
// first appearance. Section markers and blank lines are ignored.
func RhymeGroups(lines []string) [][]int {
	byKey := map[string][]int{}
	order := []string{}
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "[") {
			continue
		}
		key := rhymeKey(lastWord(trimmed))
		if key == "" {
			continue
		}
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], i)
	}
	out := [][]int{}
	for _, k := range order {
		if len(byKey[k]) > 1 {
			out = append(out, byKey[k])
		}
	}
	return out
}

func lastWord(line string) string {
	words := wordRe.FindAllString(line, -1)
	if len(words) == 0 {
		return ""
	}
	return strings.ToLower(strings.Trim(words[len(words)-1], "'"))
}

func rhymeKey(word string) string {
	if len(word) < 2 {
		return ""
	}
	if loc := lastVowelRe.FindStringIndex(word); loc != nil {
		return word[loc[0]:]
	}
	return word
}
