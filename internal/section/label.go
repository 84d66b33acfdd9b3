package section

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keywords are the recognized section names in their letters-only form.
var Keywords = []string{
	"intro", "verse", "prechorus", "chorus", "bridge", "outro", "hook",
	"refrain", "coda", "solo", "interlude", "ending", "breakdown", "tag",
}

const DefaultSkeleton = "[Intro]\n\n[Verse 1]\n\n[Pre-Chorus]\n\n[Chorus]\n\n[Verse 2]\n\n[Bridge]\n\n[Outro]"

const decoration = "*-_=~` \t"

var (
	labelLineRe    = regexp.MustCompile("^[*\\s\\-_=~`]*[(\\[{]?\\s*([^\\[\\](){}]+?)\\s*[)\\]}]?[*\\s\\-_=~`]*:?$")
	bracketLabelRe = regexp.MustCompile(`^\s*\[[^\]\n]+\]\s*$`)
	verseLabelRe   = regexp.MustCompile(`(?i)^\s*\[verse(\s*\d*)?\]\s*$`)
	romanRe        = regexp.MustCompile(`(?i)^[ivx]+$`)
)

// IsLabel reports whether line is a bracketed section marker such as "[Chorus]".
func IsLabel(line string) bool {
	return bracketLabelRe.MatchString(line)
}

// Normalize rewrites every line that reads as a section header into the
// canonical "[Label]" form. Other lines pass through untouched.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if canonical, ok := Canonical(line); ok {
			lines[i] = canonical
		}
	}
	return strings.Join(lines, "\n")
}

// Canonical returns the bracketed form of a single header line.
func Canonical(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	m := labelLineRe.FindStringSubmatch(trimmed)
	if m == nil {
		return "", false
	}
	label := strings.Trim(m[1], decoration+":")
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return "", false
	}
	norm := lettersOnly(label)
	if !hasKeywordPrefix(norm) {
		return "", false
	}
	if trimmed == label && !isBareLabel(label) {
		return "", false
	}
	return "[" + titleTokens(label) + "]", true
}

// AutoNumberVerses renumbers verse markers in order of appearance.
func AutoNumberVerses(text string) string {
	lines := strings.Split(text, "\n")
	n := 0
	for i, line := range lines {
		if verseLabelRe.MatchString(line) {
			n++
			lines[i] = fmt.Sprintf("[Verse %d]", n)
		}
	}
	return strings.Join(lines, "\n")
}

func hasKeywordPrefix(norm string) bool {
	for _, k := range Keywords {
		if strings.HasPrefix(norm, k) {
			return true
		}
	}
	return false
}

// isBareLabel guards undecorated lines so lyrics like "Hooked on a feeling"
// are not mistaken for a hook marker.
func isBareLabel(label string) bool {
	tokens := strings.Fields(label)
	rest := tokens[1:]
	head := lettersOnly(tokens[0])
	if !isKeyword(head) {
		if len(tokens) < 2 || !isKeyword(head+lettersOnly(tokens[1])) {
			return false
		}
		rest = tokens[2:]
	}
	for _, tok := range rest {
		if !isQualifier(tok) {
			return false
		}
	}
	return true
}

func isKeyword(s string) bool {
	for _, k := range Keywords {
		if s == k {
			return true
		}
	}
	return false
}

func isQualifier(tok string) bool {
	for _, r := range tok {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return romanRe.MatchString(tok)
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func titleTokens(label string) string {
	tokens := strings.Fields(label)
	for i, tok := range tokens {
		r, size := utf8.DecodeRuneInString(tok)
		tokens[i] = string(unicode.ToUpper(r)) + tok[size:]
	}
	return strings.Join(tokens, " ")
}
