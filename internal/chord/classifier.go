package chord

import (
	"regexp"
	"strings"
)

const (
	DefaultPrimaryThreshold   = 0.6
	DefaultSecondaryThreshold = 0.4
)

var (
	labelLineRe    = regexp.MustCompile(`^\s*\[[^\]\n]+\]\s*$`)
	headerLineRe   = regexp.MustCompile(`^[A-Za-z0-9 ,.'"-]+:$`)
	qualityWordRe  = regexp.MustCompile(`(?i)maj7|maj9|maj|sus|dim|aug|add|m11|m7|m9`)
	lowercaseRunRe = regexp.MustCompile(`[a-z]{2,}`)
)

// Classifier decides whether a line is a chord line. Primary is the token
// ratio that alone is enough; Secondary is the ratio that also requires the
// line to carry no prose.
type Classifier struct {
	Primary   float64
	Secondary float64
}

var Default = Classifier{Primary: DefaultPrimaryThreshold, Secondary: DefaultSecondaryThreshold}

// New returns a classifier, falling back to defaults for non-positive thresholds.
func New(primary, secondary float64) Classifier {
	c := Classifier{Primary: primary, Secondary: secondary}
	if c.Primary <= 0 {
		c.Primary = DefaultPrimaryThreshold
	}
	if c.Secondary <= 0 {
		c.Secondary = DefaultSecondaryThreshold
	}
	if c.Secondary > c.Primary {
		c.Secondary = c.Primary
	}
	return c
}

// Confidence is the share of whitespace-separated tokens that parse as chords.
func Confidence(line string) float64 {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return 0
	}
	n := 0
	for _, tok := range tokens {
		if IsToken(tok) {
			n++
		}
	}
	return float64(n) / float64(len(tokens))
}

func (c Classifier) IsChordLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || labelLineRe.MatchString(trimmed) || headerLineRe.MatchString(trimmed) {
		return false
	}
	conf := Confidence(trimmed)
	if conf >= c.Primary {
		return true
	}
	if conf >= c.Secondary {
		stripped := qualityWordRe.ReplaceAllString(trimmed, "")
		return !lowercaseRunRe.MatchString(stripped)
	}
	return false
}

// IsChordLine classifies line with the default thresholds.
func IsChordLine(line string) bool {
	return Default.IsChordLine(line)
}
