package textclean

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reasoningBlockRe = regexp.MustCompile(`(?is)</?(?:think|reasoning|analysis)>.*?</(?:think|reasoning|analysis)>`)
	danglingCloseRe  = regexp.MustCompile(`(?i)</(?:think|reasoning|analysis)>`)
	fenceBlockRe     = regexp.MustCompile("(?s)```.*?```")
	fenceInfoRe      = regexp.MustCompile(`^[ \t]*[A-Za-z0-9_+-]*[ \t]*$`)
	metaLeadRe       = regexp.MustCompile(`(?i)^\s*(?:analysis|reasoning|thoughts?|notes?|explanation)\s*:`)
	headingRe        = regexp.MustCompile(`(?m)^(?:#+[ \t]*)+`)
	trailingSpaceRe  = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRunRe       = regexp.MustCompile(`\n{3,}`)
	bareSectionRe    = regexp.MustCompile(`(?im)^(verse|chorus|bridge|outro)[ \t]*(\d+)?[ \t]*$`)

	metadataRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:capo|key|tempo|time\s+signature)\s*[:=]`),
		regexp.MustCompile(`(?i)^capo\s+\d`),
		regexp.MustCompile(`(?i)^key\s+(?:of\s+)?[A-G][#b♯♭]?(?:m|min|minor|maj|major)?$`),
		regexp.MustCompile(`(?i)^tempo\s+\d+(?:\s*bpm)?$`),
		regexp.MustCompile(`(?i)^time\s+signature\s+\d+\s*/\s*\d+$`),
	}

	preambleLeads = []string{"sure,", "of course,", "absolutely,", "here's", "here’s", "heres", "let's", "let’s", "lets"}
)

// Clean strips assistant noise from generated song text and returns the
// lyric/chord body. The result is a fixed point: Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	out := normalizeNewlines(text)
	for {
		next := pass(out)
		if next == out {
			return out
		}
		out = next
	}
}

func pass(t string) string {
	t = removeReasoning(t)
	t = removeFences(t)
	t = removeMetaParagraphs(t)
	t = removePreamble(t)
	t = headingRe.ReplaceAllString(t, "")
	t = removeMetadataLines(t)
	t = trailingSpaceRe.ReplaceAllString(t, "")
	t = blankRunRe.ReplaceAllString(t, "\n\n")
	t = strings.TrimSpace(t)
	t = bareSectionRe.ReplaceAllStringFunc(t, bracketSection)
	return strings.TrimSpace(t)
}

func normalizeNewlines(t string) string {
	t = strings.ReplaceAll(t, "\r\n", "\n")
	return strings.ReplaceAll(t, "\r", "\n")
}

func removeReasoning(t string) string {
	t = reasoningBlockRe.ReplaceAllString(t, "")
	// an unmatched closing tag means the opener was never emitted
	if loc := danglingCloseRe.FindStringIndex(t); loc != nil {
		t = t[loc[1]:]
	}
	return t
}

func removeFences(t string) string {
	trimmed := strings.TrimSpace(t)
	if strings.HasPrefix(trimmed, "```") && strings.HasSuffix(trimmed, "```") && len(trimmed) > 6 &&
		strings.Count(trimmed, "```") == 2 {
		inner := trimmed[3 : len(trimmed)-3]
		if i := strings.Index(inner, "\n"); i >= 0 && fenceInfoRe.MatchString(inner[:i]) {
			// drop the info string ("```text", "```markdown")
			inner = inner[i+1:]
		}
		return inner
	}
	return fenceBlockRe.ReplaceAllString(t, "")
}

func removeMetaParagraphs(t string) string {
	lines := strings.Split(t, "\n")
	out := make([]string, 0, len(lines))
	skipping := false
	for _, line := range lines {
		if skipping {
			if strings.TrimSpace(line) == "" {
				skipping = false
				out = append(out, line)
			}
			continue
		}
		if metaLeadRe.MatchString(line) {
			skipping = true
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func removePreamble(t string) string {
	for {
		body := strings.TrimLeftFunc(t, unicode.IsSpace)
		nl := strings.Index(body, "\n")
		if nl < 0 || !isPreamble(body[:nl]) {
			return t
		}
		t = strings.TrimLeft(body[nl:], "\n")
	}
}

func isPreamble(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, lead := range preambleLeads {
		if !strings.HasPrefix(lower, lead) {
			continue
		}
		if strings.HasSuffix(lead, ",") {
			return true
		}
		rest := lower[len(lead):]
		if rest == "" {
			return true
		}
		r := []rune(rest)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func removeMetadataLines(t string) string {
	lines := strings.Split(t, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if IsMetadataLine(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// IsMetadataLine reports whether line declares capo, key, tempo or time
// signature, with or without markdown emphasis.
func IsMetadataLine(line string) bool {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "*_ ")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, re := range metadataRes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func bracketSection(m string) string {
	parts := bareSectionRe.FindStringSubmatch(m)
	if len(parts) < 2 {
		return m
	}
	name := strings.ToLower(parts[1])
	label := strings.ToUpper(name[:1]) + name[1:]
	if len(parts) > 2 && parts[2] != "" {
		label += " " + parts[2]
	}
	return "[" + label + "]"
}

// CompactBlankLines collapses runs of blank lines into a single empty line.
func CompactBlankLines(text string) string {
	lines := strings.Split(normalizeNewlines(text), "\n")
	out := make([]string, 0, len(lines))
	prevBlank := false
	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if blank && prevBlank {
			continue
		}
		if blank {
			out = append(out, "")
		} else {
			out = append(out, line)
		}
		prevBlank = blank
	}
	return strings.Join(out, "\n")
}
