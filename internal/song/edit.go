package song

import (
	"fmt"
	"strings"

	"lyricsheet/internal/align"
	"lyricsheet/internal/importer"
	"lyricsheet/internal/section"
)

type Mode int

const (
	Replace Mode = iota
	Append
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace":
		return Replace, nil
	case "append":
		return Append, nil
	default:
		return Replace, fmt.Errorf("未知的写入模式：%s（可选 replace / append）", s)
	}
}

func (m Mode) String() string {
	if m == Append {
		return "append"
	}
	return "replace"
}

// Apply writes an import result into the song.
func (s *Song) Apply(res importer.Result, mode Mode) {
	if mode == Append && strings.TrimSpace(s.Lyrics) != "" {
		chords := padLines(splitLines(s.Chords), ContentLines(s.Lyrics))
		s.Lyrics = joinNonEmpty(s.Lyrics, res.Lyrics)
		s.Chords = strings.Join(append(chords, splitLines(res.Chords)...), "\n")
	} else {
		s.Lyrics = res.Lyrics
		s.Chords = res.Chords
	}
	s.Touch()
}

// ApplyChords fits suggested chord lines, one per sung line, onto the
// current lyrics.
func (s *Song) ApplyChords(chordText string) {
	suggested := []string{}
	for _, line := range splitLines(chordText) {
		if strings.TrimSpace(line) == "" || section.IsLabel(line) {
			continue
		}
		suggested = append(suggested, strings.TrimRight(line, " \t"))
	}
	s.SetChords(suggested)
}

// SetChords lays chords, one entry per sung line, onto the current lyrics.
// Empty entries are kept as chordless lines.
func (s *Song) SetChords(chords []string) {
	s.Chords = strings.Join(align.FitChords(splitLines(s.Lyrics), chords), "\n")
	s.Touch()
}

// Sheet renders the song body with chords above their lyric lines.
func (s Song) Sheet(prefix string) string {
	if strings.TrimSpace(s.Chords) == "" {
		return s.Lyrics
	}
	return strings.Join(align.Render(splitLines(s.Lyrics), splitLines(s.Chords), prefix), "\n")
}

// ContentLines counts lyric lines that carry a chord slot.
func ContentLines(lyrics string) int {
	n := 0
	for _, line := range splitLines(lyrics) {
		if !section.IsLabel(line) {
			n++
		}
	}
	return n
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func padLines(lines []string, n int) []string {
	out := make([]string, n)
	copy(out, lines)
	return out
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
