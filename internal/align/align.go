package align

import (
	"strings"

	"lyricsheet/internal/chord"
	"lyricsheet/internal/section"
)

// Pair is a lyric sequence and its chord sequence, index-aligned.
type Pair struct {
	Lyrics []string
	Chords []string
}

// Line is one rendered row: a lyric, the chord above it, and whether the
// lyric is a section marker.
type Line struct {
	Lyric string
	Chord string
	Label bool
}

// Align pads the shorter side with empty strings. Inputs are not modified.
func Align(lyrics, chords []string) Pair {
	n := len(lyrics)
	if len(chords) > n {
		n = len(chords)
	}
	out := Pair{Lyrics: make([]string, n), Chords: make([]string, n)}
	copy(out.Lyrics, lyrics)
	copy(out.Chords, chords)
	return out
}

// Deinterleave reads lines as chord, lyric, chord, lyric... An odd trailing
// chord gets an empty lyric.
func Deinterleave(lines []string) Pair {
	out := Pair{
		Lyrics: make([]string, 0, (len(lines)+1)/2),
		Chords: make([]string, 0, (len(lines)+1)/2),
	}
	for i := 0; i < len(lines); i += 2 {
		out.Chords = append(out.Chords, lines[i])
		if i+1 < len(lines) {
			out.Lyrics = append(out.Lyrics, lines[i+1])
		} else {
			out.Lyrics = append(out.Lyrics, "")
		}
	}
	return out
}

// Merge interleaves chords above lyrics index by index. A chord gets prefix
// prepended when prefix is non-empty. Blank pairs emit at most one blank line.
func Merge(lyrics, chords []string, prefix string) []string {
	p := Align(lyrics, chords)
	out := make([]string, 0, len(p.Lyrics)*2)
	for i := range p.Lyrics {
		out = appendRow(out, p.Lyrics[i], p.Chords[i], prefix)
	}
	return out
}

// Split separates mixed chord-over-lyric text. Section markers go to the
// lyric side only and consume no chord entry; lines left with no lyric are
// dropped, as is a chord line with no lyric line to pair with.
func Split(lines []string, c chord.Classifier) Pair {
	out := Pair{Lyrics: []string{}, Chords: []string{}}
	for i := 0; i < len(lines); {
		line := strings.TrimRight(lines[i], " \t\r")
		if section.IsLabel(line) {
			out.Lyrics = append(out.Lyrics, strings.TrimSpace(line))
			i++
			continue
		}
		if c.IsChordLine(line) {
			if i+1 < len(lines) {
				next := strings.TrimRight(lines[i+1], " \t\r")
				if strings.TrimSpace(next) != "" && !section.IsLabel(next) && !c.IsChordLine(next) {
					out.Lyrics = append(out.Lyrics, next)
					out.Chords = append(out.Chords, line)
					i += 2
					continue
				}
			}
			i++
			continue
		}
		if strings.TrimSpace(line) != "" {
			out.Lyrics = append(out.Lyrics, line)
			out.Chords = append(out.Chords, "")
		}
		i++
	}
	return out
}

// Pairs walks lyrics and assigns chords in order, skipping section markers.
func Pairs(lyrics, chords []string) []Line {
	out := make([]Line, 0, len(lyrics))
	ci := 0
	for _, lyric := range lyrics {
		if section.IsLabel(lyric) {
			out = append(out, Line{Lyric: lyric, Label: true})
			continue
		}
		ln := Line{Lyric: lyric}
		if ci < len(chords) {
			ln.Chord = chords[ci]
		}
		ci++
		out = append(out, ln)
	}
	for ; ci < len(chords); ci++ {
		out = append(out, Line{Chord: chords[ci]})
	}
	return out
}

// Render is Merge for a song body whose chords skip section markers.
func Render(lyrics, chords []string, prefix string) []string {
	rows := Pairs(lyrics, chords)
	out := make([]string, 0, len(rows)*2)
	for _, r := range rows {
		out = appendRow(out, r.Lyric, r.Chord, prefix)
	}
	return out
}

// FitChords lays a chord sequence, one entry per content line, onto lyrics
// that may contain section markers and blank lines. The result follows the
// stored chord layout: one entry per non-marker lyric line, "" for blanks.
func FitChords(lyrics, chords []string) []string {
	out := make([]string, 0, len(lyrics))
	ci := 0
	for _, lyric := range lyrics {
		if section.IsLabel(lyric) {
			continue
		}
		if strings.TrimSpace(lyric) == "" {
			out = append(out, "")
			continue
		}
		c := ""
		if ci < len(chords) {
			c = chords[ci]
		}
		ci++
		out = append(out, c)
	}
	return out
}

func appendRow(out []string, lyric, chordLine, prefix string) []string {
	lyricBlank := strings.TrimSpace(lyric) == ""
	chordBlank := strings.TrimSpace(chordLine) == ""
	if lyricBlank && chordBlank {
		if len(out) > 0 && out[len(out)-1] == "" {
			return out
		}
		return append(out, "")
	}
	if !chordBlank {
		if prefix != "" {
			chordLine = strings.TrimSpace(prefix + " " + chordLine)
		}
		out = append(out, chordLine)
	}
	if !lyricBlank {
		out = append(out, lyric)
	}
	return out
}
