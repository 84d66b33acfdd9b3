package importer

import (
	"errors"
	"strings"

	"lyricsheet/internal/align"
	"lyricsheet/internal/chord"
	"lyricsheet/internal/section"
	"lyricsheet/internal/textclean"
)

// ErrNoContent means the input had text but nothing usable survived cleaning.
var ErrNoContent = errors.New("生成内容中没有可用的歌词")

type Result struct {
	Lyrics string
	Chords string
}

// Usable reports whether at least one non-marker lyric line survived.
func (r Result) Usable() bool {
	for _, line := range strings.Split(r.Lyrics, "\n") {
		if strings.TrimSpace(line) != "" && !section.IsLabel(line) {
			return true
		}
	}
	return false
}

type Importer struct {
	Classifier chord.Classifier
}

// New returns an importer using c for chord line detection.
func New(c chord.Classifier) *Importer {
	return &Importer{Classifier: c}
}

// Import turns raw generated text into parallel lyric and chord text.
func (im *Importer) Import(raw string) Result {
	cleaned := textclean.Clean(raw)
	if cleaned == "" {
		return Result{}
	}
	normalized := section.Normalize(cleaned)
	p := align.Split(strings.Split(normalized, "\n"), im.classifier())
	return Result{
		Lyrics: strings.Join(p.Lyrics, "\n"),
		Chords: strings.Join(p.Chords, "\n"),
	}
}

// ImportStrict reads each section as strictly alternating chord and lyric
// lines, without classifying them.
func (im *Importer) ImportStrict(raw string) Result {
	cleaned := textclean.Clean(raw)
	if cleaned == "" {
		return Result{}
	}
	var lyrics, chords, block []string
	flush := func() {
		p := align.Deinterleave(block)
		for i, lyric := range p.Lyrics {
			if strings.TrimSpace(lyric) == "" && strings.TrimSpace(p.Chords[i]) == "" {
				continue
			}
			lyrics = append(lyrics, lyric)
			chords = append(chords, p.Chords[i])
		}
		block = block[:0]
	}
	for _, line := range strings.Split(section.Normalize(cleaned), "\n") {
		line = strings.TrimRight(line, " \t")
		switch {
		case section.IsLabel(line):
			flush()
			lyrics = append(lyrics, strings.TrimSpace(line))
		case strings.TrimSpace(line) != "":
			block = append(block, line)
		}
	}
	flush()
	return Result{Lyrics: strings.Join(lyrics, "\n"), Chords: strings.Join(chords, "\n")}
}

func (im *Importer) classifier() chord.Classifier {
	if im == nil || im.Classifier.Primary <= 0 {
		return chord.Default
	}
	return im.Classifier
}

// Import runs the default importer.
func Import(raw string) Result {
	return (&Importer{Classifier: chord.Default}).Import(raw)
}

// Check returns ErrNoContent when raw was non-blank and res has no lyric.
func Check(raw string, res Result) error {
	if strings.TrimSpace(raw) != "" && !res.Usable() {
		return ErrNoContent
	}
	return nil
}
