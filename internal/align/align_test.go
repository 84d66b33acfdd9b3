package align

import (
	"reflect"
	"strings"
	"testing"

	"lyricsheet/internal/chord"
)

func TestAlignPadsShorterSide(t *testing.T) {
	lyrics := []string{"a", "b", "c"}
	chords := []string{"C"}
	got := Align(lyrics, chords)
	if !reflect.DeepEqual(got.Lyrics, []string{"a", "b", "c"}) || !reflect.DeepEqual(got.Chords, []string{"C", "", ""}) {
		t.Fatalf("Align mismatch: %+v", got)
	}
	got.Chords[0] = "changed"
	if chords[0] != "C" {
		t.Fatalf("Align must not alias its input")
	}

	got = Align(nil, []string{"G", "D"})
	if len(got.Lyrics) != 2 || got.Lyrics[1] != "" {
		t.Fatalf("Align lyric padding mismatch: %+v", got)
	}
}

func TestDeinterleave(t *testing.T) {
	got := Deinterleave([]string{"C G", "Hello there", "Am F", "Goodbye"})
	if !reflect.DeepEqual(got.Chords, []string{"C G", "Am F"}) || !reflect.DeepEqual(got.Lyrics, []string{"Hello there", "Goodbye"}) {
		t.Fatalf("Deinterleave mismatch: %+v", got)
	}

	odd := Deinterleave([]string{"C", "la", "G"})
	if !reflect.DeepEqual(odd.Chords, []string{"C", "G"}) || !reflect.DeepEqual(odd.Lyrics, []string{"la", ""}) {
		t.Fatalf("odd Deinterleave mismatch: %+v", odd)
	}

	empty := Deinterleave(nil)
	if len(empty.Chords) != 0 || len(empty.Lyrics) != 0 {
		t.Fatalf("empty Deinterleave mismatch: %+v", empty)
	}
}

func TestMerge(t *testing.T) {
	got := Merge([]string{"Hello", "", "", "World"}, []string{"C", "", "", ""}, "")
	want := []string{"C", "Hello", "", "World"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge mismatch: %#v", got)
	}

	got = Merge([]string{"Hello"}, []string{"C G"}, "Chords:")
	if !reflect.DeepEqual(got, []string{"Chords: C G", "Hello"}) {
		t.Fatalf("Merge prefix mismatch: %#v", got)
	}

	got = Merge([]string{"", ""}, []string{"", "  "}, "")
	if !reflect.DeepEqual(got, []string{""}) {
		t.Fatalf("Merge blank collapse mismatch: %#v", got)
	}
}

func TestMergeNeverEmitsConsecutiveBlanks(t *testing.T) {
	lyrics := []string{"", "a", "", "", "b", "", ""}
	chords := []string{"", "", "", "G", "", "", ""}
	out := Merge(lyrics, chords, "")
	for i := 1; i < len(out); i++ {
		if out[i] == "" && out[i-1] == "" {
			t.Fatalf("consecutive blanks at %d: %#v", i, out)
		}
	}
}

func TestDeinterleaveMergeRoundTrip(t *testing.T) {
	for _, s := range [][]string{
		{"C G", "Hello there", "Am F", "Goodbye"},
		{"D", "one", "A", "two", "Bm"},
	} {
		p := Deinterleave(s)
		got := Merge(p.Lyrics, p.Chords, "")
		if !reflect.DeepEqual(got, s) {
			t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, s)
		}
	}
}

func TestSplit(t *testing.T) {
	lines := strings.Split("[Verse]\nC   G\nHello there\nAm  F\n\nJust words\n[Chorus]\nG D\nLa la\nEm", "\n")
	got := Split(lines, chord.Default)
	wantLyrics := []string{"[Verse]", "Hello there", "Just words", "[Chorus]", "La la"}
	wantChords := []string{"C   G", "", "G D"}
	if !reflect.DeepEqual(got.Lyrics, wantLyrics) {
		t.Fatalf("lyrics mismatch: %#v", got.Lyrics)
	}
	if !reflect.DeepEqual(got.Chords, wantChords) {
		t.Fatalf("chords mismatch: %#v", got.Chords)
	}
}

func TestSplitChordBeforeLabelIsDropped(t *testing.T) {
	got := Split([]string{"C G", "[Chorus]", "Hi"}, chord.Default)
	if !reflect.DeepEqual(got.Lyrics, []string{"[Chorus]", "Hi"}) || !reflect.DeepEqual(got.Chords, []string{""}) {
		t.Fatalf("unexpected split: %+v", got)
	}
}

func TestSplitChordOnlyInputYieldsNothing(t *testing.T) {
	got := Split([]string{"C G", "Am F", "G"}, chord.Default)
	if len(got.Lyrics) != 0 || len(got.Chords) != 0 {
		t.Fatalf("chord-only input should produce nothing: %+v", got)
	}
}

func TestSplitAlignmentInvariant(t *testing.T) {
	lines := strings.Split("[Intro]\nG\nOoh\n[Verse 1]\nC\nline one\nline two\n\nF G\nline three", "\n")
	got := Split(lines, chord.Default)
	content := 0
	for _, l := range got.Lyrics {
		if !strings.HasPrefix(l, "[") {
			content++
		}
	}
	if content != len(got.Chords) {
		t.Fatalf("chords must pair with content lines: lyrics=%#v chords=%#v", got.Lyrics, got.Chords)
	}
}

func TestPairsAndRender(t *testing.T) {
	lyrics := []string{"[Verse]", "Hello", "World", "[Chorus]", "La"}
	chords := []string{"C", "", "G", "D"}
	rows := Pairs(lyrics, chords)
	if len(rows) != 6 {
		t.Fatalf("pairs len mismatch: %+v", rows)
	}
	if !rows[0].Label || rows[1].Chord != "C" || rows[4].Chord != "G" || rows[5].Chord != "D" || rows[5].Lyric != "" {
		t.Fatalf("pairs mismatch: %+v", rows)
	}

	got := Render(lyrics, chords, "")
	want := []string{"[Verse]", "C", "Hello", "World", "[Chorus]", "G", "La", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("render mismatch: %#v", got)
	}
}

func TestFitChords(t *testing.T) {
	lyrics := []string{"[Verse]", "Hello", "", "World", "[Chorus]", "La"}
	got := FitChords(lyrics, []string{"C", "G"})
	want := []string{"C", "", "G", ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FitChords mismatch: %#v", got)
	}
}
