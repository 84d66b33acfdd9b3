package song

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"lyricsheet/internal/importer"
	"lyricsheet/internal/section"
)

func fixClock(t *testing.T) time.Time {
	t.Helper()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	old := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = old })
	return ts
}

func TestNewSong(t *testing.T) {
	ts := fixClock(t)
	s := New("  ", "", "")
	if s.Title != DefaultTitle || s.Lyrics != section.DefaultSkeleton {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.ID == "" || s.Tempo != 120 || s.TimeSignature != "4/4" || s.SchemaVersion != SchemaVersion {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if !s.CreatedAt.Equal(ts) || !s.LastEditedAt.Equal(ts) {
		t.Fatalf("timestamps mismatch: %+v", s)
	}
	if !IsBlank(s) {
		t.Fatalf("fresh song should be blank")
	}

	s2 := New("Night Drive", "**chorus**\nla la", "")
	if s2.Lyrics != "[Chorus]\nla la" {
		t.Fatalf("lyrics should be normalized: %q", s2.Lyrics)
	}
	if s2.ID == s.ID {
		t.Fatalf("ids should differ")
	}
	if IsBlank(s2) {
		t.Fatalf("song with content is not blank")
	}
}

func TestMigrate(t *testing.T) {
	fixClock(t)
	in := Song{Title: " Old ", Lyrics: "verse 1\r\nhi", Chords: "\r\nC", Tags: []string{"rock, Live", "rock", " "}, Tempo: -5}
	out := Migrate(in)
	if out.ID == "" || out.Title != "Old" || out.SchemaVersion != SchemaVersion {
		t.Fatalf("migrate mismatch: %+v", out)
	}
	if out.Lyrics != "[Verse 1]\nhi" || out.Chords != "\nC" {
		t.Fatalf("migrate text mismatch: %q %q", out.Lyrics, out.Chords)
	}
	if !reflect.DeepEqual(out.Tags, []string{"rock", "Live"}) {
		t.Fatalf("tags mismatch: %#v", out.Tags)
	}
	if out.Tempo != 0 || out.CreatedAt.IsZero() || out.LastEditedAt.IsZero() {
		t.Fatalf("migrate defaults mismatch: %+v", out)
	}
	keep := Migrate(Song{ID: "abc"})
	if keep.ID != "abc" {
		t.Fatalf("existing id should be kept")
	}
	if len(MigrateAll([]Song{{}, {}})) != 2 {
		t.Fatalf("MigrateAll length mismatch")
	}
}

func TestTags(t *testing.T) {
	s := Song{}
	if !s.AddTag("blues") || s.AddTag("Blues") || s.AddTag("  ") {
		t.Fatalf("AddTag set semantics broken: %#v", s.Tags)
	}
	s.AddTag("cover")
	if !s.HasTag("BLUES") {
		t.Fatalf("HasTag should be case-insensitive")
	}
	if !s.RemoveTag("blues") || s.RemoveTag("missing") {
		t.Fatalf("RemoveTag mismatch")
	}
	if !reflect.DeepEqual(s.Tags, []string{"cover"}) {
		t.Fatalf("tags mismatch: %#v", s.Tags)
	}
	if got := ParseTags(" a, b ,a,,c"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("ParseTags mismatch: %#v", got)
	}
}

func TestStripTitleLine(t *testing.T) {
	if got := StripTitleLine("Night Drive\n\n[Verse]\nhi", "night drive "); got != "[Verse]\nhi" {
		t.Fatalf("StripTitleLine mismatch: %q", got)
	}
	if got := StripTitleLine("[Verse]\nhi", "Night Drive"); got != "[Verse]\nhi" {
		t.Fatalf("StripTitleLine should leave other text: %q", got)
	}
}

func TestEnsureUniqueIDs(t *testing.T) {
	songs := []Song{{ID: "a"}, {ID: "a"}, {ID: ""}, {ID: "b"}}
	sets := [][]string{{"a", "b"}, {"c"}}
	out, outSets, changed := EnsureUniqueIDs(songs, sets)
	if changed != 2 {
		t.Fatalf("changed mismatch: %d", changed)
	}
	seen := map[string]bool{}
	for _, s := range out {
		if s.ID == "" || seen[s.ID] {
			t.Fatalf("ids not unique: %+v", out)
		}
		seen[s.ID] = true
	}
	if out[0].ID != "a" || songs[1].ID != "a" {
		t.Fatalf("first occurrence keeps its id and input is untouched")
	}
	if outSets[0][0] != out[1].ID || outSets[0][1] != "b" || outSets[1][0] != "c" {
		t.Fatalf("setlist remap mismatch: %#v", outSets)
	}

	_, same, changed := EnsureUniqueIDs([]Song{{ID: "x"}}, sets)
	if changed != 0 || !reflect.DeepEqual(same, sets) {
		t.Fatalf("unique input should be unchanged")
	}
}

func TestApplyReplaceAndAppend(t *testing.T) {
	fixClock(t)
	s := New("Song", "[Verse]\nold line\nsecond", "")
	s.Chords = "C"
	s.Apply(importer.Result{Lyrics: "[Chorus]\nnew line", Chords: "G"}, Append)
	if s.Lyrics != "[Verse]\nold line\nsecond\n[Chorus]\nnew line" {
		t.Fatalf("append lyrics mismatch: %q", s.Lyrics)
	}
	if s.Chords != "C\n\nG" {
		t.Fatalf("append chords mismatch: %q", s.Chords)
	}
	if !strings.Contains(s.Sheet(""), "G\nnew line") {
		t.Fatalf("appended chord should sit over appended line:\n%s", s.Sheet(""))
	}

	s.Apply(importer.Result{Lyrics: "only", Chords: ""}, Replace)
	if s.Lyrics != "only" || s.Chords != "" {
		t.Fatalf("replace mismatch: %+v", s)
	}

	empty := Song{}
	empty.Apply(importer.Result{Lyrics: "x", Chords: "D"}, Append)
	if empty.Lyrics != "x" || empty.Chords != "D" {
		t.Fatalf("append onto empty song should replace: %+v", empty)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("APPEND"); err != nil || m != Append || m.String() != "append" {
		t.Fatalf("ParseMode append mismatch: %v %v", m, err)
	}
	if m, err := ParseMode(""); err != nil || m != Replace {
		t.Fatalf("ParseMode default mismatch: %v %v", m, err)
	}
	if _, err := ParseMode("merge"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestApplyChords(t *testing.T) {
	s := Song{Lyrics: "[Verse]\nHello\n\nWorld\n[Chorus]\nLa"}
	s.ApplyChords("[Verse]\nC\n\nG  D\nAm")
	if s.Chords != "C\n\nG  D\nAm" {
		t.Fatalf("ApplyChords mismatch: %q", s.Chords)
	}
	want := "[Verse]\nC\nHello\n\nG  D\nWorld\n[Chorus]\nAm\nLa"
	if got := s.Sheet(""); got != want {
		t.Fatalf("sheet mismatch:\n%s", got)
	}
}

func TestSyllables(t *testing.T) {
	cases := map[string]int{"cat": 1, "hello": 2, "walked": 1, "music": 2, "love": 1, "yellow": 2, "": 0, "123": 0}
	for w, want := range cases {
		if got := Syllables(w); got != want {
			t.Fatalf("Syllables(%q) = %d, want %d", w, got, want)
		}
	}
	if got := LineSyllables("I walked alone"); got != 4 {
		t.Fatalf("LineSyllables mismatch: %d", got)
	}
}

func TestRhymeGroups(t *testing.T) {
	lines := []string{"[Verse]", "I see the light", "Into the night", "Hello", "", "We take flight!", "say hello"}
	got := RhymeGroups(lines)
	want := [][]int{{1, 2, 5}, {3, 6}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RhymeGroups mismatch: %#v", got)
	}
}

func TestExportText(t *testing.T) {
	s := Song{
		Title:         "Night Drive",
		Lyrics:        "[Verse]\nHello\nWorld",
		Chords:        "C\nG",
		Key:           "C",
		Tempo:         96,
		TimeSignature: "4/4",
		Tags:          []string{"pop", "demo"},
		Notes:         "capo 2 live",
	}
	want := "# Night Drive\n\n**Key:** C\n**Tempo:** 96 BPM\n**Time Signature:** 4/4\n**Tags:** pop, demo\n\n---\n\n[Verse]\nC\nHello\nG\nWorld\n\n---\n**Notes:**\ncapo 2 live\n"
	if got := ExportText(s, true, ""); got != want {
		t.Fatalf("export mismatch:\n%s", got)
	}
	if got := ExportText(s, false, ""); got != "[Verse]\nC\nHello\nG\nWorld\n" {
		t.Fatalf("plain export mismatch:\n%s", got)
	}
	s.Chords = ""
	if got := ExportText(s, false, ""); got != "[Verse]\nHello\nWorld\n" {
		t.Fatalf("chordless export mismatch:\n%s", got)
	}
}
