package setlist

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"lyricsheet/internal/song"
)

func testSongs() []song.Song {
	return []song.Song{
		{ID: "s1", Title: "Café del Mar", Lyrics: "[Verse]\nsun"},
		{ID: "s2", Title: "Night Drive", Lyrics: "say \"go\", now"},
		{ID: "s3", Title: "Yesterday Once More", Lyrics: "la"},
	}
}

func TestNewAndEdit(t *testing.T) {
	if _, err := New("  ", nil); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	sl, err := New("Tour", []string{"a", "b", "a", ""})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if sl.ID == "" || !reflect.DeepEqual(sl.SongIDs, []string{"a", "b"}) {
		t.Fatalf("New mismatch: %+v", sl)
	}
	if !sl.Add("c") || sl.Add("c") {
		t.Fatalf("Add should ignore repeats")
	}
	if !sl.Move("c", -5) || !reflect.DeepEqual(sl.SongIDs, []string{"c", "a", "b"}) {
		t.Fatalf("Move to front mismatch: %#v", sl.SongIDs)
	}
	if !sl.Move("c", 1) || !reflect.DeepEqual(sl.SongIDs, []string{"a", "c", "b"}) {
		t.Fatalf("Move down mismatch: %#v", sl.SongIDs)
	}
	if sl.Move("b", 3) || sl.Move("zzz", 1) {
		t.Fatalf("Move past the end or of a missing id should be a no-op")
	}
	if !sl.Remove("a") || sl.Remove("a") || !reflect.DeepEqual(sl.SongIDs, []string{"c", "b"}) {
		t.Fatalf("Remove mismatch: %#v", sl.SongIDs)
	}
	if err := sl.Rename(" "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("Rename should reject empty name")
	}
	if err := sl.Rename("Fall Tour"); err != nil || sl.Name != "Fall Tour" {
		t.Fatalf("Rename mismatch: %v %q", err, sl.Name)
	}
	dup := Duplicate(sl)
	if dup.ID == sl.ID || dup.Name != "Fall Tour (Copy)" || !reflect.DeepEqual(dup.SongIDs, sl.SongIDs) {
		t.Fatalf("Duplicate mismatch: %+v", dup)
	}
	dup.SongIDs[0] = "x"
	if sl.SongIDs[0] == "x" {
		t.Fatalf("Duplicate must copy song ids")
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"summer_tour-2024.txt": "Summer Tour 2024",
		"  LATE   show!!.csv":  "Late Show",
		"acoustic set":         "Acoustic Set",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFoldAndScore(t *testing.T) {
	if got := FoldTitle("  Café   del Mar! "); got != "cafe del mar" {
		t.Fatalf("FoldTitle mismatch: %q", got)
	}
	if Score("cafe del mar", "Café del Mar") != 1 {
		t.Fatalf("folded titles should match exactly")
	}
	if Score("", "x") != 0 {
		t.Fatalf("empty title should score 0")
	}
	if Score("Nite Drive", "Night Drive") < DefaultMatchThreshold {
		t.Fatalf("close titles should pass the default threshold: %v", Score("Nite Drive", "Night Drive"))
	}
	if Score("Bohemian Rhapsody", "Night Drive") >= DefaultMatchThreshold {
		t.Fatalf("unrelated titles should not match")
	}
}

func TestImportText(t *testing.T) {
	text := "1. cafe del mar\n2) Nite Drive\n\n3: Bohemian Rhapsody\n4 - yesterday once more\n"
	res, err := ImportText("Tour", text, testSongs(), NewMatcher(0))
	if err != nil {
		t.Fatalf("ImportText error: %v", err)
	}
	if res.Imported != 3 || !reflect.DeepEqual(res.Setlist.SongIDs, []string{"s1", "s2", "s3"}) {
		t.Fatalf("import mismatch: %+v", res)
	}
	if !reflect.DeepEqual(res.NotFound, []string{"Bohemian Rhapsody"}) {
		t.Fatalf("not found mismatch: %#v", res.NotFound)
	}

	_, err = ImportText("Tour", "Unknown Song", testSongs(), NewMatcher(0))
	if !errors.Is(err, ErrNoMatches) {
		t.Fatalf("expected ErrNoMatches, got %v", err)
	}
	_, err = ImportText("", "cafe del mar", testSongs(), NewMatcher(0))
	if !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestExport(t *testing.T) {
	sl := Setlist{ID: "l1", Name: "Tour", SongIDs: []string{"s2", "missing", "s1"}}

	txt, err := Export(sl, testSongs(), "txt")
	if err != nil || string(txt) != "Night Drive\nCafé del Mar" {
		t.Fatalf("txt export mismatch: %q %v", txt, err)
	}

	csvOut, err := Export(sl, testSongs(), "CSV")
	if err != nil {
		t.Fatalf("csv export error: %v", err)
	}
	want := "Title,Lyrics\nNight Drive,\"say \"\"go\"\", now\"\nCafé del Mar,\"[Verse]\nsun\"\n"
	if string(csvOut) != want {
		t.Fatalf("csv export mismatch:\n%s", csvOut)
	}

	js, err := Export(sl, testSongs(), "json")
	if err != nil {
		t.Fatalf("json export error: %v", err)
	}
	var decoded struct {
		Setlist Setlist     `json:"setlist"`
		Songs   []song.Song `json:"songs"`
	}
	if err := json.Unmarshal(js, &decoded); err != nil {
		t.Fatalf("json decode error: %v", err)
	}
	if decoded.Setlist.Name != "Tour" || len(decoded.Songs) != 2 || decoded.Songs[0].ID != "s2" {
		t.Fatalf("json export mismatch: %+v", decoded)
	}

	if _, err := Export(sl, nil, "xml"); err == nil || !strings.Contains(err.Error(), "xml") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}
