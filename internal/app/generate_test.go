package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lyricsheet/internal/importer"
	"lyricsheet/internal/llm"
	"lyricsheet/internal/song"
)

func TestGenerateDraftCreatesSong(t *testing.T) {
	s := openTestSession(t)
	fake := &fakeGenerator{texts: []string{"Sure, here you go:\n\n**Rain**\n\n[Verse 1]\nAm F\nRain on the glass\nC G\nLight in the hall\n"}}
	s.gen = fake

	out, err := s.Generate(context.Background(), GenerateOptions{Task: llm.TaskDraft, Title: "Rain"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !out.Saved || out.Contract != llm.ContractFirstDraft {
		t.Fatalf("unexpected result: %+v", out)
	}
	if strings.Contains(out.Song.Lyrics, "Sure") || !strings.Contains(out.Song.Lyrics, "Rain on the glass") {
		t.Fatalf("unexpected lyrics: %q", out.Song.Lyrics)
	}
	if !strings.Contains(out.Song.Chords, "Am F") {
		t.Fatalf("unexpected chords: %q", out.Song.Chords)
	}
	if !strings.Contains(out.Text, "Am F\nRain on the glass") {
		t.Fatalf("unexpected sheet: %q", out.Text)
	}
	stored, err := s.FindSong("rain")
	if err != nil || stored.ID != out.Song.ID {
		t.Fatalf("song not stored: %v", err)
	}

	req := fake.reqs[0]
	if req.APIKey != "test-key" || req.Provider != llm.ProviderOpenRouter || req.SystemPrompt != llm.SystemPrompt {
		t.Fatalf("unexpected request: %+v", req)
	}
	if !strings.Contains(req.UserPrompt, "first draft") {
		t.Fatalf("prompt should carry the task: %q", req.UserPrompt)
	}
}

func TestGenerateContinueAppends(t *testing.T) {
	s := openTestSession(t)
	sg, err := s.NewSong("Harbor", "[Verse 1]\nBoats at rest", nil)
	if err != nil {
		t.Fatal(err)
	}
	s.gen = &fakeGenerator{texts: []string{"[Chorus]\nD A\nCall me home\n"}}

	out, err := s.Generate(context.Background(), GenerateOptions{SongRef: sg.ID, Task: llm.TaskContinue})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.Contract != llm.ContractContinueSong {
		t.Fatalf("unexpected contract: %s", out.Contract)
	}
	if !strings.Contains(out.Song.Lyrics, "Boats at rest") || !strings.Contains(out.Song.Lyrics, "Call me home") {
		t.Fatalf("continuation should append: %q", out.Song.Lyrics)
	}
}

func TestGenerateRhymeReturnsTextOnly(t *testing.T) {
	s := openTestSession(t)
	s.gen = &fakeGenerator{texts: []string{"light, bright, flight"}}

	out, err := s.Generate(context.Background(), GenerateOptions{Task: llm.TaskRhyme, Selection: "night"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.Saved || out.Contract != llm.ContractRhyme || out.Text != "light, bright, flight" {
		t.Fatalf("unexpected result: %+v", out)
	}
	songs, _ := s.Songs()
	if len(songs) != 0 {
		t.Fatalf("rhyme must not store songs, got %d", len(songs))
	}
}

func TestGenerateNoContent(t *testing.T) {
	s := openTestSession(t)
	s.gen = &fakeGenerator{texts: []string{"Sure, here you go:\n\n[Verse 1]\n"}}
	_, err := s.Generate(context.Background(), GenerateOptions{Task: llm.TaskDraft, Title: "Empty"})
	if !errors.Is(err, importer.ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestGenerateErrors(t *testing.T) {
	s := openTestSession(t)
	s.gen = &fakeGenerator{err: errors.New("HTTP 401: bad key")}
	if _, err := s.Generate(context.Background(), GenerateOptions{Task: llm.TaskDraft}); err == nil || !strings.Contains(err.Error(), "生成失败") {
		t.Fatalf("expected generate failure, got %v", err)
	}
	if _, err := s.Generate(context.Background(), GenerateOptions{Task: llm.TaskPolish}); err == nil || !strings.Contains(err.Error(), "需要指定歌曲") {
		t.Fatalf("expected missing song error, got %v", err)
	}

	t.Setenv("OPENROUTER_API_KEY", "")
	if _, err := s.Generate(context.Background(), GenerateOptions{Task: llm.TaskDraft}); err == nil || !strings.Contains(err.Error(), "尚未配置 API KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestGenerateSuggestChordsKeepsLyrics(t *testing.T) {
	s := openTestSession(t)
	sg, err := s.NewSong("Lanterns", "[Verse 1]\nHang them high\nLet them burn", nil)
	if err != nil {
		t.Fatal(err)
	}
	s.gen = &fakeGenerator{texts: []string{"[Verse 1]\nG C\nHang them high\nD G\nLet them burn\n"}}

	out, err := s.Generate(context.Background(), GenerateOptions{SongRef: "lanterns", Task: llm.TaskChords})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.Song.Lyrics != sg.Lyrics {
		t.Fatalf("lyrics changed: %q", out.Song.Lyrics)
	}
	if got := out.Song.Sheet(""); !strings.Contains(got, "G C\nHang them high") || !strings.Contains(got, "D G\nLet them burn") {
		t.Fatalf("unexpected sheet: %q", got)
	}
	if out.Song.Lyrics != song.Migrate(out.Song).Lyrics {
		t.Fatalf("song should already be current")
	}
}
