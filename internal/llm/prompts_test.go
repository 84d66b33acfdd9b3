package llm

import (
	"strings"
	"testing"
)

func TestChooseContract(t *testing.T) {
	cases := []struct {
		prompt string
		want   Contract
	}{
		{"Find rhymes for: night", ContractRhyme},
		{"suggest alternative wording for: x", ContractRewriteLine},
		{"Rewrite this line in a different tone: x", ContractRewriteLine},
		{"Continue the lyrics after: x", ContractContinueSong},
		{"Continue the song after these lyrics", ContractContinueSong},
		{"Suggest chord progressions for the following lyrics.", ContractSuggestChords},
		{"Write a complete first draft of song lyrics in folk", ContractFirstDraft},
		{"Polish the following lyrics for flow", ContractPolish},
		{"Rewrite these lyrics in the style of Dylan", ContractAlternating},
		{"Clean up the formatting for this song", ContractFormatOnly},
		{"Rewrite the following song in the jazz genre while", ContractReGenre},
		{"anything else", ContractAlternating},
	}
	for _, tc := range cases {
		if got := ChooseContract(tc.prompt); got != tc.want {
			t.Fatalf("ChooseContract(%q) = %s, want %s", tc.prompt, got, tc.want)
		}
	}
}

func TestTaskPromptRoundTripsContract(t *testing.T) {
	in := TaskInput{Title: "T", Key: "G", Tempo: 100, TimeSignature: "4/4", Sheet: "C\nhello", Style: "blues", Selection: "night"}
	want := map[Task]Contract{
		TaskDraft:    ContractFirstDraft,
		TaskPolish:   ContractPolish,
		TaskStyle:    ContractAlternating,
		TaskContinue: ContractContinueSong,
		TaskChords:   ContractSuggestChords,
		TaskFormat:   ContractFormatOnly,
		TaskGenre:    ContractReGenre,
		TaskRhyme:    ContractRhyme,
		TaskReword:   ContractRewriteLine,
		TaskRewrite:  ContractRewriteLine,
	}
	for _, task := range Tasks {
		p, err := TaskPrompt(task, in)
		if err != nil {
			t.Fatalf("TaskPrompt(%s) error: %v", task, err)
		}
		if got := ChooseContract(p); got != want[task] {
			t.Fatalf("task %s maps to %s, want %s", task, got, want[task])
		}
	}
	if _, err := TaskPrompt(TaskRhyme, TaskInput{}); err == nil {
		t.Fatalf("rhyme without text should fail")
	}
	if _, err := TaskPrompt(TaskGenre, TaskInput{}); err == nil {
		t.Fatalf("genre without target should fail")
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Polish the following lyrics", ContractPolish, " keep it short ")
	lines := strings.Split(p, "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "Rules (obey strictly):") || !strings.Contains(lines[0], "Preserve structure") {
		t.Fatalf("BuildPrompt mismatch:\n%s", p)
	}
	if lines[2] != "Additional notes: keep it short" {
		t.Fatalf("notes mismatch: %q", lines[2])
	}
	rhyme := BuildPrompt("Find rhymes for: x", ContractRhyme, "")
	if strings.Contains(rhyme, "Rules") || strings.Count(rhyme, "\n") != 1 {
		t.Fatalf("rhyme prompt should carry only its own contract:\n%s", rhyme)
	}
}

func TestParseTask(t *testing.T) {
	if got, err := ParseTask(" Chords "); err != nil || got != TaskChords {
		t.Fatalf("ParseTask mismatch: %v %v", got, err)
	}
	if _, err := ParseTask("sing"); err == nil || !strings.Contains(err.Error(), "draft") {
		t.Fatalf("expected unknown task error, got %v", err)
	}
}
