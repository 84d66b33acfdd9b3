package textclean

import "testing"

func TestCleanRemovesReasoningAndCollapsesBlankLines(t *testing.T) {
	in := "<think>scratch notes</think>\n[Verse]\nHello\n\n\n\nWorld"
	if got := Clean(in); got != "[Verse]\nHello\n\nWorld" {
		t.Fatalf("Clean mismatch: %q", got)
	}
}

func TestCleanCases(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"preamble", "Sure, here's your song:\n[Verse]\nHello", "[Verse]\nHello"},
		{"stacked preamble", "Of course,\nHere's a draft\n\n[Verse]\nHello", "[Verse]\nHello"},
		{"preamble only at start", "[Verse]\nHere's to you\nand me", "[Verse]\nHere's to you\nand me"},
		{"embedded fence", "```\nignored\n```\n[Chorus]\nLa", "[Chorus]\nLa"},
		{"wrapping fence", "```text\n[Verse]\nHi\n```", "[Verse]\nHi"},
		{"meta paragraph", "[Verse]\nHello\n\nNotes: this rhymes\nmore notes\n\n[Chorus]\nYeah", "[Verse]\nHello\n\n[Chorus]\nYeah"},
		{"reasoning tags any case", "<Reasoning>a\nb</REASONING>[Verse]\nHi", "[Verse]\nHi"},
		{"dangling close tag", "planning the song\n</think>\n[Verse]\nHi", "[Verse]\nHi"},
		{"headings and metadata", "# My Song\nKey: G\nCapo 2\nTempo: 96 BPM\n**Time Signature:** 3/4\nverse 2\nWalking home", "My Song\n[Verse 2]\nWalking home"},
		{"lyric starting with key", "Key to my heart\nKey of a lifetime", "Key to my heart\nKey of a lifetime"},
		{"trailing whitespace", "Hello   \nWorld\t", "Hello\nWorld"},
		{"crlf", "[Verse]\r\nHi\r\n", "[Verse]\nHi"},
		{"bare section names", "CHORUS\nLa la\nBridge\nOh", "[Chorus]\nLa la\n[Bridge]\nOh"},
		{"section word inside lyric", "Chorus line dance", "Chorus line dance"},
		{"blank", "  \n\n ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"Sure, here it is:\n# Here's the song\n[Verse]\nHi",
		"Key: C\nLet's go\n[Verse]\nHi",
		"<think>x</think>\n\n\nNotes: a\n\nAnalysis: b\nc\n\nverse\nline   \n\n\n\nchorus 2\nyeah",
		"```\n```\n```md\nfoo\n```",
		"",
		"plain lyric line",
		"# # # # # # # # # # Hello",
		"### ## #\tHello\n## # [Chorus]\nLa la",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestCleanStripsStackedHeadings(t *testing.T) {
	if got := Clean("# # # # # # # # # # Hello"); got != "Hello" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Clean("## # Verse 2\nline"); got != "[Verse 2]\nline" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestIsMetadataLine(t *testing.T) {
	yes := []string{"Key: G", "key = Am", "Capo 3", "Tempo 120", "Tempo: 96 BPM", "Time Signature 6/8", "**Key:** C#m", "Key of D"}
	no := []string{"", "Keys to the kingdom", "Tempo of the night", "Capone", "[Verse]"}
	for _, s := range yes {
		if !IsMetadataLine(s) {
			t.Fatalf("expected metadata line: %q", s)
		}
	}
	for _, s := range no {
		if IsMetadataLine(s) {
			t.Fatalf("unexpected metadata line: %q", s)
		}
	}
}

func TestCompactBlankLines(t *testing.T) {
	got := CompactBlankLines("a\n\n\n\nb\n  \n\nc")
	if got != "a\n\nb\n\nc" {
		t.Fatalf("CompactBlankLines mismatch: %q", got)
	}
}
