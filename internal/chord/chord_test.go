package chord

import "testing"

func TestParseTokens(t *testing.T) {
	valid := map[string]Symbol{
		"C":      {Root: "C"},
		"F#m7":   {Root: "F", Accidental: "#", Quality: "m7"},
		"Bbmaj7": {Root: "B", Accidental: "b", Quality: "maj7"},
		"Dmaj":   {Root: "D", Quality: "maj"},
		"Am":     {Root: "A", Quality: "m"},
		"G/B":    {Root: "G", Bass: "B"},
		"D/F#":   {Root: "D", Bass: "F", BassAccidental: "#"},
		"Csus4":  {Root: "C", Quality: "sus4"},
		"G7":     {Root: "G", Extension: "7"},
		"C7sus4": {Root: "C", Extension: "7", Modifier: "sus4"},
		"Edim7":  {Root: "E", Quality: "dim7"},
		"B°":     {Root: "B", Quality: "°"},
		"E+":     {Root: "E", Quality: "+"},
		"n/a":    {NoChord: true},
	}
	for tok, want := range valid {
		got, ok := Parse(tok)
		if !ok {
			t.Fatalf("Parse(%q) failed", tok)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tok, got, want)
		}
	}
	invalid := []string{"", "H", "am", "walked", "Cma", "C/", "C/x", "Be", "NA", "Am7b5", "|"}
	for _, tok := range invalid {
		if IsToken(tok) {
			t.Fatalf("IsToken(%q) should be false", tok)
		}
	}
}

func TestSymbolString(t *testing.T) {
	for _, tok := range []string{"F#m7", "C7sus4", "D/F#", "Bbmaj7"} {
		s, ok := Parse(tok)
		if !ok || s.String() != tok {
			t.Fatalf("String round trip failed for %q: %q", tok, s.String())
		}
	}
	if (Symbol{NoChord: true}).String() != "N/A" {
		t.Fatalf("no-chord string mismatch")
	}
}

func TestConfidence(t *testing.T) {
	if got := Confidence("C G Am F"); got != 1 {
		t.Fatalf("confidence mismatch: %v", got)
	}
	if got := Confidence("C walked"); got != 0.5 {
		t.Fatalf("confidence mismatch: %v", got)
	}
	if got := Confidence("   "); got != 0 {
		t.Fatalf("blank confidence mismatch: %v", got)
	}
}

func TestIsChordLine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"C   G   Am   F", true},
		{"I walked alone today", false},
		{"Chorus:", false},
		{"[Verse 1]", false},
		{"", false},
		{"   ", false},
		{"| C | G |", true},
		{"C G x2", true},
		{"A man walks", false},
		{"G D Em bridge", true},
		{"Am then down", false},
		{"N/A", true},
	}
	for _, tc := range cases {
		if got := IsChordLine(tc.line); got != tc.want {
			t.Fatalf("IsChordLine(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestClassifierThresholds(t *testing.T) {
	strict := New(0.9, 0.9)
	if strict.IsChordLine("C G x2") {
		t.Fatalf("strict classifier should reject partial chord line")
	}
	def := New(0, 0)
	if def != Default {
		t.Fatalf("zero thresholds should fall back to defaults: %+v", def)
	}
	clamped := New(0.5, 0.8)
	if clamped.Secondary != 0.5 {
		t.Fatalf("secondary should be clamped to primary: %+v", clamped)
	}
}
