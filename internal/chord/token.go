package chord

import "strings"

// Symbol is one parsed chord token, e.g. "F#m7/C#".
type Symbol struct {
	Root           string
	Accidental     string
	Quality        string
	Extension      string
	Modifier       string
	Bass           string
	BassAccidental string
	NoChord        bool
}

// qualities are matched longest first so "maj" wins over "m".
var qualities = []string{
	"maj7", "maj9", "dim7", "sus2", "sus4", "add9", "m11",
	"maj", "dim", "aug", "m7", "m9",
	"m", "+", "°",
}

var extensions = []string{"13", "11", "9", "7", "6"}

var modifiers = []string{"sus2", "sus4", "add9"}

var accidentals = []string{"#", "b", "♯", "♭"}

// Parse reads a single whitespace-free token as a chord symbol.
func Parse(token string) (Symbol, bool) {
	if strings.EqualFold(token, "N/A") {
		return Symbol{NoChord: true}, true
	}
	rest := token
	var s Symbol
	var ok bool
	if s.Root, s.Accidental, rest, ok = readNote(rest); !ok {
		return Symbol{}, false
	}
	s.Quality, rest = readPrefix(rest, qualities)
	if !endsInDigit(s.Quality) {
		s.Extension, rest = readPrefix(rest, extensions)
	}
	if !isModifier(s.Quality) {
		s.Modifier, rest = readPrefix(rest, modifiers)
	}
	if strings.HasPrefix(rest, "/") {
		if s.Bass, s.BassAccidental, rest, ok = readNote(rest[1:]); !ok {
			return Symbol{}, false
		}
	}
	if rest != "" {
		return Symbol{}, false
	}
	return s, true
}

// IsToken reports whether token is a chord symbol.
func IsToken(token string) bool {
	_, ok := Parse(token)
	return ok
}

func (s Symbol) String() string {
	if s.NoChord {
		return "N/A"
	}
	out := s.Root + s.Accidental + s.Quality + s.Extension + s.Modifier
	if s.Bass != "" {
		out += "/" + s.Bass + s.BassAccidental
	}
	return out
}

func readNote(s string) (root, accidental, rest string, ok bool) {
	if s == "" || s[0] < 'A' || s[0] > 'G' {
		return "", "", s, false
	}
	root, rest = s[:1], s[1:]
	accidental, rest = readPrefix(rest, accidentals)
	return root, accidental, rest, true
}

func readPrefix(s string, table []string) (string, string) {
	for _, p := range table {
		if strings.HasPrefix(s, p) {
			return p, s[len(p):]
		}
	}
	return "", s
}

func endsInDigit(s string) bool {
	return s != "" && s[len(s)-1] >= '0' && s[len(s)-1] <= '9'
}

func isModifier(s string) bool {
	for _, m := range modifiers {
		if s == m {
			return true
		}
	}
	return false
}
