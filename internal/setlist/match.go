package setlist

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"lyricsheet/internal/song"
)

const DefaultMatchThreshold = 0.85

var (
	listNumberRe = regexp.MustCompile(`^\d+[).:\-]?\s*`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s]+`)
)

// Matcher finds the stored song a typed title most likely refers to.
type Matcher struct {
	Threshold float64
}

func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultMatchThreshold
	}
	return Matcher{Threshold: threshold}
}

// FoldTitle lowercases, strips diacritics and punctuation, and collapses
// whitespace so "Café del Mar!" and "cafe del mar" compare equal.
func FoldTitle(s string) string {
	s = strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Score is the Jaro-Winkler similarity of two folded titles, also trying the
// space-stripped forms.
func Score(a, b string) float64 {
	fa, fb := FoldTitle(a), FoldTitle(b)
	if fa == "" || fb == "" {
		return 0
	}
	if fa == fb {
		return 1
	}
	score := matchr.JaroWinkler(fa, fb, false)
	ca, cb := strings.ReplaceAll(fa, " ", ""), strings.ReplaceAll(fb, " ", "")
	if s := matchr.JaroWinkler(ca, cb, false); s > score {
		score = s
	}
	return score
}

// Best returns the highest scoring song at or above the threshold.
func (m Matcher) Best(title string, songs []song.Song) (song.Song, float64, bool) {
	var (
		best      song.Song
		bestScore float64
		found     bool
	)
	for _, sg := range songs {
		s := Score(title, sg.Title)
		if s >= m.Threshold && s > bestScore {
			best, bestScore, found = sg, s, true
		}
	}
	return best, bestScore, found
}

type ImportResult struct {
	Setlist  Setlist
	Imported int
	NotFound []string
}

// ImportText builds a setlist from one title per line. List numbering such as
// "1." or "2)" is ignored.
func ImportText(name, text string, songs []song.Song, m Matcher) (ImportResult, error) {
	if strings.TrimSpace(name) == "" {
		return ImportResult{}, ErrEmptyName
	}
	ids := []string{}
	notFound := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		title := listNumberRe.ReplaceAllString(strings.TrimSpace(line), "")
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		if sg, _, ok := m.Best(title, songs); ok {
			ids = append(ids, sg.ID)
		} else {
			notFound = append(notFound, title)
		}
	}
	if len(ids) == 0 {
		return ImportResult{NotFound: notFound}, ErrNoMatches
	}
	sl, err := New(name, ids)
	if err != nil {
		return ImportResult{}, err
	}
	return ImportResult{Setlist: sl, Imported: len(sl.SongIDs), NotFound: notFound}, nil
}
