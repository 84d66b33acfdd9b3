package song

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"lyricsheet/internal/section"
)

const (
	SchemaVersion        = 2
	DefaultTitle         = "New Song"
	DefaultTempo         = 120
	DefaultTimeSignature = "4/4"
)

type Song struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Lyrics        string    `json:"lyrics"`
	Chords        string    `json:"chords"`
	Key           string    `json:"key"`
	Tempo         int       `json:"tempo"`
	TimeSignature string    `json:"timeSignature"`
	Tags          []string  `json:"tags"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	LastEditedAt  time.Time `json:"lastEditedAt"`
	SchemaVersion int       `json:"schemaVersion"`
}

var now = time.Now

// NewID returns a fresh song or setlist identifier.
func NewID() string {
	return uuid.NewString()
}

// New creates a song. Empty lyrics get the default section skeleton.
func New(title, lyrics, chords string) Song {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	body := section.DefaultSkeleton
	if strings.TrimSpace(lyrics) != "" {
		body = section.Normalize(lyrics)
	}
	ts := now()
	return Song{
		ID:            NewID(),
		Title:         title,
		Lyrics:        body,
		Chords:        chords,
		Tempo:         DefaultTempo,
		TimeSignature: DefaultTimeSignature,
		Tags:          []string{},
		CreatedAt:     ts,
		LastEditedAt:  ts,
		SchemaVersion: SchemaVersion,
	}
}

// Migrate brings a stored song up to the current schema. Chords are left
// untouched so their line positions keep matching the lyrics.
func Migrate(s Song) Song {
	if strings.TrimSpace(s.ID) == "" {
		s.ID = NewID()
	}
	s.Title = strings.TrimSpace(s.Title)
	s.Lyrics = section.Normalize(strings.ReplaceAll(s.Lyrics, "\r\n", "\n"))
	s.Chords = strings.ReplaceAll(s.Chords, "\r\n", "\n")
	s.Tags = ParseTags(strings.Join(s.Tags, ","))
	if s.Tempo < 0 {
		s.Tempo = 0
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now()
	}
	if s.LastEditedAt.IsZero() {
		s.LastEditedAt = s.CreatedAt
	}
	s.SchemaVersion = SchemaVersion
	return s
}

func MigrateAll(list []Song) []Song {
	out := make([]Song, 0, len(list))
	for _, s := range list {
		out = append(out, Migrate(s))
	}
	return out
}

// Touch marks the song as edited now.
func (s *Song) Touch() {
	s.LastEditedAt = now()
}

// ParseTags splits a comma separated tag list, dropping blanks and repeats.
func ParseTags(raw string) []string {
	out := []string{}
	for _, t := range strings.Split(raw, ",") {
		out = addTag(out, t)
	}
	return out
}

func (s *Song) AddTag(tag string) bool {
	before := len(s.Tags)
	s.Tags = addTag(s.Tags, tag)
	return len(s.Tags) != before
}

func (s *Song) RemoveTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for i, t := range s.Tags {
		if strings.EqualFold(t, tag) {
			s.Tags = append(s.Tags[:i:i], s.Tags[i+1:]...)
			return true
		}
	}
	return false
}

func (s Song) HasTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range s.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func addTag(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return tags
	}
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return tags
		}
	}
	return append(tags, tag)
}

// StripTitleLine drops a leading lyric line that just repeats the title,
// along with one blank line after it.
func StripTitleLine(lyrics, title string) string {
	lines := strings.Split(lyrics, "\n")
	norm := strings.ToLower(strings.TrimSpace(title))
	if len(lines) > 0 && strings.ToLower(strings.TrimSpace(lines[0])) == norm {
		lines = lines[1:]
		if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
			lines = lines[1:]
		}
	}
	return strings.Join(lines, "\n")
}

// IsBlank reports whether s is an untouched default song.
func IsBlank(s Song) bool {
	if strings.ToLower(strings.TrimSpace(s.Title)) != strings.ToLower(DefaultTitle) {
		return false
	}
	lyrics := strings.TrimSpace(section.Normalize(s.Lyrics))
	if lyrics != "" && lyrics != section.DefaultSkeleton {
		return false
	}
	return strings.TrimSpace(s.Chords) == "" && strings.TrimSpace(s.Notes) == "" && len(s.Tags) == 0
}

// EnsureUniqueIDs gives every song a distinct id. A duplicate keeps the first
// occurrence and re-ids the later one; setlist references (plain id slices)
// to a re-assigned id follow the new id. The count is the number of songs
// that received a new id.
func EnsureUniqueIDs(songs []Song, setlists [][]string) ([]Song, [][]string, int) {
	outSongs := make([]Song, len(songs))
	copy(outSongs, songs)
	used := map[string]struct{}{}
	remap := map[string]string{}
	for i := range outSongs {
		old := outSongs[i].ID
		if _, dup := used[old]; old == "" || dup {
			nid := NewID()
			if old != "" {
				remap[old] = nid
			}
			outSongs[i].ID = nid
		}
		used[outSongs[i].ID] = struct{}{}
	}
	changed := len(remap)
	for i := range outSongs {
		if songs[i].ID == "" {
			changed++
		}
	}
	if len(remap) == 0 {
		return outSongs, setlists, changed
	}
	outSets := make([][]string, len(setlists))
	for i, ids := range setlists {
		next := make([]string, len(ids))
		for j, id := range ids {
			if nid, ok := remap[id]; ok {
				next[j] = nid
			} else {
				next[j] = id
			}
		}
		outSets[i] = next
	}
	return outSongs, outSets, changed
}
