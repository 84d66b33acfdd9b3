package setlist

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lyricsheet/internal/song"
)

var (
	ErrEmptyName = errors.New("歌单名称不能为空")
	ErrNoMatches = errors.New("没有匹配到任何歌曲")
)

type Setlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SongIDs   []string  `json:"songs"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var now = time.Now

var (
	extRe        = regexp.MustCompile(`\.[^/.]+$`)
	separatorRe  = regexp.MustCompile(`[_\-]+`)
	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

func New(name string, songIDs []string) (Setlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Setlist{}, ErrEmptyName
	}
	ts := now()
	sl := Setlist{ID: song.NewID(), Name: name, SongIDs: []string{}, CreatedAt: ts, UpdatedAt: ts}
	for _, id := range songIDs {
		sl.Add(id)
	}
	sl.UpdatedAt = ts
	return sl, nil
}

func (s *Setlist) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	s.Name = name
	s.UpdatedAt = now()
	return nil
}

// Add appends a song id once; repeats are ignored.
func (s *Setlist) Add(songID string) bool {
	songID = strings.TrimSpace(songID)
	if songID == "" || s.Contains(songID) {
		return false
	}
	s.SongIDs = append(s.SongIDs, songID)
	s.UpdatedAt = now()
	return true
}

func (s *Setlist) Remove(songID string) bool {
	for i, id := range s.SongIDs {
		if id == songID {
			s.SongIDs = append(s.SongIDs[:i:i], s.SongIDs[i+1:]...)
			s.UpdatedAt = now()
			return true
		}
	}
	return false
}

// Move shifts a song by delta positions, clamped to the list bounds.
func (s *Setlist) Move(songID string, delta int) bool {
	from := s.index(songID)
	if from < 0 {
		return false
	}
	to := from + delta
	if to < 0 {
		to = 0
	}
	if to >= len(s.SongIDs) {
		to = len(s.SongIDs) - 1
	}
	if to == from {
		return false
	}
	id := s.SongIDs[from]
	s.SongIDs = append(s.SongIDs[:from], s.SongIDs[from+1:]...)
	s.SongIDs = append(s.SongIDs[:to], append([]string{id}, s.SongIDs[to:]...)...)
	s.UpdatedAt = now()
	return true
}

func (s Setlist) Contains(songID string) bool {
	return s.index(songID) >= 0
}

func (s Setlist) index(songID string) int {
	for i, id := range s.SongIDs {
		if id == songID {
			return i
		}
	}
	return -1
}

// Duplicate copies a setlist under a new id.
func Duplicate(s Setlist) Setlist {
	ts := now()
	return Setlist{
		ID:        song.NewID(),
		Name:      s.Name + " (Copy)",
		SongIDs:   append([]string{}, s.SongIDs...),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// Songs resolves the setlist against all songs, in setlist order. Missing ids
// are skipped.
func Songs(s Setlist, all []song.Song) []song.Song {
	byID := make(map[string]song.Song, len(all))
	for _, sg := range all {
		byID[sg.ID] = sg
	}
	out := make([]song.Song, 0, len(s.SongIDs))
	for _, id := range s.SongIDs {
		if sg, ok := byID[id]; ok {
			out = append(out, sg)
		}
	}
	return out
}

// NormalizeName turns a file name such as "summer_tour-2024.txt" into a
// setlist name ("Summer Tour 2024").
func NormalizeName(name string) string {
	name = extRe.ReplaceAllString(strings.TrimSpace(name), "")
	name = separatorRe.ReplaceAllString(name, " ")
	name = punctRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
	return cases.Title(language.English).String(name)
}
