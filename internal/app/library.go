package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lyricsheet/internal/setlist"
	"lyricsheet/internal/song"
	"lyricsheet/internal/store"
)

func (s *Session) Songs() ([]song.Song, error) {
	list, err := s.Store.LoadSongs()
	if err != nil {
		return nil, err
	}
	return song.MigrateAll(list), nil
}

func (s *Session) NewSong(title, lyrics string, tags []string) (song.Song, error) {
	sg := song.New(title, lyrics, "")
	for _, t := range tags {
		sg.AddTag(t)
	}
	if err := s.Store.PutSong(sg); err != nil {
		return song.Song{}, err
	}
	return sg, nil
}

func (s *Session) RemoveSong(ref string) (song.Song, error) {
	sg, err := s.FindSong(ref)
	if err != nil {
		return song.Song{}, err
	}
	if err := s.Store.DeleteSong(sg.ID); err != nil {
		return song.Song{}, err
	}
	return sg, nil
}

func (s *Session) Setlists() ([]setlist.Setlist, error) {
	return s.Store.LoadSetlists()
}

// ImportSetlist matches one title per line of the file against the library.
// An empty name is derived from the file name.
func (s *Session) ImportSetlist(name, path string) (setlist.ImportResult, error) {
	raw, err := os.ReadFile(absPath(s.cwd, path))
	if err != nil {
		return setlist.ImportResult{}, fmt.Errorf("读取文件失败（%s）：%w", path, err)
	}
	if strings.TrimSpace(name) == "" {
		name = setlist.NormalizeName(filepath.Base(path))
	}
	songs, err := s.Songs()
	if err != nil {
		return setlist.ImportResult{}, err
	}
	res, err := setlist.ImportText(name, string(raw), songs, setlist.NewMatcher(s.Config.Setlist.MatchThreshold))
	if err != nil {
		return res, err
	}
	if err := s.Store.PutSetlist(res.Setlist); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Session) ExportSetlist(ref, format string) ([]byte, error) {
	sl, err := s.FindSetlist(ref)
	if err != nil {
		return nil, err
	}
	songs, err := s.Songs()
	if err != nil {
		return nil, err
	}
	return setlist.Export(sl, songs, format)
}

type backup struct {
	Songs    []song.Song       `json:"songs"`
	Setlists []setlist.Setlist `json:"setlists"`
}

// Backup writes the whole library as JSON.
func (s *Session) Backup(path string) (int, error) {
	songs, err := s.Songs()
	if err != nil {
		return 0, err
	}
	sets, err := s.Setlists()
	if err != nil {
		return 0, err
	}
	raw, err := json.MarshalIndent(backup{Songs: songs, Setlists: sets}, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("编码备份失败：%w", err)
	}
	if err := os.WriteFile(absPath(s.cwd, path), raw, 0o644); err != nil {
		return 0, fmt.Errorf("写入备份失败（%s）：%w", path, err)
	}
	return len(songs), nil
}

type RestoreResult struct {
	Songs      int
	Setlists   int
	Reassigned int
	Skipped    int
}

// Restore appends a JSON backup, or a bare JSON array of songs, to the
// library. Untouched default songs are skipped. Songs whose id is missing or
// already taken get a new id, and the restored setlists follow them.
func (s *Session) Restore(path string) (RestoreResult, error) {
	raw, err := os.ReadFile(absPath(s.cwd, path))
	if err != nil {
		return RestoreResult{}, fmt.Errorf("读取备份失败（%s）：%w", path, err)
	}
	var in backup
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &in.Songs)
	} else {
		err = json.Unmarshal(raw, &in)
	}
	if err != nil {
		return RestoreResult{}, fmt.Errorf("备份格式错误（%s）：%w", path, err)
	}

	existing, err := s.Songs()
	if err != nil {
		return RestoreResult{}, err
	}
	existingSets, err := s.Setlists()
	if err != nil {
		return RestoreResult{}, err
	}

	refs := make([][]string, len(in.Setlists))
	for i, sl := range in.Setlists {
		refs[i] = sl.SongIDs
	}
	incoming := make([]song.Song, 0, len(in.Songs))
	skipped := 0
	for _, sg := range song.MigrateAll(in.Songs) {
		if song.IsBlank(sg) {
			skipped++
			continue
		}
		incoming = append(incoming, sg)
	}
	merged, refs, reassigned := song.EnsureUniqueIDs(append(existing, incoming...), refs)

	takenSets := map[string]struct{}{}
	for _, sl := range existingSets {
		takenSets[sl.ID] = struct{}{}
	}
	sets := existingSets
	for i, sl := range in.Setlists {
		sl.SongIDs = refs[i]
		if _, taken := takenSets[sl.ID]; sl.ID == "" || taken {
			sl.ID = song.NewID()
		}
		takenSets[sl.ID] = struct{}{}
		sets = append(sets, sl)
	}

	if err := s.Store.ReplaceAll(merged, sets); err != nil {
		return RestoreResult{}, err
	}
	return RestoreResult{Songs: len(incoming), Setlists: len(in.Setlists), Reassigned: reassigned, Skipped: skipped}, nil
}

// UpdateSong loads one song, applies edit and stores it.
func (s *Session) UpdateSong(ref string, edit func(*song.Song) error) (song.Song, error) {
	sg, err := s.FindSong(ref)
	if err != nil {
		return song.Song{}, err
	}
	if err := edit(&sg); err != nil {
		return song.Song{}, err
	}
	sg.Touch()
	if err := s.Store.PutSong(sg); err != nil {
		return song.Song{}, err
	}
	return sg, nil
}

// ApplyChordFile fits one chord line per sung line from path onto a song.
func (s *Session) ApplyChordFile(ref, path string) (song.Song, error) {
	raw, err := os.ReadFile(absPath(s.cwd, path))
	if err != nil {
		return song.Song{}, fmt.Errorf("读取文件失败（%s）：%w", path, err)
	}
	return s.UpdateSong(ref, func(sg *song.Song) error {
		sg.ApplyChords(string(raw))
		return nil
	})
}

func (s *Session) FindSetlist(ref string) (setlist.Setlist, error) {
	sl, err := s.Store.FindSetlist(ref)
	if errors.Is(err, store.ErrNotFound) {
		return setlist.Setlist{}, fmt.Errorf("找不到歌单：%s：%w", ref, err)
	}
	return sl, err
}

func (s *Session) NewSetlist(name string, songRefs []string) (setlist.Setlist, error) {
	ids := make([]string, 0, len(songRefs))
	for _, ref := range songRefs {
		sg, err := s.FindSong(ref)
		if err != nil {
			return setlist.Setlist{}, err
		}
		ids = append(ids, sg.ID)
	}
	sl, err := setlist.New(name, ids)
	if err != nil {
		return setlist.Setlist{}, err
	}
	if err := s.Store.PutSetlist(sl); err != nil {
		return setlist.Setlist{}, err
	}
	return sl, nil
}

// UpdateSetlist loads one setlist, applies edit and stores it.
func (s *Session) UpdateSetlist(ref string, edit func(*setlist.Setlist) error) (setlist.Setlist, error) {
	sl, err := s.FindSetlist(ref)
	if err != nil {
		return setlist.Setlist{}, err
	}
	if err := edit(&sl); err != nil {
		return setlist.Setlist{}, err
	}
	if err := s.Store.PutSetlist(sl); err != nil {
		return setlist.Setlist{}, err
	}
	return sl, nil
}

func (s *Session) AddToSetlist(ref, songRef string) (setlist.Setlist, error) {
	sg, err := s.FindSong(songRef)
	if err != nil {
		return setlist.Setlist{}, err
	}
	return s.UpdateSetlist(ref, func(sl *setlist.Setlist) error {
		if !sl.Add(sg.ID) {
			return fmt.Errorf("歌单中已有歌曲：%s", sg.Title)
		}
		return nil
	})
}

func (s *Session) RemoveFromSetlist(ref, songRef string) (setlist.Setlist, error) {
	sg, err := s.FindSong(songRef)
	if err != nil {
		return setlist.Setlist{}, err
	}
	return s.UpdateSetlist(ref, func(sl *setlist.Setlist) error {
		if !sl.Remove(sg.ID) {
			return fmt.Errorf("歌单中没有歌曲：%s", sg.Title)
		}
		return nil
	})
}

// MoveInSetlist shifts a song by delta positions; the move is clamped to the
// list bounds.
func (s *Session) MoveInSetlist(ref, songRef string, delta int) (setlist.Setlist, error) {
	sg, err := s.FindSong(songRef)
	if err != nil {
		return setlist.Setlist{}, err
	}
	return s.UpdateSetlist(ref, func(sl *setlist.Setlist) error {
		if !sl.Contains(sg.ID) {
			return fmt.Errorf("歌单中没有歌曲：%s", sg.Title)
		}
		sl.Move(sg.ID, delta)
		return nil
	})
}

func (s *Session) DuplicateSetlist(ref string) (setlist.Setlist, error) {
	sl, err := s.FindSetlist(ref)
	if err != nil {
		return setlist.Setlist{}, err
	}
	dup := setlist.Duplicate(sl)
	if err := s.Store.PutSetlist(dup); err != nil {
		return setlist.Setlist{}, err
	}
	return dup, nil
}

func (s *Session) RemoveSetlist(ref string) (setlist.Setlist, error) {
	sl, err := s.FindSetlist(ref)
	if err != nil {
		return setlist.Setlist{}, err
	}
	if err := s.Store.DeleteSetlist(sl.ID); err != nil {
		return setlist.Setlist{}, err
	}
	return sl, nil
}
