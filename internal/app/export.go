package app

import (
	"fmt"
	"os"
	"strings"

	"lyricsheet/internal/logging"
	"lyricsheet/internal/output"
	"lyricsheet/internal/song"
)

type ExportOptions struct {
	// Refs selects songs; empty exports the whole library.
	Refs         []string
	Dir          string
	WithMetadata bool
}

// Export writes each selected song to its own collision-free markdown file.
func (s *Session) Export(opts ExportOptions) ([]string, error) {
	dir := s.Paths.ResolvedOut
	if strings.TrimSpace(opts.Dir) != "" {
		dir = absPath(s.cwd, opts.Dir)
	}
	if err := output.EnsureDir(dir); err != nil {
		return nil, err
	}

	var songs []song.Song
	if len(opts.Refs) == 0 {
		all, err := s.Store.LoadSongs()
		if err != nil {
			return nil, err
		}
		songs = song.MigrateAll(all)
	} else {
		for _, ref := range opts.Refs {
			sg, err := s.FindSong(ref)
			if err != nil {
				return nil, err
			}
			songs = append(songs, sg)
		}
	}
	if len(songs) == 0 {
		return nil, fmt.Errorf("没有可导出的歌曲")
	}

	written := make([]string, 0, len(songs))
	for _, sg := range songs {
		path, err := output.NextPath(dir, sg.Title, ".md", nil)
		if err != nil {
			return written, err
		}
		body := song.ExportText(sg, opts.WithMetadata, s.Config.Chords.Prefix)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			s.Logger.Emit(logging.Event{Level: "error", Event: "write_failed", Song: sg.Title, OutputFile: path, Error: err.Error()})
			return written, fmt.Errorf("写入文件失败（%s）：%w", path, err)
		}
		s.Logger.Emit(logging.Event{Event: "write_ok", Song: sg.Title, OutputFile: path})
		written = append(written, path)
	}
	return written, nil
}
