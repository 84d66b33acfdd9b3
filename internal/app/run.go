package app

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"lyricsheet/internal/discovery"
	"lyricsheet/internal/importer"
	"lyricsheet/internal/logging"
	"lyricsheet/internal/section"
	"lyricsheet/internal/song"
	"lyricsheet/internal/songfile"
)

type ImportOptions struct {
	Inputs []string
	// Strict reads sections as exact chord/lyric alternation.
	Strict bool
}

type Result struct {
	Succeeded int
	Failed    int
	Songs     []song.Song
}

// Import reads song files, cleans and splits their text, and stores one song
// per file. Files are processed concurrently; songs are saved in path order.
func (s *Session) Import(ctx context.Context, opts ImportOptions) (Result, error) {
	inputPaths := make([]string, 0, len(opts.Inputs))
	for _, in := range opts.Inputs {
		inputPaths = append(inputPaths, absPath(s.cwd, in))
	}
	discoverRes, err := discovery.Discover(inputPaths)
	for _, w := range discoverRes.Warnings {
		s.Logger.Emit(logging.Event{Level: "warn", Event: "scan_warning", Error: w})
	}
	if err != nil {
		return Result{}, err
	}

	im := importer.New(s.Config.Classifier())
	parsed := make([]*song.Song, len(discoverRes.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Config.Concurrency, 1))
	for i, file := range discoverRes.Files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sg, err := s.importFile(im, file, opts.Strict)
			if err != nil {
				s.Logger.Emit(logging.Event{Level: "error", Event: "import_failed", Input: file, Error: err.Error()})
				return nil
			}
			parsed[i] = &sg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{}
	for i, sg := range parsed {
		if sg == nil {
			result.Failed++
			continue
		}
		if err := s.Store.PutSong(*sg); err != nil {
			result.Failed++
			s.Logger.Emit(logging.Event{Level: "error", Event: "write_failed", Input: discoverRes.Files[i], Song: sg.Title, Error: err.Error()})
			continue
		}
		result.Succeeded++
		result.Songs = append(result.Songs, *sg)
		s.Logger.Emit(logging.Event{Event: "import_ok", Input: discoverRes.Files[i], Song: sg.Title, Lines: song.ContentLines(sg.Lyrics)})
	}
	s.Logger.Emit(logging.Event{Event: "finished", Error: fmt.Sprintf("success=%d failed=%d", result.Succeeded, result.Failed)})
	return result, nil
}

func (s *Session) importFile(im *importer.Importer, path string, strict bool) (song.Song, error) {
	f, err := songfile.ParseFile(path)
	if err != nil {
		return song.Song{}, err
	}
	for _, w := range f.Warnings {
		s.Logger.Emit(logging.Event{Level: "warn", Event: "parse_warning", Input: path, Error: w})
	}
	var res importer.Result
	if strict {
		res = im.ImportStrict(f.Body)
	} else {
		res = im.Import(f.Body)
	}
	res = stripTitle(res, f.Title)
	if !res.Usable() {
		return song.Song{}, importer.ErrNoContent
	}
	sg := f.Song()
	sg.Apply(res, song.Replace)
	return sg, nil
}

// stripTitle drops a first lyric line that only repeats the title. A sung
// line takes its chord slot with it; a section marker has none.
func stripTitle(res importer.Result, title string) importer.Result {
	stripped := song.StripTitleLine(res.Lyrics, title)
	if stripped == res.Lyrics {
		return res
	}
	first, _, _ := strings.Cut(res.Lyrics, "\n")
	res.Lyrics = stripped
	if strings.TrimSpace(first) == "" || section.IsLabel(first) {
		return res
	}
	if i := strings.Index(res.Chords, "\n"); i >= 0 {
		res.Chords = res.Chords[i+1:]
	} else {
		res.Chords = ""
	}
	return res
}
