package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lyricsheet/internal/importer"
	"lyricsheet/internal/llm"
	"lyricsheet/internal/logging"
	"lyricsheet/internal/song"
	"lyricsheet/internal/textclean"
)

type GenerateOptions struct {
	// SongRef may be empty for a draft, which then creates a new song.
	SongRef   string
	Title     string
	Task      llm.Task
	Style     string
	Selection string
	Notes     string
	Mode      song.Mode
}

type GenerateResult struct {
	Song      song.Song
	Contract  llm.Contract
	Text      string
	Saved     bool
	LatencyMS int64
}

// Generate asks the generation service for a task, cleans the completion and
// writes it into the song according to the task's format contract. Rhyme and
// rewording tasks only return text.
func (s *Session) Generate(ctx context.Context, opts GenerateOptions) (GenerateResult, error) {
	sg, err := s.generationTarget(opts)
	if err != nil {
		return GenerateResult{}, err
	}
	prompt, err := llm.TaskPrompt(opts.Task, llm.TaskInput{
		Title:         sg.Title,
		Key:           sg.Key,
		Tempo:         sg.Tempo,
		TimeSignature: sg.TimeSignature,
		Tags:          sg.Tags,
		Sheet:         sg.Sheet(""),
		Style:         opts.Style,
		Selection:     opts.Selection,
	})
	if err != nil {
		return GenerateResult{}, err
	}
	contract := llm.ChooseContract(prompt)

	apiKey, err := ensureAPIKey(s.Paths, s.Config.APIKeyEnv)
	if err != nil {
		return GenerateResult{}, err
	}
	pc := s.Config.ActiveProvider()
	req := llm.Request{
		Provider:     s.Config.Provider,
		BaseURL:      pc.BaseURL,
		Model:        pc.Model,
		APIKey:       apiKey,
		SystemPrompt: llm.SystemPrompt,
		UserPrompt:   llm.BuildPrompt(prompt, contract, opts.Notes),
		Temperature:  pc.Temperature,
	}

	var resp llm.Response
	s.Logger.Emit(logging.Event{Event: "api_request", Song: sg.Title, Provider: req.Provider, Model: req.Model})
	err = withExponentialBackoff(ctx, retryOptions{
		MaxRetries: s.Config.MaxRetries,
		BaseDelay:  time.Second,
		MaxDelay:   15 * time.Second,
		Jitter:     0.2,
		OnRetry: func(attempt int, wait time.Duration, err error) {
			s.Logger.Emit(logging.Event{Level: "warn", Event: "api_retry", Song: sg.Title, Attempt: attempt, WaitMS: wait.Milliseconds(), Error: err.Error()})
		},
	}, func(attempt int) error {
		r, err := s.gen.Generate(ctx, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		s.Logger.Emit(logging.Event{Level: "error", Event: "generate_failed", Song: sg.Title, Error: err.Error()})
		return GenerateResult{}, fmt.Errorf("生成失败：%w", err)
	}
	s.Logger.Emit(logging.Event{Event: "api_response", Song: sg.Title, LatencyMS: resp.LatencyMS})

	out := GenerateResult{Song: sg, Contract: contract, LatencyMS: resp.LatencyMS}
	if contract == llm.ContractRhyme || contract == llm.ContractRewriteLine {
		out.Text = textclean.Clean(resp.Text)
		if out.Text == "" {
			return out, importer.ErrNoContent
		}
		return out, nil
	}

	res := importer.New(s.Config.Classifier()).Import(resp.Text)
	if err := importer.Check(resp.Text, res); err != nil {
		s.Logger.Emit(logging.Event{Level: "error", Event: "generate_failed", Song: sg.Title, Error: err.Error()})
		return out, err
	}
	res = stripTitle(res, sg.Title)
	out.Text = song.Song{Lyrics: res.Lyrics, Chords: res.Chords}.Sheet("")

	switch contract {
	case llm.ContractSuggestChords:
		sg.SetChords(strings.Split(res.Chords, "\n"))
	case llm.ContractContinueSong:
		sg.Apply(res, song.Append)
	default:
		sg.Apply(res, opts.Mode)
	}
	if err := s.Store.PutSong(sg); err != nil {
		return out, err
	}
	out.Song = sg
	out.Saved = true
	s.Logger.Emit(logging.Event{Event: "import_ok", Song: sg.Title, Lines: song.ContentLines(sg.Lyrics)})
	return out, nil
}

func (s *Session) generationTarget(opts GenerateOptions) (song.Song, error) {
	if strings.TrimSpace(opts.SongRef) != "" {
		return s.FindSong(opts.SongRef)
	}
	switch opts.Task {
	case llm.TaskRhyme, llm.TaskReword, llm.TaskRewrite:
		return song.Song{}, nil
	}
	if opts.Task != llm.TaskDraft {
		return song.Song{}, fmt.Errorf("%s 任务需要指定歌曲", opts.Task)
	}
	return song.New(opts.Title, "", ""), nil
}
