package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lyricsheet/internal/config"
	"lyricsheet/internal/llm"
	"lyricsheet/internal/logging"
	"lyricsheet/internal/song"
	"lyricsheet/internal/store"
)

type Options struct {
	ConfigPath  string
	DBPath      string
	LogFile     string
	Provider    string
	Concurrency int
	MaxRetries  int
	Verbose     bool
	CWD         string
	Stdout      io.Writer
}

type generator interface {
	Generate(ctx context.Context, req llm.Request) (llm.Response, error)
}

// Session holds what one CLI invocation needs: config, store and logger.
type Session struct {
	Config *config.Config
	Paths  *config.Paths
	Store  *store.Store
	Logger *logging.Logger

	cwd     string
	gen     generator
	closers []io.Closer
}

func Open(opts Options) (*Session, error) {
	cwd := strings.TrimSpace(opts.CWD)
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("读取当前目录失败：%w", err)
		}
		cwd = wd
	}

	cfg, paths, err := config.Load(opts.ConfigPath, cwd)
	if err != nil {
		return nil, err
	}
	overrideConfig(cfg, paths, opts, cwd)
	if _, ok := cfg.Providers[cfg.Provider]; !ok {
		return nil, fmt.Errorf("配置中不存在 provider：%s", cfg.Provider)
	}

	logger, closer, err := logging.New(opts.Stdout, opts.LogFile, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败：%w", err)
	}
	s := &Session{Config: cfg, Paths: paths, Logger: logger, cwd: cwd}
	if closer != nil {
		s.closers = append(s.closers, closer)
	}

	st, err := store.Open(paths.ResolvedDB)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Store = st
	s.closers = append(s.closers, st)
	s.gen = llm.NewClient(time.Duration(cfg.RequestTimeoutSec) * time.Second)

	logger.Emit(logging.Event{Event: "startup", Provider: cfg.Provider, Model: cfg.ActiveProvider().Model})
	logger.Emit(logging.Event{Event: "config_loaded", Input: paths.ConfigSource})
	return s, nil
}

func (s *Session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func overrideConfig(cfg *config.Config, paths *config.Paths, opts Options, cwd string) {
	if opts.Concurrency > 0 {
		cfg.Concurrency = opts.Concurrency
	}
	if opts.MaxRetries > 0 {
		cfg.MaxRetries = opts.MaxRetries
	}
	if p := strings.ToLower(strings.TrimSpace(opts.Provider)); p != "" {
		cfg.Provider = p
	}
	if strings.TrimSpace(opts.DBPath) != "" {
		paths.ResolvedDB = absPath(cwd, opts.DBPath)
	}
}

func absPath(cwd, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}

// FindSong resolves ref to exactly one stored song.
func (s *Session) FindSong(ref string) (song.Song, error) {
	if sg, err := s.Store.GetSong(strings.TrimSpace(ref)); err == nil {
		return song.Migrate(sg), nil
	}
	found, err := s.Store.FindSongs(ref)
	if errors.Is(err, store.ErrNotFound) {
		return song.Song{}, fmt.Errorf("找不到歌曲：%s：%w", ref, err)
	}
	if err != nil {
		return song.Song{}, err
	}
	if len(found) > 1 {
		names := make([]string, 0, len(found))
		for _, sg := range found {
			names = append(names, fmt.Sprintf("%s（%s）", sg.Title, shortID(sg.ID)))
		}
		return song.Song{}, fmt.Errorf("匹配到多首歌曲，请使用 ID：%s", strings.Join(names, "、"))
	}
	return song.Migrate(found[0]), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
