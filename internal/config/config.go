package config

import (
	"strings"

	"lyricsheet/internal/chord"
	"lyricsheet/internal/llm"
	"lyricsheet/internal/setlist"
)

type Config struct {
	Provider          string                    `yaml:"provider"`
	APIKeyEnv         string                    `yaml:"api_key_env"`
	DBPath            string                    `yaml:"db_path"`
	Concurrency       int                       `yaml:"concurrency"`
	MaxRetries        int                       `yaml:"max_retries"`
	RequestTimeoutSec int                       `yaml:"request_timeout_sec"`
	Chords            ChordsConfig              `yaml:"chords"`
	Setlist           SetlistConfig             `yaml:"setlist"`
	Export            ExportConfig              `yaml:"export"`
	Providers         map[string]ProviderConfig `yaml:"providers"`
}

type ChordsConfig struct {
	PrimaryThreshold   float64 `yaml:"primary_threshold"`
	SecondaryThreshold float64 `yaml:"secondary_threshold"`
	// Prefix is written before each chord line when rendering a sheet.
	Prefix string `yaml:"prefix"`
}

type SetlistConfig struct {
	MatchThreshold float64 `yaml:"match_threshold"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type ProviderConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

type Paths struct {
	HomeDir      string
	RootDir      string
	ConfigPath   string
	EnvPath      string
	EnvExample   string
	ConfigSource string
	ResolvedDB   string
	ResolvedOut  string
}

func (c *Config) applyDefaults() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = llm.ProviderOpenRouter
	}
	if strings.TrimSpace(c.APIKeyEnv) == "" {
		c.APIKeyEnv = defaultKeyEnv(c.Provider)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = "~/.lyricsheet/songs.sqlite3"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = 20
	}
	if c.Chords.PrimaryThreshold <= 0 || c.Chords.PrimaryThreshold > 1 {
		c.Chords.PrimaryThreshold = chord.DefaultPrimaryThreshold
	}
	if c.Chords.SecondaryThreshold <= 0 || c.Chords.SecondaryThreshold > c.Chords.PrimaryThreshold {
		c.Chords.SecondaryThreshold = chord.DefaultSecondaryThreshold
		if c.Chords.SecondaryThreshold > c.Chords.PrimaryThreshold {
			c.Chords.SecondaryThreshold = c.Chords.PrimaryThreshold
		}
	}
	if c.Setlist.MatchThreshold <= 0 || c.Setlist.MatchThreshold > 1 {
		c.Setlist.MatchThreshold = setlist.DefaultMatchThreshold
	}
	if strings.TrimSpace(c.Export.Dir) == "" {
		c.Export.Dir = "."
	}
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	if _, ok := c.Providers[llm.ProviderOpenRouter]; !ok {
		c.Providers[llm.ProviderOpenRouter] = ProviderConfig{
			BaseURL: llm.DefaultOpenRouterBaseURL,
			Model:   llm.DefaultOpenRouterModel,
		}
	}
	if _, ok := c.Providers[llm.ProviderOpenAI]; !ok {
		c.Providers[llm.ProviderOpenAI] = ProviderConfig{
			BaseURL: llm.DefaultOpenAIBaseURL,
			Model:   "gpt-4o-mini",
		}
	}
	for name, p := range c.Providers {
		if p.Temperature <= 0 {
			p.Temperature = llm.DefaultTemperature
		}
		c.Providers[name] = p
	}
}

func defaultKeyEnv(provider string) string {
	if provider == llm.ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "OPENROUTER_API_KEY"
}

// ActiveProvider returns the settings of the configured provider.
func (c *Config) ActiveProvider() ProviderConfig {
	return c.Providers[c.Provider]
}

func (c *Config) Classifier() chord.Classifier {
	return chord.New(c.Chords.PrimaryThreshold, c.Chords.SecondaryThreshold)
}
