package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-git/gcfg/v2"
	"github.com/go-playground/validator/v10"

	"github.com/lthms/reel/internal/video"
)

// Config is the parsed ~/.config/reel/config file with defaults and command
// line overrides applied.
type Config struct {
	Search   SearchConfig   `gcfg:"search"`
	YouTube  YouTubeConfig  `gcfg:"youtube"`
	Cache    CacheConfig    `gcfg:"cache"`
	Feedback FeedbackConfig `gcfg:"feedback"`
	Summary  SummaryConfig  `gcfg:"summary"`
}

// SearchConfig controls candidate collection.
type SearchConfig struct {
	Keyword     []string `gcfg:"keyword" validate:"min=1,dive,required"`
	Limit       int      `gcfg:"limit" validate:"min=1,max=100"`
	MinDuration int      `gcfg:"min-duration" validate:"min=0"`
	Language    []string `gcfg:"language" validate:"dive,required"` // "*" accepts every language
	Backend     string   `gcfg:"backend" validate:"oneof=yt-dlp youtube catalog"`
	Catalog     string   `gcfg:"catalog" validate:"required_if=Backend catalog"`
}

// YouTubeConfig configures the YouTube Data API backend.
type YouTubeConfig struct {
	APIKey            string  `gcfg:"api-key"`
	RequestsPerSecond float64 `gcfg:"requests-per-second" validate:"gte=0"`
}

// CacheConfig configures the search result cache. An empty Dir disables it.
type CacheConfig struct {
	Dir string   `gcfg:"dir"`
	TTL duration `gcfg:"ttl"`
}

// FeedbackConfig locates the feedback log.
type FeedbackConfig struct {
	Path        string `gcfg:"path" validate:"required"`
	LegacyCodes bool   `gcfg:"legacy-codes"`
}

// SummaryConfig selects how summaries are produced.
type SummaryConfig struct {
	Backend   string `gcfg:"backend" validate:"oneof=local ollama claude"`
	URL       string `gcfg:"url" validate:"omitempty,url"`
	Model     string `gcfg:"model"`
	MaxLength int    `gcfg:"max-length" validate:"min=20"`
	FetchPage bool   `gcfg:"fetch-page"`

	// Transcript summarizes from yt-dlp subtitles before anything else.
	Transcript bool `gcfg:"transcript"`
}

// duration parses Go duration strings such as "6h" or "90m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative duration %q", text)
	}
	d.Duration = v
	return nil
}

var (
	defaultKeywords = []string{
		"full stack", "mern stack", "mern",
		"website", "website development", "web development",
	}
	defaultLanguages = []string{"en", "hi"}
)

const (
	defaultOllamaModel = "llama3.2"
	defaultClaudeModel = "haiku"
)

// defaultConfig returns the single-valued defaults. Multi-valued defaults
// are filled in by applyDefaults because gcfg appends to preset slices.
func defaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Limit:       10,
			MinDuration: 60,
			Backend:     "yt-dlp",
			Catalog:     "videos.yaml",
		},
		YouTube: YouTubeConfig{RequestsPerSecond: 5},
		Cache:   CacheConfig{TTL: duration{6 * time.Hour}},
		Feedback: FeedbackConfig{
			Path:        "yt_feedback.csv",
			LegacyCodes: true,
		},
		Summary: SummaryConfig{
			Backend:   "local",
			URL:       "http://localhost:11434",
			MaxLength: 220,
		},
	}
}

func (c *Config) applyDefaults() {
	if len(c.Search.Keyword) == 0 {
		c.Search.Keyword = append([]string(nil), defaultKeywords...)
	}
	switch {
	case len(c.Search.Language) == 0:
		c.Search.Language = append([]string(nil), defaultLanguages...)
	case slices.Contains(c.Search.Language, "*"):
		c.Search.Language = nil
	}
	if c.Summary.Model == "" {
		switch c.Summary.Backend {
		case "claude":
			c.Summary.Model = defaultClaudeModel
		default:
			c.Summary.Model = defaultOllamaModel
		}
	}
}

// defaultConfigPath returns ~/.config/reel/config.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".config", "reel", "config"), nil
}

// loadConfig reads the config file at path. A missing file yields the
// defaults with no error. Unknown sections and variables are errors.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		// gcfg stops at the first unknown variable, so a warning still
		// means the rest of the file was not read.
		err := gcfg.ReadFileInto(cfg, path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// overrides holds the command line flags that take precedence over the
// config file. Zero values leave the file's setting alone.
type overrides struct {
	Keywords []string
	Limit    int
	Feedback string
	Backend  string
}

func (c *Config) apply(o overrides) {
	if len(o.Keywords) > 0 {
		c.Search.Keyword = o.Keywords
	}
	if o.Limit > 0 {
		c.Search.Limit = o.Limit
	}
	if o.Feedback != "" {
		c.Feedback.Path = o.Feedback
	}
	if o.Backend != "" {
		c.Search.Backend = o.Backend
	}
}

// finalize normalizes keywords and languages, expands "~" in paths and
// validates the result.
func (c *Config) finalize() error {
	c.Search.Keyword = video.NormalizeKeywords(c.Search.Keyword)
	for i, l := range c.Search.Language {
		c.Search.Language[i] = strings.ToLower(strings.TrimSpace(l))
	}
	c.Search.Catalog = expandHome(c.Search.Catalog)
	c.Cache.Dir = expandHome(c.Cache.Dir)
	c.Feedback.Path = expandHome(c.Feedback.Path)

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// query returns the collection parameters for the configured search.
func (c *Config) query() video.Query {
	return video.Query{
		Keywords:    c.Search.Keyword,
		Limit:       c.Search.Limit,
		MinDuration: c.Search.MinDuration,
		Languages:   c.Search.Language,
	}
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
