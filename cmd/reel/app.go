package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/lthms/reel/internal/engine"
	"github.com/lthms/reel/internal/feedback"
	"github.com/lthms/reel/internal/summary"
	"github.com/lthms/reel/internal/video"
)

// App holds everything a recommendation run needs. Close releases the
// store and the search cache.
type App struct {
	Config  *Config
	Store   feedback.Store
	Session *engine.Session

	cache *badger.DB
}

// openSource returns the configured search backend, wrapped in the BadgerDB
// cache when a cache directory is set.
func openSource(cfg *Config) (video.Source, *badger.DB, error) {
	var src video.Source
	switch cfg.Search.Backend {
	case "youtube":
		src = video.NewYouTube(video.YouTubeConfig{
			APIKey:            cfg.YouTube.APIKey,
			RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
		})
	case "catalog":
		src = &video.Catalog{Path: cfg.Search.Catalog}
	default:
		src = &video.YTDLP{}
	}

	if cfg.Cache.Dir == "" {
		return src, nil, nil
	}
	db, err := video.OpenCache(cfg.Cache.Dir)
	if err != nil {
		return nil, nil, err
	}
	return &video.Cached{Source: src, DB: db, TTL: cfg.Cache.TTL.Duration}, db, nil
}

// newSummarizer returns the configured summarizer. Model backends always
// fall back to the local heuristic.
func newSummarizer(cfg *Config) summary.Summarizer {
	local := summary.Local{MaxLen: cfg.Summary.MaxLength}
	var subs summary.TranscriptFetcher
	if cfg.Summary.Transcript {
		subs = &summary.Subtitles{}
	}
	if cfg.Summary.Backend == "local" {
		if subs == nil {
			return local
		}
		return summary.Fallback{
			Primary:   summary.Transcribed{Fetcher: subs, MaxLen: cfg.Summary.MaxLength},
			Secondary: local,
		}
	}

	model := cfg.Summary.Model
	if cfg.Summary.Backend == "claude" && !strings.HasPrefix(model, "claude:") {
		model = "claude:" + model
	}
	llm := &summary.LLM{
		Model:       summary.ParseModel(model, cfg.Summary.URL),
		Transcripts: subs,
		MaxLen:      cfg.Summary.MaxLength,
	}
	if cfg.Summary.FetchPage {
		llm.Pages = summary.NewReadability(10 * time.Second)
	}
	return summary.Fallback{Primary: llm, Secondary: local}
}

// newApp collects candidates, loads the feedback history and creates the
// session. Candidates are collected first so an unavailable source fails
// before anything touches the feedback log.
func newApp(ctx context.Context, cfg *Config) (*App, error) {
	src, cache, err := openSource(cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, cache: cache}

	coll, err := video.Collect(ctx, src, cfg.query())
	if err != nil {
		app.Close()
		return nil, err
	}
	candidates := coll.Candidates()
	slog.Info("collected candidates", "source", src.Name(), "count", len(candidates), "failed_keywords", len(coll.Failed()))

	store, err := feedback.Open(cfg.Feedback.Path)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("open feedback store: %w", err)
	}
	app.Store = store

	history, err := store.Load()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	slog.Debug("loaded feedback history", "path", cfg.Feedback.Path, "records", history.Len())

	app.Session = engine.NewSession(engine.Config{
		Candidates:  candidates,
		History:     history,
		Store:       store,
		Summarizer:  newSummarizer(cfg),
		LegacyCodes: cfg.Feedback.LegacyCodes,
	})
	return app, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
