package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ErrSourceUnavailable reports that no usable candidate source exists: the
// backend is not installed or configured, or every keyword query failed.
var ErrSourceUnavailable = errors.New("candidate source unavailable")

// Source discovers candidate videos for a search keyword.
type Source interface {
	// Name identifies the backend in logs and cache keys.
	Name() string
	// Available returns an error wrapping ErrSourceUnavailable when the
	// backend cannot be used at all.
	Available(ctx context.Context) error
	// Search returns up to limit candidates for keyword, tagged with it.
	Search(ctx context.Context, keyword string, limit int) ([]Candidate, error)
}

// Query describes one collection pass over a source.
type Query struct {
	Keywords    []string
	Limit       int
	MinDuration int      // seconds; shorter videos are skipped
	Languages   []string // primary subtags; empty accepts every language
}

// KeywordResult is the outcome of a single keyword query.
type KeywordResult struct {
	Keyword    string
	Candidates []Candidate
	Err        error
}

// Collection aggregates per-keyword results.
type Collection struct {
	Results []KeywordResult
}

// Candidates returns every accepted candidate, de-duplicated by link. The
// first keyword that produced a link keeps it.
func (c Collection) Candidates() []Candidate {
	seen := make(map[string]struct{})
	var out []Candidate
	for _, r := range c.Results {
		for _, cand := range r.Candidates {
			if _, ok := seen[cand.Link]; ok {
				continue
			}
			seen[cand.Link] = struct{}{}
			out = append(out, cand)
		}
	}
	return out
}

// Failed returns the keywords whose query failed.
func (c Collection) Failed() []string {
	var out []string
	for _, r := range c.Results {
		if r.Err != nil {
			out = append(out, r.Keyword)
		}
	}
	return out
}

// Collect queries src once per keyword. A failing keyword is logged and
// skipped; collection continues with the others.
func Collect(ctx context.Context, src Source, q Query) (Collection, error) {
	if err := src.Available(ctx); err != nil {
		return Collection{}, err
	}

	var col Collection
	var errs []error
	for _, kw := range q.Keywords {
		if err := ctx.Err(); err != nil {
			return col, err
		}
		found, err := src.Search(ctx, kw, q.Limit)
		if err != nil {
			slog.Warn("error fetching keyword", "source", src.Name(), "keyword", kw, "error", err)
			col.Results = append(col.Results, KeywordResult{Keyword: kw, Err: err})
			errs = append(errs, fmt.Errorf("%s: %w", kw, err))
			continue
		}
		kept := q.filter(found)
		slog.Debug("keyword fetched", "source", src.Name(), "keyword", kw, "found", len(found), "kept", len(kept))
		col.Results = append(col.Results, KeywordResult{Keyword: kw, Candidates: kept})
	}

	if len(q.Keywords) > 0 && len(errs) == len(q.Keywords) {
		return col, fmt.Errorf("%w: every keyword failed: %w", ErrSourceUnavailable, errors.Join(errs...))
	}
	return col, nil
}

func (q Query) filter(in []Candidate) []Candidate {
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		if c.Duration < q.MinDuration {
			continue
		}
		if c.Language != "" && len(q.Languages) > 0 && !slices.Contains(q.Languages, primaryLanguage(c.Language)) {
			continue
		}
		out = append(out, c)
	}
	return out
}
