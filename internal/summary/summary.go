// Package summary shortens video transcripts and descriptions into the
// one-paragraph blurb shown at the rating prompt.
package summary

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/lthms/reel/internal/video"
)

// DefaultMaxLen bounds summaries, not counting the truncation marker.
const DefaultMaxLen = 220

const (
	maxSentences = 4
	ellipsis     = "..."
)

// ErrUnavailable reports that a summarizer could not produce anything.
var ErrUnavailable = errors.New("summary unavailable")

// Summarizer produces a short description of a candidate.
type Summarizer interface {
	Summarize(ctx context.Context, c video.Candidate) (string, error)
}

// Text keeps the first four sentences of s and cuts the result to maxLen
// runes, appending "..." when anything was cut.
func Text(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	sentences := strings.Split(strings.ReplaceAll(s, "\n", " "), ". ")
	if len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}
	out := strings.Join(sentences, ". ")
	if utf8.RuneCountInString(out) <= maxLen {
		return out
	}
	return string([]rune(out)[:maxLen]) + ellipsis
}

// Describe summarizes the candidate's description, or its title when the
// description is empty.
func Describe(c video.Candidate, maxLen int) string {
	src := c.Description
	if strings.TrimSpace(src) == "" {
		src = c.Title
	}
	return Text(src, maxLen)
}

// Local summarizes from the candidate's own fields. It never fails.
type Local struct {
	MaxLen int
}

// Summarize implements Summarizer.
func (l Local) Summarize(ctx context.Context, c video.Candidate) (string, error) {
	return Describe(c, l.MaxLen), nil
}

// Fallback tries Primary and falls back to Secondary on any error or empty
// result.
type Fallback struct {
	Primary   Summarizer
	Secondary Summarizer
}

// Summarize implements Summarizer.
func (f Fallback) Summarize(ctx context.Context, c video.Candidate) (string, error) {
	if f.Primary != nil {
		s, err := f.Primary.Summarize(ctx, c)
		if err == nil && strings.TrimSpace(s) != "" {
			return s, nil
		}
		slog.Debug("primary summarizer failed, falling back", "link", c.Link, "error", err)
	}
	if f.Secondary == nil {
		return "", ErrUnavailable
	}
	return f.Secondary.Summarize(ctx, c)
}
