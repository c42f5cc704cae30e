package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lthms/reel/internal/video"
)

// maxPromptText bounds how much description and page text reach the model.
const maxPromptText = 4000

// LLM summarizes with a text generation model. The model's answer is still
// bounded by Text.
type LLM struct {
	Model       Generator
	Transcripts TranscriptFetcher // optional; the transcript leads the prompt
	Pages       PageFetcher       // optional extra context from the video page
	MaxLen      int
}

// Summarize implements Summarizer.
func (l *LLM) Summarize(ctx context.Context, c video.Candidate) (string, error) {
	body := c.Description
	if l.Transcripts != nil {
		text, err := l.Transcripts.Transcript(ctx, c.Link)
		if err != nil {
			slog.Debug("transcript unavailable", "link", c.Link, "error", err)
		} else if text != "" {
			body = strings.TrimSpace("Transcript:\n" + text + "\n\n" + body)
		}
	}
	if l.Pages != nil {
		text, err := l.Pages.PageText(ctx, c.Link)
		if err != nil {
			slog.Debug("page text unavailable", "link", c.Link, "error", err)
		} else if text != "" {
			body = strings.TrimSpace(body + "\n\n" + text)
		}
	}
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("%w: nothing to summarize for %s", ErrUnavailable, c.Link)
	}
	if r := []rune(body); len(r) > maxPromptText {
		body = string(r[:maxPromptText])
	}

	prompt := fmt.Sprintf(`Summarize what this video teaches in at most two plain sentences.
Reply with the summary only, no preamble and no markdown.

Title: %s
Channel: %s

Description:
%s`, c.Title, c.Channel, body)

	out, err := l.Model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if out == "" {
		return "", fmt.Errorf("%w: empty model response", ErrUnavailable)
	}
	return Text(out, l.MaxLen), nil
}
