package summary

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/lthms/reel/internal/video"
)

// ErrNoTranscript reports a video without subtitles in the wanted languages.
var ErrNoTranscript = errors.New("no transcript")

// TranscriptFetcher returns the spoken text of a video.
type TranscriptFetcher interface {
	Transcript(ctx context.Context, link string) (string, error)
}

// Subtitles downloads manual or automatic subtitles with yt-dlp and flattens
// them to plain text.
type Subtitles struct {
	Binary    string // defaults to "yt-dlp"
	Run       video.Runner
	Languages string // yt-dlp --sub-langs selector, defaults to "en.*"
}

// Transcript implements TranscriptFetcher.
func (s *Subtitles) Transcript(ctx context.Context, link string) (string, error) {
	dir, err := os.MkdirTemp("", "reel-subs-")
	if err != nil {
		return "", fmt.Errorf("subtitle dir: %w", err)
	}
	defer os.RemoveAll(dir)

	bin := s.Binary
	if bin == "" {
		bin = "yt-dlp"
	}
	langs := s.Languages
	if langs == "" {
		langs = "en.*"
	}
	run := s.Run
	if run == nil {
		run = video.Exec
	}

	_, err = run(ctx, bin,
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", langs,
		"--sub-format", "vtt",
		"--no-warnings",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		link,
	)
	if err != nil {
		return "", fmt.Errorf("fetch subtitles for %s: %w", link, err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "*.vtt"))
	if len(files) == 0 {
		return "", fmt.Errorf("%w for %s", ErrNoTranscript, link)
	}
	// Several tracks may match the selector; take the first by name.
	sort.Strings(files)
	data, err := os.ReadFile(files[0])
	if err != nil {
		return "", fmt.Errorf("read subtitles: %w", err)
	}

	text := vttText(data)
	if text == "" {
		return "", fmt.Errorf("%w for %s", ErrNoTranscript, link)
	}
	return text, nil
}

var vttTag = regexp.MustCompile(`<[^>]*>`)

// vttText keeps the cue payloads of a WebVTT file. Automatic captions repeat
// each line as the next one scrolls in, so consecutive duplicates collapse.
func vttText(data []byte) string {
	var (
		words []string
		last  string
		skip  bool
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			skip = false
			continue
		case skip:
			continue
		case strings.HasPrefix(line, "WEBVTT"), strings.HasPrefix(line, "NOTE"),
			strings.HasPrefix(line, "STYLE"), strings.HasPrefix(line, "REGION"):
			skip = true
			continue
		case strings.Contains(line, "-->"):
			continue
		}
		line = strings.TrimSpace(vttTag.ReplaceAllString(line, ""))
		if line == "" || line == last || isCueID(line) {
			continue
		}
		last = line
		words = append(words, line)
	}
	return strings.Join(words, " ")
}

func isCueID(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Transcribed summarizes a video from the opening of its transcript.
type Transcribed struct {
	Fetcher TranscriptFetcher
	MaxLen  int
}

// Summarize implements Summarizer.
func (t Transcribed) Summarize(ctx context.Context, c video.Candidate) (string, error) {
	text, err := t.Fetcher.Transcript(ctx, c.Link)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return Text(text, t.MaxLen), nil
}
