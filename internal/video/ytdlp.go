package video

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/goccy/go-json"
)

// Runner executes an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Exec is the Runner backed by os/exec. A failing command's stderr is folded
// into the error.
func Exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// YTDLP searches YouTube by shelling out to yt-dlp with flat extraction.
type YTDLP struct {
	Binary string // defaults to "yt-dlp"
	Run    Runner // defaults to exec
	// LookPath resolves Binary; defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

type ytdlpResult struct {
	Entries []ytdlpEntry `json:"entries"`
}

type ytdlpEntry struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Channel     string  `json:"channel"`
	Uploader    string  `json:"uploader"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	UploadDate  string  `json:"upload_date"`
	Language    string  `json:"language"`
}

func (y *YTDLP) binary() string {
	if y.Binary == "" {
		return "yt-dlp"
	}
	return y.Binary
}

// Name implements Source.
func (y *YTDLP) Name() string { return "yt-dlp" }

// Available implements Source.
func (y *YTDLP) Available(ctx context.Context) error {
	lookPath := y.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(y.binary()); err != nil {
		return fmt.Errorf("%w: %s not installed (pip install yt-dlp): %w", ErrSourceUnavailable, y.binary(), err)
	}
	return nil
}

// Search implements Source.
func (y *YTDLP) Search(ctx context.Context, keyword string, limit int) ([]Candidate, error) {
	run := y.Run
	if run == nil {
		run = Exec
	}

	out, err := run(ctx, y.binary(),
		"--flat-playlist",
		"--dump-single-json",
		"--skip-download",
		"--no-warnings",
		fmt.Sprintf("ytsearch%d:%s", limit, keyword),
	)
	if err != nil {
		return nil, err
	}

	var res ytdlpResult
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("decode yt-dlp output: %w", err)
	}

	candidates := make([]Candidate, 0, len(res.Entries))
	for _, e := range res.Entries {
		if e.ID == "" {
			continue
		}
		c := Candidate{
			Keyword:     keyword,
			Title:       e.Title,
			Link:        WatchURL(e.ID),
			ID:          e.ID,
			Channel:     e.Channel,
			Description: e.Description,
			Duration:    int(e.Duration),
			Language:    e.Language,
		}
		if c.Title == "" {
			c.Title = "No Title"
		}
		if c.Channel == "" {
			c.Channel = e.Uploader
		}
		if c.Channel == "" {
			c.Channel = "Unknown"
		}
		// A malformed date only loses the recency bonus.
		c.UploadDate, _ = ParseDate(e.UploadDate)
		candidates = append(candidates, c)
	}
	return candidates, nil
}
