package summary

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/lthms/reel/internal/video"
)

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	ollamaTimeout = 2 * time.Minute
	claudeTimeout = time.Minute

	// maxSummaryTokens caps generation; a two-sentence blurb never needs more.
	maxSummaryTokens = 160
)

// OllamaModel generates through a local Ollama server's /api/generate.
type OllamaModel struct {
	URL    string
	Model  string
	Client *http.Client
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generate implements Generator.
func (o *OllamaModel) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:   o.Model,
		Prompt:  prompt,
		Options: ollamaOptions{NumPredict: maxSummaryTokens, Temperature: 0.2},
	})
	if err != nil {
		return "", fmt.Errorf("encode ollama request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, ollamaTimeout)
	defer cancel()

	endpoint := strings.TrimRight(o.URL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama %s: %w", o.Model, err)
	}
	defer resp.Body.Close()

	var out ollamaResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("ollama %s: status %d: %s", o.Model, resp.StatusCode, msg)
	}
	return strings.TrimSpace(out.Response), nil
}

// ClaudeModel generates with the Claude CLI in print mode.
type ClaudeModel struct {
	Model  string // e.g. "haiku", "sonnet"
	Binary string // defaults to "claude"
	Run    video.Runner
}

// Generate implements Generator.
func (c *ClaudeModel) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, claudeTimeout)
	defer cancel()

	bin := c.Binary
	if bin == "" {
		bin = "claude"
	}
	run := c.Run
	if run == nil {
		run = video.Exec
	}
	out, err := run(ctx, bin, "-p", "--model", c.Model, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ParseModel picks the generator for a configured model name: "claude:<model>"
// goes through the Claude CLI, anything else to the Ollama server at ollamaURL.
func ParseModel(model, ollamaURL string) Generator {
	if name, ok := strings.CutPrefix(model, "claude:"); ok {
		return &ClaudeModel{Model: name}
	}
	return &OllamaModel{URL: ollamaURL, Model: model}
}
