package summary

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// PageFetcher extracts readable text from a web page.
type PageFetcher interface {
	PageText(ctx context.Context, url string) (string, error)
}

// Readability fetches a page and keeps its main readable text.
type Readability struct {
	Client   *http.Client
	MaxBytes int // 0 means 4000
}

// NewReadability creates a page fetcher with the given HTTP timeout.
func NewReadability(timeout time.Duration) *Readability {
	return &Readability{Client: &http.Client{Timeout: timeout}}
}

// PageText implements PageFetcher.
func (r *Readability) PageText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %s: %w", url, err)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s returned status %d", url, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, nil)
	if err != nil {
		return "", fmt.Errorf("extracting content from %s: %w", url, err)
	}

	limit := r.MaxBytes
	if limit <= 0 {
		limit = 4000
	}
	content := strings.TrimSpace(article.TextContent)
	if len(content) > limit {
		content = strings.ToValidUTF8(content[:limit], "")
	}
	return content, nil
}
