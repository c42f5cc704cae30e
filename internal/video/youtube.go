package video

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// DefaultYouTubeURL is the YouTube Data API v3 base URL.
const DefaultYouTubeURL = "https://www.googleapis.com/youtube/v3"

// YouTubeConfig configures the YouTube Data API source.
type YouTubeConfig struct {
	APIKey            string
	BaseURL           string  // defaults to DefaultYouTubeURL
	RequestsPerSecond float64 // 0 means 5
	Client            *http.Client
}

// YouTube searches through the YouTube Data API. Requests are rate limited
// and guarded by a circuit breaker so a failing API is not hammered once
// per keyword.
type YouTube struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewYouTube creates a YouTube Data API source.
func NewYouTube(cfg YouTubeConfig) *YouTube {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultYouTubeURL
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &YouTube{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(base, "/"),
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "youtube-api",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

// Name implements Source.
func (y *YouTube) Name() string { return "youtube" }

// Available implements Source.
func (y *YouTube) Available(ctx context.Context) error {
	if y.apiKey == "" {
		return fmt.Errorf("%w: youtube api-key is not configured", ErrSourceUnavailable)
	}
	return nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title                string    `json:"title"`
			Description          string    `json:"description"`
			ChannelTitle         string    `json:"channelTitle"`
			PublishedAt          time.Time `json:"publishedAt"`
			DefaultAudioLanguage string    `json:"defaultAudioLanguage"`
			DefaultLanguage      string    `json:"defaultLanguage"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// Search implements Source.
func (y *YouTube) Search(ctx context.Context, keyword string, limit int) ([]Candidate, error) {
	params := url.Values{}
	params.Set("part", "id")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("q", keyword)

	var sr searchResponse
	if err := y.get(ctx, "search", params, &sr); err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	ids := make([]string, 0, len(sr.Items))
	for _, it := range sr.Items {
		if it.ID.VideoID != "" {
			ids = append(ids, it.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	params = url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var vr videosResponse
	if err := y.get(ctx, "videos", params, &vr); err != nil {
		return nil, fmt.Errorf("video details: %w", err)
	}

	candidates := make([]Candidate, 0, len(vr.Items))
	for _, it := range vr.Items {
		dur, err := parseISODuration(it.ContentDetails.Duration)
		if err != nil {
			slog.Debug("skipping video with unparsable duration", "id", it.ID, "duration", it.ContentDetails.Duration)
			continue
		}
		lang := it.Snippet.DefaultAudioLanguage
		if lang == "" {
			lang = it.Snippet.DefaultLanguage
		}
		c := Candidate{
			Keyword:     keyword,
			Title:       it.Snippet.Title,
			Link:        WatchURL(it.ID),
			ID:          it.ID,
			Channel:     it.Snippet.ChannelTitle,
			Description: it.Snippet.Description,
			Duration:    dur,
			Language:    lang,
		}
		if !it.Snippet.PublishedAt.IsZero() {
			c.UploadDate = it.Snippet.PublishedAt.Local()
		}
		if c.Title == "" {
			c.Title = "No Title"
		}
		if c.Channel == "" {
			c.Channel = "Unknown"
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (y *YouTube) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}
	params.Set("key", y.apiKey)
	u := y.baseURL + "/" + endpoint + "?" + params.Encode()

	body, err := y.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		resp, err := y.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("youtube api returned %d: %s", resp.StatusCode, string(data))
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse %s response: %w", endpoint, err)
	}
	return nil
}

// parseISODuration converts an ISO 8601 duration such as "PT1H2M3S" or
// "P1DT2H" into whole seconds.
func parseISODuration(s string) (int, error) {
	rest, ok := strings.CutPrefix(s, "P")
	if !ok {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	total := 0
	inTime := false
	num := ""
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'T':
			inTime = true
		default:
			if num == "" {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			n, _ := strconv.Atoi(num)
			num = ""
			switch {
			case r == 'W':
				total += n * 7 * 86400
			case r == 'D':
				total += n * 86400
			case r == 'H' && inTime:
				total += n * 3600
			case r == 'M' && inTime:
				total += n * 60
			case r == 'S' && inTime:
				total += n
			default:
				return 0, fmt.Errorf("invalid duration %q", s)
			}
		}
	}
	if num != "" {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return total, nil
}
