package video

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestYouTubeSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" {
			t.Errorf("missing api key")
		}
		switch r.URL.Path {
		case "/search":
			if r.URL.Query().Get("q") != "go" {
				t.Errorf("q = %q", r.URL.Query().Get("q"))
			}
			w.Write([]byte(`{"items":[{"id":{"videoId":"v1"}},{"id":{"videoId":"v2"}}]}`))
		case "/videos":
			if r.URL.Query().Get("id") != "v1,v2" {
				t.Errorf("id = %q", r.URL.Query().Get("id"))
			}
			w.Write([]byte(`{"items":[
				{"id":"v1","snippet":{"title":"Go","channelTitle":"Gopher","publishedAt":"2025-03-01T10:00:00Z","defaultAudioLanguage":"en"},"contentDetails":{"duration":"PT1H2M3S"}},
				{"id":"v2","snippet":{"title":"Bad"},"contentDetails":{"duration":"garbage"}}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	y := NewYouTube(YouTubeConfig{APIKey: "k", BaseURL: srv.URL, RequestsPerSecond: 1000})
	got, err := y.Search(context.Background(), "go", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	c := got[0]
	if c.Duration != 3723 {
		t.Errorf("duration = %d, want 3723", c.Duration)
	}
	if c.Link != WatchURL("v1") || c.Channel != "Gopher" || c.Language != "en" || c.Keyword != "go" {
		t.Errorf("unexpected candidate: %+v", c)
	}
	if c.UploadDate.IsZero() {
		t.Error("upload date should be set")
	}
}

func TestYouTubeSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusForbidden)
	}))
	defer srv.Close()

	y := NewYouTube(YouTubeConfig{APIKey: "k", BaseURL: srv.URL, RequestsPerSecond: 1000})
	if _, err := y.Search(context.Background(), "go", 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestYouTubeBreakerOpensAfterFailures(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	y := NewYouTube(YouTubeConfig{APIKey: "k", BaseURL: srv.URL, RequestsPerSecond: 1000})
	for range 5 {
		y.Search(context.Background(), "go", 1)
	}
	if hits != 3 {
		t.Fatalf("expected breaker to stop requests after 3 failures, got %d hits", hits)
	}
}

func TestYouTubeAvailableRequiresKey(t *testing.T) {
	y := NewYouTube(YouTubeConfig{})
	if err := y.Available(context.Background()); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestParseISODuration(t *testing.T) {
	cases := map[string]int{
		"PT45S":    45,
		"PT10M":    600,
		"PT1H2M3S": 3723,
		"P1DT1S":   86401,
		"P0D":      0,
		"PT1H":     3600,
	}
	for in, want := range cases {
		got, err := parseISODuration(in)
		if err != nil {
			t.Errorf("parseISODuration(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parseISODuration(%q) = %d, want %d", in, got, want)
		}
	}

	for _, bad := range []string{"", "1H", "PT1X", "PT5"} {
		if _, err := parseISODuration(bad); err == nil {
			t.Errorf("parseISODuration(%q) should fail", bad)
		}
	}
}
