package summary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/lthms/reel/internal/video"
)

// stubGenerator implements Generator for testing.
type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

type stubPages struct {
	text string
	err  error
}

func (s stubPages) PageText(ctx context.Context, url string) (string, error) {
	return s.text, s.err
}

func TestLLMSummarize(t *testing.T) {
	gen := &stubGenerator{response: "Builds a MERN app from scratch."}
	l := &LLM{Model: gen, Pages: stubPages{text: "page body"}}

	got, err := l.Summarize(context.Background(), video.Candidate{Title: "MERN", Description: "desc", Link: "u"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "Builds a MERN app from scratch." {
		t.Fatalf("got %q", got)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "desc") || !strings.Contains(gen.prompts[0], "page body") {
		t.Fatalf("prompt should carry description and page text: %q", gen.prompts)
	}
}

func TestLLMBoundsModelOutput(t *testing.T) {
	gen := &stubGenerator{response: strings.Repeat("word ", 100)}
	l := &LLM{Model: gen, MaxLen: 50}

	got, err := l.Summarize(context.Background(), video.Candidate{Description: "d"})
	if err != nil {
		t.Fatal(err)
	}
	if len([]rune(got)) != 53 {
		t.Fatalf("expected 50 runes plus marker, got %d", len([]rune(got)))
	}
}

func TestLLMErrors(t *testing.T) {
	l := &LLM{Model: &stubGenerator{err: fmt.Errorf("offline")}}
	if _, err := l.Summarize(context.Background(), video.Candidate{Description: "d"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	gen := &stubGenerator{response: "x"}
	l = &LLM{Model: gen, Pages: stubPages{err: fmt.Errorf("404")}}
	if _, err := l.Summarize(context.Background(), video.Candidate{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("nothing to summarize should be ErrUnavailable, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Fatal("model should not be called without text")
	}
}

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "llama3.2" || req["stream"] != false {
			t.Errorf("unexpected request: %v", req)
		}
		if opts, _ := req["options"].(map[string]any); opts["num_predict"] != float64(maxSummaryTokens) {
			t.Errorf("generation should be capped, options = %v", req["options"])
		}
		w.Write([]byte(`{"response":"  a summary \n"}`))
	}))
	defer srv.Close()

	o := &OllamaModel{URL: srv.URL, Model: "llama3.2"}
	got, err := o.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "a summary" {
		t.Fatalf("got %q", got)
	}
}

func TestOllamaGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := &OllamaModel{URL: srv.URL, Model: "missing"}
	if _, err := o.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}
}

func TestOllamaGenerateReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model 'missing' not found"}`))
	}))
	defer srv.Close()

	o := &OllamaModel{URL: srv.URL + "/", Model: "missing"}
	_, err := o.Generate(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "model 'missing' not found") {
		t.Fatalf("Generate = %v, want the server's error message", err)
	}
}

func TestClaudeGenerate(t *testing.T) {
	var args []string
	c := &ClaudeModel{
		Model: "haiku",
		Run: func(ctx context.Context, name string, a ...string) ([]byte, error) {
			if name != "claude" {
				t.Errorf("binary = %s", name)
			}
			args = a
			return []byte("\nA short summary.\n"), nil
		},
	}

	got, err := c.Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "A short summary." {
		t.Fatalf("got %q", got)
	}
	want := []string{"-p", "--model", "haiku", "the prompt"}
	if strings.Join(args, "|") != strings.Join(want, "|") {
		t.Fatalf("args = %q, want %q", args, want)
	}

	c.Run = func(ctx context.Context, name string, a ...string) ([]byte, error) {
		return nil, errors.New("claude: exit status 1")
	}
	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected the CLI failure")
	}
}

func TestParseModel(t *testing.T) {
	if g, ok := ParseModel("claude:haiku", "http://x").(*ClaudeModel); !ok || g.Model != "haiku" {
		t.Fatalf("claude: prefix should select the CLI, got %#v", g)
	}
	if g, ok := ParseModel("llama3.2", "http://x").(*OllamaModel); !ok || g.URL != "http://x" {
		t.Fatalf("expected Ollama model, got %#v", g)
	}
}

func TestReadabilityPageText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Video</title></head><body>
<nav>menu</nav>
<article><h1>Full stack course</h1>
<p>This course walks through building a complete web application with a database, an API and a frontend. Each chapter adds one feature and explains the reasoning behind it in detail.</p>
<p>By the end you will have deployed the application and understood every layer of the stack, from routing to persistence and authentication.</p>
<p>The final chapters cover testing strategies, continuous deployment pipelines, performance profiling and the small operational habits that keep a production web application healthy over the years that follow its launch.</p>
</article></body></html>`))
	}))
	defer srv.Close()

	r := NewReadability(0)
	got, err := r.PageText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("PageText: %v", err)
	}
	if !strings.Contains(got, "complete web application") {
		t.Fatalf("expected article text, got %q", got)
	}
}

func TestReadabilityStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := NewReadability(0).PageText(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error")
	}
}
