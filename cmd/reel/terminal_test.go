package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lthms/reel/internal/engine"
	"github.com/lthms/reel/internal/feedback"
	"github.com/lthms/reel/internal/video"
)

func TestTerminalPresent(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(strings.NewReader(""), &out, 0)

	err := term.Present(engine.Pick{
		Candidate: video.Candidate{
			Title:      "MERN Stack Course",
			Channel:    "Dev Channel",
			Duration:   3600,
			UploadDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local),
			Language:   "en",
			Link:       "https://www.youtube.com/watch?v=abc",
		},
		Summary: "Build a full app.",
	})
	if err != nil {
		t.Fatalf("Present: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Title: MERN Stack Course\n",
		"Channel: Dev Channel\n",
		"Duration: 3600s\n",
		"Uploaded: 20250115\n",
		"Language: en\n",
		"Link: https://www.youtube.com/watch?v=abc\n",
		"Summary: Build a full app.\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestTerminalPresentUnknownFields(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(strings.NewReader(""), &out, 0)

	if err := term.Present(engine.Pick{Candidate: video.Candidate{Title: "t", Link: "l"}}); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if strings.Contains(got, "Uploaded:") {
		t.Errorf("unknown upload date should be omitted:\n%s", got)
	}
	if !strings.Contains(got, "Language: unknown\n") {
		t.Errorf("missing language should read unknown:\n%s", got)
	}
}

func TestTerminalReadAnswer(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(strings.NewReader("maybe\n"), &out, 0)

	line, err := term.ReadAnswer(context.Background())
	if err != nil || line != "maybe" {
		t.Fatalf("ReadAnswer = %q, %v", line, err)
	}
	if out.String() != prompt {
		t.Fatalf("prompt = %q", out.String())
	}

	for range 2 {
		if _, err := term.ReadAnswer(context.Background()); !errors.Is(err, io.EOF) {
			t.Fatalf("expected io.EOF at end of input, got %v", err)
		}
	}
}

func TestTerminalReadAnswerCancelled(t *testing.T) {
	in, w := io.Pipe()
	defer w.Close()
	term := newTerminal(in, io.Discard, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := term.ReadAnswer(ctx)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("ReadAnswer = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ReadAnswer kept waiting for input after cancellation")
	}
}

func TestTerminalSessionCancelledAtPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.csv")
	s := engine.NewSession(engine.Config{
		Candidates: []video.Candidate{{Keyword: "go", Title: "Go tour", Link: "https://example.com/go", Duration: 300}},
		Store:      feedback.OpenCSV(path),
	})

	in, w := io.Pipe()
	defer w.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := engine.Run(ctx, s, newTerminal(in, io.Discard, 0)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.State() != engine.Terminated {
		t.Fatal("cancellation at the prompt should end the session")
	}
	if feedback.Exists(path) {
		t.Fatal("nothing was rated, the log must not be created")
	}
}

func TestWrap(t *testing.T) {
	got := wrap("one two three four five six", 14, 4)
	want := "one two\nthree four\nfive six"
	if got != want {
		t.Fatalf("wrap = %q, want %q", got, want)
	}

	if got := wrap("no wrapping here", 0, 9); got != "no wrapping here" {
		t.Fatalf("width 0 should not wrap, got %q", got)
	}
	if got := wrap("supercalifragilistic", 5, 0); got != "supercalifragilistic" {
		t.Fatalf("a long word stays whole, got %q", got)
	}
}

func TestTerminalSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.csv")
	store := feedback.OpenCSV(path)
	s := engine.NewSession(engine.Config{
		Candidates: []video.Candidate{{Keyword: "go", Title: "Go tour", Link: "https://example.com/go", Duration: 300}},
		Store:      store,
	})

	var out bytes.Buffer
	term := newTerminal(strings.NewReader("sure\nmaybe\n"), &out, 0)
	if err := engine.Run(context.Background(), s, term); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Title: Go tour",
		"Invalid input. Try again.",
		"Feedback saved (maybe).",
		"No more new videos to recommend.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	h, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	r, ok := h.Get("https://example.com/go")
	if !ok || r.Rating != feedback.Maybe {
		t.Fatalf("stored record = %+v, %v", r, ok)
	}
}
