package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lthms/reel/internal/feedback"
	"github.com/lthms/reel/internal/summary"
	"github.com/lthms/reel/internal/video"
)

var (
	// ErrExhausted reports that no unrated, positively weighted candidate
	// remains.
	ErrExhausted = errors.New("no more videos to recommend")
	// ErrNothingPresented reports a rating attempt before any pick.
	ErrNothingPresented = errors.New("no video has been presented")
	// ErrTerminated reports use of a session after it ended.
	ErrTerminated = errors.New("session terminated")
)

// State is the session lifecycle state.
type State int

const (
	Active State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "active"
}

// Summarizer produces the short text shown next to a pick.
type Summarizer interface {
	Summarize(ctx context.Context, c video.Candidate) (string, error)
}

// Pick is a presented candidate together with its summary.
type Pick struct {
	Candidate video.Candidate
	Summary   string
	Weight    int
}

// Config wires a Session.
type Config struct {
	Candidates  []video.Candidate
	History     *feedback.History
	Store       feedback.Store
	Summarizer  Summarizer
	Selector    *Selector
	LegacyCodes bool
	Now         func() time.Time
}

// Session owns the history and candidate pool for one recommendation run.
// It is not safe for concurrent use.
type Session struct {
	candidates []video.Candidate
	history    *feedback.History
	store      feedback.Store
	summarizer Summarizer
	selector   *Selector
	legacy     bool
	now        func() time.Time

	state   State
	current *Pick
}

// NewSession creates an active session. History must be loaded from Store.
func NewSession(cfg Config) *Session {
	sel := cfg.Selector
	if sel == nil {
		sel = &Selector{}
	}
	h := cfg.History
	if h == nil {
		h = feedback.NewHistory()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		candidates: cfg.Candidates,
		history:    h,
		store:      cfg.Store,
		summarizer: cfg.Summarizer,
		selector:   sel,
		legacy:     cfg.LegacyCodes,
		now:        now,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// History returns the in-memory history, including this session's ratings.
func (s *Session) History() *feedback.History { return s.history }

// Current returns the pick awaiting a rating, if any.
func (s *Session) Current() (Pick, bool) {
	if s.current == nil {
		return Pick{}, false
	}
	return *s.current, true
}

// Remaining returns how many candidates are still eligible.
func (s *Session) Remaining() int {
	return len(s.selector.Eligible(s.candidates, s.history))
}

// Next draws the next candidate and makes it the presented pick. It returns
// ErrExhausted, and terminates the session, when nothing is eligible.
func (s *Session) Next(ctx context.Context) (Pick, error) {
	if s.state == Terminated {
		return Pick{}, ErrTerminated
	}

	c, ok := s.selector.Select(s.candidates, s.history)
	if !ok {
		s.state = Terminated
		s.current = nil
		return Pick{}, ErrExhausted
	}

	p := Pick{
		Candidate: c,
		Summary:   s.summarize(ctx, c),
		Weight:    Weight(c, s.history, s.selector.now()),
	}
	s.current = &p
	slog.Debug("picked video", "link", c.Link, "keyword", c.Keyword, "weight", p.Weight)
	return p, nil
}

// summarize never fails: without a working collaborator the candidate's
// own description or title is shortened locally.
func (s *Session) summarize(ctx context.Context, c video.Candidate) string {
	if s.summarizer != nil {
		sum, err := s.summarizer.Summarize(ctx, c)
		if err == nil && sum != "" {
			return sum
		}
		slog.Debug("summary unavailable, using local fallback", "link", c.Link, "error", err)
	}
	return summary.Describe(c, summary.DefaultMaxLen)
}

// Rate applies one line of user input to the presented pick. Unrecognized
// input returns an error wrapping ErrInvalidInput and changes nothing, so
// the caller can prompt again. "quit" terminates the session without a
// write and returns ErrQuit. A rating is appended to the store before the
// in-memory history changes; if the append fails the pick stays presented.
func (s *Session) Rate(input string) (feedback.Rating, error) {
	if s.state == Terminated {
		return "", ErrTerminated
	}
	if s.current == nil {
		return "", ErrNothingPresented
	}

	rating, err := ParseInput(input, s.legacy)
	if errors.Is(err, ErrQuit) {
		s.state = Terminated
		return "", ErrQuit
	}
	if err != nil {
		return "", err
	}

	rec := feedback.NewRecord(s.current.Candidate, rating, s.current.Summary, s.now())
	if err := s.store.Append(rec); err != nil {
		return "", fmt.Errorf("save feedback: %w", err)
	}
	s.history.Put(rec)
	s.current = nil
	slog.Debug("feedback saved", "link", rec.Link, "keyword", rec.Keyword, "rating", rating)
	return rating, nil
}

// Quit terminates the session.
func (s *Session) Quit() {
	s.state = Terminated
	s.current = nil
}
