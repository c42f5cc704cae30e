// Package feedback persists the user's ratings and rebuilds the rating
// history they imply.
package feedback

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lthms/reel/internal/video"
)

// Rating is the user's stated interest in a presented video.
type Rating string

const (
	Never      Rating = "never"
	Maybe      Rating = "maybe"
	Definitely Rating = "definitely"
)

// ParseRating accepts the full rating words, case-insensitively.
func ParseRating(s string) (Rating, error) {
	switch r := Rating(strings.ToLower(strings.TrimSpace(s))); r {
	case Never, Maybe, Definitely:
		return r, nil
	}
	return "", fmt.Errorf("unknown rating %q", s)
}

// parseStoredRating also accepts the one-letter codes written by older
// versions of the tool.
func parseStoredRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n":
		return Never, nil
	case "m":
		return Maybe, nil
	case "y":
		return Definitely, nil
	}
	return ParseRating(s)
}

// Record is one persisted rating.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	Keyword    string    `json:"keyword"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Channel    string    `json:"channel"`
	Duration   int       `json:"duration"`
	Rating     Rating    `json:"feedback"`
	Summary    string    `json:"summary,omitempty"`
	UploadDate time.Time `json:"upload_date,omitzero"`
	Language   string    `json:"language,omitempty"`
}

// NewRecord builds the record for rating candidate c at time now.
func NewRecord(c video.Candidate, r Rating, summary string, now time.Time) Record {
	return Record{
		Timestamp:  now,
		Keyword:    c.Keyword,
		Title:      c.Title,
		Link:       c.Link,
		Channel:    c.Channel,
		Duration:   c.Duration,
		Rating:     r,
		Summary:    summary,
		UploadDate: c.UploadDate,
		Language:   c.Language,
	}
}

// History maps each rated link to its latest record. Iteration follows the
// order in which links were first rated; a re-rating replaces the value in
// place, so folding over Records is reproducible for identical logs.
type History struct {
	order  []string
	byLink map[string]Record
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{byLink: make(map[string]Record)}
}

// Put records r as the latest known rating for its link.
func (h *History) Put(r Record) {
	if _, ok := h.byLink[r.Link]; !ok {
		h.order = append(h.order, r.Link)
	}
	h.byLink[r.Link] = r
}

// Has reports whether link was ever rated.
func (h *History) Has(link string) bool {
	_, ok := h.byLink[link]
	return ok
}

// Get returns the latest record for link.
func (h *History) Get(link string) (Record, bool) {
	r, ok := h.byLink[link]
	return r, ok
}

// Len returns the number of distinct rated links.
func (h *History) Len() int {
	return len(h.order)
}

// Records returns the latest record of every rated link in first-rated order.
func (h *History) Records() []Record {
	out := make([]Record, 0, len(h.order))
	for _, link := range h.order {
		out = append(out, h.byLink[link])
	}
	return out
}

// Store reads and appends feedback records.
type Store interface {
	// Load reads every persisted record. Missing storage yields an empty
	// history; malformed records are skipped.
	Load() (*History, error)
	// Each visits every persisted record in write order, re-ratings
	// included, skipping malformed ones. An error from fn stops the walk.
	Each(fn func(Record) error) error
	// Append durably writes one record before returning.
	Append(r Record) error
	Close() error
}

// Open opens the store at path, choosing SQLite for .db/.sqlite/.sqlite3
// files and the CSV log otherwise.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	default:
		return OpenCSV(path), nil
	}
}
