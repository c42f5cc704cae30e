// Package video describes recommendable videos and the upstream sources
// they are discovered from.
package video

import (
	"strings"
	"time"
)

// DateLayout is the compact upload date format used by yt-dlp and by the
// feedback log.
const DateLayout = "20060102"

// Candidate is a video eligible for recommendation. Link is the natural key.
type Candidate struct {
	Keyword     string    `json:"keyword" yaml:"keyword"`
	Title       string    `json:"title" yaml:"title"`
	Link        string    `json:"link" yaml:"link"`
	ID          string    `json:"id,omitempty" yaml:"id"`
	Channel     string    `json:"channel" yaml:"channel"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Duration    int       `json:"duration" yaml:"duration"` // seconds
	UploadDate  time.Time `json:"upload_date,omitzero" yaml:"-"`
	Language    string    `json:"language,omitempty" yaml:"language"`
}

// ParseDate parses an upload date in either YYYYMMDD or YYYY-MM-DD form.
// An empty string yields the zero time and no error.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if len(s) == len(DateLayout) {
		return time.ParseInLocation(DateLayout, s, time.Local)
	}
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}

// FormatDate renders an upload date as YYYYMMDD, or "" when unknown.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// WatchURL returns the canonical YouTube link for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// primaryLanguage returns the primary subtag of a BCP 47 tag ("en-US" → "en").
func primaryLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}
