package feedback

import (
	"testing"
	"time"

	"github.com/lthms/reel/internal/video"
)

func rec(kw, link string, r Rating) Record {
	return Record{Keyword: kw, Link: link, Title: link, Channel: "c", Duration: 100, Rating: r}
}

func TestHistoryKeepsFirstSeenOrderWithLatestValue(t *testing.T) {
	h := NewHistory()
	h.Put(rec("x", "u1", Definitely))
	h.Put(rec("x", "u2", Maybe))
	h.Put(rec("x", "u1", Never))

	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
	got := h.Records()
	if got[0].Link != "u1" || got[1].Link != "u2" {
		t.Fatalf("order = %s,%s, want u1,u2", got[0].Link, got[1].Link)
	}
	if got[0].Rating != Never {
		t.Errorf("re-rated link should carry the latest rating, got %s", got[0].Rating)
	}
	if !h.Has("u2") || h.Has("u3") {
		t.Error("Has reports wrong membership")
	}
}

func TestParseRating(t *testing.T) {
	for in, want := range map[string]Rating{
		"never":        Never,
		" Maybe ":      Maybe,
		"DEFINITELY\n": Definitely,
	} {
		got, err := ParseRating(in)
		if err != nil {
			t.Fatalf("ParseRating(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseRating(%q) = %s, want %s", in, got, want)
		}
	}
	for _, bad := range []string{"", "y", "yes", "quit"} {
		if _, err := ParseRating(bad); err == nil {
			t.Errorf("ParseRating(%q) should fail", bad)
		}
	}
}

func TestParseStoredRatingAcceptsLegacyCodes(t *testing.T) {
	for in, want := range map[string]Rating{"n": Never, "m": Maybe, "y": Definitely, "maybe": Maybe} {
		got, err := parseStoredRating(in)
		if err != nil || got != want {
			t.Errorf("parseStoredRating(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
}

func TestNewRecordCopiesCandidate(t *testing.T) {
	now := time.Now()
	up := time.Date(2025, 1, 2, 0, 0, 0, 0, time.Local)
	c := video.Candidate{Keyword: "go", Title: "T", Link: "L", Channel: "C", Duration: 61, UploadDate: up, Language: "en"}

	r := NewRecord(c, Maybe, "sum", now)
	if r.Keyword != "go" || r.Title != "T" || r.Link != "L" || r.Channel != "C" || r.Duration != 61 ||
		r.Rating != Maybe || r.Summary != "sum" || !r.UploadDate.Equal(up) || r.Language != "en" || !r.Timestamp.Equal(now) {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestOpenChoosesBackendByExtension(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir + "/feedback.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*CSVStore); !ok {
		t.Errorf("expected CSVStore, got %T", s)
	}
	s.Close()

	s, err = Open(dir + "/feedback.db")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("expected SQLiteStore, got %T", s)
	}
	s.Close()
}

// sameRecord compares records field by field, using time equality rather
// than representation equality.
func sameRecord(a, b Record) bool {
	return a.Timestamp.Equal(b.Timestamp) &&
		a.Keyword == b.Keyword &&
		a.Title == b.Title &&
		a.Link == b.Link &&
		a.Channel == b.Channel &&
		a.Duration == b.Duration &&
		a.Rating == b.Rating &&
		a.Summary == b.Summary &&
		a.UploadDate.Equal(b.UploadDate) &&
		a.Language == b.Language
}
