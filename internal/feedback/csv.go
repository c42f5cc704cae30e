package feedback

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lthms/reel/internal/video"
)

// Columns is the header of the CSV feedback log.
var Columns = []string{
	"timestamp", "keyword", "title", "link", "channel",
	"duration", "feedback", "summary", "upload_date", "language",
}

// timestampLayouts are tried in order; earlier versions wrote naive ISO
// timestamps without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// CSVStore keeps feedback in an append-only CSV file with a header row.
type CSVStore struct {
	path string
}

// OpenCSV returns a store for the CSV file at path. The file is created on
// the first Append.
func OpenCSV(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file path.
func (s *CSVStore) Path() string { return s.path }

// Close implements Store. Every append opens and closes the file.
func (s *CSVStore) Close() error { return nil }

// Load implements Store.
func (s *CSVStore) Load() (*History, error) {
	h := NewHistory()
	err := s.Each(func(r Record) error {
		h.Put(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Each implements Store. Rows are visited in file order.
func (s *CSVStore) Each(fn func(Record) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open feedback log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read feedback header: %w", err)
	}
	index := headerIndex(header)

	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				slog.Debug("skipping unreadable feedback row", "path", s.path, "line", line, "error", err)
				continue
			}
			return fmt.Errorf("read feedback log: %w", err)
		}

		rec, err := decodeRow(index, row)
		if err != nil {
			slog.Debug("skipping malformed feedback row", "path", s.path, "line", line, "error", err)
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// headerIndex maps column names to positions. A header that is a prefix of
// Columns, as written by older versions, is extended to the full layout so
// rows appended since then keep their trailing fields.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(Columns))
	prefix := len(header) <= len(Columns)
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
		if prefix && name != Columns[i] {
			prefix = false
		}
	}
	if prefix {
		for i := len(header); i < len(Columns); i++ {
			index[Columns[i]] = i
		}
	}
	return index
}

func decodeRow(index map[string]int, row []string) (Record, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rec := Record{
		Keyword:  field("keyword"),
		Title:    field("title"),
		Link:     field("link"),
		Channel:  field("channel"),
		Summary:  field("summary"),
		Language: field("language"),
	}
	if rec.Link == "" {
		return Record{}, fmt.Errorf("missing link")
	}
	if rec.Keyword == "" {
		return Record{}, fmt.Errorf("missing keyword")
	}

	rating, err := parseStoredRating(field("feedback"))
	if err != nil {
		return Record{}, err
	}
	rec.Rating = rating

	// Optional fields degrade to their zero value.
	if d := field("duration"); d != "" {
		if f, err := strconv.ParseFloat(d, 64); err == nil {
			rec.Duration = int(f)
		}
	}
	rec.Timestamp = parseTimestamp(field("timestamp"))
	rec.UploadDate, _ = video.ParseDate(field("upload_date"))
	return rec, nil
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

func encodeRow(r Record) []string {
	ts := ""
	if !r.Timestamp.IsZero() {
		ts = r.Timestamp.Format(time.RFC3339Nano)
	}
	return []string{
		ts,
		r.Keyword,
		r.Title,
		r.Link,
		r.Channel,
		strconv.Itoa(r.Duration),
		string(r.Rating),
		r.Summary,
		video.FormatDate(r.UploadDate),
		r.Language,
	}
}

// Append implements Store. The row, preceded by the header when the file is
// new or empty, goes out in a single write followed by fsync. A log whose
// last line lacks its newline, as left by a hand edit, gets one first.
func (s *CSVStore) Append(r Record) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open feedback log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat feedback log: %w", err)
	}

	var buf bytes.Buffer
	if size := info.Size(); size > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, size-1); err != nil {
			return fmt.Errorf("read feedback log: %w", err)
		}
		if last[0] != '\n' {
			buf.WriteByte('\n')
		}
	}
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		w.Write(Columns)
	}
	w.Write(encodeRow(r))
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode feedback row: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write feedback row: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync feedback log: %w", err)
	}
	return nil
}
