package feedback

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lthms/reel/internal/video"
	_ "modernc.org/sqlite"
)

// SQLiteStore provides persistent feedback storage backed by SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the feedback database at the given path.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open feedback db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate feedback db: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load implements Store.
func (s *SQLiteStore) Load() (*History, error) {
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

// Each implements Store. Rows come back in insertion order.
func (s *SQLiteStore) Each(fn func(Record) error) error {
	rows, err := s.db.Query(
		`SELECT seq, created_at, keyword, title, link, channel, duration, feedback, summary, upload_date, language
		 FROM feedback_records
		 ORDER BY seq`,
	)
	if err != nil {
		return fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec                    Record
			seq                    int64
			duration               any
			createdAt, rating, upl string
		)
		if err := rows.Scan(&seq, &createdAt, &rec.Keyword, &rec.Title, &rec.Link, &rec.Channel,
			&duration, &rating, &rec.Summary, &upl, &rec.Language); err != nil {
			slog.Debug("skipping unreadable feedback record", "path", s.path, "seq", seq, "error", err)
			continue
		}
		if rec.Link == "" || rec.Keyword == "" {
			slog.Debug("skipping malformed feedback record", "path", s.path, "seq", seq, "link", rec.Link)
			continue
		}
		if rec.Rating, err = parseStoredRating(rating); err != nil {
			slog.Debug("skipping malformed feedback record", "path", s.path, "seq", seq, "error", err)
			continue
		}
		rec.Duration = durationValue(duration)
		rec.Timestamp = parseTimestamp(createdAt)
		rec.UploadDate, _ = video.ParseDate(upl)
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read feedback: %w", err)
	}
	return nil
}

// durationValue reads the duration column, which a hand-edited database may
// hold as text. Anything unparsable is 0.
func durationValue(v any) int {
	switch d := v.(type) {
	case int64:
		return int(d)
	case float64:
		return int(d)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(d), 64)
		return int(f)
	case []byte:
		f, _ := strconv.ParseFloat(strings.TrimSpace(string(d)), 64)
		return int(f)
	}
	return 0
}

// Append implements Store.
func (s *SQLiteStore) Append(r Record) error {
	ts := ""
	if !r.Timestamp.IsZero() {
		ts = r.Timestamp.Format(time.RFC3339Nano)
	}
	_, err := s.db.Exec(
		`INSERT INTO feedback_records
		 (id, created_at, keyword, title, link, channel, duration, feedback, summary, upload_date, language)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), ts, r.Keyword, r.Title, r.Link, r.Channel, r.Duration,
		string(r.Rating), r.Summary, video.FormatDate(r.UploadDate), r.Language,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// Exists reports whether a store file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
