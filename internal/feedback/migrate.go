package feedback

import (
	"database/sql"
	"fmt"
)

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS feedback_records (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		created_at  TEXT NOT NULL,
		keyword     TEXT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		link        TEXT NOT NULL,
		channel     TEXT NOT NULL DEFAULT '',
		duration    INTEGER NOT NULL DEFAULT 0,
		feedback    TEXT NOT NULL,
		summary     TEXT NOT NULL DEFAULT '',
		upload_date TEXT NOT NULL DEFAULT '',
		language    TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		return fmt.Errorf("create feedback_records table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS feedback_records_link ON feedback_records(link)`)
	if err != nil {
		return fmt.Errorf("create link index: %w", err)
	}

	return nil
}
