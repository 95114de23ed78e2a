package sqlite

import (
	"context"
	"fmt"
)

// schema is applied idempotently on every start. position keeps the
// collection order the caller wrote, which is the order List returns.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id        TEXT PRIMARY KEY,
		position  INTEGER NOT NULL,
		name      TEXT NOT NULL,
		type      TEXT NOT NULL,
		capacity  INTEGER NOT NULL,
		features  TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id                 TEXT PRIMARY KEY,
		position           INTEGER NOT NULL,
		day                TEXT NOT NULL,
		start_time         TEXT NOT NULL,
		end_time           TEXT NOT NULL,
		subject            TEXT NOT NULL,
		room_id            TEXT NOT NULL,
		teacher_id         TEXT NOT NULL,
		teacher_name       TEXT NOT NULL,
		checked_in         INTEGER NOT NULL DEFAULT 0,
		check_in_time      TEXT NOT NULL DEFAULT '',
		student_count      INTEGER NOT NULL DEFAULT 0,
		duration_hours     INTEGER NOT NULL DEFAULT 0,
		qr_code_generated  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_room_day ON sessions (room_id, day)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		position      INTEGER PRIMARY KEY,
		id            TEXT NOT NULL,
		message       TEXT NOT NULL,
		severity      TEXT NOT NULL,
		created_ms    INTEGER NOT NULL,
		is_read       INTEGER NOT NULL DEFAULT 0,
		recipient_id  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_recipient ON alerts (recipient_id, created_ms)`,
}

// Migrate creates the tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
