// Package sqlite implements the persistence collaborator on top of the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/edutrack/internal/persistence"
)

// Store persists rooms, sessions, and alerts in SQLite. Each Put replaces a
// whole collection inside one transaction, so a failed write leaves the
// previous collection untouched.
type Store struct {
	pool   *ConnectionPool
	mapper ErrorMapper
}

// Open opens the database described by config and applies the schema.
func Open(ctx context.Context, config Config) (*Store, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	store := &Store{pool: pool}
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying connections.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- RoomRepository implementation ---

// ListRooms returns the catalog in provisioning order.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := s.pool.DB().QueryContext(ctx,
		`SELECT id, name, type, capacity, features FROM rooms ORDER BY position`)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.Room, 0)
	for rows.Next() {
		var (
			room     persistence.Room
			features string
		)
		if err := rows.Scan(&room.ID, &room.Name, &room.Type, &room.Capacity, &features); err != nil {
			return nil, s.mapper.MapError(err)
		}
		if err := json.Unmarshal([]byte(features), &room.Features); err != nil {
			return nil, fmt.Errorf("sqlite: room %s has malformed features: %w", room.ID, err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return rooms, nil
}

// PutRooms replaces the catalog.
func (s *Store) PutRooms(ctx context.Context, rooms []persistence.Room) error {
	return s.replace(ctx, "rooms", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO rooms (id, position, name, type, capacity, features) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, room := range rooms {
			features := room.Features
			if features == nil {
				features = []string{}
			}
			encoded, err := json.Marshal(features)
			if err != nil {
				return fmt.Errorf("sqlite: encode features for room %s: %w", room.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, room.ID, i, room.Name, string(room.Type), room.Capacity, string(encoded)); err != nil {
				return err
			}
		}
		return nil
	})
}

// --- SessionRepository implementation ---

// ListSessions returns every session in the order it was written.
func (s *Store) ListSessions(ctx context.Context) ([]persistence.Session, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `
		SELECT id, day, start_time, end_time, subject, room_id, teacher_id, teacher_name,
		       checked_in, check_in_time, student_count, duration_hours, qr_code_generated
		FROM sessions
		ORDER BY position`)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	sessions := make([]persistence.Session, 0)
	for rows.Next() {
		var session persistence.Session
		if err := rows.Scan(
			&session.ID,
			&session.Day,
			&session.StartTime,
			&session.EndTime,
			&session.Subject,
			&session.RoomID,
			&session.TeacherID,
			&session.TeacherName,
			&session.CheckedIn,
			&session.CheckInTime,
			&session.StudentCount,
			&session.DurationHours,
			&session.QRCodeGenerated,
		); err != nil {
			return nil, s.mapper.MapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return sessions, nil
}

// PutSessions replaces the session collection.
func (s *Store) PutSessions(ctx context.Context, sessions []persistence.Session) error {
	return s.replace(ctx, "sessions", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO sessions (
				id, position, day, start_time, end_time, subject, room_id, teacher_id, teacher_name,
				checked_in, check_in_time, student_count, duration_hours, qr_code_generated
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, session := range sessions {
			if _, err := stmt.ExecContext(ctx,
				session.ID,
				i,
				session.Day,
				session.StartTime,
				session.EndTime,
				session.Subject,
				session.RoomID,
				session.TeacherID,
				session.TeacherName,
				session.CheckedIn,
				session.CheckInTime,
				session.StudentCount,
				session.DurationHours,
				session.QRCodeGenerated,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// --- AlertRepository implementation ---

// ListAlerts returns alerts in the order they were written (newest first).
func (s *Store) ListAlerts(ctx context.Context) ([]persistence.Alert, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `
		SELECT id, message, severity, created_ms, is_read, recipient_id
		FROM alerts
		ORDER BY position`)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	alerts := make([]persistence.Alert, 0)
	for rows.Next() {
		var alert persistence.Alert
		if err := rows.Scan(&alert.ID, &alert.Message, &alert.Severity, &alert.Timestamp, &alert.Read, &alert.RecipientID); err != nil {
			return nil, s.mapper.MapError(err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return alerts, nil
}

// PutAlerts replaces the alert collection.
func (s *Store) PutAlerts(ctx context.Context, alerts []persistence.Alert) error {
	return s.replace(ctx, "alerts", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO alerts (position, id, message, severity, created_ms, is_read, recipient_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, alert := range alerts {
			if _, err := stmt.ExecContext(ctx, i, alert.ID, alert.Message, string(alert.Severity), alert.Timestamp, alert.Read, alert.RecipientID); err != nil {
				return err
			}
		}
		return nil
	})
}

// replace clears table and runs insert in the same transaction.
func (s *Store) replace(ctx context.Context, table string, insert TransactionFunc) error {
	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
		return insert(tx)
	})
	if err != nil {
		return fmt.Errorf("sqlite: replace %s: %w", table, s.mapper.MapError(err))
	}
	return nil
}
