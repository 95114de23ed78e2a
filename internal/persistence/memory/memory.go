// Package memory provides a process-local persistence collaborator. It is used
// by tests and by deployments that do not need data to survive a restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/edutrack/internal/persistence"
)

// Storage keeps each collection as an ordered slice guarded by one lock.
// Reads return copies and writes store copies, so no caller ever holds an
// alias into the internal state.
type Storage struct {
	mu       sync.RWMutex
	rooms    []persistence.Room
	sessions []persistence.Session
	alerts   []persistence.Alert
}

// Open returns an empty Storage.
func Open() *Storage {
	return &Storage{}
}

// Close releases resources held by the storage. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// ListRooms returns the catalog in provisioning order.
func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nonNil(persistence.CloneRooms(s.rooms)), nil
}

// PutRooms replaces the catalog.
func (s *Storage) PutRooms(ctx context.Context, rooms []persistence.Room) error {
	if err := ensureUnique(len(rooms), func(i int) string { return rooms[i].ID }); err != nil {
		return err
	}
	cloned := persistence.CloneRooms(rooms)
	s.mu.Lock()
	s.rooms = cloned
	s.mu.Unlock()
	return nil
}

// ListSessions returns every session in insertion order.
func (s *Storage) ListSessions(ctx context.Context) ([]persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nonNil(persistence.CloneSessions(s.sessions)), nil
}

// PutSessions replaces the session collection.
func (s *Storage) PutSessions(ctx context.Context, sessions []persistence.Session) error {
	if err := ensureUnique(len(sessions), func(i int) string { return sessions[i].ID }); err != nil {
		return err
	}
	cloned := persistence.CloneSessions(sessions)
	s.mu.Lock()
	s.sessions = cloned
	s.mu.Unlock()
	return nil
}

// ListAlerts returns every alert, newest first as written.
func (s *Storage) ListAlerts(ctx context.Context) ([]persistence.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nonNil(persistence.CloneAlerts(s.alerts)), nil
}

// PutAlerts replaces the alert collection. Alert ids are not unique: the
// absence monitor reuses a session derived id across days.
func (s *Storage) PutAlerts(ctx context.Context, alerts []persistence.Alert) error {
	cloned := persistence.CloneAlerts(alerts)
	s.mu.Lock()
	s.alerts = cloned
	s.mu.Unlock()
	return nil
}

func ensureUnique(n int, id func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		key := id(i)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("memory: duplicate id %q: %w", key, persistence.ErrConflict)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
