// Package redis stores each collection as one JSON document in Redis, which
// lets several edutrack processes share the same timetable.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/example/edutrack/internal/persistence"
)

const (
	roomsKey    = "rooms"
	sessionsKey = "sessions"
	alertsKey   = "alerts"
)

// Config holds configuration for the Redis store.
type Config struct {
	// Client is the connected Redis client. The store closes it on Close.
	Client *redis.Client
	// Prefix namespaces every key, for example "edutrack:".
	Prefix string
}

// Store implements persistence.Store on top of Redis.
type Store struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed store and checks the connection.
func NewRedis(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("redis: config cannot be nil")
	}
	if cfg.Client == nil {
		return nil, errors.New("redis: client cannot be nil")
	}
	if err := cfg.Client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: failed to connect: %w", err)
	}
	return &Store{client: cfg.Client, prefix: cfg.Prefix}, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ListRooms returns the catalog in provisioning order.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rooms := make([]persistence.Room, 0)
	if err := s.load(ctx, roomsKey, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// PutRooms replaces the catalog.
func (s *Store) PutRooms(ctx context.Context, rooms []persistence.Room) error {
	if err := ensureUnique(len(rooms), func(i int) string { return rooms[i].ID }); err != nil {
		return err
	}
	return s.save(ctx, roomsKey, nonNil(rooms))
}

// ListSessions returns every session in insertion order.
func (s *Store) ListSessions(ctx context.Context) ([]persistence.Session, error) {
	sessions := make([]persistence.Session, 0)
	if err := s.load(ctx, sessionsKey, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// PutSessions replaces the session collection.
func (s *Store) PutSessions(ctx context.Context, sessions []persistence.Session) error {
	if err := ensureUnique(len(sessions), func(i int) string { return sessions[i].ID }); err != nil {
		return err
	}
	return s.save(ctx, sessionsKey, nonNil(sessions))
}

// ListAlerts returns every alert in the order written.
func (s *Store) ListAlerts(ctx context.Context) ([]persistence.Alert, error) {
	alerts := make([]persistence.Alert, 0)
	if err := s.load(ctx, alertsKey, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// PutAlerts replaces the alert collection.
func (s *Store) PutAlerts(ctx context.Context, alerts []persistence.Alert) error {
	return s.save(ctx, alertsKey, nonNil(alerts))
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// load decodes the document at name into out. A missing key leaves out as is.
func (s *Store) load(ctx context.Context, name string, out any) error {
	raw, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis: failed to get %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("redis: failed to unmarshal %s: %w", name, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal %s: %w", name, err)
	}
	if err := s.client.Set(ctx, s.key(name), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis: failed to save %s: %w", name, err)
	}
	return nil
}

func ensureUnique(n int, id func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		key := id(i)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("redis: duplicate id %q: %w", key, persistence.ErrConflict)
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
