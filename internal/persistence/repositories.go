package persistence

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_store.go github.com/example/edutrack/internal/persistence Store

// RoomRepository reads and provisions the room catalog.
type RoomRepository interface {
	ListRooms(ctx context.Context) ([]Room, error)
	PutRooms(ctx context.Context, rooms []Room) error
}

// SessionRepository stores the whole session collection. PutSessions replaces
// the collection atomically: either every record is written or none is.
type SessionRepository interface {
	ListSessions(ctx context.Context) ([]Session, error)
	PutSessions(ctx context.Context, sessions []Session) error
}

// AlertRepository stores the whole alert collection, newest first.
type AlertRepository interface {
	ListAlerts(ctx context.Context) ([]Alert, error)
	PutAlerts(ctx context.Context, alerts []Alert) error
}

// Store is the persistence collaborator. Every List call returns a fresh copy
// that callers may mutate freely; the store never hands out aliases into its
// internal state.
type Store interface {
	RoomRepository
	SessionRepository
	AlertRepository
	Close() error
}
