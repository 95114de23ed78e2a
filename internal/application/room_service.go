package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/edutrack/internal/persistence"
)

// RoomService exposes the room catalog.
type RoomService struct {
	rooms  persistence.RoomRepository
	logger *zap.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms persistence.RoomRepository) *RoomService {
	return NewRoomServiceWithLogger(rooms, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms persistence.RoomRepository, logger *zap.Logger) *RoomService {
	return &RoomService{rooms: rooms, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, fields ...zap.Field) *zap.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, fields...)
}

// ListRooms returns the catalog in provisioning order.
func (s *RoomService) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return rooms, nil
}

// EnsureCatalog provisions DefaultCatalog when the store holds no rooms. It
// reports whether rooms were written.
func (s *RoomService) EnsureCatalog(ctx context.Context) (seeded bool, err error) {
	if s == nil || s.rooms == nil {
		return false, fmt.Errorf("room repository not configured")
	}

	logger := s.loggerWith(ctx, "EnsureCatalog")
	defer func() {
		logOutcome(logger, err, "failed to provision room catalog", "room catalog checked", zap.Bool("seeded", seeded))
	}()

	existing, err := s.rooms.ListRooms(ctx)
	if err != nil {
		err = mapStoreError(err)
		return
	}
	if len(existing) > 0 {
		return
	}
	if err = s.rooms.PutRooms(ctx, DefaultCatalog()); err != nil {
		err = mapStoreError(err)
		return
	}
	seeded = true
	return
}

// DefaultCatalog is the reference room set: fifteen classrooms, five labs,
// and the seminar hall.
func DefaultCatalog() []persistence.Room {
	rooms := make([]persistence.Room, 0, 21)
	for i := 1; i <= 15; i++ {
		rooms = append(rooms, persistence.Room{
			ID:       fmt.Sprintf("c%d", i),
			Name:     fmt.Sprintf("Classroom %d", i),
			Type:     persistence.RoomTypeClassroom,
			Capacity: 60,
			Features: []string{"Projector", "Whiteboard"},
		})
	}
	for i := 1; i <= 5; i++ {
		rooms = append(rooms, persistence.Room{
			ID:       fmt.Sprintf("l%d", i),
			Name:     fmt.Sprintf("Lab %d", i),
			Type:     persistence.RoomTypeLab,
			Capacity: 60,
			Features: []string{"Computers", "AC", "Safety Gear"},
		})
	}
	rooms = append(rooms, persistence.Room{
		ID:       "s1",
		Name:     "Main Seminar Hall",
		Type:     persistence.RoomTypeSeminarHall,
		Capacity: 150,
		Features: []string{"Audio System", "Stage", "Projector"},
	})
	return rooms
}

func nowOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
