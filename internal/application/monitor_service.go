package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/edutrack/internal/absence"
	"github.com/example/edutrack/internal/apperror"
	"github.com/example/edutrack/internal/occupancy"
	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/scheduler"
)

// Job names registered with the scheduler.
const (
	RefreshJobName = "refresh"
	SweepJobName   = "absence-sweep"
)

// SelectionReconciler is notified with every refreshed session snapshot.
type SelectionReconciler interface {
	ReconcileSelections(snapshot []persistence.Session)
}

// MonitorOptions configures a MonitorService.
type MonitorOptions struct {
	RecipientID     string
	RefreshInterval time.Duration
	SweepInterval   time.Duration

	// Location is the zone weekday and time of day are evaluated in. Nil
	// keeps the zone of the instant passed in.
	Location *time.Location
}

// MonitorService keeps the latest timetable snapshot, resolves room
// occupancy from it, and sweeps it for absent teachers.
type MonitorService struct {
	rooms      persistence.RoomRepository
	sessions   persistence.SessionRepository
	alerts     *AlertService
	reconciler SelectionReconciler
	opts       MonitorOptions
	now        func() time.Time
	logger     *zap.Logger

	mu       sync.RWMutex
	snapshot monitorSnapshot
}

type monitorSnapshot struct {
	rooms       []persistence.Room
	sessions    []persistence.Session
	refreshedAt time.Time
	loaded      bool
}

// NewMonitorService wires dependencies for the monitor. reconciler may be nil.
func NewMonitorService(rooms persistence.RoomRepository, sessions persistence.SessionRepository, alerts *AlertService, reconciler SelectionReconciler, opts MonitorOptions, now func() time.Time) *MonitorService {
	return NewMonitorServiceWithLogger(rooms, sessions, alerts, reconciler, opts, now, nil)
}

// NewMonitorServiceWithLogger wires dependencies with a specified logger.
func NewMonitorServiceWithLogger(rooms persistence.RoomRepository, sessions persistence.SessionRepository, alerts *AlertService, reconciler SelectionReconciler, opts MonitorOptions, now func() time.Time, logger *zap.Logger) *MonitorService {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 5 * time.Second
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	return &MonitorService{
		rooms:      rooms,
		sessions:   sessions,
		alerts:     alerts,
		reconciler: reconciler,
		opts:       opts,
		now:        nowOrDefault(now),
		logger:     defaultLogger(logger),
	}
}

func (s *MonitorService) loggerWith(ctx context.Context, operation string, fields ...zap.Field) *zap.Logger {
	return serviceLogger(ctx, s.logger, "MonitorService", operation, fields...)
}

// Refresh reloads rooms and sessions. On failure the previous snapshot is
// kept and the error returned.
func (s *MonitorService) Refresh(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("MonitorService is nil")
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("refresh rooms: %w", mapStoreError(err))
	}
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("refresh sessions: %w", mapStoreError(err))
	}

	s.mu.Lock()
	s.snapshot = monitorSnapshot{rooms: rooms, sessions: sessions, refreshedAt: s.now(), loaded: true}
	s.mu.Unlock()

	if s.reconciler != nil {
		s.reconciler.ReconcileSelections(persistence.CloneSessions(sessions))
	}
	return nil
}

// Sweep raises alerts for sessions whose teacher has not checked in by
// GraceMinutes after the start. It returns the alerts that were stored.
func (s *MonitorService) Sweep(ctx context.Context, at time.Time) (added []persistence.Alert, err error) {
	if s == nil {
		return nil, fmt.Errorf("MonitorService is nil")
	}
	at = s.local(at)

	logger := s.loggerWith(ctx, "Sweep", zap.Time("at", at))
	defer func() {
		if err != nil || len(added) > 0 {
			logOutcome(logger, err, "absence sweep failed", "absence alerts raised", zap.Int("added", len(added)))
		}
	}()

	snapshot, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	intents := absence.Sweep(snapshot.sessions, at, s.opts.RecipientID)
	if len(intents) == 0 {
		return nil, nil
	}
	return s.alerts.Raise(ctx, intents, at)
}

// Board resolves every room of the catalog at the current time.
func (s *MonitorService) Board(ctx context.Context) ([]occupancy.RoomStatus, error) {
	if s == nil {
		return nil, fmt.Errorf("MonitorService is nil")
	}
	snapshot, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return occupancy.ResolveBoard(snapshot.rooms, snapshot.sessions, s.local(s.now())), nil
}

// RoomStatus resolves one room at the current time.
func (s *MonitorService) RoomStatus(ctx context.Context, roomID string) (occupancy.RoomStatus, error) {
	if s == nil {
		return occupancy.RoomStatus{}, fmt.Errorf("MonitorService is nil")
	}
	snapshot, err := s.current(ctx)
	if err != nil {
		return occupancy.RoomStatus{}, err
	}
	for _, room := range snapshot.rooms {
		if room.ID == roomID {
			return occupancy.Resolve(roomID, snapshot.sessions, s.local(s.now())), nil
		}
	}
	return occupancy.RoomStatus{}, apperror.NotFound("room", roomID)
}

// RefreshedAt reports when the snapshot was last loaded.
func (s *MonitorService) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.refreshedAt
}

// Jobs returns the refresh and sweep triggers for a scheduler.Runner.
func (s *MonitorService) Jobs() []scheduler.Job {
	return []scheduler.Job{
		{
			Name:     RefreshJobName,
			Interval: s.opts.RefreshInterval,
			Run: func(ctx context.Context, _ time.Time) error {
				return s.Refresh(ctx)
			},
		},
		{
			Name:     SweepJobName,
			Interval: s.opts.SweepInterval,
			Run: func(ctx context.Context, at time.Time) error {
				_, err := s.Sweep(ctx, at)
				return err
			},
		},
	}
}

// current returns the snapshot, loading it first if no refresh has
// succeeded yet.
func (s *MonitorService) current(ctx context.Context) (monitorSnapshot, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()
	if snapshot.loaded {
		return snapshot, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return monitorSnapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, nil
}

func (s *MonitorService) local(t time.Time) time.Time {
	if s.opts.Location == nil {
		return t
	}
	return t.In(s.opts.Location)
}
