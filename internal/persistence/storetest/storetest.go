// Package storetest holds the behavioural contract every persistence.Store
// implementation must satisfy. Implementations run it from their own tests.
package storetest

import (
	"context"
	"errors"

	"github.com/stretchr/testify/suite"

	"github.com/example/edutrack/internal/persistence"
)

// Suite exercises a Store produced by Open for every test.
type Suite struct {
	suite.Suite

	// Open returns a fresh, empty store.
	Open func() persistence.Store

	store persistence.Store
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.Open, "Open must be set")
	s.store = s.Open()
	s.ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		s.Require().NoError(s.store.Close())
	}
}

func (s *Suite) TestEmptyCollections() {
	rooms, err := s.store.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)

	sessions, err := s.store.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)

	alerts, err := s.store.ListAlerts(s.ctx)
	s.Require().NoError(err)
	s.Empty(alerts)
}

func (s *Suite) TestRoomsRoundTripInOrder() {
	rooms := []persistence.Room{
		{ID: "c2", Name: "Classroom 2", Type: persistence.RoomTypeClassroom, Capacity: 60, Features: []string{"Projector", "Whiteboard"}},
		{ID: "l1", Name: "Lab 1", Type: persistence.RoomTypeLab, Capacity: 60, Features: []string{"Computers"}},
		{ID: "s1", Name: "Main Seminar Hall", Type: persistence.RoomTypeSeminarHall, Capacity: 150, Features: []string{}},
	}
	s.Require().NoError(s.store.PutRooms(s.ctx, rooms))

	got, err := s.store.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal([]string{"c2", "l1", "s1"}, []string{got[0].ID, got[1].ID, got[2].ID})
	s.Equal(rooms[0].Features, got[0].Features)
	s.Equal(persistence.RoomTypeSeminarHall, got[2].Type)
	s.Equal(150, got[2].Capacity)
}

func (s *Suite) TestSessionsReplaceWholeCollection() {
	first := []persistence.Session{
		{ID: "s1", Day: "Monday", StartTime: "09:00", EndTime: "10:00", Subject: "Intro to CS", RoomID: "c1", TeacherID: "u2", TeacherName: "Prof. Smith", DurationHours: 1},
		{ID: "s2", Day: "Tuesday", StartTime: "11:00", EndTime: "13:00", Subject: "Algebra", RoomID: "c2", TeacherID: "u3", TeacherName: "Prof. Johnson"},
	}
	s.Require().NoError(s.store.PutSessions(s.ctx, first))

	confirmed := first[0]
	confirmed.QRCodeGenerated = true
	confirmed.CheckedIn = true
	confirmed.CheckInTime = "09:04:10"
	confirmed.StudentCount = 42
	s.Require().NoError(s.store.PutSessions(s.ctx, []persistence.Session{confirmed}))

	got, err := s.store.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(confirmed, got[0])
}

func (s *Suite) TestSessionsPreserveInsertionOrder() {
	sessions := []persistence.Session{
		{ID: "z", Day: "Monday", StartTime: "09:00", EndTime: "10:00", RoomID: "c1"},
		{ID: "a", Day: "Monday", StartTime: "09:30", EndTime: "10:30", RoomID: "c1"},
		{ID: "m", Day: "Monday", StartTime: "08:00", EndTime: "09:00", RoomID: "c1"},
	}
	s.Require().NoError(s.store.PutSessions(s.ctx, sessions))

	got, err := s.store.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"z", "a", "m"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func (s *Suite) TestDuplicateSessionIDsLeavePreviousState() {
	original := []persistence.Session{{ID: "s1", Day: "Monday", StartTime: "09:00", EndTime: "10:00", RoomID: "c1"}}
	s.Require().NoError(s.store.PutSessions(s.ctx, original))

	err := s.store.PutSessions(s.ctx, []persistence.Session{
		{ID: "dup", Day: "Monday", StartTime: "09:00", EndTime: "10:00", RoomID: "c1"},
		{ID: "dup", Day: "Monday", StartTime: "11:00", EndTime: "12:00", RoomID: "c1"},
	})
	s.Require().Error(err)
	s.True(errors.Is(err, persistence.ErrConflict), "expected ErrConflict, got %v", err)

	got, err := s.store.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Equal(original, got)
}

func (s *Suite) TestListReturnsCopies() {
	s.Require().NoError(s.store.PutRooms(s.ctx, []persistence.Room{{ID: "c1", Name: "Classroom 1", Features: []string{"Projector"}}}))
	s.Require().NoError(s.store.PutSessions(s.ctx, []persistence.Session{{ID: "s1", Day: "Monday", StartTime: "09:00", EndTime: "10:00", RoomID: "c1"}}))

	rooms, err := s.store.ListRooms(s.ctx)
	s.Require().NoError(err)
	rooms[0].Features[0] = "mutated"

	sessions, err := s.store.ListSessions(s.ctx)
	s.Require().NoError(err)
	sessions[0].CheckedIn = true

	rooms, err = s.store.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal("Projector", rooms[0].Features[0])

	sessions, err = s.store.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.False(sessions[0].CheckedIn)
}

func (s *Suite) TestAlertsKeepOrderAndAllowRepeatedIDs() {
	alerts := []persistence.Alert{
		{ID: "absent-s1", Message: "newer", Severity: persistence.SeverityCritical, Timestamp: 2000, RecipientID: "u1"},
		{ID: "absent-s1", Message: "older", Severity: persistence.SeverityCritical, Timestamp: 1000, Read: true, RecipientID: "u1"},
		{ID: "info-1", Message: "note", Severity: persistence.SeverityInfo, Timestamp: 500, RecipientID: "u2"},
	}
	s.Require().NoError(s.store.PutAlerts(s.ctx, alerts))

	got, err := s.store.ListAlerts(s.ctx)
	s.Require().NoError(err)
	s.Equal(alerts, got)
}
