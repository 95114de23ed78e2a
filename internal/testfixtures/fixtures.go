package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/edutrack/internal/persistence"
)

var (
	roomCounter    uint64
	sessionCounter uint64
)

// referenceTime is a Monday morning, the start of the canned c1 session.
var referenceTime = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// At returns the reference Monday at the given "HH:MM", shifted by dayOffset
// days (1 is Tuesday, -1 is Sunday).
func At(dayOffset int, clock string) time.Time {
	var hour, minute int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil {
		panic(fmt.Sprintf("testfixtures: bad clock %q", clock))
	}
	day := referenceTime.AddDate(0, 0, dayOffset)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// ----------------------------- Room fixtures -----------------------------

// RoomOption configures the generated room fixture.
type RoomOption func(*persistence.Room)

// NewRoom returns a deterministic classroom with optional overrides.
func NewRoom(opts ...RoomOption) persistence.Room {
	idx := atomic.AddUint64(&roomCounter, 1)
	room := persistence.Room{
		ID:       fmt.Sprintf("room-%03d", idx),
		Name:     fmt.Sprintf("Room %03d", idx),
		Type:     persistence.RoomTypeClassroom,
		Capacity: 60,
		Features: []string{"Projector", "Whiteboard"},
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(r *persistence.Room) {
		r.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(r *persistence.Room) {
		r.Name = name
	}
}

// WithRoomType overrides the room type.
func WithRoomType(kind persistence.RoomType) RoomOption {
	return func(r *persistence.Room) {
		r.Type = kind
	}
}

// ---------------------------- Session fixtures ----------------------------

// SessionOption configures the generated session fixture.
type SessionOption func(*persistence.Session)

// NewSession returns a Monday 09:00-10:00 session in c1 taught by u2 unless
// overridden.
func NewSession(opts ...SessionOption) persistence.Session {
	idx := atomic.AddUint64(&sessionCounter, 1)
	session := persistence.Session{
		ID:            fmt.Sprintf("session-%03d", idx),
		Day:           "Monday",
		StartTime:     "09:00",
		EndTime:       "10:00",
		Subject:       "Intro to CS",
		RoomID:        "c1",
		TeacherID:     "u2",
		TeacherName:   "Prof. Smith",
		DurationHours: 1,
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(s *persistence.Session) {
		s.ID = id
	}
}

// WithSessionRoom overrides the room reference.
func WithSessionRoom(roomID string) SessionOption {
	return func(s *persistence.Session) {
		s.RoomID = roomID
	}
}

// WithSessionDay overrides the weekday name.
func WithSessionDay(day string) SessionOption {
	return func(s *persistence.Session) {
		s.Day = day
	}
}

// WithSessionWindow overrides the start and end times.
func WithSessionWindow(start, end string) SessionOption {
	return func(s *persistence.Session) {
		s.StartTime = start
		s.EndTime = end
	}
}

// WithSessionTeacher overrides the teacher reference and display name.
func WithSessionTeacher(id, name string) SessionOption {
	return func(s *persistence.Session) {
		s.TeacherID = id
		s.TeacherName = name
	}
}

// WithSessionCheckedIn marks the session confirmed with a headcount.
func WithSessionCheckedIn(studentCount int) SessionOption {
	return func(s *persistence.Session) {
		s.QRCodeGenerated = true
		s.CheckedIn = true
		s.CheckInTime = "09:04:00"
		s.StudentCount = studentCount
	}
}

// WithSessionQRActive marks the session as having an issued QR code.
func WithSessionQRActive() SessionOption {
	return func(s *persistence.Session) {
		s.QRCodeGenerated = true
	}
}

// ------------------------------ Alert fixtures ------------------------------

// NewAlert returns an unread alert for recipient created at the given time.
func NewAlert(id, recipientID, message string, createdAt time.Time) persistence.Alert {
	return persistence.Alert{
		ID:          id,
		Message:     message,
		Severity:    persistence.SeverityCritical,
		Timestamp:   createdAt.UnixMilli(),
		RecipientID: recipientID,
	}
}
