package application

import (
	"github.com/example/edutrack/internal/lifecycle"
	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/scheduler"
)

// Teacher identifies the acting teacher.
type Teacher struct {
	ID   string
	Name string
}

// BookAdHocParams carries an ad-hoc booking request.
type BookAdHocParams struct {
	Teacher       Teacher
	RoomID        string
	Date          string
	StartTime     string
	DurationHours int
	Subject       string
}

// ActivatedSession is a session with an issued QR code and its payload.
type ActivatedSession struct {
	Session persistence.Session `json:"session"`
	QR      lifecycle.QRPayload `json:"qr"`

	// QRText is the encoded payload rendered into the QR image.
	QRText string `json:"qrText"`
}

// TodaySession is an entry of a teacher's day view.
type TodaySession struct {
	persistence.Session
	State lifecycle.State `json:"state"`
}

// SessionInput is an administrator supplied session record.
type SessionInput struct {
	Day         string `json:"day" validate:"required,weekday"`
	StartTime   string `json:"startTime" validate:"required,clock"`
	EndTime     string `json:"endTime" validate:"required,clock"`
	Subject     string `json:"subject" validate:"notblank"`
	RoomID      string `json:"roomId" validate:"notblank"`
	TeacherID   string `json:"teacherId" validate:"notblank"`
	TeacherName string `json:"teacherName"`
}

// ConflictWarning is a non-blocking overlap reported alongside an admin
// write, such as a teacher booked in two rooms at once.
type ConflictWarning struct {
	SessionID     string                 `json:"sessionId"`
	WithSessionID string                 `json:"withSessionId"`
	Type          scheduler.ConflictType `json:"type"`
	TeacherID     string                 `json:"teacherId,omitempty"`
	RoomID        string                 `json:"roomId,omitempty"`
}
