// Package lifecycle implements the booking, QR activation, and check-in
// transitions of a single session.
//
//	SCHEDULED --activate--> QR_ACTIVE --confirm--> CONFIRMED
//
// Ad-hoc bookings are created directly in QR_ACTIVE. CONFIRMED is terminal;
// only an administrator edit can move a session back.
package lifecycle

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/example/edutrack/internal/apperror"
	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/timewindow"
)

// State is the lifecycle position of a session.
type State string

const (
	StateScheduled State = "SCHEDULED"
	StateQRActive  State = "QR_ACTIVE"
	StateConfirmed State = "CONFIRMED"
)

// AdHocSubject is the subject recorded on ad-hoc bookings.
const AdHocSubject = "Ad-hoc Class / Lab"

// CheckInTimeLayout formats the human readable check-in timestamp.
const CheckInTimeLayout = "15:04:05"

const dateLayout = "2006-01-02"

// StateOf derives the lifecycle state from the session flags.
func StateOf(s persistence.Session) State {
	switch {
	case s.CheckedIn:
		return StateConfirmed
	case s.QRCodeGenerated:
		return StateQRActive
	default:
		return StateScheduled
	}
}

// Booking is a teacher's request for an unscheduled session. Date is a
// calendar date "YYYY-MM-DD" of which only the weekday is kept.
type Booking struct {
	TeacherID     string
	TeacherName   string
	RoomID        string
	Date          string
	StartTime     string
	DurationHours int
	Subject       string
}

// BookAdHoc builds a QR_ACTIVE session for b under the given id. The end time
// is StartTime plus DurationHours, wrapping past midnight without changing
// the day.
func BookAdHoc(b Booking, id string) (persistence.Session, error) {
	invalid := &apperror.InvalidInputError{}

	if strings.TrimSpace(b.RoomID) == "" {
		invalid.Add("roomId", "is required")
	}
	if strings.TrimSpace(b.TeacherID) == "" {
		invalid.Add("teacherId", "is required")
	}

	var day string
	if strings.TrimSpace(b.Date) == "" {
		invalid.Add("date", "is required")
	} else if date, err := time.Parse(dateLayout, strings.TrimSpace(b.Date)); err != nil {
		invalid.Add("date", "must be YYYY-MM-DD")
	} else {
		day = timewindow.DayName(date)
	}

	var start timewindow.Minute
	if strings.TrimSpace(b.StartTime) == "" {
		invalid.Add("startTime", "is required")
	} else if m, err := timewindow.ParseClock(b.StartTime); err != nil {
		invalid.Add("startTime", "must be HH:MM")
	} else {
		start = m
	}

	if b.DurationHours < 1 || b.DurationHours > 3 {
		invalid.Add("durationHours", "must be 1, 2 or 3")
	}

	if invalid.HasErrors() {
		return persistence.Session{}, invalid
	}

	subject := strings.TrimSpace(b.Subject)
	if subject == "" {
		subject = AdHocSubject
	}

	return persistence.Session{
		ID:              id,
		Day:             day,
		StartTime:       start.String(),
		EndTime:         start.AddHours(b.DurationHours).String(),
		Subject:         subject,
		RoomID:          b.RoomID,
		TeacherID:       b.TeacherID,
		TeacherName:     b.TeacherName,
		DurationHours:   b.DurationHours,
		QRCodeGenerated: true,
	}, nil
}

// ActivateScheduled issues the QR artifact for a scheduled session and sets
// DurationHours to the start/end delta rounded to whole hours, never below
// one. Sessions already past SCHEDULED are returned unchanged.
func ActivateScheduled(s persistence.Session) (persistence.Session, error) {
	if StateOf(s) != StateScheduled {
		return s, nil
	}
	window, err := timewindow.ParseWindow(s.StartTime, s.EndTime)
	if err != nil {
		invalid := &apperror.InvalidInputError{}
		invalid.Add("window", err.Error())
		return s, invalid
	}

	hours := int(math.Round(float64(window.Minutes()) / 60))
	if hours < 1 {
		hours = 1
	}
	s.DurationHours = hours
	s.QRCodeGenerated = true
	return s, nil
}

// ConfirmAttendance records the teacher's check-in with a headcount. A
// session that is already confirmed has its count and time overwritten.
func ConfirmAttendance(s persistence.Session, studentCount int, at time.Time) (persistence.Session, error) {
	invalid := &apperror.ValidationError{}
	if studentCount <= 0 {
		invalid.Add("studentCount", "must be greater than zero")
	}
	if StateOf(s) == StateScheduled {
		invalid.Add("state", "attendance QR has not been issued")
	}
	if invalid.HasErrors() {
		return s, invalid
	}

	s.CheckedIn = true
	s.CheckInTime = at.Format(CheckInTimeLayout)
	s.StudentCount = studentCount
	return s, nil
}

// QRPayload is the content encoded into the attendance QR code.
type QRPayload struct {
	ID      string `json:"id"`
	Room    string `json:"room"`
	Subject string `json:"subj"`
}

// PayloadFor returns the QR content for s.
func PayloadFor(s persistence.Session) QRPayload {
	return QRPayload{ID: s.ID, Room: s.RoomID, Subject: s.Subject}
}

// Encode renders the payload as compact JSON.
func (p QRPayload) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
