// Package occupancy derives a room's live status from the weekly timetable.
package occupancy

import (
	"time"

	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/timewindow"
)

// Status is the coarse state of a room at an instant.
type Status string

const (
	StatusEmpty    Status = "EMPTY"
	StatusUpcoming Status = "UPCOMING"
	StatusActive   Status = "ACTIVE"
)

// Indicator is the display state shown on the occupancy board. It refines
// StatusActive by whether the teacher has checked in.
type Indicator string

const (
	IndicatorEmpty           Indicator = "empty"
	IndicatorUpcoming        Indicator = "upcoming"
	IndicatorAwaitingCheckIn Indicator = "awaiting_check_in"
	IndicatorOccupied        Indicator = "occupied"
)

// UpcomingWindow is how far ahead, in minutes, a session start makes a room
// UPCOMING. The bound is inclusive.
const UpcomingWindow = 15

// RoomStatus is the resolved state of one room.
type RoomStatus struct {
	RoomID    string               `json:"roomId"`
	Status    Status               `json:"status"`
	Indicator Indicator            `json:"indicator"`
	Session   *persistence.Session `json:"session,omitempty"`

	// Confirmed is only meaningful when Status is StatusActive.
	Confirmed bool `json:"confirmed"`
}

// Resolve computes the status of roomID at now. Sessions are evaluated in
// slice order and the first match wins, so an ACTIVE session always shadows
// an UPCOMING one regardless of position. Sessions with unparseable times are
// ignored.
func Resolve(roomID string, sessions []persistence.Session, now time.Time) RoomStatus {
	day := timewindow.DayName(now)
	minute := timewindow.MinuteOf(now)

	var upcoming *persistence.Session
	for i := range sessions {
		s := &sessions[i]
		if s.RoomID != roomID || s.Day != day {
			continue
		}
		window, err := timewindow.ParseWindow(s.StartTime, s.EndTime)
		if err != nil {
			continue
		}
		if window.Contains(minute) {
			return active(roomID, *s)
		}
		if upcoming == nil {
			if lead := int(window.Start - minute); lead > 0 && lead <= UpcomingWindow {
				upcoming = s
			}
		}
	}

	if upcoming != nil {
		matched := *upcoming
		return RoomStatus{RoomID: roomID, Status: StatusUpcoming, Indicator: IndicatorUpcoming, Session: &matched}
	}
	return RoomStatus{RoomID: roomID, Status: StatusEmpty, Indicator: IndicatorEmpty}
}

func active(roomID string, s persistence.Session) RoomStatus {
	status := RoomStatus{
		RoomID:    roomID,
		Status:    StatusActive,
		Indicator: IndicatorAwaitingCheckIn,
		Session:   &s,
		Confirmed: s.CheckedIn,
	}
	if s.CheckedIn {
		status.Indicator = IndicatorOccupied
	}
	return status
}

// ResolveBoard resolves every room in catalog order.
func ResolveBoard(rooms []persistence.Room, sessions []persistence.Session, now time.Time) []RoomStatus {
	board := make([]RoomStatus, 0, len(rooms))
	for _, room := range rooms {
		board = append(board, Resolve(room.ID, sessions, now))
	}
	return board
}
