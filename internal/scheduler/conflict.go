package scheduler

import (
	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/timewindow"
)

// ConflictType describes the type of conflict detected between sessions.
type ConflictType string

const (
	// ConflictTypeRoom indicates a room is double-booked.
	ConflictTypeRoom ConflictType = "room"
	// ConflictTypeTeacher indicates a teacher is double-booked.
	ConflictTypeTeacher ConflictType = "teacher"
)

// Conflict details an overlapping session relation that callers can present to users.
type Conflict struct {
	WithSessionID string
	Type          ConflictType
	RoomID        string
	TeacherID     string
}

// DetectConflicts identifies conflicts for the candidate session against
// existing ones on the same weekday. The candidate's own id is skipped so an
// update does not conflict with its previous version. Sessions whose times do
// not parse, or whose window is empty or inverted, never conflict.
func DetectConflicts(existing []persistence.Session, candidate persistence.Session) []Conflict {
	window, ok := sessionWindow(candidate)
	if !ok {
		return nil
	}

	var conflicts []Conflict
	for _, other := range existing {
		if other.ID == candidate.ID || other.Day != candidate.Day {
			continue
		}
		otherWindow, ok := sessionWindow(other)
		if !ok || !window.Overlaps(otherWindow) {
			continue
		}
		if other.RoomID == candidate.RoomID {
			conflicts = append(conflicts, Conflict{
				WithSessionID: other.ID,
				Type:          ConflictTypeRoom,
				RoomID:        other.RoomID,
			})
		}
		if candidate.TeacherID != "" && other.TeacherID == candidate.TeacherID {
			conflicts = append(conflicts, Conflict{
				WithSessionID: other.ID,
				Type:          ConflictTypeTeacher,
				TeacherID:     other.TeacherID,
			})
		}
	}
	return conflicts
}

func sessionWindow(s persistence.Session) (timewindow.Window, bool) {
	window, err := timewindow.ParseWindow(s.StartTime, s.EndTime)
	if err != nil || window.Minutes() <= 0 {
		return timewindow.Window{}, false
	}
	return window, true
}
