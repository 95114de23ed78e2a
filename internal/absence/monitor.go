// Package absence detects teachers who have not checked in to a running
// session and turns those findings into deduplicated alerts.
package absence

import (
	"fmt"
	"time"

	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/timewindow"
)

const (
	// GraceMinutes is how long after the start an absence stays unreported.
	GraceMinutes = 20
	// CeilingMinutes stops reporting a session that was never started.
	CeilingMinutes = 60
)

// AlertIDPrefix prefixes the session id in absence alert ids.
const AlertIDPrefix = "absent-"

// AlertIntent is a candidate alert produced by a sweep. It becomes a
// persisted alert only if the debouncer lets it through.
type AlertIntent struct {
	ID          string
	SessionID   string
	RoomID      string
	Message     string
	Severity    persistence.Severity
	RecipientID string
	CreatedAt   time.Time
}

// Alert converts the intent into its persisted form.
func (i AlertIntent) Alert() persistence.Alert {
	return persistence.Alert{
		ID:          i.ID,
		Message:     i.Message,
		Severity:    i.Severity,
		Timestamp:   i.CreatedAt.UnixMilli(),
		RecipientID: i.RecipientID,
	}
}

// Message renders the absence text for a session.
func Message(s persistence.Session) string {
	return fmt.Sprintf("CRITICAL: Room %s is EMPTY. %s absent > %dmins.", s.RoomID, s.TeacherName, GraceMinutes)
}

// Sweep returns one CRITICAL intent for every session on now's weekday that
// is not checked in and started strictly between GraceMinutes and
// CeilingMinutes ago. The session's own end time is not consulted.
func Sweep(sessions []persistence.Session, now time.Time, recipientID string) []AlertIntent {
	day := timewindow.DayName(now)
	minute := timewindow.MinuteOf(now)

	var intents []AlertIntent
	for _, s := range sessions {
		if s.Day != day || s.CheckedIn {
			continue
		}
		start, err := timewindow.ParseClock(s.StartTime)
		if err != nil {
			continue
		}
		elapsed := int(minute - start)
		if elapsed <= GraceMinutes || elapsed >= CeilingMinutes {
			continue
		}
		intents = append(intents, AlertIntent{
			ID:          AlertIDPrefix + s.ID,
			SessionID:   s.ID,
			RoomID:      s.RoomID,
			Message:     Message(s),
			Severity:    persistence.SeverityCritical,
			RecipientID: recipientID,
			CreatedAt:   now,
		})
	}
	return intents
}
