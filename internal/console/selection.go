// Package console holds teacher-facing state that sits between an action and
// the next timetable refresh.
package console

import (
	"sync"

	"github.com/example/edutrack/internal/persistence"
)

// Selection tracks the session a teacher is working on together with a
// locally applied version of it. The local version is shown until a snapshot
// no longer matches the selection, so a just-activated QR code is visible
// before the store round trip completes.
type Selection struct {
	mu       sync.Mutex
	id       string
	override *persistence.Session
}

// Select makes s the active selection and its value the override.
func (sel *Selection) Select(s persistence.Session) {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	sel.id = s.ID
	sel.override = &s
}

// SelectedID returns the active session id, or "" when nothing is selected.
func (sel *Selection) SelectedID() string {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	return sel.id
}

// Current returns the session to present. The override wins while its id
// matches the selection; otherwise the selected session is looked up in
// snapshot. ok is false when nothing is selected or the session is gone.
func (sel *Selection) Current(snapshot []persistence.Session) (persistence.Session, bool) {
	sel.mu.Lock()
	defer sel.mu.Unlock()

	if sel.id == "" {
		return persistence.Session{}, false
	}
	if sel.override != nil && sel.override.ID == sel.id {
		return *sel.override, true
	}
	if idx := persistence.FindSession(snapshot, sel.id); idx >= 0 {
		return snapshot[idx], true
	}
	return persistence.Session{}, false
}

// Reconcile brings the selection in line with a refreshed snapshot. The
// override is dropped once the stored record carries the same lifecycle
// flags, or once it was rewritten in any other field. A selected session
// missing from the snapshot was deleted and clears the selection.
func (sel *Selection) Reconcile(snapshot []persistence.Session) {
	sel.mu.Lock()
	defer sel.mu.Unlock()

	if sel.id == "" {
		return
	}
	idx := persistence.FindSession(snapshot, sel.id)
	if idx < 0 {
		sel.id = ""
		sel.override = nil
		return
	}
	if sel.override == nil {
		return
	}
	stored := snapshot[idx]
	if sameLifecycle(stored, *sel.override) || !sameBooking(stored, *sel.override) {
		sel.override = nil
	}
}

// Forget clears the selection when it points at id.
func (sel *Selection) Forget(id string) {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	if sel.id == id {
		sel.id = ""
		sel.override = nil
	}
}

func sameLifecycle(a, b persistence.Session) bool {
	return a.QRCodeGenerated == b.QRCodeGenerated && a.CheckedIn == b.CheckedIn
}

// sameBooking compares the fields an administrator edit can change.
func sameBooking(a, b persistence.Session) bool {
	return a.Day == b.Day &&
		a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime &&
		a.RoomID == b.RoomID &&
		a.Subject == b.Subject &&
		a.TeacherID == b.TeacherID
}

// Clear drops the selection and any override.
func (sel *Selection) Clear() {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	sel.id = ""
	sel.override = nil
}
