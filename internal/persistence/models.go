package persistence

// RoomType classifies a room in the catalog.
type RoomType string

const (
	RoomTypeClassroom   RoomType = "CLASSROOM"
	RoomTypeLab         RoomType = "LAB"
	RoomTypeSeminarHall RoomType = "SEMINAR_HALL"
)

// Room is immutable reference data created at provisioning time.
type Room struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     RoomType `json:"type"`
	Capacity int      `json:"capacity"`
	Features []string `json:"features"`
}

// Session is one weekly occupation of a room by a teacher.
//
// CheckedIn, CheckInTime, StudentCount, QRCodeGenerated and DurationHours are
// the only fields the core mutates. Day is an English weekday name and the
// times are "HH:MM" on a 24h clock.
type Session struct {
	ID              string `json:"id"`
	Day             string `json:"day"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Subject         string `json:"subject"`
	RoomID          string `json:"roomId"`
	TeacherID       string `json:"teacherId"`
	TeacherName     string `json:"teacherName"`
	CheckedIn       bool   `json:"checkedIn"`
	CheckInTime     string `json:"checkInTime,omitempty"`
	StudentCount    int    `json:"studentCount,omitempty"`
	DurationHours   int    `json:"durationHours,omitempty"`
	QRCodeGenerated bool   `json:"qrCodeGenerated,omitempty"`
}

// Severity grades an alert.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Alert is a persisted notification for a single recipient. Timestamp is in
// epoch milliseconds.
type Alert struct {
	ID          string   `json:"id"`
	Message     string   `json:"message"`
	Severity    Severity `json:"type"`
	Timestamp   int64    `json:"timestamp"`
	Read        bool     `json:"read"`
	RecipientID string   `json:"recipientId"`
}

// CloneRoom returns a deep copy of room.
func CloneRoom(room Room) Room {
	if room.Features != nil {
		room.Features = append([]string(nil), room.Features...)
	}
	return room
}

// CloneRooms deep copies a room list.
func CloneRooms(rooms []Room) []Room {
	if rooms == nil {
		return nil
	}
	out := make([]Room, len(rooms))
	for i, room := range rooms {
		out[i] = CloneRoom(room)
	}
	return out
}

// CloneSessions copies a session list. Sessions hold no reference fields, so
// a shallow element copy is a full copy.
func CloneSessions(sessions []Session) []Session {
	if sessions == nil {
		return nil
	}
	out := make([]Session, len(sessions))
	copy(out, sessions)
	return out
}

// CloneAlerts copies an alert list.
func CloneAlerts(alerts []Alert) []Alert {
	if alerts == nil {
		return nil
	}
	out := make([]Alert, len(alerts))
	copy(out, alerts)
	return out
}

// FindSession returns the index of the session with id, or -1.
func FindSession(sessions []Session, id string) int {
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}
