package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/edutrack/internal/apperror"
	"github.com/example/edutrack/internal/console"
	"github.com/example/edutrack/internal/lifecycle"
	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/report"
	"github.com/example/edutrack/internal/scheduler"
	"github.com/example/edutrack/internal/timewindow"
	"github.com/example/edutrack/internal/validation"
)

// AdHocIDPrefix prefixes the ids of sessions booked on demand.
const AdHocIDPrefix = "adhoc-"

// SessionService runs the session lifecycle and timetable administration
// against the session collection. Every write reads the whole collection,
// changes it, and stores it back under mu; concurrent writers from other
// processes follow last-write-wins.
type SessionService struct {
	mu          sync.Mutex
	rooms       persistence.RoomRepository
	sessions    persistence.SessionRepository
	idGenerator func() string
	now         func() time.Time
	warnings    *warningCache
	logger      *zap.Logger

	selMu      sync.Mutex
	selections map[string]*console.Selection
}

// NewSessionService wires dependencies for session operations. now decides
// the weekday and time of day, so callers pass a clock in the campus zone.
func NewSessionService(rooms persistence.RoomRepository, sessions persistence.SessionRepository, idGenerator func() string, now func() time.Time) *SessionService {
	return NewSessionServiceWithLogger(rooms, sessions, idGenerator, now, nil)
}

// NewSessionServiceWithLogger wires dependencies with a specified logger.
func NewSessionServiceWithLogger(rooms persistence.RoomRepository, sessions persistence.SessionRepository, idGenerator func() string, now func() time.Time, logger *zap.Logger) *SessionService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	now = nowOrDefault(now)
	return &SessionService{
		rooms:       rooms,
		sessions:    sessions,
		idGenerator: idGenerator,
		now:         now,
		warnings:    newWarningCache(30*time.Second, now),
		logger:      defaultLogger(logger),
		selections:  make(map[string]*console.Selection),
	}
}

func (s *SessionService) loggerWith(ctx context.Context, operation string, fields ...zap.Field) *zap.Logger {
	return serviceLogger(ctx, s.logger, "SessionService", operation, fields...)
}

// BookAdHoc creates an unscheduled session that is immediately QR_ACTIVE and
// selects it on the teacher's console.
func (s *SessionService) BookAdHoc(ctx context.Context, params BookAdHocParams) (activated ActivatedSession, err error) {
	if s == nil {
		return ActivatedSession{}, fmt.Errorf("SessionService is nil")
	}

	logger := s.loggerWith(ctx, "BookAdHoc", zap.String("teacher_id", params.Teacher.ID), zap.String("room_id", params.RoomID))
	defer func() {
		logOutcome(logger, err, "failed to book ad-hoc session", "ad-hoc session booked", zap.String("session_id", activated.Session.ID))
	}()

	session, err := lifecycle.BookAdHoc(lifecycle.Booking{
		TeacherID:     params.Teacher.ID,
		TeacherName:   params.Teacher.Name,
		RoomID:        params.RoomID,
		Date:          params.Date,
		StartTime:     params.StartTime,
		DurationHours: params.DurationHours,
		Subject:       params.Subject,
	}, AdHocIDPrefix+s.idGenerator())
	if err != nil {
		return ActivatedSession{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.checkRoom(ctx, session.RoomID); err != nil {
		return ActivatedSession{}, err
	}
	existing, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return ActivatedSession{}, mapStoreError(err)
	}
	if err = s.store(ctx, append(existing, session)); err != nil {
		return ActivatedSession{}, err
	}

	s.selectionFor(session.TeacherID).Select(session)
	return activate(session)
}

// Activate issues the attendance QR code for a scheduled session. A session
// that is already active or confirmed is returned as stored.
func (s *SessionService) Activate(ctx context.Context, sessionID string) (activated ActivatedSession, err error) {
	if s == nil {
		return ActivatedSession{}, fmt.Errorf("SessionService is nil")
	}

	logger := s.loggerWith(ctx, "Activate", zap.String("session_id", sessionID))
	defer func() {
		logOutcome(logger, err, "failed to activate session", "session activated", zap.Int("duration_hours", activated.Session.DurationHours))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, idx, err := s.locate(ctx, sessionID)
	if err != nil {
		return ActivatedSession{}, err
	}

	before := sessions[idx]
	after, err := lifecycle.ActivateScheduled(before)
	if err != nil {
		return ActivatedSession{}, err
	}
	if after != before {
		sessions[idx] = after
		if err = s.store(ctx, sessions); err != nil {
			return ActivatedSession{}, err
		}
	}

	s.selectionFor(after.TeacherID).Select(after)
	return activate(after)
}

// Confirm records the teacher's check-in and headcount, then clears the
// teacher's console selection.
func (s *SessionService) Confirm(ctx context.Context, sessionID string, studentCount int) (session persistence.Session, err error) {
	if s == nil {
		return persistence.Session{}, fmt.Errorf("SessionService is nil")
	}

	logger := s.loggerWith(ctx, "Confirm", zap.String("session_id", sessionID))
	defer func() {
		logOutcome(logger, err, "failed to confirm attendance", "attendance confirmed", zap.Int("student_count", session.StudentCount))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, idx, err := s.locate(ctx, sessionID)
	if err != nil {
		return persistence.Session{}, err
	}

	confirmed, err := lifecycle.ConfirmAttendance(sessions[idx], studentCount, s.now())
	if err != nil {
		return persistence.Session{}, err
	}
	sessions[idx] = confirmed
	if err = s.store(ctx, sessions); err != nil {
		return persistence.Session{}, err
	}

	s.selectionFor(confirmed.TeacherID).Clear()
	return confirmed, nil
}

// TodaySessions lists the teacher's sessions on the current weekday ordered
// by start time, each with its lifecycle state.
func (s *SessionService) TodaySessions(ctx context.Context, teacherID string) ([]TodaySession, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}
	if strings.TrimSpace(teacherID) == "" {
		invalid := &InvalidInputError{}
		invalid.Add("teacherId", "is required")
		return nil, invalid
	}

	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}

	day := timewindow.DayName(s.now())
	today := make([]persistence.Session, 0)
	for _, session := range sessions {
		if session.TeacherID == teacherID && session.Day == day {
			today = append(today, session)
		}
	}
	sortByStart(today)

	out := make([]TodaySession, 0, len(today))
	for _, session := range today {
		out = append(out, TodaySession{Session: session, State: lifecycle.StateOf(session)})
	}
	return out, nil
}

// ActiveSession returns the session selected on the teacher's console, with
// a locally applied activation taking precedence over the stored record.
func (s *SessionService) ActiveSession(ctx context.Context, teacherID string) (TodaySession, bool, error) {
	if s == nil {
		return TodaySession{}, false, fmt.Errorf("SessionService is nil")
	}

	sel := s.existingSelection(teacherID)
	if sel == nil || sel.SelectedID() == "" {
		return TodaySession{}, false, nil
	}
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return TodaySession{}, false, mapStoreError(err)
	}
	current, ok := sel.Current(sessions)
	if !ok {
		return TodaySession{}, false, nil
	}
	return TodaySession{Session: current, State: lifecycle.StateOf(current)}, true, nil
}

// ReconcileSelections drops console overrides that a refreshed snapshot has
// caught up with.
func (s *SessionService) ReconcileSelections(snapshot []persistence.Session) {
	s.selMu.Lock()
	selections := make([]*console.Selection, 0, len(s.selections))
	for _, sel := range s.selections {
		selections = append(selections, sel)
	}
	s.selMu.Unlock()

	for _, sel := range selections {
		sel.Reconcile(snapshot)
	}
}

// ListSessions returns the timetable, optionally restricted to one weekday,
// together with teachers booked in two places at once.
func (s *SessionService) ListSessions(ctx context.Context, day string) ([]persistence.Session, []ConflictWarning, error) {
	if s == nil {
		return nil, nil, fmt.Errorf("SessionService is nil")
	}

	if strings.TrimSpace(day) != "" {
		normalized, err := timewindow.ParseDay(day)
		if err != nil {
			invalid := &InvalidInputError{}
			invalid.Add("day", "must be a weekday name")
			return nil, nil, invalid
		}
		day = normalized
	}

	version := s.warnings.currentVersion()
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, nil, mapStoreError(err)
	}

	listed := make([]persistence.Session, 0, len(sessions))
	for _, session := range sessions {
		if day == "" || session.Day == day {
			listed = append(listed, session)
		}
	}

	warnings, ok := s.warnings.lookup(day)
	if !ok {
		warnings = teacherOverlaps(listed)
		s.warnings.remember(day, version, warnings)
	}
	return listed, warnings, nil
}

// CreateSession adds a scheduled session. A session overlapping another one
// in the same room on the same day is rejected; a teacher overlap is
// returned as a warning.
func (s *SessionService) CreateSession(ctx context.Context, input SessionInput) (session persistence.Session, warnings []ConflictWarning, err error) {
	if s == nil {
		return persistence.Session{}, nil, fmt.Errorf("SessionService is nil")
	}

	logger := s.loggerWith(ctx, "CreateSession", zap.String("room_id", input.RoomID))
	defer func() {
		logOutcome(logger, err, "failed to create session", "session created", zap.String("session_id", session.ID), zap.Int("warnings", len(warnings)))
	}()

	candidate, err := sessionFromInput(input)
	if err != nil {
		return persistence.Session{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return persistence.Session{}, nil, mapStoreError(err)
	}
	teacherConflicts, err := s.admit(ctx, existing, candidate)
	if err != nil {
		return persistence.Session{}, nil, err
	}
	candidate.ID = s.idGenerator()
	warnings = warningsFor(candidate.ID, teacherConflicts)
	if err = s.store(ctx, append(existing, candidate)); err != nil {
		return persistence.Session{}, nil, err
	}
	return candidate, warnings, nil
}

// UpdateSession replaces the session with id by input. The lifecycle flags
// are reset, returning the session to SCHEDULED.
func (s *SessionService) UpdateSession(ctx context.Context, id string, input SessionInput) (session persistence.Session, warnings []ConflictWarning, err error) {
	if s == nil {
		return persistence.Session{}, nil, fmt.Errorf("SessionService is nil")
	}

	logger := s.loggerWith(ctx, "UpdateSession", zap.String("session_id", id))
	defer func() {
		logOutcome(logger, err, "failed to update session", "session updated", zap.Int("warnings", len(warnings)))
	}()

	candidate, err := sessionFromInput(input)
	if err != nil {
		return persistence.Session{}, nil, err
	}
	candidate.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, idx, err := s.locate(ctx, id)
	if err != nil {
		return persistence.Session{}, nil, err
	}
	teacherConflicts, err := s.admit(ctx, sessions, candidate)
	if err != nil {
		return persistence.Session{}, nil, err
	}
	warnings = warningsFor(id, teacherConflicts)
	sessions[idx] = candidate
	if err = s.store(ctx, sessions); err != nil {
		return persistence.Session{}, nil, err
	}
	s.forgetSelections(id)
	return candidate, warnings, nil
}

// DeleteSession removes the session with id.
func (s *SessionService) DeleteSession(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("SessionService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteSession", zap.String("session_id", id))
	defer func() {
		logOutcome(logger, err, "failed to delete session", "session deleted")
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, idx, err := s.locate(ctx, id)
	if err != nil {
		return err
	}
	if err = s.store(ctx, append(sessions[:idx], sessions[idx+1:]...)); err != nil {
		return err
	}
	s.forgetSelections(id)
	return nil
}

// ExportTimetable renders the whole timetable as a workbook and returns it
// with a suggested filename.
func (s *SessionService) ExportTimetable(ctx context.Context) (*bytes.Buffer, string, error) {
	if s == nil {
		return nil, "", fmt.Errorf("SessionService is nil")
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, "", mapStoreError(err)
	}
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, "", mapStoreError(err)
	}
	return report.ExportTimetable(rooms, sessions, s.now())
}

// appendSessions stores sessions after the existing ones in a single write.
func (s *SessionService) appendSessions(ctx context.Context, sessions []persistence.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return mapStoreError(err)
	}
	return s.store(ctx, append(existing, sessions...))
}

func (s *SessionService) locate(ctx context.Context, id string) ([]persistence.Session, int, error) {
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, -1, mapStoreError(err)
	}
	idx := persistence.FindSession(sessions, id)
	if idx < 0 {
		return nil, -1, apperror.NotFound("session", id)
	}
	return sessions, idx, nil
}

func (s *SessionService) store(ctx context.Context, sessions []persistence.Session) error {
	s.warnings.invalidate()
	if err := s.sessions.PutSessions(ctx, sessions); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (s *SessionService) ensureRoomExists(ctx context.Context, roomID string) error {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return mapStoreError(err)
	}
	for _, room := range rooms {
		if room.ID == roomID {
			return nil
		}
	}
	return apperror.NotFound("room", roomID)
}

// checkRoom reports an unknown room as invalid input on roomId.
func (s *SessionService) checkRoom(ctx context.Context, roomID string) error {
	err := s.ensureRoomExists(ctx, roomID)
	if errors.Is(err, ErrNotFound) {
		invalid := &InvalidInputError{}
		invalid.Add("roomId", "unknown room")
		return fmt.Errorf("%w: %v", invalid, err)
	}
	return err
}

// admit checks candidate against the catalog and the other sessions. A room
// overlap is a ConflictError; teacher overlaps are returned for reporting.
func (s *SessionService) admit(ctx context.Context, existing []persistence.Session, candidate persistence.Session) ([]scheduler.Conflict, error) {
	if err := s.checkRoom(ctx, candidate.RoomID); err != nil {
		return nil, err
	}

	var (
		overlapping []string
		teacher     []scheduler.Conflict
	)
	for _, conflict := range scheduler.DetectConflicts(existing, candidate) {
		switch conflict.Type {
		case scheduler.ConflictTypeRoom:
			overlapping = append(overlapping, conflict.WithSessionID)
		case scheduler.ConflictTypeTeacher:
			teacher = append(teacher, conflict)
		}
	}
	if len(overlapping) > 0 {
		return nil, &ConflictError{SessionIDs: overlapping}
	}
	return teacher, nil
}

func (s *SessionService) selectionFor(teacherID string) *console.Selection {
	s.selMu.Lock()
	defer s.selMu.Unlock()
	sel, ok := s.selections[teacherID]
	if !ok {
		sel = &console.Selection{}
		s.selections[teacherID] = sel
	}
	return sel
}

// forgetSelections drops every console selection of sessionID, whichever
// teacher held it before an edit.
func (s *SessionService) forgetSelections(sessionID string) {
	s.selMu.Lock()
	defer s.selMu.Unlock()
	for _, sel := range s.selections {
		sel.Forget(sessionID)
	}
}

func (s *SessionService) existingSelection(teacherID string) *console.Selection {
	s.selMu.Lock()
	defer s.selMu.Unlock()
	return s.selections[teacherID]
}

func activate(session persistence.Session) (ActivatedSession, error) {
	payload := lifecycle.PayloadFor(session)
	text, err := payload.Encode()
	if err != nil {
		return ActivatedSession{}, fmt.Errorf("encode qr payload: %w", err)
	}
	return ActivatedSession{Session: session, QR: payload, QRText: text}, nil
}

// sessionFromInput validates input and returns a SCHEDULED session with
// normalized day and times.
func sessionFromInput(input SessionInput) (persistence.Session, error) {
	fields, err := validation.Struct(input)
	if err != nil {
		return persistence.Session{}, err
	}
	invalid := &InvalidInputError{FieldErrors: fields}
	if invalid.HasErrors() {
		return persistence.Session{}, invalid
	}

	day, _ := timewindow.ParseDay(input.Day)
	window, _ := timewindow.ParseWindow(input.StartTime, input.EndTime)
	if window.Minutes() <= 0 {
		invalid.Add("endTime", "must be after startTime")
		return persistence.Session{}, invalid
	}

	return persistence.Session{
		Day:           day,
		StartTime:     window.Start.String(),
		EndTime:       window.End.String(),
		Subject:       strings.TrimSpace(input.Subject),
		RoomID:        strings.TrimSpace(input.RoomID),
		TeacherID:     strings.TrimSpace(input.TeacherID),
		TeacherName:   strings.TrimSpace(input.TeacherName),
		DurationHours: wholeHours(window),
	}, nil
}

// wholeHours rounds a window to whole hours, never below one.
func wholeHours(window timewindow.Window) int {
	hours := int(math.Round(float64(window.Minutes()) / 60))
	if hours < 1 {
		return 1
	}
	return hours
}

func warningsFor(sessionID string, conflicts []scheduler.Conflict) []ConflictWarning {
	var warnings []ConflictWarning
	for _, conflict := range conflicts {
		warnings = append(warnings, warningFor(sessionID, conflict))
	}
	return warnings
}

func warningFor(sessionID string, conflict scheduler.Conflict) ConflictWarning {
	return ConflictWarning{
		SessionID:     sessionID,
		WithSessionID: conflict.WithSessionID,
		Type:          conflict.Type,
		TeacherID:     conflict.TeacherID,
		RoomID:        conflict.RoomID,
	}
}

// teacherOverlaps reports each pair of listed sessions that share a teacher
// and overlap, once, from the earlier listed session.
func teacherOverlaps(sessions []persistence.Session) []ConflictWarning {
	var warnings []ConflictWarning
	for i, session := range sessions {
		for _, conflict := range scheduler.DetectConflicts(sessions[i+1:], session) {
			if conflict.Type == scheduler.ConflictTypeTeacher {
				warnings = append(warnings, warningFor(session.ID, conflict))
			}
		}
	}
	return warnings
}

// sortByStart orders sessions by start time. Unparseable times sort last in
// their original order.
func sortByStart(sessions []persistence.Session) {
	key := func(s persistence.Session) int {
		m, err := timewindow.ParseClock(s.StartTime)
		if err != nil {
			return math.MaxInt
		}
		return int(m)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return key(sessions[i]) < key(sessions[j])
	})
}
