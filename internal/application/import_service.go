package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/edutrack/internal/extraction"
	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/timewindow"
	"github.com/example/edutrack/internal/validation"
)

// ImportIDPrefix prefixes the ids of sessions created from an uploaded
// timetable.
const ImportIDPrefix = "auto-"

// ImportService turns a photographed timetable into scheduled sessions.
type ImportService struct {
	extractor   extraction.Extractor
	rooms       persistence.RoomRepository
	sessions    *SessionService
	idGenerator func() string
	logger      *zap.Logger
}

// NewImportService wires dependencies for timetable import. A nil extractor
// disables the feature and every import returns ErrImportDisabled.
func NewImportService(extractor extraction.Extractor, rooms persistence.RoomRepository, sessions *SessionService, idGenerator func() string) *ImportService {
	return NewImportServiceWithLogger(extractor, rooms, sessions, idGenerator, nil)
}

// NewImportServiceWithLogger wires dependencies with a specified logger.
func NewImportServiceWithLogger(extractor extraction.Extractor, rooms persistence.RoomRepository, sessions *SessionService, idGenerator func() string, logger *zap.Logger) *ImportService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	return &ImportService{
		extractor:   extractor,
		rooms:       rooms,
		sessions:    sessions,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

func (s *ImportService) loggerWith(ctx context.Context, operation string, fields ...zap.Field) *zap.Logger {
	return serviceLogger(ctx, s.logger, "ImportService", operation, fields...)
}

// Enabled reports whether an extraction collaborator is configured.
func (s *ImportService) Enabled() bool {
	return s != nil && s.extractor != nil
}

// ImportTimetable extracts rows from image and appends them as sessions
// taught by uploader. Rows are matched to rooms by a case-insensitive
// substring of the room name, falling back to the first catalog room. Either
// every row is stored or none is.
func (s *ImportService) ImportTimetable(ctx context.Context, image extraction.Image, uploader Teacher) (created []persistence.Session, err error) {
	if !s.Enabled() {
		return nil, ErrImportDisabled
	}

	logger := s.loggerWith(ctx, "ImportTimetable", zap.String("teacher_id", uploader.ID), zap.Int("image_bytes", len(image.Data)))
	defer func() {
		logOutcome(logger, err, "failed to import timetable", "timetable imported", zap.Int("sessions", len(created)))
	}()

	invalid := &InvalidInputError{}
	if len(image.Data) == 0 {
		invalid.Add("image", "is required")
	}
	if strings.TrimSpace(uploader.ID) == "" {
		invalid.Add("teacherId", "is required")
	}
	if invalid.HasErrors() {
		return nil, invalid
	}

	rows, err := s.extractor.Extract(ctx, image)
	if err != nil {
		return nil, &ExternalServiceError{Service: "extraction", Err: err}
	}
	if len(rows) == 0 {
		invalid.Add("image", "no timetable entries found")
		return nil, invalid
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if len(rooms) == 0 {
		invalid.Add("roomName", "no rooms are provisioned")
		return nil, invalid
	}

	created = make([]persistence.Session, 0, len(rows))
	for i, row := range rows {
		session, ok := s.sessionFromRow(i, row.Normalize(), rooms, uploader, invalid)
		if ok {
			created = append(created, session)
		}
	}
	if invalid.HasErrors() {
		return nil, invalid
	}

	if err = s.sessions.appendSessions(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ImportService) sessionFromRow(i int, row extraction.Row, rooms []persistence.Room, uploader Teacher, invalid *InvalidInputError) (persistence.Session, bool) {
	fields, err := validation.Struct(row)
	if err != nil {
		invalid.Add(fmt.Sprintf("rows[%d]", i), err.Error())
		return persistence.Session{}, false
	}
	for field, msg := range fields {
		invalid.Add(fmt.Sprintf("rows[%d].%s", i, field), msg)
	}
	if len(fields) > 0 {
		return persistence.Session{}, false
	}

	window, _ := timewindow.ParseWindow(row.StartTime, row.EndTime)
	if window.Minutes() <= 0 {
		invalid.Add(fmt.Sprintf("rows[%d].endTime", i), "must be after startTime")
		return persistence.Session{}, false
	}
	day, _ := timewindow.ParseDay(row.Day)

	teacherName := uploader.Name
	if row.TeacherName != "" {
		teacherName = row.TeacherName
	}
	return persistence.Session{
		ID:            ImportIDPrefix + s.idGenerator(),
		Day:           day,
		StartTime:     window.Start.String(),
		EndTime:       window.End.String(),
		Subject:       row.Subject,
		RoomID:        matchRoom(rooms, row.RoomName).ID,
		TeacherID:     uploader.ID,
		TeacherName:   teacherName,
		DurationHours: wholeHours(window),
	}, true
}

// matchRoom returns the first room whose name contains name, ignoring case,
// or the first room when none does. rooms must not be empty.
func matchRoom(rooms []persistence.Room, name string) persistence.Room {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle != "" {
		for _, room := range rooms {
			if strings.Contains(strings.ToLower(room.Name), needle) {
				return room
			}
		}
	}
	return rooms[0]
}
