// Package extraction defines the timetable-extraction collaborator, which
// turns a photographed timetable into structured rows, and an HTTP client for
// a remote extraction service.
package extraction

import (
	"context"
	"strings"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_extractor.go github.com/example/edutrack/internal/extraction Extractor

// Extractor reads timetable rows out of an image.
type Extractor interface {
	Extract(ctx context.Context, image Image) ([]Row, error)
}

// Image is an uploaded timetable picture.
type Image struct {
	Data     []byte
	MimeType string
}

// Row is one timetable entry as returned by the extraction service.
// TeacherName is optional.
type Row struct {
	Day         string `json:"day" validate:"required,weekday"`
	StartTime   string `json:"startTime" validate:"required,clock"`
	EndTime     string `json:"endTime" validate:"required,clock"`
	Subject     string `json:"subject" validate:"notblank"`
	RoomName    string `json:"roomName"`
	TeacherName string `json:"teacherName,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (r Row) Normalize() Row {
	r.Day = strings.TrimSpace(r.Day)
	r.StartTime = strings.TrimSpace(r.StartTime)
	r.EndTime = strings.TrimSpace(r.EndTime)
	r.Subject = strings.TrimSpace(r.Subject)
	r.RoomName = strings.TrimSpace(r.RoomName)
	r.TeacherName = strings.TrimSpace(r.TeacherName)
	return r
}
