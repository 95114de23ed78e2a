package http

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/edutrack/internal/application"
	"github.com/example/edutrack/internal/extraction"
	"github.com/example/edutrack/internal/persistence"
)

type timetableImporter interface {
	ImportTimetable(ctx context.Context, image extraction.Image, uploader application.Teacher) ([]persistence.Session, error)
}

// TimetableHandler accepts photographed timetables for import.
type TimetableHandler struct {
	importer  timetableImporter
	responder responder
}

func NewTimetableHandler(importer timetableImporter, logger *zap.Logger) *TimetableHandler {
	return &TimetableHandler{importer: importer, responder: newResponder(logger)}
}

type importResponse struct {
	Imported int                   `json:"imported"`
	Sessions []persistence.Session `json:"sessions"`
}

func (h *TimetableHandler) Import(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		h.responder.writeError(c, http.StatusBadRequest, "BAD_REQUEST", errMissingImage)
		return
	}
	file, err := header.Open()
	if err != nil {
		h.responder.writeError(c, http.StatusBadRequest, "BAD_REQUEST", errMissingImage)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.responder.writeError(c, http.StatusBadRequest, "BAD_REQUEST", errMissingImage)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	sessions, err := h.importer.ImportTimetable(c.Request.Context(),
		extraction.Image{Data: data, MimeType: mimeType},
		application.Teacher{ID: c.PostForm("teacherId"), Name: c.PostForm("teacherName")},
	)
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusCreated, importResponse{Imported: len(sessions), Sessions: sessions})
}
