package http

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/edutrack/internal/application"
	"github.com/example/edutrack/internal/persistence"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sessionService interface {
	ListSessions(ctx context.Context, day string) ([]persistence.Session, []application.ConflictWarning, error)
	CreateSession(ctx context.Context, input application.SessionInput) (persistence.Session, []application.ConflictWarning, error)
	UpdateSession(ctx context.Context, id string, input application.SessionInput) (persistence.Session, []application.ConflictWarning, error)
	DeleteSession(ctx context.Context, id string) error
	BookAdHoc(ctx context.Context, params application.BookAdHocParams) (application.ActivatedSession, error)
	Activate(ctx context.Context, sessionID string) (application.ActivatedSession, error)
	Confirm(ctx context.Context, sessionID string, studentCount int) (persistence.Session, error)
	TodaySessions(ctx context.Context, teacherID string) ([]application.TodaySession, error)
	ActiveSession(ctx context.Context, teacherID string) (application.TodaySession, bool, error)
	ExportTimetable(ctx context.Context) (*bytes.Buffer, string, error)
}

// SessionHandler serves timetable administration and the session lifecycle.
type SessionHandler struct {
	service   sessionService
	responder responder
}

func NewSessionHandler(service sessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{service: service, responder: newResponder(logger)}
}

type sessionRequest struct {
	Day         string `json:"day"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Subject     string `json:"subject"`
	RoomID      string `json:"roomId"`
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
}

func (r sessionRequest) toInput() application.SessionInput {
	return application.SessionInput{
		Day:         r.Day,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Subject:     r.Subject,
		RoomID:      r.RoomID,
		TeacherID:   r.TeacherID,
		TeacherName: r.TeacherName,
	}
}

type bookRequest struct {
	TeacherID     string `json:"teacherId"`
	TeacherName   string `json:"teacherName"`
	RoomID        string `json:"roomId"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	DurationHours int    `json:"durationHours"`
	Subject       string `json:"subject"`
}

type confirmRequest struct {
	StudentCount int `json:"studentCount"`
}

type sessionResponse struct {
	Session  persistence.Session           `json:"session"`
	Warnings []application.ConflictWarning `json:"warnings,omitempty"`
}

type sessionsResponse struct {
	Sessions []persistence.Session         `json:"sessions"`
	Warnings []application.ConflictWarning `json:"warnings,omitempty"`
}

type todayResponse struct {
	Sessions []application.TodaySession `json:"sessions"`
}

func (h *SessionHandler) List(c *gin.Context) {
	sessions, warnings, err := h.service.ListSessions(c.Request.Context(), c.Query("day"))
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, sessionsResponse{Sessions: sessions, Warnings: warnings})
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeError(c, http.StatusBadRequest, "BAD_REQUEST", errBadRequestBody)
		return
	}

	session, warnings, err := h.service.CreateSession(c.Request.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusCreated, sessionResponse{Session: session, Warnings: warnings})
}

func (h *SessionHandler) Update(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeError(c, http.StatusBadRequest, "BAD_REQUEST", errBadRequestBody)
		return
	}

	session, warnings, err := h.service.UpdateSession(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, sessionResponse{Session: session, Warnings: warnings})
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusNoContent, nil)
}

func (h *SessionHandler) BookAdHoc(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeError(c, http.StatusBadRequest, "BAD_REQUEST", errBadRequestBody)
		return
	}

	activated, err := h.service.BookAdHoc(c.Request.Context(), application.BookAdHocParams{
		Teacher:       application.Teacher{ID: req.TeacherID, Name: req.TeacherName},
		RoomID:        req.RoomID,
		Date:          req.Date,
		StartTime:     req.StartTime,
		DurationHours: req.DurationHours,
		Subject:       req.Subject,
	})
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusCreated, activated)
}

func (h *SessionHandler) Activate(c *gin.Context) {
	activated, err := h.service.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, activated)
}

func (h *SessionHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.writeError(c, http.StatusBadRequest, "BAD_REQUEST", errBadRequestBody)
		return
	}

	session, err := h.service.Confirm(c.Request.Context(), c.Param("id"), req.StudentCount)
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, sessionResponse{Session: session})
}

func (h *SessionHandler) Today(c *gin.Context) {
	sessions, err := h.service.TodaySessions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, todayResponse{Sessions: sessions})
}

// Active answers 204 when the teacher has nothing selected.
func (h *SessionHandler) Active(c *gin.Context) {
	session, ok, err := h.service.ActiveSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	if !ok {
		h.responder.writeJSON(c, http.StatusNoContent, nil)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, session)
}

func (h *SessionHandler) Export(c *gin.Context) {
	buf, filename, err := h.service.ExportTimetable(c.Request.Context())
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
