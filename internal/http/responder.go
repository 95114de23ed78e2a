package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/edutrack/internal/application"
)

var (
	errBadRequestBody = errors.New("request body is malformed")
	errMissingImage   = errors.New("image file is required")
)

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

type responder struct {
	logger *zap.Logger
}

func newResponder(logger *zap.Logger) responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(c *gin.Context, status int, payload any) {
	if status == http.StatusNoContent || payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

func (r responder) writeError(c *gin.Context, status int, code string, err error) {
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, errorResponse{ErrorCode: code, Message: message})
}

// handleServiceError renders err with the status its kind maps to.
func (r responder) handleServiceError(c *gin.Context, err error) {
	if err == nil {
		r.writeError(c, http.StatusInternalServerError, "INTERNAL", errors.New("unknown error"))
		return
	}
	_ = c.Error(err)

	var (
		inputErr    *application.InvalidInputError
		validErr    *application.ValidationError
		conflictErr *application.ConflictError
		externalErr *application.ExternalServiceError
	)
	switch {
	case errors.As(err, &inputErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_INPUT",
			Message:   "request contains invalid fields",
			Errors:    inputErr.FieldErrors,
		})
	case errors.As(err, &validErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   "request breaks a business rule",
			Errors:    validErr.FieldErrors,
		})
	case errors.As(err, &conflictErr):
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{
			ErrorCode: "ROOM_CONFLICT",
			Message:   conflictErr.Error(),
		})
	case errors.Is(err, application.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: err.Error()})
	case errors.As(err, &externalErr):
		c.AbortWithStatusJSON(http.StatusBadGateway, errorResponse{
			ErrorCode: "UPSTREAM_FAILED",
			Message:   "timetable extraction failed",
		})
	case errors.Is(err, application.ErrImportDisabled):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorResponse{
			ErrorCode: "IMPORT_DISABLED",
			Message:   "timetable import is not configured",
		})
	default:
		loggerFor(c, r.logger).Error("unhandled service error", zap.Error(err), zap.String("error_kind", application.ErrorKind(err)))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{ErrorCode: "INTERNAL", Message: "internal server error"})
	}
}
