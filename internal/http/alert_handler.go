package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/edutrack/internal/persistence"
)

type alertReader interface {
	AlertsFor(ctx context.Context, recipientID string) ([]persistence.Alert, error)
}

// AlertHandler serves a recipient's alerts.
type AlertHandler struct {
	alerts    alertReader
	responder responder
}

func NewAlertHandler(alerts alertReader, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, responder: newResponder(logger)}
}

type alertsResponse struct {
	Alerts []persistence.Alert `json:"alerts"`
}

func (h *AlertHandler) List(c *gin.Context) {
	alerts, err := h.alerts.AlertsFor(c.Request.Context(), c.Param("recipientId"))
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, alertsResponse{Alerts: alerts})
}
