package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/edutrack/internal/occupancy"
	"github.com/example/edutrack/internal/persistence"
)

type boardService interface {
	Board(ctx context.Context) ([]occupancy.RoomStatus, error)
	RoomStatus(ctx context.Context, roomID string) (occupancy.RoomStatus, error)
}

type roomLister interface {
	ListRooms(ctx context.Context) ([]persistence.Room, error)
}

// BoardHandler serves the room catalog and its live occupancy.
type BoardHandler struct {
	board     boardService
	rooms     roomLister
	responder responder
}

func NewBoardHandler(board boardService, rooms roomLister, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{board: board, rooms: rooms, responder: newResponder(logger)}
}

type boardResponse struct {
	Rooms []occupancy.RoomStatus `json:"rooms"`
}

type roomsResponse struct {
	Rooms []persistence.Room `json:"rooms"`
}

func (h *BoardHandler) Board(c *gin.Context) {
	board, err := h.board.Board(c.Request.Context())
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, boardResponse{Rooms: board})
}

func (h *BoardHandler) RoomStatus(c *gin.Context) {
	status, err := h.board.RoomStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, status)
}

func (h *BoardHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		h.responder.handleServiceError(c, err)
		return
	}
	h.responder.writeJSON(c, http.StatusOK, roomsResponse{Rooms: rooms})
}
