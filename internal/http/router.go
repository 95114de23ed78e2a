package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig collects the handlers mounted by NewRouter. Nil handlers leave
// their routes unregistered.
type RouterConfig struct {
	Board     *BoardHandler
	Sessions  *SessionHandler
	Alerts    *AlertHandler
	Timetable *TimetableHandler
	Logger    *zap.Logger

	// MaxUploadBytes bounds multipart uploads. Zero keeps gin's default.
	MaxUploadBytes int64
}

// NewRouter builds the API engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), RequestLogger(cfg.Logger))
	if cfg.MaxUploadBytes > 0 {
		engine.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")

	if h := cfg.Board; h != nil {
		api.GET("/board", h.Board)
		api.GET("/rooms", h.ListRooms)
		api.GET("/rooms/:id/status", h.RoomStatus)
	}

	if h := cfg.Sessions; h != nil {
		api.GET("/sessions", h.List)
		api.POST("/sessions", h.Create)
		api.POST("/sessions/adhoc", h.BookAdHoc)
		api.PUT("/sessions/:id", h.Update)
		api.DELETE("/sessions/:id", h.Delete)
		api.POST("/sessions/:id/activate", h.Activate)
		api.POST("/sessions/:id/confirm", h.Confirm)
		api.GET("/teachers/:id/today", h.Today)
		api.GET("/teachers/:id/active", h.Active)
		api.GET("/timetable/export", h.Export)
	}

	if h := cfg.Alerts; h != nil {
		api.GET("/alerts/:recipientId", h.List)
	}

	if h := cfg.Timetable; h != nil {
		api.POST("/timetable/import", h.Import)
	}

	return engine
}
