package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge-server/internal/config"
	"github.com/lingobridge/lingobridge-server/internal/core"
	"github.com/lingobridge/lingobridge-server/internal/ocr"
	"github.com/lingobridge/lingobridge-server/internal/store"
	"github.com/lingobridge/lingobridge-server/internal/translate"
)

// NewServer builds the HTTP server: WebSocket endpoint plus the REST API.
func NewServer(
	router *core.Router,
	st store.SessionStore,
	coord *translate.Coordinator,
	ocrService *ocr.Service,
	cfg config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), LoggerMiddleware(logger))

	engine.GET("/health", healthHandler)
	engine.GET("/ws", gin.WrapH(NewWSHandler(router, cfg.WS.MessageRateLimit, logger)))

	sessions := NewSessionHandlers(st, router, logger)
	translations := NewTranslateHandlers(coord, logger)
	images := NewOCRHandlers(ocrService, logger)

	api := engine.Group("/api")
	api.POST("/sessions", sessions.CreateSession)
	api.GET("/sessions", sessions.ListSessions)
	api.GET("/sessions/:id", sessions.GetSession)
	api.GET("/sessions/:id/messages", sessions.ListMessages)
	api.PATCH("/sessions/:id/close", sessions.CloseSession)
	api.POST("/translate", translations.Translate)
	api.POST("/ocr", images.Extract)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(stdhttp.StatusOK, gin.H{"status": "ok"})
}
