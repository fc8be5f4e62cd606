package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge-server/internal/translate"
)

// TranslateHandlers provides the standalone translation endpoint.
type TranslateHandlers struct {
	coord *translate.Coordinator
	log   *zerolog.Logger
}

// NewTranslateHandlers creates a new translate handlers instance.
func NewTranslateHandlers(coord *translate.Coordinator, logger *zerolog.Logger) *TranslateHandlers {
	return &TranslateHandlers{coord: coord, log: logger}
}

// TranslateRequest represents the translate request body.
type TranslateRequest struct {
	Text           string `json:"text" binding:"required"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage" binding:"required,min=2,max=16"`
}

// TranslateResponse represents the translate response body. Translated is
// false when the backend failed and the original text is echoed back.
type TranslateResponse struct {
	Success        bool   `json:"success"`
	TranslatedText string `json:"translatedText"`
	Translated     bool   `json:"translated"`
	TargetLanguage string `json:"targetLanguage"`
	DurationMs     int64  `json:"durationMs"`
}

// Translate translates a single piece of text outside any session.
// POST /api/translate
func (h *TranslateHandlers) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid translate request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	start := time.Now()
	text, translated := h.coord.TranslateText(c.Request.Context(), req.Text, req.SourceLanguage, req.TargetLanguage)
	c.JSON(http.StatusOK, TranslateResponse{
		Success:        true,
		TranslatedText: text,
		Translated:     translated,
		TargetLanguage: req.TargetLanguage,
		DurationMs:     time.Since(start).Milliseconds(),
	})
}
