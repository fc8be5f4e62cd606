package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge-server/internal/ocr"
)

// maxImageBytes caps uploaded image size at 10 MiB.
const maxImageBytes = 10 << 20

// OCRHandlers provides the image text extraction endpoint.
type OCRHandlers struct {
	service *ocr.Service
	log     *zerolog.Logger
}

// NewOCRHandlers creates a new OCR handlers instance.
func NewOCRHandlers(service *ocr.Service, logger *zerolog.Logger) *OCRHandlers {
	return &OCRHandlers{service: service, log: logger}
}

// OCRResponse represents the OCR response body.
type OCRResponse struct {
	Success        bool   `json:"success"`
	ExtractedText  string `json:"extractedText"`
	TranslatedText string `json:"translatedText"`
	TargetLanguage string `json:"targetLanguage"`
	Translated     bool   `json:"translated"`
}

// Extract recognizes text in an uploaded image and translates it.
// POST /api/ocr (multipart: image, optional hintLanguage, targetLanguage)
func (h *OCRHandlers) Extract(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes)

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		h.log.Debug().Err(err).Msg("invalid ocr upload")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image file is required"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read image"})
		return
	}

	targetLang := c.PostForm("targetLanguage")
	if targetLang == "" {
		targetLang = "en"
	}
	hintLang := c.PostForm("hintLanguage")

	result, err := h.service.Process(c.Request.Context(), image, hintLang, targetLang)
	if err != nil {
		if errors.Is(err, ocr.ErrNoTextFound) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "no text found in image"})
			return
		}
		h.log.Error().Err(err).Msg("ocr processing failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "text extraction failed"})
		return
	}

	c.JSON(http.StatusOK, OCRResponse{
		Success:        true,
		ExtractedText:  result.ExtractedText,
		TranslatedText: result.TranslatedText,
		TargetLanguage: result.TargetLanguage,
		Translated:     result.Translated,
	})
}
