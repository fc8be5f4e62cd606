package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge-server/internal/translate"
)

// Result holds the outcome of an OCR + translation run.
type Result struct {
	ExtractedText  string
	TranslatedText string
	TargetLanguage string
	Translated     bool
}

// Service extracts text from an image and runs it through the standalone
// single-message translation path. It never touches session state.
type Service struct {
	extractor TextExtractor
	coord     *translate.Coordinator
	log       *zerolog.Logger
}

// NewService wires the extractor and the translation coordinator.
func NewService(extractor TextExtractor, coord *translate.Coordinator, logger *zerolog.Logger) *Service {
	return &Service{extractor: extractor, coord: coord, log: logger}
}

// Process recognizes text in the image and translates it into targetLang.
// The source language is auto-detected by the translation backend.
// Returns ErrNoTextFound when the image has no recognizable text.
func (s *Service) Process(ctx context.Context, image []byte, hintLang, targetLang string) (*Result, error) {
	text, err := s.extractor.ExtractText(ctx, image, hintLang)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoTextFound
	}

	translated, ok := s.coord.TranslateText(ctx, text, "auto", targetLang)
	if !ok {
		s.log.Debug().Str("target", targetLang).Msg("ocr text delivered untranslated")
	}

	return &Result{
		ExtractedText:  text,
		TranslatedText: translated,
		TargetLanguage: targetLang,
		Translated:     ok,
	}, nil
}
