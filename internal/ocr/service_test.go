package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge-server/internal/store/memory"
	"github.com/lingobridge/lingobridge-server/internal/translate"
)

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractText(context.Context, []byte, string) (string, error) {
	return s.text, s.err
}

type stubTranslator struct {
	calls int
	err   error
}

func (s *stubTranslator) TranslateSingle(_ context.Context, text, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "[t]" + text, nil
}

func (s *stubTranslator) TranslateConversation(_ context.Context, turns []translate.Turn, _, _ string) ([]translate.Turn, error) {
	return turns, nil
}

func newTestService(extractor TextExtractor, tr translate.Translator) *Service {
	logger := zerolog.Nop()
	coord := translate.NewCoordinator(tr, translate.NewContextBuilder(memory.New(), 10), time.Second, &logger)
	return NewService(extractor, coord, &logger)
}

func TestProcessExtractsAndTranslates(t *testing.T) {
	tr := &stubTranslator{}
	svc := newTestService(&stubExtractor{text: "  Factura 42  "}, tr)

	result, err := svc.Process(context.Background(), []byte("img"), "spa", "en")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.ExtractedText != "Factura 42" {
		t.Fatalf("expected trimmed text, got %q", result.ExtractedText)
	}
	if !result.Translated || result.TranslatedText != "[t]Factura 42" {
		t.Fatalf("unexpected translation: %+v", result)
	}
	if tr.calls != 1 {
		t.Fatalf("expected one translation call, got %d", tr.calls)
	}
}

func TestProcessWhitespaceOnlyIsNoText(t *testing.T) {
	tr := &stubTranslator{}
	svc := newTestService(&stubExtractor{text: "   \n\t "}, tr)

	_, err := svc.Process(context.Background(), []byte("img"), "", "en")
	if !errors.Is(err, ErrNoTextFound) {
		t.Fatalf("expected ErrNoTextFound, got %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("translator must not run without text, got %d calls", tr.calls)
	}
}

func TestProcessExtractorFailure(t *testing.T) {
	svc := newTestService(&stubExtractor{err: errors.New("ocr down")}, &stubTranslator{})

	if _, err := svc.Process(context.Background(), []byte("img"), "", "en"); err == nil {
		t.Fatal("expected error from extractor")
	}
}

func TestProcessTranslationFailureKeepsExtracted(t *testing.T) {
	svc := newTestService(&stubExtractor{text: "Hola"}, &stubTranslator{err: errors.New("down")})

	result, err := svc.Process(context.Background(), []byte("img"), "", "en")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Translated || result.TranslatedText != "Hola" {
		t.Fatalf("expected original text on translation failure, got %+v", result)
	}
}
