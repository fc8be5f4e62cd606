package http

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lingobridge/lingobridge-server/internal/config"
	"github.com/lingobridge/lingobridge-server/internal/core"
	"github.com/lingobridge/lingobridge-server/internal/log"
	"github.com/lingobridge/lingobridge-server/internal/ocr"
	"github.com/lingobridge/lingobridge-server/internal/store"
	"github.com/lingobridge/lingobridge-server/internal/store/memory"
	"github.com/lingobridge/lingobridge-server/internal/translate"
)

// echoTranslator marks text instead of translating it, so tests can tell
// translated output from the original.
type echoTranslator struct{}

func (echoTranslator) TranslateSingle(_ context.Context, text, _, targetLang string) (string, error) {
	return fmt.Sprintf("[%s] %s", targetLang, text), nil
}

func (e echoTranslator) TranslateConversation(ctx context.Context, turns []translate.Turn, sourceLang, targetLang string) ([]translate.Turn, error) {
	out := make([]translate.Turn, len(turns))
	for i, turn := range turns {
		text, _ := e.TranslateSingle(ctx, turn.Text, sourceLang, targetLang)
		out[i] = translate.Turn{Speaker: turn.Speaker, Text: text}
	}
	return out, nil
}

// staticExtractor returns a fixed OCR result.
type staticExtractor struct {
	text string
	err  error
}

func (s staticExtractor) ExtractText(context.Context, []byte, string) (string, error) {
	return s.text, s.err
}

type testEnv struct {
	ts     *httptest.Server
	store  store.SessionStore
	router *core.Router
}

func (e *testEnv) wsURL() string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
}

func startTestServer(t *testing.T, opts ...func(*config.Config, *testDeps)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second

	deps := &testDeps{
		translator: echoTranslator{},
		extractor:  staticExtractor{text: "hello from image"},
	}
	for _, opt := range opts {
		opt(&cfg, deps)
	}

	logger := log.Nop()
	st := memory.New()
	coord := translate.NewCoordinator(deps.translator, translate.NewContextBuilder(st, 10), time.Second, logger)
	ocrService := ocr.NewService(deps.extractor, coord, logger)
	router := core.NewRouter(st, coord, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go router.Run(ctx)
	t.Cleanup(cancel)

	server := NewServer(router, st, coord, ocrService, cfg, logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: st, router: router}
}

type testDeps struct {
	translator translate.Translator
	extractor  ocr.TextExtractor
}

func seedSession(t *testing.T, st store.SessionStore, status store.SessionStatus) *store.Session {
	t.Helper()

	now := time.Now().UTC()
	session := &store.Session{
		ID:               fmt.Sprintf("sess-%d", now.UnixNano()),
		CustomerName:     "Dana",
		CustomerLanguage: "es",
		AgentLanguage:    "en",
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := st.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}
