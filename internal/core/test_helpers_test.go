package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge-server/internal/store"
	"github.com/lingobridge/lingobridge-server/internal/store/memory"
	"github.com/lingobridge/lingobridge-server/internal/translate"
)

// stubTranslator serves a fixed word mapping with optional failures and
// latency, and counts backend calls.
type stubTranslator struct {
	mu          sync.Mutex
	mapping     map[string]string
	singleErr   error
	convErr     error
	delay       time.Duration
	singleCalls int
	convCalls   int
}

func (s *stubTranslator) TranslateSingle(_ context.Context, text, _, _ string) (string, error) {
	s.mu.Lock()
	s.singleCalls++
	err := s.singleErr
	delay := s.delay
	s.delay = 0
	out, ok := s.mapping[text]
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return "", err
	}
	if !ok {
		out = "[t]" + text
	}
	return out, nil
}

func (s *stubTranslator) TranslateConversation(_ context.Context, turns []translate.Turn, _, _ string) ([]translate.Turn, error) {
	s.mu.Lock()
	s.convCalls++
	err := s.convErr
	delay := s.delay
	s.delay = 0
	mapping := s.mapping
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	out := make([]translate.Turn, len(turns))
	for i, turn := range turns {
		translated, ok := mapping[turn.Text]
		if !ok {
			translated = "[t]" + turn.Text
		}
		out[i] = translate.Turn{Speaker: turn.Speaker, Text: translated}
	}
	return out, nil
}

func (s *stubTranslator) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.singleCalls, s.convCalls
}

func newTestRouter(t *testing.T, tr translate.Translator) (*Router, *memory.Store, context.CancelFunc) {
	t.Helper()

	st := memory.New()
	logger := zerolog.Nop()
	coord := translate.NewCoordinator(tr, translate.NewContextBuilder(st, 10), time.Second, &logger)
	router := NewRouter(st, coord, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	go router.Run(ctx)

	return router, st, cancel
}

// mustEvent waits for the next event of the given kind, discarding others.
func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func messageCount(t *testing.T, st *memory.Store, sessionID string) int {
	t.Helper()

	msgs, err := st.ListMessages(context.Background(), sessionID)
	if err != nil {
		return 0
	}
	return len(msgs)
}

func joinCustomer(c *Client, sessionID, name, lang string) {
	c.Commands <- &Command{
		Kind:         CommandJoinSession,
		SessionID:    sessionID,
		CustomerName: name,
		Language:     lang,
	}
}

func joinAgent(c *Client, sessionID, agentID, lang string) {
	c.Commands <- &Command{
		Kind:          CommandAgentJoinSession,
		SessionID:     sessionID,
		AgentID:       agentID,
		AgentLanguage: lang,
	}
}

func sendText(c *Client, sessionID string, role store.SenderRole, text, lang string) {
	c.Commands <- &Command{
		Kind:             CommandSendMessage,
		SessionID:        sessionID,
		SenderRole:       role,
		Text:             text,
		DeclaredLanguage: lang,
	}
}
