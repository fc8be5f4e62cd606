package translate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lingobridge/lingobridge-server/internal/store"
	"github.com/lingobridge/lingobridge-server/internal/store/memory"
)

func seedSession(t *testing.T, st *memory.Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	err := st.CreateSession(context.Background(), &store.Session{
		ID:               id,
		CustomerName:     "Maria",
		CustomerLanguage: "es",
		AgentLanguage:    "en",
		Status:           store.SessionActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func appendMessage(t *testing.T, st *memory.Store, sessionID string, i int, role store.SenderRole, kind store.MessageType, text string) {
	t.Helper()
	err := st.AppendMessage(context.Background(), &store.Message{
		ID:               fmt.Sprintf("m%02d", i),
		SessionID:        sessionID,
		SenderRole:       role,
		OriginalText:     text,
		OriginalLanguage: "es",
		MessageType:      kind,
		CreatedAt:        time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
	})
	if err != nil {
		t.Fatalf("append message %d: %v", i, err)
	}
}

func TestBuildChronologicalOrder(t *testing.T) {
	st := memory.New()
	seedSession(t, st, "s1")

	appendMessage(t, st, "s1", 0, store.RoleCustomer, store.MessageText, "Hola")
	appendMessage(t, st, "s1", 1, store.RoleAgent, store.MessageText, "Hello")
	appendMessage(t, st, "s1", 2, store.RoleCustomer, store.MessageText, "Gracias")

	turns, err := NewContextBuilder(st, 10).Build(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []Turn{
		{Speaker: "Customer", Text: "Hola"},
		{Speaker: "Agent", Text: "Hello"},
		{Speaker: "Customer", Text: "Gracias"},
	}
	if len(turns) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(turns))
	}
	for i := range want {
		if turns[i] != want[i] {
			t.Fatalf("turn %d mismatch: got %+v want %+v", i, turns[i], want[i])
		}
	}
}

func TestBuildBoundsWindow(t *testing.T) {
	st := memory.New()
	seedSession(t, st, "s1")

	for i := 0; i < 15; i++ {
		appendMessage(t, st, "s1", i, store.RoleCustomer, store.MessageText, fmt.Sprintf("msg %d", i))
	}

	turns, err := NewContextBuilder(st, 10).Build(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(turns) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(turns))
	}
	if turns[0].Text != "msg 5" || turns[9].Text != "msg 14" {
		t.Fatalf("wrong window: first=%q last=%q", turns[0].Text, turns[9].Text)
	}
}

func TestBuildSkipsNonTextMessages(t *testing.T) {
	st := memory.New()
	seedSession(t, st, "s1")

	appendMessage(t, st, "s1", 0, store.RoleCustomer, store.MessageText, "Hola")
	appendMessage(t, st, "s1", 1, store.RoleSystem, store.MessageSystem, "Agent joined")
	appendMessage(t, st, "s1", 2, store.RoleCustomer, store.MessageImage, "receipt.png")
	appendMessage(t, st, "s1", 3, store.RoleAgent, store.MessageText, "Hello")

	turns, err := NewContextBuilder(st, 10).Build(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d: %+v", len(turns), turns)
	}
	if turns[0].Text != "Hola" || turns[1].Text != "Hello" {
		t.Fatalf("unexpected turns: %+v", turns)
	}
}

func TestBuildEmptySession(t *testing.T) {
	st := memory.New()
	seedSession(t, st, "s1")

	turns, err := NewContextBuilder(st, 10).Build(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected no turns, got %d", len(turns))
	}
}
