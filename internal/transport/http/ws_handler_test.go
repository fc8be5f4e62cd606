package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/lingobridge/lingobridge-server/internal/config"
	"github.com/lingobridge/lingobridge-server/internal/proto"
)

type wsFrame struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func dialWS(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, frameType string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", frameType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: frameType, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", frameType, err)
	}
}

// readFrame reads frames until one of the wanted type arrives, discarding
// everything else (watcher traffic is interleaved with room traffic).
func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, wantType string) wsFrame {
	t.Helper()

	for {
		var frame wsFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("read waiting for %s: %v", wantType, err)
		}
		if frame.Type == wantType {
			return frame
		}
	}
}

func TestWebSocketCustomerAgentExchange(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	customer := dialWS(t, ctx, env.wsURL())
	agent := dialWS(t, ctx, env.wsURL())

	sendFrame(t, ctx, customer, proto.InboundTypeJoinSession, proto.JoinSessionData{
		SessionID:    "ws-sess-1",
		CustomerName: "Dana",
		Language:     "es",
	})

	// The welcome message confirms the session exists before the agent joins.
	welcome := readFrame(t, ctx, customer, proto.OutboundTypeNewMessage)
	var welcomeMsg proto.MessagePayload
	if err := json.Unmarshal(welcome.Data, &welcomeMsg); err != nil {
		t.Fatalf("unmarshal welcome: %v", err)
	}
	if welcomeMsg.SenderRole != "SYSTEM" {
		t.Fatalf("welcome sender role = %s, want SYSTEM", welcomeMsg.SenderRole)
	}

	sendFrame(t, ctx, agent, proto.InboundTypeAgentJoinSession, proto.AgentJoinSessionData{
		SessionID: "ws-sess-1",
		AgentID:   "agent-7",
	})

	updated := readFrame(t, ctx, agent, proto.OutboundTypeSessionUpdated)
	var session proto.SessionPayload
	if err := json.Unmarshal(updated.Data, &session); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	if session.Status != "ACTIVE" {
		t.Fatalf("session status after agent join = %s, want ACTIVE", session.Status)
	}

	sendFrame(t, ctx, customer, proto.InboundTypeSendMessage, proto.SendMessageData{
		SessionID:    "ws-sess-1",
		OriginalText: "hola",
	})

	for _, conn := range []*websocket.Conn{customer, agent} {
		frame := readFrame(t, ctx, conn, proto.OutboundTypeNewMessage)
		var msg proto.MessagePayload
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			t.Fatalf("unmarshal message: %v", err)
		}
		if msg.OriginalText != "hola" {
			t.Fatalf("original text = %q, want hola", msg.OriginalText)
		}
		if msg.TranslatedText == nil || *msg.TranslatedText != "[en] hola" {
			t.Fatalf("translated text = %v, want [en] hola", msg.TranslatedText)
		}
	}
}

func TestWebSocketAgentJoinMissingSession(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	agent := dialWS(t, ctx, env.wsURL())

	sendFrame(t, ctx, agent, proto.InboundTypeAgentJoinSession, proto.AgentJoinSessionData{
		SessionID: "does-not-exist",
		AgentID:   "agent-7",
	})

	frame := readFrame(t, ctx, agent, proto.OutboundTypeError)
	if frame.Error == nil || frame.Error.Code != "session_not_found" {
		t.Fatalf("unexpected error frame: %+v", frame.Error)
	}
}

func TestWebSocketUnknownFrameType(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, env.wsURL())

	sendFrame(t, ctx, conn, "bogus", map[string]string{})

	frame := readFrame(t, ctx, conn, proto.OutboundTypeError)
	if frame.Error == nil || frame.Error.Code != "invalid_message" {
		t.Fatalf("unexpected error frame: %+v", frame.Error)
	}
}

func TestWebSocketMessageRateLimit(t *testing.T) {
	env := startTestServer(t, func(cfg *config.Config, _ *testDeps) {
		cfg.WS.MessageRateLimit = 1
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	customer := dialWS(t, ctx, env.wsURL())

	sendFrame(t, ctx, customer, proto.InboundTypeJoinSession, proto.JoinSessionData{
		SessionID:    "rl-sess",
		CustomerName: "Dana",
		Language:     "en",
	})
	readFrame(t, ctx, customer, proto.OutboundTypeNewMessage)

	sendFrame(t, ctx, customer, proto.InboundTypeSendMessage, proto.SendMessageData{
		SessionID:    "rl-sess",
		OriginalText: "first",
	})
	sendFrame(t, ctx, customer, proto.InboundTypeSendMessage, proto.SendMessageData{
		SessionID:    "rl-sess",
		OriginalText: "second",
	})

	frame := readFrame(t, ctx, customer, proto.OutboundTypeError)
	if frame.Error == nil || frame.Error.Code != "rate_limited" {
		t.Fatalf("unexpected error frame: %+v", frame.Error)
	}
}
