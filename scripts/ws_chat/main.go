// Command ws_chat is an interactive terminal client for manual testing.
// Run one instance as a customer and another as the agent:
//
//	go run ./scripts/ws_chat -role customer -name Dana -lang es -session demo
//	go run ./scripts/ws_chat -role agent -name agent-7 -session demo
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/lingobridge/lingobridge-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	role := flag.String("role", "customer", "customer or agent")
	name := flag.String("name", "cli-user", "customer name or agent id")
	lang := flag.String("lang", "en", "language code")
	session := flag.String("session", "demo", "session id")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(frameType string, data any) {
		payload, marshalErr := json.Marshal(data)
		if marshalErr != nil {
			log.Printf("marshal %s: %v", frameType, marshalErr)
			return
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: frameType, Data: payload}); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	switch *role {
	case "customer":
		send(proto.InboundTypeJoinSession, proto.JoinSessionData{
			SessionID:    *session,
			CustomerName: *name,
			Language:     *lang,
		})
	case "agent":
		send(proto.InboundTypeAgentJoinSession, proto.AgentJoinSessionData{
			SessionID:     *session,
			AgentID:       *name,
			AgentLanguage: *lang,
		})
	default:
		return fmt.Errorf("unknown role %q", *role)
	}

	fmt.Printf("Connected to %s as %s (%s) in session %s\n", *addr, *name, *role, *session)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, *session, send)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var frame struct {
			Type  string          `json:"type"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch frame.Type {
		case proto.OutboundTypeNewMessage:
			var msg proto.MessagePayload
			if err := json.Unmarshal(frame.Data, &msg); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			line := msg.OriginalText
			if msg.TranslatedText != nil {
				line = fmt.Sprintf("%s (orig: %s)", *msg.TranslatedText, msg.OriginalText)
			}
			fmt.Printf("[%s] %s\n", msg.SenderRole, line)
		case proto.OutboundTypeSessionUpdated, proto.OutboundTypeNewSession, proto.OutboundTypeSessionClosed:
			var session proto.SessionPayload
			if err := json.Unmarshal(frame.Data, &session); err != nil {
				log.Printf("unmarshal session: %v", err)
				continue
			}
			fmt.Printf("[session %s] status=%s last=%q\n", session.ID, session.Status, session.LastMessage)
		case proto.OutboundTypeError:
			if frame.Error != nil {
				fmt.Printf("[error] %s: %s\n", frame.Error.Code, frame.Error.Message)
			}
		default:
			fmt.Printf("frame=%s data=%s\n", frame.Type, string(frame.Data))
		}
	}
}

func writeLoop(ctx context.Context, session string, send func(string, any)) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			send(proto.InboundTypeSendMessage, proto.SendMessageData{
				SessionID:    session,
				OriginalText: text,
			})
		}
	}
}
