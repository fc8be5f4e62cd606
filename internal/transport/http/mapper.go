package http

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lingobridge/lingobridge-server/internal/core"
	"github.com/lingobridge/lingobridge-server/internal/proto"
	"github.com/lingobridge/lingobridge-server/internal/store"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinSession:
		var join proto.JoinSessionData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.CustomerName == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Message: "customerName is required"}, nil
		}
		if join.Language == "" {
			join.Language = "en"
		}
		return &core.Command{
			Kind:         core.CommandJoinSession,
			SessionID:    join.SessionID,
			CustomerName: join.CustomerName,
			Language:     join.Language,
		}, nil, nil
	case proto.InboundTypeAgentJoinSession:
		var join proto.AgentJoinSessionData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.SessionID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Message: "sessionId is required"}, nil
		}
		if join.AgentID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Message: "agentId is required"}, nil
		}
		return &core.Command{
			Kind:          core.CommandAgentJoinSession,
			SessionID:     join.SessionID,
			AgentID:       join.AgentID,
			AgentLanguage: join.AgentLanguage,
		}, nil, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.SessionID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Message: "sessionId is required"}, nil
		}
		role, ok := parseSenderRole(msg.SenderRole)
		if !ok {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Message: "unknown senderRole"}, nil
		}
		return &core.Command{
			Kind:             core.CommandSendMessage,
			SessionID:        msg.SessionID,
			SenderRole:       role,
			Text:             msg.OriginalText,
			DeclaredLanguage: msg.OriginalLanguage,
		}, nil, nil
	case proto.InboundTypeWatchSessions:
		return &core.Command{Kind: core.CommandWatchSessions}, nil, nil
	case proto.InboundTypeCloseSession, proto.InboundTypeLeaveSession:
		var ref proto.SessionRefData
		if err := json.Unmarshal(inbound.Data, &ref); err != nil {
			return nil, nil, err
		}
		if ref.SessionID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Message: "sessionId is required"}, nil
		}
		kind := core.CommandCloseSession
		if inbound.Type == proto.InboundTypeLeaveSession {
			kind = core.CommandLeaveSession
		}
		return &core.Command{Kind: kind, SessionID: ref.SessionID}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Message: "unknown message type"}, nil
	}
}

// parseSenderRole accepts the wire role, case-insensitively. An empty role
// is valid: the router falls back to the role the connection joined with.
func parseSenderRole(raw string) (store.SenderRole, bool) {
	switch store.SenderRole(strings.ToUpper(raw)) {
	case "":
		return "", true
	case store.RoleCustomer:
		return store.RoleCustomer, true
	case store.RoleAgent:
		return store.RoleAgent, true
	case store.RoleSystem:
		return store.RoleSystem, true
	default:
		return "", false
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventNewMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeNewMessage,
			Data: messagePayload(event.Message),
		}
	case core.EventNewSession:
		return proto.Outbound{
			Type: proto.OutboundTypeNewSession,
			Data: sessionPayload(event.Session, ""),
		}
	case core.EventSessionUpdated:
		return proto.Outbound{
			Type: proto.OutboundTypeSessionUpdated,
			Data: sessionPayload(event.Session, event.LastMessage),
		}
	case core.EventSessionClosed:
		return proto.Outbound{
			Type: proto.OutboundTypeSessionClosed,
			Data: sessionPayload(event.Session, ""),
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Message: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Message: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Message: "unknown event"}}
	}
}

func messagePayload(msg *store.Message) proto.MessagePayload {
	return proto.MessagePayload{
		ID:                 msg.ID,
		SessionID:          msg.SessionID,
		SenderRole:         string(msg.SenderRole),
		OriginalText:       msg.OriginalText,
		OriginalLanguage:   msg.OriginalLanguage,
		TranslatedText:     msg.TranslatedText,
		TranslatedLanguage: msg.TranslatedLanguage,
		MessageType:        string(msg.MessageType),
		ImageURL:           msg.ImageURL,
		CreatedAt:          msg.CreatedAt.Format(time.RFC3339),
	}
}

func sessionPayload(session *store.Session, lastMessage string) proto.SessionPayload {
	return proto.SessionPayload{
		ID:               session.ID,
		CustomerName:     session.CustomerName,
		CustomerLanguage: session.CustomerLanguage,
		AgentID:          session.AgentID,
		AgentLanguage:    session.AgentLanguage,
		Status:           string(session.Status),
		LastMessage:      lastMessage,
		UpdatedAt:        session.UpdatedAt.Format(time.RFC3339),
	}
}
