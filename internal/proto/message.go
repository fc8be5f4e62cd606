package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinSession      = "join-session"
	InboundTypeAgentJoinSession = "agent-join-session"
	InboundTypeSendMessage      = "send-message"
	InboundTypeWatchSessions    = "watch-sessions"
	InboundTypeCloseSession     = "close-session"
	InboundTypeLeaveSession     = "leave-session"

	OutboundTypeNewMessage     = "new-message"
	OutboundTypeNewSession     = "new-session"
	OutboundTypeSessionUpdated = "session-updated"
	OutboundTypeSessionClosed  = "session-closed"
	OutboundTypeError          = "error"
)

// JoinSessionData is sent by a customer to enter (or create) a session.
type JoinSessionData struct {
	SessionID    string `json:"sessionId,omitempty"`
	CustomerName string `json:"customerName"`
	Language     string `json:"language"`
}

// AgentJoinSessionData is sent by an agent to pick up a session.
type AgentJoinSessionData struct {
	SessionID     string `json:"sessionId"`
	AgentID       string `json:"agentId"`
	AgentLanguage string `json:"agentLanguage,omitempty"`
}

// SendMessageData is a chat message from either participant.
type SendMessageData struct {
	SessionID        string `json:"sessionId"`
	SenderRole       string `json:"senderRole"`
	OriginalText     string `json:"originalText"`
	OriginalLanguage string `json:"originalLanguage,omitempty"`
}

// SessionRefData carries just a session id (close-session, leave-session).
type SessionRefData struct {
	SessionID string `json:"sessionId"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// MessagePayload is the canonical persisted form of a chat message as
// delivered to every room member.
type MessagePayload struct {
	ID                 string  `json:"id"`
	SessionID          string  `json:"sessionId"`
	SenderRole         string  `json:"senderRole"`
	OriginalText       string  `json:"originalText"`
	OriginalLanguage   string  `json:"originalLanguage"`
	TranslatedText     *string `json:"translatedText,omitempty"`
	TranslatedLanguage *string `json:"translatedLanguage,omitempty"`
	MessageType        string  `json:"messageType"`
	ImageURL           *string `json:"imageUrl,omitempty"`
	CreatedAt          string  `json:"createdAt"`
}

// SessionPayload describes a session on the agent-facing channel.
type SessionPayload struct {
	ID               string  `json:"id"`
	CustomerName     string  `json:"customerName"`
	CustomerLanguage string  `json:"customerLanguage"`
	AgentID          *string `json:"agentId,omitempty"`
	AgentLanguage    string  `json:"agentLanguage"`
	Status           string  `json:"status"`
	LastMessage      string  `json:"lastMessage,omitempty"`
	UpdatedAt        string  `json:"updatedAt"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
