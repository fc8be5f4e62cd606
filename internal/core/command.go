package core

import "github.com/lingobridge/lingobridge-server/internal/store"

// CommandKind describes what the connection wants to do.
type CommandKind int

const (
	// CommandJoinSession registers a customer connection in a session room,
	// creating the session when it does not exist yet.
	CommandJoinSession CommandKind = iota
	// CommandAgentJoinSession registers an agent connection in an existing
	// session room and activates the session.
	CommandAgentJoinSession
	// CommandSendMessage routes a chat message through the translation
	// pipeline and broadcasts it to the session room.
	CommandSendMessage
	// CommandWatchSessions subscribes the connection to the global
	// agent-facing channel (new-session / session-updated events).
	CommandWatchSessions
	// CommandCloseSession moves a session to its terminal CLOSED state.
	CommandCloseSession
	// CommandLeaveSession removes the connection from one session room.
	CommandLeaveSession
)

// Command represents an action requested by a connection.
type Command struct {
	Kind      CommandKind
	SessionID string

	// Join fields.
	CustomerName  string
	Language      string
	AgentID       string
	AgentLanguage string

	// Send fields.
	SenderRole       store.SenderRole
	Text             string
	DeclaredLanguage string
}
