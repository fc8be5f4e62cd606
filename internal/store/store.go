package store

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session id does not exist.
var ErrSessionNotFound = errors.New("session not found")

// SessionStatus defines the lifecycle state of a support session.
type SessionStatus string

const (
	// SessionWaiting means a customer opened the session and no agent has joined yet.
	SessionWaiting SessionStatus = "WAITING"
	// SessionActive means an agent has joined and the conversation is live.
	SessionActive SessionStatus = "ACTIVE"
	// SessionClosed is terminal; a closed session never reopens.
	SessionClosed SessionStatus = "CLOSED"
)

// SenderRole identifies who authored a message.
type SenderRole string

const (
	RoleCustomer SenderRole = "CUSTOMER"
	RoleAgent    SenderRole = "AGENT"
	RoleSystem   SenderRole = "SYSTEM"
)

// MessageType defines the kind of message content.
type MessageType string

const (
	MessageText   MessageType = "TEXT"
	MessageImage  MessageType = "IMAGE"
	MessageSystem MessageType = "SYSTEM"
)

// Session represents one customer-support conversation thread.
type Session struct {
	ID               string
	CustomerName     string
	CustomerLanguage string // ISO code, e.g. "es"
	AgentID          *string
	AgentLanguage    string // ISO code, defaults to "en"
	Status           SessionStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Message represents a persisted chat message. Messages are append-only:
// the core never mutates or deletes them.
type Message struct {
	ID                 string
	SessionID          string
	SenderRole         SenderRole
	OriginalText       string
	OriginalLanguage   string
	TranslatedText     *string
	TranslatedLanguage *string
	MessageType        MessageType
	ImageURL           *string
	CreatedAt          time.Time
}

// SessionPatch holds optional session fields to update. Nil fields are
// left untouched. UpdatedAt is always bumped by the store.
type SessionPatch struct {
	AgentID       *string
	AgentLanguage *string
	Status        *SessionStatus
}

// SessionStore handles session and message persistence.
//
// Implementations must guarantee that AppendMessage is atomic with respect
// to concurrent appends to the same session, and that ListRecentMessages
// reflects every previously completed AppendMessage call.
type SessionStore interface {
	// CreateSession persists a new session. The caller provides the ID.
	CreateSession(ctx context.Context, session *Session) error

	// GetSession retrieves a session by ID.
	// Returns ErrSessionNotFound if the id does not exist.
	GetSession(ctx context.Context, id string) (*Session, error)

	// UpdateSession applies a patch to an existing session and bumps UpdatedAt.
	// Returns the updated session, or ErrSessionNotFound.
	UpdateSession(ctx context.Context, id string, patch SessionPatch) (*Session, error)

	// ListSessions lists sessions ordered by UpdatedAt descending,
	// optionally filtered by status.
	ListSessions(ctx context.Context, status *SessionStatus) ([]*Session, error)

	// AppendMessage persists a message and bumps the owning session's UpdatedAt.
	// Returns ErrSessionNotFound if the session does not exist.
	AppendMessage(ctx context.Context, msg *Message) error

	// ListRecentMessages retrieves up to limit most recent messages for a
	// session ordered newest-first.
	ListRecentMessages(ctx context.Context, sessionID string, limit int) ([]*Message, error)

	// ListMessages retrieves the full transcript in chronological order.
	ListMessages(ctx context.Context, sessionID string) ([]*Message, error)

	// Close closes the underlying storage.
	Close() error
}
