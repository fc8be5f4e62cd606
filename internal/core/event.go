package core

import "github.com/lingobridge/lingobridge-server/internal/store"

// EventKind is a notification the router emits to connections.
type EventKind int

const (
	// EventNewMessage delivers a chat message to a session room. The
	// payload is the canonical persisted form, so the sender sees exactly
	// what everyone else sees.
	EventNewMessage EventKind = iota
	// EventNewSession tells agent-facing subscribers that a session was
	// created or re-joined by its customer.
	EventNewSession
	// EventSessionUpdated tells agent-facing subscribers that a session
	// saw activity (agent join, new message, close).
	EventSessionUpdated
	// EventSessionClosed tells a session room that the session reached its
	// terminal state.
	EventSessionClosed
	// EventError reports a domain error to the originating connection only.
	EventError
)

// Event is sent to connections to describe what happened.
type Event struct {
	Kind    EventKind
	Message *store.Message
	Session *store.Session
	// LastMessage is a short preview carried by EventSessionUpdated so
	// agent dashboards can show activity without joining every room.
	LastMessage string
	Error       *CoreError
}
