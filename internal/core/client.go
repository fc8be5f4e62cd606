package core

import (
	"sync"

	"github.com/lingobridge/lingobridge-server/internal/store"
)

// Client is one live connection as seen by the router. The transport layer
// owns the socket; the router only pushes events into the Events channel
// and pulls commands from Commands.
type Client struct {
	ID   string
	Name string
	Role store.SenderRole

	Commands chan *Command
	Events   chan *Event

	done     chan struct{}
	doneOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
		done:     make(chan struct{}),
	}
}

// Done is closed when the client is unregistered from the router.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

// send delivers an event without blocking. Slow consumers lose events
// rather than stalling the router.
func (c *Client) send(event *Event) {
	select {
	case c.Events <- event:
	default:
	}
}
