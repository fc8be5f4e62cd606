package core

import "github.com/lingobridge/lingobridge-server/internal/store"

// room groups the live connections of one session and owns that session's
// message ordering point: jobs are drained by a single worker goroutine,
// so messages of one session persist in submission order while sessions
// stay independent of each other.
type room struct {
	sessionID string
	clients   map[*Client]struct{}
	jobs      chan routeJob
	quit      chan struct{}
}

type routeJob struct {
	sender           *Client
	role             store.SenderRole
	text             string
	declaredLanguage string
}

func newRoom(sessionID string) *room {
	return &room{
		sessionID: sessionID,
		clients:   make(map[*Client]struct{}),
		jobs:      make(chan routeJob, 64),
		quit:      make(chan struct{}),
	}
}

// add inserts a client into the room. Returns true if newly added.
func (r *room) add(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// remove deletes a client from the room. Returns true if removed.
func (r *room) remove(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// enqueue offers a job to the worker without blocking. Returns false when
// the queue is full. Must be called under the router lock so it cannot
// race the room being dropped.
func (r *room) enqueue(job routeJob) bool {
	select {
	case r.jobs <- job:
		return true
	default:
		return false
	}
}

// broadcast sends an event to every client in the room. Sends never
// block: one dead or slow connection must not delay the rest.
func (r *room) broadcast(event *Event) {
	for client := range r.clients {
		client.send(event)
	}
}

// empty returns true if no clients remain in the room.
func (r *room) empty() bool {
	return len(r.clients) == 0
}
