package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge-server/internal/store"
	"github.com/lingobridge/lingobridge-server/internal/translate"
)

const (
	opTimeout      = 10 * time.Second
	routeTimeout   = 30 * time.Second
	previewRunes   = 120
	welcomeMessage = "Welcome! An agent will be with you shortly."
)

// Router owns session state transitions and real-time fan-out. It is the
// single authority deciding who receives what: room membership, the global
// agent-facing channel, and per-session message ordering all live here.
type Router struct {
	store store.SessionStore
	coord *translate.Coordinator
	log   *zerolog.Logger

	mu       sync.RWMutex
	rooms    map[string]*room
	watchers map[*Client]struct{}
	clients  map[*Client]struct{}

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRouter constructs a router over the given store and coordinator.
func NewRouter(st store.SessionStore, coord *translate.Coordinator, logger *zerolog.Logger) *Router {
	return &Router{
		store:    st,
		coord:    coord,
		log:      logger,
		rooms:    make(map[string]*room),
		watchers: make(map[*Client]struct{}),
		clients:  make(map[*Client]struct{}),
		stop:     make(chan struct{}),
	}
}

// Run blocks until the context is cancelled, then stops all session
// workers and command pumps.
func (r *Router) Run(ctx context.Context) {
	<-ctx.Done()
	r.stopOnce.Do(func() { close(r.stop) })
}

// RegisterClient starts consuming the client's commands.
func (r *Router) RegisterClient(c *Client) {
	r.mu.Lock()
	r.clients[c] = struct{}{}
	r.mu.Unlock()

	go r.pump(c)
}

// UnregisterClient removes the client from every room and the watcher
// set, and stops its command pump. Idempotent.
func (r *Router) UnregisterClient(c *Client) {
	c.markDone()
	r.Leave(c)

	r.mu.Lock()
	delete(r.clients, c)
	r.mu.Unlock()
}

// Leave removes the client from all rooms it belongs to and from the
// agent-facing channel. Idempotent.
func (r *Router) Leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.watchers, c)
	for id, room := range r.rooms {
		if room.remove(c) && room.empty() {
			r.dropRoomLocked(id, room)
		}
	}
}

// pump forwards the client's commands into the router until the client is
// unregistered or the router stops.
func (r *Router) pump(c *Client) {
	for {
		select {
		case <-r.stop:
			return
		case <-c.Done():
			return
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			r.dispatch(c, cmd)
		}
	}
}

func (r *Router) dispatch(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinSession:
		r.joinAsCustomer(c, cmd)
	case CommandAgentJoinSession:
		r.joinAsAgent(c, cmd)
	case CommandSendMessage:
		r.routeMessage(c, cmd)
	case CommandWatchSessions:
		r.watch(c)
	case CommandCloseSession:
		r.closeSession(c, cmd)
	case CommandLeaveSession:
		r.leaveSession(c, cmd)
	default:
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "unknown command")})
	}
}

// joinAsCustomer registers the connection in the session's room, creating
// the session when it does not exist yet. Creation is idempotent: the
// check-and-create runs under the router lock, so a racing agent join can
// never observe a half-created session.
func (r *Router) joinAsCustomer(c *Client, cmd *Command) {
	ctx, cancel := r.opCtx()
	defer cancel()

	sessionID := cmd.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	c.Name = cmd.CustomerName
	c.Role = store.RoleCustomer

	r.mu.Lock()
	session, err := r.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		now := time.Now().UTC()
		session = &store.Session{
			ID:               sessionID,
			CustomerName:     cmd.CustomerName,
			CustomerLanguage: cmd.Language,
			AgentLanguage:    "en",
			Status:           store.SessionWaiting,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		err = r.store.CreateSession(ctx, session)
	}
	if err != nil {
		r.mu.Unlock()
		r.log.Error().Err(err).Str("session_id", sessionID).Msg("customer join failed")
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeStorageFailure, "failed to join session")})
		return
	}
	if session.Status == store.SessionClosed {
		r.mu.Unlock()
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeSessionClosed, "session is closed")})
		return
	}

	room := r.ensureRoomLocked(sessionID)
	room.add(c)
	r.mu.Unlock()

	r.log.Info().
		Str("session_id", sessionID).
		Str("customer", cmd.CustomerName).
		Str("language", cmd.Language).
		Msg("customer joined session")

	// Welcome goes to the joining connection only, and is never persisted.
	c.send(&Event{Kind: EventNewMessage, Message: &store.Message{
		ID:               uuid.NewString(),
		SessionID:        sessionID,
		SenderRole:       store.RoleSystem,
		OriginalText:     welcomeMessage,
		OriginalLanguage: "en",
		MessageType:      store.MessageSystem,
		CreatedAt:        time.Now().UTC(),
	}})

	r.notifyWatchers(&Event{Kind: EventNewSession, Session: session})
}

// joinAsAgent registers an agent connection in an existing session room.
// A missing session is an error surfaced to the caller, not a silent
// no-op: session creation is atomic in joinAsCustomer, so a not-found here
// means a genuinely invalid id.
func (r *Router) joinAsAgent(c *Client, cmd *Command) {
	ctx, cancel := r.opCtx()
	defer cancel()

	c.Name = cmd.AgentID
	c.Role = store.RoleAgent

	r.mu.Lock()
	session, err := r.store.GetSession(ctx, cmd.SessionID)
	if err != nil {
		r.mu.Unlock()
		if errors.Is(err, store.ErrSessionNotFound) {
			c.send(&Event{Kind: EventError, Error: coreError(ErrCodeSessionNotFound, "session not found: "+cmd.SessionID)})
			return
		}
		r.log.Error().Err(err).Str("session_id", cmd.SessionID).Msg("agent join failed")
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeStorageFailure, "failed to join session")})
		return
	}
	if session.Status == store.SessionClosed {
		r.mu.Unlock()
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeSessionClosed, "session is closed")})
		return
	}

	agentID := cmd.AgentID
	agentLang := cmd.AgentLanguage
	if agentLang == "" {
		agentLang = "en"
	}
	active := store.SessionActive
	session, err = r.store.UpdateSession(ctx, cmd.SessionID, store.SessionPatch{
		AgentID:       &agentID,
		AgentLanguage: &agentLang,
		Status:        &active,
	})
	if err != nil {
		r.mu.Unlock()
		r.log.Error().Err(err).Str("session_id", cmd.SessionID).Msg("agent join update failed")
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeStorageFailure, "failed to join session")})
		return
	}

	room := r.ensureRoomLocked(cmd.SessionID)
	room.add(c)
	// Agents see dashboard updates for all sessions.
	r.watchers[c] = struct{}{}
	r.mu.Unlock()

	r.log.Info().
		Str("session_id", cmd.SessionID).
		Str("agent_id", cmd.AgentID).
		Str("language", agentLang).
		Msg("agent joined session")

	r.notifyWatchers(&Event{Kind: EventSessionUpdated, Session: session})
}

// routeMessage validates the message and hands it to the session's worker.
// Enqueue order equals submission order from the connection, and the
// worker persists each message before starting the next one, which yields
// the per-session transcript ordering guarantee.
func (r *Router) routeMessage(c *Client, cmd *Command) {
	if strings.TrimSpace(cmd.Text) == "" {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeEmptyMessage, "message text is empty")})
		return
	}

	ctx, cancel := r.opCtx()
	defer cancel()

	// Validate before touching room state. A room and its worker must only
	// exist for sessions that are actually in the store; creating them for
	// arbitrary client-supplied ids would pin one room per bogus id until
	// shutdown.
	session, err := r.store.GetSession(ctx, cmd.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			c.send(&Event{Kind: EventError, Error: coreError(ErrCodeSessionNotFound, "session not found: "+cmd.SessionID)})
			return
		}
		r.log.Error().Err(err).Str("session_id", cmd.SessionID).Msg("load session for message failed")
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeStorageFailure, "message not delivered")})
		return
	}
	if session.Status == store.SessionClosed {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeSessionClosed, "session is closed")})
		return
	}

	role := cmd.SenderRole
	if role == "" {
		role = c.Role
	}

	job := routeJob{
		sender:           c,
		role:             role,
		text:             cmd.Text,
		declaredLanguage: cmd.DeclaredLanguage,
	}

	// Enqueue under the router lock. Rooms are only dropped under the same
	// lock and only with an empty queue, so a job accepted here is always
	// seen by a live worker; a room reclaimed between iterations just gets
	// recreated. The retry wait covers a full queue.
	for {
		r.mu.Lock()
		room := r.ensureRoomLocked(cmd.SessionID)
		accepted := room.enqueue(job)
		r.mu.Unlock()
		if accepted {
			return
		}

		select {
		case <-r.stop:
			return
		case <-c.Done():
			return
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// watch subscribes the connection to the global agent-facing channel.
func (r *Router) watch(c *Client) {
	r.mu.Lock()
	r.watchers[c] = struct{}{}
	r.mu.Unlock()

	r.log.Debug().Str("client_id", c.ID).Msg("client watching sessions")
}

func (r *Router) closeSession(c *Client, cmd *Command) {
	ctx, cancel := r.opCtx()
	defer cancel()

	if _, err := r.CloseSession(ctx, cmd.SessionID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			c.send(&Event{Kind: EventError, Error: coreError(ErrCodeSessionNotFound, "session not found: "+cmd.SessionID)})
			return
		}
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeStorageFailure, "failed to close session")})
	}
}

// CloseSession moves the session to its terminal state and notifies both
// the room and the agent-facing channel. Closing an already-closed session
// is a no-op. Shared by the socket command and the REST endpoint.
func (r *Router) CloseSession(ctx context.Context, sessionID string) (*store.Session, error) {
	session, err := r.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == store.SessionClosed {
		return session, nil
	}

	closed := store.SessionClosed
	session, err = r.store.UpdateSession(ctx, sessionID, store.SessionPatch{Status: &closed})
	if err != nil {
		r.log.Error().Err(err).Str("session_id", sessionID).Msg("close session failed")
		return nil, err
	}

	r.log.Info().Str("session_id", sessionID).Msg("session closed")

	r.mu.RLock()
	if room, ok := r.rooms[sessionID]; ok {
		room.broadcast(&Event{Kind: EventSessionClosed, Session: session})
	}
	r.mu.RUnlock()

	r.notifyWatchers(&Event{Kind: EventSessionUpdated, Session: session})
	return session, nil
}

func (r *Router) leaveSession(c *Client, cmd *Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[cmd.SessionID]
	if !ok {
		return
	}
	if room.remove(c) && room.empty() {
		r.dropRoomLocked(cmd.SessionID, room)
	}
}

// ensureRoomLocked returns the session's room, creating it and starting
// its worker on first use. Caller holds r.mu.
func (r *Router) ensureRoomLocked(sessionID string) *room {
	if existing, ok := r.rooms[sessionID]; ok {
		return existing
	}
	created := newRoom(sessionID)
	r.rooms[sessionID] = created
	go r.runWorker(created)
	return created
}

// dropRoomLocked removes an empty room and stops its worker. A room with
// pending jobs stays; the worker reclaims it after the last job, so an
// accepted message is never dropped by a disconnect racing its
// translation. Caller holds r.mu.
func (r *Router) dropRoomLocked(sessionID string, room *room) {
	if len(room.jobs) > 0 {
		return
	}
	delete(r.rooms, sessionID)
	close(room.quit)
}

// reclaimIfEmpty drops a room that has no members and no pending jobs.
// A message naming a session nobody has joined still creates its room;
// without reclamation that room and its worker would survive until
// shutdown.
func (r *Router) reclaimIfEmpty(room *room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rooms[room.sessionID]
	if !ok || current != room {
		return
	}
	if room.empty() {
		r.dropRoomLocked(room.sessionID, room)
	}
}

// runWorker drains one session's job queue.
func (r *Router) runWorker(room *room) {
	for {
		select {
		case job := <-room.jobs:
			r.processMessage(room, job)
			r.reclaimIfEmpty(room)
		default:
			select {
			case job := <-room.jobs:
				r.processMessage(room, job)
				r.reclaimIfEmpty(room)
			case <-room.quit:
				return
			case <-r.stop:
				return
			}
		}
	}
}

// processMessage is the main pipeline for one accepted message: resolve
// languages and translate, persist, then fan out. Translator failures are
// absorbed by the coordinator; storage failures surface to the sender only.
func (r *Router) processMessage(room *room, job routeJob) {
	ctx, cancel := context.WithTimeout(context.Background(), routeTimeout)
	defer cancel()

	session, err := r.store.GetSession(ctx, room.sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			job.sender.send(&Event{Kind: EventError, Error: coreError(ErrCodeSessionNotFound, "session not found: "+room.sessionID)})
			return
		}
		r.log.Error().Err(err).Str("session_id", room.sessionID).Msg("load session for message failed")
		job.sender.send(&Event{Kind: EventError, Error: coreError(ErrCodeStorageFailure, "message not delivered")})
		return
	}
	if session.Status == store.SessionClosed {
		job.sender.send(&Event{Kind: EventError, Error: coreError(ErrCodeSessionClosed, "session is closed")})
		return
	}

	msg := &store.Message{
		ID:          uuid.NewString(),
		SessionID:   room.sessionID,
		SenderRole:  job.role,
		MessageType: store.MessageText,
		CreatedAt:   time.Now().UTC(),
	}

	if job.role == store.RoleSystem {
		// System messages are never translated.
		msg.MessageType = store.MessageSystem
		msg.OriginalText = job.text
		msg.OriginalLanguage = firstNonEmptyLang(job.declaredLanguage, "en")
	} else {
		result := r.coord.Translate(ctx, session, job.role, job.text, job.declaredLanguage)
		msg.OriginalText = job.text
		msg.OriginalLanguage = result.SourceLanguage
		if result.Translated {
			translated := result.Text
			targetLang := result.TargetLanguage
			msg.TranslatedText = &translated
			msg.TranslatedLanguage = &targetLang
		}
	}

	if err := r.store.AppendMessage(ctx, msg); err != nil {
		r.log.Error().Err(err).Str("session_id", room.sessionID).Msg("persist message failed")
		job.sender.send(&Event{Kind: EventError, Error: coreError(ErrCodeStorageFailure, "message not delivered")})
		return
	}

	session.UpdatedAt = msg.CreatedAt

	r.mu.RLock()
	room.broadcast(&Event{Kind: EventNewMessage, Message: msg})
	r.mu.RUnlock()

	r.notifyWatchers(&Event{
		Kind:        EventSessionUpdated,
		Session:     session,
		LastMessage: preview(msg.OriginalText),
	})
}

// notifyWatchers fans an event out to the global agent-facing channel.
func (r *Router) notifyWatchers(event *Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for watcher := range r.watchers {
		watcher.send(event)
	}
}

func (r *Router) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "…"
}

func firstNonEmptyLang(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return "en"
}
