package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lingobridge/lingobridge-server/internal/store"
)

// Store is an in-memory SessionStore. It backs tests and local development
// where durability is not required.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*store.Session
	messages map[string][]*store.Message
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		sessions: make(map[string]*store.Session),
		messages: make(map[string][]*store.Message),
	}
}

// CreateSession persists a new session.
func (s *Store) CreateSession(_ context.Context, session *store.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[cp.ID] = &cp
	if _, ok := s.messages[cp.ID]; !ok {
		s.messages[cp.ID] = make([]*store.Message, 0, 16)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(_ context.Context, id string) (*store.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

// UpdateSession applies a patch and bumps UpdatedAt.
func (s *Store) UpdateSession(_ context.Context, id string, patch store.SessionPatch) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}

	if patch.AgentID != nil {
		agentID := *patch.AgentID
		session.AgentID = &agentID
	}
	if patch.AgentLanguage != nil {
		session.AgentLanguage = *patch.AgentLanguage
	}
	if patch.Status != nil {
		session.Status = *patch.Status
	}
	session.UpdatedAt = time.Now().UTC()

	cp := *session
	return &cp, nil
}

// ListSessions lists sessions newest-activity-first, optionally by status.
func (s *Store) ListSessions(_ context.Context, status *store.SessionStatus) ([]*store.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*store.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if status != nil && session.Status != *status {
			continue
		}
		cp := *session
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// AppendMessage persists a message and bumps the session's UpdatedAt.
func (s *Store) AppendMessage(_ context.Context, msg *store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[msg.SessionID]
	if !ok {
		return store.ErrSessionNotFound
	}

	cp := *msg
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.messages[cp.SessionID] = append(s.messages[cp.SessionID], &cp)
	session.UpdatedAt = cp.CreatedAt
	return nil
}

// ListRecentMessages returns up to limit messages, newest first.
func (s *Store) ListRecentMessages(_ context.Context, sessionID string, limit int) ([]*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]

	start := len(msgs) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}

	out := make([]*store.Message, 0, len(msgs)-start)
	for i := len(msgs) - 1; i >= start; i-- {
		cp := *msgs[i]
		out = append(out, &cp)
	}
	return out, nil
}

// ListMessages returns the full transcript in chronological order.
func (s *Store) ListMessages(_ context.Context, sessionID string) ([]*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]

	out := make([]*store.Message, 0, len(msgs))
	for _, m := range msgs {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
