package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge-server/internal/core"
	"github.com/lingobridge/lingobridge-server/internal/proto"
	"github.com/lingobridge/lingobridge-server/internal/store"
)

// SessionHandlers provides HTTP handlers for session management endpoints.
type SessionHandlers struct {
	store  store.SessionStore
	router *core.Router
	log    *zerolog.Logger
}

// NewSessionHandlers creates a new session handlers instance.
func NewSessionHandlers(st store.SessionStore, router *core.Router, logger *zerolog.Logger) *SessionHandlers {
	return &SessionHandlers{
		store:  st,
		router: router,
		log:    logger,
	}
}

// CreateSessionRequest represents the create session request body.
type CreateSessionRequest struct {
	CustomerName string `json:"customerName" binding:"required,min=1,max=64"`
	Language     string `json:"language" binding:"required,min=2,max=16"`
}

// SessionResponse wraps a single session.
type SessionResponse struct {
	Success bool                 `json:"success"`
	Session proto.SessionPayload `json:"session"`
}

// SessionListResponse wraps a session listing.
type SessionListResponse struct {
	Success  bool                   `json:"success"`
	Sessions []proto.SessionPayload `json:"sessions"`
}

// MessageListResponse wraps a session transcript.
type MessageListResponse struct {
	Success  bool                   `json:"success"`
	Messages []proto.MessagePayload `json:"messages"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateSession creates a waiting session without a socket connection.
// POST /api/sessions
func (h *SessionHandlers) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create session request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	now := time.Now().UTC()
	session := &store.Session{
		ID:               uuid.NewString(),
		CustomerName:     req.CustomerName,
		CustomerLanguage: req.Language,
		AgentLanguage:    "en",
		Status:           store.SessionWaiting,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.store.CreateSession(c.Request.Context(), session); err != nil {
		h.log.Error().Err(err).Str("customer", req.CustomerName).Msg("failed to create session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("session_id", session.ID).Str("customer", req.CustomerName).Msg("session created")
	c.JSON(http.StatusCreated, SessionResponse{Success: true, Session: sessionPayload(session, "")})
}

// ListSessions lists sessions, optionally filtered by status.
// GET /api/sessions?status=WAITING
func (h *SessionHandlers) ListSessions(c *gin.Context) {
	var filter *store.SessionStatus
	if raw := c.Query("status"); raw != "" {
		status := store.SessionStatus(strings.ToUpper(raw))
		switch status {
		case store.SessionWaiting, store.SessionActive, store.SessionClosed:
			filter = &status
		default:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown status filter"})
			return
		}
	}

	sessions, err := h.store.ListSessions(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list sessions")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	payloads := make([]proto.SessionPayload, 0, len(sessions))
	for _, session := range sessions {
		payloads = append(payloads, sessionPayload(session, h.lastMessagePreview(c, session.ID)))
	}

	c.JSON(http.StatusOK, SessionListResponse{Success: true, Sessions: payloads})
}

// lastMessagePreview fetches the newest message text for dashboard rows.
// Best-effort: a read failure just leaves the preview empty.
func (h *SessionHandlers) lastMessagePreview(c *gin.Context, sessionID string) string {
	messages, err := h.store.ListRecentMessages(c.Request.Context(), sessionID, 1)
	if err != nil || len(messages) == 0 {
		return ""
	}
	return truncateRunes(messages[0].OriginalText, 120)
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}

// GetSession returns a single session by id.
// GET /api/sessions/:id
func (h *SessionHandlers) GetSession(c *gin.Context) {
	session, err := h.store.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
			return
		}
		h.log.Error().Err(err).Str("session_id", c.Param("id")).Msg("failed to load session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{Success: true, Session: sessionPayload(session, "")})
}

// ListMessages returns the session transcript in chronological order.
// GET /api/sessions/:id/messages
func (h *SessionHandlers) ListMessages(c *gin.Context) {
	sessionID := c.Param("id")

	if _, err := h.store.GetSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
			return
		}
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("failed to load session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	messages, err := h.store.ListMessages(c.Request.Context(), sessionID)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	payloads := make([]proto.MessagePayload, 0, len(messages))
	for _, msg := range messages {
		payloads = append(payloads, messagePayload(msg))
	}

	c.JSON(http.StatusOK, MessageListResponse{Success: true, Messages: payloads})
}

// CloseSession closes a session. Goes through the router so connected
// room members and watchers hear about it.
// PATCH /api/sessions/:id/close
func (h *SessionHandlers) CloseSession(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.router.CloseSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
			return
		}
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("failed to close session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{Success: true, Session: sessionPayload(session, "")})
}
