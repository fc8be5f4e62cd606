package translate

import (
	"context"

	"github.com/lingobridge/lingobridge-server/internal/store"
)

// ContextBuilder assembles the recent conversation history used for
// context-aware translation. It is a pure read over the store: no caching,
// every call reflects the persisted transcript at that moment. It must run
// before the new message is persisted; the new message is appended in
// memory by the caller.
type ContextBuilder struct {
	store store.SessionStore
	depth int
}

// NewContextBuilder bounds the history window to depth messages.
func NewContextBuilder(st store.SessionStore, depth int) *ContextBuilder {
	if depth <= 0 {
		depth = 10
	}
	return &ContextBuilder{store: st, depth: depth}
}

// Build returns up to depth prior TEXT messages of the session in
// chronological order, each tagged with a speaker label.
func (b *ContextBuilder) Build(ctx context.Context, sessionID string) ([]Turn, error) {
	// Fetch a wider window newest-first, then keep the most recent depth
	// TEXT messages; image and system entries carry no translatable history.
	recent, err := b.store.ListRecentMessages(ctx, sessionID, b.depth*2)
	if err != nil {
		return nil, err
	}

	turns := make([]Turn, 0, b.depth)
	for _, msg := range recent {
		if msg.MessageType != store.MessageText {
			continue
		}
		turns = append(turns, Turn{
			Speaker: SpeakerLabel(msg.SenderRole),
			Text:    msg.OriginalText,
		})
		if len(turns) == b.depth {
			break
		}
	}

	// Reverse newest-first to chronological.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// SpeakerLabel maps a sender role to the display name used in
// conversation context.
func SpeakerLabel(role store.SenderRole) string {
	switch role {
	case store.RoleCustomer:
		return "Customer"
	case store.RoleAgent:
		return "Agent"
	default:
		return "System"
	}
}
