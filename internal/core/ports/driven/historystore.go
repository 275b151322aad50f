package driven

import (
	"context"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// ChatHistoryStore durably persists chat sessions.
//
// This is an optional service - when nil, conversations are not recorded.
type ChatHistoryStore interface {
	// SaveMessage appends one message to its session.
	SaveMessage(ctx context.Context, msg *domain.ChatMessage) error

	// ListMessages returns a session's messages in chronological order.
	ListMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)

	// ListSessions returns all known session ids, most recent first.
	ListSessions(ctx context.Context) ([]string, error)

	// ClearSession removes all messages of one session.
	ClearSession(ctx context.Context, sessionID string) error
}
