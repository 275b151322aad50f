package domain

import "time"

// ChatRole identifies the author of a chat message.
type ChatRole string

// Chat roles.
const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one persisted turn of a chat session.
type ChatMessage struct {
	// ID is a unique message identifier.
	ID string `json:"id"`

	// SessionID groups messages into a conversation.
	SessionID string `json:"sessionId"`

	// Role is who authored the message.
	Role ChatRole `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Sources are the answer's source references, assistant messages only.
	Sources []SourceReference `json:"sources,omitempty"`

	// Confidence is the answer confidence, assistant messages only.
	Confidence float64 `json:"confidence,omitempty"`

	// CreatedAt is when the message was recorded.
	CreatedAt time.Time `json:"createdAt"`
}
