// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// QuestionSubmitted is sent when the user submits a question.
type QuestionSubmitted struct {
	Question string
}

// StreamOpened carries the event channel of a freshly started answer stream.
type StreamOpened struct {
	Events <-chan domain.StreamEvent
	Err    error
}

// StreamEventReceived carries one event read from the answer stream.
type StreamEventReceived struct {
	Event domain.StreamEvent
}

// StreamClosed signals the answer stream channel was closed.
type StreamClosed struct{}

// SuggestionsLoaded carries starter questions for an empty transcript.
type SuggestionsLoaded struct {
	Questions []string
}

// SessionsLoaded carries the list of stored chat session ids.
type SessionsLoaded struct {
	Sessions []string
	Err      error
}

// SessionSelected is sent when a stored session is chosen for replay.
type SessionSelected struct {
	SessionID string
}

// HistoryLoaded carries the messages of a stored session.
type HistoryLoaded struct {
	SessionID string
	Messages  []domain.ChatMessage
	Err       error
}

// SessionCleared signals a stored session was deleted.
type SessionCleared struct {
	SessionID string
	Err       error
}

// StatusLoaded carries the knowledge store counters for the status line.
type StatusLoaded struct {
	Status domain.StoreStatus
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the question and answer view.
	ViewChat ViewType = iota
	// ViewSessions is the stored session browser.
	ViewSessions
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewSessions:
		return "sessions"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
