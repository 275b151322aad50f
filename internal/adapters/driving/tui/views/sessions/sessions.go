// Package sessions provides the stored chat session browser for the TUI.
package sessions

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shoplens/shoplens-cli/internal/adapters/driving/tui/keymap"
	"github.com/shoplens/shoplens-cli/internal/adapters/driving/tui/messages"
	"github.com/shoplens/shoplens-cli/internal/adapters/driving/tui/styles"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driven"
)

// View lists stored chat sessions for replay or deletion.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	history driven.ChatHistoryStore
	ctx     context.Context

	sessions []string
	selected int
	width    int
	height   int
	err      error
}

// NewView creates a new session browser view.
func NewView(s *styles.Styles, km *keymap.KeyMap, history driven.ChatHistoryStore) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:  s,
		keymap:  km,
		history: history,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the session list.
func (v *View) Init() tea.Cmd {
	return v.loadSessions()
}

// Sessions returns the loaded session ids.
func (v *View) Sessions() []string {
	return v.sessions
}

// Selected returns the selected index.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Update handles messages for the session browser.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SessionsLoaded:
		v.err = msg.Err
		v.sessions = msg.Sessions
		if v.selected >= len(v.sessions) {
			v.selected = 0
		}
		return v, nil

	case messages.SessionCleared:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.loadSessions()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Down):
		if v.selected < len(v.sessions)-1 {
			v.selected++
		}
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Select):
		if len(v.sessions) == 0 {
			return v, nil
		}
		return v, v.loadHistory(v.sessions[v.selected])

	case keymap.Matches(keyStr, v.keymap.Delete):
		if len(v.sessions) == 0 {
			return v, nil
		}
		return v, v.clearSession(v.sessions[v.selected])
	}

	return v, nil
}

func (v *View) loadSessions() tea.Cmd {
	return func() tea.Msg {
		if v.history == nil {
			return messages.SessionsLoaded{}
		}
		sessions, err := v.history.ListSessions(v.ctx)
		return messages.SessionsLoaded{Sessions: sessions, Err: err}
	}
}

func (v *View) loadHistory(sessionID string) tea.Cmd {
	return func() tea.Msg {
		msgs, err := v.history.ListMessages(v.ctx, sessionID)
		return messages.HistoryLoaded{SessionID: sessionID, Messages: msgs, Err: err}
	}
}

func (v *View) clearSession(sessionID string) tea.Cmd {
	return func() tea.Msg {
		err := v.history.ClearSession(v.ctx, sessionID)
		return messages.SessionCleared{SessionID: sessionID, Err: err}
	}
}

// View renders the session browser.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Chat Sessions"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
	case len(v.sessions) == 0:
		b.WriteString(v.styles.Muted.Render("No stored sessions."))
	default:
		for i, id := range v.sessions {
			line := fmt.Sprintf("  %s", shortID(id))
			if i == v.selected {
				line = v.styles.Selected.Render("> " + shortID(id))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	hints := make([]string, 0, 4)
	for _, binding := range v.keymap.SessionsHelp() {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	b.WriteString(v.styles.Help.Render(strings.Join(hints, " | ")))

	return b.String()
}

// shortID trims a uuid to a readable prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
