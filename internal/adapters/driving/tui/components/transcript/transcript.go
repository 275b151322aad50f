// Package transcript renders the chat transcript in a scrollable viewport.
package transcript

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shoplens/shoplens-cli/internal/adapters/driving/tui/styles"
	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// Turn is one rendered exchange turn.
type Turn struct {
	// Role is who authored the turn.
	Role domain.ChatRole

	// Content is the turn text, accumulated fragment by fragment for
	// streaming assistant turns.
	Content string

	// Sources are the cited product references, assistant turns only.
	Sources []domain.SourceReference

	// Confidence is the answer confidence, assistant turns only.
	Confidence float64

	// ErrText is a terminal failure message replacing the answer.
	ErrText string

	// Streaming marks an assistant turn still receiving fragments.
	Streaming bool
}

// Transcript displays chat turns in a scrollable viewport.
type Transcript struct {
	viewport viewport.Model
	styles   *styles.Styles
	turns    []Turn
	width    int
	height   int
}

// New creates a new transcript component.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}

	vp := viewport.New(80, 16)

	return &Transcript{
		viewport: vp,
		styles:   s,
		width:    80,
		height:   16,
	}
}

// Init initialises the transcript.
func (t *Transcript) Init() tea.Cmd {
	return nil
}

// Update forwards scrolling messages to the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the transcript viewport.
func (t *Transcript) View() string {
	return t.viewport.View()
}

// SetDimensions sets the viewport size.
func (t *Transcript) SetDimensions(width, height int) {
	t.width = width
	t.height = height
	t.viewport.Width = width
	t.viewport.Height = height
	t.refresh()
}

// AppendUser adds a user turn.
func (t *Transcript) AppendUser(text string) {
	t.turns = append(t.turns, Turn{Role: domain.ChatRoleUser, Content: text})
	t.refresh()
}

// BeginAssistant opens a streaming assistant turn.
func (t *Transcript) BeginAssistant() {
	t.turns = append(t.turns, Turn{Role: domain.ChatRoleAssistant, Streaming: true})
	t.refresh()
}

// AppendFragment appends generated text to the open assistant turn.
func (t *Transcript) AppendFragment(text string) {
	if last := t.lastAssistant(); last != nil {
		last.Content += text
		t.refresh()
	}
}

// SetSources attaches source references to the open assistant turn.
func (t *Transcript) SetSources(sources []domain.SourceReference) {
	if last := t.lastAssistant(); last != nil {
		last.Sources = sources
		t.refresh()
	}
}

// FinishAssistant closes the open assistant turn.
func (t *Transcript) FinishAssistant(confidence float64) {
	if last := t.lastAssistant(); last != nil {
		last.Streaming = false
		last.Confidence = confidence
		t.refresh()
	}
}

// FailAssistant closes the open assistant turn with a failure message.
func (t *Transcript) FailAssistant(errText string) {
	if last := t.lastAssistant(); last != nil {
		last.Streaming = false
		last.ErrText = errText
		t.refresh()
	}
}

// Load replaces the transcript with stored session messages.
func (t *Transcript) Load(msgs []domain.ChatMessage) {
	t.turns = make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		t.turns = append(t.turns, Turn{
			Role:       m.Role,
			Content:    m.Content,
			Sources:    m.Sources,
			Confidence: m.Confidence,
		})
	}
	t.refresh()
}

// Clear removes all turns.
func (t *Transcript) Clear() {
	t.turns = nil
	t.refresh()
}

// Turns returns the current turns.
func (t *Transcript) Turns() []Turn {
	return t.turns
}

// Empty reports whether the transcript has no turns.
func (t *Transcript) Empty() bool {
	return len(t.turns) == 0
}

func (t *Transcript) lastAssistant() *Turn {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].Role == domain.ChatRoleAssistant {
			return &t.turns[i]
		}
	}
	return nil
}

// refresh re-renders the viewport content and follows the tail.
func (t *Transcript) refresh() {
	atBottom := t.viewport.AtBottom()
	t.viewport.SetContent(t.render())
	if atBottom {
		t.viewport.GotoBottom()
	}
}

func (t *Transcript) render() string {
	if len(t.turns) == 0 {
		return t.styles.Muted.Render("No messages yet. Ask a question below.")
	}

	var b strings.Builder
	for i := range t.turns {
		turn := &t.turns[i]
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(t.renderTurn(turn))
	}
	return b.String()
}

func (t *Transcript) renderTurn(turn *Turn) string {
	var b strings.Builder

	switch turn.Role {
	case domain.ChatRoleUser:
		b.WriteString(t.styles.UserLabel.Render("You"))
	case domain.ChatRoleAssistant:
		b.WriteString(t.styles.AssistantLabel.Render("ShopLens"))
	}
	b.WriteString("\n")

	switch {
	case turn.ErrText != "":
		b.WriteString(t.styles.Error.Render(turn.ErrText))
	case turn.Content == "" && turn.Streaming:
		b.WriteString(t.styles.Muted.Render("..."))
	default:
		b.WriteString(t.styles.Normal.Render(turn.Content))
	}

	if len(turn.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(t.renderSources(turn.Sources))
	}
	if !turn.Streaming && turn.Role == domain.ChatRoleAssistant &&
		turn.ErrText == "" && turn.Confidence > 0 {
		b.WriteString("\n")
		b.WriteString(t.styles.Muted.Render(
			fmt.Sprintf("confidence %.0f%%", turn.Confidence*100)))
	}

	return b.String()
}

func (t *Transcript) renderSources(sources []domain.SourceReference) string {
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		parts = append(parts, fmt.Sprintf("[%d] %s (%.0f%%)",
			s.Rank, s.ProductName, s.Similarity*100))
	}
	return t.styles.SourceTag.Render("sources: " + strings.Join(parts, "  "))
}
