// Package composer provides the question input component for the TUI.
package composer

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shoplens/shoplens-cli/internal/adapters/driving/tui/styles"
)

// Composer wraps a bubbles textinput for composing questions.
type Composer struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// New creates a new composer component.
func New(s *styles.Styles) *Composer {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about the catalog..."
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	return &Composer{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init initialises the composer.
func (c *Composer) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *Composer) Update(msg tea.Msg) (*Composer, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the composer.
func (c *Composer) View() string {
	label := c.styles.UserLabel.Render("Ask: ")
	input := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

// Value returns the current input value.
func (c *Composer) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value.
func (c *Composer) SetValue(value string) {
	c.textinput.SetValue(value)
	c.textinput.CursorEnd()
}

// Focus sets focus on the input.
func (c *Composer) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *Composer) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *Composer) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *Composer) SetWidth(width int) {
	c.width = width
	// Account for label and padding
	inputWidth := width - 10
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *Composer) Width() int {
	return c.width
}

// Reset clears the input.
func (c *Composer) Reset() {
	c.textinput.Reset()
}
