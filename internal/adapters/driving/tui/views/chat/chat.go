// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/shoplens/shoplens-cli/internal/adapters/driving/tui/components/composer"
	"github.com/shoplens/shoplens-cli/internal/adapters/driving/tui/components/status"
	"github.com/shoplens/shoplens-cli/internal/adapters/driving/tui/components/transcript"
	"github.com/shoplens/shoplens-cli/internal/adapters/driving/tui/keymap"
	"github.com/shoplens/shoplens-cli/internal/adapters/driving/tui/messages"
	"github.com/shoplens/shoplens-cli/internal/adapters/driving/tui/styles"
	"github.com/shoplens/shoplens-cli/internal/core/domain"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driven"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driving"
)

// View is the chat view with transcript, composer, and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	composer   *composer.Composer
	transcript *transcript.Transcript
	statusbar  *status.Bar
	spinner    spinner.Model

	assistant driving.AssistantService
	knowledge driving.KnowledgeService
	history   driven.ChatHistoryStore
	ctx       context.Context

	sessionID   string
	suggestions []string
	suggestIdx  int
	streaming   bool
	events      <-chan domain.StreamEvent
	sources     []domain.SourceReference
	answerText  string

	width  int
	height int
	err    error
}

// NewView creates a new chat view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	assistant driving.AssistantService,
	knowledge driving.KnowledgeService,
	history driven.ChatHistoryStore,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(s.Theme().Primary)

	return &View{
		styles:     s,
		keymap:     km,
		composer:   composer.New(s),
		transcript: transcript.New(s),
		statusbar:  status.NewBar(s, km),
		spinner:    sp,
		assistant:  assistant,
		knowledge:  knowledge,
		history:    history,
		ctx:        context.Background(),
		sessionID:  uuid.NewString(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the chat view.
func (v *View) Init() tea.Cmd {
	return tea.Batch(
		v.composer.Init(),
		v.loadSuggestions(),
		v.loadStatus(),
	)
}

// SessionID returns the current chat session id.
func (v *View) SessionID() string {
	return v.sessionID
}

// Streaming reports whether an answer is in flight.
func (v *View) Streaming() bool {
	return v.streaming
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Transcript exposes the transcript component.
func (v *View) Transcript() *transcript.Transcript {
	return v.transcript
}

// Reset starts a fresh session with an empty transcript.
func (v *View) Reset() {
	v.sessionID = uuid.NewString()
	v.transcript.Clear()
	v.composer.Reset()
	v.streaming = false
	v.events = nil
	v.sources = nil
	v.answerText = ""
	v.err = nil
	v.statusbar.SetState(status.StateReady)
}

// LoadSession replays a stored session into the transcript. Further
// questions continue the same session.
func (v *View) LoadSession(sessionID string, msgs []domain.ChatMessage) {
	v.Reset()
	v.sessionID = sessionID
	v.transcript.Load(msgs)
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.composer.SetWidth(width)
	v.statusbar.SetWidth(width)
	// Transcript takes the space above composer and status bar.
	transcriptHeight := height - 6
	if transcriptHeight < 4 {
		transcriptHeight = 4
	}
	v.transcript.SetDimensions(width, transcriptHeight)
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.streaming {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.SuggestionsLoaded:
		v.suggestions = msg.Questions
		v.suggestIdx = 0
		return v, nil

	case messages.StatusLoaded:
		v.statusbar.SetProductCount(msg.Status.Products)
		return v, nil

	case messages.StreamOpened:
		return v.handleStreamOpened(msg)

	case messages.StreamEventReceived:
		return v.handleStreamEvent(msg.Event)

	case messages.StreamClosed:
		v.streaming = false
		v.events = nil
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.composer, cmd = v.composer.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Send):
		return v, v.submit()

	case keymap.Matches(keyStr, v.keymap.Suggest):
		v.insertSuggestion()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.ScrollUp),
		keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.composer, cmd = v.composer.Update(msg)
	return v, cmd
}

// submit sends the composed question.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.composer.Value())
	if question == "" || v.streaming {
		return nil
	}

	v.composer.Reset()
	v.transcript.AppendUser(question)
	v.transcript.BeginAssistant()
	v.streaming = true
	v.sources = nil
	v.answerText = ""
	v.err = nil
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")

	return tea.Batch(
		v.spinner.Tick,
		v.saveMessage(domain.ChatRoleUser, question, nil, 0),
		v.openStream(question),
	)
}

// insertSuggestion cycles the next starter question into the composer.
func (v *View) insertSuggestion() {
	if len(v.suggestions) == 0 {
		return
	}
	v.composer.SetValue(v.suggestions[v.suggestIdx])
	v.suggestIdx = (v.suggestIdx + 1) % len(v.suggestions)
}

func (v *View) openStream(question string) tea.Cmd {
	return func() tea.Msg {
		events, err := v.assistant.AskStream(v.ctx, question, domain.QueryOptions{})
		return messages.StreamOpened{Events: events, Err: err}
	}
}

// waitForEvent pumps one event from the stream channel into the model.
func waitForEvent(events <-chan domain.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return messages.StreamClosed{}
		}
		return messages.StreamEventReceived{Event: ev}
	}
}

func (v *View) handleStreamOpened(msg messages.StreamOpened) (*View, tea.Cmd) {
	if msg.Err != nil {
		v.streaming = false
		v.err = msg.Err
		v.transcript.FailAssistant(msg.Err.Error())
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}
	v.events = msg.Events
	return v, waitForEvent(v.events)
}

func (v *View) handleStreamEvent(ev domain.StreamEvent) (*View, tea.Cmd) {
	switch ev.Type {
	case domain.StreamEventSources:
		v.sources = ev.Sources
		v.transcript.SetSources(ev.Sources)
		v.statusbar.SetState(status.StateStreaming)
		return v, waitForEvent(v.events)

	case domain.StreamEventText:
		v.answerText += ev.Text
		v.transcript.AppendFragment(ev.Text)
		return v, waitForEvent(v.events)

	case domain.StreamEventError:
		v.streaming = false
		errText := ev.Text
		if errText == "" && ev.Err != nil {
			errText = ev.Err.Error()
		}
		v.err = ev.Err
		v.transcript.FailAssistant(errText)
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(errText)
		return v, waitForEvent(v.events)

	case domain.StreamEventDone:
		v.streaming = false
		confidence := meanSimilarity(v.sources)
		v.transcript.FinishAssistant(confidence)
		v.statusbar.SetState(status.StateReady)
		return v, tea.Batch(
			v.saveMessage(domain.ChatRoleAssistant, v.answerText, v.sources, confidence),
			v.loadStatus(),
			waitForEvent(v.events),
		)
	}
	return v, waitForEvent(v.events)
}

// saveMessage persists one turn. A nil history store makes this a no-op.
func (v *View) saveMessage(
	role domain.ChatRole, content string,
	sources []domain.SourceReference, confidence float64,
) tea.Cmd {
	if v.history == nil || content == "" {
		return nil
	}
	msg := &domain.ChatMessage{
		ID:         uuid.NewString(),
		SessionID:  v.sessionID,
		Role:       role,
		Content:    content,
		Sources:    sources,
		Confidence: confidence,
		CreatedAt:  time.Now().UTC(),
	}
	return func() tea.Msg {
		if err := v.history.SaveMessage(v.ctx, msg); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return nil
	}
}

func (v *View) loadSuggestions() tea.Cmd {
	return func() tea.Msg {
		return messages.SuggestionsLoaded{Questions: v.assistant.SuggestedQuestions(v.ctx)}
	}
}

func (v *View) loadStatus() tea.Cmd {
	return func() tea.Msg {
		return messages.StatusLoaded{Status: v.knowledge.Status(v.ctx)}
	}
}

func meanSimilarity(sources []domain.SourceReference) float64 {
	if len(sources) == 0 {
		return 0
	}
	var sum float64
	for _, s := range sources {
		sum += s.Similarity
	}
	return sum / float64(len(sources))
}

// View renders the chat view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("ShopLens"))
	if v.transcript.Empty() && len(v.suggestions) > 0 {
		b.WriteString("  ")
		b.WriteString(v.styles.Muted.Render("tab cycles suggested questions"))
	}
	b.WriteString("\n\n")

	b.WriteString(v.transcript.View())
	b.WriteString("\n\n")

	if v.streaming {
		b.WriteString(v.spinner.View())
		b.WriteString(" ")
	}
	b.WriteString(v.composer.View())
	b.WriteString("\n")
	b.WriteString(v.statusbar.View())

	return b.String()
}
