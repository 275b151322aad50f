// Package tui provides the interactive chat interface for shoplens.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/shoplens/shoplens-cli/internal/core/ports/driven"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant answers product questions.
	Assistant driving.AssistantService

	// Knowledge reports knowledge store status.
	Knowledge driving.KnowledgeService

	// Settings manages application settings.
	Settings driving.SettingsService

	// History persists chat sessions. Optional; when nil, conversations
	// are not recorded and the session browser is hidden.
	History driven.ChatHistoryStore
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	assistant driving.AssistantService,
	knowledge driving.KnowledgeService,
) *Ports {
	return &Ports{
		Assistant: assistant,
		Knowledge: knowledge,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	return nil
}
