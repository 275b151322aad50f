// Package cli implements the shoplens command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driven"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driving"
	"github.com/shoplens/shoplens-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Package-level services, injected by the composition root before Execute.
var (
	knowledgeService driving.KnowledgeService
	assistantService driving.AssistantService
	settingsService  driving.SettingsService
	historyStore     driven.ChatHistoryStore
	catalogStore     PrecomputedWriter
	embeddingService driven.EmbeddingService
)

// PrecomputedWriter saves embeddings for the pre-embed flow. The file
// catalog source implements it.
type PrecomputedWriter interface {
	SavePrecomputed(model string, dimensions int, embeddings []domain.PrecomputedEmbedding) error
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "shoplens",
	Short: "Product catalog assistant",
	Long: `ShopLens answers natural-language questions about a product catalog.

It loads a catalog file into an in-memory knowledge base, embeds each
product as a retrieval chunk, and answers questions grounded in the
retrieved products with cited sources.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Services bundles everything the CLI needs from the composition root.
type Services struct {
	Knowledge driving.KnowledgeService
	Assistant driving.AssistantService
	Settings  driving.SettingsService
	History   driven.ChatHistoryStore
	Catalog   PrecomputedWriter
	Embedder  driven.EmbeddingService
}

// SetServices injects the core services used by the commands.
func SetServices(s Services) {
	knowledgeService = s.Knowledge
	assistantService = s.Assistant
	settingsService = s.Settings
	historyStore = s.History
	catalogStore = s.Catalog
	embeddingService = s.Embedder
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context, so
// long-running commands stop on SIGINT/SIGTERM.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
