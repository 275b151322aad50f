package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and pre-embed the base catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the catalog configuration",
	RunE:  runCatalogShow,
}

var catalogEmbedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Pre-compute embeddings for the base catalog",
	Long: `Embed every catalog chunk and write the vectors to the configured
vectors file. Later runs of 'shoplens init' attach the stored vectors
instead of calling the embedding provider, so startup needs no network.

The vectors file records the model and dimensionality it was computed
with; init falls back to live embedding when they no longer match the
configured provider.`,
	RunE: runCatalogEmbed,
}

func init() {
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogEmbedCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Catalog configuration:")
	cmd.Printf("  Catalog path: %s\n", valueOrNotSet(settings.Knowledge.CatalogPath))
	cmd.Printf("  Vectors path: %s\n", valueOrNotSet(settings.Knowledge.VectorsPath))
	cmd.Printf("  Max products: %d\n", settings.Knowledge.MaxProducts)
	cmd.Printf("  Watch:        %v\n", settings.Knowledge.WatchCatalog)
	return nil
}

func runCatalogEmbed(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil || catalogStore == nil {
		return errors.New("knowledge service not configured")
	}
	if embeddingService == nil {
		return errors.New("no embedding provider configured, run 'shoplens settings embedding' first")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.Knowledge.VectorsPath == "" {
		return errors.New("no vectors path configured, run 'shoplens settings catalog' first")
	}

	ctx := cmd.Context()

	// Load the base catalog without embedding so the chunk texts are
	// available even when the store was never initialized.
	if err := knowledgeService.Load(ctx); err != nil {
		if errors.Is(err, domain.ErrEmbeddingInProgress) {
			return errors.New("another embedding run is already in progress, try again shortly")
		}
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	texts := knowledgeService.ChunkTexts(ctx)
	products := knowledgeService.Products(ctx)
	if len(texts) == 0 || len(texts) != len(products) {
		return errors.New("catalog produced no chunks")
	}

	cmd.Printf("Embedding %d chunks with %s...\n", len(texts), embeddingService.ModelName())
	start := time.Now()

	vectors, err := embeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return describeProviderError(err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding provider returned %d vectors for %d chunks", len(vectors), len(texts))
	}

	embeddings := make([]domain.PrecomputedEmbedding, len(texts))
	for i := range texts {
		embeddings[i] = domain.PrecomputedEmbedding{
			ProductID: products[i].ID,
			Text:      texts[i],
			Vector:    vectors[i],
		}
	}

	dims := embeddingService.Dimensions()
	if dims == 0 && len(vectors[0]) > 0 {
		dims = len(vectors[0])
	}
	if err := catalogStore.SavePrecomputed(embeddingService.ModelName(), dims, embeddings); err != nil {
		return fmt.Errorf("failed to write vectors file: %w", err)
	}

	cmd.Printf("Wrote %d embeddings to %s in %s.\n",
		len(embeddings), settings.Knowledge.VectorsPath, time.Since(start).Round(time.Millisecond))
	return nil
}

func valueOrNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
