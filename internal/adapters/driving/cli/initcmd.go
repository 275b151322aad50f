package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Load and embed the product catalog",
	Long: `Load the configured catalog file into the knowledge base.

When a pre-computed vectors file is configured and matches the catalog,
its vectors are attached directly; otherwise every product chunk is
embedded via the configured embedding provider. Custom products saved in
earlier runs are replayed afterwards.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	cmd.Println("Initializing knowledge base...")
	start := time.Now()

	if err := knowledgeService.Initialize(cmd.Context()); err != nil {
		if errors.Is(err, domain.ErrEmbeddingInProgress) {
			return errors.New("another embedding run is already in progress")
		}
		return fmt.Errorf("initialization failed: %w", err)
	}

	status := knowledgeService.Status(cmd.Context())
	cmd.Printf("Done in %s.\n\n", time.Since(start).Round(time.Millisecond))
	printStatus(cmd, status)
	return nil
}

func printStatus(cmd *cobra.Command, status domain.StoreStatus) {
	cmd.Printf("  Products:   %d / %d (base %d, custom %d)\n",
		status.Products, status.MaxProducts, status.BaseProducts, status.CustomProducts)
	cmd.Printf("  Embeddings: %d / %d\n", status.Embeddings, status.Chunks)
	if status.EmbeddingModel != "" {
		cmd.Printf("  Model:      %s (%d dimensions)\n", status.EmbeddingModel, status.Dimensions)
	}
	if status.Ready() {
		cmd.Println("  Ready:      yes")
	} else {
		cmd.Println("  Ready:      no")
	}
}
