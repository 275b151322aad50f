package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

var (
	askTopK      int
	askThreshold float64
	askCategory  string
	askBrand     string
	askMaxPrice  float64
	askMinRating float64
	askJSON      bool
	askNoStream  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the catalog",
	Long: `Answer a natural-language question from the loaded catalog.

The answer is grounded in the most similar product chunks and cites the
products it drew from. By default the answer streams to the terminal as
it is generated; --no-stream waits for the complete answer and --json
prints the full answer object instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "maximum number of retrieved products")
	askCmd.Flags().Float64Var(&askThreshold, "threshold", 0, "minimum similarity (0..1)")
	askCmd.Flags().StringVar(&askCategory, "category", "", "restrict to a product category")
	askCmd.Flags().StringVar(&askBrand, "brand", "", "restrict to a brand")
	askCmd.Flags().Float64Var(&askMaxPrice, "max-price", 0, "restrict to products at or under this price")
	askCmd.Flags().Float64Var(&askMinRating, "min-rating", 0, "restrict to products rated at or above this")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "wait for the complete answer")
	rootCmd.AddCommand(askCmd)
}

func askOptions() domain.QueryOptions {
	opts := domain.QueryOptions{
		TopK:                askTopK,
		SimilarityThreshold: askThreshold,
	}

	var filters domain.RetrievalFilters
	var filtered bool
	if askCategory != "" {
		filters.Category = askCategory
		filtered = true
	}
	if askBrand != "" {
		filters.Brand = askBrand
		filtered = true
	}
	if askMaxPrice > 0 {
		v := askMaxPrice
		filters.MaxPrice = &v
		filtered = true
	}
	if askMinRating > 0 {
		v := askMinRating
		filters.MinRating = &v
		filtered = true
	}
	if filtered {
		opts.Filters = &filters
	}
	return opts
}

func runAsk(cmd *cobra.Command, args []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	question := args[0]
	opts := askOptions()

	if askJSON || askNoStream {
		answer, err := assistantService.Ask(cmd.Context(), question, opts)
		if err != nil {
			return describeProviderError(err)
		}
		if askJSON {
			data, err := json.MarshalIndent(answer, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal answer: %w", err)
			}
			cmd.Println(string(data))
			return nil
		}
		cmd.Println(answer.Text)
		printSources(cmd, answer.Sources, answer.Confidence)
		return nil
	}

	return streamAsk(cmd, question, opts)
}

func streamAsk(cmd *cobra.Command, question string, opts domain.QueryOptions) error {
	events, err := assistantService.AskStream(cmd.Context(), question, opts)
	if err != nil {
		return describeProviderError(err)
	}

	var sources []domain.SourceReference
	for event := range events {
		switch event.Type {
		case domain.StreamEventSources:
			sources = event.Sources
		case domain.StreamEventText:
			cmd.Print(event.Text)
		case domain.StreamEventError:
			cmd.Println()
			if event.Err != nil {
				return describeProviderError(event.Err)
			}
			return errors.New(event.Text)
		case domain.StreamEventDone:
			cmd.Println()
		}
	}

	confidence := 0.0
	for _, src := range sources {
		confidence += src.Similarity
	}
	if len(sources) > 0 {
		confidence /= float64(len(sources))
	}
	printSources(cmd, sources, confidence)
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.SourceReference, confidence float64) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Printf("Sources (confidence %.0f%%):\n", confidence*100)
	for _, src := range sources {
		cmd.Printf("  [%d] %s (%s, %.0f) - %.0f%% match\n",
			src.Rank, src.ProductName, src.ProductID, src.Price, src.Similarity*100)
	}
}

// describeProviderError keeps provider failures readable at the terminal
// while preserving the category for scripts checking output.
func describeProviderError(err error) error {
	if category, ok := domain.ProviderErrorCategoryOf(err); ok {
		return fmt.Errorf("%w (category: %s)", err, category)
	}
	return err
}
