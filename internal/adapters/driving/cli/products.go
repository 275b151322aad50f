package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

var productsJSON bool

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage knowledge base products",
	RunE:  runProductsList,
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products in the knowledge base",
	RunE:  runProductsList,
}

var productsAddCmd = &cobra.Command{
	Use:   "add [file.json]",
	Short: "Append custom products from a JSON file",
	Long: `Append products from a JSON file to the knowledge base.

The file holds either a single product object or an array of products.
Products with ids already in the store are skipped, as are products past
the capacity ceiling; neither is an error. Appended products are embedded
immediately and persist across restarts.`,
	Args: cobra.ExactArgs(1),
	RunE: runProductsAdd,
}

var productsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove all custom products",
	Long:  `Restore the knowledge base to the base catalog, discarding custom products.`,
	RunE:  runProductsReset,
}

func init() {
	productsListCmd.Flags().BoolVar(&productsJSON, "json", false, "output products as JSON")
	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsAddCmd)
	productsCmd.AddCommand(productsResetCmd)
	rootCmd.AddCommand(productsCmd)
}

func runProductsList(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	products := knowledgeService.Products(cmd.Context())

	if productsJSON {
		data, err := json.MarshalIndent(products, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal products: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(products) == 0 {
		cmd.Println("No products loaded. Run 'shoplens init' first.")
		return nil
	}

	status := knowledgeService.Status(cmd.Context())
	cmd.Printf("Products (%d, base %d, custom %d):\n\n",
		status.Products, status.BaseProducts, status.CustomProducts)
	for i := range products {
		p := &products[i]
		cmd.Printf("  %s  %s\n", p.ID, p.Name)
		cmd.Printf("      %s | %.0f | rating %.1f | sold %d\n",
			p.Category, p.Price, p.Rating, p.SoldCount)
	}
	return nil
}

func runProductsAdd(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read products file: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		// Single product object is accepted too.
		var one domain.Product
		if oneErr := json.Unmarshal(data, &one); oneErr != nil {
			return fmt.Errorf("parse products file: %w", err)
		}
		products = []domain.Product{one}
	}

	result, err := knowledgeService.Append(cmd.Context(), products, nil)
	if err != nil {
		if errors.Is(err, domain.ErrNotInitialized) {
			return errors.New("knowledge base not initialized, run 'shoplens init' first")
		}
		if errors.Is(err, domain.ErrEmbeddingInProgress) {
			return errors.New("another embedding run is already in progress, try again shortly")
		}
		return describeProviderError(err)
	}

	cmd.Printf("Added %d product(s)", result.Added)
	if result.Skipped > 0 {
		cmd.Printf(", skipped %d (duplicates or capacity)", result.Skipped)
	}
	cmd.Println(".")
	return nil
}

func runProductsReset(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	if err := knowledgeService.Reset(cmd.Context()); err != nil {
		if errors.Is(err, domain.ErrEmbeddingInProgress) {
			return errors.New("another embedding run is already in progress, try again shortly")
		}
		return fmt.Errorf("reset failed: %w", err)
	}

	status := knowledgeService.Status(cmd.Context())
	cmd.Printf("Knowledge base reset to base catalog (%d products).\n", status.Products)
	return nil
}
