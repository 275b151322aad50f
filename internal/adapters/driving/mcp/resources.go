package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for ShopLens resources.
	uriScheme = "shoplens://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing catalog products.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "products",
		Name:        "products",
		Description: "All products currently in the knowledge store",
		MIMEType:    "application/json",
	}, s.handleProductsResource)

	// Static resource for suggested starter questions.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "suggested-questions",
		Name:        "suggested-questions",
		Description: "Starter questions grounded in the loaded catalog",
		MIMEType:    "application/json",
	}, s.handleSuggestionsResource)

	// Template for a single product.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "products/{productId}",
		Name:        "product",
		Description: "Full record of a specific product",
		MIMEType:    "application/json",
	}, s.handleProductResource)
}

// handleProductsResource returns a compact list of all stored products.
func (s *Server) handleProductsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	products := s.ports.Knowledge.Products(ctx)

	// Build simplified product list.
	type productInfo struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Brand    string  `json:"brand"`
		Price    float64 `json:"price"`
		Rating   float64 `json:"rating"`
	}

	infos := make([]productInfo, len(products))
	for i := range products {
		infos[i] = productInfo{
			ID:       products[i].ID,
			Name:     products[i].Name,
			Category: products[i].Category,
			Brand:    products[i].Brand,
			Price:    products[i].Price,
			Rating:   products[i].Rating,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling products: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleSuggestionsResource returns suggested starter questions.
func (s *Server) handleSuggestionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	questions := s.ports.Assistant.SuggestedQuestions(ctx)
	if questions == nil {
		questions = []string{}
	}

	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling questions: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleProductResource returns the full record of a specific product.
func (s *Server) handleProductResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract productId from URI: shoplens://products/{productId}
	productID := extractProductID(req.Params.URI)
	if productID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	for _, product := range s.ports.Knowledge.Products(ctx) {
		if product.ID != productID {
			continue
		}

		data, err := json.MarshalIndent(product, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling product: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			}},
		}, nil
	}

	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// extractProductID extracts the product ID from a URI like shoplens://products/{productId}.
func extractProductID(uri string) string {
	const prefix = uriScheme + "products/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
