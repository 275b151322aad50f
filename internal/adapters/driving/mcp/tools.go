package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string  `json:"question" jsonschema:"the product question to answer"`
	TopK      int     `json:"top_k,omitempty" jsonschema:"maximum number of sources to retrieve (default 5)"`
	Category  string  `json:"category,omitempty" jsonschema:"restrict retrieval to this catalog category"`
	Brand     string  `json:"brand,omitempty" jsonschema:"restrict retrieval to this brand"`
	MinPrice  float64 `json:"min_price,omitempty" jsonschema:"inclusive lower price bound"`
	MaxPrice  float64 `json:"max_price,omitempty" jsonschema:"inclusive upper price bound"`
	MinRating float64 `json:"min_rating,omitempty" jsonschema:"inclusive lower rating bound, 0 to 5"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string         `json:"answer"`
	Sources    []SourceOutput `json:"sources"`
	Confidence float64        `json:"confidence"`
}

// SourceOutput represents a single cited source.
type SourceOutput struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Similarity  float64 `json:"similarity"`
	Rank        int     `json:"rank"`
}

// StatusOutput is the output schema for the catalog_status tool.
type StatusOutput struct {
	Initialized    bool   `json:"initialized"`
	Ready          bool   `json:"ready"`
	Products       int    `json:"products"`
	Chunks         int    `json:"chunks"`
	Embeddings     int    `json:"embeddings"`
	BaseProducts   int    `json:"base_products"`
	CustomProducts int    `json:"custom_products"`
	MaxProducts    int    `json:"max_products"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	Dimensions     int    `json:"dimensions,omitempty"`
}

// AppendInput is the input schema for the append_products tool.
type AppendInput struct {
	Products []domain.Product `json:"products" jsonschema:"products to append to the catalog"`
}

// AppendOutput is the output schema for the append_products tool.
type AppendOutput struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a natural-language question about the product catalog",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "catalog_status",
		Description: "Report knowledge store counters and readiness",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "append_products",
		Description: "Append custom products to the catalog",
	}, s.handleAppend)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	opts := domain.QueryOptions{TopK: input.TopK}
	if filters := buildFilters(input); filters != nil {
		opts.Filters = filters
	}

	answer, err := s.ports.Assistant.Ask(ctx, input.Question, opts)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:     answer.Text,
		Sources:    make([]SourceOutput, len(answer.Sources)),
		Confidence: answer.Confidence,
	}

	for i := range answer.Sources {
		output.Sources[i] = SourceOutput{
			ProductID:   answer.Sources[i].ProductID,
			ProductName: answer.Sources[i].ProductName,
			Category:    answer.Sources[i].Category,
			Price:       answer.Sources[i].Price,
			Similarity:  answer.Sources[i].Similarity,
			Rank:        answer.Sources[i].Rank,
		}
	}

	return nil, output, nil
}

// handleStatus handles the catalog_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, StatusOutput, error) {
	status := s.ports.Knowledge.Status(ctx)

	return nil, StatusOutput{
		Initialized:    status.Initialized,
		Ready:          status.Ready(),
		Products:       status.Products,
		Chunks:         status.Chunks,
		Embeddings:     status.Embeddings,
		BaseProducts:   status.BaseProducts,
		CustomProducts: status.CustomProducts,
		MaxProducts:    status.MaxProducts,
		EmbeddingModel: status.EmbeddingModel,
		Dimensions:     status.Dimensions,
	}, nil
}

// handleAppend handles the append_products tool invocation.
func (s *Server) handleAppend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AppendInput,
) (*mcp.CallToolResult, AppendOutput, error) {
	result, err := s.ports.Knowledge.Append(ctx, input.Products, nil)
	if err != nil {
		return nil, AppendOutput{}, err
	}

	return nil, AppendOutput{
		Added:   result.Added,
		Skipped: result.Skipped,
		Total:   result.Total,
	}, nil
}

// buildFilters converts flat tool inputs into retrieval filters.
// Returns nil when no filter field is set.
func buildFilters(input AskInput) *domain.RetrievalFilters {
	if input.Category == "" && input.Brand == "" &&
		input.MinPrice == 0 && input.MaxPrice == 0 && input.MinRating == 0 {
		return nil
	}

	filters := &domain.RetrievalFilters{
		Category: input.Category,
		Brand:    input.Brand,
	}
	if input.MinPrice > 0 {
		minPrice := input.MinPrice
		filters.MinPrice = &minPrice
	}
	if input.MaxPrice > 0 {
		maxPrice := input.MaxPrice
		filters.MaxPrice = &maxPrice
	}
	if input.MinRating > 0 {
		minRating := input.MinRating
		filters.MinRating = &minRating
	}
	return filters
}
