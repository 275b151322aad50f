package services

import (
	"fmt"
	"strings"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// DefaultAnswerSystemPrompt constrains the generator to answer only from the
// supplied product context. A PromptStore may override it with a
// user-edited version.
const DefaultAnswerSystemPrompt = `You are a shopping assistant answering questions from a bounded product catalog.

Rules:
1. Answer ONLY from the product context supplied below. Never invent product details.
2. If no product matches the question exactly, recommend the closest products from the context.
3. Always show price, discount, rating, and sales count when mentioning a product.
4. Compare specifications in a table or list when asked.
5. Answer in the same language as the question.
6. Reference the product ID for every product you mention, so answers can be verified.
7. If the context contains nothing relevant, say so directly.
8. Format answers for easy reading with bullet points or headings where appropriate.`

// BuildAugmentedPrompt assembles the generation prompt: the system
// instruction, the retrieved chunks with their similarity percentages, and
// the question. The context block is truncated to maxContextLength
// characters on a whole-product boundary.
func BuildAugmentedPrompt(systemPrompt, question string, results []domain.RetrievalResult, maxContextLength int) string {
	if maxContextLength <= 0 {
		maxContextLength = domain.DefaultMaxContextLength
	}

	var context strings.Builder
	for i := range results {
		md := &results[i].Entry.Chunk.Metadata
		block := fmt.Sprintf("[Product %d: %s - %s] (relevance: %.0f%%)\n%s",
			i+1, md.ProductID, md.ProductName,
			results[i].Similarity*100,
			results[i].Entry.Chunk.Text)

		if context.Len() > 0 && context.Len()+len(block)+2 > maxContextLength {
			break
		}
		if context.Len() > 0 {
			context.WriteString("\n\n")
		}
		context.WriteString(block)
	}

	return fmt.Sprintf(`%s

## Relevant products (context):

%s

## Customer question:
%s

## Answer (from the context above only):`, systemPrompt, context.String(), question)
}
