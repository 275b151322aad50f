// Package services implements the driving ports: the knowledge store
// lifecycle, the retrieval pipeline, and the supporting pure transforms.
package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

// ProductToChunk renders one product into its single retrievable chunk.
// It is pure and total: any structurally valid product yields a non-empty
// text, and an unchanged product always yields byte-identical output (the
// embedding cache is keyed on this text).
func ProductToChunk(p domain.Product) domain.Chunk {
	var b strings.Builder

	b.WriteString("[")
	b.WriteString(p.Name)
	b.WriteString("] ")
	b.WriteString(p.Description)
	b.WriteString("\nCategory: ")
	b.WriteString(p.Category)
	b.WriteString(" | Brand: ")
	b.WriteString(p.Brand)

	b.WriteString("\nPrice: ฿")
	b.WriteString(formatMoney(p.Price))
	if p.Discount != "" {
		b.WriteString(" (save ")
		b.WriteString(p.Discount)
		b.WriteString(")")
	}
	b.WriteString(" | Original price: ฿")
	b.WriteString(formatMoney(p.OriginalPrice))
	b.WriteString(" | Sold: ")
	b.WriteString(groupThousands(strconv.Itoa(p.SoldCount)))
	b.WriteString(" | Rating: ")
	b.WriteString(strconv.FormatFloat(p.Rating, 'f', -1, 64))
	b.WriteString("/5")

	b.WriteString("\nShop: ")
	b.WriteString(p.ShopName)
	b.WriteString(" (")
	b.WriteString(p.ShopLocation)
	b.WriteString(")")
	if p.IsMall {
		b.WriteString(" [Mall]")
	}
	if p.FreeShipping {
		b.WriteString(" [Free shipping]")
	}

	b.WriteString("\nSpecs: ")
	b.WriteString(renderSpecs(p.Specs))
	b.WriteString("\nTags: ")
	b.WriteString(strings.Join(p.Tags, ", "))
	b.WriteString("\nWarranty: ")
	b.WriteString(p.Warranty)
	b.WriteString(" | Returns: ")
	b.WriteString(p.ReturnPolicy)

	return domain.Chunk{
		ID:        "chunk-" + p.ID,
		ProductID: p.ID,
		Text:      b.String(),
		Metadata: domain.ChunkMetadata{
			ProductID:     p.ID,
			ProductName:   p.Name,
			Category:      p.Category,
			Brand:         p.Brand,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Discount:      p.Discount,
			Rating:        p.Rating,
			SoldCount:     p.SoldCount,
			IsMall:        p.IsMall,
			FreeShipping:  p.FreeShipping,
		},
	}
}

// ProductsToChunks renders products element-wise, preserving order: input
// index i corresponds to output index i.
func ProductsToChunks(products []domain.Product) []domain.Chunk {
	chunks := make([]domain.Chunk, len(products))
	for i := range products {
		chunks[i] = ProductToChunk(products[i])
	}
	return chunks
}

// renderSpecs renders the open spec map as "key: value" pairs. Map iteration
// order is randomised in Go, so keys are sorted to keep the rendering
// deterministic.
func renderSpecs(specs map[string]any) string {
	if len(specs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + formatSpecValue(specs[k])
	}
	return strings.Join(parts, ", ")
}

// formatSpecValue renders a spec scalar. JSON decoding produces strings,
// float64 numbers, and bools.
func formatSpecValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatMoney renders an amount with thousands separators. Whole amounts
// drop the fraction; fractional amounts keep two digits.
func formatMoney(amount float64) string {
	if amount == float64(int64(amount)) {
		return groupThousands(strconv.FormatInt(int64(amount), 10))
	}
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	return groupThousands(s[:dot]) + s[dot:]
}

// groupThousands inserts commas into a decimal integer string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
