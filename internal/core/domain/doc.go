// Package domain defines the core business entities for ShopLens.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Product: A catalog entity, immutable once created
//   - Catalog: A versioned collection of products plus metadata
//   - Chunk: The single retrievable text unit derived from one Product
//   - StoreEntry: A product, its chunk, and an optional embedding vector
//   - Answer: The result of a retrieval-augmented generation query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
