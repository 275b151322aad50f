// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - KnowledgeStore: In-memory catalog/chunk/vector storage
//   - CatalogSource: Reads the base catalog and pre-computed vectors
//   - EmbeddingService: Generates vector embeddings
//   - GenerationService: Produces answers from augmented prompts
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CustomProductStore: Durable replay of user-appended products
//   - ChatHistoryStore: Durable chat sessions
//   - EmbeddingCache: Text-keyed vector cache, skips repeat provider calls
//   - PromptStore: User-customisable prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
