// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Scraper: Extracts elements from a corpus file
//   - Chunker: Splits element content into overlapping spans
//   - EmbeddingService: Maps text to a fixed-dimension vector
//   - VectorStore: Durable records with nearest-neighbour queries
//   - LLMService: Completes a composed prompt
//   - CorpusSource: Discovers corpus files and reports changes
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates
//
// # Optional Interfaces
//
//   - IssueTracker: Files stories as work items. Nil disables filing and
//     every create request is answered with a failure note.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or scraper package
package driven
