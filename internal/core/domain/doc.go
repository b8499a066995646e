// Package domain defines the core business entities for Storysmith.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Element: A text block or table extracted from a corpus file
//   - Chunk: A bounded slice of an element's content, ready for embedding
//   - Record: The persisted unit in the vector store
//   - RetrievalResult: Ranked records returned for a query
//   - Story: The generated business-analyst answer
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
