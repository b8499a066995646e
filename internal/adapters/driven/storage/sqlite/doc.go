// Package sqlite provides the default durable driven.VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each collection row pins the embedding
// model and dimension it was created with; records hold the chunk text, JSON
// metadata and the embedding as a little-endian float32 blob.
//
// # Search
//
// Queries scan the collection and rank by cosine distance. Corpora here are
// business document sets of thousands of chunks, well inside exact-scan range.
//
// # Data Location
//
// By default, the database is stored at ~/.storysmith/data/vectors.db
package sqlite
