package driven

import (
	"context"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

// VectorStore persists records keyed by collection and answers
// nearest-neighbour queries.
//
// Write rejects an id that already exists with domain.ErrDuplicateID.
// Records are never updated or deleted.
type VectorStore interface {
	// EnsureCollection creates the collection if missing and returns it.
	// An existing collection created with another model or dimension
	// returns domain.ErrModelMismatch or domain.ErrDimensionMismatch.
	EnsureCollection(ctx context.Context, name, model string, dimensions int) (*domain.Collection, error)

	// Collection returns the named collection or domain.ErrCollectionNotFound.
	Collection(ctx context.Context, name string) (*domain.Collection, error)

	// Write inserts one record.
	Write(ctx context.Context, collection string, rec domain.Record) error

	// Query returns up to topK records ordered by ascending distance.
	// An empty collection yields an empty slice. A missing collection
	// returns domain.ErrCollectionNotFound.
	Query(ctx context.Context, collection string, embedding []float32, topK int) ([]domain.RetrievedRecord, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context, collection string) (int, error)

	// Close releases resources.
	Close() error
}
