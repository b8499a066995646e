package driving

import (
	"context"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

// RetrievalService finds the records nearest to a query.
type RetrievalService interface {
	// Retrieve embeds query and returns up to topK records. A missing or
	// empty collection yields an empty result, not an error.
	Retrieve(ctx context.Context, query string, topK int) (*domain.RetrievalResult, error)

	// Stats returns the collection description, or domain.ErrCollectionNotFound.
	Stats(ctx context.Context) (*domain.Collection, error)
}
