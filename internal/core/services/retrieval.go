package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
	"github.com/custodia-labs/storysmith/internal/core/ports/driving"
	"github.com/custodia-labs/storysmith/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService embeds queries with the ingestion model and searches the store.
type RetrievalService struct {
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	collection string
}

// NewRetrievalService creates a retrieval service. An empty collection uses
// domain.DefaultCollection.
func NewRetrievalService(embedder driven.EmbeddingService, store driven.VectorStore, collection string) *RetrievalService {
	if collection == "" {
		collection = domain.DefaultCollection
	}
	return &RetrievalService{embedder: embedder, store: store, collection: collection}
}

// Retrieve returns up to topK records nearest to query. A collection that
// was never created, or is empty, yields an empty result.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, topK int) (*domain.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	result := &domain.RetrievalResult{Query: query, Records: []domain.RetrievedRecord{}}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	coll, err := s.store.Collection(ctx, s.collection)
	if errors.Is(err, domain.ErrCollectionNotFound) {
		logger.Info("Collection %s does not exist; continuing without context", s.collection)
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}
	if coll.Model != s.embedder.ModelName() {
		return nil, fmt.Errorf("%w: collection %s was built with %q, query uses %q",
			domain.ErrModelMismatch, s.collection, coll.Model, s.embedder.ModelName())
	}
	if coll.Count == 0 {
		logger.Info("Collection %s is empty; continuing without context", s.collection)
		return result, nil
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := s.store.Query(ctx, s.collection, embedding, topK)
	if errors.Is(err, domain.ErrCollectionNotFound) || errors.Is(err, domain.ErrEmptyResult) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	if len(records) > topK {
		records = records[:topK]
	}
	result.Records = records
	logger.Debug("Retrieved %d record(s) for %q", len(records), query)
	return result, nil
}

// Stats describes the collection.
func (s *RetrievalService) Stats(ctx context.Context) (*domain.Collection, error) {
	return s.store.Collection(ctx, s.collection)
}
