package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

type collection struct {
	info    domain.Collection
	records []similarity.Candidate
	ids     map[string]struct{}
}

// VectorStore keeps records in process memory. Contents are lost on exit.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{collections: make(map[string]*collection)}
}

// EnsureCollection creates the collection if missing.
func (s *VectorStore) EnsureCollection(_ context.Context, name, model string, dimensions int) (*domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &collection{
			info: domain.Collection{Name: name, Model: model, Dimensions: dimensions},
			ids:  make(map[string]struct{}),
		}
		s.collections[name] = c
	}
	if c.info.Model != model {
		return nil, fmt.Errorf("%w: collection %q uses %q, not %q", domain.ErrModelMismatch, name, c.info.Model, model)
	}
	if c.info.Dimensions != dimensions {
		return nil, fmt.Errorf("%w: collection %q has %d dimensions, not %d", domain.ErrDimensionMismatch, name, c.info.Dimensions, dimensions)
	}

	info := c.info
	info.Count = len(c.records)
	return &info, nil
}

// Collection returns the named collection.
func (s *VectorStore) Collection(_ context.Context, name string) (*domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	info := c.info
	info.Count = len(c.records)
	return &info, nil
}

// Write inserts one record.
func (s *VectorStore) Write(_ context.Context, name string, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if len(rec.Embedding) != c.info.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(rec.Embedding), c.info.Dimensions)
	}
	if _, exists := c.ids[rec.ID]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateID, rec.ID)
	}

	c.ids[rec.ID] = struct{}{}
	c.records = append(c.records, similarity.Candidate{
		ID:        rec.ID,
		Embedding: append([]float32(nil), rec.Embedding...),
		Document:  rec.Document,
		Metadata:  copyMetadata(rec.Metadata),
	})
	return nil
}

// Query returns up to topK records by ascending cosine distance.
func (s *VectorStore) Query(_ context.Context, name string, embedding []float32, topK int) ([]domain.RetrievedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if len(embedding) != c.info.Dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(embedding), c.info.Dimensions)
	}
	return similarity.TopK(embedding, c.records, topK), nil
}

// Count returns the number of records in the collection.
func (s *VectorStore) Count(ctx context.Context, name string) (int, error) {
	c, err := s.Collection(ctx, name)
	if err != nil {
		return 0, err
	}
	return c.Count, nil
}

// Close is a no-op.
func (s *VectorStore) Close() error { return nil }

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
