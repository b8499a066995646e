// Package storagetest holds the behaviour every driven.VectorStore backend
// must share. Backend packages call Run from their own tests.
package storagetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
)

const (
	testCollection = "ba_documents"
	testModel      = "test-embed"
	testDims       = 3
)

// Factory opens a store rooted at dir. Calling it twice with the same dir
// must reopen the same data for durable backends.
type Factory func(t *testing.T, dir string) driven.VectorStore

// Run exercises the shared vector store contract. durable backends also
// get a reopen check.
func Run(t *testing.T, open Factory, durable bool) {
	t.Helper()

	t.Run("query missing collection", func(t *testing.T) {
		store := open(t, t.TempDir())
		_, err := store.Query(context.Background(), "absent", []float32{1, 0, 0}, 3)
		assert.ErrorIs(t, err, domain.ErrCollectionNotFound)

		_, err = store.Count(context.Background(), "absent")
		assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
	})

	t.Run("query empty collection", func(t *testing.T) {
		store := open(t, t.TempDir())
		ctx := context.Background()
		_, err := store.EnsureCollection(ctx, testCollection, testModel, testDims)
		require.NoError(t, err)

		hits, err := store.Query(ctx, testCollection, []float32{1, 0, 0}, 3)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("write and query ordered", func(t *testing.T) {
		store := open(t, t.TempDir())
		ctx := context.Background()
		seed(t, store)

		hits, err := store.Query(ctx, testCollection, []float32{1, 0, 0}, 2)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "x", hits[0].ID)
		assert.Equal(t, "xy", hits[1].ID)
		assert.LessOrEqual(t, hits[0].Distance, hits[1].Distance)
		assert.Equal(t, "along x", hits[0].Document)
		assert.Equal(t, "a.pdf", hits[0].Metadata[domain.MetaSource])

		all, err := store.Query(ctx, testCollection, []float32{0, 1, 0}, 10)
		require.NoError(t, err)
		assert.Len(t, all, 3)
		for i := 1; i < len(all); i++ {
			assert.LessOrEqual(t, all[i-1].Distance, all[i].Distance)
		}
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		store := open(t, t.TempDir())
		ctx := context.Background()
		seed(t, store)

		err := store.Write(ctx, testCollection, domain.Record{ID: "x", Embedding: []float32{0, 0, 1}, Document: "other"})
		assert.ErrorIs(t, err, domain.ErrDuplicateID)

		n, err := store.Count(ctx, testCollection)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		hits, err := store.Query(ctx, testCollection, []float32{1, 0, 0}, 1)
		require.NoError(t, err)
		assert.Equal(t, "along x", hits[0].Document)
	})

	t.Run("model mismatch", func(t *testing.T) {
		store := open(t, t.TempDir())
		ctx := context.Background()
		_, err := store.EnsureCollection(ctx, testCollection, testModel, testDims)
		require.NoError(t, err)

		_, err = store.EnsureCollection(ctx, testCollection, "other-model", testDims)
		assert.ErrorIs(t, err, domain.ErrModelMismatch)

		_, err = store.EnsureCollection(ctx, testCollection, testModel, 5)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("dimension mismatch on write and query", func(t *testing.T) {
		store := open(t, t.TempDir())
		ctx := context.Background()
		_, err := store.EnsureCollection(ctx, testCollection, testModel, testDims)
		require.NoError(t, err)

		err = store.Write(ctx, testCollection, domain.Record{ID: "short", Embedding: []float32{1}})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

		_, err = store.Query(ctx, testCollection, []float32{1}, 1)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		store := open(t, t.TempDir())
		ctx := context.Background()
		seed(t, store)
		_, err := store.EnsureCollection(ctx, "other", testModel, testDims)
		require.NoError(t, err)

		n, err := store.Count(ctx, "other")
		require.NoError(t, err)
		assert.Zero(t, n)

		c, err := store.Collection(ctx, testCollection)
		require.NoError(t, err)
		assert.Equal(t, 3, c.Count)
		assert.Equal(t, testModel, c.Model)
		assert.Equal(t, testDims, c.Dimensions)
	})

	if durable {
		t.Run("survives reopen", func(t *testing.T) {
			dir := t.TempDir()
			store := open(t, dir)
			seed(t, store)
			require.NoError(t, store.Close())

			reopened := open(t, dir)
			n, err := reopened.Count(context.Background(), testCollection)
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			hits, err := reopened.Query(context.Background(), testCollection, []float32{0, 0, 1}, 1)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, "z", hits[0].ID)
		})
	}
}

func seed(t *testing.T, store driven.VectorStore) {
	t.Helper()
	ctx := context.Background()
	_, err := store.EnsureCollection(ctx, testCollection, testModel, testDims)
	require.NoError(t, err)

	records := []domain.Record{
		{ID: "x", Embedding: []float32{1, 0, 0}, Document: "along x", Metadata: map[string]string{domain.MetaSource: "a.pdf"}},
		{ID: "xy", Embedding: []float32{1, 1, 0}, Document: "between", Metadata: map[string]string{domain.MetaSource: "a.pdf"}},
		{ID: "z", Embedding: []float32{0, 0, 1}, Document: "along z", Metadata: map[string]string{domain.MetaSource: "b.xlsx"}},
	}
	for _, rec := range records {
		require.NoError(t, store.Write(ctx, testCollection, rec), fmt.Sprintf("write %s", rec.ID))
	}
}
