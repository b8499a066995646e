package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storysmith/internal/adapters/driven/ai"
	"github.com/custodia-labs/storysmith/internal/adapters/driven/embedding/mock"
	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/storysmith/internal/core/domain"
)

func seedStore(t *testing.T, store *memory.VectorStore, embedder *mock.EmbeddingService, docs ...string) {
	t.Helper()
	ctx := context.Background()
	_, err := store.EnsureCollection(ctx, domain.DefaultCollection, embedder.ModelName(), embedder.Dimensions())
	require.NoError(t, err)
	for i, doc := range docs {
		vec, err := embedder.Embed(ctx, doc)
		require.NoError(t, err)
		require.NoError(t, store.Write(ctx, domain.DefaultCollection, domain.Record{
			ID:        fmt.Sprintf("doc.pdf_e%d_0", i),
			Embedding: vec,
			Document:  doc,
			Metadata:  map[string]string{domain.MetaSource: "doc.pdf"},
		}))
	}
}

func TestRetrieve_RanksNearestFirst(t *testing.T) {
	store := memory.NewVectorStore()
	embedder := mock.NewEmbeddingService("", testDims)
	seedStore(t, store, embedder,
		"Invoices are approved by the finance team.",
		"Password reset requires email verification.",
		"The warehouse ships orders every weekday.",
		"Finance approves refunds above one thousand.",
	)

	svc := NewRetrievalService(embedder, store, "")
	res, err := svc.Retrieve(context.Background(), "Password reset requires email verification.", 2)
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "Password reset requires email verification.", res.Records[0].Document)
	assert.InDelta(t, 0, res.Records[0].Distance, 1e-6)
	assert.LessOrEqual(t, res.Records[0].Distance, res.Records[1].Distance)
	assert.Equal(t, "Password reset requires email verification.", res.Query)
}

func TestRetrieve_TopKLargerThanCollection(t *testing.T) {
	store := memory.NewVectorStore()
	embedder := mock.NewEmbeddingService("", testDims)
	seedStore(t, store, embedder, "Only one record.")

	res, err := NewRetrievalService(embedder, store, "").Retrieve(context.Background(), "record", 10)
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
}

func TestRetrieve_DefaultTopK(t *testing.T) {
	store := memory.NewVectorStore()
	embedder := mock.NewEmbeddingService("", testDims)
	seedStore(t, store, embedder, "a one", "b two", "c three", "d four", "e five")

	res, err := NewRetrievalService(embedder, store, "").Retrieve(context.Background(), "letters", 0)
	require.NoError(t, err)
	assert.Len(t, res.Records, domain.DefaultTopK)
}

func TestRetrieve_MissingCollectionIsEmpty(t *testing.T) {
	svc := NewRetrievalService(mock.NewEmbeddingService("", testDims), memory.NewVectorStore(), "")

	res, err := svc.Retrieve(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
	assert.NotNil(t, res.Records)
}

func TestRetrieve_EmptyCollectionIsEmpty(t *testing.T) {
	store := memory.NewVectorStore()
	embedder := mock.NewEmbeddingService("", testDims)
	seedStore(t, store, embedder)

	res, err := NewRetrievalService(embedder, store, "").Retrieve(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
}

func TestRetrieve_ModelMismatch(t *testing.T) {
	store := memory.NewVectorStore()
	seedStore(t, store, mock.NewEmbeddingService("model-a", testDims), "text")

	svc := NewRetrievalService(mock.NewEmbeddingService("model-b", testDims), store, "")
	_, err := svc.Retrieve(context.Background(), "text", 3)
	assert.ErrorIs(t, err, domain.ErrModelMismatch)
}

func TestRetrieve_OfflineCollectionRejectsLiveModel(t *testing.T) {
	ctx := context.Background()
	store := memory.NewVectorStore()

	offline := domain.DefaultAppSettings().Embedding
	built, err := ai.CreateEmbeddingService(&offline)
	require.NoError(t, err)
	_, err = store.EnsureCollection(ctx, domain.DefaultCollection, built.ModelName(), built.Dimensions())
	require.NoError(t, err)
	vec, err := built.Embed(ctx, "Finance approves refunds.")
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, domain.DefaultCollection, domain.Record{
		ID: "refunds.pdf_e0_0", Embedding: vec, Document: "Finance approves refunds.",
	}))

	live := domain.EmbeddingSettings{
		Provider:   domain.AIProviderOpenAI,
		Model:      domain.DefaultEmbeddingModels()[domain.AIProviderOpenAI],
		Dimensions: offline.Dimensions,
		APIKey:     "sk-test",
	}
	queried, err := ai.CreateEmbeddingService(&live)
	require.NoError(t, err)
	require.NotEqual(t, built.ModelName(), queried.ModelName())

	_, err = store.EnsureCollection(ctx, domain.DefaultCollection, queried.ModelName(), queried.Dimensions())
	assert.ErrorIs(t, err, domain.ErrModelMismatch)

	_, err = NewRetrievalService(queried, store, "").Retrieve(ctx, "refund approval", 3)
	assert.ErrorIs(t, err, domain.ErrModelMismatch)
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	svc := NewRetrievalService(mock.NewEmbeddingService("", testDims), memory.NewVectorStore(), "")
	_, err := svc.Retrieve(context.Background(), "   ", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStats(t *testing.T) {
	store := memory.NewVectorStore()
	embedder := mock.NewEmbeddingService("", testDims)
	svc := NewRetrievalService(embedder, store, "")

	_, err := svc.Stats(context.Background())
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)

	seedStore(t, store, embedder, "one", "two")
	coll, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, coll.Count)
	assert.Equal(t, domain.DefaultCollection, coll.Name)
}
