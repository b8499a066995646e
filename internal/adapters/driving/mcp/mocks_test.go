package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

// mockStoryService is a mock implementation of driving.StoryService.
type mockStoryService struct {
	mu    sync.Mutex
	story *domain.Story
	err   error
	last  domain.StoryRequest
}

func (m *mockStoryService) Generate(_ context.Context, req domain.StoryRequest) (*domain.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	if m.story != nil {
		return m.story, nil
	}
	return &domain.Story{Text: "story for " + req.Prompt}, nil
}

func (m *mockStoryService) lastRequest() domain.StoryRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	result     *domain.RetrievalResult
	collection *domain.Collection
	err        error
	query      string
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, _ int) (*domain.RetrievalResult, error) {
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockRetrievalService) Stats(context.Context) (*domain.Collection, error) {
	if m.collection == nil {
		return nil, domain.ErrCollectionNotFound
	}
	return m.collection, nil
}
