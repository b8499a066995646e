package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

type mockStory struct {
	text string
	err  error
	last domain.StoryRequest
}

func (m *mockStory) Generate(_ context.Context, req domain.StoryRequest) (*domain.Story, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Story{Text: m.text}, nil
}

type mockRetrieval struct {
	coll *domain.Collection
}

func (m *mockRetrieval) Retrieve(context.Context, string, int) (*domain.RetrievalResult, error) {
	return &domain.RetrievalResult{}, nil
}

func (m *mockRetrieval) Stats(context.Context) (*domain.Collection, error) {
	if m.coll == nil {
		return nil, domain.ErrCollectionNotFound
	}
	return m.coll, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGenerateStory(t *testing.T) {
	story := &mockStory{text: "SUMMARY:\nLogin"}
	rec := do(t, NewRouter(story, nil), http.MethodPost, "/generate-story", `{"prompt":"Write a login story"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SUMMARY:\nLogin", resp.Story)
	assert.Equal(t, "Write a login story", story.last.Prompt)
	assert.False(t, story.last.CreateIssue)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestGenerateStory_JiraFields(t *testing.T) {
	story := &mockStory{text: "ok"}
	rec := do(t, NewRouter(story, nil), http.MethodPost, "/generate-story",
		`{"prompt":"p","create_jira":true,"project_key":"BA","labels":["x"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, story.last.CreateIssue)
	assert.Equal(t, "BA", story.last.ProjectKey)
	assert.Equal(t, []string{"x"}, story.last.Labels)
}

func TestGenerateStory_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing prompt", body: `{}`},
		{name: "blank prompt", body: `{"prompt":"   "}`},
		{name: "not json", body: `prompt=hi`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			story := &mockStory{}
			rec := do(t, NewRouter(story, nil), http.MethodPost, "/generate-story", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
			assert.Empty(t, story.last.Prompt)
		})
	}
}

func TestGenerateStory_ServiceError(t *testing.T) {
	rec := do(t, NewRouter(&mockStory{err: errors.New("store offline")}, nil),
		http.MethodPost, "/generate-story", `{"prompt":"p"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "store offline")
}

func TestHealthz(t *testing.T) {
	rec := do(t, NewRouter(&mockStory{}, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestIDEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	NewRouter(&mockStory{}, nil).ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestStats(t *testing.T) {
	t.Run("disabled without retrieval", func(t *testing.T) {
		rec := do(t, NewRouter(&mockStory{}, nil), http.MethodGet, "/stats", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing collection", func(t *testing.T) {
		rec := do(t, NewRouter(&mockStory{}, &mockRetrieval{}), http.MethodGet, "/stats", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"name":"ba_documents","count":0}`, rec.Body.String())
	})

	t.Run("reports collection", func(t *testing.T) {
		rec := do(t, NewRouter(&mockStory{}, &mockRetrieval{coll: &domain.Collection{
			Name: "ba_documents", Model: "m", Dimensions: 8, Count: 3,
		}}), http.MethodGet, "/stats", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"name":"ba_documents","model":"m","dimensions":8,"count":3}`, rec.Body.String())
	})
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", NewRouter(&mockStory{}, nil)) }()
	cancel()
	assert.NoError(t, <-done)
}
