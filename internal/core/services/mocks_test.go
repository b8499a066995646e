package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
)

// fakeSource lists a fixed set of files and replays watch events.
type fakeSource struct {
	files   []driven.CorpusFile
	events  []driven.CorpusFile
	listErr error
}

func (f *fakeSource) List(context.Context, string, []string) ([]driven.CorpusFile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeSource) Watch(ctx context.Context, _ string, _ []string) (<-chan driven.CorpusFile, <-chan error, error) {
	files := make(chan driven.CorpusFile)
	errs := make(chan error)
	go func() {
		defer close(files)
		for _, ev := range f.events {
			select {
			case files <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return files, errs, nil
}

// fakeScrapers maps a path to the elements or error its scrape returns.
type fakeScrapers struct {
	mu       sync.Mutex
	elements map[string][]domain.Element
	errs     map[string]error
	calls    []string
}

func newFakeScrapers() *fakeScrapers {
	return &fakeScrapers{
		elements: make(map[string][]domain.Element),
		errs:     make(map[string]error),
	}
}

func (f *fakeScrapers) Register(driven.Scraper) {}

func (f *fakeScrapers) Scrape(_ context.Context, path string) ([]domain.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	return f.elements[path], nil
}

func (f *fakeScrapers) Supports(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".pdf" || ext == ".xlsx"
}

// failingEmbedder fails every call after the first n batches.
type failingEmbedder struct {
	driven.EmbeddingService
	mu    sync.Mutex
	after int
	calls int
}

func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if n > f.after {
		return nil, errors.New("embedding backend down")
	}
	return f.EmbeddingService.EmbedBatch(ctx, texts)
}

// selectiveEmbedder fails any batch containing a text with the marker.
type selectiveEmbedder struct {
	driven.EmbeddingService
	marker string
}

func (s *selectiveEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for _, t := range texts {
		if strings.Contains(t, s.marker) {
			return nil, errors.New("embedding rejected input")
		}
	}
	return s.EmbeddingService.EmbedBatch(ctx, texts)
}

// failingLLM always fails.
type failingLLM struct{ err error }

func (f *failingLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return "", f.err
}
func (f *failingLLM) ModelName() string          { return "broken" }
func (f *failingLLM) Ping(context.Context) error { return f.err }
func (f *failingLLM) Close() error               { return nil }

// fakeTracker records the request and answers with a fixed issue or error.
type fakeTracker struct {
	issue *domain.Issue
	err   error
	calls int
	last  domain.IssueRequest
}

func (f *fakeTracker) CreateIssue(_ context.Context, req domain.IssueRequest) (*domain.Issue, error) {
	f.calls++
	f.last = req
	return f.issue, f.err
}

func (f *fakeTracker) DefaultProject() string { return "BA" }

// fakeRetriever returns a fixed result or error.
type fakeRetriever struct {
	result *domain.RetrievalResult
	err    error
	topK   int
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, topK int) (*domain.RetrievalResult, error) {
	f.topK = topK
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &domain.RetrievalResult{Query: query}, nil
	}
	return f.result, nil
}

func (f *fakeRetriever) Stats(context.Context) (*domain.Collection, error) {
	return nil, domain.ErrCollectionNotFound
}

// fakePrompts serves templates from a map.
type fakePrompts map[string]string

func (f fakePrompts) Load(name string) (string, error) {
	if p, ok := f[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (f fakePrompts) Reload() {}
