package scrapers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
	"github.com/custodia-labs/storysmith/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ScraperRegistry = (*Registry)(nil)

// elementNamespace scopes element UUIDs to this application.
var elementNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://storysmith.dev/elements"))

// Registry maps file extensions to scrapers.
type Registry struct {
	mu       sync.RWMutex
	scrapers map[string]driven.Scraper
}

// NewRegistry creates a registry holding the given scrapers.
func NewRegistry(scrapers ...driven.Scraper) *Registry {
	r := &Registry{scrapers: make(map[string]driven.Scraper)}
	for _, s := range scrapers {
		r.Register(s)
	}
	return r
}

// Register adds a scraper for all its extensions. Later registrations win.
func (r *Registry) Register(s driven.Scraper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range s.Extensions() {
		r.scrapers[strings.ToLower(ext)] = s
	}
}

// Supports reports whether a scraper handles the path's extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.lookup(path)
	return ok
}

// Scrape dispatches to the scraper for path and assigns element ids.
func (r *Registry) Scrape(ctx context.Context, path string) ([]domain.Element, error) {
	s, ok := r.lookup(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}

	logger.Debug("Scraping %s", path)
	elements, err := s.Scrape(ctx, path)
	if err != nil {
		return nil, err
	}

	AssignIDs(filepath.Base(path), elements)
	return elements, nil
}

func (r *Registry) lookup(path string) (driven.Scraper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scrapers[strings.ToLower(filepath.Ext(path))]
	return s, ok
}

// AssignIDs sets a name-based UUID on every element that has none.
func AssignIDs(source string, elements []domain.Element) {
	for i := range elements {
		if elements[i].ID != "" {
			continue
		}
		name := fmt.Sprintf("%s\x00%d\x00%s\x00%s", source, i, elements[i].Kind, elements[i].Content())
		elements[i].ID = uuid.NewSHA1(elementNamespace, []byte(name)).String()
	}
}
