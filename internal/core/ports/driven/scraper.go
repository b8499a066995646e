package driven

import (
	"context"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

// Scraper extracts ordered elements from a single file.
type Scraper interface {
	// Extensions returns the lower-case file extensions handled, with leading dot.
	Extensions() []string

	// Scrape returns the file's elements in document order.
	// Failures wrap domain.ErrExtraction.
	Scrape(ctx context.Context, path string) ([]domain.Element, error)
}

// ScraperRegistry dispatches a file to the scraper for its extension.
type ScraperRegistry interface {
	// Register adds a scraper for all its extensions.
	Register(s Scraper)

	// Scrape dispatches on extension. Unknown extensions return
	// domain.ErrUnsupportedFormat.
	Scrape(ctx context.Context, path string) ([]domain.Element, error)

	// Supports reports whether a scraper handles the path's extension.
	Supports(path string) bool
}

// CommandRunner executes external programs.
// Scrapers that shell out to OCR or layout tools take one so tests can stub them.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
