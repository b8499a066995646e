// Package pdf scrapes PDF files with poppler-utils and tesseract.
//
// Three strategies are supported:
//
//   - layout: pdftotext -layout, blocks split on blank lines, column-aligned
//     blocks promoted to tables
//   - ocr: pdftoppm renders each page, tesseract recognises its text
//   - hybrid: OCR text unioned with layout tables, falling back to layout
//     text when OCR recovers nothing
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
	"github.com/custodia-labs/storysmith/internal/logger"
	"github.com/custodia-labs/storysmith/internal/scrapers"
)

// Ensure Scraper implements the interface.
var _ driven.Scraper = (*Scraper)(nil)

// ErrToolNotFound indicates a required command-line tool is not installed.
var ErrToolNotFound = errors.New("pdf tool not found")

// External tools.
const (
	toolLayout    = "pdftotext"
	toolRasterise = "pdftoppm"
	toolOCR       = "tesseract"
)

// DefaultDPI is the rasterisation resolution for OCR.
const DefaultDPI = 300

// Scraper extracts elements from PDF files.
type Scraper struct {
	runner   driven.CommandRunner
	strategy domain.PDFStrategy
	language string
	dpi      int
	lookPath func(string) (string, error)
}

// Option configures the scraper.
type Option func(*Scraper)

// WithRunner replaces the command runner.
func WithRunner(r driven.CommandRunner) Option {
	return func(s *Scraper) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithStrategy sets the extraction strategy.
func WithStrategy(strategy domain.PDFStrategy) Option {
	return func(s *Scraper) {
		if strategy.IsValid() {
			s.strategy = strategy
		}
	}
}

// WithLanguage sets the tesseract language code.
func WithLanguage(lang string) Option {
	return func(s *Scraper) {
		if lang != "" {
			s.language = lang
		}
	}
}

// New creates a PDF scraper. Defaults to the hybrid strategy.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		runner:   scrapers.ExecRunner{},
		strategy: domain.PDFStrategyHybrid,
		language: "eng",
		dpi:      DefaultDPI,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extensions returns the handled extensions.
func (s *Scraper) Extensions() []string {
	return []string{".pdf"}
}

// Strategy returns the configured strategy.
func (s *Scraper) Strategy() domain.PDFStrategy {
	return s.strategy
}

// Scrape extracts elements from the PDF at path.
func (s *Scraper) Scrape(ctx context.Context, path string) ([]domain.Element, error) {
	switch s.strategy {
	case domain.PDFStrategyLayout:
		elements, err := s.layout(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, path, err)
		}
		return elements, nil

	case domain.PDFStrategyOCR:
		text, err := s.ocr(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, path, err)
		}
		if text == "" {
			return nil, nil
		}
		return []domain.Element{domain.NewTextElement(text)}, nil

	default:
		return s.hybrid(ctx, path)
	}
}

// hybrid unions OCR text with layout tables. Either half may fail alone.
func (s *Scraper) hybrid(ctx context.Context, path string) ([]domain.Element, error) {
	text, ocrErr := s.ocr(ctx, path)
	if ocrErr != nil {
		logger.Warn("OCR failed for %s: %v", path, ocrErr)
	}

	layoutElements, layoutErr := s.layout(ctx, path)
	if layoutErr != nil {
		logger.Warn("Layout extraction failed for %s: %v", path, layoutErr)
	}

	if ocrErr != nil && layoutErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, path, errors.Join(ocrErr, layoutErr))
	}

	if text == "" {
		logger.Debug("OCR recovered no text from %s, using layout text", path)
		return layoutElements, nil
	}

	elements := []domain.Element{domain.NewTextElement(text)}
	for _, el := range layoutElements {
		if el.Kind == domain.ElementTable {
			elements = append(elements, el)
		}
	}
	return elements, nil
}

// CheckAvailable reports the first tool the strategy needs that is missing.
func (s *Scraper) CheckAvailable() error {
	var tools []string
	switch s.strategy {
	case domain.PDFStrategyLayout:
		tools = []string{toolLayout}
	case domain.PDFStrategyOCR:
		tools = []string{toolRasterise, toolOCR}
	default:
		tools = []string{toolLayout, toolRasterise, toolOCR}
	}

	for _, tool := range tools {
		if _, err := s.lookPath(tool); err != nil {
			return fmt.Errorf("%w: %s", ErrToolNotFound, tool)
		}
	}
	return nil
}

// InstallInstructions returns how to install the external tools.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext and pdftoppm (poppler) and tesseract (OCR).

Install on macOS:
  brew install poppler tesseract

Install on Ubuntu/Debian:
  sudo apt install poppler-utils tesseract-ocr

Install on Fedora:
  sudo dnf install poppler-utils tesseract`
}
