// Package xlsx scrapes spreadsheets into one table element per worksheet.
package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
	"github.com/custodia-labs/storysmith/internal/logger"
	"github.com/custodia-labs/storysmith/internal/scrapers"
)

// Ensure Scraper implements the interface.
var _ driven.Scraper = (*Scraper)(nil)

// Scraper extracts worksheet tables.
type Scraper struct{}

// New creates a spreadsheet scraper.
func New() *Scraper {
	return &Scraper{}
}

// Extensions returns the handled extensions.
func (s *Scraper) Extensions() []string {
	return []string{".xlsx"}
}

// Scrape returns a table element for every worksheet with content.
func (s *Scraper) Scrape(ctx context.Context, path string) ([]domain.Element, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, path, err)
	}
	defer f.Close()

	var elements []domain.Element
	for i, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: %s sheet %q: %w", domain.ErrExtraction, path, sheet, err)
		}

		html, plain := scrapers.RenderTable(rows)
		if html == "" {
			logger.Debug("Sheet %q in %s is empty", sheet, path)
			continue
		}

		el := domain.NewTableElement(html, plain)
		el.Sheet = sheet
		el.Page = i + 1
		elements = append(elements, el)
	}
	return elements, nil
}
