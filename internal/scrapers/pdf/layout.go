package pdf

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/scrapers"
)

// columnGap separates cells in pdftotext -layout output.
var columnGap = regexp.MustCompile(`\s{2,}`)

// layout runs pdftotext -layout and splits the output into elements.
func (s *Scraper) layout(ctx context.Context, path string) ([]domain.Element, error) {
	out, err := s.runner.Run(ctx, toolLayout, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, err
	}
	return parseLayout(string(out)), nil
}

// parseLayout splits pages on form feeds and blocks on blank lines.
func parseLayout(text string) []domain.Element {
	var elements []domain.Element

	for pageIdx, page := range strings.Split(text, "\f") {
		for _, block := range splitBlocks(page) {
			var el domain.Element
			if rows, ok := inferTable(block); ok {
				html, plain := scrapers.RenderTable(rows)
				el = domain.NewTableElement(html, plain)
			} else {
				el = domain.NewTextElement(joinLines(block))
			}
			if el.IsEmpty() {
				continue
			}
			el.Page = pageIdx + 1
			elements = append(elements, el)
		}
	}
	return elements
}

// splitBlocks groups non-blank lines separated by blank lines.
func splitBlocks(page string) [][]string {
	var blocks [][]string
	var current []string

	for _, line := range strings.Split(page, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// inferTable treats a block as a table when it has at least two lines and
// at least two thirds of them split into the same number (>= 2) of columns.
func inferTable(lines []string) ([][]string, bool) {
	if len(lines) < 2 {
		return nil, false
	}

	rows := make([][]string, len(lines))
	counts := make(map[int]int)
	for i, line := range lines {
		rows[i] = columnGap.Split(strings.TrimSpace(line), -1)
		counts[len(rows[i])]++
	}

	modal, freq := 0, 0
	for n, c := range counts {
		if c > freq || (c == freq && n > modal) {
			modal, freq = n, c
		}
	}
	if modal < 2 || freq*3 < len(lines)*2 {
		return nil, false
	}
	return rows, true
}

// joinLines collapses layout indentation while keeping line breaks.
func joinLines(lines []string) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(out, "\n")
}
