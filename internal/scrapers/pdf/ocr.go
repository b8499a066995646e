package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ocr rasterises every page and joins the recognised text as
// "--- Page N ---" sections.
func (s *Scraper) ocr(ctx context.Context, path string) (string, error) {
	dir, err := os.MkdirTemp("", "storysmith-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	if _, err := s.runner.Run(ctx, toolRasterise, "-r", strconv.Itoa(s.dpi), "-png", path, prefix); err != nil {
		return "", err
	}

	images, err := pageImages(dir)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := s.runner.Run(ctx, toolOCR, img, "stdout", "-l", s.language)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		fmt.Fprintf(&b, "\n--- Page %d ---\n%s", i+1, out)
	}

	text := strings.TrimSpace(b.String())
	if len(images) > 0 && isOnlyPageMarkers(text) {
		return "", nil
	}
	return text, nil
}

// pageImages returns pdftoppm's page-N.png files ordered by page number.
// pdftoppm zero-pads N to the width of the page count.
func pageImages(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}

	pageNum := func(p string) int {
		base := strings.TrimSuffix(filepath.Base(p), ".png")
		n, _ := strconv.Atoi(strings.TrimPrefix(base, "page-"))
		return n
	}
	sort.Slice(matches, func(i, j int) bool {
		return pageNum(matches[i]) < pageNum(matches[j])
	})
	return matches, nil
}

// isOnlyPageMarkers reports whether OCR produced markers but no words.
func isOnlyPageMarkers(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || (strings.HasPrefix(line, "--- Page ") && strings.HasSuffix(line, " ---")) {
			continue
		}
		return false
	}
	return true
}
