// Package scrapers turns corpus files into domain elements.
//
// Each file format has its own sub-package implementing driven.Scraper:
//
//   - pdf: layout inference via pdftotext, OCR via pdftoppm and tesseract
//   - xlsx: one table element per worksheet
//
// Registry dispatches on extension and stamps every element with an id
// derived from its file, position and content, so unchanged files always
// produce the same ids.
package scrapers
