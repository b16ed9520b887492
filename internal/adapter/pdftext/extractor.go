// Package pdftext extracts plain text from bulletin PDF files, one string per
// page.
package pdftext

import (
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
)

// Extractor reads PDF files from disk.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates a PDF text extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractPages returns the plain text of every page in the file. A page whose
// content stream cannot be decoded yields an empty string rather than failing
// the whole document; scanned bulletins routinely mix good and bad pages.
func (e *Extractor) ExtractPages(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("failed to extract page text", "path", path, "page", i, "error", err)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
