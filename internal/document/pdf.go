package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// RawDocument is an immutable view of a source file: page count plus text of
// the first pages only. It is created per scan pass and discarded after
// extraction.
type RawDocument struct {
	Path      string
	PageCount int
	Text      string // concatenated text of the first MaxPages pages
}

// MaxPages bounds how many pages are read for metadata extraction.
// Titles, authors and DOIs live on the first pages; reading more only
// slows the pass down.
const MaxPages = 5

// Open reads the text layer of up to maxPages pages. maxPages <= 0 uses MaxPages.
func Open(path string, maxPages int) (*RawDocument, error) {
	if maxPages <= 0 {
		maxPages = MaxPages
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	n := maxPages
	if total < n {
		n = total
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A corrupt page loses its text but not the document.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return &RawDocument{Path: path, PageCount: total, Text: b.String()}, nil
}

// ReadText loads a plain-text source file as a RawDocument.
func ReadText(path string) (*RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file %s: %w", path, err)
	}
	return &RawDocument{Path: path, PageCount: 1, Text: string(data)}, nil
}
