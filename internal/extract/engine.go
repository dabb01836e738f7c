package extract

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/yliu-xjtu/biomanager/internal/document"
	"github.com/yliu-xjtu/biomanager/internal/entity"
)

// FallbackFields is the reduced field set a language-model fallback can supply.
type FallbackFields struct {
	Title   string
	Authors string
	Venue   string
	Year    int
}

// FallbackParser is an optional last-resort field source for texts the
// pattern cascades cannot read. ok=false means the parser is unconfigured or
// produced nothing usable; that is not an error.
type FallbackParser interface {
	ParseFields(ctx context.Context, text string) (FallbackFields, bool, error)
}

// Engine orchestrates the pattern extractors over a document to produce a
// best-effort field set.
type Engine struct {
	fallback FallbackParser // may be nil
	log      *slog.Logger
}

func NewEngine(fallback FallbackParser, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{fallback: fallback, log: log}
}

// ExtractPDF reads the first pages of a PDF and runs every field cascade.
// The returned fields are best-effort; the only hard failure is an unreadable
// document.
func (e *Engine) ExtractPDF(ctx context.Context, path string) (entity.PaperFields, error) {
	doc, err := document.Open(path, 0)
	if err != nil {
		return entity.PaperFields{}, err
	}
	fields := e.FromText(ctx, doc.Text)
	fields.PageCount = doc.PageCount
	return fields, nil
}

// FromText runs the cascades over already-extracted text.
func (e *Engine) FromText(ctx context.Context, text string) entity.PaperFields {
	fields := entity.PaperFields{
		Title:     Title(text),
		Authors:   Authors(text),
		Year:      Year(text),
		Venue:     Venue(text),
		DOI:       DOI(text),
		RawText:   text,
		CharCount: utf8.RuneCountInString(strings.TrimSpace(text)),
	}

	if e.fallback != nil && fields.Title == "" && fields.Authors == "" && !NeedsOCR(text) {
		fb, ok, err := e.fallback.ParseFields(ctx, text)
		if err != nil {
			e.log.Warn("extract.fallback.failed", "error", err)
		} else if ok {
			e.log.Info("extract.fallback.used",
				"has_title", fb.Title != "", "has_authors", fb.Authors != "")
			fields.Title = fb.Title
			fields.Authors = fb.Authors
			if fields.Venue == "" {
				fields.Venue = fb.Venue
			}
			if fields.Year == 0 {
				fields.Year = fb.Year
			}
		}
	}

	return fields
}

// FromOCRText repairs known OCR misreads and runs the OCR-specialized
// cascades, falling back to the plain ones where no specialization exists.
func (e *Engine) FromOCRText(ctx context.Context, text string) entity.PaperFields {
	corrected := CorrectOCRText(text)
	fields := entity.PaperFields{
		Title:     TitleFromOCR(corrected),
		Authors:   AuthorsFromOCR(corrected),
		Year:      Year(corrected),
		Venue:     Venue(corrected),
		DOI:       DOI(corrected),
		RawText:   corrected,
		CharCount: utf8.RuneCountInString(strings.TrimSpace(corrected)),
	}
	if fields.Title == "" {
		fields.Title = Title(corrected)
	}
	return fields
}
