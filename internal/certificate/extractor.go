package certificate

import (
	"context"
	"log/slog"
	"path/filepath"
	"unicode/utf8"

	"github.com/yliu-xjtu/biomanager/constants"
	"github.com/yliu-xjtu/biomanager/internal/document"
	"github.com/yliu-xjtu/biomanager/internal/entity"
	"github.com/yliu-xjtu/biomanager/internal/ocr"
)

// certificateMaxPages bounds the direct-text read; certificates are one or
// two pages.
const certificateMaxPages = 2

// shortTextThreshold is the direct-text length, in characters, below which a
// PDF is assumed to be image-only and sent straight to OCR.
const shortTextThreshold = 100

// Recognizer is the OCR gateway contract the extractor depends on. It never
// fails: errors come back as sentinel text (see ocr.IsErrorText).
type Recognizer interface {
	Recognize(ctx context.Context, path string, page int) string
}

// Extractor classifies a certificate file and extracts class-specific fields,
// escalating to a single OCR remedy pass when direct-text extraction leaves
// too many fields empty.
type Extractor struct {
	recognizer          Recognizer
	remedyMissingFields int
	log                 *slog.Logger
}

func NewExtractor(recognizer Recognizer, remedyMissingFields int, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	if remedyMissingFields <= 0 {
		remedyMissingFields = 4
	}
	return &Extractor{
		recognizer:          recognizer,
		remedyMissingFields: remedyMissingFields,
		log:                 log,
	}
}

// Extract reads the file, classifies it, and extracts fields.
// Kind is KindNone when no certificate markers are found; that is an outcome,
// not an error.
func (e *Extractor) Extract(ctx context.Context, path string) (entity.CertificateResult, error) {
	text, method, err := e.readText(ctx, path)
	if err != nil {
		return entity.CertificateResult{}, err
	}
	return e.FromText(ctx, path, text, method), nil
}

// FromText classifies already-read text and extracts class-specific fields.
// A direct-text extraction that leaves at least remedyMissingFields empty
// escalates to a single OCR pass that fills only the missing fields.
func (e *Extractor) FromText(ctx context.Context, path, text string, method constants.ExtractionMethod) entity.CertificateResult {
	result := entity.CertificateResult{Method: method, RawText: text}

	switch Classify(text) {
	case constants.KindPatent:
		result.Kind = constants.KindPatent
		result.Patent = ExtractPatent(text)
		if missing := missingPatentFields(result.Patent); missing >= e.remedyMissingFields && method == constants.MethodPDFText {
			e.log.Info("certificate.remedy.start", "path", path, "missing_fields", missing)
			if ocrText := e.recognizeUsable(ctx, path); ocrText != "" {
				remedied := ExtractPatent(ocrText)
				fillMissingPatent(&result.Patent, remedied)
				result.Method = constants.MethodPDFOCR
			}
		}
	case constants.KindSoftware:
		result.Kind = constants.KindSoftware
		result.Software = ExtractSoftware(text)
		if missing := missingSoftwareFields(result.Software); missing >= e.remedyMissingFields && method == constants.MethodPDFText {
			e.log.Info("certificate.remedy.start", "path", path, "missing_fields", missing)
			if ocrText := e.recognizeUsable(ctx, path); ocrText != "" {
				remedied := ExtractSoftware(ocrText)
				fillMissingSoftware(&result.Software, remedied)
				result.Method = constants.MethodPDFOCR
			}
		}
	default:
		e.log.Info("certificate.unclassified", "path", path, "chars", utf8.RuneCountInString(text))
	}

	return result
}

// readText picks the initial extraction source by file type.
func (e *Extractor) readText(ctx context.Context, path string) (string, constants.ExtractionMethod, error) {
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.IMAGE:
		return e.recognizeUsable(ctx, path), constants.MethodOCR, nil
	case constants.PDF:
		doc, err := document.Open(path, certificateMaxPages)
		if err != nil {
			return "", "", err
		}
		if usableDirectText(doc.Text) {
			return doc.Text, constants.MethodPDFText, nil
		}
		e.log.Info("certificate.text_too_short", "path", path, "chars", utf8.RuneCountInString(doc.Text))
		if ocrText := e.recognizeUsable(ctx, path); ocrText != "" {
			return ocrText, constants.MethodOCR, nil
		}
		return doc.Text, constants.MethodPDFText, nil
	default:
		doc, err := document.ReadText(path)
		if err != nil {
			return "", "", err
		}
		return doc.Text, constants.MethodTextFile, nil
	}
}

// usableDirectText reports whether a PDF text layer is long enough to trust,
// counted in characters so CJK certificates measure the same as Latin ones.
func usableDirectText(text string) bool {
	return utf8.RuneCountInString(text) >= shortTextThreshold
}

// recognizeUsable calls OCR on page 0 and filters the error sentinel.
func (e *Extractor) recognizeUsable(ctx context.Context, path string) string {
	text := e.recognizer.Recognize(ctx, path, 0)
	if ocr.IsErrorText(text) {
		e.log.Warn("certificate.ocr_failed", "path", path, "sentinel", text)
		return ""
	}
	return text
}

func missingPatentFields(f entity.PatentFields) int {
	n := 0
	for _, v := range []string{
		f.PatentNumber, f.Title, f.Inventors, f.Patentee,
		f.GrantNumber, f.ApplicationDate, f.GrantDate,
	} {
		if v == "" {
			n++
		}
	}
	return n
}

func missingSoftwareFields(f entity.SoftwareFields) int {
	n := 0
	for _, v := range []string{
		f.SoftwareName, f.RegistrationNumber, f.CopyrightHolder,
		f.DevelopmentDate, f.Version,
	} {
		if v == "" {
			n++
		}
	}
	return n
}

// fillMissingPatent copies OCR-remedy values into fields the direct-text pass
// left empty, never overwriting populated fields.
func fillMissingPatent(dst *entity.PatentFields, src entity.PatentFields) {
	if dst.PatentNumber == "" {
		dst.PatentNumber = src.PatentNumber
	}
	if dst.GrantNumber == "" {
		dst.GrantNumber = src.GrantNumber
	}
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Inventors == "" {
		dst.Inventors = src.Inventors
	}
	if dst.Patentee == "" {
		dst.Patentee = src.Patentee
	}
	if dst.ApplicationDate == "" {
		dst.ApplicationDate = src.ApplicationDate
	}
	if dst.GrantDate == "" {
		dst.GrantDate = src.GrantDate
	}
}

func fillMissingSoftware(dst *entity.SoftwareFields, src entity.SoftwareFields) {
	if dst.SoftwareName == "" {
		dst.SoftwareName = src.SoftwareName
	}
	if dst.Version == "" {
		dst.Version = src.Version
	}
	if dst.RegistrationNumber == "" {
		dst.RegistrationNumber = src.RegistrationNumber
	}
	if dst.CopyrightHolder == "" {
		dst.CopyrightHolder = src.CopyrightHolder
	}
	if dst.DevelopmentDate == "" {
		dst.DevelopmentDate = src.DevelopmentDate
	}
}
