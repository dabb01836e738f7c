package scan

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/yliu-xjtu/biomanager/constants"
	"github.com/yliu-xjtu/biomanager/internal/certificate"
	"github.com/yliu-xjtu/biomanager/internal/common"
	"github.com/yliu-xjtu/biomanager/internal/document"
	"github.com/yliu-xjtu/biomanager/internal/entity"
	"github.com/yliu-xjtu/biomanager/internal/extract"
	"github.com/yliu-xjtu/biomanager/internal/repository"
	"github.com/yliu-xjtu/biomanager/internal/resolve"
)

// maxParseErrorLen bounds the persisted parse_error column.
const maxParseErrorLen = 500

// Progress reports per-file scan advancement to an optional observer.
type Progress struct {
	Index  int // 1-based
	Total  int
	Path   string // root-relative
	Status string
}

// Result summarizes one scan pass.
type Result struct {
	Scanned      int
	Papers       int
	Patents      int
	Softwares    int
	Skipped      int
	Failed       int
	Unclassified int
}

// Orchestrator drives one pass over a directory tree: walk, hash, route each
// file to the paper or certificate flow, and persist the outcome.
type Orchestrator struct {
	root      string
	files     repository.SourceFileRepository
	papers    repository.PaperRepository
	patents   repository.PatentRepository
	softwares repository.SoftwareRepository
	engine    *extract.Engine
	certs     *certificate.Extractor
	resolver  *resolve.Resolver
	progress  func(Progress) // may be nil
	log       *slog.Logger
}

type OrchestratorParams struct {
	Root      string
	Files     repository.SourceFileRepository
	Papers    repository.PaperRepository
	Patents   repository.PatentRepository
	Softwares repository.SoftwareRepository
	Engine    *extract.Engine
	Certs     *certificate.Extractor
	Resolver  *resolve.Resolver
	Progress  func(Progress)
	Logger    *slog.Logger
}

func NewOrchestrator(p OrchestratorParams) *Orchestrator {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		root:      p.Root,
		files:     p.Files,
		papers:    p.Papers,
		patents:   p.Patents,
		softwares: p.Softwares,
		engine:    p.Engine,
		certs:     p.Certs,
		resolver:  p.Resolver,
		progress:  p.Progress,
		log:       logger,
	}
}

// Run walks the root and processes every discovered file. Per-file failures
// are recorded and counted; only walk errors and cancellation abort the pass.
func (o *Orchestrator) Run(ctx context.Context, excluded []string) (Result, error) {
	var res Result

	paths, err := Walk(o.root, excluded, o.log)
	if err != nil {
		return res, common.WrapError(err, "walk scan root")
	}

	total := len(paths)
	for i, rel := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		o.emit(Progress{Index: i + 1, Total: total, Path: rel, Status: "scanning"})
		res.Scanned++

		abs := filepath.Join(o.root, filepath.FromSlash(rel))
		if constants.IsCertificatePath(rel) {
			o.processCertificate(ctx, abs, rel, &res)
		} else {
			o.processPaper(ctx, abs, rel, &res)
		}
	}

	o.log.Info("scan.done",
		"scanned", res.Scanned, "papers", res.Papers, "patents", res.Patents,
		"softwares", res.Softwares, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// processPaper runs the literature flow for one file: dedup by content hash,
// extract fields, resolve against the catalogs, and persist paper + status.
func (o *Orchestrator) processPaper(ctx context.Context, abs, rel string, res *Result) {
	existing, err := o.files.GetByPath(ctx, rel)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		o.log.Error("scan.lookup_failed", "path", rel, "error", err)
		res.Failed++
		return
	}

	info, err := document.Stat(abs)
	if err != nil {
		o.recordFailure(ctx, rel, existing, info, err, res)
		return
	}

	// An unchanged file that already has its paper is settled; a hash match
	// without a linked paper means an earlier pass did not finish.
	if existing != nil && existing.ContentHash == info.SHA256 && existing.PaperID != nil {
		o.log.Debug("scan.skip_unchanged", "path", rel)
		res.Skipped++
		return
	}

	fields, err := o.extractFields(ctx, abs)
	if err != nil {
		o.recordFailure(ctx, rel, existing, info, err, res)
		return
	}

	row := o.sourceFileRow(rel, existing, info, constants.StatusPending, "")
	row, err = o.files.UpsertFile(ctx, row)
	if err != nil {
		o.log.Error("scan.upsert_file_failed", "path", rel, "error", err)
		res.Failed++
		return
	}

	if extract.NeedsOCR(fields.RawText) {
		o.recordNeedsOCR(ctx, abs, rel, row, fields, res)
		return
	}

	resolution := o.resolver.Resolve(ctx, fields)

	finalTitle := firstNonEmpty(resolution.Merged.Title, fields.Title, filepath.Base(abs))
	finalAuthors := firstNonEmpty(resolution.Merged.Authors, fields.Authors)
	finalVenue := firstNonEmpty(resolution.Merged.Venue, fields.Venue)
	finalURL := firstNonEmpty(resolution.Merged.URL, fields.URL)
	finalYear := fields.Year
	if resolution.Merged.Year > 0 {
		finalYear = resolution.Merged.Year
	}

	paper := &entity.Paper{
		ID:              existingPaperID(row),
		Title:           finalTitle,
		Authors:         finalAuthors,
		Year:            finalYear,
		Venue:           finalVenue,
		DOI:             resolution.DOI,
		URL:             finalURL,
		Volume:          resolution.Merged.Volume,
		Issue:           resolution.Merged.Issue,
		Pages:           resolution.Merged.Pages,
		EntryType:       resolve.DetectEntryType(finalVenue),
		PublicationType: resolve.DetectPublicationType(finalVenue),
		BibKey:          extract.BibKey(finalTitle, finalAuthors, finalYear, extract.BibKeyMedium),
		Confidence:      resolution.Confidence,
		Source:          resolution.Source,
	}
	paper, err = o.papers.UpsertPaper(ctx, paper)
	if err != nil {
		o.log.Error("scan.upsert_paper_failed", "path", rel, "error", err)
		res.Failed++
		return
	}
	if err := o.files.LinkPaper(ctx, row.ID, paper.ID); err != nil {
		res.Failed++
		return
	}

	status := constants.StatusNeedsOCR
	switch resolution.Source {
	case constants.SourceDOILookup, constants.SourceAuto:
		status = constants.StatusSuccess
	case constants.SourceReview:
		status = constants.StatusNeedsReview
	}
	if err := o.files.SetStatus(ctx, row.ID, status, ""); err != nil {
		res.Failed++
		return
	}

	res.Papers++
	o.log.Info("scan.paper",
		"path", rel, "status", status, "confidence", resolution.Confidence, "doi", resolution.DOI)
}

// recordNeedsOCR persists a provisional paper from whatever the cascades
// found; the file stays in needs_ocr until an OCR pass supplies usable text.
func (o *Orchestrator) recordNeedsOCR(ctx context.Context, abs, rel string, row *entity.SourceFile, fields entity.PaperFields, res *Result) {
	paper := &entity.Paper{
		ID:              existingPaperID(row),
		Title:           firstNonEmpty(fields.Title, filepath.Base(abs)),
		Authors:         fields.Authors,
		Year:            fields.Year,
		Venue:           fields.Venue,
		DOI:             fields.DOI,
		URL:             fields.URL,
		EntryType:       "article",
		PublicationType: "other",
		Confidence:      0,
		Source:          constants.SourcePDF,
	}
	paper, err := o.papers.UpsertPaper(ctx, paper)
	if err != nil {
		o.log.Error("scan.upsert_paper_failed", "path", rel, "error", err)
		res.Failed++
		return
	}
	if err := o.files.LinkPaper(ctx, row.ID, paper.ID); err != nil {
		res.Failed++
		return
	}
	if err := o.files.SetStatus(ctx, row.ID, constants.StatusNeedsOCR, "Text too short"); err != nil {
		res.Failed++
		return
	}
	res.Papers++
	o.log.Info("scan.paper_needs_ocr", "path", rel)
}

// processCertificate runs the certificate flow: already-linked files are
// final, everything else is classified and extracted. Unclassified files are
// left unrecorded so the next pass retries them.
func (o *Orchestrator) processCertificate(ctx context.Context, abs, rel string, res *Result) {
	hasPatent, err := o.patents.ExistsByPath(ctx, rel)
	if err != nil {
		res.Failed++
		return
	}
	hasSoftware, err := o.softwares.ExistsByPath(ctx, rel)
	if err != nil {
		res.Failed++
		return
	}
	if hasPatent || hasSoftware {
		o.log.Debug("scan.skip_linked_certificate", "path", rel)
		res.Skipped++
		return
	}

	result, err := o.certs.Extract(ctx, abs)
	if err != nil {
		o.log.Error("scan.certificate_failed", "path", rel, "error", err)
		res.Failed++
		return
	}

	switch result.Kind {
	case constants.KindPatent:
		p := &entity.Patent{
			PatentNumber:    result.Patent.PatentNumber,
			GrantNumber:     result.Patent.GrantNumber,
			Title:           firstNonEmpty(result.Patent.Title, filepath.Base(abs)),
			Inventors:       result.Patent.Inventors,
			Patentee:        result.Patent.Patentee,
			ApplicationDate: result.Patent.ApplicationDate,
			GrantDate:       result.Patent.GrantDate,
			PatentType:      firstNonEmpty(result.Patent.PatentType, "发明"),
			FilePath:        rel,
		}
		if _, err := o.patents.UpsertPatent(ctx, p); err != nil {
			res.Failed++
			return
		}
		res.Patents++
		o.log.Info("scan.patent", "path", rel, "patent_number", p.PatentNumber, "method", result.Method)
	case constants.KindSoftware:
		s := &entity.Software{
			SoftwareName:       firstNonEmpty(result.Software.SoftwareName, filepath.Base(abs)),
			Version:            result.Software.Version,
			RegistrationNumber: result.Software.RegistrationNumber,
			CopyrightHolder:    result.Software.CopyrightHolder,
			DevelopmentDate:    result.Software.DevelopmentDate,
			FilePath:           rel,
		}
		if _, err := o.softwares.UpsertSoftware(ctx, s); err != nil {
			res.Failed++
			return
		}
		res.Softwares++
		o.log.Info("scan.software", "path", rel, "registration_number", s.RegistrationNumber, "method", result.Method)
	default:
		res.Unclassified++
		o.log.Info("scan.no_certificate_detected", "path", rel)
	}
}

// extractFields routes by format: plain text files skip the PDF reader.
func (o *Orchestrator) extractFields(ctx context.Context, abs string) (entity.PaperFields, error) {
	if constants.MapExtToFormat(filepath.Ext(abs)) == constants.TXT {
		doc, err := document.ReadText(abs)
		if err != nil {
			return entity.PaperFields{}, err
		}
		return o.engine.FromText(ctx, doc.Text), nil
	}
	return o.engine.ExtractPDF(ctx, abs)
}

// recordFailure marks the file failed with a truncated error message. The
// existing paper link, if any, is preserved.
func (o *Orchestrator) recordFailure(ctx context.Context, rel string, existing *entity.SourceFile, info document.FileInfo, cause error, res *Result) {
	o.log.Error("scan.file_failed", "path", rel, "error", cause)
	row := o.sourceFileRow(rel, existing, info, constants.StatusFailed,
		common.Truncate(cause.Error(), maxParseErrorLen))
	if _, err := o.files.UpsertFile(ctx, row); err != nil {
		o.log.Error("scan.record_failure_failed", "path", rel, "error", err)
	}
	res.Failed++
}

func (o *Orchestrator) sourceFileRow(rel string, existing *entity.SourceFile, info document.FileInfo, status constants.ParseStatus, parseError string) *entity.SourceFile {
	row := &entity.SourceFile{
		Path:        rel,
		Filename:    info.Filename,
		ContentHash: info.SHA256,
		FileSize:    info.Size,
		ModTime:     info.ModTime,
		ParseStatus: status,
		ParseError:  parseError,
	}
	if existing != nil {
		row.ID = existing.ID
		row.PaperID = existing.PaperID
	}
	return row
}

func (o *Orchestrator) emit(p Progress) {
	if o.progress != nil {
		o.progress(p)
	}
}

// existingPaperID reuses the linked paper's ID so re-extraction updates the
// record in place instead of creating a duplicate.
func existingPaperID(row *entity.SourceFile) uuid.UUID {
	if row != nil && row.PaperID != nil {
		return *row.PaperID
	}
	return uuid.Nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
