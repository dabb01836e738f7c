package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yliu-xjtu/biomanager/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	papers    repository.PaperRepository
	patents   repository.PatentRepository
	softwares repository.SoftwareRepository
	logger    *slog.Logger
}

func NewService(papers repository.PaperRepository, patents repository.PatentRepository, softwares repository.SoftwareRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{papers: papers, patents: patents, softwares: softwares, logger: logger}
}

// ExportXLSX returns a workbook with one sheet per record kind: papers,
// patents, and software copyrights.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()

	paperRows, err := s.writePapers(ctx, f)
	if err != nil {
		return nil, err
	}
	patentRows, err := s.writePatents(ctx, f)
	if err != nil {
		return nil, err
	}
	softwareRows, err := s.writeSoftwares(ctx, f)
	if err != nil {
		return nil, err
	}

	// excelize seeds a default "Sheet1"; drop it once real sheets exist.
	_ = f.DeleteSheet("Sheet1")
	if index, err := f.GetSheetIndex("Papers"); err == nil && index >= 0 {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"papers", paperRows,
		"patents", patentRows,
		"softwares", softwareRows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writePapers(ctx context.Context, f *excelize.File) (int, error) {
	recs, err := s.papers.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("query papers: %w", err)
	}

	const sheet = "Papers"
	if err := newSheet(f, sheet, []string{
		"Title", "Authors", "Year", "Venue", "DOI", "URL",
		"Entry Type", "Publication Type", "BibTeX Key", "Confidence", "Source",
	}); err != nil {
		return 0, err
	}

	row := 2
	for _, p := range recs {
		write := cellWriter(f, sheet, row)
		write(1, p.Title)
		write(2, p.Authors)
		if p.Year > 0 {
			write(3, p.Year)
		} else {
			write(3, "")
		}
		write(4, p.Venue)
		write(5, p.DOI)
		write(6, p.URL)
		write(7, p.EntryType)
		write(8, p.PublicationType)
		write(9, p.BibKey)
		write(10, p.Confidence)
		write(11, string(p.Source))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 60)
	_ = f.SetColWidth(sheet, "B", "B", 40)
	_ = f.SetColWidth(sheet, "D", "D", 40)
	_ = f.SetColWidth(sheet, "E", "F", 32)
	return len(recs), nil
}

func (s *Service) writePatents(ctx context.Context, f *excelize.File) (int, error) {
	recs, err := s.patents.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("query patents: %w", err)
	}

	const sheet = "Patents"
	if err := newSheet(f, sheet, []string{
		"Patent Number", "Grant Number", "Title", "Inventors", "Patentee",
		"Application Date", "Grant Date", "Patent Type", "File Path",
	}); err != nil {
		return 0, err
	}

	row := 2
	for _, p := range recs {
		write := cellWriter(f, sheet, row)
		write(1, p.PatentNumber)
		write(2, p.GrantNumber)
		write(3, p.Title)
		write(4, p.Inventors)
		write(5, p.Patentee)
		write(6, p.ApplicationDate)
		write(7, p.GrantDate)
		write(8, p.PatentType)
		write(9, p.FilePath)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "B", 20)
	_ = f.SetColWidth(sheet, "C", "C", 50)
	_ = f.SetColWidth(sheet, "D", "E", 35)
	_ = f.SetColWidth(sheet, "I", "I", 60)
	return len(recs), nil
}

func (s *Service) writeSoftwares(ctx context.Context, f *excelize.File) (int, error) {
	recs, err := s.softwares.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("query softwares: %w", err)
	}

	const sheet = "Software"
	if err := newSheet(f, sheet, []string{
		"Software Name", "Version", "Registration Number",
		"Copyright Holder", "Development Date", "File Path",
	}); err != nil {
		return 0, err
	}

	row := 2
	for _, sw := range recs {
		write := cellWriter(f, sheet, row)
		write(1, sw.SoftwareName)
		write(2, sw.Version)
		write(3, sw.RegistrationNumber)
		write(4, sw.CopyrightHolder)
		write(5, sw.DevelopmentDate)
		write(6, sw.FilePath)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 50)
	_ = f.SetColWidth(sheet, "C", "D", 30)
	_ = f.SetColWidth(sheet, "F", "F", 60)
	return len(recs), nil
}

func newSheet(f *excelize.File, sheet string, headers []string) error {
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	return nil
}

func cellWriter(f *excelize.File, sheet string, row int) func(col int, v any) {
	return func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
