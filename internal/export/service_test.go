package export

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yliu-xjtu/biomanager/constants"
	"github.com/yliu-xjtu/biomanager/internal/entity"
	"github.com/yliu-xjtu/biomanager/internal/repository"
)

func TestExportXLSX(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	db, err := repository.Open(ctx, ":memory:", logger)
	require.NoError(t, err)
	defer repository.Close(db, logger)

	papers := repository.NewPaperRepository(db, logger)
	patents := repository.NewPatentRepository(db, logger)
	softwares := repository.NewSoftwareRepository(db, logger)

	_, err = papers.UpsertPaper(ctx, &entity.Paper{
		Title:           "Robust Watermarking for Neural Networks",
		Authors:         "Li, Wei; Zhao, Ming",
		Year:            2023,
		Venue:           "IEEE Transactions on Information Forensics and Security",
		DOI:             "10.1109/tifs.2023.42",
		EntryType:       "article",
		PublicationType: "journal",
		BibKey:          "li2023robust",
		Confidence:      95,
		Source:          constants.SourceAuto,
	})
	require.NoError(t, err)

	_, err = patents.UpsertPatent(ctx, &entity.Patent{
		PatentNumber: "ZL202211551727.X",
		Title:        "一种数据处理方法",
		Inventors:    "张三;李四",
		PatentType:   "发明",
		FilePath:     "certs/patent1.pdf",
	})
	require.NoError(t, err)

	_, err = softwares.UpsertSoftware(ctx, &entity.Software{
		SoftwareName:       "智能文献管理系统",
		Version:            "V1.0",
		RegistrationNumber: "2023SR0456789",
		FilePath:           "certs/sw1.png",
	})
	require.NoError(t, err)

	data, err := NewService(papers, patents, softwares, logger).ExportXLSX(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	assert.ElementsMatch(t, []string{"Papers", "Patents", "Software"}, book.GetSheetList())

	title, err := book.GetCellValue("Papers", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Robust Watermarking for Neural Networks", title)

	source, err := book.GetCellValue("Papers", "K2")
	require.NoError(t, err)
	assert.Equal(t, string(constants.SourceAuto), source)

	patentNo, err := book.GetCellValue("Patents", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ZL202211551727.X", patentNo)

	regNo, err := book.GetCellValue("Software", "C2")
	require.NoError(t, err)
	assert.Equal(t, "2023SR0456789", regNo)
}

func TestExportXLSXEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	db, err := repository.Open(ctx, ":memory:", logger)
	require.NoError(t, err)
	defer repository.Close(db, logger)

	svc := NewService(
		repository.NewPaperRepository(db, logger),
		repository.NewPatentRepository(db, logger),
		repository.NewSoftwareRepository(db, logger),
		logger)

	data, err := svc.ExportXLSX(ctx)
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Papers")
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}
