package scan

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yliu-xjtu/biomanager/constants"
	"github.com/yliu-xjtu/biomanager/internal/certificate"
	"github.com/yliu-xjtu/biomanager/internal/common"
	"github.com/yliu-xjtu/biomanager/internal/entity"
	"github.com/yliu-xjtu/biomanager/internal/extract"
	"github.com/yliu-xjtu/biomanager/internal/repository"
	"github.com/yliu-xjtu/biomanager/internal/resolve"
)

const paperWithDOI = `Deep Learning Approaches for Encrypted Traffic Classification

doi: 10.1234/alpha.2023.042

` + "zzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\n" +
	"zzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\n" +
	"zzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\n"

const paperForReview = `Federated Anomaly Detection Across Heterogeneous Clients

` + "zzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\n" +
	"zzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\n" +
	"zzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\nzzzzz\n"

const patentCertText = `发明专利证书
发明名称：一种数据处理方法
发 明 人：张三;李四
专 利 号：ZL202211551727.X
专利权人：某某大学
授权公告日：2023年05月16日
授权公告号：CN115908765B
`

type fixture struct {
	root      string
	db        *sql.DB
	files     repository.SourceFileRepository
	papers    repository.PaperRepository
	patents   repository.PatentRepository
	softwares repository.SoftwareRepository
	orch      *Orchestrator

	catalogHits atomic.Int64
	progress    []Progress
}

type noopRecognizer struct{}

func (noopRecognizer) Recognize(context.Context, string, int) string {
	return "[OCR Error] not available in tests"
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{root: t.TempDir()}
	logger := slog.Default()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.catalogHits.Add(1)
		switch {
		case r.URL.Path == "/crossref":
			// Bibliographic search: one title-only candidate for the review case.
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]any{"items": []map[string]any{
					{
						"DOI":   "10.9999/review-candidate",
						"title": []string{"Federated Anomaly Detection Across Heterogeneous Clients"},
					},
				}},
			})
		case strings.HasPrefix(r.URL.Path, "/crossref/"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]any{
					"DOI":             "10.1234/alpha.2023.042",
					"title":           []string{"Deep Learning Approaches for Encrypted Traffic Classification"},
					"container-title": []string{"Journal of Network Measurement"},
					"published-print": map[string]any{"date-parts": [][]int{{2023}}},
					"author":          []map[string]any{{"family": "Johnson", "given": "Alice"}},
				},
			})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
		}
	}))
	t.Cleanup(server.Close)

	ctx := context.Background()
	db, err := repository.Open(ctx, ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, logger) })
	f.db = db

	f.files = repository.NewSourceFileRepository(db, logger)
	f.papers = repository.NewPaperRepository(db, logger)
	f.patents = repository.NewPatentRepository(db, logger)
	f.softwares = repository.NewSoftwareRepository(db, logger)

	resolverCfg := common.ResolverConfig{
		CrossrefURL:    server.URL + "/crossref",
		OpenAlexURL:    server.URL + "/openalex",
		UserAgent:      "test-agent",
		Timeout:        2 * time.Second,
		Retries:        1,
		MatchThreshold: 80,
	}
	f.orch = NewOrchestrator(OrchestratorParams{
		Root:      f.root,
		Files:     f.files,
		Papers:    f.papers,
		Patents:   f.patents,
		Softwares: f.softwares,
		Engine:    extract.NewEngine(nil, logger),
		Certs:     certificate.NewExtractor(noopRecognizer{}, 4, logger),
		Resolver: resolve.NewResolver(
			resolve.NewClient(resolverCfg, server.Client(), logger), 80, logger),
		Progress: func(p Progress) { f.progress = append(f.progress, p) },
		Logger:   logger,
	})
	return f
}

func (f *fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (f *fixture) paperFor(t *testing.T, rel string) (*entity.SourceFile, *entity.Paper) {
	t.Helper()
	row, err := f.files.GetByPath(context.Background(), rel)
	require.NoError(t, err)
	require.NotNil(t, row.PaperID)
	paper, err := f.papers.GetByID(context.Background(), *row.PaperID)
	require.NoError(t, err)
	return row, paper
}

func TestOrchestratorFullPass(t *testing.T) {
	f := newFixture(t)
	f.write(t, "alpha_paper.txt", paperWithDOI)
	f.write(t, "beta_short.txt", "tiny")
	f.write(t, "gamma_review.txt", paperForReview)
	f.write(t, "junk_certificate.txt", "nothing that looks like a certificate")
	f.write(t, "patent_cert.txt", patentCertText)

	res, err := f.orch.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Scanned)
	assert.Equal(t, 3, res.Papers)
	assert.Equal(t, 1, res.Patents)
	assert.Equal(t, 1, res.Unclassified)
	assert.Zero(t, res.Failed)
	assert.Zero(t, res.Skipped)
	assert.Len(t, f.progress, 5)

	t.Run("known doi resolves directly", func(t *testing.T) {
		row, paper := f.paperFor(t, "alpha_paper.txt")
		assert.Equal(t, constants.StatusSuccess, row.ParseStatus)
		assert.Equal(t, constants.SourceDOILookup, paper.Source)
		assert.InDelta(t, 100, paper.Confidence, 0.001)
		assert.Equal(t, "10.1234/alpha.2023.042", paper.DOI)
		assert.Equal(t, "Journal of Network Measurement", paper.Venue)
		assert.Equal(t, "journal", paper.PublicationType)
		assert.Equal(t, 2023, paper.Year)
		assert.NotEmpty(t, paper.BibKey)
	})

	t.Run("short text goes to needs_ocr without catalog traffic", func(t *testing.T) {
		row, paper := f.paperFor(t, "beta_short.txt")
		assert.Equal(t, constants.StatusNeedsOCR, row.ParseStatus)
		assert.Equal(t, "Text too short", row.ParseError)
		assert.Equal(t, constants.SourcePDF, paper.Source)
		assert.Zero(t, paper.Confidence)
		assert.Equal(t, "beta_short.txt", paper.Title)
		// One DOI lookup plus the review file's two searches; the short
		// file contributes nothing.
		assert.EqualValues(t, 3, f.catalogHits.Load())
	})

	t.Run("below-threshold match persists fields but never the doi", func(t *testing.T) {
		row, paper := f.paperFor(t, "gamma_review.txt")
		assert.Equal(t, constants.StatusNeedsReview, row.ParseStatus)
		assert.Equal(t, constants.SourceReview, paper.Source)
		assert.Empty(t, paper.DOI)
		assert.InDelta(t, 40, paper.Confidence, 0.001)
	})

	t.Run("patent certificate recorded", func(t *testing.T) {
		all, err := f.patents.ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "ZL202211551727.X", all[0].PatentNumber)
		assert.Equal(t, "patent_cert.txt", all[0].FilePath)
	})

	t.Run("unclassified certificate left unrecorded", func(t *testing.T) {
		softwares, err := f.softwares.ListAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, softwares)
		_, err = f.files.GetByPath(context.Background(), "junk_certificate.txt")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestOrchestratorRescanIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.write(t, "alpha_paper.txt", paperWithDOI)
	f.write(t, "patent_cert.txt", patentCertText)

	_, err := f.orch.Run(context.Background(), nil)
	require.NoError(t, err)
	_, firstPaper := f.paperFor(t, "alpha_paper.txt")

	res, err := f.orch.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Skipped)
	assert.Zero(t, res.Papers)
	assert.Zero(t, res.Patents)

	papers, err := f.papers.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, firstPaper.ID, papers[0].ID)

	patents, err := f.patents.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, patents, 1)
}

func TestOrchestratorChangedFileIsReprocessed(t *testing.T) {
	f := newFixture(t)
	f.write(t, "alpha_paper.txt", paperWithDOI)

	_, err := f.orch.Run(context.Background(), nil)
	require.NoError(t, err)
	_, firstPaper := f.paperFor(t, "alpha_paper.txt")

	f.write(t, "alpha_paper.txt", paperWithDOI+"\nrevised edition marker\n")
	res, err := f.orch.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Papers)
	assert.Zero(t, res.Skipped)

	// Same paper row updated, not duplicated.
	papers, err := f.papers.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, firstPaper.ID, papers[0].ID)
}

func TestOrchestratorHonorsCancellation(t *testing.T) {
	f := newFixture(t)
	f.write(t, "alpha_paper.txt", paperWithDOI)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.orch.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrchestratorExclusions(t *testing.T) {
	f := newFixture(t)
	f.write(t, "keep/alpha_paper.txt", paperWithDOI)
	f.write(t, "archive/old_paper.txt", paperWithDOI)

	res, err := f.orch.Run(context.Background(), []string{"archive"})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Scanned)
	_, err = f.files.GetByPath(context.Background(), "archive/old_paper.txt")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
