package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yliu-xjtu/biomanager/internal/certificate"
	"github.com/yliu-xjtu/biomanager/internal/common"
	"github.com/yliu-xjtu/biomanager/internal/export"
	"github.com/yliu-xjtu/biomanager/internal/extract"
	"github.com/yliu-xjtu/biomanager/internal/llm"
	"github.com/yliu-xjtu/biomanager/internal/ocr"
	repo "github.com/yliu-xjtu/biomanager/internal/repository"
	"github.com/yliu-xjtu/biomanager/internal/resolve"
	"github.com/yliu-xjtu/biomanager/internal/scan"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir      = flag.String("dir", "", "directory to scan (required)")
		dbPath   = flag.String("db", "", "SQLite database path (defaults next to --dir)")
		exclude  = flag.String("exclude", "", "comma-separated folders to skip, relative to --dir")
		out      = flag.String("out", "", "write an XLSX export here after the scan (optional)")
		verbose  = flag.Bool("v", false, "debug logging")
		progress = flag.Bool("progress", true, "print per-file progress to stderr")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	} else if cfg.Database.Path == "literature.db" {
		cfg.Database.Path = filepath.Join(*dir, "literature.db")
	}

	db, err := repo.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, logger)

	filesRepo := repo.NewSourceFileRepository(db, logger)
	papersRepo := repo.NewPaperRepository(db, logger)
	patentsRepo := repo.NewPatentRepository(db, logger)
	softwaresRepo := repo.NewSoftwareRepository(db, logger)

	httpClient, err := common.NewHTTPClient(cfg.Proxy, cfg.Resolver.Timeout)
	if err != nil {
		logger.Error("failed to build http client", "error", err)
		os.Exit(1)
	}
	ocrClient, err := common.NewHTTPClient(cfg.Proxy, cfg.OCR.Timeout)
	if err != nil {
		logger.Error("failed to build ocr http client", "error", err)
		os.Exit(1)
	}

	llmClient, err := common.NewHTTPClient(cfg.Proxy, cfg.LLM.Timeout)
	if err != nil {
		logger.Error("failed to build llm http client", "error", err)
		os.Exit(1)
	}

	var fallback extract.FallbackParser
	if parser := llm.NewParser(cfg.LLM, llmClient, logger); parser.Enabled() {
		logger.Info("llm fallback enabled", "model", cfg.LLM.Model)
		fallback = parser
	}

	engine := extract.NewEngine(fallback, logger)
	gateway := ocr.NewGateway(func() common.OCRConfig { return cfg.OCR }, ocrClient, logger)
	certs := certificate.NewExtractor(gateway, cfg.Certificate.RemedyMissingFields, logger)
	resolver := resolve.NewResolver(
		resolve.NewClient(cfg.Resolver, httpClient, logger),
		cfg.Resolver.MatchThreshold, logger)

	var onProgress func(scan.Progress)
	if *progress {
		onProgress = func(p scan.Progress) {
			printError("[%d/%d] %s\n", p.Index, p.Total, p.Path)
		}
	}

	orch := scan.NewOrchestrator(scan.OrchestratorParams{
		Root:      *dir,
		Files:     filesRepo,
		Papers:    papersRepo,
		Patents:   patentsRepo,
		Softwares: softwaresRepo,
		Engine:    engine,
		Certs:     certs,
		Resolver:  resolver,
		Progress:  onProgress,
		Logger:    logger,
	})

	var excluded []string
	for _, e := range strings.Split(*exclude, ",") {
		if e = strings.TrimSpace(e); e != "" {
			excluded = append(excluded, e)
		}
	}

	result, err := orch.Run(ctx, excluded)
	if err != nil {
		logger.Error("scan failed", "error", err)
		os.Exit(1)
	}
	logger.Info("scan summary",
		"scanned", result.Scanned, "papers", result.Papers,
		"patents", result.Patents, "softwares", result.Softwares,
		"skipped", result.Skipped, "failed", result.Failed,
		"unclassified", result.Unclassified)

	if *out != "" {
		svc := export.NewService(papersRepo, patentsRepo, softwaresRepo, logger)
		data, err := svc.ExportXLSX(ctx)
		if err != nil {
			logger.Error("export failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			logger.Error("failed to write export", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("export written", "path", *out, "bytes", len(data))
	}
}
