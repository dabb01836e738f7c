package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/yliu-xjtu/biomanager/internal/common"
	"github.com/yliu-xjtu/biomanager/internal/export"
	repo "github.com/yliu-xjtu/biomanager/internal/repository"
)

func main() {
	var (
		dbPath = flag.String("db", "", "SQLite database path (required)")
		out    = flag.String("out", "literature.xlsx", "output XLSX file path")
	)
	flag.Parse()

	if *dbPath == "" {
		if _, err := fmt.Fprintln(os.Stderr, "Error: --db is required"); err != nil {
			fmt.Println("Error: --db is required")
		}
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()
	cfg.Database.Path = *dbPath

	db, err := repo.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, logger)

	if err := repo.HealthCheck(ctx, db, cfg.Resolver.Timeout); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	svc := export.NewService(
		repo.NewPaperRepository(db, logger),
		repo.NewPatentRepository(db, logger),
		repo.NewSoftwareRepository(db, logger),
		logger)

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
