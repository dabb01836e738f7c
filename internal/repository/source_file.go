package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yliu-xjtu/biomanager/constants"
	"github.com/yliu-xjtu/biomanager/internal/common"
	"github.com/yliu-xjtu/biomanager/internal/entity"
)

type SourceFileRepository interface {
	GetByPath(ctx context.Context, path string) (*entity.SourceFile, error)
	UpsertFile(ctx context.Context, f *entity.SourceFile) (*entity.SourceFile, error)
	SetStatus(ctx context.Context, id uuid.UUID, status constants.ParseStatus, parseError string) error
	LinkPaper(ctx context.Context, id, paperID uuid.UUID) error
	ListByStatus(ctx context.Context, status constants.ParseStatus) ([]*entity.SourceFile, error)
}

type sourceFileRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSourceFileRepository(db *sql.DB, logger *slog.Logger) SourceFileRepository {
	return &sourceFileRepo{db: db, logger: logger}
}

const sourceFileCols = `id, path, filename, content_hash, file_size, mod_time, parse_status, parse_error, paper_id, scanned_at`

func (r *sourceFileRepo) GetByPath(ctx context.Context, path string) (*entity.SourceFile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sourceFileCols+` FROM source_files WHERE path = ?`, path)
	f, err := scanSourceFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source file %q: %w", path, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get source file by path", "path", path, "error", err)
		return nil, common.NewAppError("DB_QUERY", "get source file", err)
	}
	return f, nil
}

// UpsertFile inserts a new row for an unseen path or refreshes hash, size,
// mtime and status on an existing one. The stored ID is stable across rescans.
func (r *sourceFileRepo) UpsertFile(ctx context.Context, f *entity.SourceFile) (*entity.SourceFile, error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.ScannedAt.IsZero() {
		f.ScannedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO source_files (`+sourceFileCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			filename     = excluded.filename,
			content_hash = excluded.content_hash,
			file_size    = excluded.file_size,
			mod_time     = excluded.mod_time,
			parse_status = excluded.parse_status,
			parse_error  = excluded.parse_error,
			scanned_at   = excluded.scanned_at`,
		f.ID.String(), f.Path, f.Filename, f.ContentHash, f.FileSize, f.ModTime,
		string(f.ParseStatus), f.ParseError, nullableUUID(f.PaperID), f.ScannedAt)
	if err != nil {
		r.logger.Error("failed to upsert source file", "path", f.Path, "error", err)
		return nil, common.NewAppError("DB_WRITE", "upsert source file", err)
	}
	return r.GetByPath(ctx, f.Path)
}

func (r *sourceFileRepo) SetStatus(ctx context.Context, id uuid.UUID, status constants.ParseStatus, parseError string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE source_files SET parse_status = ?, parse_error = ? WHERE id = ?`,
		string(status), parseError, id.String())
	if err != nil {
		r.logger.Error("failed to set parse status", "id", id, "status", status, "error", err)
		return common.NewAppError("DB_WRITE", "set parse status", err)
	}
	return nil
}

func (r *sourceFileRepo) LinkPaper(ctx context.Context, id, paperID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE source_files SET paper_id = ? WHERE id = ?`,
		paperID.String(), id.String())
	if err != nil {
		r.logger.Error("failed to link paper", "id", id, "paper_id", paperID, "error", err)
		return common.NewAppError("DB_WRITE", "link paper", err)
	}
	return nil
}

func (r *sourceFileRepo) ListByStatus(ctx context.Context, status constants.ParseStatus) ([]*entity.SourceFile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sourceFileCols+` FROM source_files WHERE parse_status = ? ORDER BY path`,
		string(status))
	if err != nil {
		r.logger.Error("failed to list source files", "status", status, "error", err)
		return nil, common.NewAppError("DB_QUERY", "list source files", err)
	}
	defer rows.Close()

	var out []*entity.SourceFile
	for rows.Next() {
		f, err := scanSourceFile(rows)
		if err != nil {
			return nil, common.NewAppError("DB_QUERY", "scan source file", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSourceFile(row rowScanner) (*entity.SourceFile, error) {
	var f entity.SourceFile
	var id string
	var status string
	var paperID sql.NullString
	if err := row.Scan(&id, &f.Path, &f.Filename, &f.ContentHash, &f.FileSize,
		&f.ModTime, &status, &f.ParseError, &paperID, &f.ScannedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	f.ID = parsed
	f.ParseStatus = constants.ParseStatus(status)
	if paperID.Valid {
		pid, err := uuid.Parse(paperID.String)
		if err != nil {
			return nil, err
		}
		f.PaperID = &pid
	}
	return &f, nil
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
