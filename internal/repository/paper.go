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

type PaperRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Paper, error)
	UpsertPaper(ctx context.Context, p *entity.Paper) (*entity.Paper, error)
	ListAll(ctx context.Context) ([]*entity.Paper, error)
}

type paperRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPaperRepository(db *sql.DB, logger *slog.Logger) PaperRepository {
	return &paperRepo{db: db, logger: logger}
}

const paperCols = `id, title, authors, year, venue, doi, url, volume, issue, pages,
	entry_type, publication_type, bib_key, confidence, source, created_at`

func (r *paperRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Paper, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paperCols+` FROM papers WHERE id = ?`, id.String())
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("paper %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get paper", "id", id, "error", err)
		return nil, common.NewAppError("DB_QUERY", "get paper", err)
	}
	return p, nil
}

// UpsertPaper writes the record under its ID; a zero ID gets a fresh one.
// Rescans of the same file pass the existing ID so the row is updated in
// place instead of duplicated.
func (r *paperRepo) UpsertPaper(ctx context.Context, p *entity.Paper) (*entity.Paper, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO papers (`+paperCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title            = excluded.title,
			authors          = excluded.authors,
			year             = excluded.year,
			venue            = excluded.venue,
			doi              = excluded.doi,
			url              = excluded.url,
			volume           = excluded.volume,
			issue            = excluded.issue,
			pages            = excluded.pages,
			entry_type       = excluded.entry_type,
			publication_type = excluded.publication_type,
			bib_key          = excluded.bib_key,
			confidence       = excluded.confidence,
			source           = excluded.source`,
		p.ID.String(), p.Title, p.Authors, p.Year, p.Venue, p.DOI, p.URL,
		p.Volume, p.Issue, p.Pages, p.EntryType, p.PublicationType, p.BibKey,
		p.Confidence, string(p.Source), p.CreatedAt)
	if err != nil {
		r.logger.Error("failed to upsert paper", "id", p.ID, "title", p.Title, "error", err)
		return nil, common.NewAppError("DB_WRITE", "upsert paper", err)
	}
	return p, nil
}

func (r *paperRepo) ListAll(ctx context.Context) ([]*entity.Paper, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paperCols+` FROM papers ORDER BY created_at, title`)
	if err != nil {
		r.logger.Error("failed to list papers", "error", err)
		return nil, common.NewAppError("DB_QUERY", "list papers", err)
	}
	defer rows.Close()

	var out []*entity.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, common.NewAppError("DB_QUERY", "scan paper", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPaper(row rowScanner) (*entity.Paper, error) {
	var p entity.Paper
	var id, source string
	if err := row.Scan(&id, &p.Title, &p.Authors, &p.Year, &p.Venue, &p.DOI,
		&p.URL, &p.Volume, &p.Issue, &p.Pages, &p.EntryType, &p.PublicationType,
		&p.BibKey, &p.Confidence, &source, &p.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	p.ID = parsed
	p.Source = constants.ResolutionSource(source)
	return &p, nil
}
