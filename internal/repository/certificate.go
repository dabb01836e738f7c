package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yliu-xjtu/biomanager/internal/common"
	"github.com/yliu-xjtu/biomanager/internal/entity"
)

type PatentRepository interface {
	UpsertPatent(ctx context.Context, p *entity.Patent) (*entity.Patent, error)
	ExistsByPath(ctx context.Context, filePath string) (bool, error)
	ListAll(ctx context.Context) ([]*entity.Patent, error)
}

type SoftwareRepository interface {
	UpsertSoftware(ctx context.Context, s *entity.Software) (*entity.Software, error)
	ExistsByPath(ctx context.Context, filePath string) (bool, error)
	ListAll(ctx context.Context) ([]*entity.Software, error)
}

type patentRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPatentRepository(db *sql.DB, logger *slog.Logger) PatentRepository {
	return &patentRepo{db: db, logger: logger}
}

const patentCols = `id, patent_number, grant_number, title, inventors, patentee,
	application_date, grant_date, patent_type, file_path, created_at`

// UpsertPatent keys on file_path: one certificate file yields one record, and
// re-extraction refreshes the fields.
func (r *patentRepo) UpsertPatent(ctx context.Context, p *entity.Patent) (*entity.Patent, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO patents (`+patentCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			patent_number    = excluded.patent_number,
			grant_number     = excluded.grant_number,
			title            = excluded.title,
			inventors        = excluded.inventors,
			patentee         = excluded.patentee,
			application_date = excluded.application_date,
			grant_date       = excluded.grant_date,
			patent_type      = excluded.patent_type`,
		p.ID.String(), p.PatentNumber, p.GrantNumber, p.Title, p.Inventors,
		p.Patentee, p.ApplicationDate, p.GrantDate, p.PatentType, p.FilePath, p.CreatedAt)
	if err != nil {
		r.logger.Error("failed to upsert patent", "file_path", p.FilePath, "error", err)
		return nil, common.NewAppError("DB_WRITE", "upsert patent", err)
	}
	return p, nil
}

func (r *patentRepo) ExistsByPath(ctx context.Context, filePath string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM patents WHERE file_path = ?`, filePath).Scan(&n)
	if err != nil {
		r.logger.Error("failed to check patent existence", "file_path", filePath, "error", err)
		return false, common.NewAppError("DB_QUERY", "patent exists", err)
	}
	return n > 0, nil
}

func (r *patentRepo) ListAll(ctx context.Context) ([]*entity.Patent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+patentCols+` FROM patents ORDER BY created_at, patent_number`)
	if err != nil {
		r.logger.Error("failed to list patents", "error", err)
		return nil, common.NewAppError("DB_QUERY", "list patents", err)
	}
	defer rows.Close()

	var out []*entity.Patent
	for rows.Next() {
		var p entity.Patent
		var id string
		if err := rows.Scan(&id, &p.PatentNumber, &p.GrantNumber, &p.Title,
			&p.Inventors, &p.Patentee, &p.ApplicationDate, &p.GrantDate,
			&p.PatentType, &p.FilePath, &p.CreatedAt); err != nil {
			return nil, common.NewAppError("DB_QUERY", "scan patent", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		p.ID = parsed
		out = append(out, &p)
	}
	return out, rows.Err()
}

type softwareRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSoftwareRepository(db *sql.DB, logger *slog.Logger) SoftwareRepository {
	return &softwareRepo{db: db, logger: logger}
}

const softwareCols = `id, software_name, version, registration_number,
	copyright_holder, development_date, file_path, created_at`

func (r *softwareRepo) UpsertSoftware(ctx context.Context, s *entity.Software) (*entity.Software, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO softwares (`+softwareCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			software_name       = excluded.software_name,
			version             = excluded.version,
			registration_number = excluded.registration_number,
			copyright_holder    = excluded.copyright_holder,
			development_date    = excluded.development_date`,
		s.ID.String(), s.SoftwareName, s.Version, s.RegistrationNumber,
		s.CopyrightHolder, s.DevelopmentDate, s.FilePath, s.CreatedAt)
	if err != nil {
		r.logger.Error("failed to upsert software", "file_path", s.FilePath, "error", err)
		return nil, common.NewAppError("DB_WRITE", "upsert software", err)
	}
	return s, nil
}

func (r *softwareRepo) ExistsByPath(ctx context.Context, filePath string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM softwares WHERE file_path = ?`, filePath).Scan(&n)
	if err != nil {
		r.logger.Error("failed to check software existence", "file_path", filePath, "error", err)
		return false, common.NewAppError("DB_QUERY", "software exists", err)
	}
	return n > 0, nil
}

func (r *softwareRepo) ListAll(ctx context.Context) ([]*entity.Software, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+softwareCols+` FROM softwares ORDER BY created_at, software_name`)
	if err != nil {
		r.logger.Error("failed to list softwares", "error", err)
		return nil, common.NewAppError("DB_QUERY", "list softwares", err)
	}
	defer rows.Close()

	var out []*entity.Software
	for rows.Next() {
		var s entity.Software
		var id string
		if err := rows.Scan(&id, &s.SoftwareName, &s.Version, &s.RegistrationNumber,
			&s.CopyrightHolder, &s.DevelopmentDate, &s.FilePath, &s.CreatedAt); err != nil {
			return nil, common.NewAppError("DB_QUERY", "scan software", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		s.ID = parsed
		out = append(out, &s)
	}
	return out, rows.Err()
}
