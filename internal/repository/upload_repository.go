package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shotbox/internal/models"
)

var ErrUploadNotFound = errors.New("upload not found")

// Schema is applied at startup when a ledger database is configured.
const Schema = `
CREATE TABLE IF NOT EXISTS uploads (
	id          UUID PRIMARY KEY,
	stored_name TEXT NOT NULL UNIQUE,
	container   TEXT NOT NULL,
	mime_type   TEXT NOT NULL,
	category    TEXT NOT NULL,
	tags        TEXT NOT NULL,
	size_bytes  BIGINT NOT NULL,
	status      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
)`

const uploadColumns = `id, stored_name, container, mime_type, category, tags, size_bytes, status, created_at, updated_at`

type UploadRepository struct {
	pool *pgxpool.Pool
}

func NewUploadRepository(pool *pgxpool.Pool) *UploadRepository {
	return &UploadRepository{pool: pool}
}

func (r *UploadRepository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

func (r *UploadRepository) Create(ctx context.Context, upload models.Upload) error {
	const query = `
		INSERT INTO uploads (` + uploadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		upload.ID,
		upload.StoredName,
		upload.Container,
		upload.MimeType,
		upload.Category,
		upload.Tags,
		upload.SizeBytes,
		upload.Status,
		upload.CreatedAt,
		upload.UpdatedAt,
	)
	return err
}

func (r *UploadRepository) UpdateStatus(ctx context.Context, id string, status models.UploadStatus) error {
	const query = `
		UPDATE uploads
		SET status = $2,
		    updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUploadNotFound
	}
	return nil
}

func (r *UploadRepository) GetByID(ctx context.Context, id string) (models.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE id = $1`

	upload, err := scanUpload(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Upload{}, ErrUploadNotFound
		}
		return models.Upload{}, err
	}
	return upload, nil
}

func (r *UploadRepository) List(ctx context.Context, limit, offset int) ([]models.Upload, error) {
	query := `
		SELECT ` + uploadColumns + `
		FROM uploads
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uploads := make([]models.Upload, 0, limit)
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, rows.Err()
}

func scanUpload(row pgx.Row) (models.Upload, error) {
	var upload models.Upload
	err := row.Scan(
		&upload.ID,
		&upload.StoredName,
		&upload.Container,
		&upload.MimeType,
		&upload.Category,
		&upload.Tags,
		&upload.SizeBytes,
		&upload.Status,
		&upload.CreatedAt,
		&upload.UpdatedAt,
	)
	return upload, err
}
