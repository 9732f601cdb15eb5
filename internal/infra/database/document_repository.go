package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type DocumentRepository struct {
	DB *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

const documentColumns = `id, owner_type, owner_id, document_type, file_name, content_type, size_bytes, storage_key,
	expiry_date, uploaded_by, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, d *entity.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		d.ID, d.OwnerType, d.OwnerID, d.DocumentType, d.FileName, d.ContentType, d.SizeBytes, d.StorageKey,
		d.ExpiryDate, nullString(d.UploadedBy), d.CreatedAt, d.UpdatedAt)
	return mapError(err)
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 AND NOT deleted`, id)
	return scanDocument(row)
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerType entity.OwnerType, ownerID string) ([]*entity.Document, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE owner_type = $1 AND owner_id = $2 AND NOT deleted
		ORDER BY created_at DESC`, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (r *DocumentRepository) ListExpiringBefore(ctx context.Context, before time.Time) ([]*entity.Document, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE expiry_date IS NOT NULL AND expiry_date <= $1 AND NOT deleted
		ORDER BY expiry_date`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (r *DocumentRepository) Update(ctx context.Context, d *entity.Document) error {
	return expectOne(r.DB.ExecContext(ctx, `
		UPDATE documents
		SET document_type = $2, expiry_date = $3, deleted = $4, deleted_by = $5, deleted_at = $6, updated_at = $7
		WHERE id = $1
	`, d.ID, d.DocumentType, d.ExpiryDate, d.Deleted, nullString(d.DeletedBy), d.DeletedAt, d.UpdatedAt))
}

func collectDocuments(rows *sql.Rows) ([]*entity.Document, error) {
	var out []*entity.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDocument(s scanner) (*entity.Document, error) {
	var d entity.Document
	var uploadedBy sql.NullString
	var expiry sql.NullTime
	err := s.Scan(&d.ID, &d.OwnerType, &d.OwnerID, &d.DocumentType, &d.FileName, &d.ContentType, &d.SizeBytes,
		&d.StorageKey, &expiry, &uploadedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	d.UploadedBy = fromNull(uploadedBy)
	d.ExpiryDate = timePtr(expiry)
	return &d, nil
}
