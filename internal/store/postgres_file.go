package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hardware-catalog-service/internal/domain"
)

const fileColumns = `id, file_name, original_name, mime_type, size_in_bytes, data, created_by, created_at`

func scanFile(row interface{ Scan(...interface{}) error }, f *domain.File) error {
	return row.Scan(&f.ID, &f.FileName, &f.OriginalName, &f.MimeType, &f.SizeBytes, &f.Data, &f.CreatedBy, &f.CreatedAt)
}

// SaveFile stores an upload, deduplicating on (original_name, size, mime):
// re-uploading the same bytes returns the existing row instead of storing a
// second copy.
func (s *PostgresStore) SaveFile(ctx context.Context, file *domain.File) (*domain.File, error) {
	existingQuery := `
		SELECT ` + fileColumns + ` FROM shop.files
		WHERE original_name = $1 AND size_in_bytes = $2 AND mime_type = $3;
	`
	var existing domain.File
	err := scanFile(s.db.QueryRowContext(ctx, existingQuery, file.OriginalName, file.SizeBytes, file.MimeType), &existing)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: SaveFile failed to check for existing file: %w", err)
	}

	insertQuery := `
		INSERT INTO shop.files (id, file_name, original_name, mime_type, size_in_bytes, data, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + fileColumns + `;
	`
	id := file.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var created domain.File
	err = scanFile(s.db.QueryRowContext(ctx, insertQuery,
		id, file.FileName, file.OriginalName, file.MimeType, file.SizeBytes, file.Data, file.CreatedBy,
	), &created)
	if err != nil {
		return nil, fmt.Errorf("store: SaveFile failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetFileByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	query := `SELECT ` + fileColumns + ` FROM shop.files WHERE id = $1;`
	var file domain.File
	if err := scanFile(s.db.QueryRowContext(ctx, query, id), &file); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("store: GetFileByID failed to scan row: %w", err)
	}
	return &file, nil
}

func (s *PostgresStore) DeleteFile(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM shop.files WHERE id = $1;`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeleteFile failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteFile failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrFileNotFound
	}
	return nil
}
