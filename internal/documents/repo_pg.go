package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements DocumentsRepo using Postgres. Embedding and metadata are
// stored as JSONB so the repo stays portable across database/sql drivers.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    file_name,
    original_filename,
    mime_type,
    size_bytes,
    storage_key,
    extracted_text,
    embedding,
    metadata,
    status,
    failure_reason,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	originalName := doc.OriginalFilename
	if originalName == "" {
		originalName = doc.FileName
	}
	status := doc.Status
	if status == "" {
		status = StatusPending
	}

	embeddingJSON, err := marshalEmbedding(doc.Embedding)
	if err != nil {
		return err
	}
	metadataJSON, err := marshalMetadata(doc.Metadata)
	if err != nil {
		return err
	}

	var text sql.NullString
	if doc.Text != nil {
		text = sql.NullString{String: *doc.Text, Valid: true}
	}

	updatedAt := doc.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = doc.CreatedAt
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		originalName,
		doc.MimeType,
		doc.SizeBytes,
		doc.StorageKey,
		text,
		embeddingJSON,
		metadataJSON,
		status,
		nullString(doc.FailureReason),
		doc.CreatedAt,
		updatedAt,
	)
	return err
}

const selectColumns = `id, user_id, file_name, original_filename, mime_type, size_bytes, storage_key, extracted_text, embedding, metadata, status, failure_reason, created_at, updated_at`

// GetByID fetches a document by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userId, documentID string) (Document, error) {
	query := `
SELECT ` + selectColumns + `
FROM documents
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userId, documentID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists documents ordered newest-first. A non-positive limit
// returns all documents past the offset; the ranker needs the full candidate
// set for a user.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + selectColumns + `
FROM documents
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
OFFSET $2`
	args := []any{userId, offset}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateProcessing stores the pipeline outcome in a single statement.
func (r *PGRepo) UpdateProcessing(ctx context.Context, doc Document) error {
	const query = `
UPDATE documents
SET extracted_text = $1, embedding = $2, metadata = $3, status = $4, failure_reason = $5, updated_at = $6
WHERE user_id = $7 AND id = $8 AND deleted_at IS NULL`

	embeddingJSON, err := marshalEmbedding(doc.Embedding)
	if err != nil {
		return err
	}
	metadataJSON, err := marshalMetadata(doc.Metadata)
	if err != nil {
		return err
	}
	var text sql.NullString
	if doc.Text != nil {
		text = sql.NullString{String: *doc.Text, Valid: true}
	}

	res, err := r.DB.ExecContext(
		ctx,
		query,
		text,
		embeddingJSON,
		metadataJSON,
		doc.Status,
		nullString(doc.FailureReason),
		time.Now().UTC(),
		doc.UserID,
		doc.ID,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes a document record.
func (r *PGRepo) Delete(ctx context.Context, userId, documentID string) error {
	const query = `
UPDATE documents
SET deleted_at = $1
WHERE user_id = $2 AND id = $3 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, time.Now().UTC(), userId, documentID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var originalName sql.NullString
	var text sql.NullString
	var embeddingJSON []byte
	var metadataJSON []byte
	var failureReason sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&originalName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageKey,
		&text,
		&embeddingJSON,
		&metadataJSON,
		&doc.Status,
		&failureReason,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if originalName.Valid {
		doc.OriginalFilename = originalName.String
	}
	if text.Valid {
		doc.Text = &text.String
	}
	if len(embeddingJSON) > 0 {
		if err := json.Unmarshal(embeddingJSON, &doc.Embedding); err != nil {
			return Document{}, fmt.Errorf("unmarshal embedding: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
			return Document{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if failureReason.Valid {
		doc.FailureReason = failureReason.String
	}
	return doc, nil
}

func marshalEmbedding(embedding []float64) ([]byte, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding: %w", err)
	}
	return data, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return data, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ DocumentsRepo = (*PGRepo)(nil)
