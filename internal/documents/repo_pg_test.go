package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	doc := Document{
		ID:         "doc-1",
		UserID:     "user-1",
		FileName:   "note.txt",
		MimeType:   "text/plain",
		SizeBytes:  11,
		StorageKey: "user-1/note.txt",
		Metadata:   map[string]any{"title": "note"},
		Status:     StatusPending,
		CreatedAt:  now,
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(
			doc.ID,
			doc.UserID,
			doc.FileName,
			doc.FileName, // original_filename falls back to file_name
			doc.MimeType,
			doc.SizeBytes,
			doc.StorageKey,
			sqlmock.AnyArg(), // extracted_text
			sqlmock.AnyArg(), // embedding is empty on create
			sqlmock.AnyArg(), // metadata
			StatusPending,
			sqlmock.AnyArg(), // failure_reason
			doc.CreatedAt,
			doc.CreatedAt, // updated_at falls back to created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScansJSONColumns(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	cols := []string{
		"id", "user_id", "file_name", "original_filename", "mime_type",
		"size_bytes", "storage_key", "extracted_text", "embedding", "metadata",
		"status", "failure_reason", "created_at", "updated_at",
	}
	rows := sqlmock.NewRows(cols).AddRow(
		"doc-1", "user-1", "note.txt", "note.txt", "text/plain",
		int64(11), "user-1/note.txt", "hello world", []byte(`[0.1,0.2]`), []byte(`{"title":"note"}`),
		StatusEmbedded, nil, now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("user-1", "doc-1").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "user-1", "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.Text == nil || *doc.Text != "hello world" {
		t.Fatalf("unexpected text: %v", doc.Text)
	}
	if len(doc.Embedding) != 2 || doc.Embedding[1] != 0.2 {
		t.Fatalf("unexpected embedding: %v", doc.Embedding)
	}
	if doc.Metadata["title"] != "note" {
		t.Fatalf("unexpected metadata: %v", doc.Metadata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	cols := []string{
		"id", "user_id", "file_name", "original_filename", "mime_type",
		"size_bytes", "storage_key", "extracted_text", "embedding", "metadata",
		"status", "failure_reason", "created_at", "updated_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows(cols))

	if _, err := repo.GetByID(context.Background(), "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateProcessingNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE documents").
		WillReturnResult(sqlmock.NewResult(0, 0))

	text := "body"
	doc := Document{ID: "doc-x", UserID: "user-1", Text: &text, Status: StatusEmbedded, Embedding: []float64{0.1}}
	if err := repo.UpdateProcessing(context.Background(), doc); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteSoftDeletes(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE documents").
		WithArgs(sqlmock.AnyArg(), "user-1", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "user-1", "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
