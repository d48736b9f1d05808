package documents

import "context"

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userId, documentID string) (Document, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error)
	// UpdateProcessing stores the pipeline outcome for a document: text,
	// embedding, status and failure reason, in a single write.
	UpdateProcessing(ctx context.Context, doc Document) error
	Delete(ctx context.Context, userId, documentID string) error
}
