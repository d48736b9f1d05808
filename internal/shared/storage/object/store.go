package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving, retrieving and removing binary
// objects. It is the storage reference resolver for ingestion: given a
// storage key it yields the byte stream and the detected media type.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
