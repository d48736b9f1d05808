package documents

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"mailmind-backend/internal/embedding"
	"mailmind-backend/internal/extract"
	"mailmind-backend/internal/queue"
	"mailmind-backend/internal/shared/metrics"
	"mailmind-backend/internal/shared/storage/object"
	"mailmind-backend/internal/shared/telemetry"
	"mailmind-backend/internal/shared/util"
)

// MaxUploadBytes is the ingestion size ceiling. Larger uploads are rejected
// before any storage or model call happens.
const MaxUploadBytes = 50 << 20 // 50 MiB

// allowedMimeTypes is the ingestion allow-list. Image types are accepted at
// upload; their extraction step records a failure on the document since they
// carry no text.
var allowedMimeTypes = map[string]struct{}{
	extract.MimePDF:   {},
	extract.MimeJPEG:  {},
	extract.MimePNG:   {},
	extract.MimeGIF:   {},
	extract.MimePlain: {},
	extract.MimeDOC:   {},
	extract.MimeDOCX:  {},
}

// Service contains the document ingestion pipeline.
type Service struct {
	Store    object.ObjectStore
	Repo     DocumentsRepo
	Embedder embedding.Client
	Queue    queue.Client
}

// ValidateUpload applies the allow-list and size ceiling. It runs before any
// external call.
func ValidateUpload(fileName, mimeType string, sizeBytes int64) error {
	if fileName == "" {
		return ErrInvalidInput
	}
	normalized := extract.NormalizeMimeType(mimeType, fileName, nil)
	if _, ok := allowedMimeTypes[normalized]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedMedia, normalized)
	}
	if sizeBytes > MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, sizeBytes)
	}
	return nil
}

// Upload validates the file, saves it to object storage and records a pending
// document. Processing (extraction + embedding) is dispatched asynchronously:
// through the queue when one is configured, otherwise in-process. Ingesting
// the same file twice creates two independent documents.
func (s *Service) Upload(ctx context.Context, userId, fileName, declaredMime string, sizeBytes int64, r io.Reader) (Document, error) {
	if err := ValidateUpload(fileName, declaredMime, sizeBytes); err != nil {
		return Document{}, err
	}

	storageKey, savedBytes, sniffedMime, err := s.Store.Save(ctx, userId, fileName, io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return Document{}, err
	}
	if savedBytes > MaxUploadBytes {
		// No document record points at the blob yet, so remove it rather
		// than leave it orphaned.
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Error("documents.upload_cleanup_failed", map[string]any{
				"storage_key": storageKey,
				"error":       delErr.Error(),
			})
		}
		return Document{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, savedBytes)
	}

	mimeType := extract.NormalizeMimeType(declaredMime, fileName, nil)
	if mimeType == "application/octet-stream" && sniffedMime != "" {
		mimeType = sniffedMime
	}

	now := time.Now().UTC()
	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userId,
		FileName:         fileName,
		OriginalFilename: fileName,
		MimeType:         mimeType,
		SizeBytes:        savedBytes,
		StorageKey:       storageKey,
		Metadata: util.CleanMap(map[string]any{
			"title":            titleFromFileName(fileName),
			"originalFilename": fileName,
			"sizeBytes":        savedBytes,
			"uploader":         userId,
			"uploadedAt":       now.Format(time.RFC3339),
		}),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	metrics.IncIngestionStarted()

	if s.Queue != nil {
		msg := queue.Message{
			DocumentID: doc.ID,
			UserID:     userId,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: now.Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			// Queue trouble must not lose the upload; fall back in-process.
			telemetry.Error("documents.enqueue_failed", map[string]any{
				"document_id": doc.ID,
				"error":       err.Error(),
			})
			go s.processAsync(backgroundWithRequestID(ctx), userId, doc.ID)
		}
	} else {
		go s.processAsync(backgroundWithRequestID(ctx), userId, doc.ID)
	}

	return doc, nil
}

func (s *Service) processAsync(ctx context.Context, userId, documentID string) {
	if _, err := s.Process(ctx, userId, documentID); err != nil {
		telemetry.Error("documents.process_failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
	}
}

// Process runs extraction and embedding for a stored document. Pipeline
// failures are recorded on the document record (status failed) instead of
// being raised; the returned error covers lookup and persistence problems
// only.
func (s *Service) Process(ctx context.Context, userId, documentID string) (Document, error) {
	started := time.Now()
	doc, err := s.Repo.GetByID(ctx, userId, documentID)
	if err != nil {
		return Document{}, err
	}

	text, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		telemetry.Error("documents.extraction_failed", map[string]any{
			"document_id": doc.ID,
			"stage":       "extract",
			"mime_type":   doc.MimeType,
			"error":       err.Error(),
		})
		return s.markFailed(ctx, doc, "extraction: "+err.Error())
	}

	doc.Text = &text
	doc.Status = StatusParsed

	vector, err := s.Embedder.Embed(ctx, text)
	if err != nil {
		telemetry.Error("documents.embedding_failed", map[string]any{
			"document_id": doc.ID,
			"stage":       "embed",
			"error":       err.Error(),
		})
		// Partial success: text present, embedding absent.
		return s.markFailed(ctx, doc, "embedding: "+err.Error())
	}
	if len(vector) == 0 {
		return s.markFailed(ctx, doc, "embedding: empty vector returned")
	}

	doc.Embedding = vector
	doc.Status = StatusEmbedded
	doc.FailureReason = ""
	doc.Metadata = util.CleanMap(doc.Metadata)

	if err := s.Repo.UpdateProcessing(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("persist processed document %s: %w", doc.ID, err)
	}

	metrics.IncIngestionCompleted()
	metrics.ObserveIngestionDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("documents.ingested", map[string]any{
		"document_id": doc.ID,
		"dimensions":  len(vector),
		"text_len":    len(text),
	})
	return doc, nil
}

func (s *Service) markFailed(ctx context.Context, doc Document, reason string) (Document, error) {
	doc.Status = StatusFailed
	doc.FailureReason = reason
	doc.Metadata = util.CleanMap(doc.Metadata)
	if err := s.Repo.UpdateProcessing(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("record failure for document %s: %w", doc.ID, err)
	}
	metrics.IncIngestionFailed()
	return doc, nil
}

// Get returns a document by id for a user.
func (s *Service) Get(ctx context.Context, userId, documentID string) (Document, error) {
	if userId == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userId, documentID)
}

// List returns a user's documents, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if userId == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// Delete removes the document record and cascades to its storage blob.
func (s *Service) Delete(ctx context.Context, userId, documentID string) error {
	doc, err := s.Repo.GetByID(ctx, userId, documentID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userId, documentID); err != nil {
		return err
	}
	if doc.StorageKey != "" {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
			telemetry.Error("documents.blob_delete_failed", map[string]any{
				"document_id": documentID,
				"storage_key": doc.StorageKey,
				"error":       err.Error(),
			})
		}
	}
	return nil
}

func titleFromFileName(fileName string) string {
	for i := len(fileName) - 1; i >= 0; i-- {
		if fileName[i] == '.' {
			if i > 0 {
				return fileName[:i]
			}
			break
		}
	}
	return fileName
}
