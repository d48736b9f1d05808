package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"mailmind-backend/internal/bootstrap"
	"mailmind-backend/internal/documents"
	"mailmind-backend/internal/extract"
	"mailmind-backend/internal/queue"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	_ = ctx
	_ = params
	_ = optFns
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	_ = ctx
	_ = optFns
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type staticStore struct {
	content []byte
}

func (s staticStore) Save(ctx context.Context, userId, fileName string, r io.Reader) (string, int64, string, error) {
	_ = ctx
	_ = userId
	_ = fileName
	_ = r
	return "", 0, "", errors.New("not used")
}

func (s staticStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	_ = ctx
	_ = storageKey
	return io.NopCloser(bytes.NewReader(s.content)), nil
}

func (s staticStore) Delete(ctx context.Context, storageKey string) error {
	_ = ctx
	_ = storageKey
	return nil
}

type staticEmbedder struct {
	err error
}

func (s staticEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	_ = ctx
	_ = text
	if s.err != nil {
		return nil, s.err
	}
	return []float64{0.1, 0.2}, nil
}

func buildTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	repo := documents.NewMemoryRepo()
	doc := documents.Document{
		ID:         "doc-1",
		UserID:     "user-1",
		FileName:   "note.txt",
		MimeType:   extract.MimePlain,
		StorageKey: "user-1/note.txt",
		Status:     documents.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	svc := &documents.Service{
		Store:    staticStore{content: []byte("hello world")},
		Repo:     repo,
		Embedder: staticEmbedder{},
	}
	return &bootstrap.App{DocumentsService: svc}
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	client := &fakeSQS{}
	app := buildTestApp(t)
	msgBody, _ := queue.EncodeMessage(queue.Message{DocumentID: "doc-1", UserID: "user-1", RequestID: "req-1"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m1"),
		ReceiptHandle: aws.String("r1"),
		Body:          aws.String(string(msgBody)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestWorkerDoesNotDeleteOnMissingDocument(t *testing.T) {
	client := &fakeSQS{}
	app := buildTestApp(t)
	msgBody, _ := queue.EncodeMessage(queue.Message{DocumentID: "doc-unknown", UserID: "user-1", RequestID: "req-2"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m2"),
		ReceiptHandle: aws.String("r2"),
		Body:          aws.String(string(msgBody)),
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnInvalidJSON(t *testing.T) {
	client := &fakeSQS{}
	app := buildTestApp(t)
	msg := sqstypes.Message{
		MessageId:     aws.String("m3"),
		ReceiptHandle: aws.String("r3"),
		Body:          aws.String("{not json"),
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete of unrecoverable message, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnMissingDocumentID(t *testing.T) {
	client := &fakeSQS{}
	app := buildTestApp(t)
	msgBody, _ := queue.EncodeMessage(queue.Message{RequestID: "req-3"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m4"),
		ReceiptHandle: aws.String("r4"),
		Body:          aws.String(string(msgBody)),
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete of unrecoverable message, got %d", len(client.deleted))
	}
}
