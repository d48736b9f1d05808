package documents

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRepoReadsDoNotAliasStoredState(t *testing.T) {
	repo := NewMemoryRepo()
	text := "original text"
	doc := Document{
		ID:        "doc-1",
		UserID:    "user-1",
		FileName:  "note.txt",
		Text:      &text,
		Embedding: []float64{0.1, 0.2},
		Metadata:  map[string]any{"title": "note"},
		Status:    StatusEmbedded,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(context.Background(), "user-1", "doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Embedding[0] = 99
	got.Metadata["title"] = "mutated"
	*got.Text = "mutated"

	fresh, err := repo.GetByID(context.Background(), "user-1", "doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.Embedding[0] != 0.1 {
		t.Fatalf("embedding mutated through returned copy: %v", fresh.Embedding)
	}
	if fresh.Metadata["title"] != "note" {
		t.Fatalf("metadata mutated through returned copy: %v", fresh.Metadata)
	}
	if *fresh.Text != "original text" {
		t.Fatalf("text mutated through returned copy: %q", *fresh.Text)
	}

	listed, err := repo.ListByUser(context.Background(), "user-1", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	listed[0].Metadata["title"] = "mutated again"
	fresh, err = repo.GetByID(context.Background(), "user-1", "doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.Metadata["title"] != "note" {
		t.Fatalf("metadata mutated through listed copy: %v", fresh.Metadata)
	}
}
