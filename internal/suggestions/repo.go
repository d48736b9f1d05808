package suggestions

import (
	"context"
	"time"
)

// Repo defines persistence operations for suggestions.
type Repo interface {
	Create(ctx context.Context, s Suggestion) error
	GetByID(ctx context.Context, userId, suggestionID string) (Suggestion, error)
	ListByThread(ctx context.Context, userId, threadID string) ([]Suggestion, error)
	UpdateStatus(ctx context.Context, userId, suggestionID, status string) error
	// ApplyEnhancement replaces content, enhancedAt and relevantDocs in one
	// atomic write. Concurrent calls on the same suggestion are
	// last-writer-wins; a reader never observes a mix of two enhancements.
	ApplyEnhancement(ctx context.Context, userId, suggestionID, content string, enhancedAt time.Time, relevantDocs []RelevantDoc) error
}
