package suggestions

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Suggestion // userId -> suggestions
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Suggestion),
	}
}

// Create stores a new suggestion for a user.
func (r *MemoryRepo) Create(ctx context.Context, s Suggestion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[s.UserID] = append(r.data[s.UserID], s)
	return nil
}

// GetByID returns a suggestion by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userId, suggestionID string) (Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return Suggestion{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.data[userId]
	for i := range items {
		if items[i].ID == suggestionID {
			return cloneSuggestion(items[i]), nil
		}
	}
	return Suggestion{}, ErrNotFound
}

// ListByThread returns a thread's suggestions, newest first.
func (r *MemoryRepo) ListByThread(ctx context.Context, userId, threadID string) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Suggestion
	for _, s := range r.data[userId] {
		if s.ThreadID == threadID {
			out = append(out, cloneSuggestion(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateStatus sets the status for a suggestion.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, userId, suggestionID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.data[userId]
	for i := range items {
		if items[i].ID == suggestionID {
			items[i].Status = status
			r.data[userId] = items
			return nil
		}
	}
	return ErrNotFound
}

// ApplyEnhancement replaces the enhancement fields under a single lock hold,
// so concurrent enhancements land whole-or-not-at-all.
func (r *MemoryRepo) ApplyEnhancement(ctx context.Context, userId, suggestionID, content string, enhancedAt time.Time, relevantDocs []RelevantDoc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.data[userId]
	for i := range items {
		if items[i].ID == suggestionID {
			items[i].Content = content
			at := enhancedAt
			items[i].EnhancedAt = &at
			items[i].RelevantDocs = append([]RelevantDoc(nil), relevantDocs...)
			r.data[userId] = items
			return nil
		}
	}
	return ErrNotFound
}

func cloneSuggestion(s Suggestion) Suggestion {
	out := s
	if s.EnhancedAt != nil {
		at := *s.EnhancedAt
		out.EnhancedAt = &at
	}
	out.RelevantDocs = append([]RelevantDoc(nil), s.RelevantDocs...)
	return out
}

var _ Repo = (*MemoryRepo)(nil)
