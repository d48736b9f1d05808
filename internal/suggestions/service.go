package suggestions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mailmind-backend/internal/documents"
	"mailmind-backend/internal/embedding"
	"mailmind-backend/internal/generation"
	"mailmind-backend/internal/ranking"
	"mailmind-backend/internal/shared/metrics"
	"mailmind-backend/internal/shared/telemetry"
)

// Service contains business logic for suggestions, including the enhancement
// pipeline that grounds a draft reply in the user's uploaded documents.
type Service struct {
	Repo      Repo
	DocRepo   documents.DocumentsRepo
	Embedder  embedding.Client
	Generator generation.Client

	// Threshold and TopN default to the ranking package values when zero.
	Threshold float64
	TopN      int
}

// EnhanceResult is the outcome of one enhancement request. Enhanced is false
// when no stored document cleared the similarity threshold; the suggestion is
// returned unchanged in that case and the generation step never ran.
type EnhanceResult struct {
	Suggestion Suggestion
	Enhanced   bool
}

// Create records a new pending suggestion for a thread.
func (s *Service) Create(ctx context.Context, userId, threadID, content string) (Suggestion, error) {
	if userId == "" || threadID == "" || content == "" {
		return Suggestion{}, ErrInvalidInput
	}
	sug := Suggestion{
		ID:        uuid.NewString(),
		UserID:    userId,
		ThreadID:  threadID,
		Content:   content,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, sug); err != nil {
		return Suggestion{}, err
	}
	return sug, nil
}

// Get returns a suggestion by id for a user.
func (s *Service) Get(ctx context.Context, userId, suggestionID string) (Suggestion, error) {
	if userId == "" || suggestionID == "" {
		return Suggestion{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userId, suggestionID)
}

// ListByThread returns a thread's suggestions, newest first.
func (s *Service) ListByThread(ctx context.Context, userId, threadID string) ([]Suggestion, error) {
	if userId == "" || threadID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByThread(ctx, userId, threadID)
}

// SetStatus applies a user decision. Only approved and rejected are
// reachable this way; both are terminal.
func (s *Service) SetStatus(ctx context.Context, userId, suggestionID, status string) error {
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s.Repo.UpdateStatus(ctx, userId, suggestionID, status)
}

// Enhance grounds a suggestion in the user's documents and regenerates its
// content. Steps run strictly in order: load, embed the current content,
// retrieve the user's documents, rank, assemble context, generate, persist.
// Nothing is written until the final step, so a failed or cancelled request
// leaves the suggestion exactly as it was.
func (s *Service) Enhance(ctx context.Context, userId, suggestionID string) (EnhanceResult, error) {
	if userId == "" || suggestionID == "" {
		return EnhanceResult{}, ErrInvalidInput
	}
	started := time.Now()
	metrics.IncEnhancementStarted()

	sug, err := s.Repo.GetByID(ctx, userId, suggestionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logFailure(suggestionID, "load", err)
		}
		return EnhanceResult{}, err
	}

	queryVec, err := s.Embedder.Embed(ctx, sug.Content)
	if err != nil {
		s.logFailure(suggestionID, "embed", err)
		metrics.IncEnhancementFailed()
		return EnhanceResult{}, err
	}

	// Tenant isolation: only the requesting user's documents are candidates.
	candidates, err := s.DocRepo.ListByUser(ctx, userId, 0, 0)
	if err != nil {
		s.logFailure(suggestionID, "retrieve", err)
		metrics.IncEnhancementFailed()
		return EnhanceResult{}, err
	}

	threshold := s.Threshold
	if threshold == 0 {
		threshold = ranking.DefaultThreshold
	}
	topN := s.TopN
	if topN == 0 {
		topN = ranking.DefaultTopN
	}
	matches := ranking.Rank(queryVec, candidates, threshold, topN)

	if len(matches) == 0 {
		// No qualifying context. Return the original content untouched and
		// skip generation entirely.
		metrics.IncEnhancementNoContext()
		telemetry.Info("suggestions.enhance_no_context", map[string]any{
			"suggestion_id": suggestionID,
			"candidates":    len(candidates),
		})
		return EnhanceResult{Suggestion: sug, Enhanced: false}, nil
	}

	snippets := make([]generation.ContextSnippet, 0, len(matches))
	relevantDocs := make([]RelevantDoc, 0, len(matches))
	for _, m := range matches {
		content := ""
		if m.Document.Text != nil {
			content = *m.Document.Text
		}
		snippets = append(snippets, generation.ContextSnippet{
			Title:      m.Document.Title(),
			Content:    content,
			Similarity: m.Similarity,
		})
		relevantDocs = append(relevantDocs, RelevantDoc{
			DocumentID: m.Document.ID,
			Title:      m.Document.Title(),
			Similarity: m.Similarity,
		})
	}

	enhanced, err := s.Generator.Reply(ctx, generation.ReplyInput{
		Content:  sug.Content,
		Snippets: snippets,
	})
	if err != nil {
		s.logFailure(suggestionID, "generate", err)
		metrics.IncEnhancementFailed()
		return EnhanceResult{}, err
	}

	enhancedAt := time.Now().UTC()
	if err := s.Repo.ApplyEnhancement(ctx, userId, suggestionID, enhanced, enhancedAt, relevantDocs); err != nil {
		// Generation succeeded but the write did not; the enhancement as a
		// whole is failed and the caller may retry the full pipeline.
		s.logFailure(suggestionID, "persist", err)
		metrics.IncEnhancementFailed()
		return EnhanceResult{}, fmt.Errorf("persist enhancement for suggestion %s: %w", suggestionID, err)
	}

	sug.Content = enhanced
	sug.EnhancedAt = &enhancedAt
	sug.RelevantDocs = relevantDocs

	metrics.IncEnhancementCompleted()
	metrics.ObserveEnhancementDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("suggestions.enhanced", map[string]any{
		"suggestion_id": suggestionID,
		"relevant_docs": len(relevantDocs),
	})
	return EnhanceResult{Suggestion: sug, Enhanced: true}, nil
}

func (s *Service) logFailure(suggestionID, stage string, err error) {
	telemetry.Error("suggestions.enhance_failed", map[string]any{
		"suggestion_id": suggestionID,
		"stage":         stage,
		"error":         err.Error(),
	})
}
