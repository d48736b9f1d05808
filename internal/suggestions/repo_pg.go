package suggestions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new suggestion.
func (r *PGRepo) Create(ctx context.Context, s Suggestion) error {
	const query = `
INSERT INTO suggestions (
    id,
    user_id,
    thread_id,
    content,
    status,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6)`

	status := s.Status
	if status == "" {
		status = StatusPending
	}

	_, err := r.DB.ExecContext(ctx, query, s.ID, s.UserID, s.ThreadID, s.Content, status, s.CreatedAt)
	return err
}

const selectColumns = `id, user_id, thread_id, content, status, created_at, enhanced_at, relevant_docs`

// GetByID fetches a suggestion by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userId, suggestionID string) (Suggestion, error) {
	query := `
SELECT ` + selectColumns + `
FROM suggestions
WHERE user_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userId, suggestionID)
	s, err := scanSuggestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Suggestion{}, ErrNotFound
		}
		return Suggestion{}, err
	}
	return s, nil
}

// ListByThread lists a thread's suggestions, newest first.
func (r *PGRepo) ListByThread(ctx context.Context, userId, threadID string) ([]Suggestion, error) {
	query := `
SELECT ` + selectColumns + `
FROM suggestions
WHERE user_id = $1 AND thread_id = $2
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userId, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatus sets the status for a suggestion.
func (r *PGRepo) UpdateStatus(ctx context.Context, userId, suggestionID, status string) error {
	const query = `
UPDATE suggestions
SET status = $1
WHERE user_id = $2 AND id = $3`
	res, err := r.DB.ExecContext(ctx, query, status, userId, suggestionID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyEnhancement updates the enhancement fields in one statement, so a
// concurrent enhancement can only fully replace it, never interleave.
func (r *PGRepo) ApplyEnhancement(ctx context.Context, userId, suggestionID, content string, enhancedAt time.Time, relevantDocs []RelevantDoc) error {
	const query = `
UPDATE suggestions
SET content = $1, enhanced_at = $2, relevant_docs = $3
WHERE user_id = $4 AND id = $5`

	docsJSON, err := marshalRelevantDocs(relevantDocs)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, query, content, enhancedAt, docsJSON, userId, suggestionID)
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

func scanSuggestion(row rowScanner) (Suggestion, error) {
	var s Suggestion
	var enhancedAt sql.NullTime
	var docsJSON []byte
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.ThreadID,
		&s.Content,
		&s.Status,
		&s.CreatedAt,
		&enhancedAt,
		&docsJSON,
	)
	if err != nil {
		return Suggestion{}, err
	}
	if enhancedAt.Valid {
		s.EnhancedAt = &enhancedAt.Time
	}
	if len(docsJSON) > 0 {
		if err := json.Unmarshal(docsJSON, &s.RelevantDocs); err != nil {
			return Suggestion{}, fmt.Errorf("unmarshal relevant docs: %w", err)
		}
	}
	return s, nil
}

func marshalRelevantDocs(docs []RelevantDoc) ([]byte, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("marshal relevant docs: %w", err)
	}
	return data, nil
}

var _ Repo = (*PGRepo)(nil)
