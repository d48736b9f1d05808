package suggestions

import "time"

// Suggestion statuses. Pending suggestions may still be enhanced; approved
// and rejected are terminal states set by user action.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Suggestion is an AI-generated reply draft attached to an email thread.
// Enhancement mutates the record in place; it is never duplicated.
type Suggestion struct {
	ID           string
	UserID       string
	ThreadID     string
	Content      string
	Status       string
	CreatedAt    time.Time
	EnhancedAt   *time.Time
	RelevantDocs []RelevantDoc
}

// RelevantDoc records one retrieved document that grounded an enhancement.
// Only the title and similarity are persisted, not the document text.
type RelevantDoc struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}
