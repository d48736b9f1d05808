package suggestions

import "time"

// SuggestionResponse is the outward-facing representation of a suggestion.
type SuggestionResponse struct {
	SuggestionID string        `json:"suggestionId"`
	ThreadID     string        `json:"threadId"`
	Content      string        `json:"content"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	EnhancedAt   *time.Time    `json:"enhancedAt,omitempty"`
	RelevantDocs []RelevantDoc `json:"relevantDocs,omitempty"`
}

// EnhanceResponse wraps the suggestion with the enhancement outcome.
type EnhanceResponse struct {
	SuggestionResponse
	Enhanced bool `json:"enhanced"`
}

func toResponse(s Suggestion) SuggestionResponse {
	return SuggestionResponse{
		SuggestionID: s.ID,
		ThreadID:     s.ThreadID,
		Content:      s.Content,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
		EnhancedAt:   s.EnhancedAt,
		RelevantDocs: s.RelevantDocs,
	}
}

func toEnhanceResponse(res EnhanceResult) EnhanceResponse {
	return EnhanceResponse{
		SuggestionResponse: toResponse(res.Suggestion),
		Enhanced:           res.Enhanced,
	}
}
