package documents

import "time"

// Document lifecycle states. A document starts pending, becomes parsed once
// text extraction succeeds, embedded once its vector exists, and failed if
// either step errors. Failed is terminal.
const (
	StatusPending  = "pending"
	StatusParsed   = "parsed"
	StatusEmbedded = "embedded"
	StatusFailed   = "failed"
)

// Document represents an uploaded context document owned by a user.
// Text and Embedding are nil until the corresponding pipeline step completes.
type Document struct {
	ID               string
	UserID           string
	FileName         string
	OriginalFilename string
	MimeType         string
	SizeBytes        int64
	StorageKey       string
	Text             *string
	Embedding        []float64
	Metadata         map[string]any
	Status           string
	FailureReason    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Title returns the display title for the document: the metadata title when
// present, otherwise the original filename.
func (d Document) Title() string {
	if d.Metadata != nil {
		if title, ok := d.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}
	if d.OriginalFilename != "" {
		return d.OriginalFilename
	}
	return d.FileName
}
