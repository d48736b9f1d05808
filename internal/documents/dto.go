package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
// Extracted text and embeddings are never exposed over the API.
type DocumentResponse struct {
	DocumentID    string    `json:"documentId"`
	Title         string    `json:"title"`
	FileName      string    `json:"fileName"`
	MimeType      string    `json:"mimeType"`
	SizeBytes     int64     `json:"sizeBytes"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failureReason,omitempty"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:    doc.ID,
		Title:         doc.Title(),
		FileName:      doc.FileName,
		MimeType:      doc.MimeType,
		SizeBytes:     doc.SizeBytes,
		Status:        doc.Status,
		FailureReason: doc.FailureReason,
		UploadedAt:    doc.CreatedAt,
	}
}

func toResponses(docs []Document) []DocumentResponse {
	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	return resp
}
