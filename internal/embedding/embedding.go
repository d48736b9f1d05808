package embedding

import (
	"context"
	"errors"
	"strings"
)

// Client abstracts embedding providers. Implementations are stateless wrappers
// around the remote call; retry policy belongs to the caller.
type Client interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

var (
	// ErrInvalidInput indicates empty or whitespace-only input text.
	ErrInvalidInput = errors.New("embedding: empty input text")
	// ErrUnavailable indicates the embedding service could not be reached or
	// returned a failure. Timeouts map here as well.
	ErrUnavailable = errors.New("embedding: service unavailable")
)

// ValidateInput rejects input the provider would refuse anyway, before any
// network call is made.
func ValidateInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrInvalidInput
	}
	return nil
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("embedding not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Embed returns ErrNotImplemented.
func (PlaceholderClient) Embed(ctx context.Context, text string) ([]float64, error) {
	_ = ctx
	_ = text
	return nil, ErrNotImplemented
}
