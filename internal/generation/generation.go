package generation

import (
	"context"
	"errors"
)

// Client abstracts text-generation providers used to rewrite reply suggestions.
type Client interface {
	Reply(ctx context.Context, input ReplyInput) (string, error)
}

// ReplyInput carries the draft suggestion and the retrieved context snippets.
// Snippets arrive ordered by relevance and implementations must preserve that
// order when building the prompt.
type ReplyInput struct {
	ThreadSubject string
	Content       string
	Snippets      []ContextSnippet
}

// ContextSnippet is one retrieved document passed to the generation step.
type ContextSnippet struct {
	Title      string
	Content    string
	Similarity float64
}

// ErrUnavailable indicates the generation service could not be reached or
// returned a failure. Timeouts map here as well.
var ErrUnavailable = errors.New("generation: service unavailable")

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("generation not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Reply returns ErrNotImplemented.
func (PlaceholderClient) Reply(ctx context.Context, input ReplyInput) (string, error) {
	_ = ctx
	_ = input
	return "", ErrNotImplemented
}
