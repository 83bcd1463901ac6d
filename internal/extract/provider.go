package extract

import "context"

// Provider is an LLM backend that turns a prompt into raw text. The
// extractor owns prompting, parsing, and validation; providers only move
// bytes.
type Provider interface {
	// Name returns the provider name for logs.
	Name() string

	// Complete sends a prompt and returns the model's text output.
	Complete(ctx context.Context, prompt string) (string, error)

	// IsAvailable checks whether the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// Document is one raw input handed to the extractor. Text is whatever an
// upstream collector produced; no fetching or HTML handling happens here.
type Document struct {
	SourceID string `json:"source_id"`
	Text     string `json:"text"`
}
