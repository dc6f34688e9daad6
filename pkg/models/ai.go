// Package models contains shared data models used across the callcoach codebase.
package models

import "context"

// AIProvider is the core interface that all language-model integrations must implement.
// Never call specific AI providers directly; always inject this interface.
type AIProvider interface {
	// Complete sends a system instruction and a user prompt and returns the raw model text.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	// Name returns the provider identifier (e.g., "anthropic", "openai").
	Name() string
}

// CompletionRequest is the input to a single create-message call.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// CompletionResponse is the free-text output of a create-message call.
type CompletionResponse struct {
	Content      string
	Model        string
	StopReason   string
	InputTokens  int
	OutputTokens int
}
