// Package llm provides the completion capability used by summarize, compose
// and categorize.
package llm

import (
	"context"
)

// Provider is an interface for LLM providers
type Provider interface {
	// Complete generates a completion for the given prompt
	Complete(ctx context.Context, prompt string) (string, error)

	// IsConfigured returns true if the provider is properly configured
	IsConfigured() bool
}

// Unconfigured is the Provider used when no credential is present.
type Unconfigured struct{}

func (Unconfigured) Complete(ctx context.Context, prompt string) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) IsConfigured() bool { return false }
