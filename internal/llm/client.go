// Package llm wraps the external text-generation providers behind a single
// Client interface. The extractor only ever needs one operation: send a
// prompt, get the raw completion text back.
package llm

import (
	"context"
	"time"
)

// Client defines the interface for text-generation providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Config holds configuration for a text-generation client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}
