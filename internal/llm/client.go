// Package llm wraps schema-constrained structured-output requests to an
// LLM service. A classification either decodes and validates fully against
// its schema or the call returns an error; partial objects never escape.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avoronov/smb-tagger/internal/model"
)

// Client is the single capability the taggers depend on.
type Client interface {
	// Classify sends input under the given schema's forced tool and
	// returns the validated classification. No automatic retry; retry
	// and backoff are caller policy.
	Classify(ctx context.Context, schema model.SchemaID, input string) (model.Classification, error)
}

// Analyzer is the free-text capability used by the discovery report.
type Analyzer interface {
	Analyze(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// Config holds configuration for an LLM provider client.
type Config struct {
	Provider     string
	APIKey       string
	Model        string
	BaseURL      string
	SystemPrompt string
	UserTemplate string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

// NewClient creates a provider client based on the configuration.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewAnalyzer creates a provider client for raw completions.
func NewAnalyzer(cfg Config) (Analyzer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
