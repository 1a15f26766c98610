// Package analysis runs prompts against corpus artifacts through
// pluggable AI clients.
package analysis

import (
	"context"
	"fmt"
	"os"

	"github.com/archinspect/repoanalyst/internal/config"
)

// Suggestion is one improvement proposal from an analysis.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	EffortHours int    `json:"effort_hours"`
}

// Endpoint describes one discovered service endpoint (REST analyses only).
type Endpoint struct {
	Method        string `json:"method"`
	Path          string `json:"path"`
	MaturityLevel int    `json:"maturity_level"`
}

// Result is the structured outcome of one analysis.
type Result struct {
	ScorePct    int          `json:"score_pct"`
	Summary     string       `json:"summary"`
	Suggestions []Suggestion `json:"suggestions"`
	Endpoints   []Endpoint   `json:"endpoints"`

	// Raw holds the unparsed provider output, "" for the mock client.
	Raw string `json:"-"`
}

// Client analyzes a corpus with a prompt.
type Client interface {
	// Analyze runs promptText over contextText (usually a corpus document).
	Analyze(ctx context.Context, promptText, contextText string) (*Result, error)

	// Provider returns the provider name for run records.
	Provider() string

	// Model returns the model name for run records, "" for the mock.
	Model() string

	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates the client selected by the analysis configuration.
// The gemini provider reads its API key from the env var named in config
// and fails without one.
func NewClient(ctx context.Context, cfg config.AnalysisConfig) (Client, error) {
	switch cfg.Provider {
	case "mock":
		return NewMockClient(), nil
	case "gemini":
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider needs an API key in $%s", cfg.APIKeyEnv)
		}
		return NewGeminiClient(ctx, cfg.Model, apiKey, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", cfg.Provider)
	}
}
