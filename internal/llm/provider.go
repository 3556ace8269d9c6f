// Package llm generates answers from assembled prompts via hosted model APIs.
package llm

import (
	"context"
	"fmt"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
)

// Params is one generation request.
type Params struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Result is a successful generation.
type Result struct {
	Text  string
	Model string
	Usage models.Usage
}

// AnswerProvider generates an answer for a prompt. Failures map onto the
// provider error sentinels so callers can decide between retry and degrade.
type AnswerProvider interface {
	Name() string
	Generate(ctx context.Context, p Params) (*Result, error)
}

// newProvider builds the configured answer provider. The "demo" provider is
// handled by Client directly and never reaches here.
func newProvider(cfg config.AnswerConfig) (AnswerProvider, error) {
	switch cfg.Provider {
	case "claude":
		return NewClaudeProvider(cfg)
	case "gemini":
		return NewGeminiProvider(cfg)
	case "openai", "":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown answer provider %q", cfg.Provider)
	}
}
