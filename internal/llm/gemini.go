package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/provider"
)

// GeminiProvider generates answers using the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a provider backed by the Gemini API. The API key
// is read from the env var named by cfg.APIKeyEnv.
func NewGeminiProvider(cfg config.AnswerConfig) (*GeminiProvider, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string { return "gemini" }

// Generate runs one GenerateContent call and returns the first candidate text.
func (p *GeminiProvider) Generate(ctx context.Context, params Params) (*Result, error) {
	cfg := &genai.GenerateContentConfig{}
	if params.Temperature > 0 {
		cfg.Temperature = genai.Ptr(params.Temperature)
	}
	if params.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(params.MaxTokens)
	}
	if params.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(params.System, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromText(params.User, genai.RoleUser)}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	var text strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				text.WriteString(part.Text)
			}
		}
		if text.Len() > 0 {
			break
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: empty response", provider.ErrUnavailable)
	}

	result := &Result{Text: text.String(), Model: p.model}
	if resp.UsageMetadata != nil {
		result.Usage = models.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return result, nil
}

// classifyGeminiError maps Gemini failures onto the provider sentinels.
// Matches 429 status codes and RESOURCE_EXHAUSTED quota errors.
func classifyGeminiError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "quota") {
		return fmt.Errorf("%w: %v", provider.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
}
