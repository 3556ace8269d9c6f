package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/provider"
)

// ClaudeProvider generates answers using the Anthropic Messages API.
type ClaudeProvider struct {
	client *anthropic.Client
	model  string
}

// NewClaudeProvider creates a provider backed by the Anthropic API. The API
// key is read from the env var named by cfg.APIKeyEnv.
func NewClaudeProvider(cfg config.AnswerConfig) (*ClaudeProvider, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	client := anthropic.NewClient(option.WithAPIKey(key))
	return &ClaudeProvider{client: &client, model: model}, nil
}

// Name returns the provider name.
func (p *ClaudeProvider) Name() string { return "claude" }

// Generate runs one Messages API call and returns the concatenated text blocks.
func (p *ClaudeProvider) Generate(ctx context.Context, params Params) (*Result, error) {
	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(params.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(params.User)),
		},
	}
	if params.Temperature > 0 {
		req.Temperature = anthropic.Float(float64(params.Temperature))
	}
	if params.System != "" {
		req.System = []anthropic.TextBlockParam{{Text: params.System}}
	}

	resp, err := p.client.Messages.New(ctx, req)
	if err != nil {
		return nil, classifyAnthropicError(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: empty response", provider.ErrUnavailable)
	}

	return &Result{
		Text:  text.String(),
		Model: string(resp.Model),
		Usage: models.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

func classifyAnthropicError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return provider.FromStatus(apierr.StatusCode, apierr.Error())
	}
	return fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
}
