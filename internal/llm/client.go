package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/prompt"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/provider"
)

// Client answers prompts through an AnswerProvider with rate limiting and
// retries, falling back to a demo answer when the provider cannot serve.
// Answer never fails: provider breakage degrades, it does not error.
type Client struct {
	provider    AnswerProvider
	retry       RetryConfig
	limiter     *rate.Limiter
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets a logger for degrade and retry events.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates an answer client from config. With provider "demo" no
// upstream is contacted and every answer is synthesized from retrieved
// passages. A configured provider that cannot be constructed (for example a
// missing API key) also lands in demo mode rather than failing startup.
func NewClient(cfg config.AnswerConfig, opts ...ClientOption) *Client {
	c := &Client{
		retry:       retryFromConfig(cfg),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	if cfg.Provider == "demo" {
		return c
	}
	p, err := newProvider(cfg)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("answer provider unavailable, running in demo mode",
				zap.String("provider", cfg.Provider), zap.Error(err))
		}
		return c
	}
	c.provider = p
	return c
}

// NewClientWithProvider creates a client around an existing provider.
func NewClientWithProvider(p AnswerProvider, retry RetryConfig, opts ...ClientOption) *Client {
	c := &Client{provider: p, retry: retry}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Answer generates an answer for the assembled prompt. Rate-limited calls are
// retried with exponential backoff; an unavailable provider degrades
// immediately. The returned Answer carries citations for the chunks that were
// in the prompt and Mode reporting whether the text came from the model.
func (c *Client) Answer(ctx context.Context, question string, p *prompt.Prompt) *models.Answer {
	citations := make([]models.Citation, 0, len(p.Included))
	for _, rc := range p.Included {
		citations = append(citations, models.Citation{
			DocumentID: rc.Chunk.DocumentID,
			ChunkIndex: rc.Chunk.ChunkIndex,
		})
	}

	if c.provider != nil {
		if res, ok := c.generateWithRetry(ctx, Params{
			System:      p.System,
			User:        p.User,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		}); ok {
			return &models.Answer{
				Answer:    res.Text,
				Citations: citations,
				Mode:      models.ModeLive,
				Model:     res.Model,
				Usage:     res.Usage,
			}
		}
	}

	return &models.Answer{
		Answer:    demoAnswer(question, p.Included),
		Citations: citations,
		Mode:      models.ModeDegraded,
	}
}

func (c *Client) generateWithRetry(ctx context.Context, params Params) (*Result, bool) {
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, false
			}
		}

		res, err := c.provider.Generate(ctx, params)
		if err == nil {
			return res, true
		}

		if provider.IsRateLimited(err) && attempt < c.retry.MaxRetries {
			backoff := c.retry.CalculateBackoff(attempt)
			if c.logger != nil {
				c.logger.Warn("answer provider rate limited, backing off",
					zap.String("provider", c.provider.Name()),
					zap.Int("attempt", attempt+1),
					zap.Duration("backoff", backoff))
			}
			select {
			case <-time.After(backoff):
				continue
			case <-ctx.Done():
				return nil, false
			}
		}

		if c.logger != nil {
			c.logger.Warn("answer provider failed, degrading to demo answer",
				zap.String("provider", c.provider.Name()), zap.Error(err))
		}
		return nil, false
	}
}
