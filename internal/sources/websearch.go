package sources

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
)

// WebSearchSource answers with a digest of Google Custom Search results.
// Safe search is always on. Without credentials, or when the API fails, it
// returns a labeled degraded answer instead of an error.
type WebSearchSource struct {
	apiKey     string
	engineID   string
	maxResults int
	logger     *zap.Logger
}

// NewWebSearchSource creates the web search source. API key and engine ID are
// read from the env vars named in cfg.
func NewWebSearchSource(cfg config.WebSearchConfig, logger *zap.Logger) *WebSearchSource {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	if maxResults > 10 {
		maxResults = 10
	}
	return &WebSearchSource{
		apiKey:     os.Getenv(cfg.APIKeyEnv),
		engineID:   os.Getenv(cfg.EngineIDEnv),
		maxResults: maxResults,
		logger:     logger,
	}
}

// Name returns the source label.
func (s *WebSearchSource) Name() string { return "web_search" }

// Answer searches the web and digests the top results.
func (s *WebSearchSource) Answer(ctx context.Context, question string) (*models.SourceAnswer, error) {
	if s.apiKey == "" || s.engineID == "" {
		return s.degraded(question, "web search credentials are not configured"), nil
	}

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return s.failed(question, err), nil
	}
	resp, err := svc.Cse.List().
		Q(question).
		Cx(s.engineID).
		Num(int64(s.maxResults)).
		Safe("active").
		Context(ctx).
		Do()
	if err != nil {
		return s.failed(question, err), nil
	}
	if len(resp.Items) == 0 {
		return s.degraded(question, "web search returned no results"), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Web search results for %q:\n", question))
	for i, item := range resp.Items {
		if i >= s.maxResults {
			break
		}
		b.WriteString(fmt.Sprintf("\n%d. %s (%s)\n   %s\n   %s\n",
			i+1, item.Title, item.DisplayLink, item.Snippet, item.Link))
	}
	return &models.SourceAnswer{
		Name:   s.Name(),
		Answer: b.String(),
		Mode:   models.ModeLive,
	}, nil
}

func (s *WebSearchSource) failed(question string, err error) *models.SourceAnswer {
	if s.logger != nil {
		s.logger.Warn("web search failed", zap.Error(err))
	}
	return s.degraded(question, "the web search service is unavailable")
}

func (s *WebSearchSource) degraded(question, reason string) *models.SourceAnswer {
	return &models.SourceAnswer{
		Name: s.Name(),
		Answer: fmt.Sprintf("(Demo mode: %s.)\n\nNo web results for %q. "+
			"Try the company knowledge base categories instead.", reason, question),
		Mode: models.ModeDegraded,
	}
}
