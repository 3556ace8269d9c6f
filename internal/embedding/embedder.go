// Package embedding produces vector embeddings for text, remotely or offline.
package embedding

import (
	"context"
	"fmt"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
)

// Embedder produces vector embeddings for text. Embeddings from one Embedder
// always share the dimension reported by Dimensions.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// New builds the configured embedder, wrapped in an LRU cache when
// cfg.CacheSize is positive.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	var (
		base Embedder
		err  error
	)
	switch cfg.Provider {
	case "openai", "":
		base, err = NewOpenAIEmbedder(cfg)
	case "offline":
		base = NewOfflineEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.CacheSize > 0 {
		return NewCachedEmbedder(base, cfg.CacheSize), nil
	}
	return base, nil
}
