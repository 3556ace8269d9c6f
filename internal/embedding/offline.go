package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// OfflineEmbedder produces deterministic embeddings derived from a text hash,
// so the same text always gets the same unit vector. It needs no network or
// API key and backs the offline provider and tests.
type OfflineEmbedder struct {
	dimensions int
}

// NewOfflineEmbedder returns a deterministic embedder of the given dimensions.
func NewOfflineEmbedder(dimensions int) *OfflineEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &OfflineEmbedder{dimensions: dimensions}
}

// Embed returns a deterministic unit vector based on the text hash.
func (e *OfflineEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := hashString(text)
	emb := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(h)*float64(i+1))*0.1 + 0.01)
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v * v)
	}
	if sum > 0 {
		norm := 1.0 / math.Sqrt(sum)
		for i := range emb {
			emb[i] *= float32(norm)
		}
	}
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *OfflineEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *OfflineEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for OfflineEmbedder.
func (e *OfflineEmbedder) Close() error {
	return nil
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
