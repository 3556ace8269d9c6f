// Package retriever finds the document chunks most relevant to a question.
package retriever

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/embedding"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/storage"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/vector"
)

// UnavailableError means retrieval could not produce any chunks for a query.
// Reason is human-readable and safe to surface to the caller.
type UnavailableError struct {
	Reason string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("retrieval unavailable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("retrieval unavailable: %s", e.Reason)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Retriever embeds a question and returns the nearest document chunks.
type Retriever struct {
	embedder    embedding.Embedder
	vectorIndex vector.Index
	storage     storage.Storage
	logger      *zap.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) RetrieverOption {
	return func(r *Retriever) { r.logger = l }
}

// NewRetriever creates a retriever over the given embedder, vector index, and storage.
func NewRetriever(embedder embedding.Embedder, vectorIndex vector.Index, store storage.Storage, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		embedder:    embedder,
		vectorIndex: vectorIndex,
		storage:     store,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to q.TopK chunks most similar to the question, ordered
// by descending similarity, restricted to q.Category when set. When nothing
// can be retrieved it returns an UnavailableError describing why.
func (r *Retriever) Retrieve(ctx context.Context, q *models.Query) ([]*models.RetrievedChunk, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	queryVec, err := r.embedder.Embed(ctx, q.Question)
	if err != nil {
		return nil, &UnavailableError{Reason: "embedding service unavailable", Err: err}
	}

	hits, err := r.vectorIndex.Query(ctx, queryVec, q.TopK, vector.Filter{Category: q.Category})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 {
		reason := "no indexed documents match this question"
		if q.Category != "" {
			reason = fmt.Sprintf("no indexed documents match this question in category %q", q.Category)
		}
		return nil, &UnavailableError{Reason: reason}
	}

	out := make([]*models.RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		chunk, err := r.storage.GetChunk(ctx, h.ChunkID)
		if err != nil {
			// The vector index can briefly lead storage during a re-ingest;
			// skip hits whose chunk rows are gone.
			if r.logger != nil {
				r.logger.Warn("retrieved chunk missing from storage",
					zap.String("chunk_id", h.ChunkID), zap.Error(err))
			}
			continue
		}
		out = append(out, &models.RetrievedChunk{Chunk: chunk, Score: h.Score})
	}
	if len(out) == 0 {
		return nil, &UnavailableError{Reason: "retrieved chunks are no longer available"}
	}

	if r.logger != nil {
		r.logger.Debug("retrieved chunks",
			zap.String("category", q.Category),
			zap.Int("requested", q.TopK),
			zap.Int("returned", len(out)))
	}
	return out, nil
}
