// Package vector provides vector storage and similarity search over chunk embeddings.
package vector

import (
	"context"
	"fmt"
)

// Entry is one stored vector with its chunk identity and filter metadata.
type Entry struct {
	ChunkID    string
	DocumentID string
	ChunkIndex int
	Category   string
	Vector     []float32
}

// Hit is a single similarity search result (highest similarity first).
type Hit struct {
	ChunkID    string
	DocumentID string
	ChunkIndex int
	Category   string
	Score      float64 // inner product; cosine similarity for normalized vectors
}

// Filter restricts a query to matching entries. The zero value matches everything.
type Filter struct {
	Category string
}

// Matches reports whether e passes the filter.
func (f Filter) Matches(e *Entry) bool {
	return f.Category == "" || f.Category == e.Category
}

// Index defines vector storage and similarity search. All stored vectors
// share one fixed dimension; mixing dimensions is a data-integrity violation.
type Index interface {
	// Upsert inserts or replaces the entry for its chunk ID. Fails with a
	// DimensionMismatchError, leaving the index unchanged, when the vector
	// dimension differs from the index dimension.
	Upsert(ctx context.Context, entries []*Entry) error
	// Query returns up to k entries with highest similarity to query among
	// entries matching filter. Ties are broken by insertion order (earlier
	// wins). Fewer than k results is not an error; k <= 0 yields none.
	Query(ctx context.Context, query []float32, k int, filter Filter) ([]*Hit, error)
	// DeleteDocument removes all entries belonging to the document.
	DeleteDocument(ctx context.Context, documentID string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Dimensions() int
	Close() error
}

// DimensionMismatchError reports a vector whose dimension does not match the index.
type DimensionMismatchError struct {
	Got  int
	Want int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: got %d, expected %d", e.Got, e.Want)
}
