// Package keyword provides keyword (BM25) search over indexed documents.
package keyword

import (
	"context"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
)

// KeywordIndex defines keyword search operations over documents.
type KeywordIndex interface {
	Index(ctx context.Context, id string, doc *models.Document) error
	Search(ctx context.Context, query, category string, limit int) ([]KeywordResult, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Fragment string  `json:"fragment,omitempty"`
}
