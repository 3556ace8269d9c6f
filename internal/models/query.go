package models

import (
	"fmt"
	"strings"
)

// DefaultTopK is the number of chunks retrieved when a query does not ask
// for a specific count.
const DefaultTopK = 4

// MaxTopK caps the per-query retrieval count.
const MaxTopK = 15

// Query represents a question against the knowledge base. Queries are
// transient and never persisted beyond the current request.
type Query struct {
	Question    string `json:"question"`
	Category    string `json:"category,omitempty"`
	TopK        int    `json:"top_k,omitempty"`
	MultiSource bool   `json:"multi_source,omitempty"`
}

// Validate ensures the query has valid fields and sets defaults.
// Returns an error if the question is empty or the category is unknown;
// otherwise normalizes the category and clamps TopK.
func (q *Query) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question cannot be empty")
	}
	q.Category = strings.ToLower(strings.TrimSpace(q.Category))
	if q.Category != "" && !ValidCategory(q.Category) {
		return fmt.Errorf("unknown category %q (expected one of: %s)", q.Category, strings.Join(Categories, ", "))
	}
	if q.TopK <= 0 {
		q.TopK = DefaultTopK
	}
	if q.TopK > MaxTopK {
		q.TopK = MaxTopK
	}
	return nil
}
