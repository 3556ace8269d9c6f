// Package sources provides optional answer sources for multi-source questions.
package sources

import (
	"context"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
)

// Source answers a question independently of the document pipeline. Sources
// degrade instead of failing: a broken upstream yields a labeled degraded
// answer, and an error is reserved for questions a source cannot serve at all.
type Source interface {
	Name() string
	Answer(ctx context.Context, question string) (*models.SourceAnswer, error)
}
