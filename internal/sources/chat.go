package sources

import (
	"context"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/llm"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/prompt"
)

// ChatSource asks the answer model the bare question without any document
// context. Mode follows whatever the answer client produced.
type ChatSource struct {
	client    *llm.Client
	assembler *prompt.Assembler
}

// NewChatSource creates the chat source over an answer client.
func NewChatSource(client *llm.Client) *ChatSource {
	return &ChatSource{
		client:    client,
		assembler: prompt.NewAssembler(0),
	}
}

// Name returns the source label.
func (s *ChatSource) Name() string { return "chat" }

// Answer asks the model directly, with no retrieved passages.
func (s *ChatSource) Answer(ctx context.Context, question string) (*models.SourceAnswer, error) {
	ans := s.client.Answer(ctx, question, s.assembler.Assemble(question, nil))
	return &models.SourceAnswer{
		Name:   s.Name(),
		Answer: ans.Answer,
		Mode:   ans.Mode,
	}, nil
}
