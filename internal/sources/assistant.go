package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
)

// CodingAssistantSource simulates a coding assistant with a local template
// response. It never contacts an upstream, so it is always labeled degraded.
type CodingAssistantSource struct{}

// NewCodingAssistantSource creates the simulated coding assistant source.
func NewCodingAssistantSource() *CodingAssistantSource {
	return &CodingAssistantSource{}
}

// Name returns the source label.
func (s *CodingAssistantSource) Name() string { return "coding_assistant" }

// Answer returns a templated, clearly simulated coding-assistant reply.
func (s *CodingAssistantSource) Answer(ctx context.Context, question string) (*models.SourceAnswer, error) {
	var b strings.Builder
	b.WriteString("(Simulated coding assistant response.)\n\n")
	b.WriteString(fmt.Sprintf("For %q, a practical approach:\n\n", question))
	b.WriteString("1. Check the technical category of the knowledge base for an existing runbook or SOP.\n")
	b.WriteString("2. Reproduce the problem in a scratch environment before changing anything shared.\n")
	b.WriteString("3. Automate the fix in a script or pipeline step so it does not recur by hand.\n")
	b.WriteString("4. Document the outcome back into the knowledge base for the next person.\n")
	return &models.SourceAnswer{
		Name:   s.Name(),
		Answer: b.String(),
		Mode:   models.ModeDegraded,
	}, nil
}
